package domain

// Result is the outcome of one probe within a run.
type Result string

const (
	Pass Result = "Pass"
	Fail Result = "Fail"
)

func (r Result) Valid() bool {
	return r == Pass || r == Fail
}

// ValidationOutcome is what a nested validation reports back to the runner.
// Error is only set when Success is false.
type ValidationOutcome struct {
	Success bool
	Error   string
}

func OK() ValidationOutcome { return ValidationOutcome{Success: true} }

func Invalid(msg string) ValidationOutcome {
	return ValidationOutcome{Success: false, Error: msg}
}
