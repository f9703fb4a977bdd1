package domain

import "fmt"

// ReportEntry is the durable outcome record for one probe within one run.
// Result == Fail if and only if Error is non-nil.
type ReportEntry struct {
	RunID       string  `json:"run_id"`
	Description string  `json:"description"`
	Result      Result  `json:"result"`
	Error       *string `json:"error"`
}

func Passed(runID, description string) ReportEntry {
	return ReportEntry{RunID: runID, Description: description, Result: Pass}
}

func Failed(runID, description, msg string) ReportEntry {
	m := msg
	return ReportEntry{RunID: runID, Description: description, Result: Fail, Error: &m}
}

// ErrorText returns the diagnostic or "" for passing entries.
func (e ReportEntry) ErrorText() string {
	if e.Error == nil {
		return ""
	}
	return *e.Error
}

// Valid reports whether the entry is well formed enough to persist.
func (e ReportEntry) Valid() error {
	if e.RunID == "" {
		return fmt.Errorf("entry %q: empty run id", e.Description)
	}
	if !e.Result.Valid() {
		return fmt.Errorf("entry %q: unknown result %q", e.Description, e.Result)
	}
	if (e.Result == Fail) != (e.Error != nil) {
		return fmt.Errorf("entry %q: result %s inconsistent with error", e.Description, e.Result)
	}
	return nil
}

// RunReport is the in-memory report handed back to whoever triggered a run.
type RunReport struct {
	RunID  string        `json:"run_id"`
	Report []ReportEntry `json:"report"`
}

func (r *RunReport) Failed() int {
	n := 0
	for _, e := range r.Report {
		if e.Result == Fail {
			n++
		}
	}
	return n
}
