package probe

import (
	"context"
	"fmt"

	"github.com/hamed0406/sanitycheck/internal/domain"
)

// Kind says how a probe decides success beyond transport.
type Kind string

const (
	// KindBasic passes on a status-code match alone.
	KindBasic Kind = "basic"
	// KindValidating additionally runs the probe's Validator on the body.
	KindValidating Kind = "validating"
)

// Spec is the static description of one check. Specs are built once at
// startup and shared read-only across runs.
type Spec struct {
	Description    string
	Target         string
	Method         string
	ExpectedStatus int
	Kind           Kind
	Validator      Validator // only consulted for KindValidating
}

// Basic builds a status-code-only probe.
func Basic(description, method, target string, expected int) Spec {
	return Spec{
		Description:    description,
		Target:         target,
		Method:         method,
		ExpectedStatus: expected,
		Kind:           KindBasic,
	}
}

// Validating builds a probe whose response body is handed to v once the
// status matches.
func Validating(description, method, target string, expected int, v Validator) Spec {
	s := Basic(description, method, target, expected)
	s.Kind = KindValidating
	s.Validator = v
	return s
}

func (s Spec) Check() error {
	if s.Description == "" {
		return fmt.Errorf("probe: empty description")
	}
	if s.Target == "" {
		return fmt.Errorf("probe %q: empty target", s.Description)
	}
	if s.ExpectedStatus < 100 || s.ExpectedStatus > 599 {
		return fmt.Errorf("probe %q: expected status %d out of range", s.Description, s.ExpectedStatus)
	}
	switch s.Kind {
	case KindBasic:
	case KindValidating:
		if s.Validator == nil {
			return fmt.Errorf("probe %q: validating probe without validator", s.Description)
		}
	default:
		return fmt.Errorf("probe %q: unknown kind %q", s.Description, s.Kind)
	}
	return nil
}

// Validator performs a nested, resource-specific check on a probe's
// response payload.
type Validator interface {
	Validate(ctx context.Context, body []byte) domain.ValidationOutcome
}

// Response is what a completed probe hands back. Any status, including
// non-2xx, counts as a completed probe.
type Response struct {
	StatusCode int
	Body       []byte
}

// Prober issues the network side of a probe. A non-nil error means the
// probe could not be completed at all (timeout, DNS, refused connection).
type Prober interface {
	Probe(ctx context.Context, method, target string) (*Response, error)
}
