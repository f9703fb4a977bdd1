// Package battery turns configured probe definitions into runnable specs.
package battery

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/sanitycheck/internal/config"
	"github.com/hamed0406/sanitycheck/internal/probe"
	"github.com/hamed0406/sanitycheck/internal/validator"
)

type Options struct {
	ValidateTimeout time.Duration
	Logger          *zap.Logger
	// NewValidator overrides how nested validators are built (tests).
	NewValidator func(kind validator.ResourceKind) (probe.Validator, error)
}

// Build converts defs into specs, preserving declaration order.
func Build(defs []config.ProbeDef, opts Options) ([]probe.Spec, error) {
	if opts.NewValidator == nil {
		opts.NewValidator = func(kind validator.ResourceKind) (probe.Validator, error) {
			return validator.NewCredential(kind, opts.ValidateTimeout, opts.Logger)
		}
	}

	specs := make([]probe.Spec, 0, len(defs))
	seen := make(map[string]bool, len(defs))
	for i, d := range defs {
		method := strings.ToUpper(strings.TrimSpace(d.Method))
		if method == "" {
			method = http.MethodGet
		}
		var s probe.Spec
		if d.Validate == "" {
			s = probe.Basic(d.Description, method, d.Target, d.ExpectedStatus)
		} else {
			kind, err := validator.ParseKind(d.Validate)
			if err != nil {
				return nil, fmt.Errorf("probe %d (%q): %w", i, d.Description, err)
			}
			v, err := opts.NewValidator(kind)
			if err != nil {
				return nil, fmt.Errorf("probe %d (%q): %w", i, d.Description, err)
			}
			s = probe.Validating(d.Description, method, d.Target, d.ExpectedStatus, v)
		}
		if err := s.Check(); err != nil {
			return nil, err
		}
		// Descriptions join results across runs; duplicates are allowed but noisy.
		if seen[d.Description] && opts.Logger != nil {
			opts.Logger.Warn("battery_duplicate_description", zap.String("description", d.Description))
		}
		seen[d.Description] = true
		specs = append(specs, s)
	}
	return specs, nil
}
