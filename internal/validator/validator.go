package validator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/sanitycheck/internal/domain"
)

// Credential checks that a probe's payload describes database credentials
// that actually authenticate. It never touches the orchestrator's own
// result store; every call opens its own connection through Connector.
type Credential struct {
	Kind      ResourceKind
	Connector Connector
	Timeout   time.Duration // 0 means no extra bound beyond ctx
	Logger    *zap.Logger
}

func NewCredential(kind ResourceKind, timeout time.Duration, logger *zap.Logger) (*Credential, error) {
	conn, err := ConnectorFor(kind)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Credential{Kind: kind, Connector: conn, Timeout: timeout, Logger: logger}, nil
}

func (v *Credential) Validate(ctx context.Context, body []byte) domain.ValidationOutcome {
	creds, ok := ParseCredentials(body, v.Kind.DefaultPort())
	if !ok {
		return domain.Invalid(ErrInvalidFormat)
	}

	if v.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.Timeout)
		defer cancel()
	}

	if err := v.Connector.Ping(ctx, creds); err != nil {
		v.logger().Info("credential_check_failed",
			zap.String("kind", string(v.Kind)),
			zap.String("host", creds.Host),
			zap.Int("port", creds.Port),
			zap.String("database", creds.Database),
			zap.Error(err),
		)
		return domain.Invalid(err.Error())
	}
	return domain.OK()
}

func (v *Credential) logger() *zap.Logger {
	if v.Logger == nil {
		return zap.NewNop()
	}
	return v.Logger
}
