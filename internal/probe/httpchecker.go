package probe

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxBody caps how much of a response body is kept for validation.
const maxBody = 1 << 20

type HTTPProber struct {
	Client *http.Client
	Logger *zap.Logger
}

func NewHTTPProber(timeout time.Duration, logger *zap.Logger) *HTTPProber {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPProber{
		Client: &http.Client{Timeout: timeout},
		Logger: logger,
	}
}

func (h *HTTPProber) Probe(ctx context.Context, method, target string) (*Response, error) {
	if method == "" {
		method = http.MethodGet
	}
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.Client.Do(req)
	latency := time.Since(start).Seconds() * 1000 // ms
	if err != nil {
		h.diagnose(ctx, target, err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, err
	}

	h.Logger.Debug("probe_response",
		zap.String("method", req.Method),
		zap.String("target", target),
		zap.Int("status", resp.StatusCode),
		zap.Float64("latency_ms", latency),
	)
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// diagnose logs a DNS classification of the target host so transport
// failures can be told apart in the logs. It never changes the error.
func (h *HTTPProber) diagnose(ctx context.Context, target string, cause error) {
	dns := CheckDNS(ctx, extractHost(target))
	h.Logger.Info("probe_transport_error",
		zap.String("target", target),
		zap.Error(cause),
		zap.String("dns_class", dns.Class),
		zap.Bool("has_a_or_aaaa", dns.HasAOrAAAA),
		zap.Strings("nameservers", dns.Nameservers),
		zap.String("cname", dns.CNAME),
		zap.String("resolver_error", dns.ResolverError),
	)
}

func extractHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
