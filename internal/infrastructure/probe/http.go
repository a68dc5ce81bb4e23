// Package probe implements the HTTP gateway liveness prober.
package probe

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/opsbay/caretaker/internal/domain"
	"github.com/opsbay/caretaker/internal/ports"
)

// HTTPProber issues GET requests against the gateway health endpoint with a
// hard client timeout.
type HTTPProber struct {
	url    string
	client *http.Client
	logger ports.Logger
}

// NewHTTPProber builds a prober. A zero timeout falls back to the default.
func NewHTTPProber(url string, timeout time.Duration, log ports.Logger) *HTTPProber {
	if timeout <= 0 {
		timeout = domain.DefaultProbeTimeout
	}
	return &HTTPProber{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: log,
	}
}

// Probe implements ports.GatewayProber. Connection failures return 0.
func (p *HTTPProber) Probe(ctx context.Context) int {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		p.logger.Warn("probe request build failed", map[string]interface{}{"url": p.url, "error": err.Error()})
		return 0
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("probe failed", map[string]interface{}{"url": p.url, "error": err.Error()})
		return 0
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return resp.StatusCode
}

var _ ports.GatewayProber = (*HTTPProber)(nil)
