package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// HealthResult reports whether the API endpoint is reachable and healthy.
type HealthResult struct {
	Healthy      bool
	ResponseTime time.Duration
	Status       int
	Message      string
	Error        string
}

// CheckHealth probes GET /health and classifies the outcome: a reachable
// backend with a sub-500 status is healthy, a timeout or connection fault is
// reported with a caller-facing explanation instead of an error return.
func (c *Client) CheckHealth(ctx context.Context) HealthResult {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return HealthResult{ResponseTime: time.Since(start), Error: err.Error()}
	}

	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return HealthResult{ResponseTime: elapsed, Error: classifyProbeError(err, c.baseURL)}
	}
	defer resp.Body.Close()

	result := HealthResult{
		ResponseTime: elapsed,
		Status:       resp.StatusCode,
		Healthy:      resp.StatusCode >= 200 && resp.StatusCode < 400,
	}

	var body struct {
		Message string `json:"message"`
	}
	if raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)); err == nil {
		if json.Unmarshal(raw, &body) == nil && body.Message != "" {
			result.Message = body.Message
		}
	}
	if result.Message == "" {
		result.Message = http.StatusText(resp.StatusCode)
	}
	if !result.Healthy {
		result.Error = fmt.Sprintf("API returned error: %d", resp.StatusCode)
	}
	return result
}

func classifyProbeError(err error, baseURL string) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timeout - API server may be unreachable"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "request timeout - API server may be unreachable"
	}
	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return fmt.Sprintf("cannot connect to API at %s", baseURL)
	}
	return err.Error()
}
