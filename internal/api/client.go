// Package api provides typed clients for the PricePulse commerce API. Every
// call flows through the session transport, gets a call-scoped logger and
// request ID, and has its outcome normalized into the error taxonomy at this
// boundary before any business logic sees it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pricepulse/storefront/internal/logging"
	"github.com/pricepulse/storefront/internal/session"
)

const maxErrorBody = 64 << 10

// Client is the shared base for all typed API surfaces.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// New constructs a Client rooted at baseURL. The provided http.Client is
// expected to carry the session transport; timeout bounds each call. The
// limiter throttles outbound calls client-side so bursts of UI-driven
// requests do not hammer the backend.
func New(baseURL string, httpClient *http.Client, requestsPerSecond int, burst int) *Client {
	if httpClient == nil {
		panic("api: http client must not be nil")
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 20
	}
	if burst <= 0 {
		burst = requestsPerSecond
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do issues one JSON call and decodes the response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	ctx, call := logging.StartCall(ctx, method+" "+path)
	err := c.doOnce(ctx, method, path, query, body, out)
	call.End(err)
	return err
}

func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if callID := logging.CallIDFromContext(ctx); callID != "" {
		req.Header.Set("X-Request-Id", callID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return normalizeSendError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// normalizeSendError maps transport faults into the typed taxonomy. Terminal
// refresh failures and connectivity errors surface as themselves; anything
// else the http client produced (timeouts included) counts as connectivity.
func normalizeSendError(err error) error {
	var re *session.RefreshError
	if errors.As(err, &re) {
		return re
	}
	var ce *session.ConnectivityError
	if errors.As(err, &ce) {
		return ce
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &session.ConnectivityError{Err: err}
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return apiErr
	}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Message = body.text()
	}
	return apiErr
}
