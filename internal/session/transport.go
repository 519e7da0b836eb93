// Package session implements the authenticated API session: bearer token
// attachment, expiry detection, single-flight refresh, and ordered replay of
// requests that failed while the access token was stale.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/pricepulse/storefront/internal/credentials"
	"github.com/pricepulse/storefront/internal/logging"
	"github.com/pricepulse/storefront/internal/models"
)

const defaultRefreshTimeout = 10 * time.Second

// Transport wraps a base http.RoundTripper and maintains the bearer session
// for every request that passes through it. On a 401 it coordinates a single
// token-refresh exchange, replays the failed request and any requests that
// queued up while the refresh was in flight, and on irrecoverable refresh
// failure clears the credential store and signals termination.
//
// Construct one Transport per application and share it across all API
// clients; the single-flight guarantee only holds within one instance.
type Transport struct {
	store credentials.Store
	base  http.RoundTripper

	refreshURL     string
	refreshTimeout time.Duration
	refreshHTTP    *http.Client

	// onTerminated fires once per failed refresh cycle, after the store has
	// been cleared. The surrounding application routes the user back to
	// sign-in when it observes this.
	onTerminated func(error)

	mu         sync.Mutex
	refreshing bool
	queue      []*pendingRequest
}

// pendingRequest is one suspended continuation parked while a refresh is in
// flight. Its outcome channel is buffered so the settling goroutine never
// blocks on a waiter that gave up.
type pendingRequest struct {
	req  *http.Request
	done chan outcome
}

type outcome struct {
	resp *http.Response
	err  error
}

// Option configures a Transport.
type Option func(*Transport)

// WithBase sets the underlying round tripper. Defaults to
// http.DefaultTransport.
func WithBase(base http.RoundTripper) Option {
	return func(t *Transport) { t.base = base }
}

// WithRefreshTimeout bounds the refresh exchange independently of the
// triggering request's deadline.
func WithRefreshTimeout(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.refreshTimeout = d
		}
	}
}

// WithTerminationCallback registers the logout signal handler.
func WithTerminationCallback(fn func(error)) Option {
	return func(t *Transport) { t.onTerminated = fn }
}

// NewTransport constructs a session transport that reads and writes
// credentials through store and exchanges refresh tokens at refreshURL.
func NewTransport(store credentials.Store, refreshURL string, opts ...Option) *Transport {
	if store == nil {
		panic("session: credential store must not be nil")
	}
	if refreshURL == "" {
		panic("session: refresh URL must not be empty")
	}

	t := &Transport{
		store:          store,
		base:           http.DefaultTransport,
		refreshURL:     refreshURL,
		refreshTimeout: defaultRefreshTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	// The refresh exchange goes out on a plain client so it is never
	// intercepted by this transport.
	t.refreshHTTP = &http.Client{Timeout: t.refreshTimeout}
	return t
}

// RoundTrip attaches the current access token and sends the request. An
// absent token is not an error at this stage; the server rejects the request
// if protection is required. Non-401 responses, including ordinary business
// errors, pass through untouched.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.send(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	discard(resp)
	return t.recover(req)
}

// send performs one attempt with the freshest stored access token.
func (t *Transport) send(req *http.Request) (*http.Response, error) {
	out := cloneRequest(req)
	if token := t.store.AccessToken(req.Context()); token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, &ConnectivityError{Err: err}
	}
	return resp, nil
}

// recover runs the refresh protocol for a request that was rejected with 401.
// At most one refresh exchange is in flight at any time: the first failure
// becomes the owner and performs the exchange, every concurrent failure parks
// in the queue. When the exchange settles, the owner replays its own request
// first and then each queued request in strict arrival order.
func (t *Transport) recover(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	t.mu.Lock()
	if t.refreshing {
		p := &pendingRequest{req: req, done: make(chan outcome, 1)}
		t.queue = append(t.queue, p)
		t.mu.Unlock()

		select {
		case o := <-p.done:
			return o.resp, o.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	t.refreshing = true
	t.mu.Unlock()

	refreshErr := t.refresh(ctx)

	// Snapshot and release the queue while still holding the flag state
	// consistent: failures arriving from here on start a fresh cycle.
	t.mu.Lock()
	t.refreshing = false
	queued := t.queue
	t.queue = nil
	t.mu.Unlock()

	if refreshErr != nil {
		terminal := &RefreshError{Err: refreshErr}
		if err := t.store.Clear(ctx); err != nil {
			logging.FromContext(ctx).Warn("clearing credentials after failed refresh", "error", err)
		}
		for _, p := range queued {
			p.done <- outcome{err: terminal}
		}
		if t.onTerminated != nil {
			t.onTerminated(terminal)
		}
		return nil, terminal
	}

	resp, err := t.replay(req)
	for _, p := range queued {
		r, e := t.replay(p.req)
		p.done <- outcome{resp: r, err: e}
	}
	return resp, err
}

// replay resubmits a request with the new access token. The single-retry
// guard is consumed by construction: a second 401 is returned to the caller
// as-is and never re-enters the refresh protocol.
func (t *Transport) replay(req *http.Request) (*http.Response, error) {
	out := cloneRequest(req)
	if token := t.store.AccessToken(req.Context()); token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, &ConnectivityError{Err: err}
	}
	return resp, nil
}

// refresh performs the token exchange and persists the new pair before any
// replay runs. It is detached from the triggering request's cancellation:
// the exchange settles queued waiters too, so one caller's deadline must not
// abort it.
func (t *Transport) refresh(ctx context.Context) error {
	refreshToken := t.store.RefreshToken(ctx)
	if refreshToken == "" {
		return ErrNoRefreshToken
	}

	body, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return fmt.Errorf("encode refresh request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.refreshTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, t.refreshURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.refreshHTTP.Do(req)
	if err != nil {
		// A connectivity fault during the exchange ends the session the
		// same as an explicit rejection.
		return fmt.Errorf("refresh exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("refresh token rejected: status %d", resp.StatusCode)
	}

	var pair models.SessionTokens
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return fmt.Errorf("decode refresh response: %w", err)
	}
	if !pair.Valid() {
		return fmt.Errorf("refresh response missing token pair")
	}

	if err := t.store.SetTokens(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		return fmt.Errorf("persist refreshed tokens: %w", err)
	}

	logging.FromContext(ctx).Debug("session tokens refreshed")
	return nil
}

// cloneRequest produces a sendable copy. The original body is never consumed
// directly so the request stays replayable through GetBody.
func cloneRequest(req *http.Request) *http.Request {
	out := req.Clone(req.Context())
	if req.Body != nil && req.GetBody != nil {
		if body, err := req.GetBody(); err == nil {
			out.Body = body
		}
	}
	return out
}

func discard(resp *http.Response) {
	if resp.Body != nil {
		resp.Body.Close()
	}
}
