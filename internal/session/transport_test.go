package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pricepulse/storefront/internal/credentials"
	"github.com/pricepulse/storefront/internal/models"
)

func userFixture() models.User {
	return models.User{ID: "u1", Email: "user@example.com", Role: models.RoleUser, IsVerified: true}
}

// fakeBackend serves a protected resource and the refresh endpoint, recording
// every attempt so tests can assert call counts and ordering.
type fakeBackend struct {
	mu             sync.Mutex
	validToken     string
	nextAccess     string
	nextRefresh    string
	rejectRefresh  bool
	rejectResource bool
	refreshGate    chan struct{}
	refreshStarted chan struct{}
	refreshCalls   int
	unauthorized   int
	served         []string
}

func startBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()

	backend := &fakeBackend{
		nextAccess:     "t2",
		nextRefresh:    "r2",
		refreshStarted: make(chan struct{}, 16),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh-token" {
			backend.handleRefresh(w, r)
			return
		}
		backend.handleResource(w, r)
	}))
	t.Cleanup(srv.Close)

	return backend, srv
}

func (b *fakeBackend) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	b.refreshCalls++
	gate := b.refreshGate
	reject := b.rejectRefresh
	b.mu.Unlock()

	select {
	case b.refreshStarted <- struct{}{}:
	default:
	}

	if gate != nil {
		<-gate
	}

	if reject {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "invalid refresh token"})
		return
	}

	b.mu.Lock()
	b.validToken = b.nextAccess
	pair := map[string]string{"accessToken": b.nextAccess, "refreshToken": b.nextRefresh}
	b.mu.Unlock()

	json.NewEncoder(w).Encode(pair)
}

func (b *fakeBackend) handleResource(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	tag := r.Header.Get("X-Tag")

	b.mu.Lock()
	valid := !b.rejectResource && token != "" && token == b.validToken
	if valid {
		b.served = append(b.served, tag)
	} else {
		b.unauthorized++
	}
	b.mu.Unlock()

	if !valid {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (b *fakeBackend) stats() (refreshCalls, unauthorized int, served []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshCalls, b.unauthorized, append([]string(nil), b.served...)
}

func (t *Transport) pendingLen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.queue)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func newRequest(t *testing.T, url, tag string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if tag != "" {
		req.Header.Set("X-Tag", tag)
	}
	return req
}

func TestTransportAttachesBearer(t *testing.T) {
	backend, srv := startBackend(t)
	backend.validToken = "t1"

	store := credentials.NewMemoryStore()
	store.SetTokens(context.Background(), "t1", "r1")

	tr := NewTransport(store, srv.URL+"/auth/refresh-token")

	resp, err := tr.RoundTrip(newRequest(t, srv.URL+"/cart", "a"))
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}

	refreshCalls, _, _ := backend.stats()
	if refreshCalls != 0 {
		t.Fatalf("expected no refresh calls got %d", refreshCalls)
	}
}

func TestTransportMissingTokenIsNotAnError(t *testing.T) {
	_, srv := startBackend(t)

	store := credentials.NewMemoryStore()
	tr := NewTransport(store, srv.URL+"/auth/refresh-token")

	// No token and no refresh token: the 401 triggers the refresh protocol,
	// which fails fast without calling the backend.
	_, err := tr.RoundTrip(newRequest(t, srv.URL+"/cart", "a"))
	if !errors.Is(err, ErrNoRefreshToken) {
		t.Fatalf("expected ErrNoRefreshToken got %v", err)
	}
}

func TestTransportBusinessErrorsPassThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "email already registered"})
	}))
	defer srv.Close()

	store := credentials.NewMemoryStore()
	store.SetTokens(context.Background(), "t1", "r1")
	tr := NewTransport(store, srv.URL+"/auth/refresh-token")

	resp, err := tr.RoundTrip(newRequest(t, srv.URL+"/auth/signup", ""))
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 to pass through got %d", resp.StatusCode)
	}
	if got := store.AccessToken(context.Background()); got != "t1" {
		t.Fatalf("business error must not touch the store, token now %q", got)
	}
}

type failingRoundTripper struct{ err error }

func (f failingRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, f.err
}

func TestTransportConnectivityErrorSkipsRefresh(t *testing.T) {
	backend, srv := startBackend(t)

	store := credentials.NewMemoryStore()
	store.SetTokens(context.Background(), "t1", "r1")

	tr := NewTransport(store, srv.URL+"/auth/refresh-token",
		WithBase(failingRoundTripper{err: errors.New("connection refused")}),
	)

	_, err := tr.RoundTrip(newRequest(t, srv.URL+"/cart", "a"))

	var ce *ConnectivityError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConnectivityError got %v", err)
	}

	refreshCalls, _, _ := backend.stats()
	if refreshCalls != 0 {
		t.Fatalf("connectivity failure must not trigger refresh, got %d calls", refreshCalls)
	}
	if got := store.RefreshToken(context.Background()); got != "r1" {
		t.Fatal("connectivity failure must not clear the store")
	}
}

func TestTransportRefreshAndReplay(t *testing.T) {
	backend, srv := startBackend(t)

	store := credentials.NewMemoryStore()
	store.SetTokens(context.Background(), "t1", "r1")
	tr := NewTransport(store, srv.URL+"/auth/refresh-token")

	resp, err := tr.RoundTrip(newRequest(t, srv.URL+"/cart", "a"))
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected replay to succeed got %d", resp.StatusCode)
	}

	refreshCalls, _, served := backend.stats()
	if refreshCalls != 1 {
		t.Fatalf("expected exactly one refresh call got %d", refreshCalls)
	}
	if len(served) != 1 || served[0] != "a" {
		t.Fatalf("expected replay of tagged request got %v", served)
	}
	if access := store.AccessToken(context.Background()); access != "t2" {
		t.Fatalf("expected store to hold t2 got %q", access)
	}
	if refresh := store.RefreshToken(context.Background()); refresh != "r2" {
		t.Fatalf("expected store to hold r2 got %q", refresh)
	}
}

func TestTransportSingleFlightRefresh(t *testing.T) {
	backend, srv := startBackend(t)
	gate := make(chan struct{})
	backend.refreshGate = gate

	store := credentials.NewMemoryStore()
	store.SetTokens(context.Background(), "t1", "r1")
	tr := NewTransport(store, srv.URL+"/auth/refresh-token")

	const n = 5
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			resp, err := tr.RoundTrip(newRequest(t, srv.URL+"/cart", "x"))
			if err == nil {
				if resp.StatusCode != http.StatusOK {
					err = errors.New("unexpected status")
				}
				resp.Body.Close()
			}
			results <- err
		}()
	}

	// Hold the refresh open until every request has failed auth and all but
	// the owner are parked in the queue.
	waitFor(t, "all requests queued", func() bool {
		_, unauthorized, _ := backend.stats()
		return unauthorized == n && tr.pendingLen() == n-1
	})
	close(gate)

	for i := 0; i < n; i++ {
		if err := <-results; err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}

	refreshCalls, _, served := backend.stats()
	if refreshCalls != 1 {
		t.Fatalf("expected exactly one refresh exchange for %d concurrent failures, got %d", n, refreshCalls)
	}
	if len(served) != n {
		t.Fatalf("expected %d replays got %d", n, len(served))
	}
}

func TestTransportReplaysInArrivalOrder(t *testing.T) {
	backend, srv := startBackend(t)
	gate := make(chan struct{})
	backend.refreshGate = gate

	store := credentials.NewMemoryStore()
	store.SetTokens(context.Background(), "t1", "r1")
	tr := NewTransport(store, srv.URL+"/auth/refresh-token")

	var wg sync.WaitGroup
	send := func(tag string) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := tr.RoundTrip(newRequest(t, srv.URL+"/cart", tag))
			if err != nil {
				t.Errorf("request %s: %v", tag, err)
				return
			}
			resp.Body.Close()
		}()
	}

	// A fails first and owns the refresh; B and C arrive, in that order,
	// while the exchange is held open.
	send("A")
	<-backend.refreshStarted
	send("B")
	waitFor(t, "B parked", func() bool { return tr.pendingLen() == 1 })
	send("C")
	waitFor(t, "C parked", func() bool { return tr.pendingLen() == 2 })
	close(gate)
	wg.Wait()

	_, _, served := backend.stats()
	want := []string{"A", "B", "C"}
	if len(served) != len(want) {
		t.Fatalf("expected %d replays got %v", len(want), served)
	}
	for i := range want {
		if served[i] != want[i] {
			t.Fatalf("expected replay order %v got %v", want, served)
		}
	}
}

func TestTransportSingleRetryGuard(t *testing.T) {
	backend, srv := startBackend(t)
	// The resource rejects every token: refresh succeeds but the replay
	// fails auth again, which must surface rather than loop.
	backend.rejectResource = true

	store := credentials.NewMemoryStore()
	store.SetTokens(context.Background(), "t1", "r1")
	tr := NewTransport(store, srv.URL+"/auth/refresh-token")

	resp, err := tr.RoundTrip(newRequest(t, srv.URL+"/cart", "a"))
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected the second 401 to surface, got %d", resp.StatusCode)
	}

	refreshCalls, unauthorized, _ := backend.stats()
	if refreshCalls != 1 {
		t.Fatalf("expected exactly one refresh attempt got %d", refreshCalls)
	}
	if unauthorized != 2 {
		t.Fatalf("expected two auth failures (original and replay), got %d", unauthorized)
	}
}

func TestTransportRefreshFailureCascades(t *testing.T) {
	backend, srv := startBackend(t)
	backend.rejectRefresh = true
	gate := make(chan struct{})
	backend.refreshGate = gate

	store := credentials.NewMemoryStore()
	store.SetTokens(context.Background(), "t1", "r1")
	store.SetUser(context.Background(), userFixture())

	var termMu sync.Mutex
	var terminations int
	tr := NewTransport(store, srv.URL+"/auth/refresh-token",
		WithTerminationCallback(func(error) {
			termMu.Lock()
			terminations++
			termMu.Unlock()
		}),
	)

	const n = 5
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := tr.RoundTrip(newRequest(t, srv.URL+"/cart", "x"))
			results <- err
		}()
	}

	waitFor(t, "all requests queued", func() bool {
		_, unauthorized, _ := backend.stats()
		return unauthorized == n && tr.pendingLen() == n-1
	})
	close(gate)

	for i := 0; i < n; i++ {
		err := <-results
		var re *RefreshError
		if !errors.As(err, &re) {
			t.Fatalf("request %d: expected RefreshError got %v", i, err)
		}
	}

	ctx := context.Background()
	if store.AccessToken(ctx) != "" || store.RefreshToken(ctx) != "" {
		t.Fatal("expected store to be cleared after refresh failure")
	}
	if _, ok := store.User(ctx); ok {
		t.Fatal("expected cached user to be cleared after refresh failure")
	}

	termMu.Lock()
	defer termMu.Unlock()
	if terminations != 1 {
		t.Fatalf("expected termination signal exactly once got %d", terminations)
	}
}

func TestTransportParkedRequestHonorsContext(t *testing.T) {
	backend, srv := startBackend(t)
	gate := make(chan struct{})
	defer close(gate)
	backend.refreshGate = gate

	store := credentials.NewMemoryStore()
	store.SetTokens(context.Background(), "t1", "r1")
	tr := NewTransport(store, srv.URL+"/auth/refresh-token")

	go func() {
		resp, err := tr.RoundTrip(newRequest(t, srv.URL+"/cart", "owner"))
		if err == nil {
			resp.Body.Close()
		}
	}()
	<-backend.refreshStarted

	ctx, cancel := context.WithCancel(context.Background())
	parked := newRequest(t, srv.URL+"/cart", "parked").WithContext(ctx)

	errCh := make(chan error, 1)
	go func() {
		_, err := tr.RoundTrip(parked)
		errCh <- err
	}()

	waitFor(t, "request parked", func() bool { return tr.pendingLen() == 1 })
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("parked request did not observe cancellation")
	}
}
