package session

import "errors"

// ErrNoRefreshToken indicates a refresh was attempted without a stored
// refresh token. The exchange fails immediately without calling the backend;
// there never was a session to recover.
var ErrNoRefreshToken = errors.New("no refresh token stored")

// ConnectivityError reports a transport-level failure (timeout, DNS,
// connection refused). Connectivity faults never trigger the refresh
// protocol; they propagate directly to the caller.
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string {
	return "connectivity: " + e.Err.Error()
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// RefreshError reports that the token-refresh exchange failed. It is terminal
// for the session: by the time a caller observes it, the credential store has
// been cleared and the termination callback has fired.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return "session refresh failed: " + e.Err.Error()
}

func (e *RefreshError) Unwrap() error { return e.Err }
