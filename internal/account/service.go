// Package account orchestrates the sign-in lifecycle: it glues the auth API
// to the credential store so the rest of the application only ever asks
// "who am I" and "sign me in/out".
package account

import (
	"context"
	"sync"
	"time"

	"github.com/pricepulse/storefront/internal/api"
	"github.com/pricepulse/storefront/internal/credentials"
	"github.com/pricepulse/storefront/internal/logging"
	"github.com/pricepulse/storefront/internal/models"
)

// Service coordinates authentication flows over the API client and the
// credential store.
type Service struct {
	api   *api.Client
	creds credentials.Store

	mu                   sync.Mutex
	verificationDeadline time.Time
}

// NewService constructs an account service.
func NewService(client *api.Client, store credentials.Store) *Service {
	if client == nil {
		panic("account: api client must not be nil")
	}
	if store == nil {
		panic("account: credential store must not be nil")
	}
	return &Service{api: client, creds: store}
}

// Bootstrap restores the session at application start. The cached profile is
// refreshed opportunistically from /auth/me; when the backend is unreachable
// the cached snapshot is served instead, and when the session turns out to be
// dead the store is cleared.
func (s *Service) Bootstrap(ctx context.Context) (models.User, bool) {
	cached, hasCached := s.creds.User(ctx)
	if s.creds.AccessToken(ctx) == "" {
		return models.User{}, false
	}

	fresh, err := s.api.CurrentUser(ctx)
	if err != nil {
		if api.IsConnectivity(err) && hasCached {
			logging.FromContext(ctx).Debug("serving cached profile, backend unreachable")
			return cached, true
		}
		// Dead session: the transport may already have cleared the store on
		// refresh failure, but clearing again is a no-op.
		if err := s.creds.Clear(ctx); err != nil {
			logging.FromContext(ctx).Warn("clearing stale credentials", "error", err)
		}
		return models.User{}, false
	}

	if err := s.creds.SetUser(ctx, fresh); err != nil {
		logging.FromContext(ctx).Warn("caching refreshed profile", "error", err)
	}
	return fresh, true
}

// SignUp registers a new account. No session is created; the account stays
// pending until the emailed verification code is confirmed.
func (s *Service) SignUp(ctx context.Context, params api.SignupParams) (string, error) {
	result, err := s.api.Signup(ctx, params)
	if err != nil {
		return "", err
	}
	return result.Message, nil
}

// SignIn establishes a session: both tokens are persisted before the cached
// profile so a crash in between never leaves a usable half-session.
func (s *Service) SignIn(ctx context.Context, email, password string) (models.User, error) {
	result, err := s.api.Signin(ctx, email, password)
	if err != nil {
		return models.User{}, err
	}

	if err := s.creds.SetTokens(ctx, result.AccessToken, result.RefreshToken); err != nil {
		return models.User{}, err
	}
	if err := s.creds.SetUser(ctx, result.User); err != nil {
		logging.FromContext(ctx).Warn("caching signed-in profile", "error", err)
	}
	return result.User, nil
}

// SignOut revokes the refresh token server-side when possible and always
// clears local credentials, even if the backend call fails.
func (s *Service) SignOut(ctx context.Context) error {
	if refreshToken := s.creds.RefreshToken(ctx); refreshToken != "" {
		if _, err := s.api.Logout(ctx, refreshToken); err != nil {
			logging.FromContext(ctx).Warn("server-side logout failed", "error", err)
		}
	}
	return s.creds.Clear(ctx)
}

// CurrentUser fetches the authoritative identity and refreshes the cache.
func (s *Service) CurrentUser(ctx context.Context) (models.User, error) {
	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		return models.User{}, err
	}
	if err := s.creds.SetUser(ctx, user); err != nil {
		logging.FromContext(ctx).Warn("caching refreshed profile", "error", err)
	}
	return user, nil
}

// VerifyEmail confirms the emailed code. When the backend auto-logs-in the
// account, the issued bundle is persisted and the user is returned.
func (s *Service) VerifyEmail(ctx context.Context, token string) (models.User, bool, error) {
	result, err := s.api.VerifyEmail(ctx, token)
	if err != nil {
		return models.User{}, false, err
	}

	if result.AccessToken == "" || result.RefreshToken == "" || result.User == nil {
		return models.User{}, false, nil
	}

	if err := s.creds.SetTokens(ctx, result.AccessToken, result.RefreshToken); err != nil {
		return models.User{}, false, err
	}
	if err := s.creds.SetUser(ctx, *result.User); err != nil {
		logging.FromContext(ctx).Warn("caching verified profile", "error", err)
	}
	return *result.User, true, nil
}

// ResendVerification requests a new code and records its expiry so the UI
// can run a countdown.
func (s *Service) ResendVerification(ctx context.Context, email string) (api.ResendVerificationResult, error) {
	result, err := s.api.ResendVerification(ctx, email)
	if err != nil {
		return api.ResendVerificationResult{}, err
	}

	s.mu.Lock()
	s.verificationDeadline = result.ExpiresAt
	s.mu.Unlock()
	return result, nil
}

// VerificationExpiresIn reports the time left on the most recently issued
// verification code, or false when no live code is known.
func (s *Service) VerificationExpiresIn(now time.Time) (time.Duration, bool) {
	s.mu.Lock()
	deadline := s.verificationDeadline
	s.mu.Unlock()

	if deadline.IsZero() || !deadline.After(now) {
		return 0, false
	}
	return deadline.Sub(now), true
}

// ForgotPassword requests a reset email.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	return s.api.ForgotPassword(ctx, email)
}

// ResetPassword applies a reset token.
func (s *Service) ResetPassword(ctx context.Context, token, password string) (string, error) {
	return s.api.ResetPassword(ctx, token, password)
}

// UpdateProfile edits the profile and keeps the cached snapshot current.
func (s *Service) UpdateProfile(ctx context.Context, params api.UpdateProfileParams) (models.Profile, error) {
	result, err := s.api.UpdateProfile(ctx, params)
	if err != nil {
		return models.Profile{}, err
	}

	if cached, ok := s.creds.User(ctx); ok {
		cached.Profile = &result.Profile
		if err := s.creds.SetUser(ctx, cached); err != nil {
			logging.FromContext(ctx).Warn("caching updated profile", "error", err)
		}
	}
	return result.Profile, nil
}
