package credentials

import (
	"context"

	"github.com/pricepulse/storefront/internal/models"
)

// Store persists the credential bundle issued at sign-in: the token pair and
// the cached user profile. A missing or unreadable token is reported as empty
// rather than as an error, since both cases mean the same thing to callers —
// re-authentication is required.
type Store interface {
	// AccessToken returns the stored access token, or "" when none exists.
	AccessToken(ctx context.Context) string
	// RefreshToken returns the stored refresh token, or "" when none exists.
	RefreshToken(ctx context.Context) string
	// SetTokens replaces the stored token pair. A concurrent reader never
	// observes one new token paired with the other's old value.
	SetTokens(ctx context.Context, access, refresh string) error
	// User returns the cached profile snapshot, if any.
	User(ctx context.Context) (models.User, bool)
	// SetUser replaces the cached profile snapshot.
	SetUser(ctx context.Context, user models.User) error
	// Clear removes the token pair and the cached user in one logical
	// operation. Clearing an empty store is a no-op, not an error.
	Clear(ctx context.Context) error
}
