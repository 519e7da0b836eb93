package credentials

import (
	"context"
	"sync"

	"github.com/pricepulse/storefront/internal/models"
)

// NewMemoryStore returns a Store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// MemoryStore implements Store for tests and ephemeral sessions.
type MemoryStore struct {
	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	user         models.User
	hasUser      bool
}

// AccessToken returns the stored access token, or "" when none exists.
func (s *MemoryStore) AccessToken(_ context.Context) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the stored refresh token, or "" when none exists.
func (s *MemoryStore) RefreshToken(_ context.Context) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// SetTokens replaces both tokens under one lock acquisition.
func (s *MemoryStore) SetTokens(_ context.Context, access, refresh string) error {
	s.mu.Lock()
	s.accessToken = access
	s.refreshToken = refresh
	s.mu.Unlock()
	return nil
}

// User returns the cached profile snapshot, if any.
func (s *MemoryStore) User(_ context.Context) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.hasUser
}

// SetUser replaces the cached profile snapshot.
func (s *MemoryStore) SetUser(_ context.Context, user models.User) error {
	s.mu.Lock()
	s.user = user
	s.hasUser = true
	s.mu.Unlock()
	return nil
}

// Clear removes tokens and the cached user. Idempotent.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.user = models.User{}
	s.hasUser = false
	s.mu.Unlock()
	return nil
}
