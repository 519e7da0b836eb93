package credentials

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/pricepulse/storefront/internal/logging"
	"github.com/pricepulse/storefront/internal/models"
)

const (
	secretFile = "vault.key"
	vaultFile  = "vault.bin"
	userFile   = "user.json"

	secretSize = 32
	saltSize   = 16
)

// argon2id parameters for deriving the vault key from the machine secret.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// FileStore is a durable Store. The token pair lives in a single encrypted
// vault file sealed with a key derived from a machine-local secret; the cached
// user profile holds no secret and lives in a plain JSON file next to it.
// Storing both tokens in one file makes every token write atomic with respect
// to readers.
type FileStore struct {
	dir    string
	secret []byte

	mu sync.RWMutex
}

type vaultPayload struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// NewFileStore opens (or initializes) a credential store rooted at dir.
// The machine secret is generated on first use and kept readable only by the
// owning user.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("credentials: store directory must be provided")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create credentials dir: %w", err)
	}

	secret, err := loadOrCreateSecret(filepath.Join(dir, secretFile))
	if err != nil {
		return nil, err
	}

	return &FileStore{dir: dir, secret: secret}, nil
}

// AccessToken returns the stored access token, or "" when none exists.
// Storage faults are swallowed: an unreadable vault means no session.
func (s *FileStore) AccessToken(ctx context.Context) string {
	return s.readVault(ctx).AccessToken
}

// RefreshToken returns the stored refresh token, or "" when none exists.
func (s *FileStore) RefreshToken(ctx context.Context) string {
	return s.readVault(ctx).RefreshToken
}

// SetTokens seals both tokens into the vault in a single write. The vault is
// written to a temporary file and renamed into place so readers see either the
// old pair or the new pair, never a mix.
func (s *FileStore) SetTokens(_ context.Context, access, refresh string) error {
	plain, err := json.Marshal(vaultPayload{AccessToken: access, RefreshToken: refresh})
	if err != nil {
		return fmt.Errorf("encode vault payload: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generate vault salt: %w", err)
	}

	aead, err := chacha20poly1305.NewX(s.deriveKey(salt))
	if err != nil {
		return fmt.Errorf("init vault cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generate vault nonce: %w", err)
	}

	blob := append(salt, nonce...)
	blob = aead.Seal(blob, nonce, plain, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFileAtomic(filepath.Join(s.dir, vaultFile), blob, 0o600)
}

// User returns the cached profile snapshot, if any.
func (s *FileStore) User(_ context.Context) (models.User, bool) {
	s.mu.RLock()
	raw, err := os.ReadFile(filepath.Join(s.dir, userFile))
	s.mu.RUnlock()
	if err != nil {
		return models.User{}, false
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return models.User{}, false
	}
	return user, true
}

// SetUser replaces the cached profile snapshot.
func (s *FileStore) SetUser(_ context.Context, user models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode cached user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFileAtomic(filepath.Join(s.dir, userFile), raw, 0o600)
}

// Clear removes the vault and the cached user. Missing files are not errors,
// so clearing an empty store is a no-op.
func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, name := range []string{vaultFile, userFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			if firstErr == nil {
				firstErr = fmt.Errorf("remove %s: %w", name, err)
			}
		}
	}
	return firstErr
}

func (s *FileStore) readVault(ctx context.Context) vaultPayload {
	s.mu.RLock()
	blob, err := os.ReadFile(filepath.Join(s.dir, vaultFile))
	s.mu.RUnlock()
	if err != nil {
		return vaultPayload{}
	}

	if len(blob) < saltSize+chacha20poly1305.NonceSizeX {
		logging.FromContext(ctx).Warn("credential vault truncated, treating as empty")
		return vaultPayload{}
	}

	salt := blob[:saltSize]
	nonce := blob[saltSize : saltSize+chacha20poly1305.NonceSizeX]
	sealed := blob[saltSize+chacha20poly1305.NonceSizeX:]

	aead, err := chacha20poly1305.NewX(s.deriveKey(salt))
	if err != nil {
		return vaultPayload{}
	}

	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		logging.FromContext(ctx).Warn("credential vault unreadable, treating as empty", "error", err)
		return vaultPayload{}
	}

	var payload vaultPayload
	if err := json.Unmarshal(plain, &payload); err != nil {
		return vaultPayload{}
	}
	return payload
}

func (s *FileStore) deriveKey(salt []byte) []byte {
	return argon2.IDKey(s.secret, salt, argonTime, argonMemory, argonThreads, chacha20poly1305.KeySize)
}

func loadOrCreateSecret(path string) ([]byte, error) {
	secret, err := os.ReadFile(path)
	if err == nil && len(secret) == secretSize {
		return secret, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read machine secret: %w", err)
	}

	secret = make([]byte, secretSize)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate machine secret: %w", err)
	}
	if err := writeFileAtomic(path, secret, 0o600); err != nil {
		return nil, fmt.Errorf("persist machine secret: %w", err)
	}
	return secret, nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
