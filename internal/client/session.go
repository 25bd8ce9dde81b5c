package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/zalando/go-keyring"

	"github.com/jonathan/job-tracker/internal/config"
	"github.com/jonathan/job-tracker/internal/types"
)

// KeyringService groups jobtrack sessions in the OS keychain.
const KeyringService = "jobtrack"

// Session is the signed-in state persisted between CLI runs.
type Session struct {
	Token   string      `json:"token"`
	User    *types.User `json:"user"`
	SavedAt time.Time   `json:"saved_at"`
}

// SessionStore persists at most one session. Load returns (nil, nil) when
// nothing is stored.
type SessionStore interface {
	Load() (*Session, error)
	Save(s *Session) error
	Clear() error
}

// Purger is implemented by stores that leave artifacts behind after Clear.
type Purger interface {
	Purge() error
}

// NewSessionStore returns the store named by cfg.SessionStore.
func NewSessionStore(cfg config.Config) (SessionStore, error) {
	switch cfg.SessionStore {
	case config.SessionStoreFile:
		if cfg.SessionFile == "" {
			return nil, fmt.Errorf("session_file is required for the file session store")
		}
		return NewFileStore(cfg.SessionFile), nil
	case config.SessionStoreKeyring, "":
		return NewKeyringStore(cfg.KeyringAccount)
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
}

// KeyringStore keeps the session in the OS keychain.
type KeyringStore struct {
	account string
}

// NewKeyringStore returns a store for the named keyring account.
func NewKeyringStore(account string) (*KeyringStore, error) {
	if strings.TrimSpace(account) == "" {
		return nil, errors.New("keyring account name is empty")
	}
	return &KeyringStore{account: account}, nil
}

// Load reads the session from the keychain.
func (k *KeyringStore) Load() (*Session, error) {
	data, err := keyring.Get(KeyringService, k.account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session from keyring: %w", err)
	}
	return decodeSession([]byte(data))
}

// Save writes the session to the keychain.
func (k *KeyringStore) Save(s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := keyring.Set(KeyringService, k.account, string(data)); err != nil {
		return fmt.Errorf("failed to write session to keyring: %w", err)
	}
	return nil
}

// Clear deletes the keychain entry. A missing entry is not an error.
func (k *KeyringStore) Clear() error {
	err := keyring.Delete(KeyringService, k.account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete session from keyring: %w", err)
	}
	return nil
}

// FileStore keeps the session in a 0600 JSON file. Access is serialized
// across processes with a lock file next to it.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the session file location.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) lockPath() string {
	return f.path + ".lock"
}

// Load reads the session file.
func (f *FileStore) Load() (*Session, error) {
	if _, err := os.Stat(f.path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	lock := flock.New(f.lockPath())
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("failed to lock session file: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	return decodeSession(data)
}

// Save replaces the session file atomically.
func (f *FileStore) Save(s *Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	lock := flock.New(f.lockPath())
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock session file: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// Clear removes the session file. A missing file is not an error.
func (f *FileStore) Clear() error {
	if _, err := os.Stat(filepath.Dir(f.path)); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	lock := flock.New(f.lockPath())
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock session file: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// Purge clears the session and removes the lock file.
func (f *FileStore) Purge() error {
	if err := f.Clear(); err != nil {
		return err
	}
	if err := os.Remove(f.lockPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session lock: %w", err)
	}
	return nil
}

func decodeSession(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &s, nil
}

// Route is the screen a CLI run starts on.
type Route string

const (
	RouteSignIn Route = "signin"
	RouteHome   Route = "home"
)

// TokenExpiry reads the exp claim without verifying the signature. Only the
// server can verify the token; the client uses exp to skip a request it
// knows would be rejected.
func TokenExpiry(token string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse session token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("session token has no expiry")
	}
	return claims.ExpiresAt.Time, nil
}

// Bootstrap decides the starting route from the stored session. It never
// fails: anything other than a readable, unexpired session routes to sign
// in. Expired or unreadable tokens are cleared from the store.
func Bootstrap(store SessionStore, now time.Time) (Route, *Session) {
	s, err := store.Load()
	if err != nil {
		log.Printf("[session] failed to load session: %v", err)
		return RouteSignIn, nil
	}
	if s == nil || s.Token == "" {
		return RouteSignIn, nil
	}

	exp, err := TokenExpiry(s.Token)
	if err != nil || !now.Before(exp) {
		if err != nil {
			log.Printf("[session] discarding session: %v", err)
		}
		if clearErr := store.Clear(); clearErr != nil {
			log.Printf("[session] failed to clear session: %v", clearErr)
		}
		return RouteSignIn, nil
	}
	return RouteHome, s
}

// SignOut clears the stored session. With purge, every store's leftover
// artifacts are removed as well.
func SignOut(purge bool, stores ...SessionStore) error {
	var errs []error
	for _, store := range stores {
		if err := store.Clear(); err != nil {
			errs = append(errs, err)
			continue
		}
		if p, ok := store.(Purger); ok && purge {
			if err := p.Purge(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
