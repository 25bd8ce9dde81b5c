package client

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/jonathan/job-tracker/internal/config"
	"github.com/jonathan/job-tracker/internal/types"
)

var sessionNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("client-test-secret"))
	require.NoError(t, err)
	return token
}

func testSession(t *testing.T, exp time.Time) *Session {
	return &Session{
		Token:   signedToken(t, exp),
		User:    &types.User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com"},
		SavedAt: sessionNow,
	}
}

// memoryStore is a SessionStore whose failures can be scripted.
type memoryStore struct {
	session  *Session
	loadErr  error
	clearErr error
	cleared  int
}

func (m *memoryStore) Load() (*Session, error) { return m.session, m.loadErr }
func (m *memoryStore) Save(s *Session) error   { m.session = s; return nil }
func (m *memoryStore) Clear() error {
	m.cleared++
	if m.clearErr != nil {
		return m.clearErr
	}
	m.session = nil
	return nil
}

func TestKeyringStore_RoundTrip(t *testing.T) {
	keyring.MockInit()
	store, err := NewKeyringStore("test")
	require.NoError(t, err)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	s := testSession(t, sessionNow.Add(time.Hour))
	require.NoError(t, store.Save(s))

	loaded, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, s.Token, loaded.Token)
	assert.Equal(t, s.User.Email, loaded.User.Email)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear(), "clearing twice is not an error")

	loaded, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestKeyringStore_EmptyAccount(t *testing.T) {
	_, err := NewKeyringStore("  ")
	assert.Error(t, err)
}

func TestKeyringStore_CorruptEntry(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set(KeyringService, "corrupt", "{not json"))
	store, err := NewKeyringStore("corrupt")
	require.NoError(t, err)

	_, err = store.Load()
	assert.Error(t, err)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	s := testSession(t, sessionNow.Add(time.Hour))
	require.NoError(t, store.Save(s))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, s.Token, loaded.Token)
	assert.True(t, s.SavedAt.Equal(loaded.SavedAt))

	require.NoError(t, store.Clear())
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.FileExists(t, path+".lock")

	require.NoError(t, store.Purge())
	assert.NoFileExists(t, path+".lock")
}

func TestFileStore_ClearWithoutDirectory(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "missing", "session.json"))
	assert.NoError(t, store.Clear())
	assert.NoError(t, store.Purge())
}

func TestNewSessionStore(t *testing.T) {
	keyring.MockInit()

	store, err := NewSessionStore(config.Config{SessionStore: config.SessionStoreFile, SessionFile: filepath.Join(t.TempDir(), "s.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	store, err = NewSessionStore(config.Config{SessionStore: config.SessionStoreKeyring, KeyringAccount: "default"})
	require.NoError(t, err)
	assert.IsType(t, &KeyringStore{}, store)

	_, err = NewSessionStore(config.Config{SessionStore: config.SessionStoreFile})
	assert.Error(t, err)

	_, err = NewSessionStore(config.Config{SessionStore: "vault"})
	assert.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	exp := sessionNow.Add(2 * time.Hour)
	got, err := TokenExpiry(signedToken(t, exp))
	require.NoError(t, err)
	assert.True(t, got.Equal(exp))

	_, err = TokenExpiry("not-a-token")
	assert.Error(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "x"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = TokenExpiry(noExp)
	assert.Error(t, err)
}

func TestBootstrap(t *testing.T) {
	t.Run("no session", func(t *testing.T) {
		route, s := Bootstrap(&memoryStore{}, sessionNow)
		assert.Equal(t, RouteSignIn, route)
		assert.Nil(t, s)
	})

	t.Run("valid session", func(t *testing.T) {
		stored := testSession(t, sessionNow.Add(time.Hour))
		store := &memoryStore{session: stored}

		route, s := Bootstrap(store, sessionNow)
		assert.Equal(t, RouteHome, route)
		assert.Same(t, stored, s)
		assert.Zero(t, store.cleared)
	})

	t.Run("expired session is cleared", func(t *testing.T) {
		store := &memoryStore{session: testSession(t, sessionNow.Add(-time.Minute))}

		route, s := Bootstrap(store, sessionNow)
		assert.Equal(t, RouteSignIn, route)
		assert.Nil(t, s)
		assert.Equal(t, 1, store.cleared)
		assert.Nil(t, store.session)
	})

	t.Run("token expiring exactly now is expired", func(t *testing.T) {
		store := &memoryStore{session: testSession(t, sessionNow)}

		route, _ := Bootstrap(store, sessionNow)
		assert.Equal(t, RouteSignIn, route)
	})

	t.Run("garbage token is cleared", func(t *testing.T) {
		store := &memoryStore{session: &Session{Token: "garbage"}}

		route, _ := Bootstrap(store, sessionNow)
		assert.Equal(t, RouteSignIn, route)
		assert.Equal(t, 1, store.cleared)
	})

	t.Run("load error routes to sign in", func(t *testing.T) {
		store := &memoryStore{loadErr: errors.New("keychain locked")}

		route, s := Bootstrap(store, sessionNow)
		assert.Equal(t, RouteSignIn, route)
		assert.Nil(t, s)
		assert.Zero(t, store.cleared)
	})

	t.Run("clear failure still routes to sign in", func(t *testing.T) {
		store := &memoryStore{
			session:  testSession(t, sessionNow.Add(-time.Hour)),
			clearErr: errors.New("read-only"),
		}

		route, _ := Bootstrap(store, sessionNow)
		assert.Equal(t, RouteSignIn, route)
	})
}

func TestSignOut(t *testing.T) {
	keyring.MockInit()
	kr, err := NewKeyringStore("signout")
	require.NoError(t, err)
	fs := NewFileStore(filepath.Join(t.TempDir(), "session.json"))

	s := testSession(t, sessionNow.Add(time.Hour))
	require.NoError(t, kr.Save(s))
	require.NoError(t, fs.Save(s))

	require.NoError(t, SignOut(true, kr, fs))

	loaded, err := kr.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
	loaded, err = fs.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
	assert.NoFileExists(t, fs.Path()+".lock")

	failing := &memoryStore{clearErr: errors.New("boom")}
	assert.EqualError(t, SignOut(false, failing), "boom")
}
