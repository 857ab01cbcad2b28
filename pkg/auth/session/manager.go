// Package session keeps back-office sessions in Redis, keyed by the access
// token's jti. Only a digest of each refresh token is stored.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/its27-backend/pkg/config"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

const refreshTokenBytes = 32

var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrSessionNotFound     = errors.New("session not found")

	errAccessIDRequired = errors.New("access id is required")
)

// Store is the Redis surface the manager needs.
type Store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AccessSessionKey(accessID string) string
}

// AccessSessionChecker is what the auth middleware asks on every request.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventSignedOut EventType = "signed_out"
	EventRefreshed EventType = "refreshed"
)

// Event describes one authentication state change.
type Event struct {
	Type     EventType
	AccessID string
	UserID   uuid.UUID
	At       time.Time
}

// Listener observes session changes. It runs synchronously on the request
// goroutine.
type Listener func(ctx context.Context, evt Event)

// Session is the server-side record behind an access token.
type Session struct {
	AccessID    string    `json:"-"`
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	RefreshHash string    `json:"refresh_hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// Manager issues, rotates and revokes sessions and reports each change to a
// single registered listener.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time

	mu       sync.RWMutex
	listener Listener
}

// NewManager requires the refresh lifetime to outlast the access token, or a
// client could never refresh.
func NewManager(store Store, cfg config.JWTConfig) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	ttl := cfg.RefreshTokenTTL()
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	switch {
	case ttl <= 0:
		return nil, errors.New("refresh token ttl must be positive")
	case ttl <= accessTTL:
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}
	return &Manager{store: store, ttl: ttl, now: time.Now}, nil
}

// OnChange sets the listener; a later call replaces it and nil clears it.
func (m *Manager) OnChange(fn Listener) {
	m.mu.Lock()
	m.listener = fn
	m.mu.Unlock()
}

func (m *Manager) notify(ctx context.Context, typ EventType, accessID string, userID uuid.UUID) {
	m.mu.RLock()
	fn := m.listener
	m.mu.RUnlock()
	if fn != nil {
		fn(ctx, Event{Type: typ, AccessID: accessID, UserID: userID, At: m.now().UTC()})
	}
}

// Generate opens a session under accessID and returns its refresh token.
func (m *Manager) Generate(ctx context.Context, accessID string, userID uuid.UUID, email string) (string, error) {
	if strings.TrimSpace(accessID) == "" {
		return "", errAccessIDRequired
	}
	sess := Session{UserID: userID, Email: email, CreatedAt: m.now().UTC()}
	token, err := m.issue(ctx, accessID, &sess)
	if err != nil {
		return "", err
	}
	m.notify(ctx, EventSignedIn, accessID, userID)
	return token, nil
}

// Rotate trades a valid refresh token for a new access id and refresh token.
// The old session is deleted, so each refresh token works once.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, provided string) (newAccessID, newToken string, err error) {
	if strings.TrimSpace(oldAccessID) == "" || strings.TrimSpace(provided) == "" {
		return "", "", ErrInvalidRefreshToken
	}
	sess, err := m.load(ctx, oldAccessID)
	if errors.Is(err, ErrSessionNotFound) {
		return "", "", ErrInvalidRefreshToken
	}
	if err != nil {
		return "", "", err
	}
	if subtle.ConstantTimeCompare([]byte(sess.RefreshHash), []byte(digest(provided))) != 1 {
		return "", "", ErrInvalidRefreshToken
	}

	newAccessID = NewAccessID()
	if newToken, err = m.issue(ctx, newAccessID, sess); err != nil {
		return "", "", err
	}
	if err := m.store.Del(ctx, m.store.AccessSessionKey(oldAccessID)); err != nil {
		return "", "", err
	}
	m.notify(ctx, EventRefreshed, newAccessID, sess.UserID)
	return newAccessID, newToken, nil
}

// Revoke ends the session; revoking an unknown session is not an error.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return errAccessIDRequired
	}
	sess, err := m.load(ctx, accessID)
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	if err := m.store.Del(ctx, m.store.AccessSessionKey(accessID)); err != nil {
		return err
	}
	if sess != nil {
		m.notify(ctx, EventSignedOut, accessID, sess.UserID)
	}
	return nil
}

// Get returns the session for accessID or ErrSessionNotFound.
func (m *Manager) Get(ctx context.Context, accessID string) (*Session, error) {
	if strings.TrimSpace(accessID) == "" {
		return nil, errAccessIDRequired
	}
	return m.load(ctx, accessID)
}

func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	_, err := m.Get(ctx, accessID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrSessionNotFound):
		return false, nil
	default:
		return false, err
	}
}

// issue stores sess under accessID with a fresh refresh token.
func (m *Manager) issue(ctx context.Context, accessID string, sess *Session) (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	sess.RefreshHash = digest(token)

	raw, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	if err := m.store.Set(ctx, m.store.AccessSessionKey(accessID), string(raw), m.ttl); err != nil {
		return "", err
	}
	sess.AccessID = accessID
	return token, nil
}

func (m *Manager) load(ctx context.Context, accessID string) (*Session, error) {
	raw, err := m.store.Get(ctx, m.store.AccessSessionKey(accessID))
	if errors.Is(err, redislib.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	sess.AccessID = accessID
	return &sess, nil
}

// NewAccessID returns the id used as JWT jti and Redis key suffix.
func NewAccessID() string {
	return uuid.NewString()
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
