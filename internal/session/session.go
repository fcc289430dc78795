// Package session implements Redis backed session continuity: idle timeout
// tracking, extension with token rotation, and teardown.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/harborview-hms/harborview/internal/shared"
)

// Session is the persisted record correlating an opaque token to a principal.
type Session struct {
	Token          string
	PrincipalID    int64
	IssuedAt       time.Time
	LastActivityAt time.Time
}

type sessionPayload struct {
	PrincipalID    int64     `json:"principal_id"`
	IssuedAt       time.Time `json:"issued_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// Manager owns session records in Redis. The idle timeout is fixed
// configuration, never caller controllable.
type Manager struct {
	client      *redis.Client
	cookieName  string
	idleTimeout time.Duration
	secure      bool
}

// rotateScript swaps the old session key for the new one in a single atomic
// step. If the old key is already gone (concurrent extension or expiry) the
// script writes nothing and returns 0, so exactly one rotated token stays
// usable.
var rotateScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return 0
end
redis.call('SET', KEYS[2], ARGV[1], 'PX', ARGV[2])
redis.call('DEL', KEYS[1])
return 1
`)

// NewManager constructs a Manager.
func NewManager(client *redis.Client, cookieName string, idleTimeout time.Duration, secure bool) *Manager {
	return &Manager{
		client:      client,
		cookieName:  cookieName,
		idleTimeout: idleTimeout,
		secure:      secure,
	}
}

// Issue creates a session for a freshly authenticated principal. This is the
// single integration point for the external login flow; no credential
// handling happens in this layer.
func (m *Manager) Issue(ctx context.Context, principalID int64, now time.Time) (*Session, error) {
	sess := &Session{
		Token:          m.generateToken(),
		PrincipalID:    principalID,
		IssuedAt:       now,
		LastActivityAt: now,
	}
	if err := m.store(ctx, sess); err != nil {
		return nil, fmt.Errorf("session: issue: %w", err)
	}
	return sess, nil
}

// Load resolves a token to its session record. Unknown tokens yield
// shared.ErrUnauthenticated.
func (m *Manager) Load(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, shared.ErrUnauthenticated
	}
	data, err := m.client.Get(ctx, m.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrUnauthenticated
		}
		return nil, fmt.Errorf("session: load: %w", err)
	}
	var stored sessionPayload
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	return &Session{
		Token:          token,
		PrincipalID:    stored.PrincipalID,
		IssuedAt:       stored.IssuedAt,
		LastActivityAt: stored.LastActivityAt,
	}, nil
}

// IsValid reports whether the session is inside its idle window at the given
// instant.
func (m *Manager) IsValid(sess *Session, now time.Time) bool {
	if sess == nil {
		return false
	}
	return now.Sub(sess.LastActivityAt) < m.idleTimeout
}

// Extend refreshes last activity and rotates the token. The rotation is a
// single atomic swap: the old token stops resolving the instant the new one
// exists. Extending an already idle-expired session fails with
// shared.ErrSessionExpired and tears the record down; callers redirect to
// re-authentication instead of silently reviving a dead session. Under
// concurrent extension of the same session the first swap wins and the loser
// observes shared.ErrSessionExpired for its stale token.
func (m *Manager) Extend(ctx context.Context, sess *Session, now time.Time) (*Session, error) {
	if sess == nil {
		return nil, shared.ErrUnauthenticated
	}
	if !m.IsValid(sess, now) {
		_ = m.Destroy(ctx, sess.Token)
		return nil, shared.ErrSessionExpired
	}

	next := &Session{
		Token:          m.generateToken(),
		PrincipalID:    sess.PrincipalID,
		IssuedAt:       sess.IssuedAt,
		LastActivityAt: now,
	}
	payload, err := json.Marshal(sessionPayload{
		PrincipalID:    next.PrincipalID,
		IssuedAt:       next.IssuedAt,
		LastActivityAt: next.LastActivityAt,
	})
	if err != nil {
		return nil, fmt.Errorf("session: encode: %w", err)
	}

	swapped, err := rotateScript.Run(ctx, m.client,
		[]string{m.key(sess.Token), m.key(next.Token)},
		payload, m.idleTimeout.Milliseconds()).Int()
	if err != nil {
		return nil, fmt.Errorf("session: rotate: %w", err)
	}
	if swapped == 0 {
		return nil, shared.ErrSessionExpired
	}
	return next, nil
}

// Destroy removes the session record. Idempotent.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.client.Del(ctx, m.key(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("session: destroy: %w", err)
	}
	return nil
}

// ExpiresAt returns the instant the session becomes idle-expired.
func (m *Manager) ExpiresAt(sess *Session) time.Time {
	return sess.LastActivityAt.Add(m.idleTimeout)
}

// IdleTimeout exposes the configured idle window.
func (m *Manager) IdleTimeout() time.Duration {
	return m.idleTimeout
}

// CookieName returns the cookie identifier used for sessions.
func (m *Manager) CookieName() string {
	return m.cookieName
}

func (m *Manager) store(ctx context.Context, sess *Session) error {
	payload, err := json.Marshal(sessionPayload{
		PrincipalID:    sess.PrincipalID,
		IssuedAt:       sess.IssuedAt,
		LastActivityAt: sess.LastActivityAt,
	})
	if err != nil {
		return err
	}
	return m.client.Set(ctx, m.key(sess.Token), payload, m.idleTimeout).Err()
}

func (m *Manager) key(token string) string {
	return "session:" + token
}

func (m *Manager) generateToken() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return base64.RawURLEncoding.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
