// Package auth implements cookie sessions backed by the sessions table and
// the role middleware in front of protected routes. Passwords are bcrypt
// hashes; the cookie carries only an opaque session id.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/j1vetr/EscapeTable/internal/user"
)

// CookieName is the session cookie.
const CookieName = "etsession"

// SessionTTL matches the storefront's one-week login lifetime.
const SessionTTL = 7 * 24 * time.Hour

var ErrNoSession = errors.New("no session")

type Session struct {
	SID    string
	UserID string
	Role   user.Role
	Expire time.Time
}

// SessionStore persists sessions. Expired sessions must behave as absent.
type SessionStore interface {
	Get(ctx context.Context, sid string) (Session, error)
	Put(ctx context.Context, s Session) error
	Delete(ctx context.Context, sid string) error
}

type sessionPayload struct {
	UserID string    `json:"userId"`
	Role   user.Role `json:"role"`
}

type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresSessionStore keeps sessions in the sessions table (sid, sess
// jsonb, expire). Expired rows are deleted lazily on lookup.
type PostgresSessionStore struct {
	pool DBPool
}

func NewPostgresSessionStore(pool DBPool) *PostgresSessionStore {
	return &PostgresSessionStore{pool: pool}
}

func (s *PostgresSessionStore) Get(ctx context.Context, sid string) (Session, error) {
	var (
		raw    []byte
		expire time.Time
	)
	err := s.pool.QueryRow(ctx, `SELECT sess, expire FROM sessions WHERE sid=$1`, sid).Scan(&raw, &expire)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrNoSession
		}
		return Session{}, err
	}
	if time.Now().After(expire) {
		_, _ = s.pool.Exec(ctx, `DELETE FROM sessions WHERE sid=$1`, sid)
		return Session{}, ErrNoSession
	}

	var p sessionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Session{}, ErrNoSession
	}
	return Session{SID: sid, UserID: p.UserID, Role: p.Role, Expire: expire}, nil
}

func (s *PostgresSessionStore) Put(ctx context.Context, sess Session) error {
	raw, err := json.Marshal(sessionPayload{UserID: sess.UserID, Role: sess.Role})
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO sessions (sid, sess, expire)
		VALUES ($1, $2, $3)
		ON CONFLICT (sid) DO UPDATE SET sess=EXCLUDED.sess, expire=EXCLUDED.expire`,
		sess.SID, raw, sess.Expire)
	return err
}

func (s *PostgresSessionStore) Delete(ctx context.Context, sid string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE sid=$1`, sid)
	return err
}

// Manager issues and resolves session cookies.
type Manager struct {
	store  SessionStore
	secure bool
}

func NewManager(store SessionStore, secureCookies bool) *Manager {
	return &Manager{store: store, secure: secureCookies}
}

// Issue creates a session for the user and sets the cookie.
func (m *Manager) Issue(ctx context.Context, w http.ResponseWriter, u user.User) (Session, error) {
	sess := Session{
		SID:    newSID(),
		UserID: u.ID,
		Role:   u.Role,
		Expire: time.Now().Add(SessionTTL),
	}
	if err := m.store.Put(ctx, sess); err != nil {
		return Session{}, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.SID,
		Path:     "/",
		Expires:  sess.Expire,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

// Resolve returns the session for the request's cookie, if any.
func (m *Manager) Resolve(r *http.Request) (Session, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return Session{}, ErrNoSession
	}
	return m.store.Get(r.Context(), c.Value)
}

// Revoke deletes the request's session and expires the cookie.
func (m *Manager) Revoke(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		_ = m.store.Delete(r.Context(), c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
	})
}

func newSID() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	return hex.EncodeToString(b)
}

// MemorySessionStore is an in-memory SessionStore for tests.
type MemorySessionStore struct {
	sessions map[string]Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]Session)}
}

func (m *MemorySessionStore) Get(ctx context.Context, sid string) (Session, error) {
	s, ok := m.sessions[sid]
	if !ok || time.Now().After(s.Expire) {
		delete(m.sessions, sid)
		return Session{}, ErrNoSession
	}
	return s, nil
}

func (m *MemorySessionStore) Put(ctx context.Context, s Session) error {
	m.sessions[s.SID] = s
	return nil
}

func (m *MemorySessionStore) Delete(ctx context.Context, sid string) error {
	delete(m.sessions, sid)
	return nil
}
