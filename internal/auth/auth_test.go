package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/j1vetr/EscapeTable/internal/user"
)

func TestPasswordRoundtrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "hunter22") {
		t.Fatal("correct password rejected")
	}
	if CheckPassword(hash, "hunter23") {
		t.Fatal("wrong password accepted")
	}
}

func issueTestSession(t *testing.T, m *Manager, u user.User) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	if _, err := m.Issue(context.Background(), rec, u); err != nil {
		t.Fatalf("issue: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	return cookies[0]
}

func TestSessionIssueAndResolve(t *testing.T) {
	m := NewManager(NewMemorySessionStore(), false)
	cookie := issueTestSession(t, m, user.User{ID: "u1", Role: user.RoleCustomer})

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(cookie)

	sess, err := m.Resolve(req)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if sess.UserID != "u1" || sess.Role != user.RoleCustomer {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestExpiredSessionIsAbsent(t *testing.T) {
	store := NewMemorySessionStore()
	_ = store.Put(context.Background(), Session{
		SID: "old", UserID: "u1", Role: user.RoleCustomer,
		Expire: time.Now().Add(-time.Minute),
	})

	if _, err := store.Get(context.Background(), "old"); err != ErrNoSession {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestRequireUser(t *testing.T) {
	m := NewManager(NewMemorySessionStore(), false)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFrom(r.Context())
		if !ok || sess.UserID != "u1" {
			t.Errorf("session missing from context: %+v", sess)
		}
		w.WriteHeader(http.StatusOK)
	})
	handler := m.RequireUser(next)

	// no cookie -> 401
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	// valid cookie -> 200
	cookie := issueTestSession(t, m, user.User{ID: "u1", Role: user.RoleCustomer})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireStaff(t *testing.T) {
	m := NewManager(NewMemorySessionStore(), false)
	handler := m.RequireStaff(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	customer := issueTestSession(t, m, user.User{ID: "u1", Role: user.RoleCustomer})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(customer)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("customer should get 403, got %d", rec.Code)
	}

	staff := issueTestSession(t, m, user.User{ID: "u2", Role: user.RolePersonnel})
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(staff)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("personnel should pass, got %d", rec.Code)
	}
}

func TestRevokeClearsCookie(t *testing.T) {
	m := NewManager(NewMemorySessionStore(), false)
	cookie := issueTestSession(t, m, user.User{ID: "u1", Role: user.RoleCustomer})

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	m.Revoke(rec, req)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	if _, err := m.Resolve(req); err != ErrNoSession {
		t.Fatalf("session should be gone, got %v", err)
	}
}
