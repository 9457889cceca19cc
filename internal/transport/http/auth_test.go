package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sheraliozodov77/ostaa-app/internal/clock"
	"github.com/sheraliozodov77/ostaa-app/internal/session"
)

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	newGate := func(t *testing.T, sessions SessionStore) (http.Handler, *string) {
		t.Helper()
		var seen string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, ok := IdentityFromContext(r.Context())
			if !ok {
				t.Errorf("expected identity in context")
			}
			seen = username
			w.WriteHeader(http.StatusOK)
		})
		return RequireAuth(sessions, next), &seen
	}

	t.Run("valid cookie token passes", func(t *testing.T) {
		sessions := session.NewManager(clock.NewSystem())
		token, err := sessions.Create("alice")
		if err != nil {
			t.Fatalf("create session: %v", err)
		}
		gate, seen := newGate(t, sessions)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if *seen != "alice" {
			t.Fatalf("expected identity alice, got %q", *seen)
		}
	})

	t.Run("bearer token passes", func(t *testing.T) {
		sessions := session.NewManager(clock.NewSystem())
		token, err := sessions.Create("alice")
		if err != nil {
			t.Fatalf("create session: %v", err)
		}
		gate, _ := newGate(t, sessions)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("missing token is 401", func(t *testing.T) {
		sessions := session.NewManager(clock.NewSystem())
		gate := RequireAuth(sessions, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("next handler must not run")
		}))

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("unknown token is 401", func(t *testing.T) {
		sessions := session.NewManager(clock.NewSystem())
		gate := RequireAuth(sessions, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("next handler must not run")
		}))

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "forged"})
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("expired token is 401", func(t *testing.T) {
		sessions := session.NewManager(clock.NewSystem(), session.WithTTL(time.Nanosecond))
		token, err := sessions.Create("alice")
		if err != nil {
			t.Fatalf("create session: %v", err)
		}
		time.Sleep(time.Millisecond)

		gate := RequireAuth(sessions, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("next handler must not run")
		}))

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
