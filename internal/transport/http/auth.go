package http

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session_id"

// SessionStore is the gate's view of the session registry. It is pure
// in-memory state; the gate never touches the database.
type SessionStore interface {
	Lookup(token string) (string, bool)
	Create(username string) (string, error)
	Revoke(token string)
	TTL() time.Duration
}

type identityKey struct{}

// IdentityFromContext returns the username RequireAuth stored for the
// request.
func IdentityFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(identityKey{}).(string)
	return username, ok
}

// RequireAuth resolves the inbound token against the session registry and
// either forwards the request with the identity in its context or ends it
// with 401. Callers must treat the 401 as terminal and re-authenticate.
func RequireAuth(sessions SessionStore, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := tokenFromRequest(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthenticated, "authentication required")
			return
		}
		username, ok := sessions.Lookup(token)
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthenticated, "session expired or invalid")
			return
		}
		ctx := context.WithValue(r.Context(), identityKey{}, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tokenFromRequest reads the session token from the session cookie or an
// Authorization bearer header. Transport detail only; validity is the
// registry's call.
func tokenFromRequest(r *http.Request) (string, bool) {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	authz := r.Header.Get("Authorization")
	if token, found := strings.CutPrefix(authz, "Bearer "); found && token != "" {
		return token, true
	}
	return "", false
}

func setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
