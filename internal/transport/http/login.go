package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sheraliozodov77/ostaa-app/internal/app"
	"github.com/sheraliozodov77/ostaa-app/internal/domain"
)

// CredentialChecker is the minimal interface needed to verify a login.
type CredentialChecker interface {
	Login(ctx context.Context, in app.LoginInput) (domain.User, error)
}

// HandleLogin returns an HTTP handler that verifies credentials and issues
// a session. Unknown usernames and wrong passwords get the same response.
func HandleLogin(svc CredentialChecker, sessions SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req loginRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		user, err := svc.Login(r.Context(), app.LoginInput{
			Username: req.Username,
			Secret:   req.Password,
		})
		if err != nil {
			switch err {
			case domain.ErrInvalidCredentials:
				writeError(w, http.StatusUnauthorized, codeInvalidCredentials, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		token, err := sessions.Create(user.Username)
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		setSessionCookie(w, token, sessions.TTL())
		resp := loginResponse{Username: user.Username, Token: token}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleLogout revokes the caller's session, if any, and clears the cookie.
// Safe to call repeatedly.
func HandleLogout(sessions SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		if token, ok := tokenFromRequest(r); ok {
			sessions.Revoke(token)
		}
		clearSessionCookie(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleCurrentIdentity reports the authenticated username. It runs behind
// RequireAuth.
func HandleCurrentIdentity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		username, ok := IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthenticated, "authentication required")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(identityResponse{Username: username})
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

type identityResponse struct {
	Username string `json:"username"`
}
