package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sheraliozodov77/ostaa-app/internal/app"
	"github.com/sheraliozodov77/ostaa-app/internal/domain"
)

// AccountCreator is the minimal interface needed to register accounts.
type AccountCreator interface {
	CreateAccount(ctx context.Context, in app.CreateAccountInput) (domain.User, error)
}

// HandleCreateAccount returns an HTTP handler for account registration.
func HandleCreateAccount(svc AccountCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createAccountRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		user, err := svc.CreateAccount(r.Context(), app.CreateAccountInput{
			Username: req.Username,
			Secret:   req.Password,
		})
		if err != nil {
			switch err {
			case domain.ErrUsernameRequired:
				writeError(w, http.StatusBadRequest, codeUsernameRequired, err.Error())
			case domain.ErrSecretRequired:
				writeError(w, http.StatusBadRequest, codeSecretRequired, err.Error())
			case domain.ErrUsernameTaken:
				writeError(w, http.StatusConflict, codeUsernameTaken, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}

		resp := createAccountResponse{Username: user.Username}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type createAccountRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createAccountResponse struct {
	Username string `json:"username"`
}
