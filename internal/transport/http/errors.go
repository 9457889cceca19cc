package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeMethodNotAllowed     = "method_not_allowed"
	codeNotFound             = "not_found"
	codeInvalidRequestBody   = "invalid_request_body"
	codeUnauthenticated      = "unauthenticated"
	codeInvalidCredentials   = "invalid_credentials"
	codeUsernameRequired     = "username_required"
	codeSecretRequired       = "password_required"
	codeUsernameTaken        = "username_taken"
	codeUserNotFound         = "user_not_found"
	codeTitleRequired        = "title_required"
	codeInvalidPrice         = "invalid_price"
	codeInvalidStatus        = "invalid_status"
	codeInvalidID            = "invalid_id"
	codeItemNotFound         = "item_not_found"
	codeItemAlreadySold      = "item_already_sold"
	codePurchaseInconsistent = "purchase_inconsistent"
	codeForbidden            = "forbidden"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}
