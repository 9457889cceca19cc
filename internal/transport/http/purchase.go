package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/sheraliozodov77/ostaa-app/internal/app"
	"github.com/sheraliozodov77/ostaa-app/internal/domain"
)

// Purchaser is the minimal interface needed to buy an item.
type Purchaser interface {
	Purchase(ctx context.Context, in app.PurchaseInput) (domain.Purchase, error)
}

// HandlePurchaseItem returns an HTTP handler for POST /items/{id}/purchase.
// It runs behind RequireAuth; the buyer is the authenticated identity.
func HandlePurchaseItem(svc Purchaser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		itemID, ok := parsePurchasePath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		username, ok := IdentityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthenticated, "authentication required")
			return
		}

		purchase, err := svc.Purchase(r.Context(), app.PurchaseInput{
			ItemID:        itemID,
			BuyerUsername: username,
		})
		if err != nil {
			switch err {
			case domain.ErrItemNotFound:
				writeError(w, http.StatusNotFound, codeItemNotFound, err.Error())
			case domain.ErrInvalidID:
				writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
			case domain.ErrItemAlreadySold:
				writeError(w, http.StatusConflict, codeItemAlreadySold, err.Error())
			case domain.ErrUserNotFound:
				writeError(w, http.StatusNotFound, codeUserNotFound, err.Error())
			case domain.ErrPurchaseInconsistent:
				// Detail is already logged at the coordinator; the caller
				// only gets a retry hint.
				writeError(w, http.StatusInternalServerError, codePurchaseInconsistent, "purchase failed, try again")
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "purchase failed, try again")
			}
			return
		}

		resp := purchaseResponse{
			ItemID:    purchase.ItemID,
			Status:    string(domain.ItemStatusSold),
			CreatedAt: purchase.CreatedAt,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func parsePurchasePath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != "items" || parts[2] != "purchase" {
		return "", false
	}
	if parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

type purchaseResponse struct {
	ItemID    string    `json:"item_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
