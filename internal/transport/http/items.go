package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sheraliozodov77/ostaa-app/internal/app"
	"github.com/sheraliozodov77/ostaa-app/internal/domain"
)

// ItemService is the minimal interface needed for listing endpoints.
type ItemService interface {
	CreateItem(ctx context.Context, in app.CreateItemInput) (domain.Item, error)
	ListItems(ctx context.Context) ([]domain.Item, error)
	SearchItems(ctx context.Context, query string) ([]domain.Item, error)
	ListPurchases(ctx context.Context, username string) ([]domain.Item, error)
	ListListings(ctx context.Context, username string) ([]domain.Item, error)
}

// HandleItems serves item creation (authenticated POST) and the unfiltered
// item list (GET).
func HandleItems(svc ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			items, err := svc.ListItems(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			writeItems(w, items)
		case http.MethodPost:
			username, ok := IdentityFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, codeUnauthenticated, "authentication required")
				return
			}

			var req createItemRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			item, err := svc.CreateItem(r.Context(), app.CreateItemInput{
				OwnerUsername: username,
				Title:         req.Title,
				Description:   req.Description,
				Price:         req.Price,
				Status:        req.Status,
			})
			if err != nil {
				switch err {
				case domain.ErrTitleRequired:
					writeError(w, http.StatusBadRequest, codeTitleRequired, err.Error())
				case domain.ErrInvalidPrice:
					writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
				case domain.ErrInvalidStatus:
					writeError(w, http.StatusBadRequest, codeInvalidStatus, err.Error())
				case domain.ErrUserNotFound:
					writeError(w, http.StatusNotFound, codeUserNotFound, err.Error())
				default:
					writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				}
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(toItemResponse(item))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleSearchItems matches items by description, case-insensitively. An
// empty q returns every item.
func HandleSearchItems(svc ItemService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		items, err := svc.SearchItems(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}
		writeItems(w, items)
	}
}

// HandlePurchasesList serves the authenticated caller's purchased items.
func HandlePurchasesList(svc ItemService) http.HandlerFunc {
	return handleUserItems(svc.ListPurchases)
}

// HandleListingsList serves the authenticated caller's own listings.
func HandleListingsList(svc ItemService) http.HandlerFunc {
	return handleUserItems(svc.ListListings)
}

func handleUserItems(list func(ctx context.Context, username string) ([]domain.Item, error)) http.HandlerFunc {
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

		items, err := list(r.Context(), username)
		if err != nil {
			switch err {
			case domain.ErrUserNotFound:
				writeError(w, http.StatusNotFound, codeUserNotFound, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}
		writeItems(w, items)
	}
}

func writeItems(w http.ResponseWriter, items []domain.Item) {
	resp := make([]itemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toItemResponse(item))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

type createItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Status      string `json:"status"`
}

type itemResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func toItemResponse(item domain.Item) itemResponse {
	return itemResponse{
		ID:          item.ID,
		OwnerID:     item.OwnerID,
		Title:       item.Title,
		Description: item.Description,
		Price:       item.Price,
		Status:      string(item.Status),
		CreatedAt:   item.CreatedAt,
	}
}
