package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/khatirak/SWE-final/internal/domain"
)

// SellerListings is the minimal interface needed for the per-user listing view.
type SellerListings interface {
	ListBySeller(ctx context.Context, sellerID string) ([]domain.Listing, error)
}

// BuyerRequests is the minimal interface needed for the "my requests" view.
type BuyerRequests interface {
	RequestsByBuyer(ctx context.Context, buyerID string) ([]domain.BuyerRequest, error)
}

// PhoneUpdater is the minimal interface needed for the update-phone endpoint.
type PhoneUpdater interface {
	UpdatePhone(ctx context.Context, id, phone string) error
}

// HandleUserRoutes dispatches /users/{id}/listings and /users/{id}/my_requests.
func HandleUserRoutes(listings SellerListings, requests BuyerRequests) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 3 || parts[0] != "users" || parts[1] == "" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		userID := parts[1]

		switch parts[2] {
		case "listings":
			out, err := listings.ListBySeller(r.Context(), userID)
			if err != nil {
				writeUserLookupError(w, err)
				return
			}
			writeListingList(w, out)
		case "my_requests":
			out, err := requests.RequestsByBuyer(r.Context(), userID)
			if err != nil {
				writeUserLookupError(w, err)
				return
			}
			resp := make([]buyerRequestResponse, 0, len(out))
			for _, br := range out {
				resp = append(resp, buyerRequestResponse{
					Listing:     toListingResponse(br.Listing),
					Status:      string(br.Request.Status),
					RequestedAt: br.Request.RequestedAt,
					ExpiresAt:   br.Request.ExpiresAt,
				})
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

// HandleUpdatePhone returns the handler for POST /users/update-phone. The
// target account is the authenticated session's user.
func HandleUpdatePhone(svc PhoneUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		session, ok := SessionFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "not authenticated")
			return
		}

		var req updatePhoneRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		if err := svc.UpdatePhone(r.Context(), session.UserID, req.PhoneNumber); err != nil {
			switch {
			case errors.Is(err, domain.ErrPhoneRequired):
				writeError(w, http.StatusBadRequest, codePhoneRequired, err.Error())
			case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrInvalidID):
				writeError(w, http.StatusNotFound, codeNotFound, "user not found or update failed")
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}
		writeMessage(w, http.StatusOK, "Phone number updated successfully")
	}
}

func writeUserLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrInvalidID) {
		writeError(w, http.StatusNotFound, codeNotFound, "user not found")
		return
	}
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

type updatePhoneRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

type buyerRequestResponse struct {
	Listing     listingResponse `json:"listing"`
	Status      string          `json:"status"`
	RequestedAt time.Time       `json:"requested_at"`
	ExpiresAt   time.Time       `json:"expires_at"`
}
