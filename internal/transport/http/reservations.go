package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/khatirak/SWE-final/internal/domain"
)

// Reservation failures collapse to 404 at the boundary: missing listing,
// duplicate request, missing request, and malformed ids all read the same to
// the caller. The distinct sentinels stay internal.
func isReservationFailure(err error) bool {
	return errors.Is(err, domain.ErrListingNotFound) ||
		errors.Is(err, domain.ErrReservationNotFound) ||
		errors.Is(err, domain.ErrDuplicateRequest) ||
		errors.Is(err, domain.ErrInvalidID)
}

func handleRequestReservation(w http.ResponseWriter, r *http.Request, svc ReservationOps, listingID, buyerID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}
	if err := svc.RequestReservation(r.Context(), listingID, buyerID); err != nil {
		if isReservationFailure(err) {
			writeError(w, http.StatusNotFound, codeNotFound, "listing not found or reservation failed")
			return
		}
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	writeMessage(w, http.StatusOK, "Reservation request submitted successfully.")
}

func handleConfirmReservation(w http.ResponseWriter, r *http.Request, svc ReservationOps, listingID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	var req confirmReservationRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil || req.BuyerID == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	if err := svc.ConfirmReservation(r.Context(), listingID, req.BuyerID); err != nil {
		if isReservationFailure(err) {
			writeError(w, http.StatusNotFound, codeNotFound, "listing not found or confirmation failed")
			return
		}
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	writeMessage(w, http.StatusOK, "Reservation confirmed successfully.")
}

func handleGetReservations(w http.ResponseWriter, r *http.Request, svc ReservationOps, listingID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}
	views, err := svc.GetReservations(r.Context(), listingID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	resp := make([]reservationResponse, 0, len(views))
	for _, view := range views {
		resp = append(resp, reservationResponse{
			BuyerID:     view.BuyerID,
			Status:      string(view.Status),
			RequestedAt: view.RequestedAt,
			ExpiresAt:   view.ExpiresAt,
			BuyerPhone:  view.BuyerPhone,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func handleCancelReservation(w http.ResponseWriter, r *http.Request, svc ReservationOps, listingID string) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}
	buyerID := r.URL.Query().Get("buyer_id")
	if buyerID == "" {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "buyer_id is required")
		return
	}
	if err := svc.CancelReservation(r.Context(), listingID, buyerID); err != nil {
		if isReservationFailure(err) {
			writeError(w, http.StatusNotFound, codeNotFound, "reservation not found or listing not found")
			return
		}
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	writeMessage(w, http.StatusOK, "Reservation request cancelled successfully.")
}

func handleMarkSold(w http.ResponseWriter, r *http.Request, svc ReservationOps, listingID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}
	if err := svc.MarkSold(r.Context(), listingID); err != nil {
		if isReservationFailure(err) {
			writeError(w, http.StatusNotFound, codeNotFound, "listing not found")
			return
		}
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		return
	}
	writeMessage(w, http.StatusOK, "Listing marked as sold successfully.")
}

type confirmReservationRequest struct {
	BuyerID string `json:"buyer_id"`
}

type reservationResponse struct {
	BuyerID     string    `json:"buyer_id"`
	Status      string    `json:"status"`
	RequestedAt time.Time `json:"requested_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	BuyerPhone  string    `json:"buyer_phone,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(messageResponse{Message: msg})
}
