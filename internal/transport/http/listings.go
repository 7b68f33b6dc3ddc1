package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/khatirak/SWE-final/internal/app"
	"github.com/khatirak/SWE-final/internal/domain"
)

// ListingService is the minimal interface needed by the listing CRUD routes.
type ListingService interface {
	CreateListing(ctx context.Context, in app.CreateListingInput) (domain.Listing, error)
	GetListing(ctx context.Context, id string) (domain.Listing, error)
	UpdateListing(ctx context.Context, id string, in app.UpdateListingInput) (domain.Listing, error)
	DeleteListing(ctx context.Context, id string) error
}

// ReservationOps is the slice of the reservation engine used by the listing
// subroutes.
type ReservationOps interface {
	RequestReservation(ctx context.Context, listingID, buyerID string) error
	ConfirmReservation(ctx context.Context, listingID, buyerID string) error
	CancelReservation(ctx context.Context, listingID, buyerID string) error
	GetReservations(ctx context.Context, listingID string) ([]domain.ReservationView, error)
	MarkSold(ctx context.Context, listingID string) error
	UpdateStatus(ctx context.Context, listingID string, status domain.ListingStatus) (domain.Listing, error)
}

// HandleCreateListing returns the handler for POST /listings. The seller is
// taken from the authenticated session.
func HandleCreateListing(svc ListingService) http.HandlerFunc {
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

		var req listingRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		listing, err := svc.CreateListing(r.Context(), app.CreateListingInput{
			SellerID:    session.UserID,
			Title:       req.Title,
			Description: req.Description,
			PriceCents:  req.PriceCents,
			Condition:   req.Condition,
			Category:    req.Category,
			Tags:        req.Tags,
			Location:    req.Location,
			Images:      req.Images,
		})
		if err != nil {
			if writeListingValidationError(w, err) {
				return
			}
			if errors.Is(err, domain.ErrUserNotFound) {
				writeError(w, http.StatusNotFound, codeNotFound, "seller not found")
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toListingResponse(listing))
	}
}

// HandleListingRoutes dispatches /listings/{id} and its subroutes.
func HandleListingRoutes(listings ListingService, reservations ReservationOps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) < 2 || parts[0] != "listings" || parts[1] == "" {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		listingID := parts[1]

		switch {
		case len(parts) == 2:
			handleListingDetail(w, r, listings, listingID)
		case len(parts) == 3 && parts[2] == "status":
			handleUpdateStatus(w, r, reservations, listingID)
		case len(parts) == 4 && parts[2] == "request" && parts[3] != "":
			handleRequestReservation(w, r, reservations, listingID, parts[3])
		case len(parts) == 3 && parts[2] == "confirm":
			handleConfirmReservation(w, r, reservations, listingID)
		case len(parts) == 3 && parts[2] == "reservations":
			handleGetReservations(w, r, reservations, listingID)
		case len(parts) == 3 && parts[2] == "cancel_reservation":
			handleCancelReservation(w, r, reservations, listingID)
		case len(parts) == 3 && parts[2] == "sold":
			handleMarkSold(w, r, reservations, listingID)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func handleListingDetail(w http.ResponseWriter, r *http.Request, svc ListingService, listingID string) {
	switch r.Method {
	case http.MethodGet:
		listing, err := svc.GetListing(r.Context(), listingID)
		if err != nil {
			writeListingLookupError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toListingResponse(listing))

	case http.MethodPut:
		var req updateListingRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		listing, err := svc.UpdateListing(r.Context(), listingID, app.UpdateListingInput{
			Title:       req.Title,
			Description: req.Description,
			PriceCents:  req.PriceCents,
			Condition:   req.Condition,
			Category:    req.Category,
			Tags:        req.Tags,
			Location:    req.Location,
			Images:      req.Images,
		})
		if err != nil {
			if writeListingValidationError(w, err) {
				return
			}
			writeListingLookupError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toListingResponse(listing))

	case http.MethodDelete:
		if err := svc.DeleteListing(r.Context(), listingID); err != nil {
			writeListingLookupError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	}
}

func handleUpdateStatus(w http.ResponseWriter, r *http.Request, svc ReservationOps, listingID string) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}
	status, err := domain.ParseListingStatus(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidStatus, err.Error())
		return
	}
	listing, err := svc.UpdateStatus(r.Context(), listingID, status)
	if err != nil {
		writeListingLookupError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toListingResponse(listing))
}

func writeListingLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrListingNotFound), errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusNotFound, codeNotFound, "listing not found")
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

type listingRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"price_cents"`
	Condition   string   `json:"condition"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Location    string   `json:"location"`
	Images      []string `json:"images"`
}

type updateListingRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	PriceCents  *int64    `json:"price_cents"`
	Condition   *string   `json:"condition"`
	Category    *string   `json:"category"`
	Tags        *[]string `json:"tags"`
	Location    *string   `json:"location"`
	Images      *[]string `json:"images"`
}

type listingResponse struct {
	ID               string    `json:"id"`
	SellerID         string    `json:"seller_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	PriceCents       int64     `json:"price_cents"`
	Condition        string    `json:"condition"`
	Category         string    `json:"category"`
	Tags             []string  `json:"tags"`
	Location         string    `json:"location,omitempty"`
	Images           []string  `json:"images"`
	Status           string    `json:"status"`
	BuyerID          string    `json:"buyer_id,omitempty"`
	ReservationCount int       `json:"reservation_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toListingResponse(l domain.Listing) listingResponse {
	tags := l.Tags
	if tags == nil {
		tags = []string{}
	}
	images := l.Images
	if images == nil {
		images = []string{}
	}
	return listingResponse{
		ID:               l.ID,
		SellerID:         l.SellerID,
		Title:            l.Title,
		Description:      l.Description,
		PriceCents:       l.PriceCents,
		Condition:        string(l.Condition),
		Category:         string(l.Category),
		Tags:             tags,
		Location:         l.Location,
		Images:           images,
		Status:           string(l.Status),
		BuyerID:          l.BuyerID,
		ReservationCount: l.ReservationCount,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}
