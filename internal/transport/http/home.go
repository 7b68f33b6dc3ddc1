package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/khatirak/SWE-final/internal/domain"
)

// RecentLister is the minimal interface needed by the home routes.
type RecentLister interface {
	Recent(ctx context.Context, limit int, category string) ([]domain.Listing, error)
}

// HandleRecent returns the handler for GET /home/recent.
func HandleRecent(svc RecentLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid limit")
				return
			}
			limit = parsed
		}

		listings, err := svc.Recent(r.Context(), limit, r.URL.Query().Get("category"))
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCategory) {
				writeError(w, http.StatusBadRequest, codeInvalidCategory, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}
		writeListingList(w, listings)
	}
}
