package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/khatirak/SWE-final/internal/app"
	"github.com/khatirak/SWE-final/internal/domain"
)

// SearchService is the minimal interface needed by the search routes.
type SearchService interface {
	Search(ctx context.Context, in app.SearchInput) ([]domain.Listing, error)
	Categories(ctx context.Context) ([]string, error)
}

// HandleSearch returns the handler for GET /search.
func HandleSearch(svc SearchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		q := r.URL.Query()

		in := app.SearchInput{
			Keyword:   q.Get("q"),
			Category:  q.Get("category"),
			Condition: q.Get("condition"),
			Status:    q.Get("status"),
			Tag:       q.Get("tag"),
			SortBy:    q.Get("sort_by"),
			SortAsc:   q.Get("sort_order") == "asc",
		}
		var err error
		if in.MinPriceCents, err = parsePriceParam(q.Get("min_price_cents")); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidPrice, "invalid min_price_cents")
			return
		}
		if in.MaxPriceCents, err = parsePriceParam(q.Get("max_price_cents")); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidPrice, "invalid max_price_cents")
			return
		}
		if raw := q.Get("skip"); raw != "" {
			if in.Offset, err = strconv.Atoi(raw); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid skip")
				return
			}
		}
		if raw := q.Get("limit"); raw != "" {
			if in.Limit, err = strconv.Atoi(raw); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid limit")
				return
			}
		}

		listings, err := svc.Search(r.Context(), in)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidCategory):
				writeError(w, http.StatusBadRequest, codeInvalidCategory, err.Error())
			case errors.Is(err, domain.ErrInvalidCondition):
				writeError(w, http.StatusBadRequest, codeInvalidCondition, err.Error())
			case errors.Is(err, domain.ErrInvalidStatus):
				writeError(w, http.StatusBadRequest, codeInvalidStatus, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}
		writeListingList(w, listings)
	}
}

// HandleCategories returns the handler for GET /search/categories.
func HandleCategories(svc SearchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		categories, err := svc.Categories(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}
		if categories == nil {
			categories = []string{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(categories)
	}
}

func parsePriceParam(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return nil, errors.New("invalid price")
	}
	return &v, nil
}

func writeListingList(w http.ResponseWriter, listings []domain.Listing) {
	resp := make([]listingResponse, 0, len(listings))
	for _, listing := range listings {
		resp = append(resp, toListingResponse(listing))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
