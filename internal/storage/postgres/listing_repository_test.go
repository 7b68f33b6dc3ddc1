package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/khatirak/SWE-final/internal/app"
	"github.com/khatirak/SWE-final/internal/domain"
	"github.com/khatirak/SWE-final/internal/testutil"
)

func TestListingRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewListingRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	newListing := func(sellerID, title string) domain.Listing {
		now := time.Now().UTC().Truncate(time.Microsecond)
		return domain.Listing{
			ID:          uuid.NewString(),
			SellerID:    sellerID,
			Title:       title,
			Description: "A perfectly serviceable description.",
			PriceCents:  2500,
			Condition:   domain.ConditionGood,
			Category:    domain.CategoryFurniture,
			Tags:        []string{"dorm"},
			Images:      []string{"a.jpg", "b.jpg"},
			Status:      domain.ListingStatusAvailable,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	t.Run("CreateListing and GetListing round trip", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		sellerID := testutil.InsertUser(t, ctx, pool, "seller@nyu.edu", "Seller")

		listing := newListing(sellerID, "Desk lamp")
		if err := repo.CreateListing(ctx, listing); err != nil {
			t.Fatalf("create: %v", err)
		}

		got, err := repo.GetListing(ctx, listing.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Title != listing.Title || got.PriceCents != listing.PriceCents || got.Status != domain.ListingStatusAvailable {
			t.Fatalf("unexpected listing %+v", got)
		}
		if len(got.Images) != 2 {
			t.Fatalf("expected images persisted, got %v", got.Images)
		}

		listing.SellerID = "00000000-0000-0000-0000-000000000001"
		listing.ID = uuid.NewString()
		if err := repo.CreateListing(ctx, listing); !errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound for unknown seller, got %v", err)
		}

		if _, err := repo.GetListing(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrInvalidID) {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
		if _, err := repo.GetListing(ctx, uuid.NewString()); !errors.Is(err, domain.ErrListingNotFound) {
			t.Fatalf("expected ErrListingNotFound, got %v", err)
		}
	})

	t.Run("UpdateListing applies only set fields", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		sellerID := testutil.InsertUser(t, ctx, pool, "seller@nyu.edu", "Seller")

		listing := newListing(sellerID, "Desk lamp")
		if err := repo.CreateListing(ctx, listing); err != nil {
			t.Fatalf("create: %v", err)
		}

		title := "Desk lamp (warm white)"
		price := int64(2000)
		got, err := repo.UpdateListing(ctx, listing.ID, app.ListingUpdate{Title: &title, PriceCents: &price})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if got.Title != title || got.PriceCents != price {
			t.Fatalf("unexpected update result %+v", got)
		}
		if got.Description != listing.Description {
			t.Fatalf("expected description untouched, got %q", got.Description)
		}

		if _, err := repo.UpdateListing(ctx, uuid.NewString(), app.ListingUpdate{Title: &title}); !errors.Is(err, domain.ErrListingNotFound) {
			t.Fatalf("expected ErrListingNotFound, got %v", err)
		}
	})

	t.Run("DeleteListing cascades requests", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		sellerID := testutil.InsertUser(t, ctx, pool, "seller@nyu.edu", "Seller")
		buyerID := testutil.InsertUser(t, ctx, pool, "buyer@nyu.edu", "Buyer")

		listing := newListing(sellerID, "Desk lamp")
		if err := repo.CreateListing(ctx, listing); err != nil {
			t.Fatalf("create: %v", err)
		}
		now := time.Now().UTC()
		testutil.InsertRequest(t, ctx, pool, domain.ReservationRequest{
			ListingID: listing.ID, BuyerID: buyerID, Status: domain.RequestStatusPending,
			RequestedAt: now, ExpiresAt: now.Add(time.Hour),
		})

		if err := repo.DeleteListing(ctx, listing.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		var count int
		if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM reservation_requests WHERE listing_id = $1`, listing.ID).Scan(&count); err != nil {
			t.Fatalf("query count: %v", err)
		}
		if count != 0 {
			t.Fatalf("expected cascaded request delete, got %d", count)
		}

		if err := repo.DeleteListing(ctx, listing.ID); !errors.Is(err, domain.ErrListingNotFound) {
			t.Fatalf("expected ErrListingNotFound, got %v", err)
		}
	})

	t.Run("SearchListings filters and sorts", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		sellerID := testutil.InsertUser(t, ctx, pool, "seller@nyu.edu", "Seller")

		lamp := newListing(sellerID, "Desk lamp")
		lamp.PriceCents = 1500
		lamp.Tags = []string{"lighting"}
		fridge := newListing(sellerID, "Mini fridge")
		fridge.PriceCents = 4500
		fridge.Category = domain.CategoryHomeAppliances
		for _, l := range []domain.Listing{lamp, fridge} {
			if err := repo.CreateListing(ctx, l); err != nil {
				t.Fatalf("create %s: %v", l.Title, err)
			}
		}

		got, err := repo.SearchListings(ctx, app.SearchQuery{
			Keyword: "fridge", SortBy: "created_at", Limit: 10,
		})
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(got) != 1 || got[0].ID != fridge.ID {
			t.Fatalf("expected fridge only, got %+v", got)
		}

		got, err = repo.SearchListings(ctx, app.SearchQuery{
			Tag: "lighting", SortBy: "created_at", Limit: 10,
		})
		if err != nil {
			t.Fatalf("search by tag: %v", err)
		}
		if len(got) != 1 || got[0].ID != lamp.ID {
			t.Fatalf("expected lamp only, got %+v", got)
		}

		min := int64(2000)
		got, err = repo.SearchListings(ctx, app.SearchQuery{
			MinPriceCents: &min, SortBy: "price_cents", SortAsc: true, Limit: 10,
		})
		if err != nil {
			t.Fatalf("search by price: %v", err)
		}
		if len(got) != 1 || got[0].ID != fridge.ID {
			t.Fatalf("expected fridge only, got %+v", got)
		}

		got, err = repo.SearchListings(ctx, app.SearchQuery{
			SortBy: "price_cents", SortAsc: true, Limit: 10,
		})
		if err != nil {
			t.Fatalf("search all: %v", err)
		}
		if len(got) != 2 || got[0].ID != lamp.ID {
			t.Fatalf("expected ascending price order, got %+v", got)
		}
	})

	t.Run("ListRecent respects limit and category", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		sellerID := testutil.InsertUser(t, ctx, pool, "seller@nyu.edu", "Seller")

		for _, title := range []string{"One", "Two", "Three"} {
			if err := repo.CreateListing(ctx, newListing(sellerID, title)); err != nil {
				t.Fatalf("create %s: %v", title, err)
			}
		}

		got, err := repo.ListRecent(ctx, 2, "")
		if err != nil {
			t.Fatalf("recent: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 listings, got %d", len(got))
		}

		got, err = repo.ListRecent(ctx, 10, domain.CategoryBooks)
		if err != nil {
			t.Fatalf("recent by category: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected no books, got %d", len(got))
		}
	})

	t.Run("ListCategories returns distinct values", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		sellerID := testutil.InsertUser(t, ctx, pool, "seller@nyu.edu", "Seller")

		first := newListing(sellerID, "One")
		second := newListing(sellerID, "Two")
		second.Category = domain.CategoryBooks
		third := newListing(sellerID, "Three")
		for _, l := range []domain.Listing{first, second, third} {
			if err := repo.CreateListing(ctx, l); err != nil {
				t.Fatalf("create %s: %v", l.Title, err)
			}
		}

		categories, err := repo.ListCategories(ctx)
		if err != nil {
			t.Fatalf("categories: %v", err)
		}
		if len(categories) != 2 {
			t.Fatalf("expected 2 distinct categories, got %v", categories)
		}
	})
}
