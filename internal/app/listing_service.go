package app

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/khatirak/SWE-final/internal/clock"
	"github.com/khatirak/SWE-final/internal/domain"
)

type ListingRepository interface {
	CreateListing(ctx context.Context, listing domain.Listing) error
	GetListing(ctx context.Context, id string) (domain.Listing, error)
	UpdateListing(ctx context.Context, id string, upd ListingUpdate) (domain.Listing, error)
	DeleteListing(ctx context.Context, id string) error
	ListBySeller(ctx context.Context, sellerID string) ([]domain.Listing, error)
	ListRecent(ctx context.Context, limit int, category domain.Category) ([]domain.Listing, error)
	SearchListings(ctx context.Context, q SearchQuery) ([]domain.Listing, error)
	ListCategories(ctx context.Context) ([]string, error)
}

type ListingService struct {
	repo  ListingRepository
	clock clock.Clock
}

func NewListingService(repo ListingRepository, clk clock.Clock) *ListingService {
	return &ListingService{
		repo:  repo,
		clock: clk,
	}
}

const (
	maxTitleLen       = 100
	minDescriptionLen = 10
	maxDescriptionLen = 1000
	minImages         = 2
	maxImages         = 10
)

type CreateListingInput struct {
	SellerID    string
	Title       string
	Description string
	PriceCents  int64
	Condition   string
	Category    string
	Tags        []string
	Location    string
	Images      []string
}

func (s *ListingService) CreateListing(ctx context.Context, in CreateListingInput) (domain.Listing, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || utf8.RuneCountInString(title) > maxTitleLen {
		return domain.Listing{}, domain.ErrTitleLength
	}
	if n := utf8.RuneCountInString(in.Description); n < minDescriptionLen || n > maxDescriptionLen {
		return domain.Listing{}, domain.ErrDescriptionLength
	}
	if in.PriceCents < 0 {
		return domain.Listing{}, domain.ErrNegativePrice
	}
	if len(in.Images) < minImages || len(in.Images) > maxImages {
		return domain.Listing{}, domain.ErrImageCount
	}
	condition, err := domain.ParseCondition(in.Condition)
	if err != nil {
		return domain.Listing{}, err
	}
	category, err := domain.ParseCategory(in.Category)
	if err != nil {
		return domain.Listing{}, err
	}

	now := s.clock.Now()
	listing := domain.Listing{
		ID:          newID(),
		SellerID:    in.SellerID,
		Title:       title,
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Condition:   condition,
		Category:    category,
		Tags:        in.Tags,
		Location:    in.Location,
		Images:      in.Images,
		Status:      domain.ListingStatusAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateListing(ctx, listing); err != nil {
		return domain.Listing{}, err
	}
	return listing, nil
}

func (s *ListingService) GetListing(ctx context.Context, id string) (domain.Listing, error) {
	return s.repo.GetListing(ctx, id)
}

// ListingUpdate is a partial update; nil fields are left untouched.
type ListingUpdate struct {
	Title       *string
	Description *string
	PriceCents  *int64
	Condition   *domain.Condition
	Category    *domain.Category
	Tags        *[]string
	Location    *string
	Images      *[]string
}

type UpdateListingInput struct {
	Title       *string
	Description *string
	PriceCents  *int64
	Condition   *string
	Category    *string
	Tags        *[]string
	Location    *string
	Images      *[]string
}

func (s *ListingService) UpdateListing(ctx context.Context, id string, in UpdateListingInput) (domain.Listing, error) {
	var upd ListingUpdate

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" || utf8.RuneCountInString(title) > maxTitleLen {
			return domain.Listing{}, domain.ErrTitleLength
		}
		upd.Title = &title
	}
	if in.Description != nil {
		if n := utf8.RuneCountInString(*in.Description); n < minDescriptionLen || n > maxDescriptionLen {
			return domain.Listing{}, domain.ErrDescriptionLength
		}
		upd.Description = in.Description
	}
	if in.PriceCents != nil {
		if *in.PriceCents < 0 {
			return domain.Listing{}, domain.ErrNegativePrice
		}
		upd.PriceCents = in.PriceCents
	}
	if in.Condition != nil {
		condition, err := domain.ParseCondition(*in.Condition)
		if err != nil {
			return domain.Listing{}, err
		}
		upd.Condition = &condition
	}
	if in.Category != nil {
		category, err := domain.ParseCategory(*in.Category)
		if err != nil {
			return domain.Listing{}, err
		}
		upd.Category = &category
	}
	if in.Images != nil {
		if len(*in.Images) < minImages || len(*in.Images) > maxImages {
			return domain.Listing{}, domain.ErrImageCount
		}
		upd.Images = in.Images
	}
	upd.Tags = in.Tags
	upd.Location = in.Location

	return s.repo.UpdateListing(ctx, id, upd)
}

func (s *ListingService) DeleteListing(ctx context.Context, id string) error {
	return s.repo.DeleteListing(ctx, id)
}

func (s *ListingService) ListBySeller(ctx context.Context, sellerID string) ([]domain.Listing, error) {
	return s.repo.ListBySeller(ctx, sellerID)
}

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 50
)

func (s *ListingService) Recent(ctx context.Context, limit int, category string) ([]domain.Listing, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	var cat domain.Category
	if category != "" {
		parsed, err := domain.ParseCategory(category)
		if err != nil {
			return nil, err
		}
		cat = parsed
	}
	return s.repo.ListRecent(ctx, limit, cat)
}

// SearchQuery carries normalized search parameters; enum fields are already
// parsed and the sort field is one of the whitelisted columns.
type SearchQuery struct {
	Keyword       string
	Category      domain.Category
	Condition     domain.Condition
	Status        domain.ListingStatus
	Tag           string
	MinPriceCents *int64
	MaxPriceCents *int64
	SortBy        string
	SortAsc       bool
	Offset        int
	Limit         int
}

type SearchInput struct {
	Keyword       string
	Category      string
	Condition     string
	Status        string
	Tag           string
	MinPriceCents *int64
	MaxPriceCents *int64
	SortBy        string
	SortAsc       bool
	Offset        int
	Limit         int
}

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

var searchSortFields = map[string]string{
	"created_at": "created_at",
	"price":      "price_cents",
	"title":      "title",
}

func (s *ListingService) Search(ctx context.Context, in SearchInput) ([]domain.Listing, error) {
	q := SearchQuery{
		Keyword:       strings.TrimSpace(in.Keyword),
		Tag:           strings.TrimSpace(in.Tag),
		MinPriceCents: in.MinPriceCents,
		MaxPriceCents: in.MaxPriceCents,
		SortAsc:       in.SortAsc,
		Offset:        in.Offset,
		Limit:         in.Limit,
	}
	if in.Category != "" {
		category, err := domain.ParseCategory(in.Category)
		if err != nil {
			return nil, err
		}
		q.Category = category
	}
	if in.Condition != "" {
		condition, err := domain.ParseCondition(in.Condition)
		if err != nil {
			return nil, err
		}
		q.Condition = condition
	}
	if in.Status != "" {
		status, err := domain.ParseListingStatus(in.Status)
		if err != nil {
			return nil, err
		}
		q.Status = status
	}

	sortBy, ok := searchSortFields[in.SortBy]
	if !ok {
		sortBy = "created_at"
	}
	q.SortBy = sortBy

	if q.Limit <= 0 {
		q.Limit = defaultSearchLimit
	}
	if q.Limit > maxSearchLimit {
		q.Limit = maxSearchLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return s.repo.SearchListings(ctx, q)
}

func (s *ListingService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.ListCategories(ctx)
}
