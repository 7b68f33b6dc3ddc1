package domain

import (
	"strings"
	"time"
)

type ListingStatus string

const (
	ListingStatusAvailable ListingStatus = "available"
	ListingStatusReserved  ListingStatus = "reserved"
	ListingStatusSold      ListingStatus = "sold"
)

// ParseListingStatus is the single normalization point for externally
// supplied status values. Input is case-insensitive; stored and compared
// values are always the lowercase constants above.
func ParseListingStatus(s string) (ListingStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ListingStatusAvailable):
		return ListingStatusAvailable, nil
	case string(ListingStatusReserved):
		return ListingStatusReserved, nil
	case string(ListingStatusSold):
		return ListingStatusSold, nil
	}
	return "", ErrInvalidStatus
}

type Condition string

const (
	ConditionBrandNew     Condition = "brand_new"
	ConditionOpenedUnused Condition = "opened_unused"
	ConditionGood         Condition = "good"
	ConditionUsed         Condition = "used"
)

func ParseCondition(s string) (Condition, error) {
	switch Condition(strings.ToLower(strings.TrimSpace(s))) {
	case ConditionBrandNew, ConditionOpenedUnused, ConditionGood, ConditionUsed:
		return Condition(strings.ToLower(strings.TrimSpace(s))), nil
	}
	return "", ErrInvalidCondition
}

type Category string

const (
	CategoryApparel        Category = "apparel_accessories"
	CategoryFurniture      Category = "furniture"
	CategoryHomeAppliances Category = "home_appliances"
	CategoryBooks          Category = "books_stationery"
	CategoryBeauty         Category = "beauty_personal_care"
	CategoryElectronics    Category = "electronics_gadgets"
	CategoryMisc           Category = "misc_general_items"
)

func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryApparel, CategoryFurniture, CategoryHomeAppliances,
		CategoryBooks, CategoryBeauty, CategoryElectronics, CategoryMisc:
		return Category(strings.ToLower(strings.TrimSpace(s))), nil
	}
	return "", ErrInvalidCategory
}

// Listing is a single item for sale, owned by one seller. BuyerID is set
// only while the listing is reserved to that buyer. ReservationCount always
// matches the number of persisted reservation requests after a mutation
// settles.
type Listing struct {
	ID               string
	SellerID         string
	Title            string
	Description      string
	PriceCents       int64
	Condition        Condition
	Category         Category
	Tags             []string
	Location         string
	Images           []string
	Status           ListingStatus
	BuyerID          string
	ReservationCount int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
