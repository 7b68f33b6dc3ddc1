package domain

import "errors"

var (
	ErrListingNotFound     = errors.New("listing not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrReservationNotFound = errors.New("reservation request not found")
	ErrDuplicateRequest    = errors.New("buyer already has a reservation request")
	ErrInvalidID           = errors.New("invalid id")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidCondition    = errors.New("invalid condition")
	ErrInvalidCategory     = errors.New("invalid category")
	ErrTitleLength         = errors.New("title must be between 1 and 100 characters")
	ErrDescriptionLength   = errors.New("description must be between 10 and 1000 characters")
	ErrNegativePrice       = errors.New("price must be zero or positive")
	ErrImageCount          = errors.New("listings require between 2 and 10 images")
	ErrEmailDomain         = errors.New("email must belong to the campus domain")
	ErrNameRequired        = errors.New("name is required")
	ErrPhoneRequired       = errors.New("phone number is required")
)
