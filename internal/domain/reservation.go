package domain

import (
	"strings"
	"time"
)

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusConfirmed RequestStatus = "confirmed"
)

func ParseRequestStatus(s string) (RequestStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RequestStatusPending):
		return RequestStatusPending, nil
	case string(RequestStatusConfirmed):
		return RequestStatusConfirmed, nil
	}
	return "", ErrInvalidStatus
}

// ReservationRequest is a buyer's time-boxed interest in one listing. At
// most one request per (listing, buyer) pair exists at any time, and at
// most one request per listing is confirmed.
type ReservationRequest struct {
	ListingID   string
	BuyerID     string
	Status      RequestStatus
	RequestedAt time.Time
	ExpiresAt   time.Time
}

// ReservationView is the caller-visible projection of a request. BuyerPhone
// is resolved only for a confirmed entry; pending entries never expose
// contact details.
type ReservationView struct {
	BuyerID     string
	Status      RequestStatus
	RequestedAt time.Time
	ExpiresAt   time.Time
	BuyerPhone  string
}

// BuyerRequest pairs a buyer's own request with the listing it targets, for
// the "my requests" read path.
type BuyerRequest struct {
	Listing Listing
	Request ReservationRequest
}
