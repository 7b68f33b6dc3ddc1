package app

import (
	"context"
	"errors"
	"time"

	"github.com/khatirak/SWE-final/internal/clock"
	"github.com/khatirak/SWE-final/internal/domain"
)

type ReservationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetListingForUpdate(ctx context.Context, listingID string) (domain.Listing, error)
	ListRequests(ctx context.Context, listingID string) ([]domain.ReservationRequest, error)
	InsertRequest(ctx context.Context, req domain.ReservationRequest) error
	DeleteRequest(ctx context.Context, listingID, buyerID string) error
	DeleteExpiredRequests(ctx context.Context, listingID string, now time.Time) error
	SetRequestStatus(ctx context.Context, listingID, buyerID string, status domain.RequestStatus) error
	ReopenRequests(ctx context.Context, listingID string, expiresAt time.Time) error
	ClearRequests(ctx context.Context, listingID string) error
	SetListingState(ctx context.Context, listingID string, status domain.ListingStatus, buyerID string) error
	SetListingStatus(ctx context.Context, listingID string, status domain.ListingStatus) error
	SyncReservationCount(ctx context.Context, listingID string) (int, error)
	ListRequestsByBuyer(ctx context.Context, buyerID string) ([]domain.BuyerRequest, error)
}

// UserDirectory resolves buyer contact details for the confirmed view.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
}

// ReservationService owns the listing reservation lifecycle: buyers request,
// the seller confirms one request, anyone cancels theirs, and requests expire
// after the hold window. All state lives in the store; every operation runs
// in a single transaction holding the listing row lock, so concurrent calls
// on the same listing serialize instead of losing updates.
type ReservationService struct {
	repo       ReservationRepository
	users      UserDirectory
	clock      clock.Clock
	holdWindow time.Duration
}

const defaultHoldWindow = 7 * 24 * time.Hour

func NewReservationService(repo ReservationRepository, users UserDirectory, clk clock.Clock, opts ...ReservationServiceOption) *ReservationService {
	svc := &ReservationService{
		repo:       repo,
		users:      users,
		clock:      clk,
		holdWindow: defaultHoldWindow,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type ReservationServiceOption func(*ReservationService)

// WithHoldWindow overrides the default hold window for new and extended requests.
func WithHoldWindow(d time.Duration) ReservationServiceOption {
	return func(s *ReservationService) {
		if d > 0 {
			s.holdWindow = d
		}
	}
}

// RequestReservation appends a pending request for the buyer. A listing keeps
// accumulating pending requests while available; requesting never reserves.
// A second request by the same buyer fails with ErrDuplicateRequest.
func (s *ReservationService) RequestReservation(ctx context.Context, listingID, buyerID string) error {
	now := s.clock.Now()
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetListingForUpdate(txCtx, listingID); err != nil {
			return err
		}
		req := domain.ReservationRequest{
			ListingID:   listingID,
			BuyerID:     buyerID,
			Status:      domain.RequestStatusPending,
			RequestedAt: now,
			ExpiresAt:   now.Add(s.holdWindow),
		}
		if err := s.repo.InsertRequest(txCtx, req); err != nil {
			return err
		}
		_, err := s.repo.SyncReservationCount(txCtx, listingID)
		return err
	})
}

// ConfirmReservation marks the buyer's request confirmed and reserves the
// listing for that buyer. Competing pending requests stay in storage; they
// are hidden by the reserved read path rather than deleted. At most one
// request holds confirmed per listing, so a previous holder is demoted back
// to pending before the new buyer is confirmed.
func (s *ReservationService) ConfirmReservation(ctx context.Context, listingID, buyerID string) error {
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetListingForUpdate(txCtx, listingID); err != nil {
			return err
		}
		reqs, err := s.repo.ListRequests(txCtx, listingID)
		if err != nil {
			return err
		}
		found := false
		for _, req := range reqs {
			if req.BuyerID == buyerID {
				found = true
				break
			}
		}
		if !found {
			return domain.ErrReservationNotFound
		}
		for _, req := range reqs {
			if req.Status != domain.RequestStatusConfirmed || req.BuyerID == buyerID {
				continue
			}
			if err := s.repo.SetRequestStatus(txCtx, listingID, req.BuyerID, domain.RequestStatusPending); err != nil {
				return err
			}
		}
		if err := s.repo.SetRequestStatus(txCtx, listingID, buyerID, domain.RequestStatusConfirmed); err != nil {
			return err
		}
		return s.repo.SetListingState(txCtx, listingID, domain.ListingStatusReserved, buyerID)
	})
}

// CancelReservation removes the buyer's request. Cancelling on a reserved
// listing reopens it, whichever buyer cancels: the listing returns to
// available, the confirmed buyer is cleared, and every remaining request is
// demoted back to pending with a fresh hold window so candidates are not
// penalized for time spent waiting behind the confirmed buyer.
func (s *ReservationService) CancelReservation(ctx context.Context, listingID, buyerID string) error {
	now := s.clock.Now()
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		listing, err := s.repo.GetListingForUpdate(txCtx, listingID)
		if err != nil {
			return err
		}
		if err := s.repo.DeleteRequest(txCtx, listingID, buyerID); err != nil {
			return err
		}
		if listing.Status != domain.ListingStatusAvailable {
			if err := s.repo.ReopenRequests(txCtx, listingID, now.Add(s.holdWindow)); err != nil {
				return err
			}
			if err := s.repo.SetListingState(txCtx, listingID, domain.ListingStatusAvailable, ""); err != nil {
				return err
			}
		}
		_, err = s.repo.SyncReservationCount(txCtx, listingID)
		return err
	})
}

// GetReservations returns the caller-visible reservation views for a listing.
//
// Reserved listing: a single confirmed entry with the buyer's phone resolved
// through the user directory. Available listing: all unexpired pending
// entries, phone withheld; expired entries are swept from storage as a side
// effect, so the persisted count matches what the caller sees. A missing or
// malformed listing id yields an empty view, not an error.
func (s *ReservationService) GetReservations(ctx context.Context, listingID string) ([]domain.ReservationView, error) {
	now := s.clock.Now()
	views := []domain.ReservationView{}
	confirmedBuyer := ""

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		listing, err := s.repo.GetListingForUpdate(txCtx, listingID)
		if errors.Is(err, domain.ErrListingNotFound) || errors.Is(err, domain.ErrInvalidID) {
			return nil
		}
		if err != nil {
			return err
		}

		if listing.Status == domain.ListingStatusReserved && listing.BuyerID != "" {
			reqs, err := s.repo.ListRequests(txCtx, listingID)
			if err != nil {
				return err
			}
			for _, req := range reqs {
				if req.BuyerID != listing.BuyerID {
					continue
				}
				views = append(views, domain.ReservationView{
					BuyerID:     req.BuyerID,
					Status:      domain.RequestStatusConfirmed,
					RequestedAt: req.RequestedAt,
					ExpiresAt:   req.ExpiresAt,
				})
				confirmedBuyer = req.BuyerID
			}
			return nil
		}

		if err := s.repo.DeleteExpiredRequests(txCtx, listingID, now); err != nil {
			return err
		}
		if _, err := s.repo.SyncReservationCount(txCtx, listingID); err != nil {
			return err
		}
		reqs, err := s.repo.ListRequests(txCtx, listingID)
		if err != nil {
			return err
		}
		for _, req := range reqs {
			views = append(views, domain.ReservationView{
				BuyerID:     req.BuyerID,
				Status:      domain.RequestStatusPending,
				RequestedAt: req.RequestedAt,
				ExpiresAt:   req.ExpiresAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if confirmedBuyer != "" {
		user, err := s.users.GetUserByID(ctx, confirmedBuyer)
		switch {
		case err == nil:
			for i := range views {
				if views[i].BuyerID == confirmedBuyer {
					views[i].BuyerPhone = user.Phone
				}
			}
		case errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidID):
			// Phone stays empty when the buyer account is gone.
		default:
			return nil, err
		}
	}
	return views, nil
}

// MarkSold transitions the listing to its terminal state and clears the
// whole request set. The confirmed buyer, if any, stays on the listing as a
// record of who bought it.
func (s *ReservationService) MarkSold(ctx context.Context, listingID string) error {
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		listing, err := s.repo.GetListingForUpdate(txCtx, listingID)
		if err != nil {
			return err
		}
		if err := s.repo.ClearRequests(txCtx, listingID); err != nil {
			return err
		}
		if err := s.repo.SetListingState(txCtx, listingID, domain.ListingStatusSold, listing.BuyerID); err != nil {
			return err
		}
		_, err = s.repo.SyncReservationCount(txCtx, listingID)
		return err
	})
}

// UpdateStatus is a direct administrative override. It bypasses the
// request/confirm protocol and leaves the request set untouched.
func (s *ReservationService) UpdateStatus(ctx context.Context, listingID string, status domain.ListingStatus) (domain.Listing, error) {
	var updated domain.Listing
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		listing, err := s.repo.GetListingForUpdate(txCtx, listingID)
		if err != nil {
			return err
		}
		if err := s.repo.SetListingStatus(txCtx, listingID, status); err != nil {
			return err
		}
		listing.Status = status
		updated = listing
		return nil
	})
	if err != nil {
		return domain.Listing{}, err
	}
	return updated, nil
}

// RequestsByBuyer lists the buyer's outstanding requests joined with their
// target listings.
func (s *ReservationService) RequestsByBuyer(ctx context.Context, buyerID string) ([]domain.BuyerRequest, error) {
	return s.repo.ListRequestsByBuyer(ctx, buyerID)
}
