package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khatirak/SWE-final/internal/domain"
)

type ReservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

func (r *ReservationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// GetListingForUpdate locks the listing row for the rest of the transaction.
func (r *ReservationRepository) GetListingForUpdate(ctx context.Context, listingID string) (domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1 FOR UPDATE`
	listing, err := scanListing(r.queryRow(ctx, query, listingID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Listing{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Listing{}, domain.ErrListingNotFound
		}
		return domain.Listing{}, fmt.Errorf("get listing for update: %w", err)
	}
	return listing, nil
}

func (r *ReservationRepository) ListRequests(ctx context.Context, listingID string) ([]domain.ReservationRequest, error) {
	const query = `
SELECT listing_id, buyer_id, status, requested_at, expires_at
FROM reservation_requests
WHERE listing_id = $1
ORDER BY requested_at ASC`

	rows, err := r.query(ctx, query, listingID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var reqs []domain.ReservationRequest
	for rows.Next() {
		var req domain.ReservationRequest
		if err := rows.Scan(&req.ListingID, &req.BuyerID, &req.Status, &req.RequestedAt, &req.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		reqs = append(reqs, req)
	}
	if rows.Err() != nil {
		if isInvalidUUID(rows.Err()) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("iterate requests: %w", rows.Err())
	}
	return reqs, nil
}

func (r *ReservationRepository) InsertRequest(ctx context.Context, req domain.ReservationRequest) error {
	const stmt = `
INSERT INTO reservation_requests (listing_id, buyer_id, status, requested_at, expires_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.exec(ctx, stmt, req.ListingID, req.BuyerID, req.Status, req.RequestedAt, req.ExpiresAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateRequest
		}
		if isForeignKeyViolation(err) {
			return domain.ErrListingNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (r *ReservationRepository) DeleteRequest(ctx context.Context, listingID, buyerID string) error {
	tag, err := r.exec(ctx,
		`DELETE FROM reservation_requests WHERE listing_id = $1 AND buyer_id = $2`,
		listingID, buyerID,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) DeleteExpiredRequests(ctx context.Context, listingID string, now time.Time) error {
	_, err := r.exec(ctx,
		`DELETE FROM reservation_requests WHERE listing_id = $1 AND expires_at <= $2`,
		listingID, now,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete expired requests: %w", err)
	}
	return nil
}

func (r *ReservationRepository) SetRequestStatus(ctx context.Context, listingID, buyerID string, status domain.RequestStatus) error {
	tag, err := r.exec(ctx,
		`UPDATE reservation_requests SET status = $3 WHERE listing_id = $1 AND buyer_id = $2`,
		listingID, buyerID, status,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("set request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

// ReopenRequests puts every request for the listing back into the pending
// pool with a fresh expiry, including a previously confirmed one.
func (r *ReservationRepository) ReopenRequests(ctx context.Context, listingID string, expiresAt time.Time) error {
	_, err := r.exec(ctx,
		`UPDATE reservation_requests SET expires_at = $2, status = $3 WHERE listing_id = $1`,
		listingID, expiresAt, domain.RequestStatusPending,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("reopen requests: %w", err)
	}
	return nil
}

func (r *ReservationRepository) ClearRequests(ctx context.Context, listingID string) error {
	_, err := r.exec(ctx, `DELETE FROM reservation_requests WHERE listing_id = $1`, listingID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("clear requests: %w", err)
	}
	return nil
}

// SetListingState sets status and buyer together; an empty buyerID stores NULL.
func (r *ReservationRepository) SetListingState(ctx context.Context, listingID string, status domain.ListingStatus, buyerID string) error {
	var buyer any
	if buyerID != "" {
		buyer = buyerID
	}
	tag, err := r.exec(ctx,
		`UPDATE listings SET status = $2, buyer_id = $3, updated_at = NOW() WHERE id = $1`,
		listingID, status, buyer,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("set listing state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

// SetListingStatus is the raw administrative override; buyer and requests
// are left untouched.
func (r *ReservationRepository) SetListingStatus(ctx context.Context, listingID string, status domain.ListingStatus) error {
	tag, err := r.exec(ctx,
		`UPDATE listings SET status = $2, updated_at = NOW() WHERE id = $1`,
		listingID, status,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("set listing status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

// SyncReservationCount recomputes reservation_count from the request rows in
// the same transaction, keeping the column from drifting.
func (r *ReservationRepository) SyncReservationCount(ctx context.Context, listingID string) (int, error) {
	const stmt = `
UPDATE listings
SET reservation_count = (SELECT COUNT(*) FROM reservation_requests WHERE listing_id = $1)
WHERE id = $1
RETURNING reservation_count`

	var count int
	if err := r.queryRow(ctx, stmt, listingID).Scan(&count); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return 0, domain.ErrListingNotFound
		}
		return 0, fmt.Errorf("sync reservation count: %w", err)
	}
	return count, nil
}

func (r *ReservationRepository) ListRequestsByBuyer(ctx context.Context, buyerID string) ([]domain.BuyerRequest, error) {
	query := `
SELECT ` + prefixColumns("l", listingColumns) + `,
	rr.listing_id, rr.buyer_id, rr.status, rr.requested_at, rr.expires_at
FROM reservation_requests rr
JOIN listings l ON l.id = rr.listing_id
WHERE rr.buyer_id = $1
ORDER BY rr.requested_at DESC`

	rows, err := r.query(ctx, query, buyerID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list requests by buyer: %w", err)
	}
	defer rows.Close()

	var out []domain.BuyerRequest
	for rows.Next() {
		var br domain.BuyerRequest
		var listingBuyer *string
		err := rows.Scan(
			&br.Listing.ID,
			&br.Listing.SellerID,
			&br.Listing.Title,
			&br.Listing.Description,
			&br.Listing.PriceCents,
			&br.Listing.Condition,
			&br.Listing.Category,
			&br.Listing.Tags,
			&br.Listing.Location,
			&br.Listing.Images,
			&br.Listing.Status,
			&listingBuyer,
			&br.Listing.ReservationCount,
			&br.Listing.CreatedAt,
			&br.Listing.UpdatedAt,
			&br.Request.ListingID,
			&br.Request.BuyerID,
			&br.Request.Status,
			&br.Request.RequestedAt,
			&br.Request.ExpiresAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan buyer request: %w", err)
		}
		if listingBuyer != nil {
			br.Listing.BuyerID = *listingBuyer
		}
		out = append(out, br)
	}
	if rows.Err() != nil {
		if isInvalidUUID(rows.Err()) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("iterate buyer requests: %w", rows.Err())
	}
	return out, nil
}

func (r *ReservationRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ReservationRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *ReservationRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
