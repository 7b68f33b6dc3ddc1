package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khatirak/SWE-final/internal/app"
	"github.com/khatirak/SWE-final/internal/domain"
)

const listingColumns = `id, seller_id, title, description, price_cents, condition, category,
tags, location, images, status, buyer_id, reservation_count, created_at, updated_at`

type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

func (r *ListingRepository) CreateListing(ctx context.Context, listing domain.Listing) error {
	const stmt = `
INSERT INTO listings (id, seller_id, title, description, price_cents, condition, category,
	tags, location, images, status, reservation_count, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.exec(ctx, stmt,
		listing.ID,
		listing.SellerID,
		listing.Title,
		listing.Description,
		listing.PriceCents,
		listing.Condition,
		listing.Category,
		listing.Tags,
		listing.Location,
		listing.Images,
		listing.Status,
		listing.ReservationCount,
		listing.CreatedAt,
		listing.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("create listing: %w", err)
	}
	return nil
}

func (r *ListingRepository) GetListing(ctx context.Context, id string) (domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	listing, err := scanListing(r.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Listing{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Listing{}, domain.ErrListingNotFound
		}
		return domain.Listing{}, fmt.Errorf("get listing: %w", err)
	}
	return listing, nil
}

func (r *ListingRepository) UpdateListing(ctx context.Context, id string, upd app.ListingUpdate) (domain.Listing, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.PriceCents != nil {
		add("price_cents", *upd.PriceCents)
	}
	if upd.Condition != nil {
		add("condition", *upd.Condition)
	}
	if upd.Category != nil {
		add("category", *upd.Category)
	}
	if upd.Tags != nil {
		add("tags", *upd.Tags)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.Images != nil {
		add("images", *upd.Images)
	}

	query := `UPDATE listings SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 RETURNING ` + listingColumns

	listing, err := scanListing(r.queryRow(ctx, query, args...))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Listing{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Listing{}, domain.ErrListingNotFound
		}
		return domain.Listing{}, fmt.Errorf("update listing: %w", err)
	}
	return listing, nil
}

func (r *ListingRepository) DeleteListing(ctx context.Context, id string) error {
	tag, err := r.exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) ListBySeller(ctx context.Context, sellerID string) ([]domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE seller_id = $1 ORDER BY created_at DESC`
	return r.queryListings(ctx, "list by seller", query, sellerID)
}

func (r *ListingRepository) ListRecent(ctx context.Context, limit int, category domain.Category) ([]domain.Listing, error) {
	if category != "" {
		query := `SELECT ` + listingColumns + ` FROM listings WHERE category = $1 ORDER BY created_at DESC LIMIT $2`
		return r.queryListings(ctx, "list recent", query, category, limit)
	}
	query := `SELECT ` + listingColumns + ` FROM listings ORDER BY created_at DESC LIMIT $1`
	return r.queryListings(ctx, "list recent", query, limit)
}

func (r *ListingRepository) SearchListings(ctx context.Context, q app.SearchQuery) ([]domain.Listing, error) {
	where := []string{}
	args := []any{}

	add := func(predicate string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(predicate, len(args)))
	}
	if q.Keyword != "" {
		add(`(title ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%[1]d || '%%')`, q.Keyword)
	}
	if q.Category != "" {
		add(`category = $%d`, q.Category)
	}
	if q.Condition != "" {
		add(`condition = $%d`, q.Condition)
	}
	if q.Status != "" {
		add(`status = $%d`, q.Status)
	}
	if q.Tag != "" {
		add(`$%d = ANY(tags)`, q.Tag)
	}
	if q.MinPriceCents != nil {
		add(`price_cents >= $%d`, *q.MinPriceCents)
	}
	if q.MaxPriceCents != nil {
		add(`price_cents <= $%d`, *q.MaxPriceCents)
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + listingColumns + ` FROM listings`)
	if len(where) > 0 {
		sb.WriteString(` WHERE ` + strings.Join(where, " AND "))
	}
	direction := "DESC"
	if q.SortAsc {
		direction = "ASC"
	}
	// q.SortBy is whitelisted by the service layer; never caller input.
	sb.WriteString(fmt.Sprintf(` ORDER BY %s %s`, q.SortBy, direction))
	args = append(args, q.Limit)
	sb.WriteString(fmt.Sprintf(` LIMIT $%d`, len(args)))
	args = append(args, q.Offset)
	sb.WriteString(fmt.Sprintf(` OFFSET $%d`, len(args)))

	return r.queryListings(ctx, "search listings", sb.String(), args...)
}

func (r *ListingRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.query(ctx, `SELECT DISTINCT category FROM listings ORDER BY category ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate categories: %w", rows.Err())
	}
	return categories, nil
}

func (r *ListingRepository) queryListings(ctx context.Context, op, query string, args ...any) ([]domain.Listing, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		listings = append(listings, listing)
	}
	if rows.Err() != nil {
		if isInvalidUUID(rows.Err()) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("%s: iterate: %w", op, rows.Err())
	}
	return listings, nil
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}

func scanListing(row pgx.Row) (domain.Listing, error) {
	var l domain.Listing
	var buyerID *string
	err := row.Scan(
		&l.ID,
		&l.SellerID,
		&l.Title,
		&l.Description,
		&l.PriceCents,
		&l.Condition,
		&l.Category,
		&l.Tags,
		&l.Location,
		&l.Images,
		&l.Status,
		&buyerID,
		&l.ReservationCount,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return domain.Listing{}, err
	}
	if buyerID != nil {
		l.BuyerID = *buyerID
	}
	return l, nil
}

func (r *ListingRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ListingRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *ListingRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
