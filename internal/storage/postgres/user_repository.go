package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khatirak/SWE-final/internal/domain"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// UpsertUserByEmail inserts the user or, when the email is already
// registered, refreshes the display name and returns the existing account.
func (r *UserRepository) UpsertUserByEmail(ctx context.Context, user domain.User) (domain.User, error) {
	const stmt = `
INSERT INTO users (id, email, name, phone, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
RETURNING id, email, name, phone, created_at`

	var out domain.User
	err := r.pool.QueryRow(ctx, stmt, user.ID, user.Email, user.Name, user.Phone, user.CreatedAt).
		Scan(&out.ID, &out.Email, &out.Name, &out.Phone, &out.CreatedAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("upsert user: %w", err)
	}
	return out, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	const query = `SELECT id, email, name, phone, created_at FROM users WHERE id = $1`

	var user domain.User
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&user.ID, &user.Email, &user.Name, &user.Phone, &user.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.User{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) UpdatePhone(ctx context.Context, id, phone string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET phone = $2 WHERE id = $1`, id, phone)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update phone: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
