package app

import (
	"context"
	"strings"

	"github.com/khatirak/SWE-final/internal/clock"
	"github.com/khatirak/SWE-final/internal/domain"
)

type UserRepository interface {
	UpsertUserByEmail(ctx context.Context, user domain.User) (domain.User, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	UpdatePhone(ctx context.Context, id, phone string) error
}

type UserService struct {
	repo        UserRepository
	clock       clock.Clock
	emailDomain string
}

const defaultEmailDomain = "@nyu.edu"

func NewUserService(repo UserRepository, clk clock.Clock, opts ...UserServiceOption) *UserService {
	svc := &UserService{
		repo:        repo,
		clock:       clk,
		emailDomain: defaultEmailDomain,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type UserServiceOption func(*UserService)

// WithEmailDomain overrides the campus email domain requirement.
func WithEmailDomain(d string) UserServiceOption {
	return func(s *UserService) {
		if d != "" {
			s.emailDomain = d
		}
	}
}

// Login upserts the account keyed by campus email; the identity itself is
// asserted upstream (OAuth callback or dev login), this only enforces the
// domain rule and materializes the user row.
func (s *UserService) Login(ctx context.Context, email, name string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.HasSuffix(email, s.emailDomain) {
		return domain.User{}, domain.ErrEmailDomain
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.User{}, domain.ErrNameRequired
	}

	user := domain.User{
		ID:        newID(),
		Email:     email,
		Name:      name,
		CreatedAt: s.clock.Now(),
	}
	return s.repo.UpsertUserByEmail(ctx, user)
}

func (s *UserService) UpdatePhone(ctx context.Context, id, phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return domain.ErrPhoneRequired
	}
	return s.repo.UpdatePhone(ctx, id, phone)
}

// GetUserByID also satisfies UserDirectory, so the reservation read path
// can resolve a confirmed buyer's phone.
func (s *UserService) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return s.repo.GetUserByID(ctx, id)
}
