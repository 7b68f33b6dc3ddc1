package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/khatirak/SWE-final/internal/clock"
	"github.com/khatirak/SWE-final/internal/domain"
)

func TestUserService_Login(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("upserts account for campus email", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewUserService(repo, clock.NewFixed(now))

		user, err := svc.Login(context.Background(), "  Jamie.Lee@NYU.edu ", "Jamie Lee")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.Email != "jamie.lee@nyu.edu" {
			t.Fatalf("expected normalized email, got %q", user.Email)
		}
		if user.ID == "" {
			t.Fatalf("expected user ID to be set")
		}

		// A second login with the same email reuses the account.
		again, err := svc.Login(context.Background(), "jamie.lee@nyu.edu", "Jamie Lee")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if again.ID != user.ID {
			t.Fatalf("expected same account, got %s and %s", user.ID, again.ID)
		}
		if len(repo.byEmail) != 1 {
			t.Fatalf("expected 1 stored user, got %d", len(repo.byEmail))
		}
	})

	t.Run("rejects foreign domain", func(t *testing.T) {
		svc := NewUserService(newFakeUserRepo(), clock.NewFixed(now))

		_, err := svc.Login(context.Background(), "someone@gmail.com", "Someone")
		if !errors.Is(err, domain.ErrEmailDomain) {
			t.Fatalf("expected ErrEmailDomain, got %v", err)
		}
	})

	t.Run("rejects blank name", func(t *testing.T) {
		svc := NewUserService(newFakeUserRepo(), clock.NewFixed(now))

		_, err := svc.Login(context.Background(), "someone@nyu.edu", "   ")
		if !errors.Is(err, domain.ErrNameRequired) {
			t.Fatalf("expected ErrNameRequired, got %v", err)
		}
	})

	t.Run("custom domain option", func(t *testing.T) {
		svc := NewUserService(newFakeUserRepo(), clock.NewFixed(now), WithEmailDomain("@example.edu"))

		if _, err := svc.Login(context.Background(), "a@example.edu", "A"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := svc.Login(context.Background(), "a@nyu.edu", "A"); !errors.Is(err, domain.ErrEmailDomain) {
			t.Fatalf("expected ErrEmailDomain, got %v", err)
		}
	})
}

func TestUserService_UpdatePhone(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeUserRepo()
	svc := NewUserService(repo, clock.NewFixed(now))

	user, err := svc.Login(context.Background(), "b@nyu.edu", "B")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.UpdatePhone(context.Background(), user.ID, " +1-555-0101 "); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	stored, err := svc.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if stored.Phone != "+1-555-0101" {
		t.Fatalf("expected trimmed phone stored, got %q", stored.Phone)
	}

	if err := svc.UpdatePhone(context.Background(), user.ID, "   "); !errors.Is(err, domain.ErrPhoneRequired) {
		t.Fatalf("expected ErrPhoneRequired, got %v", err)
	}
	if err := svc.UpdatePhone(context.Background(), "ghost", "+1-555-0102"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

type fakeUserRepo struct {
	byEmail map[string]domain.User
	byID    map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: make(map[string]domain.User),
		byID:    make(map[string]domain.User),
	}
}

func (f *fakeUserRepo) UpsertUserByEmail(_ context.Context, user domain.User) (domain.User, error) {
	if existing, ok := f.byEmail[user.Email]; ok {
		existing.Name = user.Name
		f.byEmail[user.Email] = existing
		f.byID[existing.ID] = existing
		return existing, nil
	}
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (domain.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) UpdatePhone(_ context.Context, id, phone string) error {
	user, ok := f.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.Phone = phone
	f.byID[id] = user
	f.byEmail[user.Email] = user
	return nil
}
