package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/z-cash/z_cash/internal/ledger"
)

func newTestService(startingBalance int64) (*Service, *ledger.MemoryStore) {
	store := ledger.NewMemoryStore()
	return NewService(NewMemoryRepository(), store, startingBalance), store
}

func TestRegisterProvisionsAccount(t *testing.T) {
	svc, store := newTestService(10_000)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "Ada@Example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("email not normalized: %s", user.Email)
	}

	acct, err := store.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("account not provisioned: %v", err)
	}
	if acct.Balance != 10_000 {
		t.Fatalf("expected starting balance 10000, got %d", acct.Balance)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(0)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Name: "Eve", Email: "ada@example.com", Password: "secret2"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newTestService(0)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := svc.Authenticate(ctx, "ada@example.com", "secret1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, got.ID)
	}

	if _, err := svc.Authenticate(ctx, "ada@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestService(0)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := svc.Update(ctx, user.ID, UpdateInput{Name: "Ada L."})
	if err != nil {
		t.Fatalf("update name: %v", err)
	}
	if updated.Name != "Ada L." {
		t.Fatalf("name not updated: %s", updated.Name)
	}

	// Password change requires the current password.
	if _, err := svc.Update(ctx, user.ID, UpdateInput{CurrentPassword: "wrong", NewPassword: "newsecret"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Update(ctx, user.ID, UpdateInput{CurrentPassword: "secret1", NewPassword: "newsecret"}); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ada@example.com", "newsecret"); err != nil {
		t.Fatalf("authenticate with new password: %v", err)
	}
}
