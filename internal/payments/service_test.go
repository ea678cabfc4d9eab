package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/z-cash/z_cash/internal/identity"
	"github.com/z-cash/z_cash/internal/ledger"
	"github.com/z-cash/z_cash/internal/notification"
)

type testNotifier struct {
	last notification.Message
}

func (n *testNotifier) Send(_ context.Context, msg notification.Message) error {
	n.last = msg
	return nil
}

type fixture struct {
	svc   *Service
	ids   *identity.Service
	store *ledger.MemoryStore
	note  *testNotifier
}

func newFixture(startingBalance int64) fixture {
	store := ledger.NewMemoryStore()
	txlog := ledger.NewMemoryLog()
	engine := ledger.NewEngine(store, txlog, 3, time.Second)
	repo := identity.NewMemoryRepository()
	ids := identity.NewService(repo, store, startingBalance)
	note := &testNotifier{}
	return fixture{svc: NewService(engine, repo, note), ids: ids, store: store, note: note}
}

func (f fixture) register(t *testing.T, name, email string) identity.User {
	t.Helper()
	user, err := f.ids.Register(context.Background(), identity.RegisterInput{Name: name, Email: email, Password: "secret1"})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return user
}

func TestTransferSuccess(t *testing.T) {
	f := newFixture(50_000)
	ctx := context.Background()

	sender := f.register(t, "Ada", "ada@example.com")
	receiver := f.register(t, "Bob", "bob@example.com")

	res, err := f.svc.Transfer(ctx, TransferInput{SenderID: sender.ID, ReceiverEmail: "bob@example.com", Amount: 20_000})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if res.NewBalance != 30_000 {
		t.Fatalf("expected sender balance 30000, got %d", res.NewBalance)
	}

	acct, _ := f.store.Get(ctx, receiver.ID)
	if acct.Balance != 70_000 {
		t.Fatalf("expected receiver balance 70000, got %d", acct.Balance)
	}

	if f.note.last.Kind != notification.KindTransferReceived || f.note.last.Destination != receiver.ID {
		t.Fatalf("expected receiver notification, got %+v", f.note.last)
	}
}

func TestTransferInsufficientFunds(t *testing.T) {
	f := newFixture(10_000)
	ctx := context.Background()

	sender := f.register(t, "Ada", "ada@example.com")
	f.register(t, "Bob", "bob@example.com")

	_, err := f.svc.Transfer(ctx, TransferInput{SenderID: sender.ID, ReceiverEmail: "bob@example.com", Amount: 20_000})
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	acct, _ := f.store.Get(ctx, sender.ID)
	if acct.Balance != 10_000 {
		t.Fatalf("rejected transfer mutated balance: %d", acct.Balance)
	}
}

func TestTransferToUnknownEmail(t *testing.T) {
	f := newFixture(10_000)
	ctx := context.Background()

	sender := f.register(t, "Ada", "ada@example.com")

	_, err := f.svc.Transfer(ctx, TransferInput{SenderID: sender.ID, ReceiverEmail: "nobody@example.com", Amount: 1_000})
	if !errors.Is(err, ErrReceiverNotFound) {
		t.Fatalf("expected receiver not found, got %v", err)
	}
}

func TestTransferToSelfRejected(t *testing.T) {
	f := newFixture(10_000)
	ctx := context.Background()

	sender := f.register(t, "Ada", "ada@example.com")

	_, err := f.svc.Transfer(ctx, TransferInput{SenderID: sender.ID, ReceiverEmail: "ada@example.com", Amount: 1_000})
	if !errors.Is(err, ledger.ErrSelfTransfer) {
		t.Fatalf("expected self transfer rejection, got %v", err)
	}
}
