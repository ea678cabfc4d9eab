package wallet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/z-cash/z_cash/internal/ledger"
)

func newTestService() (*Service, *ledger.MemoryStore) {
	store := ledger.NewMemoryStore()
	engine := ledger.NewEngine(store, ledger.NewMemoryLog(), 3, time.Second)
	return NewService(engine, store), store
}

func TestRechargeIncreasesBalance(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	id := ledger.SeedAccount(store, 10_000)

	res, err := svc.Recharge(ctx, id, 5_000)
	if err != nil {
		t.Fatalf("recharge: %v", err)
	}
	if res.NewBalance != 15_000 {
		t.Fatalf("expected new balance 15000, got %d", res.NewBalance)
	}
	if res.Transaction.Kind != ledger.KindRecharge || res.Transaction.Status != ledger.StatusCompleted {
		t.Fatalf("unexpected record: %+v", res.Transaction)
	}
	if res.Transaction.SenderID != res.Transaction.ReceiverID {
		t.Fatalf("recharge record must have sender == receiver")
	}
}

func TestRechargeRejectsBadAmount(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	id := ledger.SeedAccount(store, 10_000)

	if _, err := svc.Recharge(ctx, id, 0); !errors.Is(err, ledger.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}

	acct, _ := svc.Balance(ctx, id)
	if acct.Balance != 10_000 {
		t.Fatalf("rejected recharge mutated balance: %d", acct.Balance)
	}
}

func TestBalanceIsIdempotent(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	id := ledger.SeedAccount(store, 7_500)

	first, err := svc.Balance(ctx, id)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	second, err := svc.Balance(ctx, id)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if first.Balance != second.Balance || first.Version != second.Version {
		t.Fatalf("repeated read diverged: %+v vs %+v", first, second)
	}
}
