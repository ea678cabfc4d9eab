package transactions

import (
	"context"
	"testing"
	"time"

	"github.com/z-cash/z_cash/internal/ledger"
)

func seedHistory(t *testing.T, txlog *ledger.MemoryLog, account string, n int) {
	t.Helper()
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		tx := ledger.Transaction{
			ID:         string(rune('a' + i)),
			SenderID:   account,
			ReceiverID: "peer",
			Amount:     int64(100 * (i + 1)),
			Kind:       ledger.KindTransfer,
			Status:     ledger.StatusCompleted,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := txlog.Append(context.Background(), tx); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
}

func TestListForNewestFirst(t *testing.T) {
	txlog := ledger.NewMemoryLog()
	svc := NewService(txlog)
	ctx := context.Background()

	seedHistory(t, txlog, "acct", 3)

	got, err := svc.ListFor(ctx, "acct", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.After(got[i-1].CreatedAt) {
			t.Fatalf("records out of order at %d", i)
		}
	}
}

func TestListForClampsPage(t *testing.T) {
	txlog := ledger.NewMemoryLog()
	svc := NewService(txlog)
	ctx := context.Background()

	seedHistory(t, txlog, "acct", 5)

	// Zero limit falls back to the default page size.
	got, err := svc.ListFor(ctx, "acct", 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected all 5 records under default page, got %d", len(got))
	}

	paged, err := svc.ListFor(ctx, "acct", 2, 2)
	if err != nil {
		t.Fatalf("paged list: %v", err)
	}
	if len(paged) != 2 {
		t.Fatalf("expected 2 records, got %d", len(paged))
	}

	// Negative offset is treated as the first page.
	first, err := svc.ListFor(ctx, "acct", 2, -5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(first) != 2 || first[0].ID != got[0].ID {
		t.Fatalf("negative offset should yield the first page")
	}
}

func TestListForRepeatedReadsAgree(t *testing.T) {
	txlog := ledger.NewMemoryLog()
	svc := NewService(txlog)
	ctx := context.Background()

	seedHistory(t, txlog, "acct", 4)

	a, err := svc.ListFor(ctx, "acct", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	b, err := svc.ListFor(ctx, "acct", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("repeated reads diverged: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("repeated reads diverged at %d", i)
		}
	}
}
