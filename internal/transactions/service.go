package transactions

import (
	"context"

	"github.com/z-cash/z_cash/internal/ledger"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service is the transaction history read path.
type Service struct {
	txlog ledger.TransactionLog
}

// NewService builds the history query service.
func NewService(txlog ledger.TransactionLog) *Service {
	return &Service{txlog: txlog}
}

// ListFor returns the account's transactions (as sender or receiver), newest
// first, with limit/offset clamped to sane bounds.
func (s *Service) ListFor(ctx context.Context, accountID string, limit, offset int) ([]ledger.Transaction, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.txlog.ListByAccount(ctx, accountID, ledger.Page{Limit: limit, Offset: offset})
}
