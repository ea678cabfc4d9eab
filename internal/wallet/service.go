package wallet

import (
	"context"

	"github.com/z-cash/z_cash/internal/ledger"
)

// Service exposes the wallet read path and the recharge entry point.
type Service struct {
	engine   *ledger.Engine
	accounts ledger.AccountStore
}

// NewService builds a wallet service instance.
func NewService(engine *ledger.Engine, accounts ledger.AccountStore) *Service {
	return &Service{engine: engine, accounts: accounts}
}

// Result describes a committed wallet operation.
type Result struct {
	NewBalance  int64
	Transaction ledger.Transaction
}

// Balance returns the committed balance for the account. The store is the
// single source of truth; there is no derived or cached balance.
func (s *Service) Balance(ctx context.Context, accountID string) (ledger.Account, error) {
	return s.accounts.Get(ctx, accountID)
}

// Recharge credits amount onto the caller's own account.
func (s *Service) Recharge(ctx context.Context, accountID string, amount int64) (Result, error) {
	tx, acct, err := s.engine.Execute(ctx, ledger.Recharge{AccountID: accountID, Amount: amount})
	if err != nil {
		return Result{}, err
	}
	return Result{NewBalance: acct.Balance, Transaction: tx}, nil
}
