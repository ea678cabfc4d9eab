package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SeedAccount is a test helper that creates an account with the given balance
// and returns its id.
func SeedAccount(store AccountStore, balance int64) string {
	id := uuid.NewString()
	_ = store.Create(context.Background(), Account{
		ID:        id,
		Balance:   balance,
		CreatedAt: time.Now().UTC(),
	})
	return id
}
