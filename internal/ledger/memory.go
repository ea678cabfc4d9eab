package ledger

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// MemoryStore is a concurrency-safe in-memory AccountStore used for unit tests
// and for running the API without Postgres in development.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewMemoryStore builds an empty in-memory account store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]Account)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return acct, nil
}

func (s *MemoryStore) Create(_ context.Context, account Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.ID]; exists {
		return errors.New("account exists")
	}
	s.accounts[account.ID] = account
	return nil
}

func (s *MemoryStore) CompareAndSet(_ context.Context, id string, expectedVersion, newBalance int64) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	if acct.Version != expectedVersion {
		return Account{}, ErrVersionConflict
	}
	acct.Balance = newBalance
	acct.Version++
	s.accounts[id] = acct
	return acct, nil
}

// MemoryLog is the in-memory TransactionLog counterpart of MemoryStore.
type MemoryLog struct {
	mu      sync.RWMutex
	entries []Transaction
	index   map[string]int
}

// NewMemoryLog builds an empty in-memory transaction log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{index: make(map[string]int)}
}

func (l *MemoryLog) Append(_ context.Context, tx Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.index[tx.ID]; exists {
		return errors.New("transaction exists")
	}
	l.index[tx.ID] = len(l.entries)
	l.entries = append(l.entries, tx)
	return nil
}

func (l *MemoryLog) MarkStatus(_ context.Context, txID string, status Status) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	i, ok := l.index[txID]
	if !ok {
		return errors.New("transaction not found")
	}
	if l.entries[i].Status != StatusPending {
		return errors.New("transaction already terminal")
	}
	l.entries[i].Status = status
	return nil
}

func (l *MemoryLog) ListByAccount(_ context.Context, accountID string, page Page) ([]Transaction, error) {
	l.mu.RLock()
	matched := make([]Transaction, 0)
	for _, tx := range l.entries {
		if tx.SenderID == accountID || tx.ReceiverID == accountID {
			matched = append(matched, tx)
		}
	}
	l.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if page.Offset < 0 {
		page.Offset = 0
	}
	if page.Offset >= len(matched) {
		return []Transaction{}, nil
	}
	matched = matched[page.Offset:]
	if page.Limit > 0 && page.Limit < len(matched) {
		matched = matched[:page.Limit]
	}
	return matched, nil
}

func (l *MemoryLog) FailPending(_ context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int64
	for i := range l.entries {
		if l.entries[i].Status == StatusPending {
			l.entries[i].Status = StatusFailed
			n++
		}
	}
	return n, nil
}
