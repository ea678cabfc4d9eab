package ledger

import (
	"context"
	"sort"
	"sync"
	"time"
)

// lockTable hands out exclusive per-account locks to in-process callers.
// Acquisition always happens in ascending id order, so two operations touching
// the same pair of accounts from opposite directions cannot deadlock.
type lockTable struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

// acquire locks every id within the wait budget and returns the release
// function. On timeout it releases whatever it already took and returns the
// context error, leaving no lock behind.
func (t *lockTable) acquire(ctx context.Context, wait time.Duration, ids ...string) (func(), error) {
	ordered := append([]string(nil), ids...)
	sort.Strings(ordered)

	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	taken := make([]string, 0, len(ordered))
	for _, id := range ordered {
		if err := t.lockOne(ctx, id); err != nil {
			for i := len(taken) - 1; i >= 0; i-- {
				t.unlockOne(taken[i])
			}
			return nil, err
		}
		taken = append(taken, id)
	}

	return func() {
		for i := len(taken) - 1; i >= 0; i-- {
			t.unlockOne(taken[i])
		}
	}, nil
}

func (t *lockTable) lockOne(ctx context.Context, id string) error {
	for {
		t.mu.Lock()
		ch, busy := t.held[id]
		if !busy {
			t.held[id] = make(chan struct{})
			t.mu.Unlock()
			return nil
		}
		t.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
			// Holder released; race the other waiters for it.
		}
	}
}

func (t *lockTable) unlockOne(id string) {
	t.mu.Lock()
	ch := t.held[id]
	delete(t.held, id)
	t.mu.Unlock()
	if ch != nil {
		close(ch)
	}
}
