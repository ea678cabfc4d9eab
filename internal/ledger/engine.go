package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	defaultCommitRetries = 3
	defaultLockTimeout   = 5 * time.Second
)

// Intent is a requested value movement, either a Transfer or a Recharge.
type Intent interface {
	intent()
}

// Transfer moves Amount from the sender to a different receiver.
type Transfer struct {
	SenderID   string
	ReceiverID string
	Amount     int64
}

func (Transfer) intent() {}

// Recharge credits Amount onto a single account.
type Recharge struct {
	AccountID string
	Amount    int64
}

func (Recharge) intent() {}

// Engine commits value movements so that the balance store and the transaction
// log never diverge. Accounts involved in an operation are locked in ascending
// id order, balances are re-read and re-validated under the lock, and every
// write goes through the store's compare-and-set so a concurrent mutation from
// another process is detected and retried.
type Engine struct {
	accounts AccountStore
	txlog    TransactionLog
	retries  int
	lockWait time.Duration
	locks    lockTable
}

// NewEngine builds an engine over the given backends. Non-positive retries or
// lockWait fall back to defaults.
func NewEngine(accounts AccountStore, txlog TransactionLog, retries int, lockWait time.Duration) *Engine {
	if retries <= 0 {
		retries = defaultCommitRetries
	}
	if lockWait <= 0 {
		lockWait = defaultLockTimeout
	}
	return &Engine{
		accounts: accounts,
		txlog:    txlog,
		retries:  retries,
		lockWait: lockWait,
		locks:    lockTable{held: make(map[string]chan struct{})},
	}
}

// Execute validates and commits the intent as one atomic unit. It returns the
// terminal transaction record and the caller's account as committed. Fail-fast
// rejections (bad amount, self transfer, unknown account, insufficient funds at
// validation time) leave no record and mutate nothing.
func (e *Engine) Execute(ctx context.Context, intent Intent) (Transaction, Account, error) {
	switch it := intent.(type) {
	case Transfer:
		return e.transfer(ctx, it)
	case Recharge:
		return e.recharge(ctx, it)
	default:
		return Transaction{}, Account{}, fmt.Errorf("unsupported intent %T", intent)
	}
}

func (e *Engine) transfer(ctx context.Context, it Transfer) (Transaction, Account, error) {
	if it.Amount <= 0 {
		return Transaction{}, Account{}, ErrInvalidAmount
	}
	if it.SenderID == it.ReceiverID {
		return Transaction{}, Account{}, ErrSelfTransfer
	}

	sender, err := e.accounts.Get(ctx, it.SenderID)
	if err != nil {
		return Transaction{}, Account{}, err
	}
	if _, err := e.accounts.Get(ctx, it.ReceiverID); err != nil {
		return Transaction{}, Account{}, err
	}
	if sender.Balance < it.Amount {
		return Transaction{}, Account{}, ErrInsufficientFunds
	}

	unlock, err := e.locks.acquire(ctx, e.lockWait, it.SenderID, it.ReceiverID)
	if err != nil {
		return Transaction{}, Account{}, fmt.Errorf("%w: %v", ErrConflict, err)
	}
	defer unlock()

	for attempt := 0; attempt < e.retries; attempt++ {
		sender, err = e.accounts.Get(ctx, it.SenderID)
		if err != nil {
			return Transaction{}, Account{}, err
		}
		receiver, err := e.accounts.Get(ctx, it.ReceiverID)
		if err != nil {
			return Transaction{}, Account{}, err
		}

		// Balance may have moved between validation and lock acquisition.
		if sender.Balance < it.Amount {
			tx := newTransaction(it.SenderID, it.ReceiverID, it.Amount, KindTransfer, StatusFailed)
			if err := e.txlog.Append(ctx, tx); err != nil {
				return Transaction{}, Account{}, fmt.Errorf("append transaction: %w", err)
			}
			return tx, sender, ErrInsufficientFunds
		}

		tx := newTransaction(it.SenderID, it.ReceiverID, it.Amount, KindTransfer, StatusPending)
		if err := e.txlog.Append(ctx, tx); err != nil {
			return Transaction{}, Account{}, fmt.Errorf("append transaction: %w", err)
		}

		debited, err := e.accounts.CompareAndSet(ctx, sender.ID, sender.Version, sender.Balance-it.Amount)
		if errors.Is(err, ErrVersionConflict) {
			e.fail(ctx, tx.ID)
			continue
		}
		if err != nil {
			e.fail(ctx, tx.ID)
			return Transaction{}, Account{}, fmt.Errorf("debit %s: %w", sender.ID, err)
		}

		if _, err := e.accounts.CompareAndSet(ctx, receiver.ID, receiver.Version, receiver.Balance+it.Amount); err != nil {
			// The debit already landed; put the money back before anything else.
			if rerr := e.applyDelta(ctx, debited.ID, it.Amount); rerr != nil {
				e.fail(ctx, tx.ID)
				return Transaction{}, Account{}, fmt.Errorf("undo debit after failed credit: %w", rerr)
			}
			e.fail(ctx, tx.ID)
			if errors.Is(err, ErrVersionConflict) {
				continue
			}
			return Transaction{}, Account{}, fmt.Errorf("credit %s: %w", receiver.ID, err)
		}

		if err := e.txlog.MarkStatus(ctx, tx.ID, StatusCompleted); err != nil {
			// Storage failed between the balance writes and the terminal mark;
			// reverse both sides so no half-committed state survives.
			_ = e.applyDelta(ctx, it.SenderID, it.Amount)
			_ = e.applyDelta(ctx, it.ReceiverID, -it.Amount)
			e.fail(ctx, tx.ID)
			return Transaction{}, Account{}, fmt.Errorf("complete transaction %s: %w", tx.ID, err)
		}

		tx.Status = StatusCompleted
		return tx, debited, nil
	}

	return Transaction{}, Account{}, ErrConflict
}

func (e *Engine) recharge(ctx context.Context, it Recharge) (Transaction, Account, error) {
	if it.Amount <= 0 {
		return Transaction{}, Account{}, ErrInvalidAmount
	}
	if _, err := e.accounts.Get(ctx, it.AccountID); err != nil {
		return Transaction{}, Account{}, err
	}

	unlock, err := e.locks.acquire(ctx, e.lockWait, it.AccountID)
	if err != nil {
		return Transaction{}, Account{}, fmt.Errorf("%w: %v", ErrConflict, err)
	}
	defer unlock()

	for attempt := 0; attempt < e.retries; attempt++ {
		acct, err := e.accounts.Get(ctx, it.AccountID)
		if err != nil {
			return Transaction{}, Account{}, err
		}

		tx := newTransaction(it.AccountID, it.AccountID, it.Amount, KindRecharge, StatusPending)
		if err := e.txlog.Append(ctx, tx); err != nil {
			return Transaction{}, Account{}, fmt.Errorf("append transaction: %w", err)
		}

		credited, err := e.accounts.CompareAndSet(ctx, acct.ID, acct.Version, acct.Balance+it.Amount)
		if errors.Is(err, ErrVersionConflict) {
			e.fail(ctx, tx.ID)
			continue
		}
		if err != nil {
			e.fail(ctx, tx.ID)
			return Transaction{}, Account{}, fmt.Errorf("credit %s: %w", acct.ID, err)
		}

		if err := e.txlog.MarkStatus(ctx, tx.ID, StatusCompleted); err != nil {
			_ = e.applyDelta(ctx, it.AccountID, -it.Amount)
			e.fail(ctx, tx.ID)
			return Transaction{}, Account{}, fmt.Errorf("complete transaction %s: %w", tx.ID, err)
		}

		tx.Status = StatusCompleted
		return tx, credited, nil
	}

	return Transaction{}, Account{}, ErrConflict
}

// applyDelta adjusts a balance through compare-and-set, refreshing the version
// on conflict. Used only for compensation while the account lock is held.
func (e *Engine) applyDelta(ctx context.Context, id string, delta int64) error {
	for attempt := 0; attempt < e.retries; attempt++ {
		acct, err := e.accounts.Get(ctx, id)
		if err != nil {
			return err
		}
		if _, err := e.accounts.CompareAndSet(ctx, acct.ID, acct.Version, acct.Balance+delta); err == nil {
			return nil
		} else if !errors.Is(err, ErrVersionConflict) {
			return err
		}
	}
	return ErrConflict
}

// fail is a best-effort terminal mark; startup recovery sweeps anything left
// PENDING by a failure here.
func (e *Engine) fail(ctx context.Context, txID string) {
	_ = e.txlog.MarkStatus(ctx, txID, StatusFailed)
}

func newTransaction(senderID, receiverID string, amount int64, kind Kind, status Status) Transaction {
	return Transaction{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Amount:     amount,
		Kind:       kind,
		Status:     status,
		CreatedAt:  time.Now().UTC(),
	}
}
