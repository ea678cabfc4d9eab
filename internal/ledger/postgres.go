package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists accounts and the transaction log in PostgreSQL. It
// implements both AccountStore and TransactionLog.
//
// Expected schema:
//
//	accounts(id uuid primary key, balance bigint not null, version bigint not null, created_at timestamptz not null)
//	transactions(id uuid primary key, sender_id uuid not null, receiver_id uuid not null,
//	             amount bigint not null, kind text not null, status text not null,
//	             created_at timestamptz not null)
//	index on transactions (sender_id, created_at desc), (receiver_id, created_at desc)
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a Postgres-backed ledger store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Account, error) {
	acctID, err := uuid.Parse(id)
	if err != nil {
		return Account{}, ErrAccountNotFound
	}
	row := s.db.QueryRow(ctx, `SELECT id, balance, version, created_at
        FROM accounts WHERE id = $1`, acctID)
	return scanAccount(row)
}

func (s *PostgresStore) Create(ctx context.Context, account Account) error {
	acctID, err := uuid.Parse(account.ID)
	if err != nil {
		return fmt.Errorf("parse account id: %w", err)
	}
	_, err = s.db.Exec(ctx, `INSERT INTO accounts (id, balance, version, created_at)
        VALUES ($1, $2, $3, $4)`, acctID, account.Balance, account.Version, account.CreatedAt.UTC())
	return err
}

// CompareAndSet performs the optimistic update: the row is touched only when
// the stored version still matches, and the version is bumped in the same
// statement so concurrent writers cannot interleave.
func (s *PostgresStore) CompareAndSet(ctx context.Context, id string, expectedVersion, newBalance int64) (Account, error) {
	acctID, err := uuid.Parse(id)
	if err != nil {
		return Account{}, ErrAccountNotFound
	}
	row := s.db.QueryRow(ctx, `UPDATE accounts
        SET balance = $2, version = version + 1
        WHERE id = $1 AND version = $3
        RETURNING id, balance, version, created_at`, acctID, newBalance, expectedVersion)
	acct, err := scanAccount(row)
	if errors.Is(err, ErrAccountNotFound) {
		// No row updated: either the account is gone or the version moved.
		if _, getErr := s.Get(ctx, id); getErr != nil {
			return Account{}, getErr
		}
		return Account{}, ErrVersionConflict
	}
	return acct, err
}

func (s *PostgresStore) Append(ctx context.Context, tx Transaction) error {
	txID, err := uuid.Parse(tx.ID)
	if err != nil {
		return fmt.Errorf("parse transaction id: %w", err)
	}
	_, err = s.db.Exec(ctx, `INSERT INTO transactions (id, sender_id, receiver_id, amount, kind, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		txID, tx.SenderID, tx.ReceiverID, tx.Amount, string(tx.Kind), string(tx.Status), tx.CreatedAt.UTC())
	return err
}

func (s *PostgresStore) MarkStatus(ctx context.Context, txID string, status Status) error {
	id, err := uuid.Parse(txID)
	if err != nil {
		return fmt.Errorf("parse transaction id: %w", err)
	}
	cmd, err := s.db.Exec(ctx, `UPDATE transactions SET status = $2
        WHERE id = $1 AND status = $3`, id, string(status), string(StatusPending))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return errors.New("transaction not pending")
	}
	return nil
}

func (s *PostgresStore) ListByAccount(ctx context.Context, accountID string, page Page) ([]Transaction, error) {
	acctID, err := uuid.Parse(accountID)
	if err != nil {
		return nil, ErrAccountNotFound
	}
	limit := page.Limit
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(ctx, `SELECT id, sender_id, receiver_id, amount, kind, status, created_at
        FROM transactions
        WHERE sender_id = $1 OR receiver_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3`, acctID, limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Transaction, 0, limit)
	for rows.Next() {
		var (
			tx        Transaction
			id        uuid.UUID
			sender    uuid.UUID
			receiver  uuid.UUID
			kind      string
			status    string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &sender, &receiver, &tx.Amount, &kind, &status, &createdAt); err != nil {
			return nil, err
		}
		tx.ID = id.String()
		tx.SenderID = sender.String()
		tx.ReceiverID = receiver.String()
		tx.Kind = Kind(kind)
		tx.Status = Status(status)
		tx.CreatedAt = createdAt.UTC()
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (s *PostgresStore) FailPending(ctx context.Context) (int64, error) {
	cmd, err := s.db.Exec(ctx, `UPDATE transactions SET status = $1 WHERE status = $2`,
		string(StatusFailed), string(StatusPending))
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (Account, error) {
	var (
		id        uuid.UUID
		acct      Account
		createdAt time.Time
	)
	if err := row.Scan(&id, &acct.Balance, &acct.Version, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	acct.ID = id.String()
	acct.CreatedAt = createdAt.UTC()
	return acct, nil
}
