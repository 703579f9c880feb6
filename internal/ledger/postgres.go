package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// PostgresLedger persists balances and on-ramp transactions in PostgreSQL.
type PostgresLedger struct {
	db *pgxpool.Pool
}

// NewPostgresLedger constructs a Postgres-backed ledger implementation.
func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// EnsureBalance guarantees a balance row exists for the user.
func (l *PostgresLedger) EnsureBalance(ctx context.Context, userID int64) error {
	_, err := l.db.Exec(ctx, `INSERT INTO balances (user_id, amount, locked) VALUES ($1, 0, 0)
        ON CONFLICT (user_id) DO NOTHING`, userID)
	return err
}

// Balance returns the balance row for the user.
func (l *PostgresLedger) Balance(ctx context.Context, userID int64) (Balance, error) {
	b := Balance{UserID: userID}
	err := l.db.QueryRow(ctx, `SELECT amount, locked FROM balances WHERE user_id = $1`, userID).Scan(&b.Amount, &b.Locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Balance{}, ErrNotFound
		}
		return Balance{}, err
	}
	return b, nil
}

// CreateOnRamp records a new on-ramp transaction.
func (l *PostgresLedger) CreateOnRamp(ctx context.Context, tx OnRampTransaction) error {
	if tx.Amount <= 0 {
		return ErrInvalidAmount
	}
	status := tx.Status
	if status == "" {
		status = StatusPending
	}
	_, err := l.db.Exec(ctx, `INSERT INTO on_ramp_transactions (token, user_id, provider, amount, status, start_time)
        VALUES ($1, $2, $3, $4, $5, $6)`, tx.Token, tx.UserID, tx.Provider, tx.Amount, status, tx.StartTime.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateToken
		}
		return err
	}
	return nil
}

// OnRamp fetches an on-ramp transaction by token.
func (l *PostgresLedger) OnRamp(ctx context.Context, token string) (OnRampTransaction, error) {
	row := l.db.QueryRow(ctx, `SELECT token, user_id, provider, amount, status, start_time
        FROM on_ramp_transactions WHERE token = $1`, token)
	tx, err := scanOnRamp(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OnRampTransaction{}, ErrNotFound
		}
		return OnRampTransaction{}, err
	}
	return tx, nil
}

// OnRampsByUser lists the user's on-ramp transactions, newest first.
func (l *PostgresLedger) OnRampsByUser(ctx context.Context, userID int64) ([]OnRampTransaction, error) {
	rows, err := l.db.Query(ctx, `SELECT token, user_id, provider, amount, status, start_time
        FROM on_ramp_transactions WHERE user_id = $1 ORDER BY start_time DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]OnRampTransaction, 0)
	for rows.Next() {
		tx, err := scanOnRamp(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// Capture applies the balance increment and the status transition in one
// transaction. Both updates match by a non-unique filter; zero rows is fine.
func (l *PostgresLedger) Capture(ctx context.Context, c Capture) (CaptureResult, error) {
	if c.Amount <= 0 {
		return CaptureResult{}, ErrInvalidAmount
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return CaptureResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	captured, err := alreadyCaptured(ctx, tx, c.Token)
	if err != nil {
		return CaptureResult{}, err
	}
	if captured {
		return CaptureResult{}, ErrDuplicateCapture
	}

	balTag, err := tx.Exec(ctx, `UPDATE balances SET amount = amount + $1 WHERE user_id = $2`, c.Amount, c.UserID)
	if err != nil {
		return CaptureResult{}, fmt.Errorf("increment balance: %w", err)
	}
	txTag, err := tx.Exec(ctx, `UPDATE on_ramp_transactions SET status = $1, updated_at = now() WHERE token = $2`, StatusSuccess, c.Token)
	if err != nil {
		return CaptureResult{}, fmt.Errorf("mark on-ramp captured: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return CaptureResult{}, err
	}

	return CaptureResult{
		BalancesUpdated:     balTag.RowsAffected(),
		TransactionsUpdated: txTag.RowsAffected(),
	}, nil
}

// alreadyCaptured locks the rows carrying token and reports whether any of
// them is already Success.
func alreadyCaptured(ctx context.Context, tx pgx.Tx, token string) (bool, error) {
	rows, err := tx.Query(ctx, `SELECT status FROM on_ramp_transactions WHERE token = $1 FOR UPDATE`, token)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	captured := false
	for rows.Next() {
		var status string
		if err := rows.Scan(&status); err != nil {
			return false, err
		}
		if status == StatusSuccess {
			captured = true
		}
	}
	return captured, rows.Err()
}

func scanOnRamp(row pgx.Row) (OnRampTransaction, error) {
	var tx OnRampTransaction
	if err := row.Scan(&tx.Token, &tx.UserID, &tx.Provider, &tx.Amount, &tx.Status, &tx.StartTime); err != nil {
		return OnRampTransaction{}, err
	}
	tx.StartTime = tx.StartTime.UTC()
	return tx, nil
}
