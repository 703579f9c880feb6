package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a balance or on-ramp transaction does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateCapture indicates the token was already captured, so the
	// delivery must be treated as a replay.
	ErrDuplicateCapture = errors.New("on-ramp token already captured")

	// ErrDuplicateToken is returned when an on-ramp token is recorded twice.
	ErrDuplicateToken = errors.New("on-ramp token already exists")

	// ErrInvalidAmount rejects non-positive postings.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// On-ramp transaction statuses.
const (
	StatusPending = "Pending"
	StatusSuccess = "Success"
	StatusFailure = "Failure"
)

// Balance is the accumulated amount held for a user, in minor units.
type Balance struct {
	UserID int64
	Amount int64
	Locked int64
}

// OnRampTransaction tracks a top-up from a bank, keyed by the bank token.
type OnRampTransaction struct {
	Token     string
	UserID    int64
	Provider  string
	Amount    int64
	Status    string
	StartTime time.Time
}

// Capture is a bank notification that the top-up behind Token succeeded.
type Capture struct {
	Token  string
	UserID int64
	Amount int64
}

// CaptureResult reports how many rows each statement of a capture touched.
// Zero is a valid outcome for either count.
type CaptureResult struct {
	BalancesUpdated     int64
	TransactionsUpdated int64
}

// Ledger defines the contract implemented by ledger backends (e.g. Postgres).
type Ledger interface {
	EnsureBalance(ctx context.Context, userID int64) error
	Balance(ctx context.Context, userID int64) (Balance, error)
	CreateOnRamp(ctx context.Context, tx OnRampTransaction) error
	OnRamp(ctx context.Context, token string) (OnRampTransaction, error)
	OnRampsByUser(ctx context.Context, userID int64) ([]OnRampTransaction, error)
	// Capture increments the balance of the user and marks every on-ramp
	// transaction carrying the token as Success, atomically.
	Capture(ctx context.Context, c Capture) (CaptureResult, error)
}
