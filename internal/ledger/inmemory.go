package ledger

import (
	"context"
	"sort"
	"sync"
	"time"
)

type inMemoryLedger struct {
	mu       sync.RWMutex
	balances map[int64]Balance
	onRamps  map[string]OnRampTransaction
}

// NewInMemory creates a concurrency-safe in-memory ledger useful for unit tests
// and local development.
func NewInMemory() Ledger {
	return &inMemoryLedger{
		balances: make(map[int64]Balance),
		onRamps:  make(map[string]OnRampTransaction),
	}
}

func (l *inMemoryLedger) EnsureBalance(_ context.Context, userID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.balances[userID]; !exists {
		l.balances[userID] = Balance{UserID: userID}
	}
	return nil
}

func (l *inMemoryLedger) Balance(_ context.Context, userID int64) (Balance, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, exists := l.balances[userID]
	if !exists {
		return Balance{}, ErrNotFound
	}
	return b, nil
}

func (l *inMemoryLedger) CreateOnRamp(_ context.Context, tx OnRampTransaction) error {
	if tx.Amount <= 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.onRamps[tx.Token]; exists {
		return ErrDuplicateToken
	}
	if tx.Status == "" {
		tx.Status = StatusPending
	}
	if tx.StartTime.IsZero() {
		tx.StartTime = time.Now().UTC()
	}
	l.onRamps[tx.Token] = tx
	return nil
}

func (l *inMemoryLedger) OnRamp(_ context.Context, token string) (OnRampTransaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	tx, ok := l.onRamps[token]
	if !ok {
		return OnRampTransaction{}, ErrNotFound
	}
	return tx, nil
}

func (l *inMemoryLedger) OnRampsByUser(_ context.Context, userID int64) ([]OnRampTransaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]OnRampTransaction, 0)
	for _, tx := range l.onRamps {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

func (l *inMemoryLedger) Capture(_ context.Context, c Capture) (CaptureResult, error) {
	if c.Amount <= 0 {
		return CaptureResult{}, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Tokens are unique here, so "every row with the token" is at most one.
	tx, hasTx := l.onRamps[c.Token]
	if hasTx && tx.Status == StatusSuccess {
		return CaptureResult{}, ErrDuplicateCapture
	}

	var res CaptureResult
	if b, ok := l.balances[c.UserID]; ok {
		b.Amount += c.Amount
		l.balances[c.UserID] = b
		res.BalancesUpdated = 1
	}
	if hasTx {
		tx.Status = StatusSuccess
		l.onRamps[c.Token] = tx
		res.TransactionsUpdated = 1
	}
	return res, nil
}
