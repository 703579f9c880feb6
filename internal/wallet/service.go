package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/onramp-pay/onramp/internal/ledger"
)

// Service exposes balance operations backed by the ledger.
type Service struct {
	ledger ledger.Ledger
}

// NewService builds a wallet service instance.
func NewService(ledger ledger.Ledger) *Service {
	return &Service{ledger: ledger}
}

// Provision creates the zero balance row for a user. Calling it again is a no-op.
func (s *Service) Provision(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return fmt.Errorf("invalid user id %d", userID)
	}
	return s.ledger.EnsureBalance(ctx, userID)
}

// Balance returns the ledger balance for the user.
func (s *Service) Balance(ctx context.Context, userID int64) (Balance, error) {
	b, err := s.ledger.Balance(ctx, userID)
	if err != nil {
		return Balance{}, err
	}
	return Balance{UserID: b.UserID, Amount: b.Amount, Locked: b.Locked, AsOf: time.Now().UTC()}, nil
}
