package funding

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/onramp-pay/onramp/internal/ledger"
	"github.com/onramp-pay/onramp/internal/notification"
	"github.com/onramp-pay/onramp/internal/validation"
)

// Service starts on-ramp top-ups with the bank and records them as Pending.
type Service struct {
	ledger   ledger.Ledger
	bank     Bank
	notifier notification.Notifier
	validate *validation.Validator
}

// NewService prepares a funding service. A nil bank falls back to StaticBank.
func NewService(ledgerBackend ledger.Ledger, bank Bank, notifier notification.Notifier) (*Service, error) {
	if ledgerBackend == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	if bank == nil {
		bank = StaticBank{}
	}
	return &Service{ledger: ledgerBackend, bank: bank, notifier: notifier, validate: validation.New()}, nil
}

// StartInput captures the data required to begin a top-up.
type StartInput struct {
	UserID  int64
	Request StartRequest
}

// StartResult is the recorded transaction plus where to send the user.
type StartResult struct {
	Transaction ledger.OnRampTransaction
	RedirectURL string
}

// Start validates the request, obtains a token from the bank and records a
// Pending on-ramp transaction under it.
func (s *Service) Start(ctx context.Context, input StartInput) (StartResult, error) {
	if err := s.validate.Struct(input.Request); err != nil {
		return StartResult{}, err
	}
	amount, err := validation.ParseMinorUnits(input.Request.Amount)
	if err != nil {
		return StartResult{}, err
	}
	if input.UserID <= 0 {
		return StartResult{}, fmt.Errorf("invalid user id %d", input.UserID)
	}

	started, err := s.bank.Initiate(ctx, InitiateRequest{Provider: input.Request.Provider, UserID: input.UserID, Amount: amount})
	if err != nil {
		return StartResult{}, fmt.Errorf("initiate with bank: %w", err)
	}

	tx := ledger.OnRampTransaction{
		Token:     started.Token,
		UserID:    input.UserID,
		Provider:  input.Request.Provider,
		Amount:    amount,
		Status:    ledger.StatusPending,
		StartTime: time.Now().UTC(),
	}
	if err := s.ledger.CreateOnRamp(ctx, tx); err != nil {
		return StartResult{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindOnRampStarted,
			Destination: strconv.FormatInt(input.UserID, 10),
			Body:        fmt.Sprintf("Top-up of %d via %s started", amount, tx.Provider),
		})
	}

	return StartResult{Transaction: tx, RedirectURL: started.RedirectURL}, nil
}

// List returns the user's on-ramp transactions, newest first.
func (s *Service) List(ctx context.Context, userID int64) ([]ledger.OnRampTransaction, error) {
	return s.ledger.OnRampsByUser(ctx, userID)
}
