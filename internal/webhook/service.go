package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/onramp-pay/onramp/internal/ledger"
	"github.com/onramp-pay/onramp/internal/logging"
	"github.com/onramp-pay/onramp/internal/notification"
	"github.com/onramp-pay/onramp/internal/validation"
)

// Receipt describes what a capture did.
type Receipt struct {
	Duplicate           bool
	BalancesUpdated     int64
	TransactionsUpdated int64
}

// Processor applies bank capture notifications to the ledger.
type Processor struct {
	ledger   ledger.Ledger
	guard    TokenGuard
	notifier notification.Notifier
	logger   *slog.Logger
	validate *validation.Validator
}

// NewProcessor builds a Processor. guard and notifier may be nil.
func NewProcessor(l ledger.Ledger, guard TokenGuard, notifier notification.Notifier, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Processor{ledger: l, guard: guard, notifier: notifier, logger: logger, validate: validation.New()}
}

// Validate checks the payload against the schema and converts it into a
// ledger capture. Failures are *validation.Error.
func (p *Processor) Validate(payload Payload) (ledger.Capture, error) {
	if err := p.validate.Struct(payload); err != nil {
		return ledger.Capture{}, err
	}
	amount, err := validation.ParseMinorUnits(payload.Amount)
	if err != nil {
		return ledger.Capture{}, &validation.Error{Fields: validation.FieldErrors{"amount": err.Error()}}
	}
	return ledger.Capture{Token: payload.Token, UserID: payload.UserIdentifier, Amount: amount}, nil
}

// Capture increments the user's balance and marks the token's on-ramp
// transaction Success in one unit of work. A token seen before is reported
// as a duplicate without touching the store. Nothing is retried.
func (p *Processor) Capture(ctx context.Context, c ledger.Capture) (Receipt, error) {
	log := p.logger.With(slog.String("token", c.Token), slog.Int64("user_id", c.UserID), slog.Int64("amount", c.Amount))

	reserved := false
	if p.guard != nil {
		ok, err := p.guard.Reserve(ctx, c.Token)
		switch {
		case err != nil:
			// The ledger still rejects already-captured tokens.
			log.Warn("webhook.capture guard unavailable", slog.Any("error", err))
		case !ok:
			log.Info("webhook.capture duplicate delivery suppressed")
			return Receipt{Duplicate: true}, nil
		default:
			reserved = true
		}
	}

	res, err := p.ledger.Capture(ctx, c)
	if err != nil {
		if errors.Is(err, ledger.ErrDuplicateCapture) {
			log.Info("webhook.capture token already captured")
			return Receipt{Duplicate: true}, nil
		}
		if reserved {
			p.release(c.Token, log)
		}
		return Receipt{}, fmt.Errorf("capture %s: %w", c.Token, err)
	}

	if res.BalancesUpdated == 0 || res.TransactionsUpdated == 0 {
		log.Warn("webhook.capture matched no rows",
			slog.Int64("balances_updated", res.BalancesUpdated),
			slog.Int64("transactions_updated", res.TransactionsUpdated))
	}
	log.Info("webhook.capture applied")

	if p.notifier != nil && res.BalancesUpdated > 0 {
		_ = p.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindOnRampCaptured,
			Destination: strconv.FormatInt(c.UserID, 10),
			Body:        fmt.Sprintf("%d credited to your balance", c.Amount),
		})
	}

	return Receipt{BalancesUpdated: res.BalancesUpdated, TransactionsUpdated: res.TransactionsUpdated}, nil
}

func (p *Processor) release(token string, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.guard.Release(ctx, token); err != nil {
		log.Warn("webhook.capture guard release failed", slog.Any("error", err))
	}
}
