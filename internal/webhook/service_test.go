package webhook

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/onramp-pay/onramp/internal/ledger"
	"github.com/onramp-pay/onramp/internal/notification"
	"github.com/onramp-pay/onramp/internal/validation"
)

type recordingNotifier struct {
	messages []notification.Message
}

func (n *recordingNotifier) Send(_ context.Context, msg notification.Message) error {
	n.messages = append(n.messages, msg)
	return nil
}

type failingLedger struct {
	ledger.Ledger
	err error
}

func (l failingLedger) Capture(context.Context, ledger.Capture) (ledger.CaptureResult, error) {
	return ledger.CaptureResult{}, l.err
}

type brokenGuard struct{}

func (brokenGuard) Reserve(context.Context, string) (bool, error) { return false, errors.New("redis down") }
func (brokenGuard) Release(context.Context, string) error         { return nil }

func seeded(t *testing.T) ledger.Ledger {
	t.Helper()
	l := ledger.NewInMemory()
	ledger.SeedBalance(l, 7, 1000)
	ledger.SeedOnRamp(l, ledger.OnRampTransaction{
		Token:     "abc123",
		UserID:    7,
		Provider:  "HDFC Bank",
		Amount:    500,
		Status:    ledger.StatusPending,
		StartTime: time.Now(),
	})
	return l
}

func TestProcessorValidate(t *testing.T) {
	p := NewProcessor(ledger.NewInMemory(), nil, nil, nil)

	c, err := p.Validate(Payload{Token: "abc123", UserIdentifier: 7, Amount: "500"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if c.Amount != 500 || c.UserID != 7 || c.Token != "abc123" {
		t.Fatalf("unexpected capture %+v", c)
	}

	cases := map[string]Payload{
		"token":           {UserIdentifier: 7, Amount: "500"},
		"user_identifier": {Token: "abc123", Amount: "500"},
		"amount":          {Token: "abc123", UserIdentifier: 7, Amount: "five"},
	}
	for field, payload := range cases {
		_, err := p.Validate(payload)
		var verr *validation.Error
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected validation error, got %v", field, err)
		}
		if _, ok := verr.Fields[field]; !ok {
			t.Fatalf("%s: expected field error, got %v", field, verr.Fields)
		}
	}
}

func TestProcessorCaptureAppliesBothUpdates(t *testing.T) {
	l := seeded(t)
	notifier := &recordingNotifier{}
	p := NewProcessor(l, NewMemoryGuard(time.Hour), notifier, nil)
	ctx := context.Background()

	receipt, err := p.Capture(ctx, ledger.Capture{Token: "abc123", UserID: 7, Amount: 500})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if receipt.Duplicate || receipt.BalancesUpdated != 1 || receipt.TransactionsUpdated != 1 {
		t.Fatalf("unexpected receipt %+v", receipt)
	}

	bal, _ := l.Balance(ctx, 7)
	if bal.Amount != 1500 {
		t.Fatalf("expected 1500, got %d", bal.Amount)
	}
	tx, _ := l.OnRamp(ctx, "abc123")
	if tx.Status != ledger.StatusSuccess {
		t.Fatalf("expected Success, got %s", tx.Status)
	}
	if len(notifier.messages) != 1 || notifier.messages[0].Kind != notification.KindOnRampCaptured {
		t.Fatalf("expected one capture notification, got %+v", notifier.messages)
	}
}

func TestProcessorCaptureSuppressesReplay(t *testing.T) {
	l := seeded(t)
	p := NewProcessor(l, NewMemoryGuard(time.Hour), nil, nil)
	ctx := context.Background()
	c := ledger.Capture{Token: "abc123", UserID: 7, Amount: 500}

	if _, err := p.Capture(ctx, c); err != nil {
		t.Fatalf("first capture: %v", err)
	}
	receipt, err := p.Capture(ctx, c)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !receipt.Duplicate {
		t.Fatal("expected replay to be reported as duplicate")
	}
	bal, _ := l.Balance(ctx, 7)
	if bal.Amount != 1500 {
		t.Fatalf("replay must not credit twice, got %d", bal.Amount)
	}
}

func TestProcessorCaptureLedgerRejectsReplayWithoutGuard(t *testing.T) {
	l := seeded(t)
	p := NewProcessor(l, brokenGuard{}, nil, nil)
	ctx := context.Background()
	c := ledger.Capture{Token: "abc123", UserID: 7, Amount: 500}

	if _, err := p.Capture(ctx, c); err != nil {
		t.Fatalf("first capture: %v", err)
	}
	receipt, err := p.Capture(ctx, c)
	if err != nil || !receipt.Duplicate {
		t.Fatalf("expected duplicate, got %+v %v", receipt, err)
	}
	bal, _ := l.Balance(ctx, 7)
	if bal.Amount != 1500 {
		t.Fatalf("expected 1500, got %d", bal.Amount)
	}
}

func TestProcessorCaptureNoMatchingTokenStillSucceeds(t *testing.T) {
	l := seeded(t)
	notifier := &recordingNotifier{}
	p := NewProcessor(l, nil, notifier, nil)
	ctx := context.Background()

	receipt, err := p.Capture(ctx, ledger.Capture{Token: "missing", UserID: 7, Amount: 200})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if receipt.TransactionsUpdated != 0 || receipt.BalancesUpdated != 1 {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
	bal, _ := l.Balance(ctx, 7)
	if bal.Amount != 1200 {
		t.Fatalf("expected 1200, got %d", bal.Amount)
	}
}

func TestProcessorCaptureFailureReleasesGuard(t *testing.T) {
	guard := NewMemoryGuard(time.Hour)
	p := NewProcessor(failingLedger{err: errors.New("connection refused")}, guard, nil, nil)
	ctx := context.Background()

	if _, err := p.Capture(ctx, ledger.Capture{Token: "abc123", UserID: 7, Amount: 500}); err == nil {
		t.Fatal("expected error")
	}
	if ok, _ := guard.Reserve(ctx, "abc123"); !ok {
		t.Fatal("failed capture must release the token for a retry")
	}
}
