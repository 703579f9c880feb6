package funding

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/onramp-pay/onramp/internal/ledger"
	"github.com/onramp-pay/onramp/internal/notification"
	"github.com/onramp-pay/onramp/internal/validation"
)

type recordingNotifier struct {
	last notification.Message
}

func (n *recordingNotifier) Send(_ context.Context, msg notification.Message) error {
	n.last = msg
	return nil
}

type fixedBank struct {
	token string
}

func (b fixedBank) Initiate(_ context.Context, _ InitiateRequest) (Initiation, error) {
	return Initiation{Token: b.token, RedirectURL: "https://bank.test/pay"}, nil
}

func TestServiceStartRecordsPendingTransaction(t *testing.T) {
	ctx := context.Background()
	led := ledger.NewInMemory()
	notifier := &recordingNotifier{}
	svc, err := NewService(led, StaticBank{BaseURL: "https://bank.test/pay"}, notifier)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	res, err := svc.Start(ctx, StartInput{UserID: 7, Request: StartRequest{Provider: "HDFC Bank", Amount: "500"}})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if res.Transaction.Status != ledger.StatusPending || res.Transaction.Amount != 500 {
		t.Fatalf("unexpected transaction %+v", res.Transaction)
	}
	if !strings.Contains(res.RedirectURL, res.Transaction.Token) {
		t.Fatalf("redirect %s does not carry token", res.RedirectURL)
	}

	stored, err := led.OnRamp(ctx, res.Transaction.Token)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if stored.UserID != 7 {
		t.Fatalf("expected user 7, got %d", stored.UserID)
	}
	if notifier.last.Kind != notification.KindOnRampStarted {
		t.Fatal("expected start notification")
	}
}

func TestServiceStartValidatesRequest(t *testing.T) {
	svc, _ := NewService(ledger.NewInMemory(), nil, nil)

	_, err := svc.Start(context.Background(), StartInput{UserID: 7, Request: StartRequest{Amount: "12.5"}})
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := verr.Fields["provider"]; !ok {
		t.Fatalf("expected provider error in %v", verr.Fields)
	}
	if _, ok := verr.Fields["amount"]; !ok {
		t.Fatalf("expected amount error in %v", verr.Fields)
	}
}

func TestServiceStartDuplicateToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := NewService(ledger.NewInMemory(), fixedBank{token: "same"}, nil)
	req := StartInput{UserID: 1, Request: StartRequest{Provider: "hdfc", Amount: "10"}}

	if _, err := svc.Start(ctx, req); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if _, err := svc.Start(ctx, req); !errors.Is(err, ledger.ErrDuplicateToken) {
		t.Fatalf("expected duplicate token, got %v", err)
	}
}

func TestServiceList(t *testing.T) {
	ctx := context.Background()
	svc, _ := NewService(ledger.NewInMemory(), nil, nil)
	for i := 0; i < 2; i++ {
		if _, err := svc.Start(ctx, StartInput{UserID: 5, Request: StartRequest{Provider: "hdfc", Amount: "10"}}); err != nil {
			t.Fatalf("start: %v", err)
		}
	}
	txs, err := svc.List(ctx, 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
}
