package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/onramp-pay/onramp/internal/ledger"
)

func TestServiceProvisionAndBalance(t *testing.T) {
	led := ledger.NewInMemory()
	svc := NewService(led)
	ctx := context.Background()

	if _, err := svc.Balance(ctx, 42); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected not found before provisioning, got %v", err)
	}

	if err := svc.Provision(ctx, 42); err != nil {
		t.Fatalf("provision: %v", err)
	}
	ledger.SeedBalance(led, 42, 2_500)
	if err := svc.Provision(ctx, 42); err != nil {
		t.Fatalf("second provision: %v", err)
	}

	balance, err := svc.Balance(ctx, 42)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Amount != 2_500 {
		t.Fatalf("expected re-provisioning to keep balance 2500, got %d", balance.Amount)
	}
}

func TestServiceProvisionRejectsInvalidUser(t *testing.T) {
	svc := NewService(ledger.NewInMemory())
	if err := svc.Provision(context.Background(), 0); err == nil {
		t.Fatal("expected error for user id 0")
	}
}
