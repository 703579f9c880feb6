package ledger

// SeedBalance is a test helper that seeds the balance for a user when using the in-memory ledger.
func SeedBalance(l Ledger, userID int64, amount int64) {
	if mem, ok := l.(*inMemoryLedger); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		b := mem.balances[userID]
		b.UserID = userID
		b.Amount = amount
		mem.balances[userID] = b
	}
}

// SeedOnRamp stores tx as-is in the in-memory ledger, bypassing validation.
func SeedOnRamp(l Ledger, tx OnRampTransaction) {
	if mem, ok := l.(*inMemoryLedger); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.onRamps[tx.Token] = tx
	}
}
