package wallet

import "time"

// Balance is the read-side view of a user's funds.
type Balance struct {
	UserID int64
	Amount int64
	Locked int64
	AsOf   time.Time
}
