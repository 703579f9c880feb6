package funding

import "time"

// StartRequest is the body of an on-ramp initiation.
type StartRequest struct {
	Provider string `json:"provider" validate:"required,max=64"`
	Amount   string `json:"amount" validate:"required,minor_units"`
}

// OnRampResponse represents one on-ramp transaction in API responses.
type OnRampResponse struct {
	Token       string    `json:"token"`
	Provider    string    `json:"provider"`
	Amount      int64     `json:"amount"`
	Status      string    `json:"status"`
	StartTime   time.Time `json:"start_time"`
	RedirectURL string    `json:"redirect_url,omitempty"`
}
