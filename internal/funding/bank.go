package funding

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// Bank represents a connector to a bank that issues on-ramp tokens.
type Bank interface {
	Initiate(ctx context.Context, req InitiateRequest) (Initiation, error)
}

// InitiateRequest carries what the bank needs to open a top-up session.
type InitiateRequest struct {
	Provider string
	UserID   int64
	Amount   int64
}

// Initiation is the bank's answer: the token its webhook will echo back and
// the page the user must visit to pay.
type Initiation struct {
	Token       string
	RedirectURL string
}

// StaticBank simulates a bank integration by minting random tokens.
type StaticBank struct {
	BaseURL string
}

// Initiate returns a fresh token and a redirect URL carrying it.
func (b StaticBank) Initiate(_ context.Context, req InitiateRequest) (Initiation, error) {
	token := uuid.NewString()
	base := b.BaseURL
	if base == "" {
		base = "https://netbanking.example.com/pay"
	}
	redirect := fmt.Sprintf("%s?token=%s&provider=%s", base, url.QueryEscape(token), url.QueryEscape(req.Provider))
	return Initiation{Token: token, RedirectURL: redirect}, nil
}
