package webhook

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Capture outcomes recorded by the handler.
const (
	outcomeCaptured     = "captured"
	outcomeDuplicate    = "duplicate"
	outcomeInvalid      = "invalid"
	outcomeUnauthorized = "unauthorized"
	outcomeFailed       = "failed"
)

var captureOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "onramp_webhook_captures_total",
	Help: "Bank capture notifications by outcome.",
}, []string{"outcome"})
