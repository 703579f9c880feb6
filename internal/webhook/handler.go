package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/onramp-pay/onramp/internal/logging"
	"github.com/onramp-pay/onramp/internal/validation"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw body when a shared
// secret is configured.
const SignatureHeader = "X-Webhook-Signature"

// StatusProcessingFailed is returned when the store rejects a capture. The
// bank integration expects this code.
const StatusProcessingFailed = http.StatusLengthRequired

// Handler serves the bank webhook.
type Handler struct {
	processor *Processor
	secret    []byte
	logger    *slog.Logger
}

// NewHandler wires the webhook handler. An empty secret disables signature
// checks.
func NewHandler(processor *Processor, secret string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	h := &Handler{processor: processor, logger: logger}
	if secret != "" {
		h.secret = []byte(secret)
	}
	return h
}

// Capture handles POST /hdfcWebhook.
func (h *Handler) Capture(c *fiber.Ctx) error {
	body := c.Body()

	if h.secret != nil && !ValidSignature(h.secret, body, c.Get(SignatureHeader)) {
		captureOutcomes.WithLabelValues(outcomeUnauthorized).Inc()
		h.logger.Warn("webhook.capture bad signature", slog.String("ip", c.IP()))
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid signature"})
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return h.invalid(c, validation.FromBindError(err))
	}
	capture, err := h.processor.Validate(payload)
	if err != nil {
		return h.invalid(c, err)
	}

	receipt, err := h.processor.Capture(c.UserContext(), capture)
	if err != nil {
		captureOutcomes.WithLabelValues(outcomeFailed).Inc()
		h.logger.Error("webhook.capture failed", slog.String("token", capture.Token), slog.Any("error", err))
		return c.Status(StatusProcessingFailed).JSON(fiber.Map{"message": "Error while processing webhook"})
	}

	if receipt.Duplicate {
		captureOutcomes.WithLabelValues(outcomeDuplicate).Inc()
	} else {
		captureOutcomes.WithLabelValues(outcomeCaptured).Inc()
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Captured"})
}

func (h *Handler) invalid(c *fiber.Ctx, err error) error {
	captureOutcomes.WithLabelValues(outcomeInvalid).Inc()
	h.logger.Warn("webhook.capture invalid payload", slog.Any("error", err))

	resp := fiber.Map{"message": "Invalid payload"}
	var verr *validation.Error
	if errors.As(err, &verr) {
		resp["errors"] = verr.Fields
	}
	return c.Status(http.StatusBadRequest).JSON(resp)
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// ValidSignature compares the provided signature with the expected one in
// constant time. A "sha256=" prefix is accepted.
func ValidSignature(secret, body []byte, signature string) bool {
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	got, err := hex.DecodeString(signature)
	if err != nil || len(got) == 0 {
		return false
	}
	want, _ := hex.DecodeString(Sign(secret, body))
	return hmac.Equal(got, want)
}
