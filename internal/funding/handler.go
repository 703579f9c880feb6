package funding

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/onramp-pay/onramp/internal/ledger"
	"github.com/onramp-pay/onramp/internal/validation"
)

// Handler exposes HTTP endpoints for on-ramp top-ups.
type Handler struct {
	service *Service
}

// NewHandler constructs a funding handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Start begins a top-up for the authenticated user.
func (h *Handler) Start(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(int64)
	if uid == 0 {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	var req StartRequest
	if err := c.BodyParser(&req); err != nil {
		return invalid(c, validation.FromBindError(err))
	}

	result, err := h.service.Start(c.UserContext(), StartInput{UserID: uid, Request: req})
	if err != nil {
		var verr *validation.Error
		switch {
		case errors.As(err, &verr):
			return invalid(c, verr)
		case errors.Is(err, ledger.ErrDuplicateToken):
			return fiber.NewError(http.StatusConflict, err.Error())
		default:
			return fiber.NewError(http.StatusBadGateway, err.Error())
		}
	}

	resp := toResponse(result.Transaction)
	resp.RedirectURL = result.RedirectURL
	return c.Status(http.StatusCreated).JSON(resp)
}

// List returns the authenticated user's top-ups.
func (h *Handler) List(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(int64)
	if uid == 0 {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	txs, err := h.service.List(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]OnRampResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toResponse(tx))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"transactions": out})
}

func toResponse(tx ledger.OnRampTransaction) OnRampResponse {
	return OnRampResponse{
		Token:     tx.Token,
		Provider:  tx.Provider,
		Amount:    tx.Amount,
		Status:    tx.Status,
		StartTime: tx.StartTime,
	}
}

func invalid(c *fiber.Ctx, err error) error {
	var verr *validation.Error
	if !errors.As(err, &verr) {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "Invalid payload", "errors": verr.Fields})
}
