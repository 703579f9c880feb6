package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/onramp-pay/onramp/internal/identity"
	"github.com/onramp-pay/onramp/internal/logging"
	"github.com/onramp-pay/onramp/internal/validation"
	"github.com/onramp-pay/onramp/internal/wallet"
)

// credentialsSignin is the generic failure reported for any rejected sign-in.
const credentialsSignin = "CredentialsSignin"

// Handler exposes auth endpoints for register/login/refresh/logout/session.
type Handler struct {
	ids     *identity.Service
	svc     *Service
	wallets *wallet.Service
	logger  *slog.Logger
}

// NewHandler wires the auth endpoints. wallets may be nil, in which case no
// balance is provisioned on registration.
func NewHandler(ids *identity.Service, svc *Service, wallets *wallet.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Handler{ids: ids, svc: svc, wallets: wallets, logger: logger}
}

type loginResponse struct {
	User         identity.Identity `json:"user"`
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	ExpiresIn    int64             `json:"expires_in"`
}

// Register creates an account and provisions its balance.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req identity.Credentials
	if err := c.BodyParser(&req); err != nil {
		return validationResponse(c, validation.FromBindError(err))
	}
	user, err := h.ids.Register(c.UserContext(), req)
	if err != nil {
		var verr *validation.Error
		switch {
		case errors.As(err, &verr):
			return validationResponse(c, verr)
		case errors.Is(err, identity.ErrPhoneTaken):
			return fiber.NewError(http.StatusConflict, err.Error())
		default:
			h.logger.Error("auth.register failed", slog.Any("error", err))
			return fiber.NewError(http.StatusInternalServerError, "registration failed")
		}
	}
	if h.wallets != nil {
		if err := h.wallets.Provision(c.UserContext(), user.ID); err != nil {
			h.logger.Error("auth.register balance provisioning failed", slog.Int64("user_id", user.ID), slog.Any("error", err))
			return fiber.NewError(http.StatusInternalServerError, "registration failed")
		}
	}
	h.logger.Info("auth.register completed", slog.Int64("user_id", user.ID), slog.Int("status", http.StatusCreated))
	return c.Status(http.StatusCreated).JSON(fiber.Map{"user": user.Identity()})
}

// Login runs the credential callback and returns a token pair.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req identity.Credentials
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusUnauthorized, credentialsSignin)
	}
	ident, ok := h.ids.Authorize(c.UserContext(), req)
	if !ok {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": credentialsSignin})
	}

	id, err := strconv.ParseInt(ident.ID, 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "invalid identity")
	}
	user, err := h.ids.User(c.UserContext(), id)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "identity lookup failed")
	}
	if h.wallets != nil {
		// Accounts provisioned by the credential callback have no balance yet.
		if err := h.wallets.Provision(c.UserContext(), user.ID); err != nil {
			h.logger.Warn("auth.login balance provisioning failed", slog.Int64("user_id", user.ID), slog.Any("error", err))
		}
	}
	pair, err := h.svc.Login(user)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(loginResponse{
		User:         ident,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh issues a new access token using a valid refresh token.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	token, exp, err := h.svc.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"access_token": token, "expires_in": exp})
}

// Logout invalidates existing tokens of the authenticated user by bumping
// the token version.
func (h *Handler) Logout(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(int64)
	if uid == 0 {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	if err := h.svc.Logout(c.UserContext(), uid); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "logged_out"})
}

// Session returns the session materialised from the caller's access token.
func (h *Handler) Session(c *fiber.Ctx) error {
	claims, _ := c.Locals("claims").(*Claims)
	if claims == nil {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	return c.Status(http.StatusOK).JSON(h.svc.Session(claims))
}

func validationResponse(c *fiber.Ctx, err error) error {
	var verr *validation.Error
	if !errors.As(err, &verr) {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid payload",
		"errors":  verr.Fields,
	})
}
