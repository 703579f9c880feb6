package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/onramp-pay/onramp/internal/logging"
	"github.com/onramp-pay/onramp/internal/validation"
)

var (
	// ErrAccountNotFound is returned by Login when no user has the phone number.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidCredentials is returned by Login when the password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service manages identity lifecycle.
type Service struct {
	repo          Repository
	validate      *validation.Validator
	cost          int
	autoProvision bool
	logger        *slog.Logger
}

// Option customises a Service.
type Option func(*Service)

// WithBcryptCost sets the hashing cost for new passwords.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// WithAutoProvision controls whether Authorize creates an account for an
// unseen phone number. It is on by default; false makes Authorize behave
// like Login.
func WithAutoProvision(enabled bool) Option {
	return func(s *Service) { s.autoProvision = enabled }
}

// WithLogger sets the logger used for swallowed failures in Authorize.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a new identity service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:          repo,
		validate:      validation.New(),
		cost:          bcrypt.DefaultCost,
		autoProvision: true,
		logger:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates the credentials and creates a new account with a
// hashed password.
func (s *Service) Register(ctx context.Context, creds Credentials) (User, error) {
	if err := s.validate.Struct(creds); err != nil {
		return User{}, err
	}
	return s.create(ctx, creds)
}

// Login verifies the credentials of an existing account. It never creates
// or mutates an account.
func (s *Service) Login(ctx context.Context, creds Credentials) (User, error) {
	if err := s.validate.Struct(creds); err != nil {
		return User{}, err
	}

	user, err := s.repo.FindByPhone(ctx, creds.Phone)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrAccountNotFound
		}
		return User{}, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(creds.Password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Authorize is the credential-provider callback: it yields an identity or
// reports false. Failure reasons are logged and never returned, so callers
// cannot tell a wrong password from an unknown phone number.
func (s *Service) Authorize(ctx context.Context, creds Credentials) (Identity, bool) {
	user, err := s.Login(ctx, creds)
	switch {
	case err == nil:
		return user.Identity(), true
	case errors.Is(err, ErrAccountNotFound) && s.autoProvision:
		created, err := s.create(ctx, creds)
		if errors.Is(err, ErrPhoneTaken) {
			// Lost a race with a concurrent sign-in for the same phone.
			if user, err := s.Login(ctx, creds); err == nil {
				return user.Identity(), true
			}
			return Identity{}, false
		}
		if err != nil {
			s.logger.Error("identity.authorize provisioning failed", slog.Any("error", err))
			return Identity{}, false
		}
		s.logger.Info("identity.authorize provisioned account", slog.Int64("user_id", created.ID))
		return created.Identity(), true
	default:
		var verr *validation.Error
		if errors.As(err, &verr) {
			s.logger.Warn("identity.authorize invalid credentials payload", slog.Any("fields", verr.Fields))
		} else {
			s.logger.Info("identity.authorize rejected", slog.Any("error", err))
		}
		return Identity{}, false
	}
}

// User returns the user with the given identifier.
func (s *Service) User(ctx context.Context, id int64) (User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *Service) create(ctx context.Context, creds Credentials) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.cost)
	if err != nil {
		return User{}, err
	}

	user, err := s.repo.Create(ctx, User{
		Phone:        creds.Phone,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}
