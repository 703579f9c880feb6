package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/onramp-pay/onramp/internal/config"
	"github.com/onramp-pay/onramp/internal/identity"
)

var (
	// ErrInvalidToken covers malformed, expired or wrongly signed tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenRevoked is returned when the token version no longer matches the user.
	ErrTokenRevoked = errors.New("token version invalidated")
)

// Service issues and verifies session tokens.
type Service struct {
	cfg    config.Config
	idRepo identity.Repository
	now    func() time.Time
}

// NewService builds the session token service.
func NewService(cfg config.Config, idRepo identity.Repository) *Service {
	return &Service{cfg: cfg, idRepo: idRepo, now: time.Now}
}

// TokenPair is returned at login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// SessionUser is the user block of a materialised session.
type SessionUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is what a verified access token resolves to.
type Session struct {
	User    SessionUser `json:"user"`
	Expires time.Time   `json:"expires"`
}

// Login issues a token pair for an authenticated user.
func (s *Service) Login(user identity.User) (TokenPair, error) {
	access, _, err := s.sign(user, TokenTypeAccess, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, _, err := s.sign(user, TokenTypeRefresh, s.cfg.RefreshSecret, s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: int64(s.cfg.AccessTokenTTL.Seconds())}, nil
}

func (s *Service) sign(user identity.User, typ, secret string, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(ttl)
	claims := Claims{
		Phone:   user.Phone,
		Name:    user.Name,
		Version: user.TokenVersion,
		Type:    typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			Issuer:    s.cfg.AppName,
		},
	}
	signed, err := SignHS256(claims, []byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks an access token and its version against the stored user.
func (s *Service) Verify(ctx context.Context, accessToken string) (*Claims, error) {
	claims, err := ParseAndVerifyHS256(accessToken, []byte(s.cfg.JWTSecret), TokenTypeAccess)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if _, err := s.currentUser(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Refresh verifies the refresh token and returns a new access token if valid.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	claims, err := ParseAndVerifyHS256(refreshToken, []byte(s.cfg.RefreshSecret), TokenTypeRefresh)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	user, err := s.currentUser(ctx, claims)
	if err != nil {
		return "", 0, err
	}
	signed, _, err := s.sign(user, TokenTypeAccess, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", 0, err
	}
	return signed, int64(s.cfg.AccessTokenTTL.Seconds()), nil
}

// Logout increments token version so older tokens become invalid.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	user, err := s.idRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.idRepo.UpdateTokenVersion(ctx, user.ID, user.TokenVersion+1)
}

// Session materialises a session from verified claims. The token subject is
// copied into the session user id; name and email come from the token.
func (s *Service) Session(claims *Claims) Session {
	var expires time.Time
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time.UTC()
	}
	return Session{
		User: SessionUser{
			ID:    claims.Subject,
			Name:  claims.Name,
			Email: claims.Phone,
		},
		Expires: expires,
	}
}

// UserID returns the numeric subject of verified claims.
func UserID(claims *Claims) (int64, error) {
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: non-numeric subject", ErrInvalidToken)
	}
	return id, nil
}

func (s *Service) currentUser(ctx context.Context, claims *Claims) (identity.User, error) {
	id, err := UserID(claims)
	if err != nil {
		return identity.User{}, err
	}
	user, err := s.idRepo.FindByID(ctx, id)
	if err != nil {
		return identity.User{}, ErrTokenRevoked
	}
	if user.TokenVersion != claims.Version {
		return identity.User{}, ErrTokenRevoked
	}
	return user, nil
}
