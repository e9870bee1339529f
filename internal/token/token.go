package token

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"learnhub/internal/model"
)

// Claims is carried by access and refresh tokens. Only the user id is
// embedded; everything else comes from the session cache.
type Claims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

type ActivationClaims struct {
	User           model.PendingUser `json:"user"`
	ActivationCode string            `json:"activation_code"`
	jwt.RegisteredClaims
}

type Options struct {
	ActivationSecret string
	AccessSecret     string
	RefreshSecret    string
	ActivationTTL    time.Duration
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
}

type Service struct {
	activationSecret []byte
	accessSecret     []byte
	refreshSecret    []byte
	activationTTL    time.Duration
	accessTTL        time.Duration
	refreshTTL       time.Duration
	now              func() time.Time
}

func NewService(opts Options) *Service {
	return &Service{
		activationSecret: []byte(opts.ActivationSecret),
		accessSecret:     []byte(opts.AccessSecret),
		refreshSecret:    []byte(opts.RefreshSecret),
		activationTTL:    opts.ActivationTTL,
		accessTTL:        opts.AccessTTL,
		refreshTTL:       opts.RefreshTTL,
		now:              time.Now,
	}
}

// WithClock replaces the time source used for signing and validation.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) AccessTTL() time.Duration  { return s.accessTTL }
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

// IssueActivation returns a signed activation token and the 4 digit code
// that must be presented with it.
func (s *Service) IssueActivation(pending model.PendingUser) (string, string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", "", fmt.Errorf("generate activation code: %w", err)
	}
	code := fmt.Sprintf("%d", n.Int64()+1000)

	claims := ActivationClaims{
		User:             pending,
		ActivationCode:   code,
		RegisteredClaims: s.registered(s.activationTTL),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.activationSecret)
	if err != nil {
		return "", "", fmt.Errorf("sign activation token: %w", err)
	}

	return signed, code, nil
}

// VerifyActivation checks signature and expiry before comparing the code,
// so an expired token fails as expired whatever code is supplied.
func (s *Service) VerifyActivation(tokenString string, code string) (model.PendingUser, error) {
	claims := &ActivationClaims{}
	if err := s.parse(tokenString, claims, s.activationSecret); err != nil {
		return model.PendingUser{}, err
	}

	if claims.ActivationCode != code {
		return model.PendingUser{}, model.ErrInvalidActivationCode
	}

	return claims.User, nil
}

func (s *Service) IssuePair(userID string) (model.TokenPair, error) {
	access, err := s.sign(userID, s.accessTTL, s.accessSecret)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := s.sign(userID, s.refreshTTL, s.refreshSecret)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessTTL:    s.accessTTL,
		RefreshTTL:   s.refreshTTL,
	}, nil
}

func (s *Service) VerifyAccess(tokenString string) (string, error) {
	return s.verifySession(tokenString, s.accessSecret)
}

func (s *Service) VerifyRefresh(tokenString string) (string, error) {
	return s.verifySession(tokenString, s.refreshSecret)
}

func (s *Service) verifySession(tokenString string, secret []byte) (string, error) {
	claims := &Claims{}
	if err := s.parse(tokenString, claims, secret); err != nil {
		return "", err
	}

	if claims.ID == "" {
		return "", model.ErrTokenMalformed
	}

	return claims.ID, nil
}

func (s *Service) sign(userID string, ttl time.Duration, secret []byte) (string, error) {
	claims := Claims{ID: userID, RegisteredClaims: s.registered(ttl)}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *Service) registered(ttl time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *Service) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err == nil {
		return nil
	}

	if errors.Is(err, jwt.ErrTokenExpired) {
		return model.ErrTokenExpired
	}

	return model.ErrTokenMalformed
}
