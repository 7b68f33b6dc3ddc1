package app

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/khatirak/SWE-final/internal/clock"
)

var ErrInvalidToken = errors.New("invalid token")

type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// Session is the authenticated identity carried by a verified token.
type Session struct {
	UserID string
	Email  string
}

// Tokens mints and verifies HS256 session tokens.
type Tokens struct {
	cfg    TokenConfig
	secret []byte
	clock  clock.Clock
}

const defaultTokenTTL = 24 * time.Hour

func NewTokens(cfg TokenConfig, clk clock.Clock) *Tokens {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTokenTTL
	}
	return &Tokens{
		cfg:    cfg,
		secret: []byte(cfg.Secret),
		clock:  clk,
	}
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (t *Tokens) Issue(userID, email string) (string, error) {
	now := t.clock.Now()
	claims := sessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    t.cfg.Issuer,
			Audience:  jwt.ClaimStrings{t.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (t *Tokens) Verify(tokenString string) (Session, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(t.cfg.Issuer),
		jwt.WithAudience(t.cfg.Audience),
		jwt.WithTimeFunc(t.clock.Now),
	)
	if err != nil {
		return Session{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Session{}, ErrInvalidToken
	}
	return Session{UserID: claims.Subject, Email: claims.Email}, nil
}
