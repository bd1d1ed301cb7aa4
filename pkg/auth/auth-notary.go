package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken       = errors.New("invalid session token")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Notary signs and verifies session tokens. Sessions are stateless: the bearer token
// carries the account's id and alias, so no session table is needed.
type Notary struct {
	secret   []byte
	duration time.Duration
}

type sessionClaims struct {
	Alias string `json:"alias"`
	jwt.RegisteredClaims
}

func NewNotary(secret string, duration time.Duration) *Notary {
	return &Notary{secret: []byte(secret), duration: duration}
}

// IssueToken mints a signed token for the given account, valid for the configured duration.
func (n *Notary) IssueToken(userId, alias string) (string, error) {
	var now = time.Now()
	var token = jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Alias: alias,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userId,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(n.duration)),
		},
	})

	signed, err := token.SignedString(n.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses and validates a bearer token, returning the session it encodes.
func (n *Notary) VerifyToken(raw string) (Session, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return n.secret, nil
	})

	if err != nil || !token.Valid || claims.Subject == "" {
		return Session{}, ErrInvalidToken
	}

	return Session{UserId: claims.Subject, Alias: claims.Alias}, nil
}
