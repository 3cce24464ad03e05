package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidToken is returned for tokens that are malformed, expired, signed
// with another key, or issued for a different table.
var ErrInvalidToken = errors.New("invalid table token")

// TableClaims authorise the bearer to play at and close one table.
type TableClaims struct {
	TableID string `json:"table_id"`
	jwt.RegisteredClaims
}

// IssueTableToken signs an HS256 token for tableID that expires after ttl.
func IssueTableToken(secret, tableID string, ttl time.Duration) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, errors.New("jwt secret not configured")
	}

	now := time.Now()
	exp := now.Add(ttl)
	claims := TableClaims{
		TableID: tableID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tableID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing table token: %w", err)
	}
	return signed, exp, nil
}

// ParseTableToken verifies token and returns the table it was issued for.
func ParseTableToken(secret, token string) (string, error) {
	claims := &TableClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid || claims.TableID == "" {
		return "", ErrInvalidToken
	}
	return claims.TableID, nil
}

// VerifyTableToken checks that token was issued for tableID.
func VerifyTableToken(secret, token, tableID string) error {
	id, err := ParseTableToken(secret, token)
	if err != nil {
		return err
	}
	if id != tableID {
		return ErrInvalidToken
	}
	return nil
}
