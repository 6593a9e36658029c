package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sindrigils/restfulapi-anime/internal/domain"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 15 * time.Minute

// TokenIssuer signs and verifies HS256 bearer tokens carrying the caller's
// username ("sub") and opaque id ("id").
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a TokenIssuer. Pass ttl <= 0 for DefaultTokenTTL.
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}, nil
}

// Issue creates a signed token for the given principal.
func (t *TokenIssuer) Issue(username, id string) (string, error) {
	claims := jwt.MapClaims{
		"sub": username,
		"id":  id,
		"exp": jwt.NewNumericDate(time.Now().Add(t.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the carried Identity.
// Any failure — malformed token, bad signature, expiry, missing claims —
// comes back as domain.ErrUnauthorized.
func (t *TokenIssuer) Verify(tokenStr string) (*Identity, error) {
	token, err := jwt.Parse(tokenStr, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	username, _ := claims["sub"].(string)
	id, _ := claims["id"].(string)
	if username == "" || id == "" {
		return nil, domain.ErrUnauthorized
	}
	return &Identity{Username: username, ID: id}, nil
}

// Authenticate implements Authenticator against the Authorization header.
func (t *TokenIssuer) Authenticate(r *http.Request) *Identity {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil
	}
	id, err := t.Verify(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return nil
	}
	return id
}
