// Package auth issues and verifies the signed, time-bounded bearer tokens
// that identify API callers, and carries the verified identity through a
// request context.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/postkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenValidity is the fixed lifetime of every issued token.
const TokenValidity = 24 * time.Hour

// Claims is the JWT payload: standard registered claims plus the user's
// id and email.
type Claims struct {
	jwt.RegisteredClaims
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Identity is the verified caller derived from a token. It is only ever
// produced by Codec.Decode.
type Identity struct {
	UserID    int64
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec signs and verifies tokens with a server-wide HMAC secret.
// It holds no state besides the secret and is safe for concurrent use.
type Codec struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

// NewCodec returns a Codec using secret and the standard 24h validity.
func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret, validity: TokenValidity, now: time.Now}
}

// Encode issues a token for the given user, valid from now for TokenValidity.
func (c *Codec) Encode(userID int64, email string) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.validity)),
		},
		ID:    userID,
		Email: email,
	})

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%w: sign token: %w", common.ErrorInternal, err)
	}

	return tokenString, nil
}

// Decode verifies signature and expiry and returns the embedded Identity.
// Expired tokens yield common.ErrTokenExpired; anything else that fails
// verification yields common.ErrInvalidToken.
func (c *Codec) Decode(tokenString string) (Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, common.ErrTokenExpired
		}
		return Identity{}, common.ErrInvalidToken
	}

	if !token.Valid {
		return Identity{}, common.ErrInvalidToken
	}

	id := Identity{UserID: claims.ID, Email: claims.Email}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}

	return id, nil
}
