// Package identity verifies bearer credentials issued by the external identity provider.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidCredential = errors.New("invalid credential")

// Identity is the verified caller.
type Identity struct {
	UserID string
	Email  string
}

// Verifier turns a bearer credential into an Identity.
type Verifier interface {
	Verify(ctx context.Context, credential string) (Identity, error)
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256-signed tokens whose subject is the user id.
type JWTVerifier struct {
	secret []byte
	parser *jwt.Parser
}

var _ Verifier = (*JWTVerifier)(nil)

func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &JWTVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(opts...),
	}
}

func (v *JWTVerifier) Verify(_ context.Context, credential string) (Identity, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return Identity{}, ErrInvalidCredential
	}

	var c claims
	_, err := v.parser.ParseWithClaims(credential, &c, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if c.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidCredential)
	}
	return Identity{UserID: c.Subject, Email: c.Email}, nil
}

// Sign issues a token for id. It is used by tests and local tooling.
func Sign(secret, issuer string, id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
