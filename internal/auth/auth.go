// Package auth verifies inbound session tokens and carries the resulting
// identity through the request context. The identity here is the external
// identity-provider subject, not the internal user id; mapping between the
// two happens in the service layer.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoIdentity is returned when a context carries no verified identity.
var ErrNoIdentity = errors.New("no verified identity in context")

// Identity is the verified external identity of a caller.
type Identity struct {
	// Subject is the identity provider's stable subject identifier.
	Subject string

	// Email is the email claim, if the token carried one.
	Email string
}

type identityKey struct{}

// WithIdentity returns a context carrying the identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom extracts the verified identity from a context.
func IdentityFrom(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}

// Verifier validates HS256-signed session tokens issued by the upstream
// identity layer.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier creates a verifier for the given shared secret. If issuer is
// non-empty, the token's iss claim must match it.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verify parses and validates a raw token string and returns the identity it
// asserts. A token without a subject is rejected.
func (v *Verifier) Verify(raw string) (Identity, error) {
	claims := &sessionClaims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("parsing session token: %w", err)
	}
	if claims.Subject == "" {
		return Identity{}, errors.New("session token has no subject")
	}
	return Identity{Subject: claims.Subject, Email: claims.Email}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}
