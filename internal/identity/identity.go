// Package identity carries the calling principal through a request context
// and verifies bearer credentials.
package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/starford/webcraft/internal/apperr"
)

// Mode selects how bearer credentials are checked.
type Mode string

const (
	ModeDisabled Mode = "disabled"
	ModeToken    Mode = "token"
	ModeJWT      Mode = "jwt"
)

// Modes lists the accepted values of Mode.
var Modes = []Mode{ModeDisabled, ModeToken, ModeJWT}

type ctxKey struct{}

// WithPrincipal returns a copy of ctx carrying principal.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, ctxKey{}, principal)
}

// Principal returns the caller stored in ctx, if any.
func Principal(ctx context.Context) (string, bool) {
	p, ok := ctx.Value(ctxKey{}).(string)
	return p, ok && p != ""
}

// Require returns the caller stored in ctx or apperr.ErrUnauthorized.
func Require(ctx context.Context) (string, error) {
	p, ok := Principal(ctx)
	if !ok {
		return "", apperr.ErrUnauthorized
	}
	return p, nil
}

// Verifier resolves an Authorization header to a principal.
type Verifier struct {
	mode      Mode
	token     string
	principal string
	secret    []byte
}

// NewVerifier builds a verifier. principal is the identity assigned in
// disabled and token modes.
func NewVerifier(mode Mode, token, principal, jwtSecret string) *Verifier {
	return &Verifier{mode: mode, token: token, principal: principal, secret: []byte(jwtSecret)}
}

// Mode reports the configured mode.
func (v *Verifier) Mode() Mode { return v.mode }

// Verify checks header and returns the caller it identifies.
func (v *Verifier) Verify(header string) (string, error) {
	if v.mode == ModeDisabled {
		return v.principal, nil
	}

	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return "", apperr.ErrUnauthorized
	}

	switch v.mode {
	case ModeToken:
		if raw != v.token {
			return "", apperr.ErrUnauthorized
		}
		return v.principal, nil
	case ModeJWT:
		return v.verifyJWT(raw)
	default:
		return "", fmt.Errorf("identity: unknown mode %q", v.mode)
	}
}

func (v *Verifier) verifyJWT(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return "", apperr.ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperr.ErrUnauthorized
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", apperr.ErrUnauthorized
	}
	return sub, nil
}
