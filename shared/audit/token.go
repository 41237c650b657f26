package audit

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

type tokenKey struct{}

// WithToken attaches a caller's bearer token to ctx so a TokenAuditor can
// attribute the write to the token subject.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey{}).(string)
	return token, ok && token != ""
}

// TokenAuditor reports the subject of an HMAC-signed JWT carried on the
// context. Writes without a valid token fall back to Fallback.
type TokenAuditor struct {
	secret   []byte
	fallback Auditor
}

func NewTokenAuditor(secret string, fallback Auditor) *TokenAuditor {
	return &TokenAuditor{secret: []byte(secret), fallback: fallback}
}

func (a *TokenAuditor) CurrentAuditor(ctx context.Context) string {
	if token, ok := tokenFrom(ctx); ok {
		if subject, err := a.subject(token); err == nil {
			return subject
		}
	}
	if a.fallback == nil {
		return ""
	}
	return a.fallback.CurrentAuditor(ctx)
}

func (a *TokenAuditor) subject(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return claims.Subject, nil
}
