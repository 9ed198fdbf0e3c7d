package auth

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
)

// TokenID identifies an API token
type TokenID string

// TokenSecret is the secret half of an API token pair
type TokenSecret string

// DefaultTokenTTL is the lifetime of newly issued tokens.
const DefaultTokenTTL = 90 * 24 * time.Hour

// Token is an opaque API credential bound to one user. The pair
// (ID, Secret) is presented as a bearer credential; the server looks the
// token up by ID and compares the secret in constant time.
type Token struct {
	ID        TokenID
	Secret    TokenSecret `masq:"secret"`
	UserID    types.UserID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// NewToken issues a fresh token for the given user.
func NewToken(userID types.UserID, ttl time.Duration) *Token {
	now := time.Now().UTC()
	return &Token{
		ID:        TokenID(uuid.New().String()),
		Secret:    TokenSecret(uuid.New().String()),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Validate checks the presented secret and expiry.
func (t *Token) Validate(secret TokenSecret) error {
	if subtle.ConstantTimeCompare([]byte(t.Secret), []byte(secret)) != 1 {
		return goerr.New("token secret mismatch")
	}
	if time.Now().After(t.ExpiresAt) {
		return goerr.New("token expired", goerr.V("expired_at", t.ExpiresAt))
	}
	return nil
}

type ctxTokenKey struct{}

// ContextWithToken embeds the validated token into the context.
func ContextWithToken(ctx context.Context, token *Token) context.Context {
	return context.WithValue(ctx, ctxTokenKey{}, token)
}

// TokenFromContext retrieves the validated token, or nil when the request
// was not authenticated.
func TokenFromContext(ctx context.Context) *Token {
	token, _ := ctx.Value(ctxTokenKey{}).(*Token)
	return token
}
