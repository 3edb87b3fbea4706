package auth

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

const (
	// Audience is the audience claim expected by the App Store Connect API.
	Audience = "appstoreconnect-v1"
	// DefaultTTL is the lifetime of a generated token.
	DefaultTTL = 10 * time.Minute
	// MaxTTL is the longest lifetime App Store Connect accepts.
	MaxTTL = 20 * time.Minute
)

// TokenGenerator signs short-lived ES256 tokens for the App Store Connect API.
type TokenGenerator struct {
	keyID    string
	issuerID string
	key      *ecdsa.PrivateKey
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenGenerator creates a generator from a PEM encoded .p8 private key.
func NewTokenGenerator(keyID, issuerID string, privateKeyPEM []byte, ttl time.Duration) (*TokenGenerator, error) {
	if keyID == "" || issuerID == "" {
		return nil, fmt.Errorf("key id and issuer id are required")
	}
	key, err := jwt.ParseECPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if ttl > MaxTTL {
		ttl = MaxTTL
	}
	return &TokenGenerator{keyID: keyID, issuerID: issuerID, key: key, ttl: ttl, now: time.Now}, nil
}

// Refresh signs a new bearer token.
func (g *TokenGenerator) Refresh(ctx context.Context) (*oauth2.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	issuedAt := g.now()
	expiry := issuedAt.Add(g.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.RegisteredClaims{
		Issuer:    g.issuerID,
		Audience:  jwt.ClaimStrings{Audience},
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiry),
	})
	token.Header["kid"] = g.keyID

	signed, err := token.SignedString(g.key)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}
	return &oauth2.Token{AccessToken: signed, TokenType: "Bearer", Expiry: expiry}, nil
}
