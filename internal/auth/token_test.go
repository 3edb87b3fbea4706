package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestKey(t *testing.T) (*ecdsa.PrivateKey, []byte) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshaling key: %v", err)
	}
	return key, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}

func TestRefreshSignsAppStoreToken(t *testing.T) {
	key, keyPEM := newTestKey(t)
	gen, err := NewTokenGenerator("KEY123", "issuer-uuid", keyPEM, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	fixed := time.Now().Truncate(time.Second)
	gen.now = func() time.Time { return fixed }

	tok, err := gen.Refresh(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tok.TokenType != "Bearer" {
		t.Fatalf("expected Bearer token type, got %s", tok.TokenType)
	}
	if !tok.Expiry.Equal(fixed.Add(DefaultTTL)) {
		t.Fatalf("expected expiry %v, got %v", fixed.Add(DefaultTTL), tok.Expiry)
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tok.AccessToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			t.Fatalf("unexpected signing method %v", token.Header["alg"])
		}
		return &key.PublicKey, nil
	}, jwt.WithAudience(Audience), jwt.WithIssuer("issuer-uuid"))
	if err != nil {
		t.Fatalf("expected token to verify, got %v", err)
	}
	if parsed.Header["kid"] != "KEY123" {
		t.Fatalf("expected kid KEY123, got %v", parsed.Header["kid"])
	}
	if parsed.Header["alg"] != "ES256" {
		t.Fatalf("expected ES256, got %v", parsed.Header["alg"])
	}
}

func TestNewTokenGeneratorClampsTTL(t *testing.T) {
	_, keyPEM := newTestKey(t)
	gen, err := NewTokenGenerator("KEY123", "issuer-uuid", keyPEM, time.Hour)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gen.ttl != MaxTTL {
		t.Fatalf("expected ttl clamped to %v, got %v", MaxTTL, gen.ttl)
	}
}

func TestNewTokenGeneratorRejectsInvalidInput(t *testing.T) {
	_, keyPEM := newTestKey(t)
	if _, err := NewTokenGenerator("", "issuer", keyPEM, 0); err == nil {
		t.Fatalf("expected error for missing key id")
	}
	if _, err := NewTokenGenerator("KEY", "issuer", []byte("not a key"), 0); err == nil {
		t.Fatalf("expected error for invalid PEM")
	}
}

func TestRefreshHonorsCanceledContext(t *testing.T) {
	_, keyPEM := newTestKey(t)
	gen, err := NewTokenGenerator("KEY123", "issuer-uuid", keyPEM, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := gen.Refresh(ctx); err == nil {
		t.Fatalf("expected error for canceled context")
	}
}
