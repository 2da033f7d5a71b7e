package auth

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/viant/mcp-protocol/authorization"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return s
}

func TestNamespaceDefaultsWithoutToken(t *testing.T) {
	s := New()
	ns, err := s.Namespace(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ns != "default" {
		t.Fatalf("expected default namespace, got %q", ns)
	}
}

func TestNamespaceFromEmailClaim(t *testing.T) {
	s := New()
	tok := signedToken(t, jwt.MapClaims{"email": "user@example.com", "sub": "abc"})
	ctx := context.WithValue(context.Background(), authorization.TokenKey, tok)
	ns, err := s.Namespace(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ns != "user@example.com" {
		t.Fatalf("expected email claim, got %q", ns)
	}
}

func TestNamespaceFallsBackToSub(t *testing.T) {
	s := New()
	tok := signedToken(t, jwt.MapClaims{"sub": "abc123"})
	ctx := context.WithValue(context.Background(), authorization.TokenKey, tok)
	ns, err := s.Namespace(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ns != "abc123" {
		t.Fatalf("expected sub claim, got %q", ns)
	}
}

func TestNamespaceTokenStruct(t *testing.T) {
	s := New()
	tok := signedToken(t, jwt.MapClaims{"email": "work@example.com"})
	ctx := context.WithValue(context.Background(), authorization.TokenKey, &authorization.Token{Token: tok})
	ns, err := s.Namespace(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ns != "work@example.com" {
		t.Fatalf("expected email claim, got %q", ns)
	}
}

func TestNamespaceUnparseableToken(t *testing.T) {
	s := New()
	ctx := context.WithValue(context.Background(), authorization.TokenKey, "not-a-jwt")
	ns, err := s.Namespace(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ns != "default" {
		t.Fatalf("expected fallback namespace, got %q", ns)
	}
}
