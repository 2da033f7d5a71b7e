package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/viant/mcp-protocol/authorization"
)

// Service derives the caller namespace from a JWT carried in context so
// that auth records and token caches stay isolated per signed-in user.
// It falls back to DefaultNamespace when no token is present.
type Service struct {
	// DefaultNamespace is returned when no token is present or extraction fails.
	DefaultNamespace string
	// Claims contains claim names tried in order when extracting the namespace.
	Claims []string
	// Parse turns a token string into jwt.MapClaims (unverified parse by default).
	Parse func(token string) (jwt.MapClaims, error)
}

// Namespace extracts the namespace from an auth token placed in context
// by the MCP auth middleware.
func (s *Service) Namespace(ctx context.Context) (string, error) {
	if s == nil {
		return "default", nil
	}
	tokenValue := ctx.Value(authorization.TokenKey)
	if tokenValue == nil {
		return s.DefaultNamespace, nil
	}
	var tokenString string
	switch tv := tokenValue.(type) {
	case string:
		tokenString = tv
	case *authorization.Token:
		tokenString = tv.Token
	default:
		return "", fmt.Errorf("unsupported token type %T", tokenValue)
	}
	if s.Parse == nil {
		return s.DefaultNamespace, nil
	}
	claims, err := s.Parse(tokenString)
	if err != nil {
		return s.DefaultNamespace, nil
	}
	for _, name := range s.Claims {
		if v, _ := claims[name].(string); v != "" {
			return v, nil
		}
	}
	return s.DefaultNamespace, nil
}

// New returns a Service that prefers "email" then "sub" without verification.
func New() *Service {
	return &Service{
		DefaultNamespace: "default",
		Claims:           []string{"email", "sub"},
		Parse: func(tokenString string) (jwt.MapClaims, error) {
			var claimMap jwt.MapClaims
			_, _, err := new(jwt.Parser).ParseUnverified(tokenString, &claimMap)
			return claimMap, err
		},
	}
}
