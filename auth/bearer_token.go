package auth

import (
	"context"
	"errors"
	"net/http"
)

// BearerTokenStrategy authenticates with a fixed OAuth 2.0 access token.
//
// The token is not refreshed; once it expires every request fails with an
// AuthorizationError. Use TokenSourceStrategy for long-running processes.
type BearerTokenStrategy struct {
	token string
}

// NewBearerTokenStrategy creates a new bearer token strategy.
//
// Example:
//
//	strategy := auth.NewBearerTokenStrategy("ya29.xxxx")
func NewBearerTokenStrategy(token string) *BearerTokenStrategy {
	return &BearerTokenStrategy{token: token}
}

// GetToken returns the configured token.
func (s *BearerTokenStrategy) GetToken(ctx context.Context) (string, error) {
	if s.token == "" {
		return "", errors.New("bearer token is empty")
	}
	return s.token, nil
}

// ApplyAuth sets the Authorization header.
func (s *BearerTokenStrategy) ApplyAuth(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
}

// HandleAuthError never retries: a static token cannot be refreshed.
func (s *BearerTokenStrategy) HandleAuthError(ctx context.Context, statusCode int, attempt int, maxAttempts int) (string, error) {
	return "", nil
}
