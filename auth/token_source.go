package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// TokenSourceStrategy authenticates with tokens from an oauth2.TokenSource.
//
// Tokens are cached until they expire. On a 401 the cache is dropped and a
// fresh token is requested from the underlying source, once per attempt.
// If the source hands back the token that was just rejected, the request is
// not retried.
type TokenSourceStrategy struct {
	mu     sync.Mutex
	base   oauth2.TokenSource
	cached oauth2.TokenSource
	// last is the most recent token handed out by GetToken.
	last string
}

// NewTokenSourceStrategy creates a strategy backed by src.
func NewTokenSourceStrategy(src oauth2.TokenSource) *TokenSourceStrategy {
	return &TokenSourceStrategy{
		base:   src,
		cached: oauth2.ReuseTokenSource(nil, src),
	}
}

// GetToken returns a valid access token.
func (s *TokenSourceStrategy) GetToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	src := s.cached
	s.mu.Unlock()

	tok, err := src.Token()
	if err != nil {
		return "", fmt.Errorf("fetching oauth2 token: %w", err)
	}

	s.mu.Lock()
	s.last = tok.AccessToken
	s.mu.Unlock()
	return tok.AccessToken, nil
}

// ApplyAuth sets the Authorization header.
func (s *TokenSourceStrategy) ApplyAuth(req *http.Request, token string) {
	if token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

// HandleAuthError drops the cached token and fetches a new one. It returns
// "" when the source yields the rejected token again, which is what caching
// sources such as oauth2.StaticTokenSource do.
func (s *TokenSourceStrategy) HandleAuthError(ctx context.Context, statusCode int, attempt int, maxAttempts int) (string, error) {
	if statusCode != http.StatusUnauthorized || attempt >= maxAttempts {
		return "", nil
	}

	s.mu.Lock()
	rejected := s.last
	s.cached = oauth2.ReuseTokenSource(nil, s.base)
	s.mu.Unlock()

	token, err := s.GetToken(ctx)
	if err != nil {
		return "", err
	}
	if token == rejected {
		return "", nil
	}
	return token, nil
}
