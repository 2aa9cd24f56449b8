// Package auth attaches credentials to Alert Center requests.
//
// The API accepts either an API key (sent as the "key" query parameter by
// the client's defaults, not by this package) or an OAuth 2.0 access token
// in the Authorization header. This package only attaches credentials that
// the caller already has; obtaining them is left to golang.org/x/oauth2 or
// the caller's own tooling.
//
// # Static Bearer Token
//
//	client, _ := alertcenter.New(
//	    alertcenter.WithBearerToken(os.Getenv("ALERTCENTER_ACCESS_TOKEN")),
//	)
//
// # OAuth 2.0 Token Source
//
// Any oauth2.TokenSource works, for example one from golang.org/x/oauth2/google:
//
//	src, _ := google.DefaultTokenSource(ctx, "https://www.googleapis.com/auth/apps.alerts")
//	client, _ := alertcenter.New(alertcenter.WithTokenSource(src))
//
// # API Key Only
//
//	client, _ := alertcenter.New(alertcenter.WithAPIKey("AIza..."))
package auth

import (
	"context"
	"net/http"
)

// Strategy defines the interface for credential attachment.
//
// The SDK provides three built-in implementations:
//   - [BearerTokenStrategy]: a fixed access token
//   - [TokenSourceStrategy]: tokens from an oauth2.TokenSource
//   - [NoAuthStrategy]: no Authorization header (API key only)
type Strategy interface {
	// GetToken returns the token to attach to the next request.
	GetToken(ctx context.Context) (string, error)

	// ApplyAuth applies authentication headers to the request.
	ApplyAuth(req *http.Request, token string)

	// HandleAuthError is called when the API returns 401 Unauthorized.
	// Returns a replacement token if the request should be retried,
	// or an empty string to surface the error to the caller.
	HandleAuthError(ctx context.Context, statusCode int, attempt int, maxAttempts int) (string, error)
}

// NoAuthStrategy sends requests without an Authorization header.
type NoAuthStrategy struct{}

// NewNoAuthStrategy creates a strategy that attaches nothing.
func NewNoAuthStrategy() *NoAuthStrategy {
	return &NoAuthStrategy{}
}

// GetToken returns an empty token.
func (s *NoAuthStrategy) GetToken(ctx context.Context) (string, error) {
	return "", nil
}

// ApplyAuth does nothing.
func (s *NoAuthStrategy) ApplyAuth(req *http.Request, token string) {}

// HandleAuthError never retries; there is no credential to refresh.
func (s *NoAuthStrategy) HandleAuthError(ctx context.Context, statusCode int, attempt int, maxAttempts int) (string, error) {
	return "", nil
}
