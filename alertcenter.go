// Package alertcenter provides a Go SDK for the Google Workspace Alert Center API.
//
// This SDK provides:
//   - A table of operation templates and a generic command builder
//   - Immediate and batched (multipart/mixed) execution
//   - API key, static bearer token and OAuth 2.0 token source credentials
//   - Automatic retry with exponential backoff on 429 and 5xx
//   - Optional sliding window or token bucket throttling
//   - Custom error types for different HTTP status codes
//   - Debug logging and OpenTelemetry spans
//
// Basic usage with an API key:
//
//	ac, err := alertcenter.New(alertcenter.WithAPIKey("AIza..."))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	alert, err := ac.GetAlert(ctx, "abc123", nil)
//
// Batching several calls into one HTTP request:
//
//	batch := ac.NewBatch()
//	get, _ := ac.GetAlertCommand("abc123", nil)
//	list, _ := ac.ListAlertFeedbacksCommand("abc123", nil)
//	batch.Queue(get, nil)
//	batch.Queue(list, func(result any, err error) { ... })
//	results, err := batch.Flush(ctx)
//
// Optional parameters are explicit; an absent option is never sent:
//
//	resp, err := ac.ListAlerts(ctx, &alertcenter.ListAlertsOptions{
//	    PageSize: alertcenter.Some(50),
//	    Filter:   alertcenter.Some(`type = "Suspicious login"`),
//	})
package alertcenter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"

	"github.com/DrewBradfordXYZ/alertcenter-go/auth"
	"github.com/DrewBradfordXYZ/alertcenter-go/client"
	"github.com/DrewBradfordXYZ/alertcenter-go/core"
	"github.com/DrewBradfordXYZ/alertcenter-go/endpoint"
	"github.com/DrewBradfordXYZ/alertcenter-go/generated"
)

// Client is the main Alert Center API client.
type Client = client.Client

// Re-export types for convenience
type (
	// Command and execution types
	Command          = client.Command
	Batch            = client.Batch
	BatchResult      = client.BatchResult
	Callback         = client.Callback
	ExecutionContext = client.ExecutionContext
	Encoder          = client.Encoder
	Decoder          = client.Decoder

	// Operation options
	AlertOptions              = client.AlertOptions
	ListAlertsOptions         = client.ListAlertsOptions
	ListAlertFeedbacksOptions = client.ListAlertFeedbacksOptions

	// Template types
	Template      = endpoint.Template
	Registry      = endpoint.Registry
	Args          = endpoint.Args
	ParameterSpec = endpoint.ParameterSpec

	// Resource types
	Alert                     = generated.Alert
	AlertFeedback             = generated.AlertFeedback
	ListAlertsResponse        = generated.ListAlertsResponse
	ListAlertFeedbackResponse = generated.ListAlertFeedbackResponse

	// Error types
	AlertcenterError              = core.AlertcenterError
	ServerError                   = core.ServerError
	ClientError                   = core.ClientError
	AuthorizationError            = core.AuthorizationError
	RateLimitError                = core.RateLimitError
	TimeoutError                  = core.TimeoutError
	MissingRequiredParameterError = core.MissingRequiredParameterError
	InvalidParameterError         = core.InvalidParameterError
	UnsupportedOperationError     = core.UnsupportedOperationError
	OperationNotFoundError        = core.OperationNotFoundError

	// Throttle types
	Throttle              = client.Throttle
	SlidingWindowThrottle = client.SlidingWindowThrottle
	TokenBucketThrottle   = client.TokenBucketThrottle
	NoOpThrottle          = client.NoOpThrottle
)

// Operation names
const (
	OpDeleteAlert         = generated.OpDeleteAlert
	OpGetAlert            = generated.OpGetAlert
	OpListAlerts          = generated.OpListAlerts
	OpCreateAlertFeedback = generated.OpCreateAlertFeedback
	OpListAlertFeedbacks  = generated.OpListAlertFeedbacks
)

// Feedback types
const (
	FeedbackNotUseful      = generated.AlertFeedbackTypeNotUseful
	FeedbackSomewhatUseful = generated.AlertFeedbackTypeSomewhatUseful
	FeedbackVeryUseful     = generated.AlertFeedbackTypeVeryUseful
)

// Some wraps a present optional value.
func Some[T any](v T) endpoint.Opt[T] {
	return endpoint.Some(v)
}

// None returns an absent optional value.
func None[T any]() endpoint.Opt[T] {
	return endpoint.None[T]()
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	clientOpts []client.Option
}

func with(opt client.Option) Option {
	return func(c *clientConfig) {
		c.clientOpts = append(c.clientOpts, opt)
	}
}

// WithAPIKey sets the API key sent as the "key" query parameter.
func WithAPIKey(key string) Option { return with(client.WithAPIKey(key)) }

// WithQuotaUser sets the default quota user.
func WithQuotaUser(quotaUser string) Option { return with(client.WithQuotaUser(quotaUser)) }

// WithBearerToken configures a static OAuth 2.0 access token.
func WithBearerToken(token string) Option { return with(client.WithBearerToken(token)) }

// WithTokenSource configures OAuth 2.0 tokens from src.
func WithTokenSource(src oauth2.TokenSource) Option { return with(client.WithTokenSource(src)) }

// WithAuth sets a custom credential strategy.
func WithAuth(strategy auth.Strategy) Option { return with(client.WithAuth(strategy)) }

// WithBaseURL sets a custom base URL.
func WithBaseURL(url string) Option { return with(client.WithBaseURL(url)) }

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option { return with(client.WithHTTPClient(hc)) }

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option { return with(client.WithUserAgent(ua)) }

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(n int) Option { return with(client.WithMaxRetries(n)) }

// WithRetryDelay sets the initial delay between retries.
func WithRetryDelay(d time.Duration) Option { return with(client.WithRetryDelay(d)) }

// WithMaxRetryDelay sets the maximum delay between retries.
func WithMaxRetryDelay(d time.Duration) Option { return with(client.WithMaxRetryDelay(d)) }

// WithTimeout sets the per-command timeout.
func WithTimeout(d time.Duration) Option { return with(client.WithTimeout(d)) }

// WithProactiveThrottle enables sliding window throttling of n requests per window.
func WithProactiveThrottle(n int, window time.Duration) Option {
	return with(client.WithProactiveThrottle(n, window))
}

// WithRateLimit enables token bucket throttling.
func WithRateLimit(perSecond float64, burst int) Option {
	return with(client.WithRateLimit(perSecond, burst))
}

// WithThrottle sets a custom throttle implementation.
func WithThrottle(t Throttle) Option { return with(client.WithThrottle(t)) }

// WithDebug enables debug logging.
func WithDebug(enabled bool) Option { return with(client.WithDebug(enabled)) }

// WithLogger routes SDK logs to logger.
func WithLogger(logger *slog.Logger) Option { return with(client.WithLogger(logger)) }

// WithConvertDates enables conversion of timestamp strings in alert data.
func WithConvertDates(enabled bool) Option { return with(client.WithConvertDates(enabled)) }

// WithTracerProvider sets the OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return with(client.WithTracerProvider(tp))
}

// New creates a new Alert Center client.
//
// With no credential options the client sends unauthenticated requests,
// which the live service rejects; WithAPIKey alone is enough for some
// deployments, otherwise use WithBearerToken or WithTokenSource.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return client.New(cfg.clientOpts...)
}

// Execute sends one command immediately and returns its result as *T.
func Execute[T any](ctx context.Context, c *Client, cmd *Command) (*T, error) {
	return client.Do[T](ctx, c, cmd)
}

// Helper functions re-exported from core
var (
	// IsRetryableError returns true if the error is safe to retry.
	IsRetryableError = core.IsRetryableError

	// IsBindingError reports whether err was raised before any request was sent.
	IsBindingError = core.IsBindingError

	// ParseTimestamp parses an RFC 3339 timestamp.
	ParseTimestamp = core.ParseTimestamp

	// JSONEncoder validates and JSON-encodes a request payload.
	JSONEncoder = client.JSONEncoder
)

// NewSlidingWindowThrottle creates a new sliding window throttle.
func NewSlidingWindowThrottle(limit int, window time.Duration) *SlidingWindowThrottle {
	return client.NewSlidingWindowThrottle(limit, window)
}

// NewTokenBucketThrottle creates a new token bucket throttle.
func NewTokenBucketThrottle(perSecond float64, burst int) *TokenBucketThrottle {
	return client.NewTokenBucketThrottle(perSecond, burst)
}

// NewNoOpThrottle creates a no-op throttle.
func NewNoOpThrottle() *NoOpThrottle {
	return client.NewNoOpThrottle()
}
