// Package client provides the Alert Center API client: command building,
// immediate and batched execution, retry and throttling.
package client

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"

	"github.com/DrewBradfordXYZ/alertcenter-go/auth"
	"github.com/DrewBradfordXYZ/alertcenter-go/core"
	"github.com/DrewBradfordXYZ/alertcenter-go/endpoint"
	"github.com/DrewBradfordXYZ/alertcenter-go/generated"
)

const (
	tracerName       = "github.com/DrewBradfordXYZ/alertcenter-go"
	defaultUserAgent = "alertcenter-go/1.0"
)

var validate = validator.New()

// ExecutionContext holds the process-wide settings applied to every
// command sent through one Client. It is fixed when the client is built.
type ExecutionContext struct {
	// APIKey is sent as the "key" query parameter when set.
	APIKey string `validate:"omitempty,printascii"`
	// QuotaUser is sent as the "quotaUser" query parameter when set,
	// unless the command already carries one.
	QuotaUser string `validate:"omitempty,max=40"`
	// BaseURL is the service root, always ending in "/".
	BaseURL string `validate:"required,url"`
	// BatchPath is the batch endpoint relative to BaseURL.
	BatchPath string `validate:"required"`
	// UserAgent is sent with every request.
	UserAgent string
}

// Client executes Alert Center commands.
type Client struct {
	exec         ExecutionContext
	registry     *endpoint.Registry
	doer         *transport
	logger       *core.Logger
	tracer       trace.Tracer
	convertDates bool
	timeout      time.Duration

	// Build-time configuration
	httpClient     *http.Client
	auth           auth.Strategy
	maxRetries     int
	retryDelay     time.Duration
	maxRetryDelay  time.Duration
	throttle       Throttle
	tracerProvider trace.TracerProvider
	slogger        *slog.Logger
	debug          bool
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the API key sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.exec.APIKey = key
	}
}

// WithQuotaUser sets the default quota user sent with every request.
func WithQuotaUser(quotaUser string) Option {
	return func(c *Client) {
		c.exec.QuotaUser = quotaUser
	}
}

// WithBaseURL sets a custom base URL (default https://alertcenter.googleapis.com/).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.exec.BaseURL = url
	}
}

// WithBatchPath sets the batch endpoint path (default "batch").
func WithBatchPath(path string) Option {
	return func(c *Client) {
		c.exec.BatchPath = path
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.exec.UserAgent = ua
	}
}

// WithHTTPClient sets the underlying HTTP client (default http.DefaultClient).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithAuth sets the credential strategy.
func WithAuth(strategy auth.Strategy) Option {
	return func(c *Client) {
		c.auth = strategy
	}
}

// WithBearerToken authenticates with a fixed OAuth 2.0 access token.
func WithBearerToken(token string) Option {
	return func(c *Client) {
		c.auth = auth.NewBearerTokenStrategy(token)
	}
}

// WithTokenSource authenticates with tokens from src.
func WithTokenSource(src oauth2.TokenSource) Option {
	return func(c *Client) {
		c.auth = auth.NewTokenSourceStrategy(src)
	}
}

// WithMaxRetries sets the maximum number of retry attempts (default 3).
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets the initial delay between retries (default 1s).
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithMaxRetryDelay caps the delay between retries (default 30s).
func WithMaxRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.maxRetryDelay = d
	}
}

// WithTimeout sets a per-command timeout, including retries.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithThrottle sets a custom throttle.
func WithThrottle(t Throttle) Option {
	return func(c *Client) {
		c.throttle = t
	}
}

// WithProactiveThrottle enables sliding window throttling of n requests per window.
func WithProactiveThrottle(n int, window time.Duration) Option {
	return func(c *Client) {
		c.throttle = NewSlidingWindowThrottle(n, window)
	}
}

// WithRateLimit enables token bucket throttling.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		c.throttle = NewTokenBucketThrottle(perSecond, burst)
	}
}

// WithDebug enables debug logging.
func WithDebug(enabled bool) Option {
	return func(c *Client) {
		c.debug = enabled
	}
}

// WithLogger routes SDK logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.slogger = logger
	}
}

// WithConvertDates converts timestamp strings inside alert payloads to time.Time.
func WithConvertDates(enabled bool) Option {
	return func(c *Client) {
		c.convertDates = enabled
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider (default: global).
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		c.tracerProvider = tp
	}
}

// WithRegistry replaces the operation registry (default generated.Registry).
func WithRegistry(r *endpoint.Registry) Option {
	return func(c *Client) {
		c.registry = r
	}
}

// New creates a new Alert Center client.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		exec: ExecutionContext{
			BaseURL:   generated.BaseURL,
			BatchPath: generated.BatchPath,
			UserAgent: defaultUserAgent,
		},
		registry:      generated.Registry,
		httpClient:    http.DefaultClient,
		maxRetries:    3,
		retryDelay:    time.Second,
		maxRetryDelay: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	if !strings.HasSuffix(c.exec.BaseURL, "/") {
		c.exec.BaseURL += "/"
	}
	c.exec.BatchPath = strings.TrimPrefix(c.exec.BatchPath, "/")

	if err := validate.Struct(c.exec); err != nil {
		return nil, fmt.Errorf("invalid client configuration: %w", err)
	}

	if c.auth == nil {
		c.auth = auth.NewNoAuthStrategy()
	}
	if c.throttle == nil {
		c.throttle = NewNoOpThrottle()
	}
	if c.tracerProvider == nil {
		c.tracerProvider = otel.GetTracerProvider()
	}
	if c.slogger != nil {
		c.logger = core.NewLoggerWith(c.slogger, c.debug)
	} else {
		c.logger = core.NewLogger(c.debug)
	}
	c.tracer = c.tracerProvider.Tracer(tracerName)

	c.doer = &transport{
		httpClient:    c.httpClient,
		auth:          c.auth,
		throttle:      c.throttle,
		logger:        c.logger,
		maxRetries:    c.maxRetries,
		retryDelay:    c.retryDelay,
		maxRetryDelay: c.maxRetryDelay,
		userAgent:     c.exec.UserAgent,
	}

	return c, nil
}

// ExecutionContext returns a copy of the client's process-wide settings.
func (c *Client) ExecutionContext() ExecutionContext {
	return c.exec
}

// Registry returns the operation registry.
func (c *Client) Registry() *endpoint.Registry {
	return c.registry
}

// Throttle returns the throttle in use.
func (c *Client) Throttle() Throttle {
	return c.throttle
}

// Logger returns the SDK logger.
func (c *Client) Logger() *core.Logger {
	return c.logger
}
