package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/DrewBradfordXYZ/alertcenter-go/core"
	"github.com/DrewBradfordXYZ/alertcenter-go/endpoint"
)

// NewCommand builds a command for the named operation.
func (c *Client) NewCommand(name string, args endpoint.Args) (*Command, error) {
	t, err := c.registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	return NewCommand(t, args)
}

// requestURL resolves cmd against the base URL and appends the process-wide
// defaults. The key parameter always goes last; quotaUser is added only when
// the command did not bind one.
func (c *Client) requestURL(cmd *Command) string {
	query := append([]string(nil), cmd.bound.Query...)
	if c.exec.QuotaUser != "" && !cmd.bound.HasQuery("quotaUser") {
		query = append(query, "quotaUser="+url.QueryEscape(c.exec.QuotaUser))
	}
	if c.exec.APIKey != "" {
		query = append(query, "key="+url.QueryEscape(c.exec.APIKey))
	}

	u := c.exec.BaseURL + cmd.bound.Path
	if len(query) > 0 {
		u += "?" + strings.Join(query, "&")
	}
	return u
}

// redactURL renders u for logs and errors with the API key masked.
// Query order is kept.
func redactURL(u *url.URL) string {
	if u.RawQuery == "" {
		return u.Redacted()
	}
	parts := strings.Split(u.RawQuery, "&")
	for i, part := range parts {
		if name, _, _ := strings.Cut(part, "="); name == "key" {
			parts[i] = "key=REDACTED"
		}
	}
	masked := *u
	masked.RawQuery = strings.Join(parts, "&")
	return masked.Redacted()
}

// Execute sends cmd immediately and returns its decoded result.
//
// Binding and body encoding failures are returned before any network call.
// Non-2xx responses are returned as *core.ClientError, *core.ServerError,
// *core.AuthorizationError or *core.RateLimitError.
func (c *Client) Execute(ctx context.Context, cmd *Command) (any, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	contentType, body, err := cmd.encodeBody()
	if err != nil {
		return nil, err
	}
	if err := cmd.consume(); err != nil {
		return nil, err
	}

	t := cmd.template
	ctx, span := c.tracer.Start(ctx, t.ID(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("alertcenter.operation", t.Name()),
			attribute.String("http.request.method", t.Method()),
		),
	)
	defer span.End()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	requestURL := c.requestURL(cmd)
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, t.Method(), requestURL, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("%s %s", t.Method(), redactURL(req.URL))

	resp, err := c.doer.Do(req)
	if err != nil {
		err = c.wrapTransportError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	result, err := handleResponse(cmd, resp, t.Method(), redactURL(req.URL))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return result, nil
}

// wrapTransportError maps deadline expiry to a TimeoutError.
func (c *Client) wrapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return core.NewTimeoutError(int(c.timeout.Milliseconds()), err)
	}
	return err
}

// handleResponse classifies a response and decodes a successful body.
func handleResponse(cmd *Command, resp *http.Response, method, requestURL string) (any, error) {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, core.ParseErrorResponse(resp, method, requestURL)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return cmd.decode(body)
}

// Do executes cmd and returns its result as *T. If the command has no
// decoder, the body is decoded as JSON into T.
func Do[T any](ctx context.Context, c *Client, cmd *Command) (*T, error) {
	if cmd.decoder == nil {
		cmd.SetResponseDecoder(DecodeJSON[T]())
	}
	v, err := c.Execute(ctx, cmd)
	if err != nil {
		return nil, err
	}
	out, ok := v.(*T)
	if !ok {
		return nil, fmt.Errorf("%s: decoder returned %T, want %T", cmd.template.Name(), v, out)
	}
	return out, nil
}
