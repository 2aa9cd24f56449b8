package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/DrewBradfordXYZ/alertcenter-go/auth"
	"github.com/DrewBradfordXYZ/alertcenter-go/core"
)

// transport wraps http.Client to add auth, retry and throttling.
type transport struct {
	httpClient    *http.Client
	auth          auth.Strategy
	throttle      Throttle
	logger        *core.Logger
	maxRetries    int
	retryDelay    time.Duration
	maxRetryDelay time.Duration
	userAgent     string
}

func (t *transport) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = t.retryDelay
	b.MaxInterval = t.maxRetryDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0.1
	b.Reset()
	return b
}

// Do sends req, retrying network errors, 429 and 5xx responses up to
// maxRetries times. A 401 gives the auth strategy one chance per attempt
// to supply a fresh token.
//
// The returned response is the last one received; non-2xx statuses are not
// converted to errors here.
func (t *transport) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
	}

	bo := t.newBackOff()

	for attempt := 0; ; attempt++ {
		if err := t.throttle.Acquire(ctx); err != nil {
			return nil, fmt.Errorf("throttle: %w", err)
		}

		token, err := t.auth.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting auth token: %w", err)
		}

		reqCopy := req.Clone(ctx)
		if body != nil {
			reqCopy.Body = io.NopCloser(bytes.NewReader(body))
			reqCopy.ContentLength = int64(len(body))
			reqCopy.GetBody = func() (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader(body)), nil
			}
		}
		if t.userAgent != "" {
			reqCopy.Header.Set("User-Agent", t.userAgent)
		}
		t.auth.ApplyAuth(reqCopy, token)

		start := time.Now()
		resp, err := t.httpClient.Do(reqCopy)
		if err != nil {
			if ctx.Err() != nil || attempt >= t.maxRetries {
				return nil, err
			}
			delay := bo.NextBackOff()
			t.logger.Retry(attempt+1, t.maxRetries, delay, err.Error())
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
			continue
		}
		t.logger.Timing(req.Method, redactURL(req.URL), resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode == http.StatusTooManyRequests && attempt < t.maxRetries:
			delay := t.retryAfter(resp.Header.Get("Retry-After"), bo.NextBackOff())
			discard(resp)
			t.logger.Retry(attempt+1, t.maxRetries, delay, "rate limited")
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
			continue

		case resp.StatusCode == http.StatusUnauthorized:
			newToken, err := t.auth.HandleAuthError(ctx, resp.StatusCode, attempt, t.maxRetries)
			if err != nil {
				discard(resp)
				return nil, err
			}
			if newToken != "" {
				discard(resp)
				t.logger.Retry(attempt+1, t.maxRetries, 0, "token refreshed")
				continue
			}

		case resp.StatusCode >= 500 && attempt < t.maxRetries:
			delay := bo.NextBackOff()
			discard(resp)
			t.logger.Retry(attempt+1, t.maxRetries, delay, resp.Status)
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
			continue
		}

		return resp, nil
	}
}

// retryAfter parses the Retry-After header (in seconds) or falls back to
// the backoff delay. The result never exceeds maxRetryDelay.
func (t *transport) retryAfter(header string, fallback time.Duration) time.Duration {
	delay := fallback
	if header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
			delay = time.Duration(seconds) * time.Second
		}
	}
	if t.maxRetryDelay > 0 && delay > t.maxRetryDelay {
		delay = t.maxRetryDelay
	}
	return delay
}

func discard(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
