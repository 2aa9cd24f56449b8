package client

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/DrewBradfordXYZ/alertcenter-go/core"
)

// MaxBatchSize is the largest number of commands one batch request may carry.
const MaxBatchSize = 1000

const batchOperation = "batch"

// Callback receives one command's outcome when its batch is flushed.
type Callback func(result any, err error)

// BatchResult is one command's outcome, in enqueue order.
type BatchResult struct {
	Operation string
	Result    any
	Err       error
}

type batchEntry struct {
	cmd         *Command
	callback    Callback
	contentType string
	body        []byte
}

// Batch collects commands and sends them as one multipart/mixed request.
//
// A batch is not safe for concurrent use. Once flushed it cannot be reused.
type Batch struct {
	client  *Client
	id      string
	entries []batchEntry
	flushed bool
}

// NewBatch starts an empty batch.
func (c *Client) NewBatch() *Batch {
	return &Batch{
		client: c,
		id:     uuid.NewString(),
	}
}

// ID returns the batch identifier used in part Content-IDs.
func (b *Batch) ID() string { return b.id }

// Len returns the number of queued commands.
func (b *Batch) Len() int { return len(b.entries) }

// Queue adds cmd to the batch. Nothing is sent until Flush. The callback,
// if not nil, is invoked with the command's outcome during Flush.
//
// Binding and encoding problems are reported here rather than at flush.
func (b *Batch) Queue(cmd *Command, callback Callback) error {
	if b.flushed {
		return &core.UnsupportedOperationError{Operation: batchOperation, Reason: "batch already flushed"}
	}
	if len(b.entries) >= MaxBatchSize {
		return &core.UnsupportedOperationError{
			Operation: batchOperation,
			Reason:    fmt.Sprintf("batch is full (%d commands)", MaxBatchSize),
		}
	}
	if err := cmd.Validate(); err != nil {
		return err
	}
	contentType, body, err := cmd.encodeBody()
	if err != nil {
		return err
	}
	if err := cmd.consume(); err != nil {
		return err
	}
	b.entries = append(b.entries, batchEntry{cmd: cmd, callback: callback, contentType: contentType, body: body})
	return nil
}

// Discard drops every queued command without sending anything.
// Callbacks are not invoked.
func (b *Batch) Discard() {
	b.entries = nil
}

// Flush sends all queued commands in one request and returns their outcomes
// in enqueue order. Each callback is invoked, in enqueue order, before
// Flush returns.
//
// A failure of the batch request itself is reported to every callback and
// returned as Flush's error. Per-command failures are only reported in the
// corresponding result.
func (b *Batch) Flush(ctx context.Context) ([]BatchResult, error) {
	if b.flushed {
		return nil, &core.UnsupportedOperationError{Operation: batchOperation, Reason: "batch already flushed"}
	}
	b.flushed = true

	entries := b.entries
	b.entries = nil
	if len(entries) == 0 {
		return nil, nil
	}

	c := b.client
	ctx, span := c.tracer.Start(ctx, "alertcenter.batch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("alertcenter.batch.id", b.id),
			attribute.Int("alertcenter.batch.size", len(entries)),
		),
	)
	defer span.End()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	results, err := b.send(ctx, entries)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		results = make([]BatchResult, len(entries))
		for i, e := range entries {
			results[i] = BatchResult{Operation: e.cmd.template.Name(), Err: err}
		}
	}

	for i, e := range entries {
		if e.callback != nil {
			e.callback(results[i].Result, results[i].Err)
		}
	}
	return results, err
}

func (b *Batch) send(ctx context.Context, entries []batchEntry) ([]BatchResult, error) {
	c := b.client
	c.logger.Batch(b.id, len(entries))

	body, boundary, err := b.encode(entries)
	if err != nil {
		return nil, err
	}

	batchURL := c.exec.BaseURL + c.exec.BatchPath
	if c.exec.APIKey != "" {
		batchURL += "?key=" + url.QueryEscape(c.exec.APIKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, batchURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating batch request: %w", err)
	}
	req.Header.Set("Content-Type", "multipart/mixed; boundary="+boundary)

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, c.wrapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, core.ParseErrorResponse(resp, http.MethodPost, redactURL(req.URL))
	}

	return b.decode(resp, entries)
}

// encode writes each command as an application/http part.
func (b *Batch) encode(entries []batchEntry) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	boundary := "batch_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := w.SetBoundary(boundary); err != nil {
		return nil, "", err
	}

	for i, e := range entries {
		u, err := url.Parse(b.client.requestURL(e.cmd))
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", e.cmd.template.Name(), err)
		}

		header := textproto.MIMEHeader{}
		header.Set("Content-Type", "application/http")
		header.Set("Content-ID", "<"+b.contentID(i)+">")
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", err
		}

		fmt.Fprintf(part, "%s %s HTTP/1.1\r\n", e.cmd.template.Method(), u.RequestURI())
		fmt.Fprintf(part, "Host: %s\r\n", u.Host)
		if e.body != nil {
			fmt.Fprintf(part, "Content-Type: %s\r\n", e.contentType)
			fmt.Fprintf(part, "Content-Length: %d\r\n", len(e.body))
		}
		io.WriteString(part, "\r\n")
		part.Write(e.body)
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), boundary, nil
}

// contentID names the i'th part (1-based on the wire).
func (b *Batch) contentID(i int) string {
	return b.id + "+" + strconv.Itoa(i+1)
}

// decode splits a multipart/mixed response into per-command results.
// Parts are matched by Content-ID and fall back to position.
func (b *Batch) decode(resp *http.Response, entries []batchEntry) ([]BatchResult, error) {
	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return nil, fmt.Errorf("batch response: unexpected content type %q", resp.Header.Get("Content-Type"))
	}

	results := make([]BatchResult, len(entries))
	filled := make([]bool, len(entries))

	reader := multipart.NewReader(resp.Body, params["boundary"])
	for position := 0; ; position++ {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("batch response: %w", err)
		}

		idx, ok := b.partIndex(part.Header.Get("Content-ID"))
		if !ok {
			idx = position
		}
		if idx < 0 || idx >= len(entries) || filled[idx] {
			continue
		}

		inner, err := http.ReadResponse(bufio.NewReader(part), nil)
		if err != nil {
			results[idx] = BatchResult{Err: fmt.Errorf("batch response part %d: %w", idx+1, err)}
			filled[idx] = true
			continue
		}
		innerBody, err := io.ReadAll(inner.Body)
		inner.Body.Close()
		if err != nil {
			results[idx] = BatchResult{Err: fmt.Errorf("batch response part %d: %w", idx+1, err)}
			filled[idx] = true
			continue
		}
		inner.Body = io.NopCloser(bytes.NewReader(innerBody))

		cmd := entries[idx].cmd
		result, err := handleResponse(cmd, inner, cmd.template.Method(), b.client.exec.BaseURL+cmd.bound.Path)
		results[idx] = BatchResult{Result: result, Err: err}
		filled[idx] = true
	}

	for i, e := range entries {
		results[i].Operation = e.cmd.template.Name()
		if !filled[i] {
			results[i].Err = fmt.Errorf("%s: no response in batch %s", e.cmd.template.Name(), b.id)
		}
	}
	return results, nil
}

// partIndex parses "<response-{id}+{n}>" into a zero-based index.
func (b *Batch) partIndex(contentID string) (int, bool) {
	id := strings.TrimSuffix(strings.TrimPrefix(contentID, "<"), ">")
	id = strings.TrimPrefix(id, "response-")
	rest, ok := strings.CutPrefix(id, b.id+"+")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}
