package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/DrewBradfordXYZ/alertcenter-go/core"
	"github.com/DrewBradfordXYZ/alertcenter-go/endpoint"
	"github.com/DrewBradfordXYZ/alertcenter-go/generated"
)

// queueMixed queues get, list and create-feedback commands.
func queueMixed(t *testing.T, c *Client, b *Batch, record func(i int) Callback) {
	t.Helper()

	get, err := c.GetAlertCommand("def456", nil)
	if err != nil {
		t.Fatal(err)
	}
	list, err := c.ListAlertsCommand(&ListAlertsOptions{PageSize: endpoint.Some(1)})
	if err != nil {
		t.Fatal(err)
	}
	create, err := c.CreateAlertFeedbackCommand("abc123",
		&generated.AlertFeedback{Type: generated.AlertFeedbackTypeNotUseful}, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i, cmd := range []*Command{get, list, create} {
		if err := b.Queue(cmd, record(i)); err != nil {
			t.Fatalf("Queue(%d) error = %v", i, err)
		}
	}
}

func TestBatch_MixedOperationsInEnqueueOrder(t *testing.T) {
	for _, reverse := range []bool{false, true} {
		name := "in order"
		if reverse {
			name = "server answers reversed"
		}
		t.Run(name, func(t *testing.T) {
			srv := newTestServer(t)
			srv.ReverseBatchResponses(reverse)
			c := newTestClient(t, srv, WithAPIKey("k1"))

			b := c.NewBatch()
			var order []int
			var callbackResults []any
			queueMixed(t, c, b, func(i int) Callback {
				return func(result any, err error) {
					if err != nil {
						t.Errorf("callback %d error = %v", i, err)
					}
					order = append(order, i)
					callbackResults = append(callbackResults, result)
				}
			})
			if b.Len() != 3 {
				t.Fatalf("Len() = %d, want 3", b.Len())
			}

			results, err := b.Flush(context.Background())
			if err != nil {
				t.Fatalf("Flush() error = %v", err)
			}
			if len(results) != 3 {
				t.Fatalf("got %d results, want 3", len(results))
			}

			alert, ok := results[0].Result.(*generated.Alert)
			if !ok || alert.AlertID != "def456" {
				t.Errorf("results[0] = %#v, want alert def456", results[0].Result)
			}
			list, ok := results[1].Result.(*generated.ListAlertsResponse)
			if !ok || len(list.Alerts) != 1 || list.Alerts[0].AlertID != "ghi789" {
				t.Errorf("results[1] = %#v, want one-alert page starting at ghi789", results[1].Result)
			}
			fb, ok := results[2].Result.(*generated.AlertFeedback)
			if !ok || fb.AlertID != "abc123" || fb.Type != generated.AlertFeedbackTypeNotUseful {
				t.Errorf("results[2] = %#v, want feedback on abc123", results[2].Result)
			}

			wantOps := []string{generated.OpGetAlert, generated.OpListAlerts, generated.OpCreateAlertFeedback}
			for i, r := range results {
				if r.Operation != wantOps[i] {
					t.Errorf("results[%d].Operation = %q, want %q", i, r.Operation, wantOps[i])
				}
			}
			if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
				t.Errorf("callback order = %v, want [0 1 2]", order)
			}
			for i := range callbackResults {
				if callbackResults[i] != results[i].Result {
					t.Errorf("callback %d got a different result than Flush returned", i)
				}
			}
		})
	}
}

func TestBatch_WireFormat(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv, WithAPIKey("k1"), WithQuotaUser("team-a"))

	b := c.NewBatch()
	queueMixed(t, c, b, func(int) Callback { return nil })
	if _, err := b.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	reqs := srv.Requests()
	if len(reqs) != 4 {
		t.Fatalf("server saw %d requests, want 1 batch + 3 inner", len(reqs))
	}

	outer := reqs[0]
	if outer.InBatch || outer.Method != http.MethodPost || outer.Path != "/batch" {
		t.Errorf("outer request = %s %s (inBatch %v)", outer.Method, outer.Path, outer.InBatch)
	}
	if !strings.HasPrefix(outer.Header.Get("Content-Type"), "multipart/mixed; boundary=") {
		t.Errorf("outer Content-Type = %q", outer.Header.Get("Content-Type"))
	}
	if !strings.Contains(string(outer.Body), "Content-Id: <"+b.ID()+"+1>") {
		t.Errorf("batch body lacks Content-ID for part 1:\n%s", outer.Body)
	}

	want := []struct {
		method, path, query string
	}{
		{http.MethodGet, "/v1beta1/alerts/def456", "quotaUser=team-a&key=k1"},
		{http.MethodGet, "/v1beta1/alerts", "pageSize=1&quotaUser=team-a&key=k1"},
		{http.MethodPost, "/v1beta1/alerts/abc123/feedback", "quotaUser=team-a&key=k1"},
	}
	for i, w := range want {
		got := reqs[i+1]
		if !got.InBatch || got.Method != w.method || got.Path != w.path || got.RawQuery != w.query {
			t.Errorf("inner %d = %s %s?%s (inBatch %v), want %s %s?%s",
				i, got.Method, got.Path, got.RawQuery, got.InBatch, w.method, w.path, w.query)
		}
	}
	if !strings.Contains(string(reqs[3].Body), `"type":"NOT_USEFUL"`) {
		t.Errorf("feedback body = %q", reqs[3].Body)
	}
}

func TestBatch_PerCommandErrors(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv)

	b := c.NewBatch()
	okCmd, _ := c.GetAlertCommand("abc123", nil)
	missingCmd, _ := c.GetAlertCommand("nope", nil)
	b.Queue(okCmd, nil)
	b.Queue(missingCmd, nil)

	results, err := b.Flush(context.Background())
	if err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if results[0].Err != nil {
		t.Errorf("results[0].Err = %v", results[0].Err)
	}
	var ce *core.ClientError
	if !errors.As(results[1].Err, &ce) || ce.StatusCode != http.StatusNotFound {
		t.Errorf("results[1].Err = %v, want 404 ClientError", results[1].Err)
	}
}

func TestBatch_OuterFailureReachesEveryCallback(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv, WithMaxRetries(0))
	srv.FailNext(http.StatusBadGateway)

	b := c.NewBatch()
	var callbackErrs []error
	queueMixed(t, c, b, func(int) Callback {
		return func(_ any, err error) { callbackErrs = append(callbackErrs, err) }
	})

	_, err := b.Flush(context.Background())
	var se *core.ServerError
	if !errors.As(err, &se) {
		t.Fatalf("Flush() error = %v, want ServerError", err)
	}
	if len(callbackErrs) != 3 {
		t.Fatalf("%d callbacks invoked, want 3", len(callbackErrs))
	}
	for i, cbErr := range callbackErrs {
		if !errors.As(cbErr, &se) {
			t.Errorf("callback %d error = %v, want ServerError", i, cbErr)
		}
	}
}

func TestBatch_RetriesOuterRequest(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv)
	srv.FailNext(http.StatusServiceUnavailable)

	b := c.NewBatch()
	cmd, _ := c.GetAlertCommand("abc123", nil)
	b.Queue(cmd, nil)

	results, err := b.Flush(context.Background())
	if err != nil || results[0].Err != nil {
		t.Fatalf("Flush() = %v, %v", err, results[0].Err)
	}
}

func TestBatch_DiscardSendsNothing(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv)

	b := c.NewBatch()
	called := false
	queueMixed(t, c, b, func(int) Callback {
		return func(any, error) { called = true }
	})
	b.Discard()

	if b.Len() != 0 {
		t.Errorf("Len() after Discard() = %d", b.Len())
	}
	results, err := b.Flush(context.Background())
	if err != nil || results != nil {
		t.Errorf("Flush() after Discard() = %v, %v; want nothing", results, err)
	}
	if called {
		t.Error("callback invoked for discarded command")
	}
	if n := len(srv.Requests()); n != 0 {
		t.Errorf("%d requests sent, want 0", n)
	}
}

func TestBatch_Lifecycle(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv)

	b := c.NewBatch()
	cmd, _ := c.GetAlertCommand("abc123", nil)
	if err := b.Queue(cmd, nil); err != nil {
		t.Fatalf("Queue() error = %v", err)
	}

	var unsupported *core.UnsupportedOperationError
	if err := b.Queue(cmd, nil); !errors.As(err, &unsupported) {
		t.Errorf("re-queueing a consumed command: error = %v", err)
	}
	if _, err := c.Execute(context.Background(), cmd); !errors.As(err, &unsupported) {
		t.Errorf("executing a queued command: error = %v", err)
	}

	if _, err := b.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if _, err := b.Flush(context.Background()); !errors.As(err, &unsupported) {
		t.Errorf("second Flush() error = %v", err)
	}
	next, _ := c.GetAlertCommand("abc123", nil)
	if err := b.Queue(next, nil); !errors.As(err, &unsupported) {
		t.Errorf("Queue() after Flush() error = %v", err)
	}
}

func TestBatch_QueueValidates(t *testing.T) {
	c, _ := New()
	b := c.NewBatch()

	cmd, err := c.CreateAlertFeedbackCommand("abc123", &generated.AlertFeedback{}, nil)
	if err != nil {
		t.Fatalf("CreateAlertFeedbackCommand() error = %v", err)
	}
	var invalid *core.InvalidParameterError
	if err := b.Queue(cmd, nil); !errors.As(err, &invalid) {
		t.Errorf("Queue() error = %v, want InvalidParameterError", err)
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d, want 0", b.Len())
	}
}

func TestBatch_MaxSize(t *testing.T) {
	c, _ := New()
	b := c.NewBatch()

	for i := 0; i < MaxBatchSize; i++ {
		cmd, _ := c.ListAlertsCommand(nil)
		if err := b.Queue(cmd, nil); err != nil {
			t.Fatalf("Queue(%d) error = %v", i, err)
		}
	}
	cmd, _ := c.ListAlertsCommand(nil)
	var unsupported *core.UnsupportedOperationError
	if err := b.Queue(cmd, nil); !errors.As(err, &unsupported) {
		t.Errorf("Queue() past the limit: error = %v", err)
	}
}

func TestPartIndex(t *testing.T) {
	b := &Batch{id: "1234-abcd"}

	tests := []struct {
		contentID string
		want      int
		ok        bool
	}{
		{"<response-1234-abcd+1>", 0, true},
		{"<response-1234-abcd+3>", 2, true},
		{"<1234-abcd+2>", 1, true},
		{"<response-other+1>", 0, false},
		{"<response-1234-abcd+0>", 0, false},
		{"<response-1234-abcd+x>", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := b.partIndex(tt.contentID)
		if got != tt.want || ok != tt.ok {
			t.Errorf("partIndex(%q) = %d, %v; want %d, %v", tt.contentID, got, ok, tt.want, tt.ok)
		}
	}
}
