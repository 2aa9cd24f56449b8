// Package fakeserver is an in-process Alert Center emulator for tests.
//
// It serves the five alert operations and the multipart batch endpoint
// from memory, records every request it receives (including the requests
// inside a batch), and can be told to fail upcoming requests.
package fakeserver

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"

	"github.com/DrewBradfordXYZ/alertcenter-go/generated"
)

var (
	validate      = validator.New()
	schemaDecoder = schema.NewDecoder()
)

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
}

// Wildcard is the alert id that lists feedback across all alerts.
const Wildcard = "-"

// Request is one request as the server saw it.
type Request struct {
	Method string
	// Path is the escaped request path.
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
	// InBatch is true for requests carried inside a batch.
	InBatch bool
}

// Query parses RawQuery.
func (r Request) Query() url.Values {
	v, _ := url.ParseQuery(r.RawQuery)
	return v
}

type queryParams struct {
	CustomerID string `schema:"customerId"`
	Filter     string `schema:"filter"`
	OrderBy    string `schema:"orderBy" validate:"omitempty,oneof=createTime 'createTime asc' 'createTime desc'"`
	PageSize   int    `schema:"pageSize" validate:"gte=0,lte=1000"`
	PageToken  string `schema:"pageToken" validate:"omitempty,number"`
	Fields     string `schema:"fields"`
	QuotaUser  string `schema:"quotaUser" validate:"max=40"`
	Key        string `schema:"key"`
}

type failure struct {
	status     int
	retryAfter string
}

// Server is an in-memory Alert Center.
type Server struct {
	srv    *httptest.Server
	router *mux.Router

	mu              sync.Mutex
	apiKey          string
	alerts          map[string]*generated.Alert
	feedback        []generated.AlertFeedback
	requests        []Request
	failures        []failure
	reverseBatch    bool
	feedbackSeq     int
	now             func() time.Time
	defaultPageSize int
}

// Option configures a Server.
type Option func(*Server)

// WithAPIKey makes the server reject requests whose "key" parameter differs.
func WithAPIKey(key string) Option {
	return func(s *Server) {
		s.apiKey = key
	}
}

// WithAlerts seeds the store.
func WithAlerts(alerts ...generated.Alert) Option {
	return func(s *Server) {
		for _, a := range alerts {
			s.alerts[a.AlertID] = &a
		}
	}
}

// WithClock sets the time source used for created feedback.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New starts a server. Call Close when done.
func New(opts ...Option) *Server {
	s := &Server{
		alerts:          map[string]*generated.Alert{},
		now:             time.Now,
		defaultPageSize: 100,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := mux.NewRouter()
	r.UseEncodedPath()
	r.HandleFunc("/v1beta1/alerts", s.listAlerts).Methods(http.MethodGet)
	r.HandleFunc("/v1beta1/alerts/{alertId}", s.getAlert).Methods(http.MethodGet)
	r.HandleFunc("/v1beta1/alerts/{alertId}", s.deleteAlert).Methods(http.MethodDelete)
	r.HandleFunc("/v1beta1/alerts/{alertId}/feedback", s.createFeedback).Methods(http.MethodPost)
	r.HandleFunc("/v1beta1/alerts/{alertId}/feedback", s.listFeedback).Methods(http.MethodGet)
	r.HandleFunc("/batch", s.batch).Methods(http.MethodPost)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "no route for "+r.URL.EscapedPath())
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, r.Method+" not allowed")
	})
	s.router = r

	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handle(w, r, false)
	}))
	return s
}

// URL returns the base URL, ending in "/".
func (s *Server) URL() string {
	return s.srv.URL + "/"
}

// Client returns an HTTP client for the server.
func (s *Server) Client() *http.Client {
	return s.srv.Client()
}

// Close shuts the server down.
func (s *Server) Close() {
	s.srv.Close()
}

// AddAlert stores or replaces an alert.
func (s *Server) AddAlert(a generated.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[a.AlertID] = &a
}

// Alert returns a stored alert.
func (s *Server) Alert(id string) (generated.Alert, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok {
		return generated.Alert{}, false
	}
	return *a, true
}

// Feedback returns the stored feedback of one alert, newest first.
func (s *Server) Feedback(alertID string) []generated.AlertFeedback {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feedbackFor(alertID)
}

// FailNext makes the next top-level request fail with status. Calls queue.
// A 429 carries "Retry-After: 0".
func (s *Server) FailNext(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := failure{status: status}
	if status == http.StatusTooManyRequests {
		f.retryAfter = "0"
	}
	s.failures = append(s.failures, f)
}

// ReverseBatchResponses makes the batch endpoint answer parts in reverse order.
func (s *Server) ReverseBatchResponses(reverse bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reverseBatch = reverse
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// ResetRequests forgets recorded requests.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request, inBatch bool) {
	var body []byte
	if r.Body != nil {
		body, _ = io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:   r.Method,
		Path:     r.URL.EscapedPath(),
		RawQuery: r.URL.RawQuery,
		Header:   r.Header.Clone(),
		Body:     body,
		InBatch:  inBatch,
	})
	var fail *failure
	if !inBatch && len(s.failures) > 0 {
		fail = &s.failures[0]
		s.failures = s.failures[1:]
	}
	apiKey := s.apiKey
	s.mu.Unlock()

	if fail != nil {
		if fail.retryAfter != "" {
			w.Header().Set("Retry-After", fail.retryAfter)
		}
		writeError(w, fail.status, "injected failure")
		return
	}
	if apiKey != "" && r.URL.Query().Get("key") != apiKey {
		writeError(w, http.StatusUnauthorized, "API key not valid")
		return
	}
	if inBatch && r.URL.Path == "/batch" {
		writeError(w, http.StatusBadRequest, "nested batch")
		return
	}
	s.router.ServeHTTP(w, r)
}

func (s *Server) query(w http.ResponseWriter, r *http.Request) (queryParams, bool) {
	var q queryParams
	if err := schemaDecoder.Decode(&q, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return q, false
	}
	if err := validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return q, false
	}
	return q, true
}

func alertID(r *http.Request) string {
	raw := mux.Vars(r)["alertId"]
	id, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return id
}

func (s *Server) getAlert(w http.ResponseWriter, r *http.Request) {
	q, ok := s.query(w, r)
	if !ok {
		return
	}
	id := alertID(r)

	s.mu.Lock()
	a, found := s.alerts[id]
	var out generated.Alert
	if found {
		out = *a
	}
	s.mu.Unlock()

	if !found || !customerMatches(q.CustomerID, out.CustomerID) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("alert %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteAlert(w http.ResponseWriter, r *http.Request) {
	q, ok := s.query(w, r)
	if !ok {
		return
	}
	id := alertID(r)

	s.mu.Lock()
	a, found := s.alerts[id]
	if found && customerMatches(q.CustomerID, a.CustomerID) {
		a.Deleted = true
	}
	s.mu.Unlock()

	if !found || !customerMatches(q.CustomerID, a.CustomerID) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("alert %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, generated.Empty{})
}

func (s *Server) listAlerts(w http.ResponseWriter, r *http.Request) {
	q, ok := s.query(w, r)
	if !ok {
		return
	}
	typeFilter, err := parseTypeFilter(q.Filter)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	alerts := make([]generated.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if a.Deleted || !customerMatches(q.CustomerID, a.CustomerID) {
			continue
		}
		if typeFilter != "" && a.Type != typeFilter {
			continue
		}
		alerts = append(alerts, *a)
	}
	defaultSize := s.defaultPageSize
	s.mu.Unlock()

	asc := q.OrderBy == "createTime asc" || q.OrderBy == "createTime"
	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].CreateTime == alerts[j].CreateTime {
			return alerts[i].AlertID < alerts[j].AlertID
		}
		if asc {
			return alerts[i].CreateTime < alerts[j].CreateTime
		}
		return alerts[i].CreateTime > alerts[j].CreateTime
	})

	offset := 0
	if q.PageToken != "" {
		offset, _ = strconv.Atoi(q.PageToken)
	}
	size := q.PageSize
	if size == 0 {
		size = defaultSize
	}

	resp := generated.ListAlertsResponse{}
	if offset < len(alerts) {
		end := min(offset+size, len(alerts))
		resp.Alerts = alerts[offset:end]
		if end < len(alerts) {
			resp.NextPageToken = strconv.Itoa(end)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) createFeedback(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.query(w, r); !ok {
		return
	}
	id := alertID(r)
	if id == Wildcard {
		writeError(w, http.StatusBadRequest, "feedback requires a specific alert")
		return
	}

	var fb generated.AlertFeedback
	if err := json.NewDecoder(r.Body).Decode(&fb); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := validate.Struct(fb); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	a, found := s.alerts[id]
	if found {
		s.feedbackSeq++
		fb.FeedbackID = "fb-" + strconv.Itoa(s.feedbackSeq)
		fb.AlertID = id
		fb.CustomerID = a.CustomerID
		fb.Email = "analyst@example.com"
		fb.CreateTime = s.now().UTC().Format(time.RFC3339Nano)
		s.feedback = append(s.feedback, fb)
	}
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("alert %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, fb)
}

func (s *Server) listFeedback(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.query(w, r); !ok {
		return
	}
	id := alertID(r)

	s.mu.Lock()
	_, found := s.alerts[id]
	items := s.feedbackFor(id)
	s.mu.Unlock()

	if id != Wildcard && !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("alert %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, generated.ListAlertFeedbackResponse{Feedback: items})
}

// feedbackFor returns feedback newest first. Caller holds s.mu.
func (s *Server) feedbackFor(alertID string) []generated.AlertFeedback {
	var out []generated.AlertFeedback
	for i := len(s.feedback) - 1; i >= 0; i-- {
		if alertID == Wildcard || s.feedback[i].AlertID == alertID {
			out = append(out, s.feedback[i])
		}
	}
	return out
}

func (s *Server) batch(w http.ResponseWriter, r *http.Request) {
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/mixed" {
		writeError(w, http.StatusBadRequest, "batch requires multipart/mixed")
		return
	}

	type answer struct {
		contentID string
		rec       *httptest.ResponseRecorder
	}
	var answers []answer

	reader := multipart.NewReader(r.Body, params["boundary"])
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if part.Header.Get("Content-Type") != "application/http" {
			writeError(w, http.StatusBadRequest, "batch part must be application/http")
			return
		}
		inner, err := http.ReadRequest(bufio.NewReader(part))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		rec := httptest.NewRecorder()
		s.handle(rec, inner, true)
		answers = append(answers, answer{contentID: part.Header.Get("Content-ID"), rec: rec})
	}

	s.mu.Lock()
	reverse := s.reverseBatch
	s.mu.Unlock()
	if reverse {
		for i, j := 0, len(answers)-1; i < j; i, j = i+1, j-1 {
			answers[i], answers[j] = answers[j], answers[i]
		}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, a := range answers {
		header := textproto.MIMEHeader{}
		header.Set("Content-Type", "application/http")
		if a.contentID != "" {
			header.Set("Content-ID", "<response-"+strings.Trim(a.contentID, "<>")+">")
		}
		pw, _ := mw.CreatePart(header)
		res := a.rec.Result()
		fmt.Fprintf(pw, "HTTP/1.1 %d %s\r\n", res.StatusCode, http.StatusText(res.StatusCode))
		fmt.Fprintf(pw, "Content-Type: %s\r\n", res.Header.Get("Content-Type"))
		fmt.Fprintf(pw, "Content-Length: %d\r\n\r\n", a.rec.Body.Len())
		pw.Write(a.rec.Body.Bytes())
	}
	mw.Close()

	w.Header().Set("Content-Type", "multipart/mixed; boundary="+mw.Boundary())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// parseTypeFilter understands `type = "X"` and nothing else.
func parseTypeFilter(filter string) (string, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return "", nil
	}
	field, value, ok := strings.Cut(filter, "=")
	if !ok || strings.TrimSpace(field) != "type" {
		return "", fmt.Errorf("unsupported filter %q", filter)
	}
	value = strings.TrimSpace(value)
	unquoted, err := strconv.Unquote(value)
	if err != nil {
		return "", fmt.Errorf("unsupported filter %q", filter)
	}
	return unquoted, nil
}

func customerMatches(requested, actual string) bool {
	return requested == "" || requested == actual
}

type errorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	var body errorBody
	body.Error.Code = status
	body.Error.Message = message
	body.Error.Status = strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
