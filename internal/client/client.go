package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/alexanderramin/coursepath/internal/domain"
)

// Client provides access to the remote course authority. The authority owns
// the structural graph: every edge mutation and the topological ordering go
// through it.
type Client interface {
	// List returns every course, in no particular order.
	List(ctx context.Context) ([]domain.Course, error)

	// Get returns a single course by id.
	Get(ctx context.Context, id string) (*domain.Course, error)

	// Create submits a new course and returns the authority's copy.
	Create(ctx context.Context, draft domain.CourseDraft) (*domain.Course, error)

	// Update replaces a course's attributes and returns the authority's copy.
	Update(ctx context.Context, id string, draft domain.CourseDraft) (*domain.Course, error)

	// Delete removes a course. Fails with a conflict when dependents exist
	// unless cascade is set, which removes the dependents too.
	Delete(ctx context.Context, id string, cascade bool) error

	// Search returns courses matching query in topological order. An empty
	// query returns the whole catalog, still topologically ordered.
	Search(ctx context.Context, query string) ([]domain.Course, error)

	// TopologicalOrder returns the full catalog in dependency-consistent
	// order, or a conflict error carrying the cycle detail.
	TopologicalOrder(ctx context.Context) ([]domain.Course, error)
}

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
)

// httpClient implements Client against the course service HTTP API.
type httpClient struct {
	base        string
	http        *http.Client
	observer    Observer
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(ctx context.Context, d time.Duration)
}

// Option adjusts the client's retry and observation behavior.
type Option func(*httpClient)

// WithObserver attaches an observer for call telemetry.
func WithObserver(o Observer) Option {
	return func(c *httpClient) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithBaseDelay overrides the backoff base delay.
func WithBaseDelay(d time.Duration) Option {
	return func(c *httpClient) { c.baseDelay = d }
}

// WithSleeper overrides how backoff waits are performed. Tests inject a
// recording sleeper here.
func WithSleeper(sleep func(ctx context.Context, d time.Duration)) Option {
	return func(c *httpClient) { c.sleep = sleep }
}

// New creates a Client that talks to the course service at baseURL.
func New(baseURL string, opts ...Option) Client {
	c := &httpClient{
		base: baseURL,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer:    NoopObserver{},
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
	}
	c.sleep = func(ctx context.Context, d time.Duration) {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
		case <-t.C:
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) List(ctx context.Context) ([]domain.Course, error) {
	var out []domain.Course
	if err := c.call(ctx, "list", http.MethodGet, "/resources", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) Get(ctx context.Context, id string) (*domain.Course, error) {
	var out domain.Course
	if err := c.call(ctx, "get", http.MethodGet, "/resources/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Create(ctx context.Context, draft domain.CourseDraft) (*domain.Course, error) {
	var out domain.Course
	if err := c.call(ctx, "create", http.MethodPost, "/resources", draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Update(ctx context.Context, id string, draft domain.CourseDraft) (*domain.Course, error) {
	var out domain.Course
	if err := c.call(ctx, "update", http.MethodPut, "/resources/"+url.PathEscape(id), draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Delete(ctx context.Context, id string, cascade bool) error {
	path := "/resources/" + url.PathEscape(id)
	if cascade {
		path += "?cascade=true"
	}
	return c.call(ctx, "delete", http.MethodDelete, path, nil, nil)
}

func (c *httpClient) Search(ctx context.Context, query string) ([]domain.Course, error) {
	path := "/resources/sorted"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var out []domain.Course
	if err := c.call(ctx, "search", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) TopologicalOrder(ctx context.Context) ([]domain.Course, error) {
	var out []domain.Course
	if err := c.call(ctx, "topological_order", http.MethodGet, "/resources/sorted", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// call runs one logical operation with the uniform retry policy: up to
// maxAttempts attempts, exponential backoff before each retry, 4xx never
// retried except 429. The last observed error is surfaced unchanged.
func (c *httpClient) call(ctx context.Context, op, method, path string, body, out any) error {
	start := time.Now()

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling %s request: %w", op, err)
		}
		payload = data
	}

	var lastErr error
	attempts := 0
	for i := 0; i < c.maxAttempts; i++ {
		if i > 0 {
			c.sleep(ctx, c.baseDelay<<(i-1))
			if ctx.Err() != nil {
				break
			}
		}
		attempts++
		err := c.doRequest(ctx, op, method, path, payload, out)
		if err == nil {
			c.observer.OnCallComplete(CallEvent{
				Op:        op,
				Status:    http.StatusOK,
				Attempts:  attempts,
				LatencyMs: time.Since(start).Milliseconds(),
			})
			return nil
		}
		lastErr = err

		if remote, ok := err.(*RemoteError); ok && !remote.Retryable() {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	status := 0
	if remote, ok := lastErr.(*RemoteError); ok {
		status = remote.Status
	}
	c.observer.OnCallComplete(CallEvent{
		Op:        op,
		Status:    status,
		Attempts:  attempts,
		LatencyMs: time.Since(start).Milliseconds(),
		Err:       lastErr,
	})
	return lastErr
}

func (c *httpClient) doRequest(ctx context.Context, op, method, path string, payload []byte, out any) error {
	fullURL := c.base + path

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", op, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &ConnectivityError{Op: op, URL: fullURL, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ConnectivityError{Op: op, URL: fullURL, Err: err}
	}

	if resp.StatusCode >= 400 {
		return remoteErrorFromBody(resp.StatusCode, respBody)
	}

	// No content resolves to an empty success, not an error.
	if out == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", op, err)
	}
	return nil
}

// remoteErrorFromBody builds a RemoteError, keeping whatever structured
// fields the authority included so callers can render cycle members and
// affected ids verbatim.
func remoteErrorFromBody(status int, body []byte) *RemoteError {
	rerr := &RemoteError{Status: status, Kind: classifyStatus(status)}
	if len(body) == 0 {
		return rerr
	}

	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		rerr.Message = string(body)
		return rerr
	}
	rerr.Details = parsed

	switch detail := parsed["detail"].(type) {
	case string:
		rerr.Message = detail
	case map[string]any:
		if msg, ok := detail["message"].(string); ok {
			rerr.Message = msg
		}
	}
	if rerr.Message == "" {
		if msg, ok := parsed["message"].(string); ok {
			rerr.Message = msg
		}
	}
	return rerr
}
