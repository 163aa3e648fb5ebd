// Package diagnostics implements the crash-reporting sidecar: a stable
// per-install user id plus an append-only queue of pending Sentry reports
// persisted to disk, so a report captured during a crash (when no network
// round-trip can complete in time) survives to the next startup and is
// retried then.
package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"github.com/navigraph/navdata-interface/internal/httpc"
)

// PendingReport is one queued, not-yet-delivered event: the ingest URL, the
// auth header Sentry's protocol requires alongside it, and the event body,
// plus the event's own id so a redrive can be correlated back to the
// original capture.
type PendingReport struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	AuthHeader string `json:"auth_header"`
	Body       string `json:"data"`
}

// persistentState is the ng_sentry.json shape.
type persistentState struct {
	UserID  string          `json:"user_id"`
	Reports []PendingReport `json:"reports"`
}

// Sink owns the persisted report queue and implements sentry.Transport, so
// the sentry-go SDK can be pointed at it directly: every event the SDK
// wants to send is appended to the queue and flushed to disk rather than
// dispatched over a connection a crash could sever mid-flight. Drain
// retries the queue against a real HTTP client, normally once at startup.
type Sink struct {
	mu    sync.Mutex
	path  string
	state persistentState
	http  httpc.Client
	dsn   *sentry.Dsn
}

// Load reads path (seeding a fresh state with a new random user id if it
// doesn't exist yet) and returns a Sink ready to accept events.
func Load(path string, client httpc.Client) (*Sink, error) {
	s := &Sink{path: path, http: client}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.state = persistentState{UserID: uuid.NewString()}
		return s, s.flushLocked()
	}
	if err != nil {
		return nil, fmt.Errorf("read diagnostic state: %w", err)
	}

	if err := json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("parse diagnostic state: %w", err)
	}
	if s.state.UserID == "" {
		s.state.UserID = uuid.NewString()
	}
	return s, nil
}

// UserID is the stable, anonymous identifier tagged on every report.
func (s *Sink) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.UserID
}

// PendingCount reports how many events are still queued for retry.
func (s *Sink) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.Reports)
}

// Configure implements sentry.Transport: it captures the DSN so Drain
// knows the store endpoint to retry against.
func (s *Sink) Configure(options sentry.ClientOptions) {
	dsn, err := sentry.NewDsn(options.Dsn)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.dsn = dsn
	s.mu.Unlock()
}

// SendEvent implements sentry.Transport by enqueueing the event for later
// delivery instead of sending it immediately.
func (s *Sink) SendEvent(event *sentry.Event) {
	body, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var url, authHeader string
	if s.dsn != nil {
		url = s.dsn.GetAPIURL().String()
		authHeader = s.dsn.RequestHeaders()["X-Sentry-Auth"]
	}
	s.state.Reports = append(s.state.Reports, PendingReport{
		ID:         string(event.EventID),
		URL:        url,
		AuthHeader: authHeader,
		Body:       string(body),
	})
	_ = s.flushLocked()
}

// Flush implements sentry.Transport. Draining is driven explicitly by
// Drain rather than a timer, since this library has no background
// goroutine of its own; Flush always reports success immediately.
func (s *Sink) Flush(timeout time.Duration) bool { return true }

// ConfigureScope applies the sink's persisted state to an active sentry scope:
// the stable user id plus addon developer/product tags.
func (s *Sink) ConfigureScope(scope *sentry.Scope, developer, product string) {
	s.mu.Lock()
	userID := s.state.UserID
	s.mu.Unlock()

	scope.SetUser(sentry.User{ID: userID})
	scope.SetTag("developer", developer)
	scope.SetTag("product", product)
}

// Enqueue appends a fully-formed report, for callers (tests, or a future
// non-Sentry diagnostic path) that already have a url/auth-header/body
// triple rather than a sentry.Event.
func (s *Sink) Enqueue(report PendingReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Reports = append(s.state.Reports, report)
	return s.flushLocked()
}

// Drain retries every queued report once, re-issuing the original event
// body under its captured auth header exactly as sentry-go's own HTTP
// transport would; reports that complete (any response at all, matching
// the original's "request reached DataReady" check) are evicted. Reports
// that error are kept for the next Drain.
func (s *Sink) Drain(ctx context.Context) error {
	s.mu.Lock()
	reports := append([]PendingReport{}, s.state.Reports...)
	s.mu.Unlock()

	var remaining []PendingReport
	for _, report := range reports {
		headers := map[string]string{"Content-Type": "application/json"}
		if report.AuthHeader != "" {
			headers["X-Sentry-Auth"] = report.AuthHeader
		}
		if _, err := s.http.Post(ctx, report.URL, headers, []byte(report.Body)); err != nil {
			remaining = append(remaining, report)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Reports = remaining
	return s.flushLocked()
}

func (s *Sink) flushLocked() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal diagnostic state: %w", err)
	}
	return os.WriteFile(s.path, data, 0o644)
}
