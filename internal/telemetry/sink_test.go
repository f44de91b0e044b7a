package telemetry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
	return ctx.Err()
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeDoer struct {
	mu       sync.Mutex
	statuses []int
	err      error
	calls    int
	requests []*http.Request
	onDo     func()
}

func (d *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	d.requests = append(d.requests, req)
	if d.onDo != nil {
		d.onDo()
	}
	if d.err != nil {
		return nil, d.err
	}
	status := d.statuses[len(d.statuses)-1]
	if d.calls <= len(d.statuses) {
		status = d.statuses[d.calls-1]
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader("")),
	}, nil
}

func (d *fakeDoer) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func testConfig() Config {
	return Config{
		Endpoint:       "https://collector.example/v1/events",
		Token:          "secret",
		App:            "copysmith",
		Env:            "test",
		MaxAttempts:    3,
		MinDelay:       100 * time.Millisecond,
		MaxDelay:       1 * time.Second,
		JitterRatio:    0.2,
		Deadline:       10 * time.Second,
		AttemptTimeout: time.Second,
	}
}

func newTestSink(doer *fakeDoer, clock *fakeClock, cfg Config) *Sink {
	return New(cfg,
		WithDoer(doer),
		WithClock(clock),
		WithRand(func() float64 { return 0.5 }), // jitter factor 1.0
	)
}

func TestDeliverSuccess(t *testing.T) {
	doer := &fakeDoer{statuses: []int{http.StatusAccepted}}
	s := newTestSink(doer, newFakeClock(), testConfig())

	s.deliver(context.Background(), Event{Phase: PhaseSuccess, Route: "generate"})
	assert.Equal(t, 1, doer.callCount())
}

func TestDeliverSendsBearerToken(t *testing.T) {
	doer := &fakeDoer{statuses: []int{http.StatusNoContent}}
	s := newTestSink(doer, newFakeClock(), testConfig())

	s.deliver(context.Background(), Event{Phase: PhaseRequest, Route: "generate"})
	require.Len(t, doer.requests, 1)
	assert.Equal(t, "Bearer secret", doer.requests[0].Header.Get("Authorization"))
	assert.Equal(t, "application/json", doer.requests[0].Header.Get("Content-Type"))
}

func TestDeliverUnauthorizedNeverRetries(t *testing.T) {
	doer := &fakeDoer{statuses: []int{http.StatusUnauthorized}}
	clock := newFakeClock()
	s := newTestSink(doer, clock, testConfig())

	s.deliver(context.Background(), Event{Phase: PhaseFailure, Route: "generate", Message: "x"})
	assert.Equal(t, 1, doer.callCount())
	assert.Empty(t, clock.slept)
}

func TestDeliverUnexpectedStatusIsTerminal(t *testing.T) {
	doer := &fakeDoer{statuses: []int{http.StatusNotFound}}
	s := newTestSink(doer, newFakeClock(), testConfig())

	s.deliver(context.Background(), Event{Phase: PhaseRequest, Route: "generate"})
	assert.Equal(t, 1, doer.callCount())
}

func TestDeliverRetriesServerErrorWithBackoffSchedule(t *testing.T) {
	doer := &fakeDoer{statuses: []int{http.StatusInternalServerError}}
	clock := newFakeClock()
	s := newTestSink(doer, clock, testConfig())

	s.deliver(context.Background(), Event{Phase: PhaseFailure, Route: "generate", Message: "x"})

	assert.Equal(t, 3, doer.callCount(), "attempt budget is 3")
	// With a fixed midpoint jitter the schedule is exact: 100ms then 200ms.
	require.Len(t, clock.slept, 2)
	assert.Equal(t, 100*time.Millisecond, clock.slept[0])
	assert.Equal(t, 200*time.Millisecond, clock.slept[1])
}

func TestDeliverRecoversMidSequence(t *testing.T) {
	doer := &fakeDoer{statuses: []int{http.StatusTooManyRequests, http.StatusAccepted}}
	clock := newFakeClock()
	s := newTestSink(doer, clock, testConfig())

	s.deliver(context.Background(), Event{Phase: PhaseSuccess, Route: "generate"})
	assert.Equal(t, 2, doer.callCount())
	assert.Len(t, clock.slept, 1)
}

func TestDeliverTransportErrorIsTransient(t *testing.T) {
	doer := &fakeDoer{err: errors.New("connection refused")}
	s := newTestSink(doer, newFakeClock(), testConfig())

	s.deliver(context.Background(), Event{Phase: PhaseFailure, Route: "generate", Message: "x"})
	assert.Equal(t, 3, doer.callCount())
}

func TestDeliverStopsWhenDeadlineExhausted(t *testing.T) {
	cfg := testConfig()
	cfg.Deadline = 50 * time.Millisecond
	clock := newFakeClock()
	doer := &fakeDoer{statuses: []int{http.StatusInternalServerError}}
	// Each network call burns more than the whole deadline.
	doer.onDo = func() { clock.advance(100 * time.Millisecond) }
	s := newTestSink(doer, clock, cfg)

	s.deliver(context.Background(), Event{Phase: PhaseFailure, Route: "generate", Message: "x"})
	assert.Equal(t, 1, doer.callCount(), "no attempt may start past the deadline")
	assert.Empty(t, clock.slept)
}

func TestDeliverSkipsBackoffThatOvershootsDeadline(t *testing.T) {
	cfg := testConfig()
	cfg.Deadline = 150 * time.Millisecond
	clock := newFakeClock()
	doer := &fakeDoer{statuses: []int{http.StatusInternalServerError}}
	s := newTestSink(doer, clock, cfg)

	s.deliver(context.Background(), Event{Phase: PhaseFailure, Route: "generate", Message: "x"})

	// First backoff (100ms) fits the deadline; the second (200ms) would end
	// past it, so the third attempt never starts.
	assert.Equal(t, 2, doer.callCount())
	assert.Equal(t, []time.Duration{100 * time.Millisecond}, clock.slept)
}

func TestDeliverDeadlineCoversAttemptTime(t *testing.T) {
	cfg := testConfig()
	cfg.Deadline = 150 * time.Millisecond
	clock := newFakeClock()
	doer := &fakeDoer{statuses: []int{http.StatusInternalServerError}}
	// Each network call burns 100ms of wall clock.
	doer.onDo = func() { clock.advance(100 * time.Millisecond) }
	s := newTestSink(doer, clock, cfg)

	s.deliver(context.Background(), Event{Phase: PhaseFailure, Route: "generate", Message: "x"})

	// After the first attempt 100ms have elapsed; sleeping another 100ms
	// would cross 150ms, so the sequence stops at one attempt.
	assert.Equal(t, 1, doer.callCount())
	assert.Empty(t, clock.slept)
}

func TestBackoffCapsAtMaxDelay(t *testing.T) {
	cfg := testConfig()
	cfg.MinDelay = 400 * time.Millisecond
	cfg.MaxDelay = time.Second
	s := newTestSink(&fakeDoer{statuses: []int{http.StatusOK}}, newFakeClock(), cfg)

	assert.Equal(t, 400*time.Millisecond, s.backoff(1))
	assert.Equal(t, 800*time.Millisecond, s.backoff(2))
	assert.Equal(t, time.Second, s.backoff(3))
	assert.Equal(t, time.Second, s.backoff(10))
}

func TestBackoffJitterBounds(t *testing.T) {
	cfg := testConfig()
	low := New(cfg, WithRand(func() float64 { return 0 }))
	high := New(cfg, WithRand(func() float64 { return 1 }))

	assert.Equal(t, 80*time.Millisecond, low.backoff(1))
	assert.Equal(t, 120*time.Millisecond, high.backoff(1))
}

func TestSendDisabledSinkIsNoop(t *testing.T) {
	doer := &fakeDoer{statuses: []int{http.StatusAccepted}}
	s := New(Config{}, WithDoer(doer)) // no endpoint, no token

	assert.False(t, s.Enabled())
	s.Send(Event{Phase: PhaseRequest, Route: "generate"})
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, doer.callCount())
}

func TestSendFillsDefaults(t *testing.T) {
	e := Event{Phase: PhaseFailure}
	e.fillDefaults()
	assert.Equal(t, "error", e.Level)
	assert.NotEmpty(t, e.CorrelationID)

	e = Event{Phase: PhaseRequest}
	e.fillDefaults()
	assert.Equal(t, "info", e.Level)
}

func TestSuppressRepeatedFailures(t *testing.T) {
	clock := newFakeClock()
	s := newTestSink(&fakeDoer{statuses: []int{http.StatusAccepted}}, clock, testConfig())

	first := Event{Phase: PhaseFailure, Route: "generate", Message: "boom"}
	assert.False(t, s.suppressed(first))
	assert.True(t, s.suppressed(first), "identical failure inside the window")

	// Request events never suppress.
	req := Event{Phase: PhaseRequest, Route: "generate", Message: "boom"}
	assert.False(t, s.suppressed(req))
	assert.False(t, s.suppressed(req))

	// The window reopens after it elapses.
	clock.advance(2 * time.Minute)
	assert.False(t, s.suppressed(first))
}

func TestPayloadShape(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	e := Event{
		Phase:         PhaseSuccess,
		Level:         "info",
		Route:         "generate",
		Message:       "done",
		Duration:      1500 * time.Millisecond,
		CorrelationID: "abc",
		Mode:          "product_card",
		Model:         "FakeProvider",
		InputSig:      "deadbeef",
		OutputLen:     42,
		Meta:          map[string]any{"extra": true},
	}
	p := toPayload(e, "copysmith", "test", now)
	assert.Equal(t, now.UnixMilli(), p.TS)
	assert.Equal(t, "copysmith", p.App)
	assert.Equal(t, "test", p.Env)
	assert.Equal(t, "success", p.Kind)
	assert.Equal(t, "product_card", p.Mode)
	assert.Equal(t, "FakeProvider", p.Model)
	assert.EqualValues(t, 1500, p.DurationMS)
	assert.Equal(t, "deadbeef", p.InputSig)
	assert.Equal(t, 42, p.OutputLen)
	assert.Equal(t, true, p.Meta["extra"])
	assert.Equal(t, "abc", p.Meta["correlationId"])
}
