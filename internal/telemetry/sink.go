package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Config tunes the sink. An empty Endpoint or Token disables delivery
// entirely; Send becomes a no-op, not an error.
type Config struct {
	Endpoint string
	Token    string
	App      string
	Env      string

	MaxAttempts    int
	MinDelay       time.Duration
	MaxDelay       time.Duration
	JitterRatio    float64
	Deadline       time.Duration // bounds the whole attempt sequence
	AttemptTimeout time.Duration // bounds each network call
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.MinDelay <= 0 {
		c.MinDelay = 200 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 5 * time.Second
	}
	if c.JitterRatio < 0 || c.JitterRatio >= 1 {
		c.JitterRatio = 0.2
	}
	if c.Deadline <= 0 {
		c.Deadline = 15 * time.Second
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = 3 * time.Second
	}
	return c
}

// Doer is the transport seam; *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Sink delivers events with bounded retry. Safe for concurrent use.
type Sink struct {
	cfg   Config
	doer  Doer
	clock Clock
	log   *zap.Logger
	randf func() float64

	// recent suppresses re-sending identical failure events in a short
	// window so a flapping collector doesn't double the noise it reports.
	recent         *lru.Cache[string, time.Time]
	suppressWindow time.Duration
}

// Option configures a Sink.
type Option func(*Sink)

func WithDoer(d Doer) Option          { return func(s *Sink) { s.doer = d } }
func WithClock(c Clock) Option        { return func(s *Sink) { s.clock = c } }
func WithLogger(l *zap.Logger) Option { return func(s *Sink) { s.log = l } }

// WithRand fixes the jitter source; tests pass a deterministic func.
func WithRand(f func() float64) Option { return func(s *Sink) { s.randf = f } }

func New(cfg Config, opts ...Option) *Sink {
	cache, _ := lru.New[string, time.Time](256)
	s := &Sink{
		cfg:            cfg.withDefaults(),
		doer:           &http.Client{},
		clock:          realClock{},
		log:            zap.NewNop(),
		randf:          rand.Float64,
		recent:         cache,
		suppressWindow: time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether delivery is configured at all.
func (s *Sink) Enabled() bool {
	return s.cfg.Endpoint != "" && s.cfg.Token != ""
}

// Send dispatches an event fire-and-forget. It never blocks the caller, never
// panics, and never reports delivery failure upward.
func (s *Sink) Send(e Event) {
	if !s.Enabled() {
		return
	}
	e.fillDefaults()
	if s.suppressed(e) {
		s.log.Debug("telemetry suppressed",
			zap.String("route", e.Route),
			zap.String("kind", string(e.Phase)),
		)
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("telemetry dispatch panic", zap.Any("panic", r))
			}
		}()
		s.deliver(context.Background(), e)
	}()
}

// suppressed reports whether an identical failure event was sent within the
// suppression window. Request/success events always pass.
func (s *Sink) suppressed(e Event) bool {
	if e.Phase != PhaseFailure {
		return false
	}
	key := e.Route + "\x00" + e.Message
	now := s.clock.Now()
	if last, ok := s.recent.Get(key); ok && now.Sub(last) < s.suppressWindow {
		return true
	}
	s.recent.Add(key, now)
	return false
}

type attemptResult int

const (
	attemptSuccess attemptResult = iota
	attemptTransient
	attemptTerminal
)

// deliver runs the bounded attempt sequence: each attempt gets its own
// timeout, transient failures back off exponentially with jitter, and the
// whole sequence stops once the overall deadline has elapsed. All terminal
// outcomes are logged locally and swallowed.
func (s *Sink) deliver(ctx context.Context, e Event) {
	start := s.clock.Now()

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		result, detail := s.attempt(ctx, e)
		switch result {
		case attemptSuccess:
			return
		case attemptTerminal:
			s.log.Warn("telemetry delivery rejected",
				zap.String("route", e.Route),
				zap.Int("attempt", attempt),
				zap.String("detail", detail),
			)
			return
		}

		// Transient: retry if budget and deadline allow. The backoff is
		// counted against the deadline up front so the next attempt never
		// starts past it.
		if attempt == s.cfg.MaxAttempts {
			break
		}
		delay := s.backoff(attempt)
		if s.clock.Now().Sub(start)+delay > s.cfg.Deadline {
			s.log.Warn("telemetry deadline exhausted",
				zap.String("route", e.Route),
				zap.Int("attempts", attempt),
			)
			return
		}
		if err := s.clock.Sleep(ctx, delay); err != nil {
			return
		}
	}

	s.log.Warn("telemetry delivery gave up",
		zap.String("route", e.Route),
		zap.Int("attempts", s.cfg.MaxAttempts),
	)
}

// backoff returns the delay before attempt k+1:
// min(maxDelay, minDelay * 2^(k-1)) with symmetric multiplicative jitter.
func (s *Sink) backoff(k int) time.Duration {
	d := s.cfg.MinDelay << (k - 1)
	if d > s.cfg.MaxDelay || d <= 0 {
		d = s.cfg.MaxDelay
	}
	jitter := 1 + s.cfg.JitterRatio*(2*s.randf()-1)
	return time.Duration(float64(d) * jitter)
}

// attempt issues one POST and classifies the outcome. 202/204 succeed, 401
// is terminal (credential errors are never worth retrying), 429/5xx and
// transport failures are transient, anything else is terminal.
func (s *Sink) attempt(ctx context.Context, e Event) (attemptResult, string) {
	body, err := json.Marshal(toPayload(e, s.cfg.App, s.cfg.Env, s.clock.Now()))
	if err != nil {
		return attemptTerminal, "encode: " + err.Error()
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.AttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return attemptTerminal, "request: " + err.Error()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)

	resp, err := s.doer.Do(req)
	if err != nil {
		return attemptTransient, err.Error()
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusAccepted || resp.StatusCode == http.StatusNoContent:
		return attemptSuccess, ""
	case resp.StatusCode == http.StatusUnauthorized:
		return attemptTerminal, resp.Status
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return attemptTransient, resp.Status
	default:
		return attemptTerminal, resp.Status
	}
}
