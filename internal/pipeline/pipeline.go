// Package pipeline runs the content-generation stages in fixed order:
// normalize, categorize, merge facts, resolve tone, assemble, call the
// provider, normalize the response, report telemetry.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"copysmith/internal/assemble"
	"copysmith/internal/canonical"
	"copysmith/internal/category"
	"copysmith/internal/facts"
	"copysmith/internal/llm"
	"copysmith/internal/telemetry"
	"copysmith/internal/tone"
)

// Reporter receives pipeline outcome events. telemetry.Sink implements it;
// tests substitute a capture.
type Reporter interface {
	Send(e telemetry.Event)
}

type nopReporter struct{}

func (nopReporter) Send(telemetry.Event) {}

// Options carries the per-request knobs next to the raw input.
type Options struct {
	// Tone is the requested voice identifier; anything unrecognized
	// degrades to the default archetype.
	Tone any
	// Style selects the output template. Empty means "product_card".
	Style string
	// Locale defaults to "ja".
	Locale string
	// Facts are explicit structured product facts.
	Facts []facts.Source
	// Route labels telemetry events. Empty means "generate".
	Route string
	// CorrelationID ties telemetry events to the caller's request.
	CorrelationID string
}

const (
	defaultStyle  = "product_card"
	defaultLocale = "ja"
	defaultRoute  = "generate"
)

// Pipeline is stateless across requests; every invocation builds fresh data.
type Pipeline struct {
	client   llm.Client
	reporter Reporter
	log      *zap.Logger
	weights  category.Weights

	// ProviderTimeout bounds the generation call.
	ProviderTimeout time.Duration
}

func New(client llm.Client, reporter Reporter, log *zap.Logger, weights category.Weights) *Pipeline {
	if reporter == nil {
		reporter = nopReporter{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		client:          client,
		reporter:        reporter,
		log:             log,
		weights:         weights,
		ProviderTimeout: 60 * time.Second,
	}
}

// Run executes the whole pipeline. The returned envelope always carries
// renderable text; only the HTTP layer above produces ok=false envelopes,
// for bodies that claimed to be JSON and were not.
func (p *Pipeline) Run(ctx context.Context, input any, opts Options) assemble.Result {
	start := time.Now()

	in := canonical.Normalize(input)

	toneID := p.resolveTone(opts.Tone, in)
	meta := assemble.Meta{
		Style:  firstNonEmpty(opts.Style, in.Style, defaultStyle),
		Tone:   string(toneID),
		Locale: firstNonEmpty(opts.Locale, defaultLocale),
	}
	route := firstNonEmpty(opts.Route, defaultRoute)

	match := category.Resolve(category.Query{
		Category:    in.Category,
		ProductName: in.ProductName,
		Keywords:    in.Keywords,
	}, p.weights)

	block := facts.Build(facts.ProductContext{Name: in.ProductName}, opts.Facts)

	req := assemble.Request{
		Input:    in,
		Category: match,
		Facts:    block,
		Preset:   tone.Get(toneID),
		Meta:     meta,
	}
	prompt := req.Prompt()
	sig := inputSig(prompt)

	p.reporter.Send(telemetry.Event{
		Phase:         telemetry.PhaseRequest,
		Route:         route,
		Message:       "generation requested",
		CorrelationID: opts.CorrelationID,
		Mode:          meta.Style,
		Model:         p.client.Name(),
		InputSig:      sig,
	})

	callCtx, cancel := context.WithTimeout(ctx, p.ProviderTimeout)
	defer cancel()
	callCtx = llm.WithPhase(callCtx, route)

	// The hook middleware sits inside the retry loop, so stats sees every
	// provider attempt, not just the final outcome.
	stats := &callStats{}
	callCtx = llm.WithHook(callCtx, stats)

	raw, err := p.client.Generate(callCtx, prompt)
	if err != nil {
		p.log.Warn("provider call failed",
			zap.String("route", route),
			zap.Error(err),
		)
	}

	result, found := assemble.NormalizeResponse(raw, meta)
	elapsed := time.Since(start)

	if found {
		p.reporter.Send(telemetry.Event{
			Phase:         telemetry.PhaseSuccess,
			Route:         route,
			Message:       "generation completed",
			Duration:      elapsed,
			CorrelationID: opts.CorrelationID,
			Mode:          meta.Style,
			Model:         p.client.Name(),
			InputSig:      sig,
			OutputLen:     len(result.Output),
			Meta:          stats.meta(),
		})
	} else {
		msg := "provider returned no usable text"
		if err != nil {
			msg = err.Error()
		}
		p.reporter.Send(telemetry.Event{
			Phase:         telemetry.PhaseFailure,
			Route:         route,
			Message:       msg,
			Duration:      elapsed,
			CorrelationID: opts.CorrelationID,
			Mode:          meta.Style,
			Model:         p.client.Name(),
			InputSig:      sig,
			Meta:          stats.meta(),
		})
	}

	return result
}

// callStats is the hook attached to every provider call. With the hook
// middleware wrapped inside the retry middleware it observes each attempt,
// and the per-attempt view ends up in the outcome event's meta.
type callStats struct {
	mu       sync.Mutex
	attempts int
	lastErr  error
}

func (c *callStats) Before(ctx context.Context, phase, prompt string) {
	c.mu.Lock()
	c.attempts++
	c.mu.Unlock()
}

func (c *callStats) After(ctx context.Context, phase string, raw json.RawMessage, err error) {
	c.mu.Lock()
	if err != nil {
		c.lastErr = err
	}
	c.mu.Unlock()
}

func (c *callStats) meta() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attempts == 0 {
		return nil
	}
	m := map[string]any{"providerAttempts": c.attempts}
	if c.lastErr != nil {
		m["providerError"] = c.lastErr.Error()
	}
	return m
}

// resolveTone prefers the explicit option, then the normalized input's tone,
// then its brand voice.
func (p *Pipeline) resolveTone(requested any, in canonical.Input) tone.ID {
	if s, ok := requested.(string); ok && strings.TrimSpace(s) != "" {
		return tone.Normalize(s)
	}
	if requested != nil {
		if _, isString := requested.(string); !isString {
			return tone.Normalize(requested)
		}
	}
	if in.Tone != "" {
		return tone.Normalize(in.Tone)
	}
	return tone.Normalize(in.BrandVoice)
}

// inputSig is a short stable signature of the assembled prompt, sent with
// telemetry instead of the prompt itself.
func inputSig(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:8])
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// DecodeFacts converts a loose JSON fact list into fact sources, tolerating
// missing fields. Used by callers that accept facts as raw JSON.
func DecodeFacts(raw json.RawMessage) []facts.Source {
	if len(raw) == 0 {
		return nil
	}
	var out []facts.Source
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
