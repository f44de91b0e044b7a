package llm

import (
	"context"
	"encoding/json"
)

// CallHook observes provider calls. Implementations must not panic; they run
// inline on the request path.
type CallHook interface {
	Before(ctx context.Context, phase, prompt string)
	After(ctx context.Context, phase string, raw json.RawMessage, err error)
}

type ctxKeyHook struct{}
type ctxKeyPhase struct{}

// WithHook stores a CallHook in the context for WithHooks middleware to find.
func WithHook(ctx context.Context, hook CallHook) context.Context {
	return context.WithValue(ctx, ctxKeyHook{}, hook)
}

// HookFrom returns the hook stored in the context, or nil.
func HookFrom(ctx context.Context) CallHook {
	if v := ctx.Value(ctxKeyHook{}); v != nil {
		if h, ok := v.(CallHook); ok {
			return h
		}
	}
	return nil
}

// WithPhase tags the context with a pipeline phase label for logging and hooks.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, ctxKeyPhase{}, phase)
}

// PhaseFrom returns the phase string stored in the context.
func PhaseFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyPhase{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}
