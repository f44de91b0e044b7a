// Package telemetry reports pipeline outcomes to an external collector.
// Delivery is best-effort: bounded attempts, bounded time, and no error ever
// reaches the caller.
package telemetry

import (
	"time"

	"github.com/google/uuid"
)

// Phase tags where in the pipeline the event was created.
type Phase string

const (
	PhaseRequest Phase = "request"
	PhaseSuccess Phase = "success"
	PhaseFailure Phase = "failure"
)

// Event is one pipeline outcome. Created at pipeline boundaries, owned by the
// sink once dispatched.
type Event struct {
	Phase         Phase          `json:"phase"`
	Level         string         `json:"level"`
	Route         string         `json:"route"`
	Message       string         `json:"message"`
	Duration      time.Duration  `json:"duration"`
	CorrelationID string         `json:"correlation_id"`
	Mode          string         `json:"mode"`
	Model         string         `json:"model"`
	InputSig      string         `json:"input_sig"`
	OutputLen     int            `json:"output_len"`
	Meta          map[string]any `json:"meta,omitempty"`
}

func (e *Event) fillDefaults() {
	if e.Level == "" {
		switch e.Phase {
		case PhaseFailure:
			e.Level = "error"
		default:
			e.Level = "info"
		}
	}
	if e.CorrelationID == "" {
		e.CorrelationID = uuid.NewString()
	}
}

// payload is the collector wire format.
type payload struct {
	TS         int64          `json:"ts"`
	App        string         `json:"app"`
	Env        string         `json:"env"`
	Kind       string         `json:"kind"`
	Mode       string         `json:"mode"`
	Model      string         `json:"model"`
	DurationMS int64          `json:"durationMs"`
	InputSig   string         `json:"inputSig"`
	OutputLen  int            `json:"outputLen"`
	Meta       map[string]any `json:"meta,omitempty"`
}

func toPayload(e Event, app, env string, now time.Time) payload {
	meta := map[string]any{
		"level":         e.Level,
		"route":         e.Route,
		"message":       e.Message,
		"correlationId": e.CorrelationID,
	}
	for k, v := range e.Meta {
		meta[k] = v
	}
	return payload{
		TS:         now.UnixMilli(),
		App:        app,
		Env:        env,
		Kind:       string(e.Phase),
		Mode:       e.Mode,
		Model:      e.Model,
		DurationMS: e.Duration.Milliseconds(),
		InputSig:   e.InputSig,
		OutputLen:  e.OutputLen,
		Meta:       meta,
	}
}
