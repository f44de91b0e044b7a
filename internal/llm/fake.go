package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// FakeClient returns deterministic canned copy for offline/testing use.
type FakeClient struct {
	// Response, when set, is returned verbatim for every call.
	Response json.RawMessage
	// Err, when set, is returned instead of a response.
	Err error
}

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) Name() string { return "FakeProvider" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Generate(ctx context.Context, prompt string) (json.RawMessage, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if len(f.Response) > 0 {
		return f.Response, nil
	}
	text := fmt.Sprintf("毎日の時間を、もっと心地よく。細部まで考え抜かれた一品です。(phase=%s)", PhaseFrom(ctx))
	b, _ := json.Marshal(map[string]string{"output": text})
	return b, nil
}
