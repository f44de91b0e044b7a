package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copysmith/internal/llmclient"
)

type countingClient struct {
	calls   int
	failN   int // fail the first N calls
	err     error
	resp    json.RawMessage
	prompts []string
}

func (c *countingClient) Name() string { return "counting" }
func (c *countingClient) Close() error { return nil }

func (c *countingClient) Generate(ctx context.Context, prompt string) (json.RawMessage, error) {
	c.calls++
	c.prompts = append(c.prompts, prompt)
	if c.calls <= c.failN {
		return nil, c.err
	}
	if c.resp == nil {
		return json.RawMessage(`{"output":"ok"}`), nil
	}
	return c.resp, nil
}

func TestWrapOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next Client) Client {
			return clientFunc(func(ctx context.Context, prompt string) (json.RawMessage, error) {
				order = append(order, name)
				return next.Generate(ctx, prompt)
			})
		}
	}
	inner := &countingClient{}
	c := Wrap(inner, mark("outer"), mark("inner"))
	_, err := c.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

type clientFunc func(ctx context.Context, prompt string) (json.RawMessage, error)

func (f clientFunc) Name() string { return "func" }
func (f clientFunc) Close() error { return nil }
func (f clientFunc) Generate(ctx context.Context, prompt string) (json.RawMessage, error) {
	return f(ctx, prompt)
}

func TestRetryEventuallySucceeds(t *testing.T) {
	inner := &countingClient{failN: 2, err: errors.New("transient")}
	c := Wrap(inner, Retry(3, time.Millisecond))

	raw, err := c.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.JSONEq(t, `{"output":"ok"}`, string(raw))
	assert.Equal(t, 3, inner.calls)
}

func TestRetryExhausts(t *testing.T) {
	inner := &countingClient{failN: 10, err: errors.New("transient")}
	c := Wrap(inner, Retry(3, time.Millisecond))

	_, err := c.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	inner := &countingClient{failN: 10, err: llmclient.NewPermanentError(errors.New("bad key"))}
	c := Wrap(inner, Retry(3, time.Millisecond))

	_, err := c.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls, "permanent errors must not retry")
}

func TestRetryStopsOnCanceledContext(t *testing.T) {
	inner := &countingClient{failN: 10, err: errors.New("transient")}
	c := Wrap(inner, Retry(5, time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Generate(ctx, "p")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, inner.calls)
}

type recordingHook struct {
	before []string
	after  []string
	errs   []error
}

func (h *recordingHook) Before(ctx context.Context, phase, prompt string) {
	h.before = append(h.before, phase)
}

func (h *recordingHook) After(ctx context.Context, phase string, raw json.RawMessage, err error) {
	h.after = append(h.after, phase)
	h.errs = append(h.errs, err)
}

func TestWithHooksObservesCalls(t *testing.T) {
	inner := &countingClient{}
	c := Wrap(inner, WithHooks())

	hook := &recordingHook{}
	ctx := WithHook(WithPhase(context.Background(), "generate"), hook)
	_, err := c.Generate(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, []string{"generate"}, hook.before)
	assert.Equal(t, []string{"generate"}, hook.after)
	assert.Nil(t, hook.errs[0])
}

func TestWithHooksNoHookIsNoop(t *testing.T) {
	inner := &countingClient{}
	c := Wrap(inner, WithHooks())
	_, err := c.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestPhaseFromDefault(t *testing.T) {
	assert.Equal(t, "unknown", PhaseFrom(context.Background()))
	assert.Equal(t, "generate", PhaseFrom(WithPhase(context.Background(), "generate")))
}

func TestFakeClientShapes(t *testing.T) {
	f := NewFakeClient()
	raw, err := f.Generate(context.Background(), "p")
	require.NoError(t, err)
	var body map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.NotEmpty(t, body["output"])
}
