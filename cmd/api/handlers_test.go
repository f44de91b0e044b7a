package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"copysmith/internal/assemble"
	"copysmith/internal/category"
	"copysmith/internal/llm"
	"copysmith/internal/pipeline"
)

type promptRecorder struct {
	llm.Client
	prompt string
}

func (p *promptRecorder) Generate(ctx context.Context, prompt string) (json.RawMessage, error) {
	p.prompt = prompt
	return p.Client.Generate(ctx, prompt)
}

func newTestMux(client llm.Client) *http.ServeMux {
	pipe := pipeline.New(client, nil, zap.NewNop(), category.DefaultWeights())
	mux := http.NewServeMux()
	registerRoutes(mux, pipe, zap.NewNop())
	return mux
}

func postGenerate(t *testing.T, mux *http.ServeMux, body string) (*httptest.ResponseRecorder, assemble.Result) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", strings.NewReader(body))
	mux.ServeHTTP(rec, req)

	var res assemble.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return rec, res
}

func TestGenerateHandlesStructuredInput(t *testing.T) {
	mux := newTestMux(llm.NewFakeClient())

	rec, res := postGenerate(t, mux, `{"input":{"title":"Acme Kettle"}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, res.OK)
	assert.NotEmpty(t, res.Output)
}

func TestGenerateRejectsBrokenBody(t *testing.T) {
	mux := newTestMux(llm.NewFakeClient())

	rec, res := postGenerate(t, mux, `{"input": not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, res.OK)
	assert.Equal(t, "bad_request", res.Reason)
}

func TestGenerateFactsReachThePrompt(t *testing.T) {
	rc := &promptRecorder{Client: llm.NewFakeClient()}
	mux := newTestMux(rc)

	body := `{"input":{"title":"Acme Kettle"},"facts":[{"label":"Capacity","value":"500","unit":"mL"}]}`
	rec, res := postGenerate(t, mux, body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, res.OK)
	assert.Contains(t, rc.prompt, "500mL")
}

func TestGenerateIgnoresMalformedFacts(t *testing.T) {
	mux := newTestMux(llm.NewFakeClient())

	rec, res := postGenerate(t, mux, `{"input":"x","facts":{"not":"a list"}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, res.OK)
}

func TestGenerateMethodNotAllowed(t *testing.T) {
	mux := newTestMux(llm.NewFakeClient())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/generate", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealthz(t *testing.T) {
	mux := newTestMux(llm.NewFakeClient())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":true`)
}
