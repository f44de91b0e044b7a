package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"copysmith/internal/assemble"
	"copysmith/internal/pipeline"
)

// generateRequest is the caller-facing body. Input may be a raw string or a
// partially-structured object; the normalizer accepts both. Facts stay raw
// here and are decoded leniently by the pipeline.
type generateRequest struct {
	Input  json.RawMessage `json:"input"`
	Tone   string          `json:"tone"`
	Style  string          `json:"style"`
	Locale string          `json:"locale"`
	Facts  json.RawMessage `json:"facts"`
}

func registerRoutes(mux *http.ServeMux, pipe *pipeline.Pipeline, log *zap.Logger) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	})

	mux.HandleFunc("/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest,
				assemble.BadRequest("bad_request", "request body is not valid JSON: "+err.Error()))
			return
		}

		correlationID := strings.TrimSpace(r.Header.Get("X-Request-Id"))
		if correlationID == "" {
			correlationID = uuid.NewString()
		}

		var input any
		if len(req.Input) > 0 {
			if err := json.Unmarshal(req.Input, &input); err != nil {
				writeJSON(w, http.StatusBadRequest,
					assemble.BadRequest("bad_request", "input is not valid JSON: "+err.Error()))
				return
			}
		}

		result := pipe.Run(r.Context(), input, pipeline.Options{
			Tone:          req.Tone,
			Style:         req.Style,
			Locale:        req.Locale,
			Facts:         pipeline.DecodeFacts(req.Facts),
			CorrelationID: correlationID,
		})

		log.Info("generate handled",
			zap.String("correlationId", correlationID),
			zap.Int("outputLen", len(result.Output)),
		)
		writeJSON(w, http.StatusOK, result)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
