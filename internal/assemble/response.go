package assemble

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Data is the payload half of the canonical output envelope.
type Data struct {
	Text string `json:"text"`
	Meta Meta   `json:"meta"`
}

// Result is the caller-facing envelope. Text is duplicated under Output for
// callers that still read the flat field. OK stays true even when the
// provider produced nothing usable; Text then carries a diagnostic
// placeholder so callers never render a blank.
type Result struct {
	OK      bool   `json:"ok"`
	Data    *Data  `json:"data,omitempty"`
	Output  string `json:"output,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// BadRequest builds the failure envelope for input that claimed to be
// structured but could not be parsed.
func BadRequest(reason, message string) Result {
	return Result{OK: false, Reason: reason, Message: message}
}

// extractor tries to pull the generated text out of one conventional
// response location. Extractors run in order; the first non-empty wins, which
// keeps the "where could the text be" knowledge in one place.
type extractor func(raw json.RawMessage) string

var extractors = []extractor{
	// A bare JSON string value.
	func(raw json.RawMessage) string {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return ""
	},
	// Flat {"output": ...}.
	objectField("output"),
	// Flat {"text": ...}.
	objectField("text"),
	// Chat-completion shape: choices[0].message.content.
	func(raw json.RawMessage) string {
		var body struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return ""
		}
		if len(body.Choices) == 0 {
			return ""
		}
		return body.Choices[0].Message.Content
	},
	// Gemini shape: candidates[0].content.parts[0].text.
	func(raw json.RawMessage) string {
		var body struct {
			Candidates []struct {
				Content struct {
					Parts []struct {
						Text string `json:"text"`
					} `json:"parts"`
				} `json:"content"`
			} `json:"candidates"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return ""
		}
		if len(body.Candidates) == 0 || len(body.Candidates[0].Content.Parts) == 0 {
			return ""
		}
		return body.Candidates[0].Content.Parts[0].Text
	},
}

func objectField(key string) extractor {
	return func(raw json.RawMessage) string {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return ""
		}
		v, ok := obj[key]
		if !ok {
			return ""
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
		return ""
	}
}

// ExtractText locates the generated text in an arbitrary provider response.
// Returns "" when no conventional location holds a non-empty string.
func ExtractText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	for _, ex := range extractors {
		if s := strings.TrimSpace(ex(raw)); s != "" {
			return s
		}
	}
	return ""
}

// NormalizeResponse folds any provider response into the canonical envelope.
// When no usable text is found, a diagnostic placeholder embedding the
// resolved style/tone/locale is synthesized, so the envelope always carries
// renderable text even in total provider failure. The returned bool reports
// whether real text was found.
func NormalizeResponse(raw json.RawMessage, meta Meta) (Result, bool) {
	text := ExtractText(raw)
	ok := text != ""
	if !ok {
		text = Placeholder(meta)
	}
	return Result{
		OK:     true,
		Data:   &Data{Text: text, Meta: meta},
		Output: text,
	}, ok
}

// Placeholder is the never-blank fallback body.
func Placeholder(meta Meta) string {
	return fmt.Sprintf(
		"申し訳ありません。文章を生成できませんでした。時間をおいてもう一度お試しください。(style=%s, tone=%s, locale=%s)",
		meta.Style, meta.Tone, meta.Locale,
	)
}
