package canonical

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Normalize converts raw input into an Input. It never fails: unparseable or
// unrecognized input yields an Input with all fields empty except Raw.
//
// A string that looks like JSON (starts with '{' or '[') is parsed and coerced
// field by field. If parsing fails, or the string is plain free text, labeled
// lines are extracted instead. Map and struct inputs go through the same
// coercion as parsed JSON.
func Normalize(raw any) Input {
	switch v := raw.(type) {
	case nil:
		return empty()
	case string:
		return normalizeString(v)
	case json.RawMessage:
		return normalizeString(string(v))
	case []byte:
		return normalizeString(string(v))
	case map[string]any:
		out := coerceObject(v)
		if b, err := json.Marshal(v); err == nil {
			out.Raw = string(b)
		}
		return out
	default:
		// Structs and other shapes take a round trip through JSON so that
		// the same key aliases apply.
		b, err := json.Marshal(raw)
		if err != nil {
			return empty()
		}
		return normalizeString(string(b))
	}
}

func normalizeString(s string) Input {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return empty()
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var obj map[string]any
		if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
			out := coerceObject(obj)
			out.Raw = s
			return out
		}
		// Fall through: broken JSON is treated as free text.
	}
	out := extractLines(trimmed)
	out.Raw = s
	return out
}

func coerceObject(obj map[string]any) Input {
	out := empty()
	for _, f := range fieldRules {
		for _, key := range f.keys {
			v, ok := obj[key]
			if !ok {
				continue
			}
			if f.list {
				vals := coerceList(v)
				if len(vals) > 0 {
					f.setList(&out, vals)
				}
			} else {
				s := coerceString(v)
				if s != "" {
					f.set(&out, s)
				}
			}
			break
		}
	}
	return out
}

func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// coerceList accepts an actual list or a single comma separated string.
// Both half-width and full-width separators split.
func coerceList(v any) []string {
	switch t := v.(type) {
	case []string:
		return cleanList(t)
	case []any:
		vals := make([]string, 0, len(t))
		for _, item := range t {
			vals = append(vals, coerceString(item))
		}
		return cleanList(vals)
	default:
		return SplitList(coerceString(v))
	}
}

// SplitList splits a comma separated string on "," "、" and "，", trimming
// each element and dropping empties.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '、' || r == '，'
	})
	return cleanList(parts)
}

func cleanList(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
