package category

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Match is the scored winner plus the full ranked breakdown.
type Match struct {
	Key       string  `json:"key"`
	Label     string  `json:"label"`
	Score     int     `json:"score"`
	Breakdown []Score `json:"breakdown"`
}

// Score is one catalog entry's total for the given input.
type Score struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Score int    `json:"score"`
}

// Query carries the fields worth tokenizing.
type Query struct {
	Category    string
	ProductName string
	Keywords    []string
}

// Weights tunes the scoring. The values are untuned heuristics carried from
// production, so they are parameters rather than constants.
type Weights struct {
	Alias         int
	AllowedWord   int
	MinAliasRunes int
	MinWordRunes  int
}

// DefaultWeights returns the production defaults.
func DefaultWeights() Weights {
	return Weights{Alias: 3, AllowedWord: 1, MinAliasRunes: 2, MinWordRunes: 4}
}

// Resolve scores q against the catalog and returns the strictly best entry,
// or nil when no tokens exist or nothing scores above zero. Callers must
// treat nil as "no match", not as a failure: forcing a wrong category would
// corrupt downstream tone and fact selection.
func Resolve(q Query, w Weights) *Match {
	tokens := tokens(q)
	if len(tokens) == 0 {
		return nil
	}

	breakdown := make([]Score, 0, len(Catalog))
	best := -1
	for i, def := range Catalog {
		s := score(tokens, def, w)
		breakdown = append(breakdown, Score{Key: def.Key, Label: def.Label, Score: s})
		if best < 0 || s > breakdown[best].Score {
			best = i
		}
	}
	if best < 0 || breakdown[best].Score <= 0 {
		return nil
	}

	ranked := make([]Score, len(breakdown))
	copy(ranked, breakdown)
	// Stable keeps catalog order among equal scores.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return &Match{
		Key:       Catalog[best].Key,
		Label:     Catalog[best].Label,
		Score:     breakdown[best].Score,
		Breakdown: ranked,
	}
}

func score(tokens []string, def Definition, w Weights) int {
	total := 0
	for _, tok := range tokens {
		for _, alias := range def.Aliases {
			if utf8.RuneCountInString(alias) < w.MinAliasRunes {
				continue
			}
			if strings.Contains(tok, strings.ToLower(alias)) {
				total += w.Alias
				break
			}
		}
		for _, word := range def.AllowedWords {
			if utf8.RuneCountInString(word) < w.MinWordRunes {
				continue
			}
			if strings.Contains(tok, strings.ToLower(word)) {
				total += w.AllowedWord
				break
			}
		}
	}
	return total
}

func tokens(q Query) []string {
	fields := make([]string, 0, 2+len(q.Keywords))
	fields = append(fields, q.Category, q.ProductName)
	fields = append(fields, q.Keywords...)

	var out []string
	for _, f := range fields {
		for _, tok := range tokenize(f) {
			out = append(out, tok)
		}
	}
	return out
}

// tokenize lower-cases and splits on whitespace, punctuation, slashes and
// middle dots. Hyphen survives so terms like "usb-c" stay intact.
func tokenize(s string) []string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	return strings.FieldsFunc(s, func(r rune) bool {
		if r == '-' {
			return false
		}
		return unicode.IsSpace(r) || r == '/' || r == '／' || r == '・' || r == '･' ||
			unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}
