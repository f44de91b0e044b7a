// Package tone resolves a requested voice identifier to one of a small closed
// set of writing archetypes. Unknown or legacy identifiers always degrade to
// the default archetype; resolution never fails.
package tone

import "strings"

// ID identifies one voice archetype.
type ID string

const (
	// WarmIntelligent is the default archetype. Legacy "friendly" voices
	// fold into it.
	WarmIntelligent ID = "warm_intelligent"
	CoolMinimal     ID = "cool_minimal"
	CasualEnergetic ID = "casual_energetic"
)

// Default is the archetype every unrecognized identifier resolves to.
const Default = WarmIntelligent

// aliases folds legacy and loose identifiers into the closed set, checked
// case-insensitively before falling back to Default.
var aliases = map[string]ID{
	"warm_intelligent": WarmIntelligent,
	"warm":             WarmIntelligent,
	"friendly":         WarmIntelligent,
	"soft":             WarmIntelligent,
	"standard":         WarmIntelligent,
	"default":          WarmIntelligent,
	"フレンドリー":           WarmIntelligent,

	"cool_minimal": CoolMinimal,
	"cool":         CoolMinimal,
	"minimal":      CoolMinimal,
	"stylish":      CoolMinimal,
	"smart":        CoolMinimal,
	"クール":          CoolMinimal,

	"casual_energetic": CasualEnergetic,
	"casual":           CasualEnergetic,
	"energetic":        CasualEnergetic,
	"pop":              CasualEnergetic,
	"カジュアル":           CasualEnergetic,
}

// Normalize maps any input to a member of the closed archetype set. Totality
// is the contract: nil, unknown strings and non-strings all yield Default.
func Normalize(v any) ID {
	s, ok := v.(string)
	if !ok {
		if id, ok := v.(ID); ok {
			s = string(id)
		} else {
			return Default
		}
	}
	key := strings.ToLower(strings.TrimSpace(s))
	if id, ok := aliases[key]; ok {
		return id
	}
	return Default
}

// SafeCTA returns the archetype's most-preferred call-to-action phrase, or a
// generic fallback when the list is empty.
func SafeCTA(id ID) string {
	p := Get(id)
	if len(p.CTAs) > 0 {
		return p.CTAs[0]
	}
	return "詳しくは商品ページをご覧ください。"
}
