// Package canonical turns loosely-structured generation requests (free text or
// partially-filled objects) into one fully-shaped record the rest of the
// pipeline can rely on.
package canonical

// Input is the normalized request shape. Every list field is non-nil after
// Normalize; absent scalars are empty strings.
type Input struct {
	ProductName   string   `json:"product_name"`
	Category      string   `json:"category"`
	Goal          string   `json:"goal"`
	Audience      string   `json:"audience"`
	Platform      string   `json:"platform"`
	Keywords      []string `json:"keywords"`
	Constraints   []string `json:"constraints"`
	BrandVoice    string   `json:"brand_voice"`
	Tone          string   `json:"tone"`
	Style         string   `json:"style"`
	LengthHint    string   `json:"length_hint"`
	SellingPoints []string `json:"selling_points"`
	Objections    []string `json:"objections"`
	Evidence      []string `json:"evidence"`
	CTAPreference []string `json:"cta_preference"`

	// Raw keeps the original input for traceability.
	Raw string `json:"raw"`
}

func empty() Input {
	return Input{
		Keywords:      []string{},
		Constraints:   []string{},
		SellingPoints: []string{},
		Objections:    []string{},
		Evidence:      []string{},
		CTAPreference: []string{},
	}
}
