// Package facts merges explicit product facts with values derived from the
// normalized input into one deduplicated, ordered block for the prompt.
package facts

import (
	"strings"
)

// Kind distinguishes the derived title fact from spec facts.
type Kind string

const (
	KindTitle Kind = "title"
	KindSpec  Kind = "spec"
)

// Item is one accepted fact. Label and Value are always non-empty.
type Item struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
	Kind  Kind   `json:"kind"`
}

// Block is the ordered accepted list. A nil Block means "no facts": callers
// render nothing rather than an empty section header.
type Block struct {
	Items []Item `json:"items"`
}

// Source is one explicit fact before merging. Unit, when present, is
// concatenated directly onto the value ("500" + "mL" -> "500mL").
type Source struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// ProductContext carries the fields the merger derives facts from.
type ProductContext struct {
	Name string
}

// Build assembles the fact block: the product-name fact first (when the name
// is non-empty), then every explicit fact with a non-empty label and value.
// Duplicates are suppressed first-seen-wins, both by normalized value and by
// key/label collision. Returns nil when nothing survives.
func Build(product ProductContext, explicit []Source) *Block {
	candidates := make([]Item, 0, 1+len(explicit))
	if name := strings.TrimSpace(product.Name); name != "" {
		candidates = append(candidates, Item{
			Key:   "product_name",
			Label: "product name",
			Value: name,
			Kind:  KindTitle,
		})
	}
	for _, src := range explicit {
		label := strings.TrimSpace(src.Label)
		value := strings.TrimSpace(src.Value)
		if value != "" {
			if unit := strings.TrimSpace(src.Unit); unit != "" {
				value += unit
			}
		}
		if label == "" || value == "" {
			continue
		}
		candidates = append(candidates, Item{
			Key:   strings.TrimSpace(src.Key),
			Label: label,
			Value: value,
			Kind:  KindSpec,
		})
	}

	seenValue := map[string]bool{}
	seenKey := map[string]bool{}
	items := make([]Item, 0, len(candidates))
	for _, it := range candidates {
		vk := normalize(it.Value)
		ik := identityKey(it)
		if seenValue[vk] || seenKey[ik] {
			continue
		}
		seenValue[vk] = true
		seenKey[ik] = true
		items = append(items, it)
	}
	if len(items) == 0 {
		return nil
	}
	return &Block{Items: items}
}

// identityKey prefers the stable key; label is the fallback identity.
func identityKey(it Item) string {
	if it.Key != "" {
		return "k:" + normalize(it.Key)
	}
	return "l:" + normalize(it.Label)
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Render emits the facts section: a heading line then one "- label: value"
// bullet per item, preserving input order. Returns "" when the block is nil,
// empty, or every value is blank after trimming.
func Render(b *Block) string {
	if b == nil || len(b.Items) == 0 {
		return ""
	}
	var sb strings.Builder
	wrote := false
	for _, it := range b.Items {
		v := strings.TrimSpace(it.Value)
		if v == "" {
			continue
		}
		if !wrote {
			sb.WriteString("商品ファクト:\n")
			wrote = true
		}
		sb.WriteString("- ")
		sb.WriteString(it.Label)
		sb.WriteString(": ")
		sb.WriteString(v)
		sb.WriteString("\n")
	}
	if !wrote {
		return ""
	}
	return strings.TrimRight(sb.String(), "\n")
}
