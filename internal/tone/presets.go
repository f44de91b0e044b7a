package tone

// Preset bundles the style contract for one archetype: phrases that break the
// voice, sentence-ending and connective pools, CTA phrasings (most-preferred
// first) and mobile-readability limits.
type Preset struct {
	ID          ID       `json:"id"`
	Label       string   `json:"label"`
	Forbidden   []string `json:"forbidden"`
	Endings     []string `json:"endings"`
	Connectives []string `json:"connectives"`
	CTAs        []string `json:"ctas"`

	Readability Readability `json:"readability"`
}

// Readability bounds the output shape for small screens.
type Readability struct {
	MaxLineRunes            int      `json:"max_line_runes"`
	MaxSentencesPerBlock    int      `json:"max_sentences_per_block"`
	MaxEllipsisPerParagraph int      `json:"max_ellipsis_per_paragraph"`
	ForbiddenLeading        []string `json:"forbidden_leading"`
}

// baselineForbidden is shared by every archetype: hyperbolic claims and
// absolute superlatives. Archetype lists layer on top so this edits once.
var baselineForbidden = []string{
	"絶対",
	"100%",
	"No.1",
	"世界一",
	"業界最高",
	"最強",
	"完璧",
	"奇跡の",
	"誰でも必ず",
	"効果を保証",
}

var defaultReadability = Readability{
	MaxLineRunes:            28,
	MaxSentencesPerBlock:    3,
	MaxEllipsisPerParagraph: 1,
	ForbiddenLeading:        []string{"、", "。", "！", "？", "…"},
}

var presets = map[ID]Preset{
	WarmIntelligent: {
		ID:    WarmIntelligent,
		Label: "あたたかく知的",
		Forbidden: layered(
			"激アツ", "ヤバい", "爆売れ", "神アイテム",
		),
		Endings:     []string{"です。", "ます。", "ですよ。", "してみませんか。"},
		Connectives: []string{"さらに", "だからこそ", "たとえば", "そのうえ"},
		CTAs: []string{
			"まずは一度、手に取って確かめてみませんか。",
			"毎日の暮らしに、そっと加えてみてください。",
		},
		Readability: defaultReadability,
	},
	CoolMinimal: {
		ID:    CoolMinimal,
		Label: "クールで簡潔",
		Forbidden: layered(
			"ですよね", "しちゃう", "ワクワク", "ほっこり",
		),
		Endings:     []string{"。", "です。", "する。"},
		Connectives: []string{"そして", "一方で", "つまり"},
		CTAs: []string{
			"詳細は商品ページで。",
			"選ぶ理由は、見ればわかる。",
		},
		Readability: Readability{
			MaxLineRunes:            24,
			MaxSentencesPerBlock:    2,
			MaxEllipsisPerParagraph: 0,
			ForbiddenLeading:        defaultReadability.ForbiddenLeading,
		},
	},
	CasualEnergetic: {
		ID:    CasualEnergetic,
		Label: "カジュアルで元気",
		Forbidden: layered(
			"でございます", "ご高覧", "賜り",
		),
		Endings:     []string{"です！", "ますよ！", "しちゃいましょう。", "です。"},
		Connectives: []string{"しかも", "じつは", "だから"},
		CTAs: []string{
			"気になったら、今すぐチェック！",
			"この機会をお見逃しなく！",
		},
		Readability: defaultReadability,
	},
}

func layered(extra ...string) []string {
	out := make([]string, 0, len(baselineForbidden)+len(extra))
	out = append(out, baselineForbidden...)
	out = append(out, extra...)
	return out
}

// Get resolves a preset and always succeeds: unknown ids get the default
// archetype's preset.
func Get(id ID) Preset {
	if p, ok := presets[id]; ok {
		return p
	}
	return presets[Default]
}
