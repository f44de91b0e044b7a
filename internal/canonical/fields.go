package canonical

import (
	"regexp"
	"strings"
)

// fieldRule maps one Input field to its object-key aliases and the labeled-line
// prefixes recognized in free text. The whole table is data; Normalize and
// extractLines stay pure functions over it.
type fieldRule struct {
	keys    []string
	labels  []string
	list    bool
	set     func(*Input, string)
	setList func(*Input, []string)

	labelRe *regexp.Regexp
}

var fieldRules = []*fieldRule{
	{
		keys:   []string{"product_name", "title", "name", "product"},
		labels: []string{"product name", "product", "title", "商品名", "商品", "製品名"},
		set:    func(in *Input, v string) { in.ProductName = v },
	},
	{
		keys:   []string{"category"},
		labels: []string{"category", "カテゴリ", "カテゴリー", "ジャンル"},
		set:    func(in *Input, v string) { in.Category = v },
	},
	{
		keys:   []string{"goal", "objective", "purpose"},
		labels: []string{"goal", "objective", "目的", "ゴール"},
		set:    func(in *Input, v string) { in.Goal = v },
	},
	{
		keys:   []string{"audience", "target_audience", "target"},
		labels: []string{"target audience", "audience", "target", "ターゲット", "想定読者"},
		set:    func(in *Input, v string) { in.Audience = v },
	},
	{
		keys:   []string{"platform", "channel", "media"},
		labels: []string{"platform", "channel", "掲載先", "媒体", "プラットフォーム"},
		set:    func(in *Input, v string) { in.Platform = v },
	},
	{
		keys:    []string{"keywords", "keyword"},
		labels:  []string{"keywords", "keyword", "キーワード"},
		list:    true,
		setList: func(in *Input, v []string) { in.Keywords = v },
	},
	{
		keys:    []string{"constraints", "constraint", "avoid", "ng"},
		labels:  []string{"constraints", "avoid", "制約", "禁止", "NGワード"},
		list:    true,
		setList: func(in *Input, v []string) { in.Constraints = v },
	},
	{
		keys:   []string{"brand_voice", "voice"},
		labels: []string{"brand voice", "voice", "ブランドボイス"},
		set:    func(in *Input, v string) { in.BrandVoice = v },
	},
	{
		keys:   []string{"tone"},
		labels: []string{"tone", "トーン", "口調"},
		set:    func(in *Input, v string) { in.Tone = v },
	},
	{
		keys:   []string{"style", "template"},
		labels: []string{"style", "template", "スタイル", "テンプレート"},
		set:    func(in *Input, v string) { in.Style = v },
	},
	{
		keys:   []string{"length_hint", "length"},
		labels: []string{"length", "文字数", "長さ"},
		set:    func(in *Input, v string) { in.LengthHint = v },
	},
	{
		keys:    []string{"selling_points", "features", "appeal"},
		labels:  []string{"selling points", "features", "訴求ポイント", "特徴", "セールスポイント"},
		list:    true,
		setList: func(in *Input, v []string) { in.SellingPoints = v },
	},
	{
		keys:    []string{"objections", "concerns"},
		labels:  []string{"objections", "concerns", "懸念", "不安要素"},
		list:    true,
		setList: func(in *Input, v []string) { in.Objections = v },
	},
	{
		keys:    []string{"evidence", "proof"},
		labels:  []string{"evidence", "proof", "根拠", "実績"},
		list:    true,
		setList: func(in *Input, v []string) { in.Evidence = v },
	},
	{
		keys:    []string{"cta_preference", "cta"},
		labels:  []string{"cta", "call to action", "行動喚起"},
		list:    true,
		setList: func(in *Input, v []string) { in.CTAPreference = v },
	},
}

func init() {
	for _, f := range fieldRules {
		alts := make([]string, 0, len(f.labels))
		for _, l := range f.labels {
			alts = append(alts, regexp.QuoteMeta(l))
		}
		// Anchored to a labeled line: "<label>: rest" with half- or
		// full-width colon. Longer labels are listed first per rule so the
		// alternation never under-captures ("product name" before "product").
		f.labelRe = regexp.MustCompile(`(?i)^\s*(?:` + strings.Join(alts, "|") + `)\s*[:：]\s*(.+)$`)
	}
}

// extractLines runs the label rules over each line of free text. Lexical
// extraction only; unmatched fields stay empty.
func extractLines(text string) Input {
	out := empty()
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, f := range fieldRules {
			m := f.labelRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			val := strings.TrimSpace(m[1])
			if val == "" {
				break
			}
			if f.list {
				f.setList(&out, SplitList(val))
			} else {
				f.set(&out, val)
			}
			break
		}
	}
	return out
}
