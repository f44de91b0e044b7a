// Package assemble builds the generation request payload from the pipeline
// stages and normalizes the provider's response into the canonical envelope.
package assemble

import (
	"bytes"
	"fmt"
	"strings"

	"copysmith/internal/canonical"
	"copysmith/internal/category"
	"copysmith/internal/facts"
	"copysmith/internal/tone"
)

// Meta is the resolved request metadata, mirrored unchanged into the output.
type Meta struct {
	Style  string `json:"style"`
	Tone   string `json:"tone"`
	Locale string `json:"locale"`
}

// Request is everything the prompt is assembled from. Category and Facts are
// optional context; a nil value renders nothing.
type Request struct {
	Input    canonical.Input
	Category *category.Match
	Facts    *facts.Block
	Preset   tone.Preset
	Meta     Meta
}

// Prompt renders the request into one payload with a deterministic section
// order: context, facts, voice constraints, task instruction.
func (r Request) Prompt() string {
	var buf bytes.Buffer
	writeSection(&buf, "CONTEXT", r.contextSection())
	writeSection(&buf, "FACTS", facts.Render(r.Facts))
	writeSection(&buf, "VOICE", r.voiceSection())
	writeSection(&buf, "TASK", r.taskSection())
	return strings.TrimSpace(buf.String()) + "\n"
}

func (r Request) contextSection() string {
	in := r.Input
	var lines []string
	addLine := func(label, v string) {
		if strings.TrimSpace(v) != "" {
			lines = append(lines, label+": "+v)
		}
	}
	addLine("商品名", in.ProductName)
	if r.Category != nil {
		addLine("カテゴリ", r.Category.Label)
	} else {
		addLine("カテゴリ", in.Category)
	}
	addLine("目的", in.Goal)
	addLine("ターゲット", in.Audience)
	addLine("掲載先", in.Platform)
	addLine("キーワード", strings.Join(in.Keywords, "、"))
	addLine("訴求ポイント", strings.Join(in.SellingPoints, "、"))
	addLine("想定される不安", strings.Join(in.Objections, "、"))
	addLine("根拠・実績", strings.Join(in.Evidence, "、"))
	addLine("制約", strings.Join(in.Constraints, "、"))
	addLine("文字数の目安", in.LengthHint)
	return strings.Join(lines, "\n")
}

func (r Request) voiceSection() string {
	p := r.Preset
	var lines []string
	lines = append(lines, "トーン: "+p.Label)
	if len(p.Forbidden) > 0 {
		lines = append(lines, "使用禁止の表現: "+strings.Join(p.Forbidden, "、"))
	}
	if len(p.Endings) > 0 {
		lines = append(lines, "文末は次のいずれか: "+strings.Join(p.Endings, " / "))
	}
	if len(p.Connectives) > 0 {
		lines = append(lines, "接続詞の候補: "+strings.Join(p.Connectives, "、"))
	}
	lines = append(lines, "推奨CTA: "+tone.SafeCTA(p.ID))
	rd := p.Readability
	lines = append(lines,
		fmt.Sprintf("1行は%d文字以内、1段落は%d文まで", rd.MaxLineRunes, rd.MaxSentencesPerBlock),
		fmt.Sprintf("三点リーダーは1段落に%d回まで", rd.MaxEllipsisPerParagraph),
	)
	if len(rd.ForbiddenLeading) > 0 {
		lines = append(lines, "行頭に置かない記号: "+strings.Join(rd.ForbiddenLeading, " "))
	}
	return strings.Join(lines, "\n")
}

func (r Request) taskSection() string {
	style := r.Meta.Style
	if style == "" {
		style = "generic"
	}
	return fmt.Sprintf(
		"上記の情報をもとに、%s形式の商品紹介文を%s向けに書いてください。FACTSにある事実だけを使い、VOICEの制約をすべて守ること。",
		style, localeName(r.Meta.Locale),
	)
}

func localeName(locale string) string {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case "", "ja", "ja-jp":
		return "日本語の読者"
	case "en", "en-us":
		return "英語の読者"
	default:
		return locale + "の読者"
	}
}

func writeSection(buf *bytes.Buffer, name, body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return
	}
	fmt.Fprintf(buf, "[%s]\n%s\n\n", name, body)
}
