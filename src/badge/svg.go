package badge

import (
	"encoding/base64"
	"fmt"
	"math"
	"strings"
)

const (
	badgeHeight = 20
	textPadding = 10
)

// renderSVG produces a shields.io-compatible flat SVG badge.
func (e *Engine) renderSVG(b Badge) string {
	labelWidth := int(math.Round(e.metrics.TextWidth(b.Label))) + textPadding
	valueWidth := int(math.Round(e.metrics.TextWidth(b.Value))) + textPadding
	total := labelWidth + valueWidth

	fontName := e.metrics.FontName()
	label := xmlEscape(b.Label)
	value := xmlEscape(b.Value)

	var s strings.Builder
	fmt.Fprintf(&s, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" role="img" aria-label="%s: %s">`,
		total, badgeHeight, label, value)
	fmt.Fprintf(&s, `<title>%s: %s</title>`, label, value)

	s.WriteString(`<defs>`)
	if e.EmbedFont {
		fmt.Fprintf(&s, `<style type="text/css">%s</style>`, fontFaceCSS(fontName, e.metrics.FontData()))
	}
	s.WriteString(`<linearGradient id="b" x2="0" y2="100%">`)
	s.WriteString(`<stop offset="0" stop-color="#bbb" stop-opacity=".1"/>`)
	s.WriteString(`<stop offset="1" stop-opacity=".1"/>`)
	s.WriteString(`</linearGradient>`)
	s.WriteString(`</defs>`)

	fmt.Fprintf(&s, `<mask id="a"><rect width="%d" height="%d" rx="3" fill="#fff"/></mask>`, total, badgeHeight)
	s.WriteString(`<g mask="url(#a)">`)
	fmt.Fprintf(&s, `<rect width="%d" height="%d" fill="#555"/>`, labelWidth, badgeHeight)
	fmt.Fprintf(&s, `<rect x="%d" width="%d" height="%d" fill="%s"/>`, labelWidth, valueWidth, badgeHeight, xmlEscape(b.Color))
	fmt.Fprintf(&s, `<rect width="%d" height="%d" fill="url(#b)"/>`, total, badgeHeight)
	s.WriteString(`</g>`)

	family := fmt.Sprintf("'%s',Verdana,Geneva,sans-serif", fontName)
	fmt.Fprintf(&s, `<g fill="#fff" text-anchor="middle" font-family="%s" font-size="%g">`,
		xmlEscape(family), e.metrics.FontSize())
	writeShadowedText(&s, labelWidth/2, label)
	writeShadowedText(&s, labelWidth+valueWidth/2, value)
	s.WriteString(`</g>`)

	s.WriteString(`</svg>`)
	return s.String()
}

func writeShadowedText(s *strings.Builder, x int, text string) {
	fmt.Fprintf(s, `<text x="%d" y="15" fill="#010101" fill-opacity=".3">%s</text>`, x, text)
	fmt.Fprintf(s, `<text x="%d" y="14">%s</text>`, x, text)
}

// fontFaceCSS returns a CSS @font-face rule with the font embedded as base64.
func fontFaceCSS(name string, data []byte) string {
	format, css := "ttf", "truetype"
	// OTF magic: "OTTO"
	if len(data) >= 4 && string(data[:4]) == "OTTO" {
		format, css = "otf", "opentype"
	}
	return fmt.Sprintf(
		`@font-face{font-family:'%s';src:url(data:font/%s;base64,%s) format('%s')}`,
		name, format, base64.StdEncoding.EncodeToString(data), css,
	)
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
)

// xmlEscape escapes special XML characters in badge text.
func xmlEscape(s string) string {
	return xmlReplacer.Replace(s)
}
