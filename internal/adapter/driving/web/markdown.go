package web

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Review bodies are buyer-written text shown inside a review card. They keep
// paragraphs, line breaks, emphasis, lists, quotes and outbound links. Headings
// collapse to their text and images are dropped.
var (
	reviewMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	reviewSanitizer = reviewPolicy()
)

func reviewPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "em", "del", "code", "blockquote", "ul", "ol", "li")
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireParseableURLs(true)
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// RenderReviewBody converts a review body to sanitized HTML.
// Returns empty string for empty input.
func RenderReviewBody(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := reviewMarkdown.Convert([]byte(src), &buf); err != nil {
		return reviewSanitizer.Sanitize(src)
	}

	return reviewSanitizer.Sanitize(buf.String())
}
