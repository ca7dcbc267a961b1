package models

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// SummaryLength is the number of characters kept by Summary.
const SummaryLength = 100

const ellipsis = "..."

var (
	markdown  = goldmark.New(goldmark.WithExtensions(extension.GFM))
	stripTags = bluemonday.StrictPolicy()
)

// URLResolver turns a stored file reference into a public URL.
type URLResolver interface {
	URL(path string) string
}

// CoverURL falls back to defaultCover when no cover was uploaded.
func (b *Blog) CoverURL(storage URLResolver, defaultCover string) string {
	if b.Cover == "" || storage == nil {
		return defaultCover
	}
	return storage.URL(b.Cover)
}

// Summary renders the markdown content, strips every tag and keeps the first
// SummaryLength characters.
func (b *Blog) Summary() string {
	if strings.TrimSpace(b.Content) == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(b.Content), &buf); err != nil {
		return LimitString(PlainText(b.Content), SummaryLength)
	}
	return LimitString(PlainText(buf.String()), SummaryLength)
}

// PlainText drops all markup and collapses whitespace.
func PlainText(s string) string {
	text := html.UnescapeString(stripTags.Sanitize(s))
	return strings.Join(strings.Fields(text), " ")
}

// LimitString keeps at most limit characters and marks the cut with "...".
func LimitString(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimRight(string(runes[:limit]), " ") + ellipsis
}
