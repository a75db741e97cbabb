// Package richtext converts between the HTML fragments stored as note
// messages and the text forms the terminal works with.
package richtext

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	strict = bluemonday.StrictPolicy()
	// block level tags end a line; without this "<p>a</p><p>b</p>" reads as "ab".
	blockBoundary = regexp.MustCompile(`(?i)<\s*(br\s*/?|/p|/div|/li|/h[1-6]|/blockquote|/pre|/tr)\s*>`)
	blankRun      = regexp.MustCompile(`\n{3,}`)
	md            = goldmark.New()
)

// PlainText strips every tag from a message and decodes entities.
func PlainText(message string) string {
	if message == "" {
		return ""
	}
	marked := blockBoundary.ReplaceAllStringFunc(message, func(tag string) string {
		return tag + "\n"
	})
	text := html.UnescapeString(strict.Sanitize(marked))
	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = blankRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

type Stats struct {
	Words int
	Chars int
}

// Count reports word and character counts of the message's plain text.
// Characters are counted as runes, whitespace included.
func Count(message string) Stats {
	text := PlainText(message)
	return Stats{
		Words: len(strings.Fields(text)),
		Chars: utf8.RuneCountInString(text),
	}
}

// FromMarkdown renders markdown to the HTML fragment form messages use.
func FromMarkdown(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Excerpt is the first line of the plain text, cut to limit runes.
func Excerpt(message string, limit int) string {
	text := PlainText(message)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
