package editor

import (
	"regexp"
	"strings"
)

type Format string

const (
	FormatBold          Format = "bold"
	FormatItalic        Format = "italic"
	FormatUnderline     Format = "underline"
	FormatJustifyLeft   Format = "justifyLeft"
	FormatJustifyCenter Format = "justifyCenter"
	FormatJustifyRight  Format = "justifyRight"
	FormatUnorderedList Format = "insertUnorderedList"
	FormatOrderedList   Format = "insertOrderedList"
)

// Formats lists every format an editing surface is polled for, in toolbar
// order.
var Formats = []Format{
	FormatBold,
	FormatItalic,
	FormatUnderline,
	FormatJustifyLeft,
	FormatJustifyCenter,
	FormatJustifyRight,
	FormatUnorderedList,
	FormatOrderedList,
}

// FormatQuerier is whatever surface hosts the rich text and can tell whether
// a format is active at the current selection.
type FormatQuerier interface {
	QueryFormat(f Format) bool
}

// ActiveFormats polls q for every known format.
func ActiveFormats(q FormatQuerier) []Format {
	active := make([]Format, 0, len(Formats))
	for _, f := range Formats {
		if q.QueryFormat(f) {
			active = append(active, f)
		}
	}
	return active
}

var formatMarkup = map[Format]*regexp.Regexp{
	FormatBold:          regexp.MustCompile(`(?i)<(b|strong)[\s>]`),
	FormatItalic:        regexp.MustCompile(`(?i)<(i|em)[\s>]`),
	FormatUnderline:     regexp.MustCompile(`(?i)<u[\s>]`),
	FormatJustifyCenter: regexp.MustCompile(`(?i)text-align:\s*center`),
	FormatJustifyRight:  regexp.MustCompile(`(?i)text-align:\s*right`),
	FormatUnorderedList: regexp.MustCompile(`(?i)<ul[\s>]`),
	FormatOrderedList:   regexp.MustCompile(`(?i)<ol[\s>]`),
}

// Markup answers format queries for a whole HTML message, as a terminal has
// no selection. Left alignment is active unless the message is centered or
// right aligned somewhere.
type Markup string

func (m Markup) QueryFormat(f Format) bool {
	text := string(m)
	if f == FormatJustifyLeft {
		if strings.TrimSpace(text) == "" {
			return true
		}
		return !formatMarkup[FormatJustifyCenter].MatchString(text) &&
			!formatMarkup[FormatJustifyRight].MatchString(text)
	}
	re, ok := formatMarkup[f]
	return ok && re.MatchString(text)
}
