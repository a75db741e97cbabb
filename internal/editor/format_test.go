package editor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fixedQuerier map[Format]bool

func (f fixedQuerier) QueryFormat(format Format) bool {
	return f[format]
}

func TestActiveFormatsPollsInToolbarOrder(t *testing.T) {
	q := fixedQuerier{FormatOrderedList: true, FormatBold: true, "unknown": true}
	require.Equal(t, []Format{FormatBold, FormatOrderedList}, ActiveFormats(q))
	require.Empty(t, ActiveFormats(fixedQuerier{}))
}

func TestMarkupQuerier(t *testing.T) {
	msg := Markup(`<p style="text-align: center"><strong>hi</strong> <em>there</em></p><ul><li>x</li></ul>`)
	require.Equal(t, []Format{FormatBold, FormatItalic, FormatJustifyCenter, FormatUnorderedList}, ActiveFormats(msg))

	require.Equal(t, []Format{FormatJustifyLeft}, ActiveFormats(Markup("")))
	require.Equal(t, []Format{FormatUnderline, FormatJustifyLeft, FormatOrderedList}, ActiveFormats(Markup("<u>a</u><ol><li>b</li></ol>")))
	require.False(t, Markup("<br>").QueryFormat(FormatBold))
}
