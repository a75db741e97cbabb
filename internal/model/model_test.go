package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDraftEmpty(t *testing.T) {
	require.True(t, Draft{Name: "someone", Title: "  ", Message: "\n\t"}.Empty())
	require.False(t, Draft{Title: "t"}.Empty())
	require.False(t, Draft{Message: "<b>x</b>"}.Empty())
}

func TestParseViewModeDefaultsToList(t *testing.T) {
	require.Equal(t, ViewGrid, ParseViewMode("grid"))
	require.Equal(t, ViewList, ParseViewMode("list"))
	require.Equal(t, ViewList, ParseViewMode(""))
	require.Equal(t, ViewList, ParseViewMode("GRID"))
}

func TestThemeToggle(t *testing.T) {
	require.Equal(t, ThemeDark, ParseTheme("bogus"))
	require.Equal(t, ThemeLight, ThemeDark.Toggle())
	require.Equal(t, ThemeDark, ThemeLight.Toggle())
}

func TestParseSortOrder(t *testing.T) {
	order, err := ParseSortOrder("")
	require.NoError(t, err)
	require.Equal(t, SortNewest, order)
	order, err = ParseSortOrder("A-Z")
	require.NoError(t, err)
	require.Equal(t, SortAZ, order)
	_, err = ParseSortOrder("random")
	require.Error(t, err)
}
