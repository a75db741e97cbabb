package model

import (
	"fmt"
	"strings"
)

type ViewMode string

const (
	ViewList ViewMode = "list"
	ViewGrid ViewMode = "grid"
)

// ParseViewMode never fails: anything that is not "grid" or "list" is list.
func ParseViewMode(value string) ViewMode {
	switch ViewMode(value) {
	case ViewGrid:
		return ViewGrid
	default:
		return ViewList
	}
}

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

func ParseTheme(value string) Theme {
	if Theme(value) == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
	SortAZ     SortOrder = "az"
)

func ParseSortOrder(value string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(value))) {
	case "", SortNewest:
		return SortNewest, nil
	case SortOldest:
		return SortOldest, nil
	case SortAZ, "a-z":
		return SortAZ, nil
	}
	return "", fmt.Errorf("unknown sort order %q", value)
}
