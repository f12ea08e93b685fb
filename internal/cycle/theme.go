package cycle

import (
	"errors"
	"fmt"

	"github.com/tartampluch/go-cycle/internal/config"
)

// ErrUnknownTheme is returned when selecting a key outside the catalog.
var ErrUnknownTheme = errors.New(config.ErrUnknownTheme)

// Theme is a named visual variant.
type Theme struct {
	Key         string
	Name        string
	Description string
}

var themeCatalog = []Theme{
	{Key: config.DefaultThemeKey, Name: "Classic", Description: "Elegant purples and blues"},
	{Key: "earth", Name: "Earth Tones", Description: "Warm sage, brown, and beige"},
	{Key: "monochrome", Name: "Monochrome", Description: "Elegant blacks and whites"},
	{Key: "calm", Name: "Calm Neutrals", Description: "Soft blues and creams"},
	{Key: "dark", Name: "Dark Mode", Description: "Easy on the eyes"},
}

// Themes returns the catalog in display order.
func Themes() []Theme {
	out := make([]Theme, len(themeCatalog))
	copy(out, themeCatalog)
	return out
}

// LookupTheme finds a theme by key.
func LookupTheme(key string) (Theme, error) {
	for _, t := range themeCatalog {
		if t.Key == key {
			return t, nil
		}
	}
	return Theme{}, fmt.Errorf("%w: %q", ErrUnknownTheme, key)
}

// ResolveTheme maps a persisted key to a theme, falling back to the default.
func ResolveTheme(key string) Theme {
	if t, err := LookupTheme(key); err == nil {
		return t
	}
	return themeCatalog[0]
}
