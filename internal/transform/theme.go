package transform

import "github.com/samber/lo"

// Theme is a style preset that contributes a descriptive phrase to the prompt.
type Theme struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	Description  string `json:"description" yaml:"description"`
	PreviewImage string `json:"previewImage,omitempty" yaml:"preview_image,omitempty"`
}

// DefaultThemeID is the theme selected when nothing else is configured
const DefaultThemeID = "1"

// DefaultThemes returns the fixed set of themes offered to the user.
// A fresh slice is returned on every call so callers cannot mutate the set.
func DefaultThemes() []Theme {
	return []Theme{
		{ID: "1", Name: "Artistic", Description: "Artistic style transformation"},
		{ID: "2", Name: "Realistic", Description: "Photorealistic transformation"},
		{ID: "3", Name: "Abstract", Description: "Abstract art transformation"},
	}
}

// FindTheme looks up a theme by ID (or, failing that, by case-sensitive name)
// in the default set.
func FindTheme(idOrName string) (Theme, bool) {
	return lo.Find(DefaultThemes(), func(t Theme) bool {
		return t.ID == idOrName || t.Name == idOrName
	})
}

// ComposePrompt builds the prompt sent to the backend for a theme and user text
func ComposePrompt(theme Theme, text string) string {
	return theme.Description + ": " + text
}
