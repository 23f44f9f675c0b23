package theme

import "strings"

// Theme is the colour scheme preference.
type Theme string

// Theme values
const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// CookieName is the cookie the preference is persisted in.
const CookieName = "parlevrai_theme"

// Parse returns the theme named s and whether s was a valid theme.
// Invalid values parse as Light.
func Parse(s string) (Theme, bool) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	}
	return Light, false
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// IsDark reports whether t is the dark theme.
func (t Theme) IsDark() bool {
	return t == Dark
}

// Resolve picks the effective theme: a valid saved preference wins, then the
// client's Sec-CH-Prefers-Color-Scheme hint, then Light.
func Resolve(saved, hint string) Theme {
	if t, ok := Parse(saved); ok {
		return t
	}
	if strings.EqualFold(strings.Trim(hint, `" `), string(Dark)) {
		return Dark
	}
	return Light
}
