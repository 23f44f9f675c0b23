package theme_test

import (
	"testing"

	"parlevrai/internal/domain/theme"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		want   theme.Theme
		wantOK bool
	}{
		{"light", theme.Light, true},
		{"dark", theme.Dark, true},
		{" Dark ", theme.Dark, true},
		{"", theme.Light, false},
		{"sepia", theme.Light, false},
	}
	for _, tt := range tests {
		got, ok := theme.Parse(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Parse(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestToggle(t *testing.T) {
	if theme.Light.Toggle() != theme.Dark || theme.Dark.Toggle() != theme.Light {
		t.Error("Toggle should swap light and dark")
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		saved string
		hint  string
		want  theme.Theme
	}{
		{"saved wins over hint", "light", `"dark"`, theme.Light},
		{"saved dark", "dark", "", theme.Dark},
		{"hint dark", "", `"dark"`, theme.Dark},
		{"hint light", "", "light", theme.Light},
		{"nothing", "", "", theme.Light},
		{"invalid saved falls back to hint", "blue", "dark", theme.Dark},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := theme.Resolve(tt.saved, tt.hint); got != tt.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q", tt.saved, tt.hint, got, tt.want)
			}
		})
	}
}
