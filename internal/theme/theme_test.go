package theme

import (
	"reflect"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/quickdiff/quickdiff/internal/highlight"
)

func TestLoadDefaultsToDarkForUnknownName(t *testing.T) {
	got := Load("nonexistent")
	want := Load("dark")
	if got.Name != "default" {
		t.Fatalf("Load(unknown).Name = %q, want %q", got.Name, "default")
	}
	if got.Name != want.Name {
		t.Fatalf("Load(unknown) and Load(dark) diverge: %q vs %q", got.Name, want.Name)
	}
}

func TestLoadLightHasDistinctName(t *testing.T) {
	got := Load("light")
	if got.Name != "light" {
		t.Fatalf("Load(light).Name = %q, want %q", got.Name, "light")
	}
}

func TestLoadLightOverridesDefaultPalette(t *testing.T) {
	light := Load("light")
	dark := Load("dark")
	if light.Palette[highlight.StyleDefault] == dark.Palette[highlight.StyleDefault] {
		t.Fatalf("light and dark palettes should differ for StyleDefault")
	}
}

func TestSyntaxStylesCoversEveryConfiguredColor(t *testing.T) {
	colors := darkSyntaxColors()
	styles := syntaxStyles(colors)
	zero := lipgloss.NewStyle()
	for id := range colors {
		if reflect.DeepEqual(styles[id], zero) {
			t.Fatalf("syntaxStyles left StyleID %v at the zero style", id)
		}
	}
}
