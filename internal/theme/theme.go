// Package theme decodes a configured theme name into the concrete color
// styles internal/render and internal/htmlexport need, so AppConfig.Theme
// can stay a plain string while still driving both the terminal and HTML
// export renderers from one palette.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/quickdiff/quickdiff/internal/highlight"
	"github.com/quickdiff/quickdiff/internal/htmlexport"
	"github.com/quickdiff/quickdiff/internal/render"
)

// Theme bundles the terminal Styles and HTML export Palette derived from
// one named color scheme.
type Theme struct {
	Name    string
	Styles  render.Styles
	Palette htmlexport.Palette
}

// Load resolves name to a built-in Theme, falling back to "default" for an
// unrecognized name rather than failing — a bad theme name degrades the
// color scheme, not the program.
func Load(name string) Theme {
	switch name {
	case "light":
		return light()
	default:
		return dark()
	}
}

func dark() Theme {
	styles := render.Styles{
		Gutter:      lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		DiffDelete:  lipgloss.NewStyle().Background(lipgloss.Color("52")),
		DiffInsert:  lipgloss.NewStyle().Background(lipgloss.Color("22")),
		DiffDimDel:  lipgloss.NewStyle().Background(lipgloss.Color("53")).Faint(true),
		DiffDimIns:  lipgloss.NewStyle().Background(lipgloss.Color("23")).Faint(true),
		InlineDel:   lipgloss.NewStyle().Background(lipgloss.Color("88")).Bold(true),
		InlineIns:   lipgloss.NewStyle().Background(lipgloss.Color("28")).Bold(true),
		ScopeHeader: lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
	}
	styles.Syntax = syntaxStyles(darkSyntaxColors())

	return Theme{Name: "default", Styles: styles, Palette: htmlexport.DefaultPalette()}
}

func light() Theme {
	styles := render.Styles{
		Gutter:      lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		DiffDelete:  lipgloss.NewStyle().Background(lipgloss.Color("224")),
		DiffInsert:  lipgloss.NewStyle().Background(lipgloss.Color("194")),
		DiffDimDel:  lipgloss.NewStyle().Background(lipgloss.Color("223")).Faint(true),
		DiffDimIns:  lipgloss.NewStyle().Background(lipgloss.Color("193")).Faint(true),
		InlineDel:   lipgloss.NewStyle().Background(lipgloss.Color("203")).Bold(true),
		InlineIns:   lipgloss.NewStyle().Background(lipgloss.Color("41")).Bold(true),
		ScopeHeader: lipgloss.NewStyle().Foreground(lipgloss.Color("25")).Bold(true),
	}
	styles.Syntax = syntaxStyles(lightSyntaxColors())

	palette := htmlexport.DefaultPalette()
	palette[highlight.StyleDefault] = "#1e1e1e"
	palette[highlight.StyleKeyword] = "#0000ff"
	palette[highlight.StyleString] = "#a31515"
	palette[highlight.StyleComment] = "#008000"

	return Theme{Name: "light", Styles: styles, Palette: palette}
}

func syntaxStyles(colors map[highlight.StyleID]string) [highlight.StyleAttribute + 1]lipgloss.Style {
	var styles [highlight.StyleAttribute + 1]lipgloss.Style
	for id, color := range colors {
		styles[id] = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}
	return styles
}

func darkSyntaxColors() map[highlight.StyleID]string {
	return map[highlight.StyleID]string{
		highlight.StyleDefault:     "#d4d4d4",
		highlight.StyleKeyword:     "#569cd6",
		highlight.StyleType:        "#4ec9b0",
		highlight.StyleFunction:    "#dcdcaa",
		highlight.StyleString:      "#ce9178",
		highlight.StyleNumber:      "#b5cea8",
		highlight.StyleComment:     "#6a9955",
		highlight.StyleOperator:    "#d4d4d4",
		highlight.StylePunctuation: "#d4d4d4",
		highlight.StyleVariable:    "#9cdcfe",
		highlight.StyleConstant:    "#4fc1ff",
		highlight.StyleProperty:    "#9cdcfe",
		highlight.StyleAttribute:   "#9cdcfe",
	}
}

func lightSyntaxColors() map[highlight.StyleID]string {
	return map[highlight.StyleID]string{
		highlight.StyleDefault:     "#1e1e1e",
		highlight.StyleKeyword:     "#0000ff",
		highlight.StyleType:        "#267f99",
		highlight.StyleFunction:    "#795e26",
		highlight.StyleString:      "#a31515",
		highlight.StyleNumber:      "#098658",
		highlight.StyleComment:     "#008000",
		highlight.StyleOperator:    "#1e1e1e",
		highlight.StylePunctuation: "#1e1e1e",
		highlight.StyleVariable:    "#001080",
		highlight.StyleConstant:    "#0070c1",
		highlight.StyleProperty:    "#001080",
		highlight.StyleAttribute:   "#001080",
	}
}
