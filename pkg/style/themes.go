// Package style renders the installer's terminal output: one status line
// per pipeline step, notes, and error blocks.
//
// Styles use semantic names and adaptive colors loaded from an embedded
// YAML theme. Output downgrades to plain text when stderr/stdout is not a
// terminal or NO_COLOR is set.
package style

import (
	_ "embed"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

//go:embed theme.yaml
var themeYAML []byte

// ColorDef is an adaptive color definition in the theme
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef is a style definition in the theme
type StyleDef struct {
	Bold        bool   `yaml:"bold,omitempty"`
	Italic      bool   `yaml:"italic,omitempty"`
	Underline   bool   `yaml:"underline,omitempty"`
	Foreground  string `yaml:"foreground,omitempty"`
	Background  string `yaml:"background,omitempty"`
	Width       int    `yaml:"width,omitempty"`
	PaddingLeft int    `yaml:"paddingLeft,omitempty"`
}

// Theme is the full theme schema
type Theme struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

var registry map[string]lipgloss.Style

func init() {
	reg, err := loadTheme(themeYAML)
	if err != nil {
		// The embedded theme is part of the binary; failing to parse it
		// is a build defect, not a runtime condition.
		panic(fmt.Sprintf("style: embedded theme does not parse: %v", err))
	}
	registry = reg
}

// loadTheme parses a theme and builds the style registry
func loadTheme(data []byte) (map[string]lipgloss.Style, error) {
	var theme Theme
	if err := yaml.Unmarshal(data, &theme); err != nil {
		return nil, err
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(theme.Colors))
	for name, def := range theme.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	reg := make(map[string]lipgloss.Style, len(theme.Styles))
	for name, def := range theme.Styles {
		reg[name] = buildStyle(def, colors)
	}
	return reg, nil
}

func buildStyle(def StyleDef, colors map[string]lipgloss.AdaptiveColor) lipgloss.Style {
	s := lipgloss.NewStyle()

	if def.Bold {
		s = s.Bold(true)
	}
	if def.Italic {
		s = s.Italic(true)
	}
	if def.Underline {
		s = s.Underline(true)
	}
	if def.Foreground != "" {
		if c, ok := colors[def.Foreground]; ok {
			s = s.Foreground(c)
		}
	}
	if def.Background != "" {
		if c, ok := colors[def.Background]; ok {
			s = s.Background(c)
		}
	}
	if def.Width > 0 {
		s = s.Width(def.Width)
	}
	if def.PaddingLeft > 0 {
		s = s.PaddingLeft(def.PaddingLeft)
	}
	return s
}

// GetStyle returns the named style, or a zero style for unknown names
func GetStyle(name string) lipgloss.Style {
	if s, ok := registry[name]; ok {
		return s
	}
	return lipgloss.NewStyle()
}
