// Package render provides output renderers for resusage's report patterns.
package render

import "github.com/dkoosis/resusage/pkg/pattern"

// Renderer converts patterns to formatted output.
type Renderer interface {
	Render(patterns []pattern.Pattern) string
}

// ForMode returns the renderer for a resolved output mode
// ("terminal", "llm" or "json").
func ForMode(mode, themeName string, width int) Renderer {
	switch mode {
	case "json":
		return NewJSON()
	case "llm":
		return NewLLM()
	default:
		return NewTerminal(ThemeByName(themeName), width)
	}
}
