// internal/theme/theme.go
package theme

import (
	"strings"

	"github.com/bethropolis/tidemark/internal/logger"
	"github.com/gdamore/tcell/v2"
)

// Theme maps style names to terminal styles. Document styles are named
// after the inline styles and block types ("Bold", "RedLine", "Underline",
// "InlineCode", "Heading", "CodeBlock"); syntax styles use capture names
// ("keyword", "string.special").
type Theme struct {
	Name   string
	IsDark bool
	Styles map[string]tcell.Style
}

// GetStyle looks up name, then its base name (part before the first dot),
// then "Default".
func (t *Theme) GetStyle(name string) tcell.Style {
	if style, ok := t.Styles[name]; ok {
		return style
	}

	if dotIndex := strings.Index(name, "."); dotIndex != -1 {
		if style, ok := t.Styles[name[:dotIndex]]; ok {
			return style
		}
	}

	if defStyle, ok := t.Styles["Default"]; ok {
		return defStyle
	}

	logger.Warnf("Theme '%s': Style '%s' and 'Default' style not found, using tcell default.", t.Name, name)
	return tcell.StyleDefault
}

// palette holds the colors a built-in theme is made from.
type palette struct {
	background, foreground, muted          tcell.Color
	red, orange, yellow, green, cyan, blue tcell.Color
	codeBackground                         tcell.Color
}

func newBuiltin(name string, dark bool, p palette) Theme {
	base := tcell.StyleDefault.Background(tcell.ColorReset).Foreground(p.foreground)
	code := base.Background(p.codeBackground)
	return Theme{
		Name:   name,
		IsDark: dark,
		Styles: map[string]tcell.Style{
			// --- UI Elements ---
			"Default":           base,
			"Selection":         base.Reverse(true),
			"Gutter":            base.Foreground(p.muted),
			"StatusBar":         tcell.StyleDefault.Background(p.background).Foreground(p.foreground),
			"StatusBarModified": tcell.StyleDefault.Background(p.background).Foreground(p.yellow),
			"StatusBarMessage":  tcell.StyleDefault.Background(p.background).Foreground(p.foreground).Bold(true),
			"StatusBarMode":     tcell.StyleDefault.Background(p.blue).Foreground(p.background).Bold(true),
			"StatusBarPrompt":   tcell.StyleDefault.Background(p.background).Foreground(p.green).Bold(true),
			"StatusBarError":    tcell.StyleDefault.Background(p.background).Foreground(p.red).Bold(true),

			// --- Document ---
			"Heading":    base.Bold(true).Underline(true),
			"CodeBlock":  code,
			"Bold":       base.Bold(true),
			"RedLine":    base.Underline(tcell.UnderlineStyleCurly, p.red),
			"Underline":  base.Underline(true),
			"InlineCode": code.Foreground(p.orange),

			// --- Syntax Highlighting (code blocks) ---
			"keyword":  code.Foreground(p.blue).Bold(true),
			"string":   code.Foreground(p.green),
			"comment":  code.Foreground(p.muted).Italic(true),
			"number":   code.Foreground(p.orange),
			"type":     code.Foreground(p.cyan),
			"function": code.Foreground(p.yellow),
			"constant": code.Foreground(p.orange),

			"string.special":   code.Foreground(p.cyan),
			"function.builtin": code.Foreground(p.cyan).Italic(true),
		},
	}
}

// TidemarkDark is the default theme.
var TidemarkDark = newBuiltin("Tidemark Dark", true, palette{
	background:     tcell.NewHexColor(0x2a2f38),
	foreground:     tcell.NewHexColor(0xc5cdd9),
	muted:          tcell.NewHexColor(0x5c6370),
	red:            tcell.NewHexColor(0xe06c75),
	orange:         tcell.NewHexColor(0xd19a66),
	yellow:         tcell.NewHexColor(0xe5c07b),
	green:          tcell.NewHexColor(0x98c379),
	cyan:           tcell.NewHexColor(0x56b6c2),
	blue:           tcell.NewHexColor(0x61afef),
	codeBackground: tcell.NewHexColor(0x21252b),
})

// TidemarkLight is the built-in light theme.
var TidemarkLight = newBuiltin("Tidemark Light", false, palette{
	background:     tcell.NewHexColor(0xe5e5e6),
	foreground:     tcell.NewHexColor(0x383a42),
	muted:          tcell.NewHexColor(0xa0a1a7),
	red:            tcell.NewHexColor(0xe45649),
	orange:         tcell.NewHexColor(0x986801),
	yellow:         tcell.NewHexColor(0xc18401),
	green:          tcell.NewHexColor(0x50a14f),
	cyan:           tcell.NewHexColor(0x0184bc),
	blue:           tcell.NewHexColor(0x4078f2),
	codeBackground: tcell.NewHexColor(0xf0f0f1),
})
