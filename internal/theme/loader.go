// internal/theme/loader.go
package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bethropolis/tidemark/internal/logger"
	"github.com/gdamore/tcell/v2"
)

// StyleDef is one [styles.<Name>] table. Unset fields inherit from the
// theme's Default style.
type StyleDef struct {
	Fg             *string `toml:"fg"`
	Bg             *string `toml:"bg"`
	Bold           *bool   `toml:"bold"`
	Italic         *bool   `toml:"italic"`
	Dim            *bool   `toml:"dim"`
	Reverse        *bool   `toml:"reverse"`
	Strikethrough  *bool   `toml:"strikethrough"`
	Underline      *string `toml:"underline"` // "single", "double", "curly", "dotted", "dashed" or "none"
	UnderlineColor *string `toml:"underline_color"`
}

// File is the layout of a theme file.
type File struct {
	Name   string              `toml:"name"`
	IsDark bool                `toml:"is_dark"`
	Styles map[string]StyleDef `toml:"styles"`
}

func ptr[T any](v T) *T { return &v }

// documentDefaults give every document style a visible form in themes that
// only set colors, so bold runs and headings never render as plain text.
var documentDefaults = map[string]StyleDef{
	"Heading":    {Bold: ptr(true), Underline: ptr("single")},
	"CodeBlock":  {},
	"Bold":       {Bold: ptr(true)},
	"RedLine":    {Underline: ptr("curly"), UnderlineColor: ptr("red")},
	"Underline":  {Underline: ptr("single")},
	"InlineCode": {Reverse: ptr(true)},
}

var underlineStyles = map[string]tcell.UnderlineStyle{
	"none":   tcell.UnderlineStyleNone,
	"single": tcell.UnderlineStyleSolid,
	"double": tcell.UnderlineStyleDouble,
	"curly":  tcell.UnderlineStyleCurly,
	"dotted": tcell.UnderlineStyleDotted,
	"dashed": tcell.UnderlineStyleDashed,
}

// LoadThemeFromFile reads a TOML theme. Styles that fail to parse are
// logged and skipped; the name defaults to the file name.
func LoadThemeFromFile(filePath string) (*Theme, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read theme %s: %w", filePath, err)
	}
	var file File
	meta, err := toml.Decode(string(data), &file)
	if err != nil {
		return nil, fmt.Errorf("parse theme %s: %w", filePath, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		logger.Warnf("Theme %s: unrecognized keys %v", filePath, undecoded)
	}
	if file.Name == "" {
		file.Name = strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	}
	th := file.Theme()
	logger.Debugf("Loaded theme '%s' from %s (%d styles)", th.Name, filePath, len(th.Styles))
	return th, nil
}

// Theme converts the file into a Theme. Document styles the file leaves
// out are derived from its Default style.
func (f File) Theme() *Theme {
	th := &Theme{Name: f.Name, IsDark: f.IsDark, Styles: make(map[string]tcell.Style)}

	base := tcell.StyleDefault
	if def, ok := f.Styles["Default"]; ok {
		style, err := def.apply(tcell.StyleDefault)
		if err != nil {
			logger.Warnf("Theme '%s': style 'Default': %v; using terminal default", f.Name, err)
		} else {
			base = style
		}
	}
	th.Styles["Default"] = base

	for name, def := range f.Styles {
		if name == "Default" {
			continue
		}
		style, err := def.apply(base)
		if err != nil {
			logger.Warnf("Theme '%s': style '%s' skipped: %v", f.Name, name, err)
			continue
		}
		th.Styles[name] = style
	}
	for name, def := range documentDefaults {
		if _, ok := th.Styles[name]; ok {
			continue
		}
		style, _ := def.apply(base)
		th.Styles[name] = style
	}
	return th
}

// apply layers the set fields of d over style.
func (d StyleDef) apply(style tcell.Style) (tcell.Style, error) {
	if d.Fg != nil {
		color, err := parseColorString(*d.Fg)
		if err != nil {
			return style, fmt.Errorf("fg: %w", err)
		}
		style = style.Foreground(color)
	}
	if d.Bg != nil {
		color, err := parseColorString(*d.Bg)
		if err != nil {
			return style, fmt.Errorf("bg: %w", err)
		}
		style = style.Background(color)
	}
	for _, attr := range []struct {
		set *bool
		fn  func(tcell.Style, bool) tcell.Style
	}{
		{d.Bold, tcell.Style.Bold},
		{d.Italic, tcell.Style.Italic},
		{d.Dim, tcell.Style.Dim},
		{d.Reverse, tcell.Style.Reverse},
		{d.Strikethrough, tcell.Style.StrikeThrough},
	} {
		if attr.set != nil {
			style = attr.fn(style, *attr.set)
		}
	}

	if d.Underline != nil || d.UnderlineColor != nil {
		ul := tcell.UnderlineStyleSolid
		if d.Underline != nil {
			var ok bool
			if ul, ok = underlineStyles[strings.ToLower(*d.Underline)]; !ok {
				return style, fmt.Errorf("unknown underline style '%s'", *d.Underline)
			}
		}
		params := []interface{}{ul}
		if d.UnderlineColor != nil {
			color, err := parseColorString(*d.UnderlineColor)
			if err != nil {
				return style, fmt.Errorf("underline_color: %w", err)
			}
			params = append(params, color)
		}
		style = style.Underline(params...)
	}
	return style, nil
}

// parseColorString converts "#rrggbb", a W3C color name, "reset" or
// "default" to a tcell.Color.
func parseColorString(s string) (tcell.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "reset":
		return tcell.ColorReset, nil
	case "default":
		return tcell.ColorDefault, nil
	}
	if strings.HasPrefix(s, "#") {
		if len(s) != 7 {
			return tcell.ColorDefault, fmt.Errorf("invalid hex color '%s', want #rrggbb", s)
		}
		val, err := strconv.ParseInt(s[1:], 16, 32)
		if err != nil {
			return tcell.ColorDefault, fmt.Errorf("invalid hex color '%s': %w", s, err)
		}
		return tcell.NewHexColor(int32(val)), nil
	}
	if color, ok := tcell.ColorNames[s]; ok {
		return color, nil
	}
	return tcell.ColorDefault, fmt.Errorf("unknown color '%s'", s)
}
