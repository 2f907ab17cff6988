package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStyleFallsBack(t *testing.T) {
	th := &TidemarkDark
	assert.Equal(t, th.Styles["keyword"], th.GetStyle("keyword.control"))
	assert.Equal(t, th.Styles["Default"], th.GetStyle("no-such-style"))
	assert.Equal(t, tcell.StyleDefault, (&Theme{Name: "bare"}).GetStyle("x"))
}

func TestLoadThemeFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paper.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
name = "Paper"
[styles.Default]
fg = "#101010"
bg = "white"
[styles.Bold]
bold = true
[styles.Broken]
fg = "not-a-color"
`), 0o644))

	th, err := LoadThemeFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Paper", th.Name)

	fg, bg, attrs := th.GetStyle("Bold").Decompose()
	assert.Equal(t, tcell.NewHexColor(0x101010), fg)
	assert.Equal(t, tcell.ColorWhite, bg)
	assert.NotZero(t, attrs&tcell.AttrBold)
	assert.NotContains(t, th.Styles, "Broken")
}

func TestLoadedThemeKeepsDocumentStyles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ink.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[styles.Default]
fg = "#202020"
[styles.InlineCode]
bg = "silver"
[styles.Deleted]
strikethrough = true
dim = true
[styles.Squiggle]
underline = "wavy"
`), 0o644))

	th, err := LoadThemeFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ink", th.Name)
	base := th.Styles["Default"]

	assert.Equal(t, base.Bold(true), th.GetStyle("Bold"))
	assert.Equal(t, base.Bold(true).Underline(tcell.UnderlineStyleSolid), th.GetStyle("Heading"))
	assert.Equal(t, base.Underline(tcell.UnderlineStyleCurly, tcell.ColorRed), th.GetStyle("RedLine"))
	assert.Equal(t, base, th.GetStyle("CodeBlock"))
	// Styles the file sets win over the derived ones.
	assert.Equal(t, base.Background(tcell.ColorSilver), th.GetStyle("InlineCode"))

	_, _, attrs := th.GetStyle("Deleted").Decompose()
	assert.NotZero(t, attrs&tcell.AttrStrikeThrough)
	assert.NotZero(t, attrs&tcell.AttrDim)
	assert.NotContains(t, th.Styles, "Squiggle")
}

func TestManager(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mono.toml"), []byte("[styles.Default]\nfg = \"reset\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644))

	m, err := NewManager(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultThemeName, m.Current().Name)
	assert.Equal(t, []string{"Tidemark Dark", "Tidemark Light", "mono"}, m.ListThemes())

	require.NoError(t, m.SetTheme("MONO"))
	assert.Equal(t, "mono", m.Current().Name)
	assert.Error(t, m.SetTheme("missing"))

	m, err = NewManager(filepath.Join(dir, "absent"))
	require.NoError(t, err)
	assert.Len(t, m.ListThemes(), 2)
}
