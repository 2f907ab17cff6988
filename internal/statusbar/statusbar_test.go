package statusbar

import (
	"strings"
	"testing"
	"time"

	"github.com/bethropolis/tidemark/internal/theme"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayText(t *testing.T) {
	sb := New(ConfigFromTheme(&theme.TidemarkDark))
	sb.SetCaretInfo("heading", 0, 3, 4)
	assert.Equal(t, "[No Slot] -- heading 1/3, Col: 5", sb.Text())

	sb.SetDocumentInfo("notes", true)
	assert.Equal(t, "notes [Modified] -- heading 1/3, Col: 5", sb.Text())

	sb.SetTemporaryMessage("Content saved successfully!")
	assert.Equal(t, "Content saved successfully!", sb.Text())

	sb.SetPrompt(":wc", true)
	assert.Equal(t, ":wc", sb.Text())
	sb.SetPrompt("", false)
	assert.Equal(t, "Content saved successfully!", sb.Text())
}

func TestMessagesExpire(t *testing.T) {
	sb := New(Config{MessageTimeout: 10 * time.Millisecond})
	sb.SetDocumentInfo("s", false)
	sb.SetErrorMessage("boom")
	assert.Equal(t, "boom", sb.Text())
	time.Sleep(20 * time.Millisecond)
	assert.True(t, strings.HasPrefix(sb.Text(), "s --"))
}

func TestDrawShowsModeBadge(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(40, 2)

	sb := New(ConfigFromTheme(&theme.TidemarkDark))
	sb.SetDocumentInfo("doc", false)
	sb.SetCaretInfo("body", 0, 1, 0)
	sb.SetMode("bold")
	sb.Draw(screen, 40, 2)
	screen.Show()

	cells, width, _ := screen.GetContents()
	var row strings.Builder
	for x := 0; x < width; x++ {
		c := cells[width+x]
		if len(c.Runes) > 0 {
			row.WriteRune(c.Runes[0])
		}
	}
	line := row.String()
	assert.True(t, strings.HasPrefix(line, "doc -- body 1/1, Col: 1"), line)
	assert.True(t, strings.HasSuffix(line, " BOLD "), line)
}
