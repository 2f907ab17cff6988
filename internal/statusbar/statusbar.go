// internal/statusbar/statusbar.go
package statusbar

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bethropolis/tidemark/internal/theme"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg" // For proper Unicode width calculation
)

// DefaultMessageTimeout is how long a temporary message stays visible.
const DefaultMessageTimeout = 4 * time.Second

// Config defines the appearance and behavior of the status bar.
type Config struct {
	StyleDefault   tcell.Style // Default background/foreground
	StyleModified  tcell.Style // Style for the modified indicator
	StyleMessage   tcell.Style // Style for temporary messages
	StyleError     tcell.Style // Style for error messages
	StylePrompt    tcell.Style // Style for the command prompt
	StyleMode      tcell.Style // Style for the inline mode badge
	MessageTimeout time.Duration
}

// ConfigFromTheme takes the status bar styles from t.
func ConfigFromTheme(t *theme.Theme) Config {
	return Config{
		StyleDefault:   t.GetStyle("StatusBar"),
		StyleModified:  t.GetStyle("StatusBarModified"),
		StyleMessage:   t.GetStyle("StatusBarMessage"),
		StyleError:     t.GetStyle("StatusBarError"),
		StylePrompt:    t.GetStyle("StatusBarPrompt"),
		StyleMode:      t.GetStyle("StatusBarMode"),
		MessageTimeout: DefaultMessageTimeout,
	}
}

// StatusBar represents the UI component for the status line.
type StatusBar struct {
	config Config
	mu     sync.RWMutex // Protect access to text fields

	// Content fields (updated from session events)
	slot       string
	isModified bool
	blockType  string
	blockIndex int // 0-based
	blockCount int
	offset     int // caret offset in runes
	mode       string

	// Prompt state; while active it replaces everything else
	prompt       string
	promptActive bool

	// Temporary message state
	tempMessage     string
	tempIsError     bool
	tempMessageTime time.Time
}

// New creates a new StatusBar with the given configuration.
func New(config Config) *StatusBar {
	if config.MessageTimeout <= 0 {
		config.MessageTimeout = DefaultMessageTimeout
	}
	return &StatusBar{config: config}
}

// SetConfig replaces the styles, e.g. after a theme change.
func (sb *StatusBar) SetConfig(config Config) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if config.MessageTimeout <= 0 {
		config.MessageTimeout = sb.config.MessageTimeout
	}
	sb.config = config
}

// SetDocumentInfo updates the slot name and modified flag.
func (sb *StatusBar) SetDocumentInfo(slot string, modified bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.slot = slot
	sb.isModified = modified
}

// SetCaretInfo updates the caret position shown.
func (sb *StatusBar) SetCaretInfo(blockType string, blockIndex, blockCount, offset int) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.blockType = blockType
	sb.blockIndex = blockIndex
	sb.blockCount = blockCount
	sb.offset = offset
}

// SetMode updates the inline mode badge. An empty mode hides it.
func (sb *StatusBar) SetMode(mode string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.mode = mode
}

// SetPrompt shows text as an input prompt, or hides the prompt.
func (sb *StatusBar) SetPrompt(text string, active bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.prompt = text
	sb.promptActive = active
}

// SetTemporaryMessage displays a message for a configured duration.
func (sb *StatusBar) SetTemporaryMessage(format string, args ...interface{}) {
	sb.setMessage(false, format, args...)
}

// SetErrorMessage displays an error for a configured duration.
func (sb *StatusBar) SetErrorMessage(format string, args ...interface{}) {
	sb.setMessage(true, format, args...)
}

func (sb *StatusBar) setMessage(isError bool, format string, args ...interface{}) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.tempMessage = fmt.Sprintf(format, args...)
	sb.tempIsError = isError
	sb.tempMessageTime = time.Now()
}

// ResetTemporaryMessage clears any temporary message being displayed
func (sb *StatusBar) ResetTemporaryMessage() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.tempMessage = ""
	sb.tempMessageTime = time.Time{}
}

// getDefaultDisplayText builds the default status line text. Callers hold
// the lock.
func (sb *StatusBar) getDefaultDisplayText() string {
	slot := sb.slot
	if slot == "" {
		slot = "[No Slot]"
	}
	modifiedIndicator := ""
	if sb.isModified {
		modifiedIndicator = " [Modified]"
	}
	return fmt.Sprintf("%s%s -- %s %d/%d, Col: %d",
		slot, modifiedIndicator, sb.blockType, sb.blockIndex+1, sb.blockCount, sb.offset+1)
}

// Text returns the line as it would be drawn now, without the mode badge.
func (sb *StatusBar) Text() string {
	text, _, _ := sb.current()
	return text
}

// current picks the text and style to draw, expiring stale messages.
func (sb *StatusBar) current() (string, tcell.Style, string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.promptActive {
		return sb.prompt, sb.config.StylePrompt, ""
	}
	isTempMsgActive := !sb.tempMessageTime.IsZero() && time.Since(sb.tempMessageTime) <= sb.config.MessageTimeout
	if !sb.tempMessageTime.IsZero() && !isTempMsgActive {
		sb.tempMessage = ""
		sb.tempMessageTime = time.Time{}
	}
	if isTempMsgActive {
		if sb.tempIsError {
			return sb.tempMessage, sb.config.StyleError, sb.mode
		}
		return sb.tempMessage, sb.config.StyleMessage, sb.mode
	}
	if sb.isModified {
		return sb.getDefaultDisplayText(), sb.config.StyleModified, sb.mode
	}
	return sb.getDefaultDisplayText(), sb.config.StyleDefault, sb.mode
}

// Draw renders the status bar onto the last screen row.
func (sb *StatusBar) Draw(screen tcell.Screen, width, height int) {
	if height <= 0 || width <= 0 {
		return
	}
	y := height - 1
	text, style, mode := sb.current()

	sb.mu.RLock()
	modeStyle := sb.config.StyleMode
	fillStyle := sb.config.StyleDefault
	sb.mu.RUnlock()

	for x := 0; x < width; x++ {
		screen.SetContent(x, y, ' ', nil, fillStyle)
	}

	limit := width
	if mode != "" {
		badge := " " + strings.ToUpper(mode) + " "
		badgeWidth := uniseg.StringWidth(badge)
		if badgeWidth < width {
			drawText(screen, width-badgeWidth, y, width, badge, modeStyle)
			limit = width - badgeWidth - 1
		}
	}
	drawText(screen, 0, y, limit, text, style)
}

// drawText draws text from x until maxX, one grapheme cluster per cell run.
func drawText(screen tcell.Screen, x, y, maxX int, text string, style tcell.Style) {
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusterWidth := gr.Width()
		if x+clusterWidth > maxX {
			break // Stop if cluster doesn't fit
		}
		runes := gr.Runes()
		if len(runes) > 0 {
			screen.SetContent(x, y, runes[0], runes[1:], style)
		}
		x += clusterWidth
	}
}
