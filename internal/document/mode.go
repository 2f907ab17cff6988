package document

// Mode is the exclusive inline mode active at the caret. Characters typed
// while a mode is active carry exactly that mode's style.
type Mode int

const (
	ModeNone Mode = iota
	ModeBold
	ModeRedLine
	ModeUnderline
	ModeCodeBlock
)

func (m Mode) String() string {
	if st, ok := m.Style(); ok {
		return st.String()
	}
	return "none"
}

// Style returns the tag carried by the mode. ModeNone carries none.
func (m Mode) Style() (Style, bool) {
	switch m {
	case ModeBold:
		return Bold, true
	case ModeRedLine:
		return RedLine, true
	case ModeUnderline:
		return Underline, true
	case ModeCodeBlock:
		return CodeBlock, true
	}
	return 0, false
}

// Styles returns the style set applied to characters typed in this mode.
func (m Mode) Styles() StyleSet {
	if st, ok := m.Style(); ok {
		return SetOf(st)
	}
	return 0
}

// ModeFor returns the mode carrying st.
func ModeFor(st Style) Mode {
	switch st {
	case Bold:
		return ModeBold
	case RedLine:
		return ModeRedLine
	case Underline:
		return ModeUnderline
	case CodeBlock:
		return ModeCodeBlock
	}
	return ModeNone
}

// ModeOf picks a single mode for a stored style set. Sets loaded from
// storage may hold several tags; the first in AllStyles order wins.
func ModeOf(set StyleSet) Mode {
	for _, st := range AllStyles {
		if set.Has(st) {
			return ModeFor(st)
		}
	}
	return ModeNone
}
