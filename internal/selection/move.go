package selection

import (
	"fmt"

	"github.com/bethropolis/tidemark/internal/document"
)

// Direction is a caret movement.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
	Home
	End
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	case Home:
		return "home"
	case End:
		return "end"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Move returns the caret after moving from the focus of sel. A non-collapsed
// selection collapses to the side the move points at. Moving past the
// document edges leaves the caret where it is.
func Move(doc *document.Document, sel Selection, dir Direction) (Selection, error) {
	b, err := Validate(doc, sel)
	if err != nil {
		return Selection{}, err
	}
	_, idx, _ := doc.BlockByKey(sel.BlockKey)

	if !sel.IsCollapsed() {
		switch dir {
		case Left:
			return Collapsed(b.Key, sel.Start()), nil
		case Right:
			return Collapsed(b.Key, sel.End()), nil
		}
	}

	off := sel.Focus
	switch dir {
	case Left:
		if off > 0 {
			return Collapsed(b.Key, PrevBoundary(b.Text, off)), nil
		}
		if idx > 0 {
			prev := doc.BlockAt(idx - 1)
			return Collapsed(prev.Key, prev.Len()), nil
		}
	case Right:
		if off < b.Len() {
			return Collapsed(b.Key, NextBoundary(b.Text, off)), nil
		}
		if idx < doc.Len()-1 {
			return Collapsed(doc.BlockAt(idx+1).Key, 0), nil
		}
	case Up:
		if idx > 0 {
			prev := doc.BlockAt(idx - 1)
			return Collapsed(prev.Key, min(off, prev.Len())), nil
		}
		return Collapsed(b.Key, 0), nil
	case Down:
		if idx < doc.Len()-1 {
			next := doc.BlockAt(idx + 1)
			return Collapsed(next.Key, min(off, next.Len())), nil
		}
		return Collapsed(b.Key, b.Len()), nil
	case Home:
		return Collapsed(b.Key, 0), nil
	case End:
		return Collapsed(b.Key, b.Len()), nil
	}
	return sel.Caret(), nil
}
