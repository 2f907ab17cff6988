package modehandler

import (
	"errors"
	"strings"

	"github.com/bethropolis/tidemark/internal/find"
	"github.com/bethropolis/tidemark/internal/logger"
	"github.com/bethropolis/tidemark/internal/plugin"
	"github.com/bethropolis/tidemark/internal/selection"
)

var errNoSearch = errors.New("no previous search")

// findCommand returns the :find (forward) or :rfind handler. Without an
// argument the last pattern is repeated.
func (mh *ModeHandler) findCommand(forward bool) plugin.CommandFunc {
	return func(args []string) error {
		if len(args) > 0 {
			re, err := find.Compile(strings.Join(args, " "))
			if err != nil {
				return err
			}
			mh.lastSearch = re
		}
		return mh.findNext(forward)
	}
}

// findNext selects the next match of the last search pattern.
func (mh *ModeHandler) findNext(forward bool) error {
	if mh.lastSearch == nil {
		return errNoSearch
	}
	st := mh.session.Snapshot()
	matches := find.All(st.Doc, mh.lastSearch)
	m, ok := find.Next(st.Doc, st.Sel, mh.lastSearch, forward)
	if !ok {
		mh.statusBar.SetTemporaryMessage("Pattern not found: %s", mh.lastSearch)
		return nil
	}
	logger.DebugTagf("find", "ModeHandler: match in block %s at %d-%d", m.BlockKey, m.Start, m.End)
	if err := mh.session.Select(selection.Raw(m.Selection())); err != nil {
		return err
	}
	mh.statusBar.SetTemporaryMessage("Match %d of %d", indexOf(matches, m)+1, len(matches))
	return nil
}

func indexOf(matches []find.Match, m find.Match) int {
	for i, x := range matches {
		if x == m {
			return i
		}
	}
	return -1
}
