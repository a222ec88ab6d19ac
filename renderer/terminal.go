package renderer

import (
	"os"

	"golang.org/x/term"
)

// termState wraps the raw-mode snapshot needed to restore the terminal on
// teardown, mirroring the screen package's own State wrapper.
type termState struct {
	state *term.State
}

func enableRawMode(f *os.File) (*termState, error) {
	old, err := term.MakeRaw(int(f.Fd()))
	if err != nil {
		return nil, err
	}
	return &termState{state: old}, nil
}

func disableRawMode(f *os.File, s *termState) error {
	if s == nil || s.state == nil {
		return nil
	}
	return term.Restore(int(f.Fd()), s.state)
}

const (
	seqEnterAltScreen    = "\x1b[?1049h"
	seqLeaveAltScreen    = "\x1b[?1049l"
	seqHideCursor        = "\x1b[?25l"
	seqShowCursor        = "\x1b[?25h"
	seqMouseSGR          = "\x1b[?1000h"
	seqMouseSGROff       = "\x1b[?1000l"
	seqMouseDrag         = "\x1b[?1002h"
	seqMouseDragOff      = "\x1b[?1002l"
	seqMouseMove         = "\x1b[?1003h"
	seqMouseMoveOff      = "\x1b[?1003l"
	seqMouseSGREnc       = "\x1b[?1006h"
	seqMouseSGREncOff    = "\x1b[?1006l"
	seqKittyKeyboardOn   = "\x1b[>1u"
	seqKittyKeyboardOff  = "\x1b[<u"
	seqFocusTrackingOn   = "\x1b[?1004h"
	seqFocusTrackingOff  = "\x1b[?1004l"
	seqBracketedPasteOn  = "\x1b[?2004h"
	seqBracketedPasteOff = "\x1b[?2004l"
	seqSGRReset          = "\x1b[0m"
)

func titleSeq(title string) string {
	return "\x1b]0;" + title + "\x07"
}
