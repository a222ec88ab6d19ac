// Package input decodes raw terminal byte streams into structured keyboard
// and mouse events, bracketed paste, focus, and capability-probe replies,
// generalized from the teacher's byte-oriented CSI/SS3 key decoder (tui's
// input.go/key.go) into a synchronous Decoder that can be fed arbitrary
// chunks and tested without relying on wall-clock timeouts.
package input

// KeyEvent is one decoded keyboard event, per spec §4.4.
type KeyEvent struct {
	Name      string // e.g. "up", "a", "f5", "enter"
	Sequence  string // raw bytes that produced this event
	Shift     bool
	Ctrl      bool
	Meta      bool
	HasCodePoint bool
	CodePoint rune
	EventType KeyEventType // press/release/repeat, only meaningful under Kitty protocol
}

// KeyEventType distinguishes Kitty keyboard protocol press/release/repeat.
type KeyEventType int

const (
	KeyPress KeyEventType = iota
	KeyRelease
	KeyRepeat
)

// MouseEventType is the kind of a MouseEvent.
type MouseEventType int

const (
	MouseDown MouseEventType = iota
	MouseUp
	MouseMove
	MouseDrag
	MouseScroll
)

// MouseEvent is one decoded SGR mouse report, per spec §4.4.
type MouseEvent struct {
	Type         MouseEventType
	Button       int
	X, Y         int
	Shift, Ctrl, Alt bool
	HasScrollDelta bool
	ScrollDelta    int
}

// PasteEvent carries the full text between bracketed-paste markers.
type PasteEvent struct {
	Text string
}

// FocusEvent reports a terminal focus in/out transition.
type FocusEvent struct {
	Focused bool
}

// Capabilities is the snapshot built from capability-probe replies, per
// spec §4.4.
type Capabilities struct {
	KittyKeyboard  bool
	KittyGraphics  bool
	RGB            bool
	Unicode        string // "wcwidth" or "unicode"
	SGRPixels      bool
	FocusTracking  bool
	BracketedPaste bool
	Sync           bool
	Hyperlinks     bool
}

// Event is the union of everything a Decoder can emit. Exactly one of the
// typed fields is non-nil/meaningful per event; Kind says which.
type Event struct {
	Kind EventKind
	Key  KeyEvent
	Mouse MouseEvent
	Paste PasteEvent
	Focus FocusEvent
}

// EventKind discriminates an Event's payload.
type EventKind int

const (
	EventKey EventKind = iota
	EventMouse
	EventPaste
	EventFocus
)
