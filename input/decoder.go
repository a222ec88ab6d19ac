package input

import "strconv"

// Decoder is a synchronous byte-stream parser: Feed appends bytes and
// returns every event that became decodable, buffering any trailing
// incomplete sequence for the next call. This replaces the teacher's
// goroutine-plus-timeout disambiguation of a bare ESC with an explicit
// Flush, so a decoder can be driven deterministically in tests (S6, S7,
// invariant 10) without depending on wall-clock races.
type Decoder struct {
	pending  []byte
	inPaste  bool
	pasteBuf []byte
}

// NewDecoder creates an empty decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends data to the decoder's buffer and decodes as many complete
// events as possible.
func (d *Decoder) Feed(data []byte) []Event {
	d.pending = append(d.pending, data...)
	var events []Event
	for {
		if d.inPaste {
			if !d.consumePaste(&events) {
				break
			}
			continue
		}
		n, ev, ok := d.tryDecodeOne(d.pending)
		if !ok {
			break
		}
		if ev != nil {
			events = append(events, *ev)
		}
		d.pending = d.pending[n:]
	}
	return events
}

// Flush resolves a lone buffered ESC byte (no follow-up arrived) into a
// bare Escape key event. Callers drive this after their own idle timeout,
// mirroring the teacher's processEsc disambiguation window.
func (d *Decoder) Flush() []Event {
	if d.inPaste || len(d.pending) == 0 {
		return nil
	}
	if d.pending[0] == 0x1b && len(d.pending) == 1 {
		d.pending = nil
		return []Event{{Kind: EventKey, Key: KeyEvent{Name: "escape", Sequence: "\x1b"}}}
	}
	return nil
}

const pasteEndMarker = "\x1b[201~"

func (d *Decoder) consumePaste(events *[]Event) bool {
	idx := indexOf(d.pending, pasteEndMarker)
	if idx < 0 {
		if len(d.pending) > len(pasteEndMarker) {
			keep := len(pasteEndMarker) - 1
			d.pasteBuf = append(d.pasteBuf, d.pending[:len(d.pending)-keep]...)
			d.pending = d.pending[len(d.pending)-keep:]
		}
		return false
	}
	d.pasteBuf = append(d.pasteBuf, d.pending[:idx]...)
	d.pending = d.pending[idx+len(pasteEndMarker):]
	d.inPaste = false
	*events = append(*events, Event{Kind: EventPaste, Paste: PasteEvent{Text: string(d.pasteBuf)}})
	d.pasteBuf = nil
	return true
}

// tryDecodeOne attempts to decode exactly one event from buf. ok is false
// when buf holds an incomplete sequence and the caller should wait for
// more bytes.
func (d *Decoder) tryDecodeOne(buf []byte) (consumed int, ev *Event, ok bool) {
	if len(buf) == 0 {
		return 0, nil, false
	}

	b := buf[0]
	if b != 0x1b {
		return decodePlainByte(buf)
	}

	if len(buf) < 2 {
		return 0, nil, false // ambiguous bare ESC; wait for Flush
	}

	switch buf[1] {
	case '[':
		return d.decodeCSI(buf)
	case 'O':
		return decodeSS3(buf)
	default:
		// Alt+key.
		r, size := decodeRune(buf[1:])
		return 1 + size, keyEvent(string(buf[:1+size]), string([]rune{r}), false, false, true, r), true
	}
}

func decodePlainByte(buf []byte) (int, *Event, bool) {
	b := buf[0]
	switch {
	case b == 0x0d || b == 0x0a:
		return 1, keyEvent(string(buf[:1]), "enter", false, false, false, 0), true
	case b == 0x09:
		return 1, keyEvent(string(buf[:1]), "tab", false, false, false, 0), true
	case b == 0x08 || b == 0x7f:
		return 1, keyEvent(string(buf[:1]), "backspace", false, false, false, 0), true
	case b == 0x00:
		return 1, keyEvent(string(buf[:1]), "space", false, true, false, ' '), true
	case b <= 0x1f:
		r := rune(b + 0x60)
		return 1, keyEventRune(string(buf[:1]), r, false, true, false), true
	default:
		r, size := decodeRune(buf)
		return size, keyEventRune(string(buf[:size]), r, false, false, false), true
	}
}

func keyEvent(seq, name string, shift, ctrl, meta bool, cp rune) *Event {
	return &Event{Kind: EventKey, Key: KeyEvent{
		Name: name, Sequence: seq, Shift: shift, Ctrl: ctrl, Meta: meta,
		HasCodePoint: cp != 0, CodePoint: cp,
	}}
}

func keyEventRune(seq string, r rune, shift, ctrl, meta bool) *Event {
	return &Event{Kind: EventKey, Key: KeyEvent{
		Name: string(r), Sequence: seq, Shift: shift, Ctrl: ctrl, Meta: meta,
		HasCodePoint: true, CodePoint: r,
	}}
}

func decodeRune(buf []byte) (rune, int) {
	r, size := decodeUTF8(buf)
	return r, size
}

// decodeSS3 handles ESC O <final>: application-cursor-key arrows and
// F1..F4.
func decodeSS3(buf []byte) (int, *Event, bool) {
	if len(buf) < 3 {
		return 0, nil, false
	}
	final := buf[2]
	name, ok := ss3Names[final]
	if !ok {
		return 3, nil, true
	}
	return 3, keyEvent(string(buf[:3]), name, false, false, false, 0), true
}

var ss3Names = map[byte]string{
	'A': "up", 'B': "down", 'C': "right", 'D': "left",
	'P': "f1", 'Q': "f2", 'R': "f3", 'S': "f4",
	'H': "home", 'F': "end",
}

var csiArrowNames = map[byte]string{
	'A': "up", 'B': "down", 'C': "right", 'D': "left",
	'H': "home", 'F': "end",
}

var csiTildeNames = map[string]string{
	"1": "home", "2": "insert", "3": "delete", "4": "end",
	"5": "pageup", "6": "pagedown",
	"15": "f5", "17": "f6", "18": "f7", "19": "f8", "20": "f9", "21": "f10", "23": "f11", "24": "f12",
}

// decodeCSI handles ESC [ <params> <final>, scanning for the final byte
// (0x40-0x7E) and dispatching by its kind: SGR mouse, Kitty keyboard,
// bracketed paste markers, focus events, or the standard arrow/home/end/
// function-key/modifier encoding.
func (d *Decoder) decodeCSI(buf []byte) (int, *Event, bool) {
	i := 2
	for i < len(buf) && !(buf[i] >= 0x40 && buf[i] <= 0x7e) {
		i++
	}
	if i >= len(buf) {
		return 0, nil, false // incomplete; wait for the final byte
	}
	final := buf[i]
	params := string(buf[2:i])
	seq := string(buf[:i+1])
	n := i + 1

	switch {
	case len(params) > 0 && params[0] == '<':
		return n, decodeSGRMouse(seq, params[1:], final), true
	case final == 'u':
		return n, decodeKitty(seq, params), true
	case final == 'I':
		return n, &Event{Kind: EventFocus, Focus: FocusEvent{Focused: true}}, true
	case final == 'O':
		return n, &Event{Kind: EventFocus, Focus: FocusEvent{Focused: false}}, true
	case final == '~':
		return n, d.decodeTildeOrPasteMarker(seq, params), true
	default:
		if name, ok := csiArrowNames[final]; ok {
			shift, ctrl, meta, _ := splitModifierParam(params)
			return n, keyEvent(seq, name, shift, ctrl, meta, 0), true
		}
		return n, nil, true
	}
}

func (d *Decoder) decodeTildeOrPasteMarker(seq, params string) *Event {
	key := params
	mod := ""
	if i := indexOfByte(params, ';'); i >= 0 {
		key, mod = params[:i], params[i+1:]
	}
	if key == "200" {
		d.inPaste = true
		d.pasteBuf = d.pasteBuf[:0]
		return nil
	}
	name, ok := csiTildeNames[key]
	if !ok {
		return nil
	}
	shift, ctrl, meta := decodeModifierParam(mod)
	return keyEvent(seq, name, shift, ctrl, meta, 0)
}

// splitModifierParam parses "1;<m>" (arrow/home/end with modifiers) or an
// empty/absent param (no modifiers), returning the decoded modifiers and
// the leading base parameter (usually "1", unused beyond disambiguation).
func splitModifierParam(params string) (shift, ctrl, meta bool, base string) {
	if params == "" {
		return false, false, false, ""
	}
	i := indexOfByte(params, ';')
	if i < 0 {
		return false, false, false, params
	}
	base = params[:i]
	shift, ctrl, meta = decodeModifierParam(params[i+1:])
	return
}

// decodeModifierParam decodes the xterm modifier parameter m = 1 +
// (shift?1:0) + (meta?2:0) + (ctrl?4:0), per spec §4.4.
func decodeModifierParam(s string) (shift, ctrl, meta bool) {
	m, err := strconv.Atoi(s)
	if err != nil || m <= 0 {
		return false, false, false
	}
	v := m - 1
	shift = v&1 != 0
	meta = v&2 != 0
	ctrl = v&4 != 0
	return
}

// decodeKitty handles CSI <code>;<mods>;<event_type> u.
func decodeKitty(seq, params string) *Event {
	parts := splitSemicolons(params)
	code := 0
	if len(parts) > 0 {
		code, _ = strconv.Atoi(parts[0])
	}
	var shift, ctrl, meta bool
	if len(parts) > 1 {
		shift, ctrl, meta = decodeModifierParam(parts[1])
	}
	evType := KeyPress
	if len(parts) > 2 {
		switch parts[2] {
		case "2":
			evType = KeyRepeat
		case "3":
			evType = KeyRelease
		}
	}
	return &Event{Kind: EventKey, Key: KeyEvent{
		Name: string(rune(code)), Sequence: seq, Shift: shift, Ctrl: ctrl, Meta: meta,
		HasCodePoint: code != 0, CodePoint: rune(code), EventType: evType,
	}}
}

func splitSemicolons(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ';' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

func indexOfByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

func indexOf(s []byte, sub string) int {
	if len(sub) == 0 || len(s) < len(sub) {
		return -1
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if string(s[i:i+len(sub)]) == sub {
			return i
		}
	}
	return -1
}

// decodeUTF8 decodes one rune from the front of buf without importing
// unicode/utf8's full DecodeRune (buf is freshly-fed terminal bytes, not a
// string); falls back to U+FFFD + 1-byte advance on invalid input, per the
// Encoding error kind in spec §7.
func decodeUTF8(buf []byte) (rune, int) {
	b0 := buf[0]
	switch {
	case b0 < 0x80:
		return rune(b0), 1
	case b0&0xe0 == 0xc0 && len(buf) >= 2:
		return rune(b0&0x1f)<<6 | rune(buf[1]&0x3f), 2
	case b0&0xf0 == 0xe0 && len(buf) >= 3:
		return rune(b0&0x0f)<<12 | rune(buf[1]&0x3f)<<6 | rune(buf[2]&0x3f), 3
	case b0&0xf8 == 0xf0 && len(buf) >= 4:
		return rune(b0&0x07)<<18 | rune(buf[1]&0x3f)<<12 | rune(buf[2]&0x3f)<<6 | rune(buf[3]&0x3f), 4
	default:
		return 0xfffd, 1
	}
}
