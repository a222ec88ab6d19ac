package input

import "strconv"

// decodeSGRMouse handles the params after the leading '<' of an SGR mouse
// report: "B;X;Y", terminated by final 'M' (press/drag) or 'm' (release),
// per spec §4.4 and scenario S6.
func decodeSGRMouse(seq, params string, final byte) *Event {
	parts := splitSemicolons(params)
	if len(parts) != 3 {
		return nil
	}
	b, _ := strconv.Atoi(parts[0])
	x, _ := strconv.Atoi(parts[1])
	y, _ := strconv.Atoi(parts[2])

	button := b & 0x3
	shift := b&0x4 != 0
	meta := b&0x8 != 0
	ctrl := b&0x10 != 0
	drag := b&0x20 != 0
	wheel := b&0x40 != 0

	ev := MouseEvent{Button: button, X: x, Y: y, Shift: shift, Ctrl: ctrl, Alt: meta}

	switch {
	case wheel:
		ev.Type = MouseScroll
		ev.HasScrollDelta = true
		if button&0x1 != 0 {
			ev.ScrollDelta = 1
		} else {
			ev.ScrollDelta = -1
		}
	case final == 'm':
		ev.Type = MouseUp
	case drag:
		ev.Type = MouseDrag
	default:
		ev.Type = MouseDown
	}

	return &Event{Kind: EventMouse, Mouse: ev}
}
