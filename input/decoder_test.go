package input

import "testing"

func TestMouseSGRPressAndRelease(t *testing.T) {
	d := NewDecoder()
	events := d.Feed([]byte("\x1b[<0;10;5M"))
	if len(events) != 1 || events[0].Kind != EventMouse {
		t.Fatalf("expected 1 mouse event, got %+v", events)
	}
	m := events[0].Mouse
	if m.Type != MouseDown || m.Button != 0 || m.X != 10 || m.Y != 5 || m.Shift || m.Ctrl || m.Alt {
		t.Errorf("unexpected press: %+v", m)
	}

	events = d.Feed([]byte("\x1b[<0;10;5m"))
	if len(events) != 1 || events[0].Kind != EventMouse {
		t.Fatalf("expected 1 mouse event, got %+v", events)
	}
	if events[0].Mouse.Type != MouseUp {
		t.Errorf("expected release, got %+v", events[0].Mouse)
	}
}

func TestArrowWithModifiers(t *testing.T) {
	d := NewDecoder()
	events := d.Feed([]byte("\x1b[1;6A"))
	if len(events) != 1 || events[0].Kind != EventKey {
		t.Fatalf("expected 1 key event, got %+v", events)
	}
	k := events[0].Key
	if k.Name != "up" || !k.Shift || !k.Ctrl || k.Meta {
		t.Errorf("got %+v, want {name:up shift:true ctrl:true meta:false}", k)
	}
}

func TestPlainArrowHasNoModifiers(t *testing.T) {
	d := NewDecoder()
	events := d.Feed([]byte("\x1b[A"))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	k := events[0].Key
	if k.Name != "up" || k.Shift || k.Ctrl || k.Meta {
		t.Errorf("got %+v, want unmodified up arrow", k)
	}
}

func TestBracketedPaste(t *testing.T) {
	d := NewDecoder()
	events := d.Feed([]byte("\x1b[200~hello world\x1b[201~"))
	if len(events) != 1 || events[0].Kind != EventPaste {
		t.Fatalf("expected 1 paste event, got %+v", events)
	}
	if events[0].Paste.Text != "hello world" {
		t.Errorf("Paste.Text = %q, want %q", events[0].Paste.Text, "hello world")
	}
}

func TestBracketedPasteSplitAcrossFeeds(t *testing.T) {
	d := NewDecoder()
	if events := d.Feed([]byte("\x1b[200~hello ")); len(events) != 0 {
		t.Fatalf("expected no events mid-paste, got %+v", events)
	}
	events := d.Feed([]byte("world\x1b[201~"))
	if len(events) != 1 || events[0].Paste.Text != "hello world" {
		t.Fatalf("got %+v, want paste %q", events, "hello world")
	}
}

func TestKittyKeyboardDecode(t *testing.T) {
	d := NewDecoder()
	events := d.Feed([]byte("\x1b[97;5;1u"))
	if len(events) != 1 || events[0].Kind != EventKey {
		t.Fatalf("expected 1 key event, got %+v", events)
	}
	k := events[0].Key
	if !k.HasCodePoint || k.CodePoint != 'a' || !k.Ctrl || k.EventType != KeyPress {
		t.Errorf("got %+v", k)
	}
}

func TestPlainCharacter(t *testing.T) {
	d := NewDecoder()
	events := d.Feed([]byte("a"))
	if len(events) != 1 || events[0].Key.CodePoint != 'a' {
		t.Fatalf("got %+v", events)
	}
}

func TestCtrlLetterDecode(t *testing.T) {
	d := NewDecoder()
	events := d.Feed([]byte{0x03}) // Ctrl+C
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	k := events[0].Key
	if !k.Ctrl || k.CodePoint != 'c' {
		t.Errorf("got %+v, want ctrl+c", k)
	}
}

func TestFlushResolvesBareEscape(t *testing.T) {
	d := NewDecoder()
	if events := d.Feed([]byte{0x1b}); len(events) != 0 {
		t.Fatalf("expected bare ESC to wait for Flush, got %+v", events)
	}
	events := d.Flush()
	if len(events) != 1 || events[0].Key.Name != "escape" {
		t.Fatalf("got %+v, want escape", events)
	}
}

func TestModifierEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct{ shift, ctrl, meta bool }{
		{false, false, false},
		{true, false, false},
		{false, true, false},
		{false, false, true},
		{true, true, true},
	}
	for _, c := range cases {
		m := 1
		if c.shift {
			m += 1
		}
		if c.meta {
			m += 2
		}
		if c.ctrl {
			m += 4
		}
		shift, ctrl, meta := decodeModifierParam(itoa(m))
		if shift != c.shift || ctrl != c.ctrl || meta != c.meta {
			t.Errorf("decodeModifierParam(%d) = (%v,%v,%v), want (%v,%v,%v)", m, shift, ctrl, meta, c.shift, c.ctrl, c.meta)
		}
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
