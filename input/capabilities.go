package input

import "strings"

// ProbeSequence is the byte sequence the renderer writes during setup to
// interrogate the terminal: primary device attributes (DA1), a DCS
// XTGETTCAP query for the "RGB" truecolor capability, and a Kitty keyboard
// protocol query, per spec §4.4.
const ProbeSequence = "\x1b[c" + "\x1bP+q524742\x1b\\" + "\x1b[?u"

// ApplyReply folds one terminal reply into caps. Replies are matched by
// their terminating byte/sequence; unrecognized replies are ignored,
// mirroring the Protocol error kind's "drop silently" policy.
func ApplyReply(reply string, caps *Capabilities) {
	switch {
	case strings.HasSuffix(reply, "c") && strings.HasPrefix(reply, "\x1b[?"):
		// DA1 reply: the terminal responded at all, so truecolor SGR is
		// assumed safe to emit.
		caps.RGB = true
	case strings.HasPrefix(reply, "\x1bP1+r"):
		caps.RGB = true
	case strings.HasSuffix(reply, "u") && strings.HasPrefix(reply, "\x1b[?"):
		caps.KittyKeyboard = true
	}
}

// DefaultCapabilities is the conservative snapshot assumed before any
// probe reply arrives.
func DefaultCapabilities() Capabilities {
	return Capabilities{Unicode: "wcwidth"}
}
