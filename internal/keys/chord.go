package keys

import (
	"fmt"
	"strings"
)

type Modifier uint8

const (
	ModSuper Modifier = 1 << iota
	ModShift
	ModControl
	ModAlt
)

var modifierPrefixes = map[string]Modifier{
	"M": ModSuper,
	"S": ModShift,
	"C": ModControl,
	"A": ModAlt,
}

// Keysym values from X11/keysymdef.h for the named keys x-dotwm binds.
var namedKeysyms = map[string]uint32{
	"Return":    0xff0d,
	"Tab":       0xff09,
	"space":     0x0020,
	"Escape":    0xff1b,
	"BackSpace": 0xff08,
	"Delete":    0xffff,
	"Home":      0xff50,
	"End":       0xff57,
	"Left":      0xff51,
	"Up":        0xff52,
	"Right":     0xff53,
	"Down":      0xff54,
	"Prior":     0xff55,
	"Next":      0xff56,
	"Print":     0xff61,
	"F1":        0xffbe,
	"F2":        0xffbf,
	"F3":        0xffc0,
	"F4":        0xffc1,
	"F5":        0xffc2,
	"F6":        0xffc3,
	"F7":        0xffc4,
	"F8":        0xffc5,
	"F9":        0xffc6,
	"F10":       0xffc7,
	"F11":       0xffc8,
	"F12":       0xffc9,
}

// Chord is a parsed key chord such as "M-S-Return".
type Chord struct {
	Mods Modifier
	Key  string
}

// Keysym returns the X keysym of the chord's key.
func (c Chord) Keysym() uint32 {
	if sym, ok := namedKeysyms[c.Key]; ok {
		return sym
	}
	// Latin-1 keysyms equal their character code
	return uint32(c.Key[0])
}

func (c Chord) String() string {
	var b strings.Builder
	for _, m := range []struct {
		mod    Modifier
		prefix string
	}{{ModSuper, "M-"}, {ModControl, "C-"}, {ModAlt, "A-"}, {ModShift, "S-"}} {
		if c.Mods&m.mod != 0 {
			b.WriteString(m.prefix)
		}
	}
	b.WriteString(c.Key)
	return b.String()
}

// ParseChord parses modifier prefixes separated by "-" followed by a key name.
func ParseChord(s string) (Chord, error) {
	parts := strings.Split(s, "-")
	key := parts[len(parts)-1]
	if key == "" {
		return Chord{}, fmt.Errorf("chord %q: missing key", s)
	}

	var chord Chord
	for _, p := range parts[:len(parts)-1] {
		mod, ok := modifierPrefixes[p]
		if !ok {
			return Chord{}, fmt.Errorf("chord %q: unknown modifier %q", s, p)
		}
		chord.Mods |= mod
	}

	if !validKey(key) {
		return Chord{}, fmt.Errorf("chord %q: unknown key %q", s, key)
	}
	chord.Key = key

	return chord, nil
}

func validKey(key string) bool {
	if _, ok := namedKeysyms[key]; ok {
		return true
	}
	if len(key) != 1 {
		return false
	}
	c := key[0]
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
