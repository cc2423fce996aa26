package xwm

import (
	"fmt"
	"log/slog"

	"github.com/ItsNotGoodName/x-dotwm/internal/keys"
	"github.com/jezek/xgb/xproto"
)

// lockMasks are the modifiers ignored when matching a chord.
var lockMasks = []uint16{
	0,
	xproto.ModMaskLock,
	xproto.ModMask2,
	xproto.ModMaskLock | xproto.ModMask2,
}

type keyCombo struct {
	code xproto.Keycode
	mods uint16
}

// KeyMap maps grabbed key presses back to chords.
type KeyMap struct {
	chords map[keyCombo]string
}

// Chord returns the chord of a key press.
func (m KeyMap) Chord(ev xproto.KeyPressEvent) (string, bool) {
	chord, ok := m.chords[keyCombo{code: ev.Detail, mods: ev.State &^ (xproto.ModMaskLock | xproto.ModMask2)}]
	return chord, ok
}

// ModMask converts chord modifiers to an X modifier mask.
func ModMask(mods keys.Modifier) uint16 {
	var mask uint16
	if mods&keys.ModSuper != 0 {
		mask |= xproto.ModMask4
	}
	if mods&keys.ModShift != 0 {
		mask |= xproto.ModMaskShift
	}
	if mods&keys.ModControl != 0 {
		mask |= xproto.ModMaskControl
	}
	if mods&keys.ModAlt != 0 {
		mask |= xproto.ModMask1
	}
	return mask
}

// keycodes maps each keysym to the first keycode producing it unshifted.
func (c *Conn) keycodes() (map[uint32]xproto.Keycode, error) {
	setup := xproto.Setup(c.X)
	count := byte(setup.MaxKeycode - setup.MinKeycode + 1)

	reply, err := xproto.GetKeyboardMapping(c.X, setup.MinKeycode, count).Reply()
	if err != nil {
		return nil, fmt.Errorf("get keyboard mapping: %w", err)
	}

	return KeycodeTable(setup.MinKeycode, int(reply.KeysymsPerKeycode), reply.Keysyms), nil
}

// KeycodeTable reads the first column of a keyboard mapping.
func KeycodeTable(first xproto.Keycode, perKeycode int, keysyms []xproto.Keysym) map[uint32]xproto.Keycode {
	codes := make(map[uint32]xproto.Keycode)
	if perKeycode == 0 {
		return codes
	}
	for i := 0; i*perKeycode < len(keysyms); i++ {
		sym := uint32(keysyms[i*perKeycode])
		if sym == 0 {
			continue
		}
		if _, ok := codes[sym]; !ok {
			codes[sym] = first + xproto.Keycode(i)
		}
	}
	return codes
}

// GrabKeys grabs every chord of table on the root window.
func (c *Conn) GrabKeys(table keys.Table) (KeyMap, error) {
	codes, err := c.keycodes()
	if err != nil {
		return KeyMap{}, err
	}

	m := KeyMap{chords: make(map[keyCombo]string)}
	for _, b := range table.Bindings() {
		code, ok := codes[b.Chord.Keysym()]
		if !ok {
			slog.Warn("No keycode for chord", "package", "xwm", "chord", b.Chord.String())
			continue
		}

		mods := ModMask(b.Chord.Mods)
		if err := c.grab(code, mods); err != nil {
			// Another client owns the chord
			slog.Warn("Failed to grab chord", "package", "xwm", "chord", b.Chord.String(), "error", err)
			continue
		}
		m.chords[keyCombo{code: code, mods: mods}] = b.Chord.String()
	}

	return m, nil
}

func (c *Conn) grab(code xproto.Keycode, mods uint16) error {
	for _, lock := range lockMasks {
		err := xproto.GrabKeyChecked(c.X, true, c.Root, mods|lock, code, xproto.GrabModeAsync, xproto.GrabModeAsync).Check()
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Conn) UngrabKeys() error {
	return xproto.UngrabKeyChecked(c.X, xproto.GrabAny, c.Root, xproto.ModMaskAny).Check()
}
