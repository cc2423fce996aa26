// Package xwm talks to an EWMH compliant window manager over X11.
package xwm

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/ItsNotGoodName/x-dotwm/internal/host"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xinerama"
	"github.com/jezek/xgb/xproto"
)

// propertyLength is the number of 32 bit units read from a property.
const propertyLength = 1 << 16

// Conn is an X connection that answers window queries. It implements host.Conn.
type Conn struct {
	X        *xgb.Conn
	Screen   *xproto.ScreenInfo
	Root     xproto.Window
	xinerama bool

	mu    sync.Mutex
	atoms map[string]xproto.Atom
	names map[xproto.Atom]string
}

var _ host.Conn = (*Conn)(nil)

func Connect() (*Conn, error) {
	x, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}

	screen := xproto.Setup(x).DefaultScreen(x)

	c := &Conn{
		X:      x,
		Screen: screen,
		Root:   screen.Root,
		atoms:  make(map[string]xproto.Atom),
		names:  make(map[xproto.Atom]string),
	}

	if err := xinerama.Init(x); err == nil {
		if reply, err := xinerama.IsActive(x).Reply(); err == nil && reply.State != 0 {
			c.xinerama = true
		}
	}

	return c, nil
}

func (c *Conn) Close() {
	c.X.Close()
}

// Atom interns name, caching the result.
func (c *Conn) Atom(name string) (xproto.Atom, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if atom, ok := c.atoms[name]; ok {
		return atom, nil
	}

	reply, err := xproto.InternAtom(c.X, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("intern atom %s: %w", name, err)
	}

	c.atoms[name] = reply.Atom
	c.names[reply.Atom] = name
	return reply.Atom, nil
}

// AtomName is the inverse of Atom.
func (c *Conn) AtomName(atom xproto.Atom) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name, ok := c.names[atom]; ok {
		return name, nil
	}

	reply, err := xproto.GetAtomName(c.X, atom).Reply()
	if err != nil {
		return "", fmt.Errorf("get atom name %d: %w", atom, err)
	}

	c.atoms[reply.Name] = atom
	c.names[atom] = reply.Name
	return reply.Name, nil
}

func (c *Conn) property(win xproto.Window, name string) (*xproto.GetPropertyReply, error) {
	atom, err := c.Atom(name)
	if err != nil {
		return nil, err
	}

	reply, err := xproto.GetProperty(c.X, false, win, atom, xproto.GetPropertyTypeAny, 0, propertyLength).Reply()
	if err != nil {
		return nil, fmt.Errorf("get property %s of %d: %w", name, win, err)
	}

	return reply, nil
}

// GetProp implements host.Conn.
func (c *Conn) GetProp(id host.Xid, name string) (host.Prop, bool, error) {
	reply, err := c.property(xproto.Window(id), name)
	if err != nil {
		return nil, false, err
	}
	if reply.Type == xproto.AtomNone {
		return nil, false, nil
	}

	typeName, err := c.AtomName(reply.Type)
	if err != nil {
		return nil, false, err
	}

	prop, err := c.decode(typeName, reply)
	if err != nil {
		return nil, false, err
	}

	return prop, true, nil
}

func (c *Conn) decode(typeName string, reply *xproto.GetPropertyReply) (host.Prop, error) {
	switch {
	case typeName == "CARDINAL" && reply.Format == 32:
		return host.PropCardinal(uint32s(reply.Value)), nil
	case typeName == "WINDOW" && reply.Format == 32:
		values := uint32s(reply.Value)
		windows := make(host.PropWindow, len(values))
		for i, v := range values {
			windows[i] = host.Xid(v)
		}
		return windows, nil
	case typeName == "ATOM" && reply.Format == 32:
		values := uint32s(reply.Value)
		names := make(host.PropAtom, 0, len(values))
		for _, v := range values {
			name, err := c.AtomName(xproto.Atom(v))
			if err != nil {
				return nil, err
			}
			names = append(names, name)
		}
		return names, nil
	case typeName == "UTF8_STRING" && reply.Format == 8:
		return host.PropUTF8String(splitNull(reply.Value)), nil
	default:
		return host.PropBytes(reply.Value), nil
	}
}

// WindowTitle implements host.Conn. _NET_WM_NAME is preferred over WM_NAME.
func (c *Conn) WindowTitle(id host.Xid) (string, error) {
	for _, name := range []string{"_NET_WM_NAME", "WM_NAME"} {
		reply, err := c.property(xproto.Window(id), name)
		if err != nil {
			return "", err
		}
		if reply.Type != xproto.AtomNone && len(reply.Value) > 0 {
			return strings.TrimSpace(string(bytes.TrimRight(reply.Value, "\x00"))), nil
		}
	}
	return "", nil
}

func (c *Conn) cardinals(win xproto.Window, name string) ([]uint32, error) {
	reply, err := c.property(win, name)
	if err != nil {
		return nil, err
	}
	if reply.Format != 32 {
		return nil, nil
	}
	return uint32s(reply.Value), nil
}

func (c *Conn) utf8Strings(win xproto.Window, name string) ([]string, error) {
	reply, err := c.property(win, name)
	if err != nil {
		return nil, err
	}
	if reply.Format != 8 {
		return nil, nil
	}
	return splitNull(reply.Value), nil
}

func uint32s(b []byte) []uint32 {
	values := make([]uint32, len(b)/4)
	for i := range values {
		values[i] = xgb.Get32(b[i*4:])
	}
	return values
}

// splitNull splits a list of null terminated strings.
func splitNull(b []byte) []string {
	b = bytes.TrimSuffix(b, []byte{0})
	if len(b) == 0 {
		return []string{}
	}
	parts := bytes.Split(b, []byte{0})
	values := make([]string, len(parts))
	for i, p := range parts {
		values[i] = string(p)
	}
	return values
}

func joinNull(values []string) []byte {
	var b bytes.Buffer
	for _, v := range values {
		b.WriteString(v)
		b.WriteByte(0)
	}
	return b.Bytes()
}
