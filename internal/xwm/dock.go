package xwm

import (
	"fmt"
	"image"

	"github.com/ItsNotGoodName/x-dotwm/internal/host"
	"github.com/ItsNotGoodName/x-dotwm/internal/xcursor"
	"github.com/jezek/xgb/xproto"
)

// putImageHeader is the size of a PutImage request without its data.
const putImageHeader = 24

// Dock is a bar window along the top of a screen.
type Dock struct {
	conn   *Conn
	WID    xproto.Window
	gc     xproto.Gcontext
	width  int
	height int
	buf    []byte
}

func (c *Conn) CreateDock(screen host.Screen, height int, bg uint32) (*Dock, error) {
	cursor, err := xcursor.CreateCursor(c.X, xcursor.LeftPtr)
	if err != nil {
		return nil, err
	}

	wid, err := xproto.NewWindowId(c.X)
	if err != nil {
		return nil, err
	}

	geom := screen.Geometry
	if err := xproto.CreateWindowChecked(c.X, c.Screen.RootDepth,
		wid, c.Root,
		int16(geom.Min.X), int16(geom.Min.Y), uint16(geom.Dx()), uint16(height), 0,
		xproto.WindowClassInputOutput, c.Screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask|xproto.CwCursor, // 1, 2, 3
		[]uint32{
			bg, // 1
			xproto.EventMaskExposure | xproto.EventMaskStructureNotify, // 2
			uint32(cursor), // 3
		}).Check(); err != nil {
		return nil, fmt.Errorf("create dock window: %w", err)
	}

	d := &Dock{
		conn:   c,
		WID:    wid,
		width:  geom.Dx(),
		height: height,
	}

	if err := d.setProperties(geom, height); err != nil {
		xproto.DestroyWindow(c.X, wid)
		return nil, err
	}

	gc, err := xproto.NewGcontextId(c.X)
	if err != nil {
		xproto.DestroyWindow(c.X, wid)
		return nil, err
	}
	if err := xproto.CreateGCChecked(c.X, gc, xproto.Drawable(wid), 0, nil).Check(); err != nil {
		xproto.DestroyWindow(c.X, wid)
		return nil, fmt.Errorf("create gc: %w", err)
	}
	d.gc = gc

	if err := xproto.MapWindowChecked(c.X, wid).Check(); err != nil {
		d.Destroy()
		return nil, err
	}

	return d, nil
}

func (d *Dock) setProperties(geom image.Rectangle, height int) error {
	c := d.conn

	set := func(name, typeName string, format byte, data []byte) error {
		prop, err := c.Atom(name)
		if err != nil {
			return err
		}
		typ, err := c.Atom(typeName)
		if err != nil {
			return err
		}
		unit := int(format / 8)
		if err := xproto.ChangePropertyChecked(c.X, xproto.PropModeReplace, d.WID, prop, typ, format, uint32(len(data)/unit), data).Check(); err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
		return nil
	}

	dockType, err := c.Atom("_NET_WM_WINDOW_TYPE_DOCK")
	if err != nil {
		return err
	}

	top := uint32(geom.Min.Y + height)
	strut := []uint32{0, 0, top, 0}
	strutPartial := []uint32{0, 0, top, 0, 0, 0, 0, 0, uint32(geom.Min.X), uint32(geom.Max.X - 1), 0, 0}

	if err := set("WM_NAME", "STRING", 8, []byte("x-dotwm-bar")); err != nil {
		return err
	}
	if err := set("_NET_WM_NAME", "UTF8_STRING", 8, []byte("x-dotwm-bar")); err != nil {
		return err
	}
	if err := set("_NET_WM_WINDOW_TYPE", "ATOM", 32, cardinalBytes([]uint32{uint32(dockType)})); err != nil {
		return err
	}
	if err := set("_NET_WM_STRUT", "CARDINAL", 32, cardinalBytes(strut)); err != nil {
		return err
	}
	return set("_NET_WM_STRUT_PARTIAL", "CARDINAL", 32, cardinalBytes(strutPartial))
}

func cardinalBytes(values []uint32) []byte {
	b := make([]byte, len(values)*4)
	for i, v := range values {
		b[i*4] = byte(v)
		b[i*4+1] = byte(v >> 8)
		b[i*4+2] = byte(v >> 16)
		b[i*4+3] = byte(v >> 24)
	}
	return b
}

func (d *Dock) Width() int {
	return d.width
}

// Put implements bar.Surface. The frame is sent in row chunks small enough for
// the server's maximum request length.
func (d *Dock) Put(frame *image.RGBA) error {
	bounds := frame.Bounds()
	w, h := min(bounds.Dx(), d.width), min(bounds.Dy(), d.height)
	if w <= 0 || h <= 0 {
		return nil
	}

	d.buf = ZPixmap(d.buf, frame, w, h)

	maxBytes := int(xproto.Setup(d.conn.X).MaximumRequestLength)*4 - putImageHeader
	rows := RowsPerRequest(maxBytes, w)
	stride := w * 4

	for y := 0; y < h; y += rows {
		n := min(rows, h-y)
		err := xproto.PutImageChecked(d.conn.X, xproto.ImageFormatZPixmap, xproto.Drawable(d.WID), d.gc,
			uint16(w), uint16(n), 0, int16(y), 0, d.conn.Screen.RootDepth,
			d.buf[y*stride:(y+n)*stride]).Check()
		if err != nil {
			return fmt.Errorf("put image: %w", err)
		}
	}

	return nil
}

// RowsPerRequest is at least one row.
func RowsPerRequest(maxBytes, width int) int {
	return max(maxBytes/(width*4), 1)
}

// ZPixmap converts the top left w by h pixels of frame to 32 bit BGRX, reusing
// buf when it is large enough.
func ZPixmap(buf []byte, frame *image.RGBA, w, h int) []byte {
	size := w * h * 4
	if cap(buf) < size {
		buf = make([]byte, size)
	}
	buf = buf[:size]

	origin := frame.Bounds().Min
	for y := 0; y < h; y++ {
		row := frame.Pix[frame.PixOffset(origin.X, origin.Y+y):]
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			buf[i] = row[x*4+2]
			buf[i+1] = row[x*4+1]
			buf[i+2] = row[x*4]
			buf[i+3] = 0
		}
	}

	return buf
}

func (d *Dock) Destroy() {
	xproto.FreeGC(d.conn.X, d.gc)
	xproto.DestroyWindow(d.conn.X, d.WID)
}
