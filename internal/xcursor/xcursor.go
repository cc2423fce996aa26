// Package xcursor creates cursors from the X core cursor font.
//
// Forked from https://github.com/BurntSushi/xgbutil/blob/master/xcursor/xcursor.go
package xcursor

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Glyphs of the cursor font, see X11/cursorfont.h. Each mask is the glyph + 1.
const (
	XCursor  = 0
	Arrow    = 2
	Hand2    = 60
	LeftPtr  = 68
	Watch    = 150
	XTerm    = 152
	fontName = "cursor"
)

// Color is a 16 bit per channel cursor color.
type Color struct {
	Red, Green, Blue uint16
}

var (
	White = Color{0xffff, 0xffff, 0xffff}
	Black = Color{0, 0, 0}
)

func CreateCursor(x *xgb.Conn, glyph uint16) (xproto.Cursor, error) {
	return CreateCursorExtra(x, glyph, White, Black)
}

func CreateCursorExtra(x *xgb.Conn, glyph uint16, fore, back Color) (xproto.Cursor, error) {
	fontID, err := xproto.NewFontId(x)
	if err != nil {
		return 0, err
	}

	cursorID, err := xproto.NewCursorId(x)
	if err != nil {
		return 0, err
	}

	err = xproto.OpenFontChecked(x, fontID, uint16(len(fontName)), fontName).Check()
	if err != nil {
		return 0, fmt.Errorf("open cursor font: %w", err)
	}
	defer xproto.CloseFont(x, fontID)

	err = xproto.CreateGlyphCursorChecked(x, cursorID, fontID, fontID,
		glyph, glyph+1,
		fore.Red, fore.Green, fore.Blue,
		back.Red, back.Green, back.Blue).Check()
	if err != nil {
		return 0, fmt.Errorf("create glyph cursor %d: %w", glyph, err)
	}

	return cursorID, nil
}
