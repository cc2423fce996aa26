package bar

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is 0xRRGGBBAA.
type Color uint32

// ParseColor accepts "#rrggbb" or "#rrggbbaa".
func ParseColor(hex string) (Color, error) {
	s, ok := strings.CutPrefix(hex, "#")
	if !ok {
		return 0, fmt.Errorf("invalid color %q: missing #", hex)
	}

	switch len(s) {
	case 6:
		s += "ff"
	case 8:
	default:
		return 0, fmt.Errorf("invalid color %q: want #rrggbb or #rrggbbaa", hex)
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", hex, err)
	}

	return Color(v), nil
}

func (c Color) RGBA() color.RGBA {
	return color.RGBA{
		R: uint8(c >> 24),
		G: uint8(c >> 16),
		B: uint8(c >> 8),
		A: uint8(c),
	}
}

func (c Color) String() string {
	return fmt.Sprintf("#%08x", uint32(c))
}

// Pixel is the color as a 24 bit TrueColor pixel value, 0x00RRGGBB.
func (c Color) Pixel() uint32 {
	return uint32(c) >> 8
}
