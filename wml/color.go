package wml

import "fmt"

// Color is a plain RGBA value, alpha 255 unless stated otherwise.
type Color struct {
	R, G, B, A uint8
}

var Black = Color{A: 255}

// ParseHexColor parses the six hexadecimal digit form used by w:color and
// friends. The caller handles "auto" before calling.
func ParseHexColor(s string) (Color, error) {
	if len(s) != 6 {
		return Color{}, fmt.Errorf("color %q: want six hexadecimal digits", s)
	}

	var digits [6]uint8
	for i := 0; i < 6; i++ {
		d, err := hexDigit(s[i])
		if err != nil {
			return Color{}, fmt.Errorf("color %q: %w", s, err)
		}
		digits[i] = d
	}
	return Color{
		R: digits[0]<<4 | digits[1],
		G: digits[2]<<4 | digits[3],
		B: digits[4]<<4 | digits[5],
		A: 255,
	}, nil
}

func hexDigit(c byte) (uint8, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	}
	return 0, fmt.Errorf("%q is not a hexadecimal digit", c)
}

// highlightColors is the ST_HighlightColor name table (17.18.40).
var highlightColors = map[string]Color{
	"black":       {0x00, 0x00, 0x00, 255},
	"blue":        {0x00, 0x00, 0xFF, 255},
	"cyan":        {0x00, 0xFF, 0xFF, 255},
	"darkBlue":    {0x00, 0x00, 0x8B, 255},
	"darkCyan":    {0x00, 0x8B, 0x8B, 255},
	"darkGray":    {0xA9, 0xA9, 0xA9, 255},
	"darkGreen":   {0x00, 0x64, 0x00, 255},
	"darkMagenta": {0x80, 0x00, 0x80, 255},
	"darkRed":     {0x8B, 0x00, 0x00, 255},
	"darkYellow":  {0x80, 0x80, 0x00, 255},
	"green":       {0x00, 0xFF, 0x00, 255},
	"lightGray":   {0xD3, 0xD3, 0xD3, 255},
	"magenta":     {0xFF, 0x00, 0xFF, 255},
	"none":        {0x00, 0x00, 0x00, 0},
	"red":         {0xFF, 0x00, 0x00, 255},
	"white":       {0xFF, 0xFF, 0xFF, 255},
	"yellow":      {0xFF, 0xFF, 0x00, 255},
}

// ParseHighlightColor maps an ST_HighlightColor name to its color.
func ParseHighlightColor(s string) (Color, error) {
	if c, ok := highlightColors[s]; ok {
		return c, nil
	}
	return Color{}, fmt.Errorf("%q is not a valid highlight color", s)
}
