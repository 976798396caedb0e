package markup

import (
	"strconv"
	"strings"
)

// Style is a bitset of text attributes. The low byte holds attribute flags;
// the high byte holds a 1-based palette color index (0 means default color).
type Style uint16

const (
	Bold Style = 1 << iota
	Italic
	Underline
	Reverse

	Normal Style = 0
)

const (
	attrMask   Style = 0x00ff
	colorShift       = 8
)

// Attrs returns s without its color.
func (s Style) Attrs() Style { return s & attrMask }

// Color returns the 1-based palette index carried by s, or 0.
func (s Style) Color() int { return int(s >> colorShift) }

// WithColor replaces the color of s with the palette index idx.
func (s Style) WithColor(idx int) Style {
	if idx < 0 || idx > 0xff {
		idx = 0
	}
	return s.Attrs() | Style(idx)<<colorShift
}

// Merge combines the attributes of both styles. A color set on o wins.
func (s Style) Merge(o Style) Style {
	out := s.Attrs() | o.Attrs()
	if o.Color() != 0 {
		return out.WithColor(o.Color())
	}
	return out.WithColor(s.Color())
}

func (s Style) String() string {
	if s == Normal {
		return "normal"
	}
	var parts []string
	if s&Bold != 0 {
		parts = append(parts, "bold")
	}
	if s&Italic != 0 {
		parts = append(parts, "italic")
	}
	if s&Underline != 0 {
		parts = append(parts, "underline")
	}
	if s&Reverse != 0 {
		parts = append(parts, "reverse")
	}
	if c := s.Color(); c != 0 {
		parts = append(parts, "color"+strconv.Itoa(c))
	}
	return strings.Join(parts, "|")
}

// ColorMap maps palette color names to the Style carrying that color.
type ColorMap map[string]Style

// Palette is an ordered list of color names. The color index of a name is
// its position plus one.
type Palette []string

// DefaultPalette is the set of named colors every sink understands.
var DefaultPalette = Palette{"red", "green", "yellow", "blue", "magenta", "cyan", "white"}

// ColorMap builds the name to Style mapping for p.
func (p Palette) ColorMap() ColorMap {
	m := make(ColorMap, len(p))
	for i, name := range p {
		m[strings.ToLower(name)] = Normal.WithColor(i + 1)
	}
	return m
}

// Name returns the palette color name carried by s, or "".
func (p Palette) Name(s Style) string {
	idx := s.Color()
	if idx <= 0 || idx > len(p) {
		return ""
	}
	return p[idx-1]
}
