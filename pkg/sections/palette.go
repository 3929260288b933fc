package sections

// Color is a background/foreground pair applied to highlighted fields.
type Color struct {
	Background string `json:"background"`
	Foreground string `json:"foreground"`
}

// Palette is an ordered list of colors indexed by section color index.
type Palette []Color

// PaletteSize is the number of entries in DefaultPalette.
const PaletteSize = 8

// DefaultPalette holds the fixed section colors.
var DefaultPalette = Palette{
	{Background: "#DBEAFE", Foreground: "#1E40AF"},
	{Background: "#DCFCE7", Foreground: "#166534"},
	{Background: "#FEF3C7", Foreground: "#92400E"},
	{Background: "#FCE7F3", Foreground: "#9D174D"},
	{Background: "#EDE9FE", Foreground: "#5B21B6"},
	{Background: "#CFFAFE", Foreground: "#155E75"},
	{Background: "#FFEDD5", Foreground: "#9A3412"},
	{Background: "#E0E7FF", Foreground: "#3730A3"},
}

// DefaultColor is returned for keys that belong to no section.
var DefaultColor = Color{Background: "#FEF9C3", Foreground: "#854D0E"}

// Pick returns the color at index reduced modulo the palette length. An empty
// palette falls back to DefaultPalette.
func (p Palette) Pick(index int) Color {
	if len(p) == 0 {
		p = DefaultPalette
	}
	return p[Normalize(index, len(p))]
}

// Normalize reduces index into [0, size).
func Normalize(index, size int) int {
	if size <= 0 {
		return 0
	}
	index %= size
	if index < 0 {
		index += size
	}
	return index
}
