package render

// Palette maps wall type ids to base colours with a fallback for unknown ids
type Palette struct {
	Walls   map[int]RGB
	Default RGB
}

// Color returns the base colour for a wall type
func (p Palette) Color(wallType int) RGB {
	if c, ok := p.Walls[wallType]; ok {
		return c
	}
	return p.Default
}

// DefaultPalette is red, green, blue and yellow walls over a gray fallback
func DefaultPalette() Palette {
	return Palette{
		Walls: map[int]RGB{
			1: {180, 0, 0},
			2: {0, 180, 0},
			3: {0, 0, 180},
			4: {180, 180, 0},
		},
		Default: RGB{128, 128, 128},
	}
}
