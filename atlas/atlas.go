// Package atlas packs the per-wall-type textures into one image so a single
// stylization pass can restyle every wall at once.
package atlas

import (
	"math/rand"

	"github.com/lixenwraith/diffused-rays/render"
)

const (
	TileSize = 64
	Columns  = 4
	Rows     = 2
	Tiles    = Columns * Rows
	Width    = Columns * TileSize // 256
	Height   = Rows * TileSize    // 128

	noiseRange   = 30 // Uniform noise in [-noiseRange, noiseRange)
	mortarPitch  = 16 // Brick row height
	mortarWidth  = 2
	mortarDarken = 40
	brickLength  = 32
)

// Manager owns the base atlas and the active tile cache
// Not safe for concurrent use; all mutation happens on the render goroutine
type Manager struct {
	palette render.Palette
	base    *render.Frame
	tiles   [Tiles]*render.Frame
	count   int
}

// New creates a manager with no tiles; Sample falls back to palette colours until tiles exist
func New(palette render.Palette) *Manager {
	return &Manager{palette: palette}
}

// TileOrigin returns the top-left pixel of a wall type's tile, false for ids outside 1..Tiles
func TileOrigin(wallType int) (x, y int, ok bool) {
	if wallType < 1 || wallType > Tiles {
		return 0, 0, false
	}
	idx := wallType - 1
	return (idx % Columns) * TileSize, (idx / Columns) * TileSize, true
}

// GenerateBase builds the procedural atlas from the palette and installs it as the active tiles
// rng drives the noise; pass a seeded source for reproducible tiles
func (m *Manager) GenerateBase(rng *rand.Rand) *render.Frame {
	atlas := render.NewFrame(Width, Height)
	for wallType := 1; wallType <= Tiles; wallType++ {
		x, y, _ := TileOrigin(wallType)
		atlas.Blit(baseTile(m.palette.Color(wallType), rng), x, y)
	}
	m.base = atlas
	m.Unpack(atlas)
	return atlas
}

// baseTile fills one tile with noisy base colour and a brick mortar pattern
func baseTile(c render.RGB, rng *rand.Rand) *render.Frame {
	tile := render.NewFrame(TileSize, TileSize)
	for i := range tile.Pix {
		tile.Pix[i] = render.RGB{
			R: render.Clamp(float64(int(c.R) + noise(rng))),
			G: render.Clamp(float64(int(c.G) + noise(rng))),
			B: render.Clamp(float64(int(c.B) + noise(rng))),
		}
	}

	// Horizontal mortar lines
	for y := 0; y < TileSize; y += mortarPitch {
		for dy := 0; dy < mortarWidth; dy++ {
			for x := 0; x < TileSize; x++ {
				darken(tile, x, y+dy)
			}
		}
	}

	// Vertical joints, staggered by half a brick on alternate rows
	for row := 0; row*mortarPitch < TileSize; row++ {
		offset := 0
		if row%2 == 1 {
			offset = brickLength / 2
		}
		y0 := row * mortarPitch
		for x := offset; x < TileSize; x += brickLength {
			for dx := 0; dx < mortarWidth; dx++ {
				for y := y0 + mortarWidth; y < y0+mortarPitch; y++ {
					darken(tile, x+dx, y)
				}
			}
		}
	}
	return tile
}

func noise(rng *rand.Rand) int {
	return rng.Intn(2*noiseRange) - noiseRange
}

func darken(f *render.Frame, x, y int) {
	if !f.InBounds(x, y) {
		return
	}
	p := f.At(x, y)
	f.Set(x, y, render.RGB{
		R: uint8(max(int(p.R)-mortarDarken, 0)),
		G: uint8(max(int(p.G)-mortarDarken, 0)),
		B: uint8(max(int(p.B)-mortarDarken, 0)),
	})
}

// Base returns the procedural atlas, nil before GenerateBase
func (m *Manager) Base() *render.Frame {
	return m.base
}

// Pack places the active tiles into a fresh atlas image
// Wall types without a tile are left black
func (m *Manager) Pack() *render.Frame {
	atlas := render.NewFrame(Width, Height)
	for i, tile := range m.tiles {
		if tile == nil {
			continue
		}
		x, y, _ := TileOrigin(i + 1)
		atlas.Blit(tile, x, y)
	}
	return atlas
}

// Unpack slices img into the active tiles, resampling first when its size is not Width x Height
func (m *Manager) Unpack(img *render.Frame) {
	if img == nil {
		return
	}
	if img.Width != Width || img.Height != Height {
		img = render.Resize(img, Width, Height)
	}
	for wallType := 1; wallType <= Tiles; wallType++ {
		x, y, _ := TileOrigin(wallType)
		m.tiles[wallType-1] = img.SubFrame(x, y, TileSize, TileSize)
	}
	m.count = Tiles
}

// Tile returns the active tile for a wall type, nil when none exists
func (m *Manager) Tile(wallType int) *render.Frame {
	if wallType < 1 || wallType > Tiles {
		return nil
	}
	return m.tiles[wallType-1]
}

// HasTiles reports whether any tile has been generated or unpacked
func (m *Manager) HasTiles() bool {
	return m.count > 0
}

// Sample returns the nearest texel at (u, v) in [0, 1]
// Falls back to the palette colour when the wall type has no tile
func (m *Manager) Sample(wallType int, u, v float64) render.RGB {
	tile := m.Tile(wallType)
	if tile == nil {
		return m.palette.Color(wallType)
	}
	tx := texel(u)
	ty := texel(v)
	return tile.Pix[ty*TileSize+tx]
}

func texel(f float64) int {
	i := int(f*(TileSize-1)) % TileSize
	if i < 0 {
		i += TileSize
	}
	return i
}
