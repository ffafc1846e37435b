package raycast

import (
	"math"

	"github.com/lixenwraith/diffused-rays/render"
)

// Options configures the renderer; fixed for the life of a Renderer
type Options struct {
	Width, Height int
	FOV           float64 // Radians
	MaxDepth      float64

	Palette    render.Palette
	FloorShade float64 // Lower bound of distance shading
	EWShade    float64 // Multiplier for SideEW walls, < 1
	Floor      render.RGB
	Ceiling    render.RGB

	Torch TorchOptions
}

// TorchOptions configures periodic wall torches and their bloom
type TorchOptions struct {
	Enabled     bool
	Spacing     int     // A torch every Spacing cells
	Height      float64 // Flame base, fraction of the wall from the bottom
	Width       float64 // Half-width of the sprite band around WallU = 0.5
	LightRadius float64 // World units reached by torch light
	Flame       render.RGB
	Handle      render.RGB
	Glow        render.RGB
	Warmth      [3]float64 // Per-channel multipliers for warm light, red strongest
}

// DefaultOptions returns the 128x128, 60 degree view used by the game
func DefaultOptions() Options {
	return Options{
		Width:      128,
		Height:     128,
		FOV:        60 * math.Pi / 180,
		MaxDepth:   20,
		Palette:    render.DefaultPalette(),
		FloorShade: 0.15,
		EWShade:    0.7,
		Floor:      render.RGB{R: 50, G: 50, B: 50},
		Ceiling:    render.RGB{R: 30, G: 30, B: 40},
		Torch:      DefaultTorchOptions(),
	}
}

// DefaultTorchOptions returns orange torches every third cell
func DefaultTorchOptions() TorchOptions {
	return TorchOptions{
		Enabled:     true,
		Spacing:     3,
		Height:      0.3,
		Width:       0.08,
		LightRadius: 4.0,
		Flame:       render.RGB{R: 255, G: 150, B: 50},
		Handle:      render.RGB{R: 80, G: 50, B: 30},
		Glow:        render.RGB{R: 255, G: 120, B: 40},
		Warmth:      [3]float64{1.3, 0.9, 0.5},
	}
}
