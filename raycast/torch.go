package raycast

import (
	"math"
)

// Flicker is a deterministic torch intensity for time t (seconds) and a per-torch seed
// Three detuned sines around 0.85 keep it roughly within [0.6, 1.0]
func Flicker(t, seed float64) float64 {
	f := math.Sin(t*8+seed)*0.1 +
		math.Sin(t*13+seed*2)*0.08 +
		math.Sin(t*21+seed*3)*0.05
	return 0.85 + f
}

// TorchSeed derives the flicker phase of the torch on cell (mapX, mapY)
func TorchSeed(mapX, mapY int) float64 {
	return float64(mapX*7 + mapY*13)
}

// HasTorch reports whether the wall face hit on cell (mapX, mapY) carries a torch
// NS faces test the row, EW faces test the column
func HasTorch(mapX, mapY int, side Side, spacing int) bool {
	if spacing <= 0 {
		return false
	}
	if side == SideNS {
		return mod(mapY, spacing) == 1
	}
	return mod(mapX, spacing) == 1
}

// mod is the non-negative remainder, out of bounds cells can be negative
func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

// TorchMark records a torch sprite column for the bloom pass
type TorchMark struct {
	Column  int
	Top     int // Flame top row
	Base    int // Flame base row, where the handle starts
	Dist    float64
	Flicker float64
}
