package raycast

import (
	"github.com/lixenwraith/diffused-rays/render"
)

// Shade returns the light factor for a wall at perpDist
// max(FloorShade, 1 - d/MaxDepth), multiplied by EWShade on SideEW walls
func (o *Options) Shade(perpDist float64, side Side) float64 {
	shade := max(o.FloorShade, 1-perpDist/o.MaxDepth)
	if side == SideEW {
		shade *= o.EWShade
	}
	return shade
}

// light applies distance shade and warm torch light to a base colour
func (o *Options) light(c render.RGB, shade, warm float64) render.RGB {
	r := float64(c.R) * shade
	g := float64(c.G) * shade
	b := float64(c.B) * shade
	if warm > 0 {
		r *= 1 + warm*o.Torch.Warmth[0]
		g *= 1 + warm*o.Torch.Warmth[1]
		b *= 1 + warm*o.Torch.Warmth[2]
	}
	return render.RGB{R: render.Clamp(r), G: render.Clamp(g), B: render.Clamp(b)}
}

// backdropFactor is the ceiling/floor brightness for row y, 0.7 at the screen edge to 1.0 at the horizon
func backdropFactor(y, height int) float64 {
	half := height / 2
	if half == 0 {
		return 1
	}
	if y < half {
		return 0.7 + 0.3*float64(y)/float64(half)
	}
	return 0.7 + 0.3*(1-float64(y-half)/float64(half))
}
