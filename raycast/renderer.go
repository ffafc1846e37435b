package raycast

import (
	"math"

	"github.com/lixenwraith/diffused-rays/grid"
	"github.com/lixenwraith/diffused-rays/render"
)

// Sampler serves per-pixel wall colours; the renderer only reads through it
type Sampler interface {
	HasTiles() bool
	Sample(wallType int, u, v float64) render.RGB
}

// Renderer draws frames column by column on the calling goroutine
// Scratch state (hits, torch marks) is reused between frames
type Renderer struct {
	opts     Options
	hits     []Hit
	torches  []TorchMark
	backdrop []render.RGB // Ceiling/floor colour per row, fixed for the options
	light    float64      // Strongest torch light reaching the camera last frame
}

// NewRenderer creates a renderer for fixed options
func NewRenderer(opts Options) *Renderer {
	r := &Renderer{
		opts:     opts,
		hits:     make([]Hit, opts.Width),
		torches:  make([]TorchMark, 0, 16),
		backdrop: make([]render.RGB, opts.Height),
	}
	for y := 0; y < opts.Height; y++ {
		base := opts.Ceiling
		if y >= opts.Height/2 {
			base = opts.Floor
		}
		r.backdrop[y] = render.Scale(base, backdropFactor(y, opts.Height))
	}
	return r
}

// Options returns the renderer configuration
func (r *Renderer) Options() Options {
	return r.opts
}

// Hits returns the per-column hits of the last frame, valid until the next Render
func (r *Renderer) Hits() []Hit {
	return r.hits
}

// Torches returns the torch sprites drawn in the last frame
func (r *Renderer) Torches() []TorchMark {
	return r.torches
}

// TorchLight returns the strongest warm light level of the last frame, 0 when no torch is near
func (r *Renderer) TorchLight() float64 {
	return r.light
}

// Render draws the view from pose into dst and returns it
// dst is reallocated when nil or mis-sized. sampler may be nil.
// t is the frame timestamp in seconds; every torch flickers from this one sample.
func (r *Renderer) Render(dst *render.Frame, m *grid.Map, pose grid.Pose, sampler Sampler, t float64) *render.Frame {
	o := &r.opts
	w, h := o.Width, o.Height
	if dst == nil || dst.Width != w || dst.Height != h {
		dst = render.NewFrame(w, h)
	}

	for y := 0; y < h; y++ {
		dst.FillRow(y, r.backdrop[y])
	}

	r.torches = r.torches[:0]
	r.light = 0
	textured := sampler != nil && sampler.HasTiles()

	for x := 0; x < w; x++ {
		hit := CastRay(m, pose, RayAngle(pose, x, w, o.FOV), o.MaxDepth)
		r.hits[x] = hit
		r.drawColumn(dst, x, hit, sampler, textured, t)
	}

	r.bloom(dst)
	return dst
}

// drawColumn shades one wall slice and its torch sprite
func (r *Renderer) drawColumn(dst *render.Frame, x int, hit Hit, sampler Sampler, textured bool, t float64) {
	o := &r.opts
	start, end := DrawSpan(o.Height, hit.PerpDist)
	shade := o.Shade(hit.PerpDist, hit.Side)

	torch := o.Torch.Enabled && HasTorch(hit.MapX, hit.MapY, hit.Side, o.Torch.Spacing)
	flicker := 0.0
	warm := 0.0
	if torch {
		flicker = Flicker(t, TorchSeed(hit.MapX, hit.MapY))
		if hit.PerpDist < o.Torch.LightRadius {
			level := (1 - hit.PerpDist/o.Torch.LightRadius) * flicker
			warm = level * 0.5
			r.light = max(r.light, level)
		}
	}

	if textured {
		span := float64(max(1, end-start))
		for y := start; y <= end; y++ {
			v := float64(y-start) / span
			dst.Set(x, y, o.light(sampler.Sample(hit.WallType, hit.WallU, v), shade, warm))
		}
	} else {
		dst.FillColumn(x, start, end, o.light(o.Palette.Color(hit.WallType), shade, warm))
	}

	if torch && hit.PerpDist < o.Torch.LightRadius*1.5 && math.Abs(hit.WallU-0.5) < o.Torch.Width {
		r.drawTorch(dst, x, start, end, hit.PerpDist, flicker)
	}
}

// drawTorch paints the handle and the flame gradient, then records the torch for bloom
func (r *Renderer) drawTorch(dst *render.Frame, x, start, end int, dist, flicker float64) {
	o := &r.opts
	span := end - start
	base := start + int(float64(span)*(1-o.Torch.Height))
	size := max(3, int(float64(span)*0.15))

	top := max(start, base-size)
	bottom := min(end, base+size/2)

	dst.FillColumn(x, base, bottom, o.Torch.Handle)

	flameSpan := float64(max(1, base-top))
	for y := top; y <= base; y++ {
		// Brighter toward the tip
		pos := 1 - float64(y-top)/flameSpan
		dst.Set(x, y, render.RGB{
			R: render.Clamp(float64(o.Torch.Flame.R) * flicker * (0.8 + 0.2*pos)),
			G: render.Clamp(float64(o.Torch.Flame.G) * flicker * pos),
			B: render.Clamp(float64(o.Torch.Flame.B) * flicker * pos * 0.5),
		})
	}

	r.torches = append(r.torches, TorchMark{
		Column:  x,
		Top:     top,
		Base:    base,
		Dist:    dist,
		Flicker: flicker,
	})
}

// bloom splats a radial warm glow around every recorded torch, additive and clamped
func (r *Renderer) bloom(dst *render.Frame) {
	o := &r.opts
	reach := o.Torch.LightRadius * 1.5

	for _, tm := range r.torches {
		radius := max(2, int(8/(tm.Dist+0.5)))
		intensity := tm.Flicker * (1 - tm.Dist/reach)
		if intensity <= 0 {
			continue
		}
		fr := float64(radius)

		for dy := -radius; dy <= radius; dy++ {
			py := tm.Top + dy
			if py < 0 || py >= dst.Height {
				continue
			}
			for dx := -radius; dx <= radius; dx++ {
				px := tm.Column + dx
				if px < 0 || px >= dst.Width {
					continue
				}
				d := math.Sqrt(float64(dx*dx + dy*dy))
				if d == 0 || d > fr {
					continue
				}
				falloff := (1 - d/fr) * intensity * 0.3
				i := py*dst.Width + px
				dst.Pix[i] = render.AddScaled(dst.Pix[i], o.Torch.Glow, falloff)
			}
		}
	}
}
