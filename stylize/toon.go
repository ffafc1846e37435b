package stylize

import (
	"context"
	"hash/fnv"
	"math"
	"sync/atomic"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"github.com/lixenwraith/diffused-rays/render"
)

// ToonModel is the built-in stylizer: smoothing, HSL posterisation and ink edges
// Latency simulates a slow backend so the pipeline behaves as with a real model.
type ToonModel struct {
	LoadDelay time.Duration
	Latency   time.Duration
	Levels    int     // Lightness bands, default 4
	HueSteps  int     // Hue bands, default 12
	EdgeLimit float64 // Luma gradient above which pixels are inked, default 48

	loads atomic.Int32
	calls atomic.Int64
}

// NewToonModel returns a model with the default look and the given latency
func NewToonModel(latency time.Duration) *ToonModel {
	return &ToonModel{Latency: latency, Levels: 4, HueSteps: 12, EdgeLimit: 48}
}

// Load simulates model warm-up
func (m *ToonModel) Load(ctx context.Context) error {
	m.loads.Add(1)
	if err := sleep(ctx, m.LoadDelay); err != nil {
		return errors.Wrap(ErrModelUnavailable, "toon load cancelled")
	}
	return nil
}

// Loads returns how many times Load ran
func (m *ToonModel) Loads() int {
	return int(m.loads.Load())
}

// Calls returns how many frames were stylized
func (m *ToonModel) Calls() int64 {
	return m.calls.Load()
}

// Stylize returns a new frame the size of the input
// Steps is the number of smoothing passes, Strength blends the toon look over the
// input, Guidance boosts saturation and the prompt picks a small hue rotation.
func (m *ToonModel) Stylize(ctx context.Context, frame *render.Frame, p Params) (*render.Frame, error) {
	if frame == nil {
		return nil, errors.New("toon: nil frame")
	}
	if err := sleep(ctx, m.Latency); err != nil {
		return nil, errors.Wrap(err, "toon")
	}
	m.calls.Add(1)

	src := frame
	for i := 0; i < min(max(p.Steps, 0), 4); i++ {
		src = boxBlur(src)
	}

	levels := m.Levels
	if levels < 2 {
		levels = 4
	}
	hueSteps := m.HueSteps
	if hueSteps < 1 {
		hueSteps = 12
	}
	edgeLimit := m.EdgeLimit
	if edgeLimit <= 0 {
		edgeLimit = 48
	}
	shift := promptHue(p.Prompt)
	satBoost := 1 + p.Guidance/10
	strength := math.Max(0, math.Min(1, p.Strength))

	out := render.NewFrame(frame.Width, frame.Height)
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			c := src.Pix[y*src.Width+x]
			h, s, l := colorful.Color{
				R: float64(c.R) / 255,
				G: float64(c.G) / 255,
				B: float64(c.B) / 255,
			}.Hsl()

			bandH := 360 / float64(hueSteps)
			h = math.Mod(math.Round(h/bandH)*bandH+shift+360, 360)
			s = math.Min(1, s*satBoost)
			l = math.Round(l*float64(levels-1)) / float64(levels-1)

			r, g, b := colorful.Hsl(h, s, l).Clamped().RGB255()
			toon := render.RGB{R: r, G: g, B: b}
			if gradient(src, x, y) > edgeLimit {
				toon = render.Scale(toon, 0.25)
			}
			out.Pix[y*out.Width+x] = render.Lerp(frame.Pix[y*frame.Width+x], toon, strength)
		}
	}
	return out, nil
}

// promptHue maps a prompt to a stable rotation in [-15, 15) degrees
func promptHue(prompt string) float64 {
	h := fnv.New32a()
	h.Write([]byte(prompt))
	return float64(h.Sum32()%30) - 15
}

func boxBlur(f *render.Frame) *render.Frame {
	out := render.NewFrame(f.Width, f.Height)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			var r, g, b, n int
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if !f.InBounds(x+dx, y+dy) {
						continue
					}
					c := f.Pix[(y+dy)*f.Width+x+dx]
					r += int(c.R)
					g += int(c.G)
					b += int(c.B)
					n++
				}
			}
			out.Pix[y*f.Width+x] = render.RGB{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n)}
		}
	}
	return out
}

// gradient is the absolute luma difference to the right and lower neighbours
func gradient(f *render.Frame, x, y int) float64 {
	l := render.Luma(f.At(x, y))
	dx, dy := 0, 0
	if x+1 < f.Width {
		dx = render.Luma(f.At(x+1, y)) - l
	}
	if y+1 < f.Height {
		dy = render.Luma(f.At(x, y+1)) - l
	}
	return math.Hypot(float64(dx), float64(dy))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
