package raycast

import (
	"math"
	"math/rand"
	"testing"

	"github.com/lixenwraith/diffused-rays/grid"
	"github.com/lixenwraith/diffused-rays/render"
)

func TestCastRayTerminatesAndClamps(t *testing.T) {
	m, _ := grid.TestMap()
	rng := rand.New(rand.NewSource(7))
	const maxDepth = 20.0

	for i := 0; i < 2000; i++ {
		x := 1 + rng.Float64()*8
		y := 1 + rng.Float64()*8
		if m.IsWall(x, y) {
			continue
		}
		pose := grid.NewPose(x, y, rng.Float64()*2*math.Pi)
		hit := CastRay(m, pose, pose.Angle, maxDepth)

		if hit.PerpDist <= 0 || hit.PerpDist > maxDepth {
			t.Fatalf("Pose %+v: perp dist %v outside (0, %v]", pose, hit.PerpDist, maxDepth)
		}
		if hit.WallType == grid.Empty {
			t.Fatalf("Pose %+v: ray ended on empty cell", pose)
		}
		if hit.WallU < 0 || hit.WallU >= 1 {
			t.Fatalf("Pose %+v: wall u %v outside [0, 1)", pose, hit.WallU)
		}
	}
}

func TestCastRayLeavesOpenMap(t *testing.T) {
	// No authored walls at all, only the out of bounds rule stops rays
	m := grid.New([][]int{
		{0, 0, 0},
		{0, 0, 0},
		{0, 0, 0},
	})

	for a := 0.0; a < 2*math.Pi; a += 0.1 {
		pose := grid.NewPose(1.5, 1.5, a)
		hit := CastRay(m, pose, a, 20)
		if hit.WallType != grid.OutOfBounds {
			t.Errorf("Angle %v: expected out of bounds wall, got %d", a, hit.WallType)
		}
		if hit.MapX >= 0 && hit.MapX < 3 && hit.MapY >= 0 && hit.MapY < 3 {
			t.Errorf("Angle %v: expected hit outside the map, got (%d, %d)", a, hit.MapX, hit.MapY)
		}
	}
}

func TestCastRayAxisAligned(t *testing.T) {
	// sin(0) is exactly zero: infinite y delta must never be stepped
	m := grid.Room(5, 5, 1)
	hit := CastRay(m, grid.NewPose(2.5, 2.5, 0), 0, 20)

	if hit.Side != SideNS {
		t.Errorf("Expected NS side, got %v", hit.Side)
	}
	if hit.MapX != 4 || hit.MapY != 2 {
		t.Errorf("Expected hit cell (4, 2), got (%d, %d)", hit.MapX, hit.MapY)
	}
	if math.Abs(hit.PerpDist-1.5) > 1e-12 {
		t.Errorf("Expected perp dist 1.5, got %v", hit.PerpDist)
	}
	if math.Abs(hit.WallU-0.5) > 1e-12 {
		t.Errorf("Expected wall u 0.5, got %v", hit.WallU)
	}
}

func TestCastRayNorthWall(t *testing.T) {
	m := grid.Room(5, 5, 2)
	hit := CastRay(m, grid.NewPose(2.25, 2.5, 3*math.Pi/2), 3*math.Pi/2, 20)

	if hit.Side != SideEW {
		t.Errorf("Expected EW side, got %v", hit.Side)
	}
	if hit.WallType != 2 || hit.MapY != 0 {
		t.Errorf("Expected wall type 2 at row 0, got type %d row %d", hit.WallType, hit.MapY)
	}
	if math.Abs(hit.PerpDist-1.5) > 1e-9 {
		t.Errorf("Expected perp dist 1.5, got %v", hit.PerpDist)
	}
	if math.Abs(hit.WallU-0.25) > 1e-9 {
		t.Errorf("Expected wall u 0.25, got %v", hit.WallU)
	}
}

func TestFlatWallScenario(t *testing.T) {
	// 7x7 room of wall type 1, player centred vertically, east wall face 2 units ahead
	m := grid.Room(7, 7, 1)
	pose := grid.NewPose(4.0, 3.5, 0)
	const width = 64
	fov := 0.2

	for x := 0; x < width; x++ {
		hit := CastRay(m, pose, RayAngle(pose, x, width, fov), 20)
		if hit.Side != SideNS {
			t.Errorf("Column %d: expected NS side for east wall, got %v", x, hit.Side)
		}
		if hit.WallType != 1 {
			t.Errorf("Column %d: expected wall type 1, got %d", x, hit.WallType)
		}
		if math.Abs(hit.PerpDist-2.0) > 1e-9 {
			t.Errorf("Column %d: expected perp dist 2, got %v", x, hit.PerpDist)
		}
	}
}

func TestClampDist(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-1, MinDist},
		{0, MinDist},
		{5, 5},
		{25, 20},
		{math.Inf(1), 20},
		{math.NaN(), 20},
	}
	for _, tt := range tests {
		if got := ClampDist(tt.in, 20); got != tt.want {
			t.Errorf("ClampDist(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestProjectWallHeight(t *testing.T) {
	const h = 128
	if got := ProjectWallHeight(h, 1); got != h {
		t.Errorf("Expected height %d at distance 1, got %v", h, got)
	}

	prev := math.Inf(1)
	for d := MinDist; d <= 20; d += 0.05 {
		got := ProjectWallHeight(h, d)
		if got > prev {
			t.Fatalf("Height increased from %v to %v at distance %v", prev, got, d)
		}
		prev = got
	}
}

func TestDrawSpanClipped(t *testing.T) {
	start, end := DrawSpan(128, MinDist)
	if start != 0 || end != 127 {
		t.Errorf("Expected full-height span, got [%d, %d]", start, end)
	}
	start, end = DrawSpan(128, 2)
	if start != 32 || end != 96 {
		t.Errorf("Expected [32, 96] at distance 2, got [%d, %d]", start, end)
	}
}

func TestShade(t *testing.T) {
	o := DefaultOptions()

	prev := math.Inf(1)
	for d := MinDist; d <= o.MaxDepth; d += 0.1 {
		ns := o.Shade(d, SideNS)
		ew := o.Shade(d, SideEW)

		if ns > prev {
			t.Fatalf("Shade increased at distance %v", d)
		}
		prev = ns

		if ns < o.FloorShade {
			t.Fatalf("Shade %v below floor %v at distance %v", ns, o.FloorShade, d)
		}
		if ew >= ns {
			t.Fatalf("EW shade %v not darker than NS %v at distance %v", ew, ns, d)
		}
		if ew != ns*o.EWShade {
			t.Fatalf("EW shade %v, expected exactly %v", ew, ns*o.EWShade)
		}
	}
}

func TestHasTorch(t *testing.T) {
	tests := []struct {
		name       string
		mapX, mapY int
		side       Side
		want       bool
	}{
		{"NS uses row", 0, 1, SideNS, true},
		{"NS row miss", 1, 2, SideNS, false},
		{"EW uses column", 4, 0, SideEW, true},
		{"EW column miss", 3, 1, SideEW, false},
		{"Negative row", 0, -2, SideNS, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasTorch(tt.mapX, tt.mapY, tt.side, 3); got != tt.want {
				t.Errorf("HasTorch(%d, %d, %v) = %v, want %v", tt.mapX, tt.mapY, tt.side, got, tt.want)
			}
		})
	}
	if HasTorch(1, 1, SideNS, 0) {
		t.Error("Expected zero spacing to disable torches")
	}
}

func TestFlickerDeterministicAndBounded(t *testing.T) {
	for i := 0; i < 1000; i++ {
		tm := float64(i) * 0.037
		seed := TorchSeed(i%11, i%7)
		a := Flicker(tm, seed)
		if a != Flicker(tm, seed) {
			t.Fatal("Expected flicker to be reproducible")
		}
		if a < 0.6 || a > 1.1 {
			t.Fatalf("Flicker %v outside expected band", a)
		}
	}
	if Flicker(1, TorchSeed(1, 1)) == Flicker(1, TorchSeed(4, 1)) {
		t.Error("Expected different torches to flicker out of phase")
	}
}

type constSampler struct {
	tiles bool
	c     render.RGB
	calls int
}

func (s *constSampler) HasTiles() bool { return s.tiles }

func (s *constSampler) Sample(int, float64, float64) render.RGB {
	s.calls++
	return s.c
}

func noTorchOptions() Options {
	o := DefaultOptions()
	o.Torch.Enabled = false
	return o
}

func TestRenderSolidColumn(t *testing.T) {
	o := noTorchOptions()
	r := NewRenderer(o)
	m := grid.Room(5, 5, 1)
	pose := grid.NewPose(2.5, 2.5, 0)

	f := r.Render(nil, m, pose, nil, 0)
	if f.Width != o.Width || f.Height != o.Height {
		t.Fatalf("Expected %dx%d frame, got %dx%d", o.Width, o.Height, f.Width, f.Height)
	}

	mid := o.Width / 2
	hit := r.Hits()[mid]
	want := o.light(o.Palette.Color(1), o.Shade(hit.PerpDist, hit.Side), 0)
	if got := f.At(mid, o.Height/2); got != want {
		t.Errorf("Expected wall colour %v at centre, got %v", want, got)
	}

	wantCeil := render.Scale(o.Ceiling, 0.7)
	if got := f.At(mid, 0); got != wantCeil {
		t.Errorf("Expected ceiling %v at top row, got %v", wantCeil, got)
	}
	wantFloor := render.Scale(o.Floor, 0.7+0.3*(1-float64(o.Height-1-o.Height/2)/float64(o.Height/2)))
	if got := f.At(mid, o.Height-1); got != wantFloor {
		t.Errorf("Expected floor %v at bottom row, got %v", wantFloor, got)
	}
}

func TestRenderUsesSamplerOnlyWithTiles(t *testing.T) {
	o := noTorchOptions()
	r := NewRenderer(o)
	m := grid.Room(5, 5, 1)
	pose := grid.NewPose(2.5, 2.5, 0)

	empty := &constSampler{tiles: false, c: render.RGB{R: 0, G: 255, B: 0}}
	r.Render(nil, m, pose, empty, 0)
	if empty.calls != 0 {
		t.Errorf("Expected no sampling without tiles, got %d calls", empty.calls)
	}

	tiled := &constSampler{tiles: true, c: render.RGB{R: 0, G: 200, B: 0}}
	f := r.Render(nil, m, pose, tiled, 0)
	if tiled.calls == 0 {
		t.Fatal("Expected per-pixel sampling with tiles")
	}
	mid := o.Width / 2
	hit := r.Hits()[mid]
	want := o.light(tiled.c, o.Shade(hit.PerpDist, hit.Side), 0)
	if got := f.At(mid, o.Height/2); got != want {
		t.Errorf("Expected sampled colour %v, got %v", want, got)
	}
}

func TestRenderReusesDestination(t *testing.T) {
	r := NewRenderer(noTorchOptions())
	m, pose := grid.TestMap()
	dst := render.NewFrame(128, 128)
	if out := r.Render(dst, m, pose, nil, 0); out != dst {
		t.Error("Expected matching destination to be reused")
	}
	if out := r.Render(render.NewFrame(3, 3), m, pose, nil, 0); out.Width != 128 {
		t.Error("Expected mis-sized destination to be replaced")
	}
}

func TestRenderTorchAndBloom(t *testing.T) {
	o := DefaultOptions()
	r := NewRenderer(o)
	// Single row corridor at y=1 (1 % 3 == 1), east wall 2.5 units ahead carries a torch
	m := grid.Room(6, 3, 1)
	pose := grid.NewPose(2.5, 1.5, 0)

	lit := r.Render(nil, m, pose, nil, 1.25)
	torches := append([]TorchMark(nil), r.Torches()...)
	if len(torches) == 0 {
		t.Fatal("Expected torch sprite on the centre columns")
	}
	if r.TorchLight() <= 0 {
		t.Error("Expected positive torch light near a torch")
	}
	centred := false
	for _, tm := range torches {
		if tm.Column >= o.Width/2-4 && tm.Column <= o.Width/2+4 {
			centred = true
		}
		if tm.Top > tm.Base {
			t.Errorf("Flame top %d below base %d", tm.Top, tm.Base)
		}
	}
	if !centred {
		t.Error("Expected a torch sprite at the screen centre")
	}

	dark := NewRenderer(noTorchOptions()).Render(nil, m, pose, nil, 1.25)
	tm := torches[0]
	// Glow ring next to the flame tip adds warmth
	gx, gy := tm.Column, tm.Top-1
	if gy >= 0 {
		if lit.At(gx, gy).R <= dark.At(gx, gy).R {
			t.Errorf("Expected bloom to brighten red at (%d, %d): %v vs %v", gx, gy, lit.At(gx, gy), dark.At(gx, gy))
		}
	}
}

func TestRenderDeterministicForTimestamp(t *testing.T) {
	m := grid.Room(6, 3, 1)
	pose := grid.NewPose(2.5, 1.5, 0)

	a := NewRenderer(DefaultOptions()).Render(nil, m, pose, nil, 3.5)
	b := NewRenderer(DefaultOptions()).Render(nil, m, pose, nil, 3.5)
	if !a.Equal(b) {
		t.Error("Expected identical frames for identical timestamps")
	}
}
