package term

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/diffused-rays/core"
	"github.com/lixenwraith/diffused-rays/game"
	"github.com/lixenwraith/diffused-rays/render"
)

func newTestScreen(t *testing.T) (*Screen, tcell.SimulationScreen, *core.MockClock) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	clock := core.NewMockClock(time.Unix(0, 0))
	s := New(sim, Options{HoldWindow: 100 * time.Millisecond, Clock: clock})
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sim.SetSize(64, 32)
	t.Cleanup(func() { s.Close() })
	return s, sim, clock
}

// pollUntil polls until any control is set, since events arrive asynchronously
func pollUntil(t *testing.T, s *Screen) game.Controls {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if c := s.Poll(); c != (game.Controls{}) {
			return c
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("No controls reported within a second")
	return game.Controls{}
}

func TestKeyMapping(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		r    rune
		want game.Controls
	}{
		{"up arrow", tcell.KeyUp, 0, game.Controls{Forward: true}},
		{"w", tcell.KeyRune, 'w', game.Controls{Forward: true}},
		{"down arrow", tcell.KeyDown, 0, game.Controls{Backward: true}},
		{"s", tcell.KeyRune, 's', game.Controls{Backward: true}},
		{"left arrow", tcell.KeyLeft, 0, game.Controls{TurnLeft: true}},
		{"a", tcell.KeyRune, 'a', game.Controls{TurnLeft: true}},
		{"right arrow", tcell.KeyRight, 0, game.Controls{TurnRight: true}},
		{"d", tcell.KeyRune, 'D', game.Controls{TurnRight: true}},
		{"space", tcell.KeyRune, ' ', game.Controls{ToggleStylize: true}},
		{"t", tcell.KeyRune, 't', game.Controls{ToggleTexture: true}},
		{"escape", tcell.KeyEscape, 0, game.Controls{Quit: true}},
		{"q", tcell.KeyRune, 'q', game.Controls{Quit: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, sim, _ := newTestScreen(t)
			sim.InjectKey(tt.key, tt.r, tcell.ModNone)
			if got := pollUntil(t, s); got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestMovementHeldWithinWindow(t *testing.T) {
	s, sim, clock := newTestScreen(t)
	sim.InjectKey(tcell.KeyRune, 'w', tcell.ModNone)
	pollUntil(t, s)

	clock.Advance(50 * time.Millisecond)
	if !s.Poll().Forward {
		t.Error("Expected forward still held inside the window")
	}
	clock.Advance(60 * time.Millisecond)
	if s.Poll().Forward {
		t.Error("Expected forward released after the window")
	}
}

func TestTogglesAreEdges(t *testing.T) {
	s, sim, _ := newTestScreen(t)
	sim.InjectKey(tcell.KeyRune, ' ', tcell.ModNone)
	if !pollUntil(t, s).ToggleStylize {
		t.Fatal("Expected toggle")
	}
	if s.Poll().ToggleStylize {
		t.Error("Expected toggle reported once")
	}
}

func TestPresentHalfBlocks(t *testing.T) {
	s, sim, _ := newTestScreen(t)

	red := render.RGB{R: 255}
	blue := render.RGB{B: 255}
	frame := render.NewFrame(128, 128)
	for y := 0; y < 128; y++ {
		c := red
		if y >= 64 {
			c = blue
		}
		frame.FillRow(y, c)
	}
	// Cell row 15 samples pixel rows 60 and 62
	frame.FillRow(62, blue)

	if err := s.Present(frame, game.HUD{FPS: 60}); err != nil {
		t.Fatalf("Present: %v", err)
	}
	cells, w, h := sim.GetContents()
	if w != 64 || h != 32 {
		t.Fatalf("Unexpected screen size %dx%d", w, h)
	}

	tests := []struct {
		name   string
		x, y   int
		fg, bg render.RGB
	}{
		{"top half", 40, 10, red, red},
		{"bottom half", 40, 31, blue, blue},
		{"split cell", 40, 15, red, blue},
	}
	for _, tt := range tests {
		cell := cells[tt.y*w+tt.x]
		if len(cell.Runes) == 0 || cell.Runes[0] != halfBlock {
			t.Errorf("%s: expected half block, got %q", tt.name, cell.Runes)
			continue
		}
		fg, bg, _ := cell.Style.Decompose()
		if fg != color(tt.fg) || bg != color(tt.bg) {
			t.Errorf("%s: unexpected colours fg %v bg %v", tt.name, fg, bg)
		}
	}

	// HUD overlays the first row
	var line []rune
	for x := 0; x < 8; x++ {
		line = append(line, cells[x].Runes...)
	}
	if string(line) != "FPS: 60." {
		t.Errorf("Expected HUD text on row 0, got %q", string(line))
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s, _, _ := newTestScreen(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Second close: %v", err)
	}
	if !s.Poll().Quit {
		t.Error("Expected Quit after close")
	}
	if err := s.Present(render.NewFrame(4, 4), game.HUD{}); err == nil {
		t.Error("Expected present to fail after close")
	}
}
