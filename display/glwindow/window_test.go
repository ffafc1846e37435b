package glwindow

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/lixenwraith/diffused-rays/game"
	"github.com/lixenwraith/diffused-rays/render"
)

func TestPackRGB(t *testing.T) {
	f := render.NewFrame(2, 1)
	f.Set(0, 0, render.RGB{R: 1, G: 2, B: 3})
	f.Set(1, 0, render.RGB{R: 4, G: 5, B: 6})

	got := packRGB(nil, f)
	want := []byte{1, 2, 3, 4, 5, 6}
	if string(got) != string(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}

	// A large enough buffer is reused
	buf := make([]byte, 0, 64)
	got = packRGB(buf, f)
	if &got[0] != &buf[:1][0] {
		t.Error("Expected buffer reuse")
	}
}

func TestEdgesReportOncePerPress(t *testing.T) {
	e := newEdges()
	steps := []struct {
		down bool
		want bool
	}{
		{false, false},
		{true, true},
		{true, false},
		{false, false},
		{true, true},
	}
	for i, s := range steps {
		if got := e.justPressed(glfw.KeyT, s.down); got != s.want {
			t.Errorf("Step %d: expected %v, got %v", i, s.want, got)
		}
	}
}

func TestWindowTitle(t *testing.T) {
	got := windowTitle("Diffused Rays", game.HUD{FPS: 30})
	want := "Diffused Rays | FPS: 30.0 | Stylize: OFF (SPACE view, T textures)"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
