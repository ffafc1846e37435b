package game

import (
	"fmt"

	"github.com/lixenwraith/diffused-rays/render"
)

// Controls is one poll of player input
// Movement fields are held-key state; toggles and Quit are edges since the last poll
type Controls struct {
	Forward   bool
	Backward  bool
	TurnLeft  bool
	TurnRight bool

	ToggleStylize bool
	ToggleTexture bool
	Quit          bool
}

// HUD is the overlay text a display draws over the frame
type HUD struct {
	FPS        float64
	Mode       ModeKind
	StylizeFPS float64
	Processed  int64
	Dropped    int64
	Message    string
}

// Lines formats the HUD top to bottom
func (h HUD) Lines() []string {
	lines := []string{fmt.Sprintf("FPS: %.1f", h.FPS)}
	switch h.Mode {
	case ModeOff:
		lines = append(lines, "Stylize: OFF (SPACE view, T textures)")
	default:
		lines = append(lines, fmt.Sprintf("Stylize: %s %.2f/s done %d dropped %d",
			h.Mode, h.StylizeFPS, h.Processed, h.Dropped))
	}
	if h.Message != "" {
		lines = append(lines, h.Message)
	}
	lines = append(lines, "WASD/Arrows: Move | ESC: Quit")
	return lines
}

// Display presents frames and reports input
type Display interface {
	Poll() Controls
	Present(frame *render.Frame, hud HUD) error
	Close() error
}
