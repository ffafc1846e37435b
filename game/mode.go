package game

import (
	"github.com/lixenwraith/diffused-rays/atlas"
	"github.com/lixenwraith/diffused-rays/stylize"
)

// Mode is the active presentation mode; exactly one of OffMode, StylizedMode
// or TextureMode. Pipelines and the atlas exist only inside the mode that uses them.
type Mode interface {
	Kind() ModeKind
}

// ModeKind names a mode without its payload
type ModeKind int

const (
	ModeOff ModeKind = iota
	ModeStylized
	ModeTexture
)

func (k ModeKind) String() string {
	switch k {
	case ModeOff:
		return "off"
	case ModeStylized:
		return "stylized"
	case ModeTexture:
		return "texture"
	default:
		return "unknown"
	}
}

// OffMode shows the raw raycast frame
type OffMode struct{}

// StylizedMode blends the latest styled frame over the raw frame
type StylizedMode struct {
	Pipeline *stylize.Pipeline
}

// TextureMode samples walls from an atlas restyled in the background
type TextureMode struct {
	Pipeline *stylize.Pipeline
	Atlas    *atlas.Manager
}

func (OffMode) Kind() ModeKind      { return ModeOff }
func (StylizedMode) Kind() ModeKind { return ModeStylized }
func (TextureMode) Kind() ModeKind  { return ModeTexture }

// pipelineOf returns the mode's pipeline, nil for OffMode
func pipelineOf(m Mode) *stylize.Pipeline {
	switch m := m.(type) {
	case StylizedMode:
		return m.Pipeline
	case TextureMode:
		return m.Pipeline
	default:
		return nil
	}
}
