// Package remote moves stylization to another process over a websocket.
//
// One request is in flight per connection. Every message is a JSON text frame;
// images travel as PNG bytes inside the JSON (base64 on the wire).
package remote

import (
	"bytes"
	"image/png"

	"github.com/pkg/errors"

	"github.com/lixenwraith/diffused-rays/render"
	"github.com/lixenwraith/diffused-rays/stylize"
)

// MessageType tags every message
type MessageType string

const (
	MessageTypeLoad    MessageType = "load"
	MessageTypeReady   MessageType = "ready"
	MessageTypeStylize MessageType = "stylize"
	MessageTypeResult  MessageType = "result"
	MessageTypeError   MessageType = "error"
)

// Message is the single envelope used in both directions
type Message struct {
	Type   MessageType    `json:"type"`
	ID     uint64         `json:"id,omitempty"`
	Params *ParamsMessage `json:"params,omitempty"`
	Image  []byte         `json:"image,omitempty"` // PNG
	Error  string         `json:"error,omitempty"`
}

// ParamsMessage mirrors stylize.Params on the wire
type ParamsMessage struct {
	Prompt   string  `json:"prompt"`
	Strength float64 `json:"strength"`
	Steps    int     `json:"steps"`
	Guidance float64 `json:"guidance"`
}

func toWire(p stylize.Params) *ParamsMessage {
	return &ParamsMessage{
		Prompt:   p.Prompt,
		Strength: p.Strength,
		Steps:    p.Steps,
		Guidance: p.Guidance,
	}
}

func fromWire(p *ParamsMessage) stylize.Params {
	if p == nil {
		return stylize.DefaultParams()
	}
	return stylize.Params{
		Prompt:   p.Prompt,
		Strength: p.Strength,
		Steps:    p.Steps,
		Guidance: p.Guidance,
	}
}

func encodeFrame(f *render.Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, f.ToImage()); err != nil {
		return nil, errors.Wrap(err, "encode png")
	}
	return buf.Bytes(), nil
}

func decodeFrame(b []byte) (*render.Frame, error) {
	if len(b) == 0 {
		return nil, errors.New("empty image payload")
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrap(err, "decode png")
	}
	return render.FromImage(img), nil
}
