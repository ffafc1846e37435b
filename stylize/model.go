package stylize

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/lixenwraith/diffused-rays/render"
)

// DefaultPrompt is sent when a submission carries no prompt of its own
const DefaultPrompt = "dark dungeon corridor, stone walls, torchlight, fantasy art"

// ErrModelUnavailable marks a model that could not be loaded; the caller may retry later
var ErrModelUnavailable = errors.New("stylize model unavailable")

// Params controls one image-to-image transformation
type Params struct {
	Prompt   string
	Strength float64 // 0 keeps the input, 1 replaces it
	Steps    int
	Guidance float64
}

// DefaultParams returns the low-step settings tuned for interactive latency
func DefaultParams() Params {
	return Params{
		Prompt:   DefaultPrompt,
		Strength: 0.5,
		Steps:    2,
		Guidance: 0,
	}
}

// Model is an opaque image-to-image transformation with seconds-scale latency
// Stylize may return a frame of any size; callers resample
type Model interface {
	Load(ctx context.Context) error
	Stylize(ctx context.Context, frame *render.Frame, p Params) (*render.Frame, error)
}

// Resource loads a model once and shares it between pipelines
// A failed load is not cached so a later Acquire retries
type Resource struct {
	mu     sync.Mutex
	model  Model
	loaded bool
}

// NewResource wraps a model that has not been loaded yet
func NewResource(m Model) *Resource {
	return &Resource{model: m}
}

// Acquire loads the model on first use and returns it
// Blocks for the duration of the load; concurrent callers wait for the same load
func (r *Resource) Acquire(ctx context.Context) (Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return r.model, nil
	}
	if r.model == nil {
		return nil, errors.Wrap(ErrModelUnavailable, "no model configured")
	}
	if err := r.model.Load(ctx); err != nil {
		if errors.Is(err, ErrModelUnavailable) {
			return nil, errors.Wrap(err, "load model")
		}
		return nil, errors.Wrapf(ErrModelUnavailable, "load model: %v", err)
	}
	r.loaded = true
	return r.model, nil
}

// Loaded reports whether a load has succeeded
func (r *Resource) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded
}
