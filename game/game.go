// Package game owns the player, the view and the stylization modes, and drives
// them one tick at a time from a Display.
package game

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/lixenwraith/diffused-rays/atlas"
	"github.com/lixenwraith/diffused-rays/config"
	"github.com/lixenwraith/diffused-rays/core"
	"github.com/lixenwraith/diffused-rays/grid"
	"github.com/lixenwraith/diffused-rays/raycast"
	"github.com/lixenwraith/diffused-rays/render"
	"github.com/lixenwraith/diffused-rays/status"
	"github.com/lixenwraith/diffused-rays/stylize"
)

const (
	messageTTL = 3 * time.Second
	maxStep    = 0.25 // Longest simulated step, seconds; hides stalls such as a model load

	chimeOn  = 660.0
	chimeOff = 440.0
)

// Sound receives game events; audio.Service satisfies it
type Sound interface {
	SetTorchLight(level float64)
	Chime(freq float64)
}

// Options wires a game. Zero fields take working defaults.
type Options struct {
	Config   config.Config
	Map      *grid.Map
	Pose     grid.Pose
	Resource *stylize.Resource // Shared by the view and texture pipelines
	Registry *status.Registry
	Clock    core.Clock
	Sound    Sound
	Seed     int64 // Atlas noise seed
}

// Game is driven from a single goroutine; only the pipelines' workers run elsewhere
type Game struct {
	cfg      config.Config
	m        *grid.Map
	pose     grid.Pose
	clock    core.Clock
	sound    Sound
	renderer *raycast.Renderer
	atlas    *atlas.Manager

	view    *stylize.Pipeline
	texture *stylize.Pipeline
	mode    Mode

	raw *render.Frame
	out *render.Frame

	start       time.Time
	frames      int64
	fpsMeter    *stylize.Meter
	stylizeRate *stylize.Meter

	message      string
	messageUntil time.Time

	statFPS  *status.Float
	statMode *status.Label
}

// New builds a game in OffMode
func New(opts Options) *Game {
	cfg := opts.Config
	if opts.Map == nil {
		opts.Map, opts.Pose = grid.TestMap()
	}
	if opts.Clock == nil {
		opts.Clock = core.SystemClock{}
	}
	if opts.Registry == nil {
		opts.Registry = status.NewRegistry()
	}
	if opts.Resource == nil {
		opts.Resource = stylize.NewResource(stylize.NewToonModel(cfg.ModelLatency))
	}

	viewOpts := cfg.PipelineOptions("view")
	viewOpts.Registry = opts.Registry
	texOpts := cfg.PipelineOptions("texture")
	texOpts.Registry = opts.Registry
	texOpts.Params.Prompt = cfg.TexturePrompt
	texOpts.RejectBlank = true

	rOpts := cfg.RaycastOptions()
	g := &Game{
		cfg:         cfg,
		m:           opts.Map,
		pose:        opts.Pose,
		clock:       opts.Clock,
		sound:       opts.Sound,
		renderer:    raycast.NewRenderer(rOpts),
		atlas:       atlas.New(rOpts.Palette),
		view:        stylize.New(opts.Resource, viewOpts),
		texture:     stylize.New(opts.Resource, texOpts),
		mode:        OffMode{},
		fpsMeter:    stylize.NewMeter(opts.Clock, time.Second),
		stylizeRate: stylize.NewMeter(opts.Clock, time.Second),
		statFPS:     opts.Registry.Gauges.Get("game.fps"),
		statMode:    opts.Registry.Labels.Get("game.mode"),
	}
	g.atlas.GenerateBase(rand.New(rand.NewSource(opts.Seed)))
	g.start = g.clock.Now()
	g.statMode.Store(ModeOff.String())
	return g
}

// Mode returns the active mode
func (g *Game) Mode() Mode {
	return g.mode
}

// Pose returns the camera pose
func (g *Game) Pose() grid.Pose {
	return g.pose
}

// Atlas returns the texture atlas sampled in TextureMode
func (g *Game) Atlas() *atlas.Manager {
	return g.atlas
}

// ViewPipeline returns the whole-frame pipeline used by StylizedMode
func (g *Game) ViewPipeline() *stylize.Pipeline {
	return g.view
}

// TexturePipeline returns the atlas pipeline used by TextureMode
func (g *Game) TexturePipeline() *stylize.Pipeline {
	return g.texture
}

// SetMode leaves the active mode and enters kind
// The old pipeline is drained before it stops so no stale result survives the switch.
// If the new pipeline fails to start the game falls back to OffMode and returns the error.
func (g *Game) SetMode(ctx context.Context, kind ModeKind) error {
	if g.mode.Kind() == kind {
		return nil
	}

	if p := pipelineOf(g.mode); p != nil {
		if !p.Drain() {
			log.Printf("game: %s pipeline still busy after drain", p.Name())
		}
		if err := p.Stop(); err != nil {
			log.Printf("game: stop %s pipeline: %v", p.Name(), err)
		}
	}
	g.mode = OffMode{}
	g.stylizeRate.Reset()

	var next Mode
	switch kind {
	case ModeOff:
		g.enter(OffMode{})
		return nil
	case ModeStylized:
		next = StylizedMode{Pipeline: g.view}
	case ModeTexture:
		next = TextureMode{Pipeline: g.texture, Atlas: g.atlas}
	default:
		return errors.Errorf("unknown mode %d", kind)
	}

	p := pipelineOf(next)
	if err := p.Start(ctx); err != nil {
		g.enter(OffMode{})
		g.notify("Stylizer unavailable: " + err.Error())
		return err
	}
	if tm, ok := next.(TextureMode); ok {
		p.Submit(tm.Atlas.Base(), "")
	}
	g.enter(next)
	return nil
}

func (g *Game) enter(m Mode) {
	g.mode = m
	g.statMode.Store(m.Kind().String())
	log.Printf("game: mode %s", m.Kind())
	if g.sound == nil {
		return
	}
	if m.Kind() == ModeOff {
		g.sound.Chime(chimeOff)
	} else {
		g.sound.Chime(chimeOn)
	}
}

func (g *Game) notify(msg string) {
	g.message = msg
	g.messageUntil = g.clock.Now().Add(messageTTL)
}

// Tick applies one poll of input, advances the world by dt seconds and returns the
// frame to present, valid until the next Tick
func (g *Game) Tick(ctx context.Context, c Controls, dt float64) *render.Frame {
	g.toggle(ctx, c)

	if dt > maxStep {
		dt = maxStep
	}
	if pipelineOf(g.mode) != nil && dt > g.cfg.StylizeDT {
		dt = g.cfg.StylizeDT
	}
	g.move(c, dt)

	var sampler raycast.Sampler
	if tm, ok := g.mode.(TextureMode); ok {
		if styled, ok := tm.Pipeline.TryGetResult(); ok {
			tm.Atlas.Unpack(styled)
			tm.Pipeline.Submit(tm.Atlas.Base(), "")
		}
		sampler = tm.Atlas
	}

	t := g.clock.Now().Sub(g.start).Seconds()
	g.raw = g.renderer.Render(g.raw, g.m, g.pose, sampler, t)
	if g.sound != nil {
		g.sound.SetTorchLight(g.renderer.TorchLight())
	}

	var styled *render.Frame
	if sm, ok := g.mode.(StylizedMode); ok {
		sm.Pipeline.Submit(g.raw, "")
		styled = sm.Pipeline.GetLatestOr(nil)
	}
	g.out = render.Composite(g.out, g.raw, styled, g.cfg.Blend)

	g.frames++
	g.statFPS.Set(g.fpsMeter.Observe(g.frames))
	if p := pipelineOf(g.mode); p != nil {
		g.stylizeRate.Observe(p.FramesProcessed())
	}
	return g.out
}

func (g *Game) toggle(ctx context.Context, c Controls) {
	switch {
	case c.ToggleStylize:
		target := ModeStylized
		if g.mode.Kind() == ModeStylized {
			target = ModeOff
		}
		_ = g.SetMode(ctx, target)
	case c.ToggleTexture:
		target := ModeTexture
		if g.mode.Kind() == ModeTexture {
			target = ModeOff
		}
		_ = g.SetMode(ctx, target)
	}
}

func (g *Game) move(c Controls, dt float64) {
	step := g.cfg.MoveSpeed * dt
	turn := g.cfg.TurnSpeed * dt
	if c.Forward {
		g.pose.MoveForward(step, g.m)
	}
	if c.Backward {
		g.pose.MoveBackward(step, g.m)
	}
	if c.TurnLeft {
		g.pose.TurnLeft(turn)
	}
	if c.TurnRight {
		g.pose.TurnRight(turn)
	}
}

// HUD reports the overlay for the last tick
func (g *Game) HUD() HUD {
	h := HUD{
		FPS:  g.fpsMeter.Rate(),
		Mode: g.mode.Kind(),
	}
	if p := pipelineOf(g.mode); p != nil {
		h.StylizeFPS = g.stylizeRate.Rate()
		h.Processed = p.FramesProcessed()
		h.Dropped = p.Dropped()
	}
	if g.message != "" && g.clock.Now().Before(g.messageUntil) {
		h.Message = g.message
	}
	return h
}

// Run ticks at the configured frame cap until the display reports Quit or ctx ends
func (g *Game) Run(ctx context.Context, d Display) error {
	fps := g.cfg.FPSCap
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	last := g.clock.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		c := d.Poll()
		if c.Quit {
			return nil
		}

		now := g.clock.Now()
		dt := now.Sub(last).Seconds()
		last = now

		frame := g.Tick(ctx, c, dt)
		if err := d.Present(frame, g.HUD()); err != nil {
			return errors.Wrap(err, "present frame")
		}
	}
}

// Shutdown stops whichever pipeline is running
func (g *Game) Shutdown() error {
	var firstErr error
	for _, p := range []*stylize.Pipeline{g.view, g.texture} {
		if err := p.Stop(); err != nil && firstErr == nil {
			firstErr = errors.Wrapf(err, "stop %s pipeline", p.Name())
		}
	}
	g.mode = OffMode{}
	g.statMode.Store(ModeOff.String())
	return firstErr
}
