// Package term presents frames in a terminal using half-block cells and reads
// the keyboard through tcell.
package term

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"

	"github.com/lixenwraith/diffused-rays/core"
	"github.com/lixenwraith/diffused-rays/game"
	"github.com/lixenwraith/diffused-rays/render"
)

// halfBlock paints the top pixel as foreground and the bottom pixel as background
const halfBlock = '▀'

// Terminals report presses and auto-repeats but never releases, so a movement key
// counts as held for a short window after its last event
const defaultHoldWindow = 150 * time.Millisecond

type hold int

const (
	holdForward hold = iota
	holdBackward
	holdLeft
	holdRight
	holdCount
)

// Options configures the terminal display
type Options struct {
	HoldWindow time.Duration
	Clock      core.Clock
}

// DefaultOptions returns the interactive defaults
func DefaultOptions() Options {
	return Options{HoldWindow: defaultHoldWindow, Clock: core.SystemClock{}}
}

// Screen implements game.Display on a tcell screen
// Poll, Present and Close belong to the render goroutine
type Screen struct {
	screen tcell.Screen
	opts   Options

	events  chan tcell.Event
	quit    chan struct{}
	started bool
	once    sync.Once

	held    [holdCount]time.Time
	pending game.Controls // Edges seen since the last Poll
	closed  bool

	hudStyle tcell.Style
	scaled   *render.Frame // Frame resampled to the terminal square
}

// New wraps a tcell screen; the screen is initialised by Start
func New(screen tcell.Screen, opts Options) *Screen {
	if opts.HoldWindow <= 0 {
		opts.HoldWindow = defaultHoldWindow
	}
	if opts.Clock == nil {
		opts.Clock = core.SystemClock{}
	}
	return &Screen{
		screen:   screen,
		opts:     opts,
		events:   make(chan tcell.Event, 64),
		quit:     make(chan struct{}),
		hudStyle: tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack),
	}
}

// NewTerminal opens the controlling terminal
func NewTerminal(opts Options) (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, errors.Wrap(err, "open terminal")
	}
	return New(s, opts), nil
}

// Name implements service.Service
func (s *Screen) Name() string {
	return "display"
}

// Dependencies implements service.Service
func (s *Screen) Dependencies() []string {
	return nil
}

// Init implements service.Service
func (s *Screen) Init(args ...any) error {
	return nil
}

// Start initialises the terminal and begins forwarding its events
func (s *Screen) Start() error {
	if s.started {
		return nil
	}
	if err := s.screen.Init(); err != nil {
		return errors.Wrap(err, "init terminal")
	}
	s.started = true
	s.screen.HideCursor()
	s.screen.Clear()

	// A crash must leave the terminal usable before the stack is printed
	core.OnCrash(s.screen.Fini)
	core.Go(func() { s.screen.ChannelEvents(s.events, s.quit) })
	return nil
}

// Stop implements service.Service
func (s *Screen) Stop() error {
	return s.Close()
}

// Close restores the terminal; safe to call more than once
func (s *Screen) Close() error {
	s.once.Do(func() {
		s.closed = true
		close(s.quit)
		if s.started {
			s.screen.Fini()
		}
	})
	return nil
}

// Poll drains pending terminal events and returns the resulting controls
func (s *Screen) Poll() game.Controls {
	if s.closed {
		return game.Controls{Quit: true}
	}

drain:
	for {
		select {
		case ev, ok := <-s.events:
			if !ok {
				s.pending.Quit = true
				break drain
			}
			s.handle(ev)
		default:
			break drain
		}
	}

	now := s.opts.Clock.Now()
	c := s.pending
	s.pending = game.Controls{}
	c.Forward = s.isHeld(holdForward, now)
	c.Backward = s.isHeld(holdBackward, now)
	c.TurnLeft = s.isHeld(holdLeft, now)
	c.TurnRight = s.isHeld(holdRight, now)
	return c
}

func (s *Screen) isHeld(h hold, now time.Time) bool {
	t := s.held[h]
	return !t.IsZero() && now.Sub(t) < s.opts.HoldWindow
}

func (s *Screen) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		s.handleKey(ev)
	case *tcell.EventResize:
		s.screen.Sync()
	}
}

func (s *Screen) handleKey(ev *tcell.EventKey) {
	now := s.opts.Clock.Now()
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		s.pending.Quit = true
	case tcell.KeyUp:
		s.held[holdForward] = now
	case tcell.KeyDown:
		s.held[holdBackward] = now
	case tcell.KeyLeft:
		s.held[holdLeft] = now
	case tcell.KeyRight:
		s.held[holdRight] = now
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'w', 'W':
			s.held[holdForward] = now
		case 's', 'S':
			s.held[holdBackward] = now
		case 'a', 'A':
			s.held[holdLeft] = now
		case 'd', 'D':
			s.held[holdRight] = now
		case ' ':
			s.pending.ToggleStylize = true
		case 't', 'T':
			s.pending.ToggleTexture = true
		case 'q', 'Q':
			s.pending.Quit = true
		}
	}
}

// Present draws frame scaled to the largest centred square the terminal fits,
// two pixels per cell, with the HUD over the top rows
func (s *Screen) Present(frame *render.Frame, hud game.HUD) error {
	if s.closed {
		return errors.New("terminal closed")
	}
	w, h := s.screen.Size()
	if w <= 0 || h <= 0 {
		return nil
	}
	s.screen.Clear()

	side := min(w, 2*h)
	if s.scaled == nil || s.scaled.Width != side {
		s.scaled = render.NewFrame(side, side)
	}
	render.ScaleNearest(s.scaled, frame)

	offX := (w - side) / 2
	offY := (h - side/2) / 2
	for cy := 0; cy < side/2; cy++ {
		for cx := 0; cx < side; cx++ {
			style := tcell.StyleDefault.
				Foreground(color(s.scaled.At(cx, 2*cy))).
				Background(color(s.scaled.At(cx, 2*cy+1)))
			s.screen.SetContent(offX+cx, offY+cy, halfBlock, nil, style)
		}
	}

	for row, line := range hud.Lines() {
		if row >= h {
			break
		}
		s.drawText(0, row, line)
	}

	s.screen.Show()
	return nil
}

func (s *Screen) drawText(x, y int, text string) {
	w, _ := s.screen.Size()
	for _, r := range text {
		if x >= w {
			return
		}
		s.screen.SetContent(x, y, r, nil, s.hudStyle)
		x++
	}
}

func color(c render.RGB) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
