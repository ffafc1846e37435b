// Package app assembles the game, its services and a display into one runnable
// unit shared by the terminal and window binaries.
package app

import (
	"context"
	"log"
	"math/rand"
	"os"

	"github.com/pkg/errors"

	"github.com/lixenwraith/diffused-rays/audio"
	"github.com/lixenwraith/diffused-rays/config"
	"github.com/lixenwraith/diffused-rays/game"
	"github.com/lixenwraith/diffused-rays/grid"
	"github.com/lixenwraith/diffused-rays/service"
	"github.com/lixenwraith/diffused-rays/status"
	"github.com/lixenwraith/diffused-rays/stylize"
	"github.com/lixenwraith/diffused-rays/stylize/remote"
)

// Display is a game display the hub can start and stop
type Display interface {
	game.Display
	service.Service
}

// Options are the command line choices
type Options struct {
	MapPath   string // Empty uses the built-in maze
	MazeSize  int    // Above zero generates a MazeSize x MazeSize dungeon instead
	RemoteURL string // Overrides DIFFRAYS_REMOTE
	Mute      bool
	Seed      int64
	Lookup    func(string) (string, bool) // Environment, os.LookupEnv when nil
}

// App is a wired game ready to Run
type App struct {
	Config   config.Config
	Game     *game.Game
	Hub      *service.Hub
	Registry *status.Registry

	display Display
	client  *remote.Client
}

// New loads configuration and the map, picks the model and registers every service
func New(opts Options, display Display) (*App, error) {
	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	cfg, err := config.LoadEnv(config.Default(), lookup)
	if err != nil {
		return nil, err
	}
	if opts.RemoteURL != "" {
		cfg.RemoteURL = opts.RemoteURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	m, pose := grid.TestMap()
	switch {
	case opts.MazeSize > 0:
		mc := grid.DefaultMazeConfig()
		mc.Width, mc.Height = opts.MazeSize, opts.MazeSize
		m, pose = grid.Maze(mc, rand.New(rand.NewSource(opts.Seed)))
	case opts.MapPath != "":
		if m, err = grid.Load(opts.MapPath); err != nil {
			return nil, err
		}
		if pose, err = grid.Spawn(m); err != nil {
			return nil, errors.Wrapf(err, "map %s", opts.MapPath)
		}
	}

	a := &App{
		Config:   cfg,
		Hub:      service.NewHub(),
		Registry: status.NewRegistry(),
		display:  display,
	}

	var model stylize.Model
	if cfg.RemoteURL != "" {
		a.client = remote.NewClient(cfg.RemoteURL)
		model = a.client
		log.Printf("app: stylizing remotely at %s", cfg.RemoteURL)
	} else {
		model = stylize.NewToonModel(cfg.ModelLatency)
	}

	sound := audio.NewService(cfg.Audio)
	a.Game = game.New(game.Options{
		Config:   cfg,
		Map:      m,
		Pose:     pose,
		Resource: stylize.NewResource(model),
		Registry: a.Registry,
		Sound:    sound,
		Seed:     opts.Seed,
	})

	for _, svc := range []service.Service{display, sound, a.Game} {
		if err := a.Hub.Register(svc); err != nil {
			return nil, err
		}
	}
	if err := a.Hub.InitAll(map[string][]any{"audio": {opts.Mute}}); err != nil {
		return nil, errors.Wrap(err, "init services")
	}
	return a, nil
}

// Run starts the services and plays until the display quits or ctx ends
// Services are stopped before Run returns.
func (a *App) Run(ctx context.Context) error {
	if err := a.Hub.StartAll(); err != nil {
		return errors.Wrap(err, "start services")
	}
	defer a.shutdown()
	if service.MustGet[*audio.Service](a.Hub, "audio").Disabled() {
		log.Printf("app: sound off")
	}
	return a.Game.Run(ctx, a.display)
}

func (a *App) shutdown() {
	a.Hub.StopAll()
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			log.Printf("app: close stylizer connection: %v", err)
		}
	}
	for _, s := range a.Registry.Snapshot() {
		log.Printf("app: %s = %s", s.Key, s.Value)
	}
}
