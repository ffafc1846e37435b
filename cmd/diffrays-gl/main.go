package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/lixenwraith/diffused-rays/app"
	"github.com/lixenwraith/diffused-rays/config"
	"github.com/lixenwraith/diffused-rays/core"
	"github.com/lixenwraith/diffused-rays/display/glwindow"
)

var (
	debugFlag  = flag.Bool("debug", false, "Write logs to logs/diffrays.log")
	mapFlag    = flag.String("map", "", "Text map file; the built-in maze when empty")
	mazeFlag   = flag.Int("maze", 0, "Generate an N x N dungeon instead of loading a map")
	remoteFlag = flag.String("remote", "", "Stylizer server URL, e.g. ws://localhost:8765/stylize")
	muteFlag   = flag.Bool("mute", false, "Disable sound")
)

// glfw and GL calls must stay on the main OS thread
func init() {
	runtime.LockOSThread()
}

func main() {
	flag.Parse()

	if logFile := app.SetupLogging(*debugFlag); logFile != nil {
		defer logFile.Close()
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "diffrays-gl: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	// Window size comes from the same configuration the app loads
	cfg, err := config.LoadEnv(config.Default(), os.LookupEnv)
	if err != nil {
		return err
	}
	win, err := glwindow.Open("Diffused Rays", cfg.DisplayWidth, cfg.DisplayHeight)
	if err != nil {
		return err
	}

	a, err := app.New(app.Options{
		MapPath:   *mapFlag,
		MazeSize:  *mazeFlag,
		RemoteURL: *remoteFlag,
		Mute:      *muteFlag,
		Seed:      time.Now().UnixNano(),
	}, win)
	if err != nil {
		win.Close()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Run(ctx)
}
