package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lixenwraith/diffused-rays/app"
	"github.com/lixenwraith/diffused-rays/core"
	"github.com/lixenwraith/diffused-rays/display/term"
)

var (
	debugFlag  = flag.Bool("debug", false, "Write logs to logs/diffrays.log")
	mapFlag    = flag.String("map", "", "Text map file; the built-in maze when empty")
	mazeFlag   = flag.Int("maze", 0, "Generate an N x N dungeon instead of loading a map")
	remoteFlag = flag.String("remote", "", "Stylizer server URL, e.g. ws://localhost:8765/stylize")
	muteFlag   = flag.Bool("mute", false, "Disable sound")
)

func main() {
	flag.Parse()

	if logFile := app.SetupLogging(*debugFlag); logFile != nil {
		defer logFile.Close()
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "diffrays: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Restores the terminal through the display's crash hook before printing the stack
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	display, err := term.NewTerminal(term.DefaultOptions())
	if err != nil {
		return err
	}

	a, err := app.New(app.Options{
		MapPath:   *mapFlag,
		MazeSize:  *mazeFlag,
		RemoteURL: *remoteFlag,
		Mute:      *muteFlag,
		Seed:      time.Now().UnixNano(),
	}, display)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Run(ctx)
}
