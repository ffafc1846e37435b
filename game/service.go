package game

// Name implements service.Service
func (g *Game) Name() string {
	return "game"
}

// Dependencies implements service.Service
// The game stops before the audio and display it drives
func (g *Game) Dependencies() []string {
	return []string{"audio", "display"}
}

// Init implements service.Service
func (g *Game) Init(args ...any) error {
	return nil
}

// Start implements service.Service; pipelines start on demand from SetMode
func (g *Game) Start() error {
	return nil
}

// Stop implements service.Service
func (g *Game) Stop() error {
	return g.Shutdown()
}
