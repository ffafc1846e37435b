package glwindow

// Name implements service.Service
func (w *Window) Name() string {
	return "display"
}

// Dependencies implements service.Service
func (w *Window) Dependencies() []string {
	return nil
}

// Init implements service.Service
func (w *Window) Init(args ...any) error {
	return nil
}

// Start implements service.Service; Open already created the window
func (w *Window) Start() error {
	return nil
}

// Stop implements service.Service
func (w *Window) Stop() error {
	return w.Close()
}
