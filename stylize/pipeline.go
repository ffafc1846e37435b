// Package stylize runs a slow image-to-image model off the render goroutine.
//
// A Pipeline owns one worker goroutine. The render goroutine hands frames over
// through a single-slot input and collects results through a single-slot output;
// both keep only the freshest value, so a slow model skips frames instead of
// building a backlog. Neither side ever blocks on the other.
package stylize

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/lixenwraith/diffused-rays/core"
	"github.com/lixenwraith/diffused-rays/render"
	"github.com/lixenwraith/diffused-rays/status"
)

// ErrStopTimeout is returned by Stop when the worker did not exit in time
// The pipeline is Stopped regardless; the worker exits once its model call returns
var ErrStopTimeout = errors.New("stylize worker did not stop in time")

// State is the pipeline lifecycle position
type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Request is one queued transformation
type Request struct {
	Frame  *render.Frame
	Params Params
	epoch  int64
}

// Options configures a pipeline
type Options struct {
	Name         string        // Metric prefix, "stylize.<name>."
	Params       Params        // Base parameters; Submit overrides the prompt
	StopTimeout  time.Duration // Bound on Stop and Drain
	PollInterval time.Duration // Worker wait granularity on the input slot
	RejectBlank  bool          // Treat an all-black result as a failure
	Registry     *status.Registry
}

// DefaultOptions returns the interactive defaults for a named pipeline
func DefaultOptions(name string) Options {
	return Options{
		Name:         name,
		Params:       DefaultParams(),
		StopTimeout:  time.Second,
		PollInterval: 100 * time.Millisecond,
	}
}

// run is the state of one Start..Stop cycle
// Each cycle gets fresh slots so a worker abandoned by a timed-out Stop can never
// leak its late result into a later cycle
type run struct {
	in     *Slot[Request]
	out    *Slot[*render.Frame]
	cancel context.CancelFunc
	done   chan struct{}
	busy   atomic.Bool
	epoch  atomic.Int64 // Bumped by Drain; results of older requests are discarded
}

// Pipeline decouples the render loop from a Model
// Start, Stop, Drain and the result getters belong to the render goroutine;
// Submit and the counters may be called from anywhere
type Pipeline struct {
	opts Options
	res  *Resource

	mu    sync.Mutex // Serialises Start/Stop/Drain
	state atomic.Int32
	cur   atomic.Pointer[run]

	latest *render.Frame // Last result handed to the caller

	statProcessed *atomic.Int64
	statSubmitted *atomic.Int64
	statDropped   *atomic.Int64
	statFailures  *atomic.Int64
	statLatency   *status.Float // Milliseconds of the last successful call
	statState     *status.Label
}

// New creates a stopped pipeline over a shared model resource
func New(res *Resource, opts Options) *Pipeline {
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 100 * time.Millisecond
	}
	if opts.Params.Prompt == "" {
		opts.Params.Prompt = DefaultPrompt
	}
	if opts.Registry == nil {
		opts.Registry = status.NewRegistry()
	}
	prefix := "stylize." + opts.Name + "."
	reg := opts.Registry

	p := &Pipeline{
		opts:          opts,
		res:           res,
		statProcessed: reg.Counters.Get(prefix + "processed"),
		statSubmitted: reg.Counters.Get(prefix + "submitted"),
		statDropped:   reg.Counters.Get(prefix + "dropped"),
		statFailures:  reg.Counters.Get(prefix + "failures"),
		statLatency:   reg.Gauges.Get(prefix + "latency_ms"),
		statState:     reg.Labels.Get(prefix + "state"),
	}
	p.setState(StateStopped)
	return p
}

func (p *Pipeline) setState(s State) {
	p.state.Store(int32(s))
	p.statState.Store(s.String())
}

// Name returns the pipeline name
func (p *Pipeline) Name() string {
	return p.opts.Name
}

// State returns the lifecycle state
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Running reports whether the worker is accepting submissions
func (p *Pipeline) Running() bool {
	return p.State() == StateRunning
}

// Start loads the model if needed and launches the worker
// Blocks for the load. Calling Start on a running pipeline is a no-op.
// On load failure the pipeline stays Stopped and the error wraps ErrModelUnavailable.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.State() != StateStopped {
		return nil
	}
	p.setState(StateStarting)

	model, err := p.res.Acquire(ctx)
	if err != nil {
		p.setState(StateStopped)
		return errors.Wrapf(err, "start %s pipeline", p.opts.Name)
	}

	wctx, cancel := context.WithCancel(ctx)
	r := &run{
		in:     NewSlot[Request](),
		out:    NewSlot[*render.Frame](),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	p.cur.Store(r)
	p.latest = nil
	p.setState(StateRunning)

	core.Go(func() { p.worker(wctx, r, model) })
	log.Printf("stylize: %s pipeline started", p.opts.Name)
	return nil
}

// Stop signals the worker, clears pending input and waits up to StopTimeout
// The pipeline is Stopped when Stop returns; ErrStopTimeout reports a worker
// still inside its model call. Stop on a stopped pipeline is a no-op.
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	r := p.cur.Swap(nil)
	p.setState(StateStopped)
	p.latest = nil
	if r == nil {
		return nil
	}

	r.in.Drain()
	r.cancel()

	select {
	case <-r.done:
		log.Printf("stylize: %s pipeline stopped", p.opts.Name)
		return nil
	case <-time.After(p.opts.StopTimeout):
		log.Printf("stylize: %s pipeline stop timed out after %v", p.opts.Name, p.opts.StopTimeout)
		return ErrStopTimeout
	}
}

// Drain discards pending input, waits up to StopTimeout for an in-flight call to
// finish and then discards any unread result and the cached latest frame
// Returns false when the in-flight call outlived the timeout
func (p *Pipeline) Drain() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.latest = nil
	r := p.cur.Load()
	if r == nil {
		return true
	}

	r.epoch.Add(1)
	r.in.Drain()
	finished := waitIdle(r, p.opts.StopTimeout)
	r.out.Drain()
	return finished
}

func waitIdle(r *run, timeout time.Duration) bool {
	if !r.busy.Load() {
		return true
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(5 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-r.done:
			return true
		case <-deadline.C:
			return !r.busy.Load()
		case <-tick.C:
			if !r.busy.Load() {
				return true
			}
		}
	}
}

// Submit queues a copy of frame for transformation without blocking
// Any pending submission is discarded. Submissions while not running are dropped.
// An empty prompt uses the pipeline's base prompt.
func (p *Pipeline) Submit(frame *render.Frame, prompt string) {
	p.statSubmitted.Add(1)

	r := p.cur.Load()
	if r == nil || frame == nil {
		p.statDropped.Add(1)
		return
	}

	params := p.opts.Params
	if prompt != "" {
		params.Prompt = prompt
	}

	replaced, ok := r.in.Put(Request{Frame: frame.Clone(), Params: params, epoch: r.epoch.Load()})
	if replaced {
		p.statDropped.Add(1)
	}
	if !ok {
		p.statDropped.Add(1)
	}
}

// TryGetResult returns a result that arrived since the last call, without blocking
func (p *Pipeline) TryGetResult() (*render.Frame, bool) {
	r := p.cur.Load()
	if r == nil {
		return nil, false
	}
	f, ok := r.out.TryTake()
	if ok {
		p.latest = f
	}
	return f, ok
}

// GetLatestOr returns the newest result ever fetched in this run, or fallback
func (p *Pipeline) GetLatestOr(fallback *render.Frame) *render.Frame {
	p.TryGetResult()
	if p.latest == nil {
		return fallback
	}
	return p.latest
}

// FramesProcessed counts results installed by the worker, never decreasing
func (p *Pipeline) FramesProcessed() int64 {
	return p.statProcessed.Load()
}

// Submitted counts Submit calls
func (p *Pipeline) Submitted() int64 {
	return p.statSubmitted.Load()
}

// Dropped counts submissions that were never transformed
func (p *Pipeline) Dropped() int64 {
	return p.statDropped.Load()
}

// Failures counts model calls that errored or produced an unusable result
func (p *Pipeline) Failures() int64 {
	return p.statFailures.Load()
}

// LastLatency returns the duration of the last successful model call
func (p *Pipeline) LastLatency() time.Duration {
	return time.Duration(p.statLatency.Get() * float64(time.Millisecond))
}

// worker transforms one request at a time until ctx is cancelled
func (p *Pipeline) worker(ctx context.Context, r *run, model Model) {
	defer close(r.done)

	for ctx.Err() == nil {
		req, ok := r.in.Take(ctx, p.opts.PollInterval)
		if !ok {
			continue
		}
		r.busy.Store(true)
		p.process(ctx, r, model, req)
		r.busy.Store(false)
	}
}

func (p *Pipeline) process(ctx context.Context, r *run, model Model, req Request) {
	start := time.Now()
	out, err := callModel(ctx, model, req)
	elapsed := time.Since(start)

	if ctx.Err() != nil {
		// Shutting down; the result belongs to nobody
		return
	}
	if err == nil && out == nil {
		err = errors.New("model returned no frame")
	}
	if err == nil && p.opts.RejectBlank && out.IsBlank() {
		err = errors.New("model returned a blank frame")
	}
	if err != nil {
		p.statFailures.Add(1)
		log.Printf("stylize: %s: %v", p.opts.Name, err)
		return
	}

	if req.epoch != r.epoch.Load() {
		// Drained while in flight
		return
	}
	r.out.Put(out)
	p.statLatency.Set(float64(elapsed) / float64(time.Millisecond))
	p.statProcessed.Add(1)
}

// callModel turns a model panic into a per-frame failure
func callModel(ctx context.Context, model Model, req Request) (out *render.Frame, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, errors.Errorf("model panicked: %v", r)
		}
	}()
	return model.Stylize(ctx, req.Frame, req.Params)
}
