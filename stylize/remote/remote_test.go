package remote

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/lixenwraith/diffused-rays/render"
	"github.com/lixenwraith/diffused-rays/stylize"
)

type failingModel struct {
	loadErr error
	failing atomic.Bool
}

func (m *failingModel) Load(context.Context) error { return m.loadErr }

func (m *failingModel) Stylize(_ context.Context, f *render.Frame, _ stylize.Params) (*render.Frame, error) {
	if m.failing.Load() {
		return nil, errors.New("nan in latents")
	}
	return f.Clone(), nil
}

func serve(t *testing.T, m stylize.Model) (*Handler, string) {
	t.Helper()
	h := NewHandler(stylize.NewResource(m))
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return h, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func testFrame() *render.Frame {
	f := render.NewFrame(16, 8)
	for i := range f.Pix {
		f.Pix[i] = render.RGB{R: uint8(i), G: uint8(255 - i), B: 40}
	}
	return f
}

func TestRemoteMatchesLocalModel(t *testing.T) {
	toon := stylize.NewToonModel(0)
	h, url := serve(t, toon)

	c := NewClient(url)
	defer c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	in := testFrame()
	got, err := c.Stylize(ctx, in, stylize.DefaultParams())
	if err != nil {
		t.Fatalf("Stylize: %v", err)
	}
	want, _ := stylize.NewToonModel(0).Stylize(ctx, in, stylize.DefaultParams())
	if !got.Equal(want) {
		t.Error("Expected remote result to match the local model pixel for pixel")
	}
	if h.Served() != 1 {
		t.Errorf("Expected 1 served frame, got %d", h.Served())
	}
}

func TestRemoteLoadFailure(t *testing.T) {
	_, url := serve(t, &failingModel{loadErr: errors.New("no device")})
	c := NewClient(url)
	defer c.Close()

	err := c.Load(context.Background())
	if !errors.Is(err, stylize.ErrModelUnavailable) {
		t.Errorf("Expected ErrModelUnavailable, got %v", err)
	}
}

func TestRemoteUnreachable(t *testing.T) {
	c := NewClient("ws://127.0.0.1:1/stylize")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.Load(ctx); !errors.Is(err, stylize.ErrModelUnavailable) {
		t.Errorf("Expected ErrModelUnavailable, got %v", err)
	}
}

func TestRemoteStylizeError(t *testing.T) {
	m := &failingModel{}
	m.failing.Store(true)
	_, url := serve(t, m)
	c := NewClient(url)
	defer c.Close()

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	_, err := c.Stylize(context.Background(), testFrame(), stylize.DefaultParams())
	if err == nil || !strings.Contains(err.Error(), "nan in latents") {
		t.Fatalf("Expected remote error to surface, got %v", err)
	}

	// Connection survives an error reply
	m.failing.Store(false)
	if _, err := c.Stylize(context.Background(), testFrame(), stylize.DefaultParams()); err != nil {
		t.Errorf("Expected recovery after error reply, got %v", err)
	}
}

func TestRemoteDrivesPipeline(t *testing.T) {
	_, url := serve(t, stylize.NewToonModel(0))
	c := NewClient(url)
	defer c.Close()

	opts := stylize.DefaultOptions("remote")
	opts.PollInterval = 5 * time.Millisecond
	p := stylize.New(stylize.NewResource(c), opts)
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	p.Submit(testFrame(), "")
	deadline := time.Now().Add(5 * time.Second)
	for p.FramesProcessed() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("No result from remote pipeline")
		}
		time.Sleep(5 * time.Millisecond)
	}
	f, ok := p.TryGetResult()
	if !ok || f.Width != 16 || f.Height != 8 {
		t.Errorf("Expected 16x8 result, got %v (ok=%v)", f, ok)
	}
}

func TestFrameCodecLossless(t *testing.T) {
	in := testFrame()
	b, err := encodeFrame(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := decodeFrame(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Equal(in) {
		t.Error("Expected PNG transport to be lossless")
	}
	if _, err := decodeFrame(nil); err == nil {
		t.Error("Expected error for empty payload")
	}
}
