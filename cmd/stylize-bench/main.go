// Command stylize-bench measures a stylizer: per-frame latency with direct calls,
// then throughput through the asynchronous pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/lixenwraith/diffused-rays/config"
	"github.com/lixenwraith/diffused-rays/render"
	"github.com/lixenwraith/diffused-rays/status"
	"github.com/lixenwraith/diffused-rays/stylize"
	"github.com/lixenwraith/diffused-rays/stylize/remote"
)

var (
	remoteFlag   = flag.String("remote", "", "Stylizer server URL; the built-in model when empty")
	latencyFlag  = flag.Duration("latency", 300*time.Millisecond, "Built-in model inference time")
	runsFlag     = flag.Int("runs", 5, "Timed synchronous runs")
	durationFlag = flag.Duration("duration", 5*time.Second, "Asynchronous phase length")
	saveFlag     = flag.Bool("save", false, "Write bench_input.png and bench_output.png")
)

type benchConfig struct {
	Runs      int
	Duration  time.Duration
	SubmitGap time.Duration // Pause between async submissions, one game frame
	Pipeline  stylize.Options
	Save      bool
}

type benchResult struct {
	Latencies []time.Duration
	Output    *render.Frame
	Submitted int64
	Processed int64
	Dropped   int64
	Failures  int64
	Elapsed   time.Duration
}

func main() {
	flag.Parse()

	cfg := config.Default()
	var model stylize.Model
	if *remoteFlag != "" {
		c := remote.NewClient(*remoteFlag)
		defer c.Close()
		model = c
	} else {
		model = stylize.NewToonModel(*latencyFlag)
	}

	bc := benchConfig{
		Runs:      *runsFlag,
		Duration:  *durationFlag,
		SubmitGap: time.Second / time.Duration(cfg.FPSCap),
		Pipeline:  cfg.PipelineOptions("bench"),
		Save:      *saveFlag,
	}
	input := testImage(cfg.RenderWidth, cfg.RenderHeight)
	if _, err := bench(context.Background(), stylize.NewResource(model), input, bc, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "stylize-bench: %v\n", err)
		os.Exit(1)
	}
}

// testImage is a red to blue gradient with two nested grey squares
func testImage(w, h int) *render.Frame {
	f := render.NewFrame(w, h)
	for x := 0; x < w; x++ {
		r := render.Clamp(255 * (1 - float64(x)/float64(w)))
		b := render.Clamp(255 * float64(x) / float64(w))
		for y := 0; y < h; y++ {
			f.Set(x, y, render.RGB{R: r, G: 128, B: b})
		}
	}
	square := func(x0, x1 int, c render.RGB) {
		for y := x0 * h / 128; y < x1*h/128; y++ {
			for x := x0 * w / 128; x < x1*w/128; x++ {
				f.Set(x, y, c)
			}
		}
	}
	square(40, 88, render.RGB{R: 100, G: 100, B: 100})
	square(50, 78, render.RGB{R: 50, G: 50, B: 50})
	return f
}

func bench(ctx context.Context, res *stylize.Resource, input *render.Frame, bc benchConfig, out io.Writer) (benchResult, error) {
	var result benchResult

	fmt.Fprintln(out, "Synchronous stylizer")
	model, err := res.Acquire(ctx)
	if err != nil {
		return result, err
	}
	params := bc.Pipeline.Params
	if params.Prompt == "" {
		params.Prompt = stylize.DefaultPrompt
	}
	if _, err := model.Stylize(ctx, input, params); err != nil {
		return result, errors.Wrap(err, "warm up")
	}

	var total time.Duration
	for i := 0; i < bc.Runs; i++ {
		start := time.Now()
		f, err := model.Stylize(ctx, input, params)
		if err != nil {
			return result, errors.Wrapf(err, "run %d", i+1)
		}
		elapsed := time.Since(start)
		total += elapsed
		result.Latencies = append(result.Latencies, elapsed)
		result.Output = f
		fmt.Fprintf(out, "  Run %d: %v\n", i+1, elapsed.Round(time.Millisecond))
	}
	if bc.Runs > 0 {
		avg := total / time.Duration(bc.Runs)
		fmt.Fprintf(out, "  Average: %v (%.1f FPS)\n", avg.Round(time.Millisecond), rate(1, avg))
	}

	if bc.Save {
		if err := savePNG("bench_input.png", input); err != nil {
			return result, err
		}
		if result.Output != nil {
			if err := savePNG("bench_output.png", result.Output); err != nil {
				return result, err
			}
		}
	}

	fmt.Fprintln(out, "Asynchronous stylizer")
	opts := bc.Pipeline
	if opts.Registry == nil {
		opts.Registry = status.NewRegistry()
	}
	p := stylize.New(res, opts)
	if err := p.Start(ctx); err != nil {
		return result, err
	}

	start := time.Now()
	ticker := time.NewTicker(max(bc.SubmitGap, time.Millisecond))
	for time.Since(start) < bc.Duration {
		p.Submit(input, "")
		p.TryGetResult()
		<-ticker.C
	}
	ticker.Stop()
	result.Elapsed = time.Since(start)
	if err := p.Stop(); err != nil {
		fmt.Fprintf(out, "  Stop: %v\n", err)
	}

	result.Submitted = p.Submitted()
	result.Processed = p.FramesProcessed()
	result.Dropped = p.Dropped()
	result.Failures = p.Failures()
	fmt.Fprintf(out, "  Submitted %d, processed %d, dropped %d, failed %d in %v\n",
		result.Submitted, result.Processed, result.Dropped, result.Failures, result.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "  Throughput: %.2f FPS\n", rate(float64(result.Processed), result.Elapsed))
	return result, nil
}

func rate(n float64, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return n / d.Seconds()
}

func savePNG(path string, f *render.Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create png")
	}
	defer file.Close()
	if err := png.Encode(file, f.ToImage()); err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	return nil
}
