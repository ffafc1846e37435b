// Package config holds every tunable of the game with defaults and environment overrides
package config

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"github.com/lixenwraith/diffused-rays/audio"
	"github.com/lixenwraith/diffused-rays/raycast"
	"github.com/lixenwraith/diffused-rays/render"
	"github.com/lixenwraith/diffused-rays/stylize"
)

// EnvPrefix namespaces every environment override
const EnvPrefix = "DIFFRAYS_"

// Config is fixed for the life of the process
type Config struct {
	RenderWidth   int
	RenderHeight  int
	DisplayWidth  int
	DisplayHeight int
	FPSCap        int

	MoveSpeed float64 // Units per second
	TurnSpeed float64 // Radians per second
	StylizeDT float64 // Fixed input step while stylizing, seconds

	Raycast raycast.Options

	Stylize       stylize.Params
	TexturePrompt string
	Blend         float64
	StopTimeout   time.Duration
	PollInterval  time.Duration
	ModelLatency  time.Duration
	RemoteURL     string // Empty uses the built-in model

	Audio audio.Config
}

// Default returns the stock configuration
func Default() Config {
	return Config{
		RenderWidth:   128,
		RenderHeight:  128,
		DisplayWidth:  512,
		DisplayHeight: 512,
		FPSCap:        60,
		MoveSpeed:     3.0,
		TurnSpeed:     2.0,
		StylizeDT:     0.1,
		Raycast:       raycast.DefaultOptions(),
		Stylize:       stylize.DefaultParams(),
		TexturePrompt: "weathered stone brick wall texture, dungeon, seamless",
		Blend:         1.0,
		StopTimeout:   time.Second,
		PollInterval:  100 * time.Millisecond,
		ModelLatency:  300 * time.Millisecond,
		Audio:         audio.Config{Enabled: false, Volume: 0.6},
	}
}

// RaycastOptions returns the renderer options sized to the render resolution
func (c Config) RaycastOptions() raycast.Options {
	o := c.Raycast
	o.Width = c.RenderWidth
	o.Height = c.RenderHeight
	return o
}

// PipelineOptions returns pipeline options for a named pipeline
func (c Config) PipelineOptions(name string) stylize.Options {
	o := stylize.DefaultOptions(name)
	o.Params = c.Stylize
	o.StopTimeout = c.StopTimeout
	o.PollInterval = c.PollInterval
	return o
}

// Validate rejects values the renderer cannot work with
func (c Config) Validate() error {
	switch {
	case c.RenderWidth <= 0 || c.RenderHeight <= 0:
		return errors.Errorf("render size %dx%d must be positive", c.RenderWidth, c.RenderHeight)
	case c.FPSCap <= 0:
		return errors.Errorf("fps cap %d must be positive", c.FPSCap)
	case c.Raycast.FOV <= 0 || c.Raycast.FOV >= math.Pi:
		return errors.Errorf("fov %v outside (0, pi)", c.Raycast.FOV)
	case c.Raycast.MaxDepth <= raycast.MinDist:
		return errors.Errorf("max depth %v too small", c.Raycast.MaxDepth)
	case c.Blend < 0 || c.Blend > 1:
		return errors.Errorf("blend %v outside [0, 1]", c.Blend)
	}
	return nil
}

// LoadEnv applies DIFFRAYS_* overrides from lookup (os.LookupEnv in production)
// Malformed values are collected and returned together; valid ones still apply.
func LoadEnv(c Config, lookup func(string) (string, bool)) (Config, error) {
	var bad []string
	get := func(key string) (string, bool) {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return "", false
		}
		return v, true
	}
	fail := func(key string, err error) {
		bad = append(bad, EnvPrefix+key+": "+err.Error())
	}

	ints := map[string]*int{
		"RENDER_WIDTH":   &c.RenderWidth,
		"RENDER_HEIGHT":  &c.RenderHeight,
		"DISPLAY_WIDTH":  &c.DisplayWidth,
		"DISPLAY_HEIGHT": &c.DisplayHeight,
		"FPS":            &c.FPSCap,
		"STEPS":          &c.Stylize.Steps,
	}
	for key, dst := range ints {
		if v, ok := get(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				fail(key, err)
				continue
			}
			*dst = n
		}
	}

	floats := map[string]*float64{
		"MOVE_SPEED": &c.MoveSpeed,
		"TURN_SPEED": &c.TurnSpeed,
		"MAX_DEPTH":  &c.Raycast.MaxDepth,
		"EW_SHADE":   &c.Raycast.EWShade,
		"STRENGTH":   &c.Stylize.Strength,
		"GUIDANCE":   &c.Stylize.Guidance,
		"BLEND":      &c.Blend,
	}
	for key, dst := range floats {
		if v, ok := get(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				fail(key, err)
				continue
			}
			*dst = f
		}
	}

	if v, ok := get("FOV"); ok {
		deg, err := strconv.ParseFloat(v, 64)
		if err != nil {
			fail("FOV", err)
		} else {
			c.Raycast.FOV = deg * math.Pi / 180
		}
	}

	durations := map[string]*time.Duration{
		"STOP_TIMEOUT":  &c.StopTimeout,
		"POLL_INTERVAL": &c.PollInterval,
		"MODEL_LATENCY": &c.ModelLatency,
	}
	for key, dst := range durations {
		if v, ok := get(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				fail(key, err)
				continue
			}
			*dst = d
		}
	}

	colors := map[string]*render.RGB{
		"FLOOR_COLOR":   &c.Raycast.Floor,
		"CEILING_COLOR": &c.Raycast.Ceiling,
		"DEFAULT_WALL":  &c.Raycast.Palette.Default,
	}
	for key, dst := range colors {
		if v, ok := get(key); ok {
			rgb, err := ParseColor(v)
			if err != nil {
				fail(key, err)
				continue
			}
			*dst = rgb
		}
	}

	if v, ok := get("WALL_COLORS"); ok {
		walls, err := ParsePalette(v)
		if err != nil {
			fail("WALL_COLORS", err)
		} else {
			c.Raycast.Palette.Walls = walls
		}
	}

	if v, ok := get("PROMPT"); ok {
		c.Stylize.Prompt = v
	}
	if v, ok := get("TEXTURE_PROMPT"); ok {
		c.TexturePrompt = v
	}
	if v, ok := get("REMOTE"); ok {
		c.RemoteURL = v
	}

	if v, ok := get("TORCHES"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			fail("TORCHES", err)
		} else {
			c.Raycast.Torch.Enabled = b
		}
	}
	if v, ok := get("AUDIO"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			fail("AUDIO", err)
		} else {
			c.Audio.Enabled = b
		}
	}
	if v, ok := get("VOLUME"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			fail("VOLUME", err)
		} else {
			c.Audio.Volume = min(max(float64(n)/100, 0), 1)
		}
	}

	if len(bad) > 0 {
		return c, errors.Errorf("invalid environment: %s", strings.Join(bad, "; "))
	}
	return c, nil
}

// ParseColor accepts #rrggbb, #rgb or r,g,b
func ParseColor(s string) (render.RGB, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return render.RGB{}, errors.Wrapf(err, "colour %q", s)
		}
		r, g, b := c.RGB255()
		return render.RGB{R: r, G: g, B: b}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return render.RGB{}, errors.Errorf("colour %q: want #rrggbb or r,g,b", s)
	}
	var ch [3]uint8
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return render.RGB{}, errors.Wrapf(err, "colour %q channel %d", s, i)
		}
		ch[i] = uint8(n)
	}
	return render.RGB{R: ch[0], G: ch[1], B: ch[2]}, nil
}

// ParsePalette reads "1=#b40000;2=0,180,0" into wall colours
func ParsePalette(s string) (map[int]render.RGB, error) {
	walls := make(map[int]render.RGB)
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, col, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, errors.Errorf("palette entry %q: want id=colour", entry)
		}
		n, err := strconv.Atoi(strings.TrimSpace(id))
		if err != nil || n < 1 {
			return nil, errors.Errorf("palette entry %q: wall id must be a positive integer", entry)
		}
		rgb, err := ParseColor(col)
		if err != nil {
			return nil, err
		}
		walls[n] = rgb
	}
	if len(walls) == 0 {
		return nil, errors.New("empty palette")
	}
	return walls, nil
}
