// Package audio plays the torch ambience: a fire crackle that swells near torches
// and short chimes on mode changes.
package audio

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/pkg/errors"
)

const sampleRate = beep.SampleRate(44100)

// Config is the audio part of the application config
type Config struct {
	Enabled bool
	Volume  float64 // Master volume in [0, 1]
}

// Ambience owns the speaker and mixes the crackle bed with one-shot chimes
type Ambience struct {
	mu          sync.Mutex
	cfg         Config
	mixer       *beep.Mixer
	crackle     *Crackle
	bed         *beep.Ctrl
	initialized bool
}

// NewAmbience creates an ambience; nothing plays until Initialize
func NewAmbience(cfg Config) *Ambience {
	return &Ambience{
		cfg:     cfg,
		mixer:   &beep.Mixer{},
		crackle: NewCrackle(rand.New(rand.NewSource(time.Now().UnixNano()))),
	}
}

// Initialize opens the speaker and starts the crackle bed
func (a *Ambience) Initialize() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.initialized || !a.cfg.Enabled {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return errors.Wrap(err, "init speaker")
	}

	a.bed = &beep.Ctrl{Streamer: withVolume(a.crackle, a.cfg.Volume)}
	a.mixer.Add(a.bed)
	speaker.Play(a.mixer)
	a.initialized = true
	return nil
}

// SetTorchLight feeds the strongest torch light of the last frame into the crackle
func (a *Ambience) SetTorchLight(level float64) {
	a.crackle.SetLevel(level)
}

// Chime plays a short enveloped sine at freq Hz
func (a *Ambience) Chime(freq float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.initialized {
		return
	}
	tone, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return
	}
	shaped := fade(beep.Take(sampleRate.N(120*time.Millisecond), tone), sampleRate.N(120*time.Millisecond))
	speaker.Lock()
	a.mixer.Add(withVolume(shaped, a.cfg.Volume*0.5))
	speaker.Unlock()
}

// Cleanup silences everything and releases the mixer contents
func (a *Ambience) Cleanup() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.initialized {
		return
	}
	speaker.Lock()
	a.bed.Paused = true
	a.mixer.Clear()
	speaker.Unlock()
	a.initialized = false
}

// withVolume maps a linear volume in [0, 1] onto beep's logarithmic control
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(min(vol, 1))}
}

// fade applies a linear release over total samples
func fade(s beep.Streamer, total int) beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := s.Stream(samples)
		for i := 0; i < n; i++ {
			g := 1 - float64(pos)/float64(total)
			if g < 0 {
				g = 0
			}
			samples[i][0] *= g
			samples[i][1] *= g
			pos++
		}
		return n, ok
	})
}
