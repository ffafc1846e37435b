package audio

import (
	"math/rand"

	"github.com/lixenwraith/diffused-rays/status"
)

const (
	rumbleCutoff = 0.02  // One-pole low-pass coefficient for the fire bed
	popChance    = 0.001 // Per-sample pop probability at full light
	popDecay     = 0.995
)

// Crackle is an endless fire noise streamer whose loudness follows a light level
// SetLevel may be called from any goroutine; Stream runs on the speaker goroutine
type Crackle struct {
	rng    *rand.Rand
	level  status.Float
	rumble float64
	pop    float64
}

// NewCrackle creates a silent crackle; rng drives the noise
func NewCrackle(rng *rand.Rand) *Crackle {
	return &Crackle{rng: rng}
}

// SetLevel sets the loudness, clamped to [0, 1]
func (c *Crackle) SetLevel(v float64) {
	c.level.Set(min(max(v, 0), 1))
}

// Level returns the current loudness
func (c *Crackle) Level() float64 {
	return c.level.Get()
}

// Stream fills samples with low rumble plus decaying pops
func (c *Crackle) Stream(samples [][2]float64) (n int, ok bool) {
	level := c.level.Get()
	for i := range samples {
		white := c.rng.Float64()*2 - 1
		c.rumble += rumbleCutoff * (white - c.rumble)

		if c.rng.Float64() < level*popChance {
			c.pop = 0.6 + 0.4*c.rng.Float64()
		}
		v := (c.rumble*0.8 + c.pop*(c.rng.Float64()*2-1)) * level
		c.pop *= popDecay

		v = min(max(v, -1), 1)
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

// Err implements beep.Streamer
func (c *Crackle) Err() error { return nil }
