package stylize

import (
	"time"

	"github.com/lixenwraith/diffused-rays/core"
)

// Meter turns a monotonic counter into a rate that updates at most once per interval
type Meter struct {
	clock    core.Clock
	interval time.Duration

	started bool
	since   time.Time
	base    int64
	rate    float64
}

// NewMeter creates a meter; interval is the minimum sampling window
func NewMeter(clock core.Clock, interval time.Duration) *Meter {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &Meter{clock: clock, interval: interval}
}

// Observe feeds the current counter value and returns the rate in events per second
// The rate holds its previous value until a full interval has elapsed.
// A counter that went backwards restarts the window.
func (m *Meter) Observe(count int64) float64 {
	now := m.clock.Now()
	if !m.started || count < m.base {
		m.started = true
		m.since = now
		m.base = count
		return m.rate
	}

	elapsed := now.Sub(m.since)
	if elapsed < m.interval || elapsed <= 0 {
		return m.rate
	}
	m.rate = float64(count-m.base) / elapsed.Seconds()
	m.since = now
	m.base = count
	return m.rate
}

// Rate returns the last computed rate
func (m *Meter) Rate() float64 {
	return m.rate
}

// Reset forgets the window and the rate
func (m *Meter) Reset() {
	m.started = false
	m.rate = 0
}
