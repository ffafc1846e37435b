package stylize

import (
	"testing"
	"time"

	"github.com/lixenwraith/diffused-rays/core"
)

func TestMeterRate(t *testing.T) {
	clock := core.NewMockClock(time.Unix(0, 0))
	m := NewMeter(clock, time.Second)

	if r := m.Observe(0); r != 0 {
		t.Errorf("Expected zero rate before a window, got %v", r)
	}

	clock.Advance(500 * time.Millisecond)
	if r := m.Observe(5); r != 0 {
		t.Errorf("Expected rate held inside the window, got %v", r)
	}

	clock.Advance(500 * time.Millisecond)
	if r := m.Observe(6); r != 6 {
		t.Errorf("Expected 6/s, got %v", r)
	}

	clock.Advance(2 * time.Second)
	if r := m.Observe(8); r != 1 {
		t.Errorf("Expected 1/s, got %v", r)
	}
	if m.Rate() != 1 {
		t.Errorf("Expected Rate to return last value, got %v", m.Rate())
	}
}

func TestMeterCounterRestart(t *testing.T) {
	clock := core.NewMockClock(time.Unix(0, 0))
	m := NewMeter(clock, time.Second)
	m.Observe(100)

	// New pipeline, counter starts over
	clock.Advance(time.Second)
	m.Observe(2)
	clock.Advance(time.Second)
	if r := m.Observe(4); r != 2 {
		t.Errorf("Expected 2/s after restart, got %v", r)
	}

	m.Reset()
	if m.Rate() != 0 {
		t.Errorf("Expected zero rate after reset, got %v", m.Rate())
	}
}
