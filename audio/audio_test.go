package audio

import (
	"math/rand"
	"testing"
)

func TestCrackleSilentWithoutLight(t *testing.T) {
	c := NewCrackle(rand.New(rand.NewSource(1)))
	samples := make([][2]float64, 4096)
	n, ok := c.Stream(samples)
	if n != len(samples) || !ok {
		t.Fatalf("Expected full stream, got n=%d ok=%v", n, ok)
	}
	for i, s := range samples {
		if s[0] != 0 || s[1] != 0 {
			t.Fatalf("Sample %d not silent: %v", i, s)
		}
	}
}

func TestCrackleBoundedAndAudible(t *testing.T) {
	c := NewCrackle(rand.New(rand.NewSource(2)))
	c.SetLevel(1)
	samples := make([][2]float64, 44100)
	c.Stream(samples)

	peak := 0.0
	for i, s := range samples {
		if s[0] < -1 || s[0] > 1 {
			t.Fatalf("Sample %d out of range: %v", i, s[0])
		}
		if s[0] != s[1] {
			t.Fatalf("Sample %d not mono: %v", i, s)
		}
		peak = max(peak, s[0], -s[0])
	}
	if peak < 0.1 {
		t.Errorf("Expected audible crackle at full light, peak %v", peak)
	}
	if c.Err() != nil {
		t.Errorf("Expected no error, got %v", c.Err())
	}
}

func TestCrackleLevelClamped(t *testing.T) {
	c := NewCrackle(rand.New(rand.NewSource(3)))
	tests := []struct{ in, want float64 }{
		{-0.5, 0},
		{0.4, 0.4},
		{1.7, 1},
	}
	for _, tt := range tests {
		c.SetLevel(tt.in)
		if got := c.Level(); got != tt.want {
			t.Errorf("SetLevel(%v) stored %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestServiceMutedNeverTouchesSpeaker(t *testing.T) {
	s := NewService(Config{Enabled: true, Volume: 0.8})
	if err := s.Init(true); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !s.Disabled() {
		t.Error("Expected muted service to be disabled")
	}
	// Safe no-ops while disabled
	s.SetTorchLight(0.9)
	s.Chime(880)
	if err := s.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
	if s.Name() != "audio" || s.Dependencies() != nil {
		t.Error("Unexpected service identity")
	}
}

func TestAmbienceUninitialisedIsSafe(t *testing.T) {
	a := NewAmbience(Config{Enabled: false})
	if err := a.Initialize(); err != nil {
		t.Fatalf("Disabled ambience should not open the speaker: %v", err)
	}
	a.SetTorchLight(0.5)
	a.Chime(440)
	a.Cleanup()
}
