package audio

import (
	"log"
	"sync/atomic"
)

// Service runs the ambience under the service hub
// A missing audio backend disables sound instead of failing startup
type Service struct {
	cfg      Config
	ambience *Ambience
	disabled atomic.Bool
}

// NewService creates the audio service
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// Name implements service.Service
func (s *Service) Name() string {
	return "audio"
}

// Dependencies implements service.Service
func (s *Service) Dependencies() []string {
	return nil
}

// Init implements service.Service
// args[0]: bool mute flag overriding the config
func (s *Service) Init(args ...any) error {
	if len(args) > 0 {
		if muted, ok := args[0].(bool); ok && muted {
			s.cfg.Enabled = false
		}
	}
	s.ambience = NewAmbience(s.cfg)
	return nil
}

// Start implements service.Service
func (s *Service) Start() error {
	if s.ambience == nil || !s.cfg.Enabled {
		s.disabled.Store(true)
		return nil
	}
	if err := s.ambience.Initialize(); err != nil {
		log.Printf("audio: disabled: %v", err)
		s.disabled.Store(true)
	}
	return nil
}

// Stop implements service.Service
func (s *Service) Stop() error {
	if s.ambience != nil {
		s.ambience.Cleanup()
	}
	return nil
}

// Ambience returns the ambience, nil before Init
func (s *Service) Ambience() *Ambience {
	return s.ambience
}

// Disabled reports whether sound is off
func (s *Service) Disabled() bool {
	return s.disabled.Load()
}

// SetTorchLight forwards to the ambience when sound is on
func (s *Service) SetTorchLight(level float64) {
	if s.ambience != nil && !s.disabled.Load() {
		s.ambience.SetTorchLight(level)
	}
}

// Chime forwards to the ambience when sound is on
func (s *Service) Chime(freq float64) {
	if s.ambience != nil && !s.disabled.Load() {
		s.ambience.Chime(freq)
	}
}
