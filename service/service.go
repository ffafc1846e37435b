// Package service starts and stops the long-lived parts of the binaries in dependency order
package service

// Service is a long-lived subsystem: display, audio, stylize workers
//
// Lifecycle:
//  1. Construction
//  2. Init(args...) - apply flags resolved at startup
//  3. Start() - acquire devices, launch goroutines
//  4. Stop() - release everything; must be idempotent
type Service interface {
	Name() string

	// Dependencies names services that must start before this one
	Dependencies() []string

	Init(args ...any) error
	Start() error
	Stop() error
}
