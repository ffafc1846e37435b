package core

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync"
)

var (
	hooksMu    sync.Mutex
	resetHooks []func()
	exit       = os.Exit
)

// OnCrash registers a hook run before the crash report is printed
// Displays register here so the terminal or window is restored first
func OnCrash(fn func()) {
	hooksMu.Lock()
	resetHooks = append(resetHooks, fn)
	hooksMu.Unlock()
}

// HandleCrash restores the display, prints the panic value with its stack trace and exits
func HandleCrash(r any) {
	if r == nil {
		return
	}

	runResetHooks()

	os.Stdout.Sync()
	fmt.Fprintf(os.Stderr, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
	os.Stderr.Sync()

	exit(1)
}

// runResetHooks runs every hook once, newest first; a panicking hook does not stop the rest
func runResetHooks() {
	hooksMu.Lock()
	hooks := resetHooks
	resetHooks = nil
	hooksMu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		func() {
			defer func() { _ = recover() }()
			hooks[i]()
		}()
	}
}

// Go runs a function in a new goroutine with panic recovery.
// Use this instead of the 'go' keyword so a worker panic restores the display before exit.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
