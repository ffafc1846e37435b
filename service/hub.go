package service

import (
	"log"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Hub owns registered services and drives them through their lifecycle
type Hub struct {
	mu       sync.RWMutex
	services map[string]Service
	order    []string // Dependency order, computed by InitAll
	started  []string // Started services, for rollback and StopAll
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{services: make(map[string]Service)}
}

// Register adds a service; names must be unique
func (h *Hub) Register(svc Service) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := svc.Name()
	if _, exists := h.services[name]; exists {
		return errors.Errorf("service already registered: %s", name)
	}
	h.services[name] = svc
	h.order = nil
	return nil
}

// Get returns a service by name
func (h *Hub) Get(name string) (Service, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	svc, ok := h.services[name]
	return svc, ok
}

// MustGet returns a service by name cast to T, panicking when absent or mistyped
func MustGet[T any](h *Hub, name string) T {
	svc, ok := h.Get(name)
	if !ok {
		panic("service not found: " + name)
	}
	typed, ok := svc.(T)
	if !ok {
		panic("service " + name + ": unexpected type")
	}
	return typed
}

// InitAll orders services by dependency and initialises them
// args maps a service name to its Init arguments. On failure the services
// already initialised are stopped in reverse order.
func (h *Hub) InitAll(args map[string][]any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.order == nil {
		order, err := h.sortLocked()
		if err != nil {
			return err
		}
		h.order = order
	}

	for i, name := range h.order {
		if err := h.services[name].Init(args[name]...); err != nil {
			h.stopLocked(h.order[:i])
			return errors.Wrapf(err, "init service %s", name)
		}
	}
	return nil
}

// StartAll starts services in dependency order, rolling back on failure
func (h *Hub) StartAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.order == nil {
		return errors.New("StartAll before InitAll")
	}
	h.started = h.started[:0]
	for _, name := range h.order {
		if err := h.services[name].Start(); err != nil {
			h.stopLocked(h.started)
			h.started = nil
			return errors.Wrapf(err, "start service %s", name)
		}
		h.started = append(h.started, name)
	}
	return nil
}

// StopAll stops started services in reverse order; every service gets its Stop
func (h *Hub) StopAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopLocked(h.started)
	h.started = nil
}

func (h *Hub) stopLocked(names []string) {
	for i := len(names) - 1; i >= 0; i-- {
		if err := h.services[names[i]].Stop(); err != nil {
			log.Printf("service: stop %s: %v", names[i], err)
		}
	}
}

// sortLocked is Kahn's algorithm over Dependencies, ties broken by name
func (h *Hub) sortLocked() ([]string, error) {
	indegree := make(map[string]int, len(h.services))
	dependents := make(map[string][]string)

	for name := range h.services {
		indegree[name] = 0
	}
	for name, svc := range h.services {
		for _, dep := range svc.Dependencies() {
			if _, ok := h.services[dep]; !ok {
				return nil, errors.Errorf("service %s depends on unregistered service %s", name, dep)
			}
			indegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var ready []string
	for name, d := range indegree {
		if d == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(h.services))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		next := dependents[name]
		sort.Strings(next)
		for _, d := range next {
			indegree[d]--
			if indegree[d] == 0 {
				ready = append(ready, d)
			}
		}
	}

	if len(order) != len(h.services) {
		return nil, errors.New("circular service dependency")
	}
	return order, nil
}

// Names returns registered names in dependency order when known, otherwise sorted
func (h *Hub) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.order != nil {
		return append([]string(nil), h.order...)
	}
	names := make([]string, 0, len(h.services))
	for name := range h.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
