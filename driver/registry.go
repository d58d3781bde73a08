// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

import (
	"fmt"
	"slices"
	"sync"
)

// Provider loads the capability table of one driver ABI from the host
// system. Close releases whatever Load acquired, such as the shared
// library or a loader instance.
type Provider interface {
	Catalog() *Catalog
	Load() (*Table, error)
	Close() error
}

// ProviderFactory creates a new, unloaded provider.
type ProviderFactory func() Provider

var (
	registryMu sync.RWMutex
	providers  = make(map[string]ProviderFactory)
)

// Register registers a provider factory under name. It is typically called
// from init functions in ABI packages. An existing registration with the
// same name is replaced.
func Register(name string, factory ProviderFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	providers[name] = factory
}

// Unregister removes a provider. This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(providers, name)
}

// Available returns the registered provider names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered reports whether a provider called name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := providers[name]
	return ok
}

// Get returns a new provider by name, or nil if it is not registered.
func Get(name string) Provider {
	registryMu.RLock()
	factory, ok := providers[name]
	registryMu.RUnlock()
	if !ok {
		return nil
	}
	return factory()
}

// Load is a shortcut for Get(name).Load(). The returned provider must be
// closed by the caller once the table is no longer used, also on error.
func Load(name string) (*Table, Provider, error) {
	p := Get(name)
	if p == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	t, err := p.Load()
	if err != nil {
		return nil, p, fmt.Errorf("load %s: %w", name, err)
	}
	return t, p, nil
}
