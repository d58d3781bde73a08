// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ffi

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when none of the candidate library names
	// could be loaded.
	ErrNotFound = errors.New("ffi: library not found")

	// ErrUnsupportedPlatform is returned on systems without a dynamic loader
	// binding.
	ErrUnsupportedPlatform = errors.New("ffi: dynamic loading not supported on this platform")
)

// Library is a loaded native shared library.
type Library struct {
	name   string
	handle uintptr
}

// Open loads the first library in names that the dynamic loader accepts.
// The returned error wraps ErrNotFound and lists every attempt.
func Open(names ...string) (*Library, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no candidate names", ErrNotFound)
	}
	errs := make([]error, 0, len(names))
	for _, name := range names {
		h, err := openLibrary(name)
		if err == nil && h != 0 {
			return &Library{name: name, handle: h}, nil
		}
		if err == nil {
			err = errors.New("null handle")
		}
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}
	return nil, fmt.Errorf("%w: %w", ErrNotFound, errors.Join(errs...))
}

// Name returns the name the library was opened with.
func (l *Library) Name() string {
	if l == nil {
		return ""
	}
	return l.name
}

// Resolve returns the address of symbol, or 0 if the library does not
// export it. Resolve implements driver.Resolver.
func (l *Library) Resolve(symbol string) uintptr {
	if l == nil || l.handle == 0 {
		return 0
	}
	addr, err := lookupSymbol(l.handle, symbol)
	if err != nil {
		return 0
	}
	return addr
}

// Close unloads the library. Addresses resolved from it become invalid.
// Close is safe to call more than once.
func (l *Library) Close() error {
	if l == nil || l.handle == 0 {
		return nil
	}
	h := l.handle
	l.handle = 0
	return closeLibrary(h)
}
