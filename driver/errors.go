// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingMandatorySymbol is matched by every [*MissingSymbolError].
	ErrMissingMandatorySymbol = errors.New("driver: missing mandatory symbol")

	// ErrInvalidCatalog is returned for malformed catalog definitions.
	ErrInvalidCatalog = errors.New("driver: invalid catalog")

	// ErrNilResolver is returned when Build is given no resolver.
	ErrNilResolver = errors.New("driver: nil resolver")

	// ErrNotRegistered is returned when a provider name is unknown.
	ErrNotRegistered = errors.New("driver: provider not registered")
)

// MissingSymbolError reports the first mandatory entry point that could
// not be resolved.
type MissingSymbolError struct {
	ABI    string
	Name   string
	Symbol string
}

func (e *MissingSymbolError) Error() string {
	if e.Symbol != "" && e.Symbol != e.Name {
		return fmt.Sprintf("driver: %s: missing mandatory symbol %s (%s)", e.ABI, e.Name, e.Symbol)
	}
	return fmt.Sprintf("driver: %s: missing mandatory symbol %s", e.ABI, e.Name)
}

// Is reports whether target is ErrMissingMandatorySymbol.
func (e *MissingSymbolError) Is(target error) bool {
	return target == ErrMissingMandatorySymbol
}
