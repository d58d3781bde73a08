// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

// Resolver maps an exported symbol name to a callable address. It returns
// 0 when the symbol is not exported. *ffi.Library implements Resolver.
type Resolver interface {
	Resolve(symbol string) uintptr
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(symbol string) uintptr

// Resolve calls f(symbol).
func (f ResolverFunc) Resolve(symbol string) uintptr { return f(symbol) }

// MapResolver resolves symbols from a fixed map. It is mostly useful in
// tests.
type MapResolver map[string]uintptr

// Resolve returns m[symbol].
func (m MapResolver) Resolve(symbol string) uintptr { return m[symbol] }

// Chain returns a resolver that tries each resolver in order and returns
// the first non-zero address. Nil resolvers are skipped.
func Chain(resolvers ...Resolver) Resolver {
	return ResolverFunc(func(symbol string) uintptr {
		for _, r := range resolvers {
			if r == nil {
				continue
			}
			if addr := r.Resolve(symbol); addr != 0 {
				return addr
			}
		}
		return 0
	})
}
