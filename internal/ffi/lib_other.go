// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !darwin && !freebsd && !linux && !windows

package ffi

func openLibrary(string) (uintptr, error) { return 0, ErrUnsupportedPlatform }

func lookupSymbol(uintptr, string) (uintptr, error) { return 0, ErrUnsupportedPlatform }

func closeLibrary(uintptr) error { return nil }

// Call panics: there is no native calling convention binding here.
func Call(uintptr, ...uintptr) uintptr {
	panic(ErrUnsupportedPlatform)
}
