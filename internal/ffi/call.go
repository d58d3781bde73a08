// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build darwin || freebsd || linux || windows

package ffi

import "github.com/ebitengine/purego"

// Call invokes the native function at fn and returns its first result
// register. Pointer arguments must be pinned by a [Frame].
func Call(fn uintptr, args ...uintptr) uintptr {
	r1, _, _ := purego.SyscallN(fn, args...)
	return r1
}
