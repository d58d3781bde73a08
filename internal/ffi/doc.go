// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package ffi loads native driver libraries and calls their entry points
// without cgo.
//
// Libraries are opened with purego on Unix systems and with
// golang.org/x/sys/windows on Windows. Calls go through purego.SyscallN and
// accept only integer and pointer arguments. Go memory handed to a native
// call must be pinned for the duration of the call; [Frame] does that.
package ffi
