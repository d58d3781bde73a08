// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cu is the CUDA compute domain.
//
// The CUDA driver library is loaded at run time and every entry point in
// [Catalog] must resolve; there is no optional tier. [API] wraps the raw
// calls and returns driver status codes. [Context] builds on it and
// implements interop.ComputeDomain: a context on the device shared with
// the graphics domain, one stream, kernel modules and imported memory.
//
// CUDA binds the current context to the OS thread. Context methods expect
// the caller to have made the context current on the calling thread, which
// interop.WithCurrent does.
package cu
