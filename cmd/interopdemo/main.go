// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command interopdemo drives the CUDA/Vulkan interop pipeline: a CUDA
// kernel writes a grid of points into a buffer owned by the graphics
// domain, which then draws it.
package main

import (
	"os"
	"runtime"
)

func init() {
	// The CUDA current context is per OS thread; keep main on one.
	runtime.LockOSThread()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
