// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package interop drives a compute domain and a graphics domain that share
// one GPU buffer.
//
// # Overview
//
// A compute domain (CUDA, package cu) writes a particle grid into a buffer
// owned by a graphics domain (Vulkan, package vk, or the wgpu HAL, package
// render). Each frame the [Pipeline] uploads small parameters, dispatches
// the kernel, waits for it to finish, makes the writes visible to the
// graphics side and draws the buffer as points:
//
//	Idle -> ParametersUploaded -> Dispatched -> Synchronized -> Flushed -> Drawn -> Presented
//
// # Shared resources
//
// A [SharedResource] is created by the graphics domain and then shared with
// the compute domain. When the graphics domain can export the buffer memory
// the compute domain imports it and both sides alias the same allocation.
// Otherwise the compute domain writes into its own mirror that is copied
// into the graphics buffer on every flush.
//
// The compute writes of a frame become visible to the graphics domain only
// after the compute domain was synchronized and the resource was flushed, in
// that order. [SharedResource.Flush] refuses to run on unsynchronized writes.
//
// # Current context
//
// Compute APIs that bind a context to the calling OS thread are wrapped by
// [WithCurrent], which locks the goroutine to its thread for the duration
// of the call.
//
// # Logging
//
// The package is silent by default. [SetLogger] enables structured
// logging for interop and its sub-packages.
package interop
