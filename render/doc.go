// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render is the graphics domain on gogpu/wgpu HAL devices.
//
// A [Device] wraps a hal.Device and hal.Queue, either received from a host
// application through [FromProvider] or opened with [Open] and [OpenNoop].
// HAL buffers have no exportable memory, so a shared resource owned by a
// Device always falls back to a staged mirror.
//
// [Surface] is an offscreen presentation target. Its [Command] records the
// frame and Surface.End replays it in one render pass, then reads the
// color attachment back:
//
//	dev, _ := render.OpenNoop()
//	surf, _ := render.NewSurface(dev, 800, 600, render.WithFrameLimit(60))
//	pipe, _ := render.NewPipelineFactory(dev).CreatePipeline(render.PointsPipeline(surf))
//
// The pipeline draws the shared point buffer with [PointsShader], compiled
// from WGSL to SPIR-V with naga.
package render
