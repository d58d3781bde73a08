// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package vk is the Vulkan graphics domain.
//
// The Vulkan loader is opened at run time; no Vulkan SDK or cgo is
// needed to build. [Catalog] lists the entry points resolved through
// vkGetInstanceProcAddr: the Vulkan 1.0 commands are mandatory, the 1.1+
// and extension commands optional.
//
// A [Device] owns one graphics queue and creates buffers whose memory can
// be exported as an opaque fd (Linux) or NT handle (Windows) and imported
// by a compute domain:
//
//	l, _ := vk.Load()
//	inst, _ := vk.NewInstance(l)
//	dev, _ := vk.NewDevice(inst, interop.DeviceID{})
//	res, _ := interop.NewSharedResource(dev, size, interop.UsageStorage|interop.UsageVertex)
//	err := res.ImportInto(cudaContext)
//
// Flush records a memory barrier between the importer's writes and vertex
// reads.
package vk
