// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cu

import "github.com/gogpu/interop"

// Native handles. Zero is the null handle.
type (
	// Device is a CUdevice ordinal.
	Device int32
	// Ctx is a CUcontext.
	Ctx uintptr
	// Stream is a CUstream.
	Stream uintptr
	// Module is a CUmodule.
	Module uintptr
	// Function is a CUfunction.
	Function uintptr
	// ExternalMemory is a CUexternalMemory.
	ExternalMemory uintptr
)

// DeviceInfo describes the device a Context runs on.
type DeviceInfo struct {
	Ordinal     Device
	Name        string
	PCIBusID    string
	UUID        [16]byte
	TotalMemory uint64
}

// ID returns the selector that identifies the device.
func (d DeviceInfo) ID() interop.DeviceID {
	return interop.DeviceID{PCIBusID: d.PCIBusID, UUID: d.UUID}
}

// External memory handle types (CUexternalMemoryHandleType).
const (
	externalMemoryHandleTypeOpaqueFD       = 1
	externalMemoryHandleTypeOpaqueWin32    = 2
	externalMemoryHandleTypeOpaqueWin32KMT = 3
)

// externalMemoryDedicated is CUDA_EXTERNAL_MEMORY_DEDICATED.
const externalMemoryDedicated = 0x1

// Kernel launch parameter markers for the extra argument of
// cuLaunchKernel.
const (
	launchParamEnd           = 0x0
	launchParamBufferPointer = 0x1
	launchParamBufferSize    = 0x2
)

// ExternalMemoryHandleDesc mirrors CUDA_EXTERNAL_MEMORY_HANDLE_DESC.
// Handle holds either an fd in its low 32 bits or a Win32 handle followed
// by an optional name pointer.
type ExternalMemoryHandleDesc struct {
	Type     uint32
	_        uint32
	Handle   [2]uintptr
	Size     uint64
	Flags    uint32
	Reserved [16]uint32
	_        uint32
}

// ExternalMemoryBufferDesc mirrors CUDA_EXTERNAL_MEMORY_BUFFER_DESC.
type ExternalMemoryBufferDesc struct {
	Offset   uint64
	Size     uint64
	Flags    uint32
	Reserved [16]uint32
	_        uint32
}

// handleDesc converts exported graphics memory into an import descriptor.
func handleDesc(mem interop.ExternalMemory) (ExternalMemoryHandleDesc, bool) {
	d := ExternalMemoryHandleDesc{Size: mem.Size}
	switch mem.Type {
	case interop.HandleOpaqueFD:
		d.Type = externalMemoryHandleTypeOpaqueFD
	case interop.HandleOpaqueWin32:
		d.Type = externalMemoryHandleTypeOpaqueWin32
	case interop.HandleOpaqueWin32KMT:
		d.Type = externalMemoryHandleTypeOpaqueWin32KMT
	default:
		return d, false
	}
	d.Handle[0] = mem.Handle
	if mem.Dedicated {
		d.Flags = externalMemoryDedicated
	}
	return d, true
}
