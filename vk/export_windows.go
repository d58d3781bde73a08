// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package vk

import (
	"golang.org/x/sys/windows"

	"github.com/gogpu/interop"
	"github.com/gogpu/interop/internal/ffi"
)

const (
	exportExtension = "VK_KHR_external_memory_win32"
	exportProc      = "vkGetMemoryWin32HandleKHR"
	exportHandleBit = externalMemoryHandleTypeOpaqueWin32
)

func closeHandle(h uintptr) error { return windows.CloseHandle(windows.Handle(h)) }

// exportMemory returns an NT handle for the memory of b. d.mu must be held.
func (d *Device) exportMemory(b *Buffer) (interop.ExternalMemory, error) {
	var f ffi.Frame
	defer f.Release()
	info := memoryGetHandleInfo{
		sType:      structureTypeMemoryGetWin32HandleInfo,
		memory:     b.memory,
		handleType: exportHandleBit,
	}
	var h uintptr
	r := call(d.table.MustProc(exportProc), d.handle, ffi.Ptr(&f, &info), ffi.Ptr(&f, &h))
	if err := check(interop.ErrExportUnsupported, exportProc, r); err != nil {
		return interop.ExternalMemory{}, err
	}
	return interop.NewExternalMemory(h, interop.HandleOpaqueWin32, b.allocSize, true, closeHandle), nil
}
