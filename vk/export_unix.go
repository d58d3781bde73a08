// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build linux || freebsd

package vk

import (
	"golang.org/x/sys/unix"

	"github.com/gogpu/interop"
	"github.com/gogpu/interop/internal/ffi"
)

const (
	exportExtension = "VK_KHR_external_memory_fd"
	exportProc      = "vkGetMemoryFdKHR"
	exportHandleBit = externalMemoryHandleTypeOpaqueFD
)

func closeFD(h uintptr) error { return unix.Close(int(h)) }

// exportMemory returns an opaque fd for the memory of b. d.mu must be held.
func (d *Device) exportMemory(b *Buffer) (interop.ExternalMemory, error) {
	var f ffi.Frame
	defer f.Release()
	info := memoryGetHandleInfo{
		sType:      structureTypeMemoryGetFdInfo,
		memory:     b.memory,
		handleType: exportHandleBit,
	}
	var fd int32 = -1
	r := call(d.table.MustProc(exportProc), d.handle, ffi.Ptr(&f, &info), ffi.Ptr(&f, &fd))
	if err := check(interop.ErrExportUnsupported, exportProc, r); err != nil {
		return interop.ExternalMemory{}, err
	}
	return interop.NewExternalMemory(uintptr(fd), interop.HandleOpaqueFD, b.allocSize, true, closeFD), nil
}
