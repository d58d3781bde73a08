// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !linux && !freebsd && !windows

package vk

import (
	"fmt"

	"github.com/gogpu/interop"
)

// No opaque handle type is exported on this platform.
const (
	exportExtension = ""
	exportProc      = ""
	exportHandleBit = 0
)

func (d *Device) exportMemory(*Buffer) (interop.ExternalMemory, error) {
	return interop.ExternalMemory{}, fmt.Errorf("vk: %w on this platform", interop.ErrExportUnsupported)
}
