// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package interop

import (
	"encoding/hex"
	"fmt"
)

// Domain is one GPU API bound to one physical device.
type Domain interface {
	// Name identifies the domain in logs and errors, for example "cuda".
	Name() string

	// MakeCurrent binds the domain to the calling OS thread. Domains
	// without a per-thread context return nil.
	MakeCurrent() error

	// Synchronize blocks until all work submitted to the domain finished.
	Synchronize() error

	// Close releases the domain. Resources created from it must be
	// released first.
	Close() error
}

// Pusher is implemented by domains with a stack of current contexts.
// WithCurrent prefers it over MakeCurrent so the previous binding is
// restored afterwards.
type Pusher interface {
	PushCurrent() error
	PopCurrent() error
}

// DevicePtr is a compute-domain device address.
type DevicePtr uint64

// Kernel is a compute function loaded into a compute domain.
type Kernel interface {
	Name() string
}

// Dispatch describes one kernel launch. Args are passed to the kernel as
// consecutive 64-bit device pointers.
type Dispatch struct {
	Groups       [3]uint32
	GroupSize    [3]uint32
	SharedMemory uint32
	Args         []DevicePtr
}

// Imported is graphics memory mapped into a compute domain.
type Imported interface {
	Ptr() DevicePtr
	Size() uint64
	// Release unmaps the memory. The compute domain must be current.
	Release() error
}

// ComputeDomain launches kernels and owns compute-side memory.
type ComputeDomain interface {
	Domain

	Alloc(size uint64) (DevicePtr, error)
	Free(p DevicePtr) error
	Upload(dst DevicePtr, src []byte) error
	Download(dst []byte, src DevicePtr) error

	// Import maps exported graphics memory into the compute address space.
	Import(mem ExternalMemory) (Imported, error)

	// Dispatch enqueues a kernel launch on the domain's stream. It does not
	// wait for the kernel to finish.
	Dispatch(k Kernel, d Dispatch) error
}

// Buffer is a graphics-domain buffer.
type Buffer interface {
	Size() uint64
}

// GraphicsDomain owns buffers that the compute domain writes into.
type GraphicsDomain interface {
	Domain

	// Device identifies the physical device, so the compute domain can
	// bind to the same one. The zero DeviceID means unknown.
	Device() DeviceID

	CreateBuffer(size uint64, usage Usage) (Buffer, error)
	DestroyBuffer(b Buffer)

	// Export returns an OS handle to the memory backing b. Domains that
	// cannot export return an error matching ErrExportUnsupported.
	Export(b Buffer) (ExternalMemory, error)

	// Write copies data into b at offset.
	Write(b Buffer, offset uint64, data []byte) error

	// Flush makes completed external writes to b visible to subsequent
	// graphics work.
	Flush(b Buffer) error
}

// Usage is a set of buffer usage flags.
type Usage uint32

const (
	UsageStorage Usage = 1 << iota
	UsageVertex
	UsageUniform
	UsageCopySrc
	UsageCopyDst
	// UsageInterop requests memory that can be shared with another domain.
	UsageInterop
)

// Has reports whether all flags in f are set.
func (u Usage) Has(f Usage) bool { return u&f == f }

// HandleType identifies the kind of OS handle carried by ExternalMemory.
type HandleType uint8

const (
	HandleNone HandleType = iota
	HandleOpaqueFD
	HandleOpaqueWin32
	HandleOpaqueWin32KMT
)

func (h HandleType) String() string {
	switch h {
	case HandleNone:
		return "none"
	case HandleOpaqueFD:
		return "opaque-fd"
	case HandleOpaqueWin32:
		return "opaque-win32"
	case HandleOpaqueWin32KMT:
		return "opaque-win32-kmt"
	default:
		return fmt.Sprintf("HandleType(%d)", uint8(h))
	}
}

// ExternalMemory is an exported allocation. A successful import of an
// opaque fd transfers ownership of the fd to the importer; every other
// handle must still be closed by the exporter.
type ExternalMemory struct {
	Handle    uintptr
	Type      HandleType
	Size      uint64
	Dedicated bool

	closer func(uintptr) error
}

// NewExternalMemory returns an ExternalMemory whose Close calls closer
// with the handle.
func NewExternalMemory(handle uintptr, typ HandleType, size uint64, dedicated bool, closer func(uintptr) error) ExternalMemory {
	return ExternalMemory{Handle: handle, Type: typ, Size: size, Dedicated: dedicated, closer: closer}
}

// OwnershipTransferred reports whether a successful import consumes the
// handle.
func (m ExternalMemory) OwnershipTransferred() bool {
	return m.Type == HandleOpaqueFD
}

// Close closes the OS handle.
func (m ExternalMemory) Close() error {
	if m.closer == nil {
		return nil
	}
	return m.closer(m.Handle)
}

// DeviceID selects a physical device. PCIBusID uses the
// domain:bus:device.function form, for example "0000:01:00.0".
type DeviceID struct {
	PCIBusID string
	UUID     [16]byte
}

// IsZero reports whether id carries no selector.
func (id DeviceID) IsZero() bool {
	return id.PCIBusID == "" && id.UUID == [16]byte{}
}

// HasUUID reports whether the UUID is set.
func (id DeviceID) HasUUID() bool { return id.UUID != [16]byte{} }

func (id DeviceID) String() string {
	switch {
	case id.IsZero():
		return "default"
	case id.PCIBusID != "":
		return id.PCIBusID
	default:
		return hex.EncodeToString(id.UUID[:])
	}
}

// FormatPCIBusID formats a PCI location the way device selectors expect it.
func FormatPCIBusID(domain, bus, device, function uint32) string {
	return fmt.Sprintf("%04x:%02x:%02x.%x", domain, bus, device, function)
}
