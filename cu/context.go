// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cu

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"
	"slices"

	"github.com/gogpu/interop"
)

// Driver is the subset of the CUDA driver API a Context uses. *API
// implements it.
type Driver interface {
	Init(flags uint32) Result
	DeviceCount() (int, Result)
	DeviceGet(ordinal int) (Device, Result)
	DeviceByPCIBusID(id string) (Device, Result)
	DeviceName(d Device) (string, Result)
	DeviceUUID(d Device) ([16]byte, Result)
	DevicePCIBusID(d Device) (string, Result)
	DeviceTotalMem(d Device) (uint64, Result)

	CtxCreate(flags uint32, d Device) (Ctx, Result)
	CtxDestroy(c Ctx) Result
	CtxSetCurrent(c Ctx) Result
	CtxPushCurrent(c Ctx) Result
	CtxPopCurrent() (Ctx, Result)

	StreamCreate(flags uint32) (Stream, Result)
	StreamDestroy(s Stream) Result
	StreamSynchronize(s Stream) Result

	MemAlloc(size uint64) (interop.DevicePtr, Result)
	MemFree(p interop.DevicePtr) Result
	MemcpyHtoD(dst interop.DevicePtr, src []byte) Result
	MemcpyDtoH(dst []byte, src interop.DevicePtr) Result

	ModuleLoadData(image []byte) (Module, Result)
	ModuleUnload(m Module) Result
	ModuleGetFunction(m Module, name string) (Function, Result)
	LaunchKernel(fn Function, grid, block [3]uint32, sharedMem uint32, s Stream, args []byte) Result

	ImportExternalMemory(desc *ExternalMemoryHandleDesc) (ExternalMemory, Result)
	ExternalMemoryGetMappedBuffer(m ExternalMemory, desc *ExternalMemoryBufferDesc) (interop.DevicePtr, Result)
	DestroyExternalMemory(m ExternalMemory) Result
}

// streamNonBlocking is CU_STREAM_NON_BLOCKING.
const streamNonBlocking = 0x1

// Context is a CUDA context with one stream. It implements
// interop.ComputeDomain. A Context is not safe for concurrent use.
type Context struct {
	drv    Driver
	info   DeviceInfo
	ctx    Ctx
	stream Stream

	kernels []*Kernel
	imports []*ImportedBuffer
	closed  bool
}

var (
	_ interop.ComputeDomain = (*Context)(nil)
	_ interop.Pusher        = (*Context)(nil)
)

// check converts a failed status into an *interop.OpError.
func check(kind error, op string, r Result) error {
	if r == Success {
		return nil
	}
	return interop.Fail(kind, ABI, op, r)
}

// NewContext initializes the driver and creates a context on the device
// selected by sel: by PCI bus id when set, otherwise by UUID, otherwise
// the first device. The new context is left current on the calling
// thread.
func NewContext(drv Driver, sel interop.DeviceID) (*Context, error) {
	if err := check(interop.ErrCreateFailed, "cuInit", drv.Init(0)); err != nil {
		return nil, err
	}
	dev, err := selectDevice(drv, sel)
	if err != nil {
		return nil, err
	}
	info, err := describe(drv, dev)
	if err != nil {
		return nil, err
	}

	ctx, r := drv.CtxCreate(0, dev)
	if err := check(interop.ErrCreateFailed, "cuCtxCreate", r); err != nil {
		return nil, err
	}
	stream, r := drv.StreamCreate(streamNonBlocking)
	if err := check(interop.ErrCreateFailed, "cuStreamCreate", r); err != nil {
		drv.CtxDestroy(ctx)
		return nil, err
	}

	interop.Logger().Info("cuda context created",
		"device", info.Name,
		"ordinal", info.Ordinal,
		"pci", info.PCIBusID,
		"memory", info.TotalMemory)
	return &Context{drv: drv, info: info, ctx: ctx, stream: stream}, nil
}

func selectDevice(drv Driver, sel interop.DeviceID) (Device, error) {
	if sel.PCIBusID != "" {
		dev, r := drv.DeviceByPCIBusID(sel.PCIBusID)
		if err := check(interop.ErrCreateFailed, "cuDeviceGetByPCIBusId", r); err != nil {
			return 0, fmt.Errorf("select device %s: %w", sel.PCIBusID, err)
		}
		return dev, nil
	}

	n, r := drv.DeviceCount()
	if err := check(interop.ErrCreateFailed, "cuDeviceGetCount", r); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, interop.Fail(interop.ErrCreateFailed, ABI, "cuDeviceGetCount", ErrorNoDevice)
	}
	if !sel.HasUUID() {
		dev, r := drv.DeviceGet(0)
		return dev, check(interop.ErrCreateFailed, "cuDeviceGet", r)
	}
	for i := range n {
		dev, r := drv.DeviceGet(i)
		if err := check(interop.ErrCreateFailed, "cuDeviceGet", r); err != nil {
			return 0, err
		}
		uuid, r := drv.DeviceUUID(dev)
		if err := check(interop.ErrCreateFailed, "cuDeviceGetUuid", r); err != nil {
			return 0, err
		}
		if uuid == sel.UUID {
			return dev, nil
		}
	}
	return 0, interop.Fail(interop.ErrCreateFailed, ABI, "select device",
		fmt.Errorf("no device with uuid %s: %w", sel, ErrorInvalidDevice))
}

func describe(drv Driver, dev Device) (DeviceInfo, error) {
	info := DeviceInfo{Ordinal: dev}
	var r Result
	if info.Name, r = drv.DeviceName(dev); r != Success {
		return info, check(interop.ErrCreateFailed, "cuDeviceGetName", r)
	}
	if info.UUID, r = drv.DeviceUUID(dev); r != Success {
		return info, check(interop.ErrCreateFailed, "cuDeviceGetUuid", r)
	}
	if info.PCIBusID, r = drv.DevicePCIBusID(dev); r != Success {
		return info, check(interop.ErrCreateFailed, "cuDeviceGetPCIBusId", r)
	}
	if info.TotalMemory, r = drv.DeviceTotalMem(dev); r != Success {
		return info, check(interop.ErrCreateFailed, "cuDeviceTotalMem", r)
	}
	return info, nil
}

// Name returns "cuda".
func (c *Context) Name() string { return ABI }

// Device describes the device the context runs on.
func (c *Context) Device() DeviceInfo { return c.info }

func (c *Context) usable() error {
	if c.closed {
		return interop.ErrClosed
	}
	return nil
}

// MakeCurrent binds the context to the calling thread.
func (c *Context) MakeCurrent() error {
	if err := c.usable(); err != nil {
		return err
	}
	return check(interop.ErrContextSwitchFailed, "cuCtxSetCurrent", c.drv.CtxSetCurrent(c.ctx))
}

// PushCurrent pushes the context on the calling thread's context stack.
func (c *Context) PushCurrent() error {
	if err := c.usable(); err != nil {
		return err
	}
	return check(interop.ErrContextSwitchFailed, "cuCtxPushCurrent", c.drv.CtxPushCurrent(c.ctx))
}

// PopCurrent restores the context that was current before PushCurrent.
func (c *Context) PopCurrent() error {
	_, r := c.drv.CtxPopCurrent()
	return check(interop.ErrContextSwitchFailed, "cuCtxPopCurrent", r)
}

// Synchronize waits for all work on the context's stream.
func (c *Context) Synchronize() error {
	if err := c.usable(); err != nil {
		return err
	}
	return check(interop.ErrSyncFailed, "cuStreamSynchronize", c.drv.StreamSynchronize(c.stream))
}

// Alloc allocates device memory.
func (c *Context) Alloc(size uint64) (interop.DevicePtr, error) {
	if err := c.usable(); err != nil {
		return 0, err
	}
	p, r := c.drv.MemAlloc(size)
	return p, check(interop.ErrCreateFailed, "cuMemAlloc", r)
}

// Free releases memory returned by Alloc.
func (c *Context) Free(p interop.DevicePtr) error {
	if err := c.usable(); err != nil {
		return err
	}
	return check(interop.ErrSyncFailed, "cuMemFree", c.drv.MemFree(p))
}

// Upload copies src to device memory. The copy is synchronous.
func (c *Context) Upload(dst interop.DevicePtr, src []byte) error {
	if err := c.usable(); err != nil {
		return err
	}
	return check(interop.ErrDispatchFailed, "cuMemcpyHtoD", c.drv.MemcpyHtoD(dst, src))
}

// Download copies device memory to dst. The copy is synchronous.
func (c *Context) Download(dst []byte, src interop.DevicePtr) error {
	if err := c.usable(); err != nil {
		return err
	}
	return check(interop.ErrSyncFailed, "cuMemcpyDtoH", c.drv.MemcpyDtoH(dst, src))
}

// Kernel is a function in a module loaded by LoadKernel.
type Kernel struct {
	name   string
	module Module
	fn     Function
}

// Name returns the kernel's entry point name.
func (k *Kernel) Name() string { return k.name }

// LoadKernel loads a PTX or cubin image and looks up entry in it. PTX
// text is NUL-terminated if needed.
func (c *Context) LoadKernel(image []byte, entry string) (*Kernel, error) {
	if err := c.usable(); err != nil {
		return nil, err
	}
	if len(image) == 0 {
		return nil, interop.Fail(interop.ErrCreateFailed, ABI, "cuModuleLoadData", ErrorInvalidImage)
	}
	if !isCubin(image) && image[len(image)-1] != 0 {
		image = append(slices.Clip(image), 0)
	}

	mod, r := c.drv.ModuleLoadData(image)
	if err := check(interop.ErrCreateFailed, "cuModuleLoadData", r); err != nil {
		return nil, err
	}
	fn, r := c.drv.ModuleGetFunction(mod, entry)
	if err := check(interop.ErrCreateFailed, "cuModuleGetFunction", r); err != nil {
		c.drv.ModuleUnload(mod)
		return nil, fmt.Errorf("kernel %q: %w", entry, err)
	}
	k := &Kernel{name: entry, module: mod, fn: fn}
	c.kernels = append(c.kernels, k)
	interop.Logger().Debug("cuda kernel loaded", "entry", entry, "bytes", len(image))
	return k, nil
}

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

func isCubin(image []byte) bool { return bytes.HasPrefix(image, elfMagic) }

// Dispatch enqueues k on the context's stream. The pointer arguments are
// packed into a single parameter buffer.
func (c *Context) Dispatch(k interop.Kernel, d interop.Dispatch) error {
	if err := c.usable(); err != nil {
		return err
	}
	kern, ok := k.(*Kernel)
	if !ok {
		return interop.Fail(interop.ErrDispatchFailed, ABI, "cuLaunchKernel",
			fmt.Errorf("kernel %T not loaded by this context: %w", k, ErrorInvalidHandle))
	}
	r := c.drv.LaunchKernel(kern.fn, d.Groups, d.GroupSize, d.SharedMemory, c.stream, packArgs(d.Args))
	return check(interop.ErrDispatchFailed, "cuLaunchKernel", r)
}

// ImportedBuffer is graphics memory mapped into the context.
type ImportedBuffer struct {
	ctx  *Context
	mem  ExternalMemory
	ptr  interop.DevicePtr
	size uint64
}

// Ptr returns the mapped device address.
func (b *ImportedBuffer) Ptr() interop.DevicePtr { return b.ptr }

// Size returns the mapped size in bytes.
func (b *ImportedBuffer) Size() uint64 { return b.size }

// Release unmaps the buffer and destroys the external memory object.
func (b *ImportedBuffer) Release() error {
	if b.mem == 0 {
		return nil
	}
	c := b.ctx
	errs := []error{
		check(interop.ErrSyncFailed, "cuMemFree", c.drv.MemFree(b.ptr)),
		check(interop.ErrSyncFailed, "cuDestroyExternalMemory", c.drv.DestroyExternalMemory(b.mem)),
	}
	b.mem, b.ptr = 0, 0
	c.imports = slices.DeleteFunc(c.imports, func(x *ImportedBuffer) bool { return x == b })
	return errors.Join(errs...)
}

// Import maps exported graphics memory into the context's address space.
// On failure the caller keeps ownership of the handle.
func (c *Context) Import(mem interop.ExternalMemory) (interop.Imported, error) {
	if err := c.usable(); err != nil {
		return nil, err
	}
	desc, ok := handleDesc(mem)
	if !ok {
		return nil, interop.Fail(interop.ErrImportFailed, ABI, "cuImportExternalMemory",
			fmt.Errorf("handle type %s: %w", mem.Type, ErrorNotSupported))
	}

	ext, r := c.drv.ImportExternalMemory(&desc)
	if err := check(interop.ErrImportFailed, "cuImportExternalMemory", r); err != nil {
		return nil, err
	}
	bufDesc := ExternalMemoryBufferDesc{Offset: 0, Size: mem.Size}
	ptr, r := c.drv.ExternalMemoryGetMappedBuffer(ext, &bufDesc)
	if err := check(interop.ErrImportFailed, "cuExternalMemoryGetMappedBuffer", r); err != nil {
		c.drv.DestroyExternalMemory(ext)
		return nil, err
	}

	b := &ImportedBuffer{ctx: c, mem: ext, ptr: ptr, size: mem.Size}
	c.imports = append(c.imports, b)
	interop.Logger().Debug("cuda external memory imported", "handle", mem.Type, "size", mem.Size)
	return b, nil
}

// Close binds the context to the calling thread, then releases imports
// and kernels, the stream and the context. Close is idempotent.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var errs []error
	if r := c.drv.CtxSetCurrent(c.ctx); r != Success {
		errs = append(errs, check(interop.ErrContextSwitchFailed, "cuCtxSetCurrent", r))
	}
	for len(c.imports) > 0 {
		errs = append(errs, c.imports[0].Release())
	}
	for _, k := range c.kernels {
		errs = append(errs, check(interop.ErrSyncFailed, "cuModuleUnload", c.drv.ModuleUnload(k.module)))
	}
	c.kernels = nil
	errs = append(errs,
		check(interop.ErrSyncFailed, "cuStreamDestroy", c.drv.StreamDestroy(c.stream)),
		check(interop.ErrSyncFailed, "cuCtxDestroy", c.drv.CtxDestroy(c.ctx)))
	c.closed = true
	interop.Logger().Debug("cuda context destroyed", "device", c.info.Name)
	return errors.Join(errs...)
}
