// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cu

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/gogpu/interop"
	"github.com/gogpu/interop/driver"
	"github.com/gogpu/interop/internal/ffi"
)

// API calls the CUDA driver through a resolved capability table.
type API struct {
	table *driver.Table

	getErrorName                  driver.Proc
	init                          driver.Proc
	driverGetVersion              driver.Proc
	deviceGet                     driver.Proc
	deviceGetCount                driver.Proc
	deviceGetName                 driver.Proc
	deviceGetUUID                 driver.Proc
	deviceTotalMem                driver.Proc
	deviceGetByPCIBusID           driver.Proc
	deviceGetPCIBusID             driver.Proc
	ctxCreate                     driver.Proc
	ctxDestroy                    driver.Proc
	ctxSetCurrent                 driver.Proc
	ctxPushCurrent                driver.Proc
	ctxPopCurrent                 driver.Proc
	streamCreate                  driver.Proc
	streamDestroy                 driver.Proc
	streamSynchronize             driver.Proc
	memAlloc                      driver.Proc
	memFree                       driver.Proc
	memcpyHtoD                    driver.Proc
	memcpyDtoH                    driver.Proc
	moduleLoadData                driver.Proc
	moduleUnload                  driver.Proc
	moduleGetFunction             driver.Proc
	launchKernel                  driver.Proc
	importExternalMemory          driver.Proc
	externalMemoryGetMappedBuffer driver.Proc
	destroyExternalMemory         driver.Proc
}

var _ Driver = (*API)(nil)

// Open binds an API to a table built from Catalog.
func Open(t *driver.Table) (*API, error) {
	if t == nil || t.Catalog() != Catalog {
		return nil, fmt.Errorf("%w: table was not built from the CUDA catalog", interop.ErrCreateFailed)
	}
	p := t.MustProc
	return &API{
		table:                         t,
		getErrorName:                  p("cuGetErrorName"),
		init:                          p("cuInit"),
		driverGetVersion:              p("cuDriverGetVersion"),
		deviceGet:                     p("cuDeviceGet"),
		deviceGetCount:                p("cuDeviceGetCount"),
		deviceGetName:                 p("cuDeviceGetName"),
		deviceGetUUID:                 p("cuDeviceGetUuid"),
		deviceTotalMem:                p("cuDeviceTotalMem"),
		deviceGetByPCIBusID:           p("cuDeviceGetByPCIBusId"),
		deviceGetPCIBusID:             p("cuDeviceGetPCIBusId"),
		ctxCreate:                     p("cuCtxCreate"),
		ctxDestroy:                    p("cuCtxDestroy"),
		ctxSetCurrent:                 p("cuCtxSetCurrent"),
		ctxPushCurrent:                p("cuCtxPushCurrent"),
		ctxPopCurrent:                 p("cuCtxPopCurrent"),
		streamCreate:                  p("cuStreamCreate"),
		streamDestroy:                 p("cuStreamDestroy"),
		streamSynchronize:             p("cuStreamSynchronize"),
		memAlloc:                      p("cuMemAlloc"),
		memFree:                       p("cuMemFree"),
		memcpyHtoD:                    p("cuMemcpyHtoD"),
		memcpyDtoH:                    p("cuMemcpyDtoH"),
		moduleLoadData:                p("cuModuleLoadData"),
		moduleUnload:                  p("cuModuleUnload"),
		moduleGetFunction:             p("cuModuleGetFunction"),
		launchKernel:                  p("cuLaunchKernel"),
		importExternalMemory:          p("cuImportExternalMemory"),
		externalMemoryGetMappedBuffer: p("cuExternalMemoryGetMappedBuffer"),
		destroyExternalMemory:         p("cuDestroyExternalMemory"),
	}, nil
}

// Table returns the capability table the API calls through.
func (a *API) Table() *driver.Table { return a.table }

func call(fn driver.Proc, args ...uintptr) Result {
	return Result(int32(ffi.Call(uintptr(fn), args...)))
}

// ErrorName asks the driver for the symbolic name of r.
func (a *API) ErrorName(r Result) string {
	var f ffi.Frame
	defer f.Release()
	var p uintptr
	if call(a.getErrorName, uintptr(r), ffi.Ptr(&f, &p)) != Success {
		return r.Error()
	}
	return ffi.GoString(p)
}

func (a *API) Init(flags uint32) Result {
	return call(a.init, uintptr(flags))
}

func (a *API) DriverVersion() (int, Result) {
	var f ffi.Frame
	defer f.Release()
	var v int32
	r := call(a.driverGetVersion, ffi.Ptr(&f, &v))
	return int(v), r
}

func (a *API) DeviceCount() (int, Result) {
	var f ffi.Frame
	defer f.Release()
	var n int32
	r := call(a.deviceGetCount, ffi.Ptr(&f, &n))
	return int(n), r
}

func (a *API) DeviceGet(ordinal int) (Device, Result) {
	var f ffi.Frame
	defer f.Release()
	var d Device
	r := call(a.deviceGet, ffi.Ptr(&f, &d), uintptr(ordinal))
	return d, r
}

func (a *API) DeviceByPCIBusID(id string) (Device, Result) {
	var f ffi.Frame
	defer f.Release()
	var d Device
	r := call(a.deviceGetByPCIBusID, ffi.Ptr(&f, &d), f.CString(id))
	return d, r
}

func (a *API) DeviceName(d Device) (string, Result) {
	var f ffi.Frame
	defer f.Release()
	buf := make([]byte, 256)
	r := call(a.deviceGetName, ffi.Slice(&f, buf), uintptr(len(buf)), uintptr(d))
	return ffi.CBytes(buf), r
}

func (a *API) DeviceUUID(d Device) ([16]byte, Result) {
	var f ffi.Frame
	defer f.Release()
	var uuid [16]byte
	r := call(a.deviceGetUUID, ffi.Ptr(&f, &uuid), uintptr(d))
	return uuid, r
}

func (a *API) DevicePCIBusID(d Device) (string, Result) {
	var f ffi.Frame
	defer f.Release()
	buf := make([]byte, 32)
	r := call(a.deviceGetPCIBusID, ffi.Slice(&f, buf), uintptr(len(buf)), uintptr(d))
	return ffi.CBytes(buf), r
}

func (a *API) DeviceTotalMem(d Device) (uint64, Result) {
	var f ffi.Frame
	defer f.Release()
	var n uint64
	r := call(a.deviceTotalMem, ffi.Ptr(&f, &n), uintptr(d))
	return n, r
}

func (a *API) CtxCreate(flags uint32, d Device) (Ctx, Result) {
	var f ffi.Frame
	defer f.Release()
	var c Ctx
	r := call(a.ctxCreate, ffi.Ptr(&f, &c), uintptr(flags), uintptr(d))
	return c, r
}

func (a *API) CtxDestroy(c Ctx) Result {
	return call(a.ctxDestroy, uintptr(c))
}

func (a *API) CtxSetCurrent(c Ctx) Result {
	return call(a.ctxSetCurrent, uintptr(c))
}

func (a *API) CtxPushCurrent(c Ctx) Result {
	return call(a.ctxPushCurrent, uintptr(c))
}

func (a *API) CtxPopCurrent() (Ctx, Result) {
	var f ffi.Frame
	defer f.Release()
	var c Ctx
	r := call(a.ctxPopCurrent, ffi.Ptr(&f, &c))
	return c, r
}

func (a *API) StreamCreate(flags uint32) (Stream, Result) {
	var f ffi.Frame
	defer f.Release()
	var s Stream
	r := call(a.streamCreate, ffi.Ptr(&f, &s), uintptr(flags))
	return s, r
}

func (a *API) StreamDestroy(s Stream) Result {
	return call(a.streamDestroy, uintptr(s))
}

func (a *API) StreamSynchronize(s Stream) Result {
	return call(a.streamSynchronize, uintptr(s))
}

func (a *API) MemAlloc(size uint64) (interop.DevicePtr, Result) {
	var f ffi.Frame
	defer f.Release()
	var p interop.DevicePtr
	r := call(a.memAlloc, ffi.Ptr(&f, &p), uintptr(size))
	return p, r
}

func (a *API) MemFree(p interop.DevicePtr) Result {
	return call(a.memFree, uintptr(p))
}

func (a *API) MemcpyHtoD(dst interop.DevicePtr, src []byte) Result {
	if len(src) == 0 {
		return Success
	}
	var f ffi.Frame
	defer f.Release()
	return call(a.memcpyHtoD, uintptr(dst), ffi.Slice(&f, src), uintptr(len(src)))
}

func (a *API) MemcpyDtoH(dst []byte, src interop.DevicePtr) Result {
	if len(dst) == 0 {
		return Success
	}
	var f ffi.Frame
	defer f.Release()
	return call(a.memcpyDtoH, ffi.Slice(&f, dst), uintptr(src), uintptr(len(dst)))
}

func (a *API) ModuleLoadData(image []byte) (Module, Result) {
	var f ffi.Frame
	defer f.Release()
	var m Module
	r := call(a.moduleLoadData, ffi.Ptr(&f, &m), ffi.Slice(&f, image))
	return m, r
}

func (a *API) ModuleUnload(m Module) Result {
	return call(a.moduleUnload, uintptr(m))
}

func (a *API) ModuleGetFunction(m Module, name string) (Function, Result) {
	var f ffi.Frame
	defer f.Release()
	var fn Function
	r := call(a.moduleGetFunction, ffi.Ptr(&f, &fn), uintptr(m), f.CString(name))
	return fn, r
}

// LaunchKernel launches fn with its arguments packed into one buffer,
// passed through the extra parameter of cuLaunchKernel.
func (a *API) LaunchKernel(fn Function, grid, block [3]uint32, sharedMem uint32, s Stream, args []byte) Result {
	var f ffi.Frame
	defer f.Release()
	size := new(uintptr)
	*size = uintptr(len(args))
	var extra uintptr
	if len(args) > 0 {
		cfg := []uintptr{
			launchParamBufferPointer, ffi.Slice(&f, args),
			launchParamBufferSize, ffi.Ptr(&f, size),
			launchParamEnd,
		}
		extra = ffi.Slice(&f, cfg)
	}
	return call(a.launchKernel,
		uintptr(fn),
		uintptr(grid[0]), uintptr(grid[1]), uintptr(grid[2]),
		uintptr(block[0]), uintptr(block[1]), uintptr(block[2]),
		uintptr(sharedMem),
		uintptr(s),
		0,
		extra)
}

func (a *API) ImportExternalMemory(desc *ExternalMemoryHandleDesc) (ExternalMemory, Result) {
	var f ffi.Frame
	defer f.Release()
	var m ExternalMemory
	r := call(a.importExternalMemory, ffi.Ptr(&f, &m), ffi.Ptr(&f, desc))
	return m, r
}

func (a *API) ExternalMemoryGetMappedBuffer(m ExternalMemory, desc *ExternalMemoryBufferDesc) (interop.DevicePtr, Result) {
	var f ffi.Frame
	defer f.Release()
	var p interop.DevicePtr
	r := call(a.externalMemoryGetMappedBuffer, ffi.Ptr(&f, &p), uintptr(m), ffi.Ptr(&f, desc))
	return p, r
}

func (a *API) DestroyExternalMemory(m ExternalMemory) Result {
	return call(a.destroyExternalMemory, uintptr(m))
}

// packArgs lays out kernel pointer arguments the way the kernel expects
// them in its parameter buffer.
func packArgs(args []interop.DevicePtr) []byte {
	b := make([]byte, 0, len(args)*int(unsafe.Sizeof(uint64(0))))
	for _, p := range args {
		b = binary.LittleEndian.AppendUint64(b, uint64(p))
	}
	return b
}
