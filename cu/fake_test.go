// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cu

import (
	"github.com/gogpu/interop"
)

type fakeDevice struct {
	name string
	pci  string
	uuid [16]byte
	mem  uint64
}

type launch struct {
	fn     Function
	grid   [3]uint32
	block  [3]uint32
	stream Stream
	args   []byte
}

// fakeDriver is an in-memory CUDA driver. fail maps a method name to the
// status it returns.
type fakeDriver struct {
	devices []fakeDevice
	fail    map[string]Result

	nextHandle uintptr
	current    Ctx
	stack      []Ctx
	contexts   map[Ctx]Device
	streams    map[Stream]bool
	allocs     map[interop.DevicePtr][]byte
	modules    map[Module][]byte
	externals  map[ExternalMemory]ExternalMemoryHandleDesc
	launches   []launch
	funcs      map[Function]string
	syncs      int
	// unloadedIn records the current context at each module unload.
	unloadedIn []Ctx
}

func newFakeDriver(devices ...fakeDevice) *fakeDriver {
	return &fakeDriver{
		devices:    devices,
		fail:       map[string]Result{},
		nextHandle: 0x100,
		contexts:   map[Ctx]Device{},
		streams:    map[Stream]bool{},
		allocs:     map[interop.DevicePtr][]byte{},
		modules:    map[Module][]byte{},
		externals:  map[ExternalMemory]ExternalMemoryHandleDesc{},
		funcs:      map[Function]string{},
	}
}

func twoDevices() *fakeDriver {
	return newFakeDriver(
		fakeDevice{name: "GPU A", pci: "0000:01:00.0", uuid: [16]byte{1}, mem: 8 << 30},
		fakeDevice{name: "GPU B", pci: "0000:02:00.0", uuid: [16]byte{2}, mem: 16 << 30},
	)
}

func (d *fakeDriver) handle() uintptr {
	d.nextHandle += 0x10
	return d.nextHandle
}

func (d *fakeDriver) Init(uint32) Result { return d.fail["Init"] }

func (d *fakeDriver) DeviceCount() (int, Result) {
	return len(d.devices), d.fail["DeviceCount"]
}

func (d *fakeDriver) DeviceGet(ordinal int) (Device, Result) {
	if ordinal >= len(d.devices) {
		return 0, ErrorInvalidDevice
	}
	return Device(ordinal), d.fail["DeviceGet"]
}

func (d *fakeDriver) DeviceByPCIBusID(id string) (Device, Result) {
	for i, dev := range d.devices {
		if dev.pci == id {
			return Device(i), Success
		}
	}
	return 0, ErrorInvalidDevice
}

func (d *fakeDriver) DeviceName(dev Device) (string, Result) {
	return d.devices[dev].name, d.fail["DeviceName"]
}

func (d *fakeDriver) DeviceUUID(dev Device) ([16]byte, Result) {
	return d.devices[dev].uuid, d.fail["DeviceUUID"]
}

func (d *fakeDriver) DevicePCIBusID(dev Device) (string, Result) {
	return d.devices[dev].pci, d.fail["DevicePCIBusID"]
}

func (d *fakeDriver) DeviceTotalMem(dev Device) (uint64, Result) {
	return d.devices[dev].mem, d.fail["DeviceTotalMem"]
}

func (d *fakeDriver) CtxCreate(_ uint32, dev Device) (Ctx, Result) {
	if r := d.fail["CtxCreate"]; r != Success {
		return 0, r
	}
	c := Ctx(d.handle())
	d.contexts[c] = dev
	d.current = c
	return c, Success
}

func (d *fakeDriver) CtxDestroy(c Ctx) Result {
	delete(d.contexts, c)
	if d.current == c {
		d.current = 0
	}
	return d.fail["CtxDestroy"]
}

func (d *fakeDriver) CtxSetCurrent(c Ctx) Result {
	if r := d.fail["CtxSetCurrent"]; r != Success {
		return r
	}
	d.current = c
	return Success
}

func (d *fakeDriver) CtxPushCurrent(c Ctx) Result {
	if r := d.fail["CtxPushCurrent"]; r != Success {
		return r
	}
	d.stack = append(d.stack, d.current)
	d.current = c
	return Success
}

func (d *fakeDriver) CtxPopCurrent() (Ctx, Result) {
	if len(d.stack) == 0 {
		return 0, ErrorInvalidContext
	}
	c := d.current
	d.current = d.stack[len(d.stack)-1]
	d.stack = d.stack[:len(d.stack)-1]
	return c, Success
}

func (d *fakeDriver) StreamCreate(uint32) (Stream, Result) {
	if r := d.fail["StreamCreate"]; r != Success {
		return 0, r
	}
	s := Stream(d.handle())
	d.streams[s] = true
	return s, Success
}

func (d *fakeDriver) StreamDestroy(s Stream) Result {
	delete(d.streams, s)
	return Success
}

func (d *fakeDriver) StreamSynchronize(Stream) Result {
	d.syncs++
	return d.fail["StreamSynchronize"]
}

func (d *fakeDriver) MemAlloc(size uint64) (interop.DevicePtr, Result) {
	if r := d.fail["MemAlloc"]; r != Success {
		return 0, r
	}
	p := interop.DevicePtr(d.handle()) << 8
	d.allocs[p] = make([]byte, size)
	return p, Success
}

func (d *fakeDriver) MemFree(p interop.DevicePtr) Result {
	if _, ok := d.allocs[p]; !ok {
		return ErrorInvalidValue
	}
	delete(d.allocs, p)
	return Success
}

func (d *fakeDriver) MemcpyHtoD(dst interop.DevicePtr, src []byte) Result {
	if r := d.fail["MemcpyHtoD"]; r != Success {
		return r
	}
	copy(d.allocs[dst], src)
	return Success
}

func (d *fakeDriver) MemcpyDtoH(dst []byte, src interop.DevicePtr) Result {
	copy(dst, d.allocs[src])
	return d.fail["MemcpyDtoH"]
}

func (d *fakeDriver) ModuleLoadData(image []byte) (Module, Result) {
	if r := d.fail["ModuleLoadData"]; r != Success {
		return 0, r
	}
	m := Module(d.handle())
	d.modules[m] = append([]byte(nil), image...)
	return m, Success
}

func (d *fakeDriver) ModuleUnload(m Module) Result {
	d.unloadedIn = append(d.unloadedIn, d.current)
	delete(d.modules, m)
	return Success
}

func (d *fakeDriver) ModuleGetFunction(m Module, name string) (Function, Result) {
	if r := d.fail["ModuleGetFunction"]; r != Success {
		return 0, r
	}
	f := Function(d.handle())
	d.funcs[f] = name
	return f, Success
}

func (d *fakeDriver) LaunchKernel(fn Function, grid, block [3]uint32, _ uint32, s Stream, args []byte) Result {
	if r := d.fail["LaunchKernel"]; r != Success {
		return r
	}
	d.launches = append(d.launches, launch{fn: fn, grid: grid, block: block, stream: s, args: append([]byte(nil), args...)})
	return Success
}

func (d *fakeDriver) ImportExternalMemory(desc *ExternalMemoryHandleDesc) (ExternalMemory, Result) {
	if r := d.fail["ImportExternalMemory"]; r != Success {
		return 0, r
	}
	m := ExternalMemory(d.handle())
	d.externals[m] = *desc
	return m, Success
}

func (d *fakeDriver) ExternalMemoryGetMappedBuffer(m ExternalMemory, desc *ExternalMemoryBufferDesc) (interop.DevicePtr, Result) {
	if r := d.fail["ExternalMemoryGetMappedBuffer"]; r != Success {
		return 0, r
	}
	p := interop.DevicePtr(d.handle()) << 8
	d.allocs[p] = make([]byte, desc.Size)
	return p, Success
}

func (d *fakeDriver) DestroyExternalMemory(m ExternalMemory) Result {
	delete(d.externals, m)
	return Success
}
