// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/interop"
)

// DeviceHandle provides GPU device access from a host application such
// as gogpu. A Device can be built on a host's device with FromProvider
// instead of opening its own.
type DeviceHandle = gpucontext.DeviceProvider

// ErrNoAdapter is returned by Open when the backend reports no adapters.
var ErrNoAdapter = errors.New("render: no GPU adapters found")

// fenceTimeout bounds every wait for the GPU.
const fenceTimeout = 5 * time.Second

// Device is a graphics domain on a gogpu/wgpu HAL device. HAL buffers
// cannot be exported, so resources shared with a compute domain are
// staged: Export always fails with interop.ErrExportUnsupported.
type Device struct {
	mu sync.Mutex

	device   hal.Device
	queue    hal.Queue
	instance hal.Instance
	name     string
	owned    bool
	closed   bool

	buffers map[*Buffer]struct{}
}

var _ interop.GraphicsDomain = (*Device)(nil)

// New wraps a HAL device and queue owned by the caller.
func New(device hal.Device, queue hal.Queue) *Device {
	return &Device{device: device, queue: queue, name: "hal", buffers: map[*Buffer]struct{}{}}
}

// FromProvider uses the device of a host application. The provider must
// implement HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue.
func FromProvider(provider DeviceHandle) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("render: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("render: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("render: provider HalQueue is not hal.Queue")
	}
	return New(device, queue), nil
}

// Open creates an instance of backend and opens its first discrete or
// integrated adapter, falling back to the first adapter. The backend
// package must be linked, for example with
//
//	import _ "github.com/gogpu/wgpu/hal/vulkan"
func Open(backend gputypes.Backend) (*Device, error) {
	b, ok := hal.GetBackend(backend)
	if !ok {
		return nil, fmt.Errorf("render: backend %v not available", backend)
	}
	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("render: create instance: %w", err)
	}
	return openInstance(instance)
}

// OpenNoop opens a device on the HAL noop backend. Every operation
// succeeds without touching a GPU.
func OpenNoop() (*Device, error) {
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("render: create noop instance: %w", err)
	}
	return openInstance(instance)
}

func openInstance(instance hal.Instance) (*Device, error) {
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("render: open device: %w", err)
	}
	d := New(openDev.Device, openDev.Queue)
	d.instance = instance
	d.name = "hal"
	d.owned = true
	interop.Logger().Info("hal device opened", "adapter", selected.Info.Name, "type", selected.Info.DeviceType)
	return d, nil
}

// HAL returns the underlying device and queue.
func (d *Device) HAL() (hal.Device, hal.Queue) { return d.device, d.queue }

// Name returns "hal".
func (d *Device) Name() string { return d.name }

// Device returns the zero DeviceID: HAL adapters do not report a PCI
// location or UUID.
func (d *Device) Device() interop.DeviceID { return interop.DeviceID{} }

// MakeCurrent is a no-op.
func (d *Device) MakeCurrent() error {
	if d.isClosed() {
		return interop.ErrClosed
	}
	return nil
}

func (d *Device) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Synchronize waits for all submitted work by fencing an empty
// submission.
func (d *Device) Synchronize() error {
	if d.isClosed() {
		return interop.ErrClosed
	}
	return d.submit(nil)
}

// submit submits cmds and waits for them to complete.
func (d *Device) submit(cmds []hal.CommandBuffer) error {
	fence, err := d.device.CreateFence()
	if err != nil {
		return interop.Fail(interop.ErrSyncFailed, d.name, "create fence", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit(cmds, fence, 1); err != nil {
		return interop.Fail(interop.ErrSyncFailed, d.name, "submit", err)
	}
	ok, err := d.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return interop.Fail(interop.ErrSyncFailed, d.name, "wait", err)
	}
	if !ok {
		return interop.Fail(interop.ErrSyncFailed, d.name, "wait",
			fmt.Errorf("fence not signaled after %v", fenceTimeout))
	}
	return nil
}

// Buffer is a HAL buffer created by a Device.
type Buffer struct {
	buf   hal.Buffer
	size  uint64
	usage interop.Usage
}

// Size returns the buffer size in bytes.
func (b *Buffer) Size() uint64 { return b.size }

// HAL returns the underlying HAL buffer.
func (b *Buffer) HAL() hal.Buffer { return b.buf }

func bufferUsage(u interop.Usage) gputypes.BufferUsage {
	usage := gputypes.BufferUsageCopyDst
	if u.Has(interop.UsageStorage) {
		usage |= gputypes.BufferUsageStorage
	}
	if u.Has(interop.UsageVertex) {
		usage |= gputypes.BufferUsageVertex
	}
	if u.Has(interop.UsageUniform) {
		usage |= gputypes.BufferUsageUniform
	}
	if u.Has(interop.UsageCopySrc) {
		usage |= gputypes.BufferUsageCopySrc
	}
	return usage
}

// CreateBuffer creates a buffer. The size is rounded up to a multiple of
// 4 bytes, the HAL copy granularity.
func (d *Device) CreateBuffer(size uint64, usage interop.Usage) (interop.Buffer, error) {
	if size == 0 {
		return nil, fmt.Errorf("%w: zero-sized buffer", interop.ErrInvalidUsage)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, interop.ErrClosed
	}
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "interop_buffer",
		Size:  (size + 3) &^ 3,
		Usage: bufferUsage(usage),
	})
	if err != nil {
		return nil, interop.Fail(interop.ErrCreateFailed, d.name, "create buffer", err)
	}
	b := &Buffer{buf: buf, size: size, usage: usage}
	d.buffers[b] = struct{}{}
	return b, nil
}

func (d *Device) buffer(b interop.Buffer) (*Buffer, error) {
	hb, ok := b.(*Buffer)
	if !ok {
		return nil, fmt.Errorf("%w: buffer %T not created by a hal device", interop.ErrInvalidUsage, b)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, interop.ErrClosed
	}
	if _, ok := d.buffers[hb]; !ok {
		return nil, fmt.Errorf("%w: buffer not owned by this device", interop.ErrInvalidUsage)
	}
	return hb, nil
}

// DestroyBuffer destroys b.
func (d *Device) DestroyBuffer(b interop.Buffer) {
	hb, err := d.buffer(b)
	if err != nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.device.DestroyBuffer(hb.buf)
	delete(d.buffers, hb)
}

// Export always fails: HAL buffers have no exportable memory.
func (d *Device) Export(interop.Buffer) (interop.ExternalMemory, error) {
	return interop.ExternalMemory{}, fmt.Errorf("render: hal buffers: %w", interop.ErrExportUnsupported)
}

// Write queues a write of data into b at offset.
func (d *Device) Write(b interop.Buffer, offset uint64, data []byte) error {
	hb, err := d.buffer(b)
	if err != nil {
		return err
	}
	if offset+uint64(len(data)) > hb.size {
		return fmt.Errorf("%w: write of %d bytes at %d overflows buffer of %d",
			interop.ErrInvalidUsage, len(data), offset, hb.size)
	}
	if len(data) == 0 {
		return nil
	}
	if len(data)%4 != 0 {
		padded := make([]byte, (len(data)+3)&^3)
		copy(padded, data)
		data = padded
	}
	d.queue.WriteBuffer(hb.buf, offset, data)
	return nil
}

// Flush waits until queued writes to b have reached the GPU, so draws
// submitted afterwards read them.
func (d *Device) Flush(b interop.Buffer) error {
	if _, err := d.buffer(b); err != nil {
		return err
	}
	return d.submit(nil)
}

// Close destroys remaining buffers, then the device and instance when
// they were opened by Open or OpenNoop. Close is idempotent.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	if n := len(d.buffers); n > 0 {
		interop.Logger().Warn("hal device closed with live buffers", "count", n)
	}
	for b := range d.buffers {
		d.device.DestroyBuffer(b.buf)
		delete(d.buffers, b)
	}
	if d.owned {
		d.device.Destroy()
		d.instance.Destroy()
	}
	return nil
}
