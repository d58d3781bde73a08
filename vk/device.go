// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vk

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/interop"
	"github.com/gogpu/interop/driver"
	"github.com/gogpu/interop/internal/ffi"
)

// ErrNoGraphicsQueue is returned by NewDevice when the selected physical
// device has no graphics queue family.
var ErrNoGraphicsQueue = errors.New("vk: no graphics queue family")

// Device is a logical Vulkan device with one graphics queue. It
// implements interop.GraphicsDomain. Buffers created with
// interop.UsageInterop are backed by dedicated exportable memory when the
// driver supports external memory on this platform.
type Device struct {
	mu sync.Mutex

	table      *driver.Table
	phys       PhysicalDevice
	memory     physicalDeviceMemoryProperties
	handle     uintptr
	queue      uintptr
	family     uint32
	pool       uint64
	cmd        uintptr
	exportable bool

	buffers map[*Buffer]struct{}
}

var _ interop.GraphicsDomain = (*Device)(nil)

// NewDevice creates a logical device on the physical device sel selects.
func NewDevice(inst *Instance, sel interop.DeviceID) (*Device, error) {
	devs, err := inst.PhysicalDevices()
	if err != nil {
		return nil, err
	}
	idx, err := selectPhysicalDevice(devs, sel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", interop.ErrCreateFailed, err)
	}
	phys := devs[idx]
	t := inst.table

	family, ok := graphicsQueueFamily(queueFamilies(t, phys.handle))
	if !ok {
		return nil, fmt.Errorf("%w: %s: %w", interop.ErrCreateFailed, phys.Name, ErrNoGraphicsQueue)
	}

	d := &Device{table: t, phys: phys, family: family, buffers: map[*Buffer]struct{}{}}
	func() {
		var f ffi.Frame
		defer f.Release()
		call(t.MustProc("vkGetPhysicalDeviceMemoryProperties"), phys.handle, ffi.Ptr(&f, &d.memory))
	}()

	exts := externalMemoryExtensions(phys, t)
	d.exportable = len(exts) > 0
	if err := d.create(exts); err != nil {
		return nil, err
	}
	if err := d.createCommands(); err != nil {
		_ = d.Close()
		return nil, err
	}

	if !d.exportable {
		interop.Logger().Warn("vulkan device cannot export memory",
			"device", phys.Name, "extension", exportExtension)
	}
	interop.Logger().Info("vulkan device created",
		"device", phys.Name,
		"type", phys.Type,
		"pci", phys.PCIBusID,
		"queue_family", family,
		"exportable", d.exportable)
	return d, nil
}

func queueFamilies(t *driver.Table, phys uintptr) []queueFamilyProperties {
	get := t.MustProc("vkGetPhysicalDeviceQueueFamilyProperties")
	var f ffi.Frame
	defer f.Release()
	var n uint32
	call(get, phys, ffi.Ptr(&f, &n), 0)
	props := make([]queueFamilyProperties, n)
	if n > 0 {
		call(get, phys, ffi.Ptr(&f, &n), ffi.Slice(&f, props))
	}
	return props[:n]
}

func graphicsQueueFamily(props []queueFamilyProperties) (uint32, bool) {
	for i, p := range props {
		if p.queueFlags&queueGraphics != 0 && p.queueCount > 0 {
			return uint32(i), true
		}
	}
	return 0, false
}

// externalMemoryExtensions returns the device extensions needed to export
// memory on this platform, or nil if phys or the table lacks them.
func externalMemoryExtensions(phys PhysicalDevice, t *driver.Table) []string {
	if exportExtension == "" || !phys.HasExtension(exportExtension) || !t.Has(exportProc) {
		return nil
	}
	exts := []string{exportExtension}
	for _, e := range []string{"VK_KHR_external_memory", "VK_KHR_dedicated_allocation", "VK_KHR_get_memory_requirements2"} {
		if phys.HasExtension(e) {
			exts = append(exts, e)
		}
	}
	return exts
}

func (d *Device) create(exts []string) error {
	var f ffi.Frame
	defer f.Release()

	priority := float32(1)
	queueInfo := deviceQueueCreateInfo{
		sType:            structureTypeDeviceQueueCreateInfo,
		queueFamilyIndex: d.family,
		queueCount:       1,
		pQueuePriorities: ffi.Ptr(&f, &priority),
	}
	info := deviceCreateInfo{
		sType:                   structureTypeDeviceCreateInfo,
		queueCreateInfoCount:    1,
		pQueueCreateInfos:       ffi.Ptr(&f, &queueInfo),
		enabledExtensionCount:   uint32(len(exts)),
		ppEnabledExtensionNames: f.CStrings(exts),
	}
	r := call(d.table.MustProc("vkCreateDevice"), d.phys.handle, ffi.Ptr(&f, &info), 0, ffi.Ptr(&f, &d.handle))
	if err := check(interop.ErrCreateFailed, "vkCreateDevice", r); err != nil {
		return err
	}
	call(d.table.MustProc("vkGetDeviceQueue"), d.handle, uintptr(d.family), 0, ffi.Ptr(&f, &d.queue))
	return nil
}

func (d *Device) createCommands() error {
	var f ffi.Frame
	defer f.Release()

	poolInfo := commandPoolCreateInfo{
		sType:            structureTypeCommandPoolCreateInfo,
		flags:            commandPoolCreateResetCommandBuffer,
		queueFamilyIndex: d.family,
	}
	r := call(d.table.MustProc("vkCreateCommandPool"), d.handle, ffi.Ptr(&f, &poolInfo), 0, ffi.Ptr(&f, &d.pool))
	if err := check(interop.ErrCreateFailed, "vkCreateCommandPool", r); err != nil {
		return err
	}
	allocInfo := commandBufferAllocateInfo{
		sType:              structureTypeCommandBufferAllocateInfo,
		commandPool:        d.pool,
		level:              commandBufferLevelPrimary,
		commandBufferCount: 1,
	}
	r = call(d.table.MustProc("vkAllocateCommandBuffers"), d.handle, ffi.Ptr(&f, &allocInfo), ffi.Ptr(&f, &d.cmd))
	return check(interop.ErrCreateFailed, "vkAllocateCommandBuffers", r)
}

// Name returns "vulkan".
func (d *Device) Name() string { return ABI }

// Device identifies the physical device.
func (d *Device) Device() interop.DeviceID { return d.phys.ID() }

// PhysicalDevice describes the physical device.
func (d *Device) PhysicalDevice() PhysicalDevice { return d.phys }

// Exportable reports whether interop buffers can be exported.
func (d *Device) Exportable() bool { return d.exportable }

// MakeCurrent is a no-op: Vulkan has no per-thread current device.
func (d *Device) MakeCurrent() error {
	if d.handle == 0 {
		return interop.ErrClosed
	}
	return nil
}

// Synchronize waits until the graphics queue is idle.
func (d *Device) Synchronize() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handle == 0 {
		return interop.ErrClosed
	}
	return check(interop.ErrSyncFailed, "vkQueueWaitIdle", call(d.table.MustProc("vkQueueWaitIdle"), d.queue))
}

// Close destroys remaining buffers, the command pool and the device.
// Close is idempotent.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handle == 0 {
		return nil
	}
	t := d.table
	call(t.MustProc("vkDeviceWaitIdle"), d.handle)
	if n := len(d.buffers); n > 0 {
		interop.Logger().Warn("vulkan device closed with live buffers", "count", n)
	}
	for b := range d.buffers {
		d.destroyBuffer(b)
	}
	if d.pool != 0 {
		call(t.MustProc("vkDestroyCommandPool"), d.handle, uintptr(d.pool), 0)
		d.pool, d.cmd = 0, 0
	}
	call(t.MustProc("vkDestroyDevice"), d.handle, 0)
	d.handle = 0
	interop.Logger().Debug("vulkan device destroyed", "device", d.phys.Name)
	return nil
}

// Buffer is a Vulkan buffer bound to its own memory allocation.
type Buffer struct {
	handle     uint64
	memory     uint64
	size       uint64
	allocSize  uint64
	usage      interop.Usage
	exportable bool
}

// Size returns the buffer size in bytes.
func (b *Buffer) Size() uint64 { return b.size }

// Handle returns the VkBuffer handle.
func (b *Buffer) Handle() uint64 { return b.handle }

// Exportable reports whether the buffer memory can be exported.
func (b *Buffer) Exportable() bool { return b.exportable }

func bufferUsageFlags(u interop.Usage) uint32 {
	flags := uint32(bufferUsageTransferDst)
	if u.Has(interop.UsageStorage) {
		flags |= bufferUsageStorage
	}
	if u.Has(interop.UsageVertex) {
		flags |= bufferUsageVertex
	}
	if u.Has(interop.UsageUniform) {
		flags |= bufferUsageUniform
	}
	if u.Has(interop.UsageCopySrc) {
		flags |= bufferUsageTransferSrc
	}
	return flags
}

// findMemoryType returns the index of the first memory type allowed by
// bits that has all of want, falling back to any allowed type.
func findMemoryType(props *physicalDeviceMemoryProperties, bits, want uint32) (uint32, bool) {
	n := min(props.memoryTypeCount, uint32(len(props.memoryTypes)))
	for i := range n {
		if bits&(1<<i) != 0 && props.memoryTypes[i].propertyFlags&want == want {
			return i, true
		}
	}
	for i := range n {
		if bits&(1<<i) != 0 {
			return i, true
		}
	}
	return 0, false
}

// CreateBuffer creates a device-local buffer. With interop.UsageInterop
// on an exportable device the buffer gets external-memory create info
// and a dedicated exportable allocation.
func (d *Device) CreateBuffer(size uint64, usage interop.Usage) (interop.Buffer, error) {
	if size == 0 {
		return nil, fmt.Errorf("%w: zero-sized buffer", interop.ErrInvalidUsage)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handle == 0 {
		return nil, interop.ErrClosed
	}
	t := d.table
	b := &Buffer{size: size, usage: usage, exportable: d.exportable && usage.Has(interop.UsageInterop)}

	var f ffi.Frame
	defer f.Release()

	info := bufferCreateInfo{
		sType:       structureTypeBufferCreateInfo,
		size:        size,
		usage:       bufferUsageFlags(usage),
		sharingMode: sharingModeExclusive,
	}
	external := externalMemoryInfo{sType: structureTypeExternalMemoryBufferCreateInfo, handleTypes: exportHandleBit}
	if b.exportable {
		info.pNext = ffi.Ptr(&f, &external)
	}
	r := call(t.MustProc("vkCreateBuffer"), d.handle, ffi.Ptr(&f, &info), 0, ffi.Ptr(&f, &b.handle))
	if err := check(interop.ErrCreateFailed, "vkCreateBuffer", r); err != nil {
		return nil, err
	}

	var req memoryRequirements
	call(t.MustProc("vkGetBufferMemoryRequirements"), d.handle, uintptr(b.handle), ffi.Ptr(&f, &req))
	typ, ok := findMemoryType(&d.memory, req.memoryTypeBits, memoryPropertyDeviceLocal)
	if !ok {
		d.destroyBuffer(b)
		return nil, interop.Fail(interop.ErrCreateFailed, ABI, "vkAllocateMemory",
			fmt.Errorf("no memory type in %#x: %w", req.memoryTypeBits, ErrorOutOfDeviceMemory))
	}

	alloc := memoryAllocateInfo{
		sType:           structureTypeMemoryAllocateInfo,
		allocationSize:  req.size,
		memoryTypeIndex: typ,
	}
	dedicated := memoryDedicatedAllocateInfo{sType: structureTypeMemoryDedicatedAllocateInfo, buffer: b.handle}
	export := externalMemoryInfo{
		sType:       structureTypeExportMemoryAllocateInfo,
		pNext:       ffi.Ptr(&f, &dedicated),
		handleTypes: exportHandleBit,
	}
	if b.exportable {
		alloc.pNext = ffi.Ptr(&f, &export)
	}
	r = call(t.MustProc("vkAllocateMemory"), d.handle, ffi.Ptr(&f, &alloc), 0, ffi.Ptr(&f, &b.memory))
	if err := check(interop.ErrCreateFailed, "vkAllocateMemory", r); err != nil {
		d.destroyBuffer(b)
		return nil, err
	}
	b.allocSize = req.size

	r = call(t.MustProc("vkBindBufferMemory"), d.handle, uintptr(b.handle), uintptr(b.memory), 0)
	if err := check(interop.ErrCreateFailed, "vkBindBufferMemory", r); err != nil {
		d.destroyBuffer(b)
		return nil, err
	}

	d.buffers[b] = struct{}{}
	interop.Logger().Debug("vulkan buffer created", "size", size, "alloc", req.size, "exportable", b.exportable)
	return b, nil
}

func (d *Device) buffer(b interop.Buffer) (*Buffer, error) {
	vb, ok := b.(*Buffer)
	if !ok {
		return nil, fmt.Errorf("%w: buffer %T not created by a vulkan device", interop.ErrInvalidUsage, b)
	}
	if _, ok := d.buffers[vb]; !ok {
		return nil, fmt.Errorf("%w: buffer not owned by this device", interop.ErrInvalidUsage)
	}
	return vb, nil
}

// DestroyBuffer destroys b and frees its memory. The buffer must not be
// in use by the queue or by an importer.
func (d *Device) DestroyBuffer(b interop.Buffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handle == 0 {
		return
	}
	if vb, err := d.buffer(b); err == nil {
		d.destroyBuffer(vb)
	}
}

func (d *Device) destroyBuffer(b *Buffer) {
	t := d.table
	if b.handle != 0 {
		call(t.MustProc("vkDestroyBuffer"), d.handle, uintptr(b.handle), 0)
		b.handle = 0
	}
	if b.memory != 0 {
		call(t.MustProc("vkFreeMemory"), d.handle, uintptr(b.memory), 0)
		b.memory = 0
	}
	delete(d.buffers, b)
}

// Export returns an OS handle to the memory of b.
func (d *Device) Export(b interop.Buffer) (interop.ExternalMemory, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handle == 0 {
		return interop.ExternalMemory{}, interop.ErrClosed
	}
	vb, err := d.buffer(b)
	if err != nil {
		return interop.ExternalMemory{}, err
	}
	if !vb.exportable {
		return interop.ExternalMemory{}, fmt.Errorf("vk: buffer memory is not exportable: %w", interop.ErrExportUnsupported)
	}
	return d.exportMemory(vb)
}

// updateRange is one vkCmdUpdateBuffer call.
type updateRange struct {
	offset uint64
	start  int
	end    int
}

// updateRanges splits a write of n bytes at offset into
// vkCmdUpdateBuffer-sized pieces.
func updateRanges(offset uint64, n int) []updateRange {
	var out []updateRange
	for start := 0; start < n; start += maxUpdateSize {
		end := min(start+maxUpdateSize, n)
		out = append(out, updateRange{offset: offset + uint64(start), start: start, end: end})
	}
	return out
}

// Write copies data into b at offset with inline buffer updates and
// waits for the copy. offset and len(data) must be multiples of 4.
func (d *Device) Write(b interop.Buffer, offset uint64, data []byte) error {
	if offset%4 != 0 || len(data)%4 != 0 {
		return fmt.Errorf("%w: write offset %d and size %d must be multiples of 4",
			interop.ErrInvalidUsage, offset, len(data))
	}
	if len(data) == 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handle == 0 {
		return interop.ErrClosed
	}
	vb, err := d.buffer(b)
	if err != nil {
		return err
	}
	if offset+uint64(len(data)) > vb.size {
		return fmt.Errorf("%w: write of %d bytes at %d overflows buffer of %d",
			interop.ErrInvalidUsage, len(data), offset, vb.size)
	}

	update := d.table.MustProc("vkCmdUpdateBuffer")
	return d.submit("vkCmdUpdateBuffer", func(f *ffi.Frame) {
		for _, r := range updateRanges(offset, len(data)) {
			chunk := data[r.start:r.end]
			call(update, d.cmd, uintptr(vb.handle), uintptr(r.offset), uintptr(len(chunk)), ffi.Slice(f, chunk))
		}
		d.barrier(f, bufferMemoryBarrier{
			srcAccessMask:       accessTransferWrite,
			dstAccessMask:       accessVertexAttributeRead | accessMemoryRead,
			srcQueueFamilyIndex: queueFamilyIgnored,
			dstQueueFamilyIndex: queueFamilyIgnored,
			buffer:              vb.handle,
			size:                wholeSize,
		}, pipelineStageTransfer, pipelineStageVertexInput|pipelineStageAllCommands)
	})
}

// Flush makes writes by an importer visible to subsequent vertex reads and
// waits until the queue is idle. The importer synchronizes before Flush, so
// a memory barrier suffices and queue family ownership never moves.
func (d *Device) Flush(b interop.Buffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handle == 0 {
		return interop.ErrClosed
	}
	vb, err := d.buffer(b)
	if err != nil {
		return err
	}
	return d.submit("vkCmdPipelineBarrier", func(f *ffi.Frame) {
		d.barrier(f, flushBarrier(vb.handle), pipelineStageAllCommands, pipelineStageVertexInput)
	})
}

func flushBarrier(buf uint64) bufferMemoryBarrier {
	return bufferMemoryBarrier{
		srcAccessMask:       accessMemoryWrite,
		dstAccessMask:       accessVertexAttributeRead,
		srcQueueFamilyIndex: queueFamilyIgnored,
		dstQueueFamilyIndex: queueFamilyIgnored,
		buffer:              buf,
		size:                wholeSize,
	}
}

func (d *Device) barrier(f *ffi.Frame, b bufferMemoryBarrier, srcStage, dstStage uint32) {
	b.sType = structureTypeBufferMemoryBarrier
	call(d.table.MustProc("vkCmdPipelineBarrier"), d.cmd,
		uintptr(srcStage), uintptr(dstStage), 0,
		0, 0,
		1, ffi.Ptr(f, &b),
		0, 0)
}

// submit records commands into the device's command buffer, submits it
// and waits for the queue. d.mu must be held.
func (d *Device) submit(op string, record func(f *ffi.Frame)) error {
	t := d.table
	var f ffi.Frame
	defer f.Release()

	begin := commandBufferBeginInfo{
		sType: structureTypeCommandBufferBeginInfo,
		flags: commandBufferUsageOneTimeSubmit,
	}
	r := call(t.MustProc("vkBeginCommandBuffer"), d.cmd, ffi.Ptr(&f, &begin))
	if err := check(interop.ErrDispatchFailed, "vkBeginCommandBuffer", r); err != nil {
		return err
	}
	record(&f)
	r = call(t.MustProc("vkEndCommandBuffer"), d.cmd)
	if err := check(interop.ErrDispatchFailed, "vkEndCommandBuffer", r); err != nil {
		return err
	}

	cmd := d.cmd
	submit := submitInfo{
		sType:              structureTypeSubmitInfo,
		commandBufferCount: 1,
		pCommandBuffers:    ffi.Ptr(&f, &cmd),
	}
	r = call(t.MustProc("vkQueueSubmit"), d.queue, 1, ffi.Ptr(&f, &submit), 0)
	if err := check(interop.ErrDispatchFailed, "vkQueueSubmit", r); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return check(interop.ErrSyncFailed, "vkQueueWaitIdle", call(t.MustProc("vkQueueWaitIdle"), d.queue))
}
