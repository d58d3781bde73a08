// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/interop"
)

func openNoop(t *testing.T) *Device {
	t.Helper()
	d, err := OpenNoop()
	if err != nil {
		t.Fatalf("OpenNoop: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestDeviceIdentity(t *testing.T) {
	d := openNoop(t)
	if d.Name() != "hal" {
		t.Errorf("Name = %q, want hal", d.Name())
	}
	if !d.Device().IsZero() {
		t.Errorf("Device = %v, want zero", d.Device())
	}
	hd, hq := d.HAL()
	if hd == nil || hq == nil {
		t.Error("HAL returned nil device or queue")
	}
	if err := d.MakeCurrent(); err != nil {
		t.Errorf("MakeCurrent: %v", err)
	}
	if err := d.Synchronize(); err != nil {
		t.Errorf("Synchronize: %v", err)
	}
}

func TestDeviceBuffers(t *testing.T) {
	d := openNoop(t)

	b, err := d.CreateBuffer(30, interop.UsageStorage|interop.UsageVertex)
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	if b.Size() != 30 {
		t.Errorf("Size = %d, want 30", b.Size())
	}
	if err := d.Write(b, 0, make([]byte, 30)); err != nil {
		t.Errorf("Write: %v", err)
	}
	if err := d.Write(b, 0, nil); err != nil {
		t.Errorf("empty Write: %v", err)
	}
	if err := d.Write(b, 16, make([]byte, 16)); !errors.Is(err, interop.ErrInvalidUsage) {
		t.Errorf("overflowing Write = %v, want ErrInvalidUsage", err)
	}
	if err := d.Flush(b); err != nil {
		t.Errorf("Flush: %v", err)
	}
	if _, err := d.Export(b); !errors.Is(err, interop.ErrExportUnsupported) {
		t.Errorf("Export = %v, want ErrExportUnsupported", err)
	}

	d.DestroyBuffer(b)
	if err := d.Write(b, 0, make([]byte, 4)); !errors.Is(err, interop.ErrInvalidUsage) {
		t.Errorf("Write after DestroyBuffer = %v, want ErrInvalidUsage", err)
	}
}

type otherBuffer struct{}

func (otherBuffer) Size() uint64 { return 4 }

func TestDeviceRejectsForeignBuffer(t *testing.T) {
	d := openNoop(t)
	if err := d.Flush(otherBuffer{}); !errors.Is(err, interop.ErrInvalidUsage) {
		t.Errorf("Flush(foreign) = %v, want ErrInvalidUsage", err)
	}
	if _, err := d.CreateBuffer(0, interop.UsageStorage); !errors.Is(err, interop.ErrInvalidUsage) {
		t.Errorf("CreateBuffer(0) = %v, want ErrInvalidUsage", err)
	}
}

func TestDeviceClose(t *testing.T) {
	d, err := OpenNoop()
	if err != nil {
		t.Fatalf("OpenNoop: %v", err)
	}
	b, err := d.CreateBuffer(16, interop.UsageStorage)
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, err := d.CreateBuffer(16, interop.UsageStorage); !errors.Is(err, interop.ErrClosed) {
		t.Errorf("CreateBuffer after Close = %v, want ErrClosed", err)
	}
	if err := d.Write(b, 0, make([]byte, 4)); !errors.Is(err, interop.ErrClosed) {
		t.Errorf("Write after Close = %v, want ErrClosed", err)
	}
	if err := d.MakeCurrent(); !errors.Is(err, interop.ErrClosed) {
		t.Errorf("MakeCurrent after Close = %v, want ErrClosed", err)
	}
}

// halProvider is a host DeviceProvider exposing HAL types. The embedded
// interface is nil; FromProvider only calls HalDevice and HalQueue.
type halProvider struct {
	gpucontext.DeviceProvider
	device, queue any
}

func (p halProvider) HalDevice() any { return p.device }
func (p halProvider) HalQueue() any  { return p.queue }

func TestFromProvider(t *testing.T) {
	host := openNoop(t)
	hd, hq := host.HAL()

	tests := []struct {
		name     string
		provider DeviceHandle
		wantErr  bool
	}{
		{"hal types", halProvider{device: hd, queue: hq}, false},
		{"wrong device type", halProvider{device: "device", queue: hq}, true},
		{"nil queue", halProvider{device: hd}, true},
		{"no hal accessors", struct{ gpucontext.DeviceProvider }{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := FromProvider(tt.provider)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromProvider error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if gd, _ := d.HAL(); gd != hd {
				t.Error("FromProvider did not keep the host device")
			}
			// The host owns the HAL device, so closing d must leave it usable.
			if err := d.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
			if err := host.Synchronize(); err != nil {
				t.Errorf("host Synchronize after Close: %v", err)
			}
		})
	}
}

func TestBufferUsage(t *testing.T) {
	tests := []struct {
		usage interop.Usage
		want  gputypes.BufferUsage
	}{
		{0, gputypes.BufferUsageCopyDst},
		{interop.UsageStorage, gputypes.BufferUsageCopyDst | gputypes.BufferUsageStorage},
		{interop.UsageStorage | interop.UsageVertex,
			gputypes.BufferUsageCopyDst | gputypes.BufferUsageStorage | gputypes.BufferUsageVertex},
		{interop.UsageUniform | interop.UsageCopySrc,
			gputypes.BufferUsageCopyDst | gputypes.BufferUsageUniform | gputypes.BufferUsageCopySrc},
	}
	for _, tt := range tests {
		if got := bufferUsage(tt.usage); got != tt.want {
			t.Errorf("bufferUsage(%#x) = %v, want %v", uint32(tt.usage), got, tt.want)
		}
	}
}
