// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vk

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/interop"
	"github.com/gogpu/interop/driver"
	"github.com/gogpu/interop/internal/ffi"
)

// check converts a failed status into an *interop.OpError.
func check(kind error, op string, r Result) error {
	if r.Err() == nil {
		return nil
	}
	return interop.Fail(kind, ABI, op, r)
}

func call(p driver.Proc, args ...uintptr) Result {
	return result(ffi.Call(uintptr(p), args...))
}

type instanceConfig struct {
	appName    string
	apiVersion uint32
	layers     []string
	extensions []string
}

// InstanceOption configures NewInstance.
type InstanceOption func(*instanceConfig)

// WithApplicationName sets VkApplicationInfo.pApplicationName.
func WithApplicationName(name string) InstanceOption {
	return func(c *instanceConfig) { c.appName = name }
}

// WithAPIVersion requests a Vulkan API version. The default is 1.1, the
// first version with external memory in core.
func WithAPIVersion(major, minor uint32) InstanceOption {
	return func(c *instanceConfig) { c.apiVersion = MakeVersion(major, minor, 0) }
}

// WithLayers enables instance layers, for example
// "VK_LAYER_KHRONOS_validation".
func WithLayers(layers ...string) InstanceOption {
	return func(c *instanceConfig) { c.layers = append(c.layers, layers...) }
}

// WithExtensions enables instance extensions.
func WithExtensions(exts ...string) InstanceOption {
	return func(c *instanceConfig) { c.extensions = append(c.extensions, exts...) }
}

func defaultInstanceConfig() instanceConfig {
	return instanceConfig{appName: "interop", apiVersion: MakeVersion(1, 1, 0)}
}

// Instance is a VkInstance with its capability table.
type Instance struct {
	loader *Loader
	handle uintptr
	table  *driver.Table
	api    uint32
}

// NewInstance creates a Vulkan instance and builds the Vulkan capability
// table through vkGetInstanceProcAddr.
func NewInstance(l *Loader, opts ...InstanceOption) (*Instance, error) {
	cfg := defaultInstanceConfig()
	for _, o := range opts {
		o(&cfg)
	}

	create := l.procAddr(0, "vkCreateInstance")
	if create == 0 {
		return nil, &driver.MissingSymbolError{ABI: ABI, Name: "vkCreateInstance", Symbol: "vkCreateInstance"}
	}

	var f ffi.Frame
	defer f.Release()
	app := applicationInfo{
		sType:            structureTypeApplicationInfo,
		pApplicationName: f.CString(cfg.appName),
		pEngineName:      f.CString("gogpu-interop"),
		apiVersion:       cfg.apiVersion,
	}
	info := instanceCreateInfo{
		sType:                   structureTypeInstanceCreateInfo,
		pApplicationInfo:        ffi.Ptr(&f, &app),
		enabledLayerCount:       uint32(len(cfg.layers)),
		ppEnabledLayerNames:     f.CStrings(cfg.layers),
		enabledExtensionCount:   uint32(len(cfg.extensions)),
		ppEnabledExtensionNames: f.CStrings(cfg.extensions),
	}
	var handle uintptr
	r := result(ffi.Call(create, ffi.Ptr(&f, &info), 0, ffi.Ptr(&f, &handle)))
	if err := check(interop.ErrCreateFailed, "vkCreateInstance", r); err != nil {
		return nil, err
	}

	t, err := driver.Build(l.resolver(handle), Catalog)
	if err != nil {
		if destroy := l.procAddr(handle, "vkDestroyInstance"); destroy != 0 {
			ffi.Call(destroy, handle, 0)
		}
		return nil, err
	}
	interop.Logger().Info("vulkan instance created",
		"api", VersionString(cfg.apiVersion),
		"loader", l.Library(),
		"optional_missing", len(t.Missing()))
	return &Instance{loader: l, handle: handle, table: t, api: cfg.apiVersion}, nil
}

// Table returns the instance's capability table.
func (i *Instance) Table() *driver.Table { return i.table }

// Close destroys the instance. Devices created from it must be closed
// first. Close is idempotent.
func (i *Instance) Close() error {
	if i.handle == 0 {
		return nil
	}
	call(i.table.MustProc("vkDestroyInstance"), i.handle, 0)
	i.handle = 0
	return nil
}

// PhysicalDevice describes a Vulkan physical device.
type PhysicalDevice struct {
	Name       string
	Type       DeviceType
	VendorID   uint32
	DeviceID   uint32
	APIVersion uint32
	UUID       [16]byte
	PCIBusID   string
	Extensions []string

	handle uintptr
}

// ID returns the selector that identifies d to other domains.
func (d PhysicalDevice) ID() interop.DeviceID {
	return interop.DeviceID{PCIBusID: d.PCIBusID, UUID: d.UUID}
}

// HasExtension reports whether d advertises the device extension.
func (d PhysicalDevice) HasExtension(name string) bool {
	return slices.Contains(d.Extensions, name)
}

const extPCIBusInfo = "VK_EXT_pci_bus_info"

// PhysicalDevices enumerates the physical devices of the instance.
func (i *Instance) PhysicalDevices() ([]PhysicalDevice, error) {
	if i.handle == 0 {
		return nil, interop.ErrClosed
	}
	t := i.table
	enum := t.MustProc("vkEnumeratePhysicalDevices")

	var f ffi.Frame
	defer f.Release()
	var n uint32
	r := call(enum, i.handle, ffi.Ptr(&f, &n), 0)
	if err := check(interop.ErrCreateFailed, "vkEnumeratePhysicalDevices", r); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	handles := make([]uintptr, n)
	r = call(enum, i.handle, ffi.Ptr(&f, &n), ffi.Slice(&f, handles))
	if err := check(interop.ErrCreateFailed, "vkEnumeratePhysicalDevices", r); err != nil {
		return nil, err
	}

	devs := make([]PhysicalDevice, 0, n)
	for _, h := range handles[:n] {
		d, err := i.describe(h)
		if err != nil {
			return nil, err
		}
		devs = append(devs, d)
	}
	return devs, nil
}

func (i *Instance) describe(h uintptr) (PhysicalDevice, error) {
	t := i.table
	var f ffi.Frame
	defer f.Release()

	exts, err := i.deviceExtensions(h)
	if err != nil {
		return PhysicalDevice{}, err
	}
	d := PhysicalDevice{Extensions: exts, handle: h}

	var props physicalDeviceProperties
	if p, ok := t.Lookup("vkGetPhysicalDeviceProperties2"); ok {
		id := physicalDeviceIDProperties{sType: structureTypePhysicalDeviceIDProperties}
		pci := physicalDevicePCIBusInfoProperties{sType: structureTypePCIBusInfoProperties}
		if d.HasExtension(extPCIBusInfo) {
			id.pNext = ffi.Ptr(&f, &pci)
		}
		props2 := physicalDeviceProperties2{
			sType: structureTypePhysicalDeviceProperties2,
			pNext: ffi.Ptr(&f, &id),
		}
		ffi.Call(uintptr(p), h, ffi.Ptr(&f, &props2))
		props = props2.properties
		d.UUID = id.deviceUUID
		if d.HasExtension(extPCIBusInfo) {
			d.PCIBusID = interop.FormatPCIBusID(pci.pciDomain, pci.pciBus, pci.pciDevice, pci.pciFunction)
		}
	} else {
		ffi.Call(uintptr(t.MustProc("vkGetPhysicalDeviceProperties")), h, ffi.Ptr(&f, &props))
	}

	d.Name = ffi.CBytes(props.deviceName[:])
	d.Type = DeviceType(props.deviceType)
	d.VendorID = props.vendorID
	d.DeviceID = props.deviceID
	d.APIVersion = props.apiVersion
	return d, nil
}

func (i *Instance) deviceExtensions(h uintptr) ([]string, error) {
	enum := i.table.MustProc("vkEnumerateDeviceExtensionProperties")
	var f ffi.Frame
	defer f.Release()

	var n uint32
	r := call(enum, h, 0, ffi.Ptr(&f, &n), 0)
	if err := check(interop.ErrCreateFailed, "vkEnumerateDeviceExtensionProperties", r); err != nil {
		return nil, err
	}
	props := make([]extensionProperties, n)
	if n > 0 {
		r = call(enum, h, 0, ffi.Ptr(&f, &n), ffi.Slice(&f, props))
		if err := check(interop.ErrCreateFailed, "vkEnumerateDeviceExtensionProperties", r); err != nil {
			return nil, err
		}
	}
	names := make([]string, 0, n)
	for _, p := range props[:n] {
		names = append(names, ffi.CBytes(p.extensionName[:]))
	}
	return names, nil
}

// selectPhysicalDevice picks the device sel names: by PCI bus id, then by
// UUID. A zero sel prefers a discrete GPU, then an integrated one, then
// the first device.
func selectPhysicalDevice(devs []PhysicalDevice, sel interop.DeviceID) (int, error) {
	if len(devs) == 0 {
		return -1, fmt.Errorf("vulkan: no physical devices: %w", ErrorInitializationFailed)
	}
	switch {
	case sel.PCIBusID != "":
		for i, d := range devs {
			if strings.EqualFold(d.PCIBusID, sel.PCIBusID) {
				return i, nil
			}
		}
	case sel.HasUUID():
		for i, d := range devs {
			if d.UUID == sel.UUID {
				return i, nil
			}
		}
	default:
		for _, want := range []DeviceType{DeviceTypeDiscreteGPU, DeviceTypeIntegratedGPU} {
			for i, d := range devs {
				if d.Type == want {
					return i, nil
				}
			}
		}
		return 0, nil
	}
	return -1, fmt.Errorf("vulkan: no physical device matches %s: %w", sel, ErrorInitializationFailed)
}
