// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vk

import "fmt"

// Mirrors of the Vulkan structures this package passes to the driver.
// Field order and Go's natural alignment reproduce the C layout on 64-bit
// targets; layout_test.go pins the sizes.

const (
	structureTypeApplicationInfo                = 0
	structureTypeInstanceCreateInfo             = 1
	structureTypeDeviceQueueCreateInfo          = 2
	structureTypeDeviceCreateInfo               = 3
	structureTypeSubmitInfo                     = 4
	structureTypeMemoryAllocateInfo             = 5
	structureTypeBufferCreateInfo               = 12
	structureTypeCommandPoolCreateInfo          = 39
	structureTypeCommandBufferAllocateInfo      = 40
	structureTypeCommandBufferBeginInfo         = 42
	structureTypeBufferMemoryBarrier            = 44
	structureTypePhysicalDeviceProperties2      = 1000059001
	structureTypePhysicalDeviceIDProperties     = 1000071004
	structureTypeExternalMemoryBufferCreateInfo = 1000072000
	structureTypeExportMemoryAllocateInfo       = 1000072002
	structureTypeMemoryGetWin32HandleInfo       = 1000073003
	structureTypeMemoryGetFdInfo                = 1000074002
	structureTypeMemoryDedicatedAllocateInfo    = 1000127001
	structureTypePCIBusInfoProperties           = 1000212000
)

const (
	externalMemoryHandleTypeOpaqueFD       = 0x1
	externalMemoryHandleTypeOpaqueWin32    = 0x2
	externalMemoryHandleTypeOpaqueWin32KMT = 0x4
)

const (
	bufferUsageTransferSrc = 0x1
	bufferUsageTransferDst = 0x2
	bufferUsageUniform     = 0x10
	bufferUsageStorage     = 0x20
	bufferUsageVertex      = 0x80
)

const (
	memoryPropertyDeviceLocal  = 0x1
	memoryPropertyHostVisible  = 0x2
	memoryPropertyHostCoherent = 0x4
)

const (
	accessVertexAttributeRead = 0x4
	accessShaderWrite         = 0x40
	accessTransferWrite       = 0x1000
	accessMemoryRead          = 0x8000
	accessMemoryWrite         = 0x10000
)

const (
	pipelineStageVertexInput = 0x4
	pipelineStageTransfer    = 0x1000
	pipelineStageAllCommands = 0x10000
)

const (
	queueGraphics = 0x1

	queueFamilyIgnored = 0xFFFFFFFF

	commandPoolCreateResetCommandBuffer = 0x2
	commandBufferUsageOneTimeSubmit     = 0x1
	commandBufferLevelPrimary           = 0
	sharingModeExclusive                = 0

	wholeSize = ^uint64(0)

	// maxUpdateSize is the largest vkCmdUpdateBuffer payload.
	maxUpdateSize = 65536
)

// DeviceType is a VkPhysicalDeviceType.
type DeviceType uint32

const (
	DeviceTypeOther DeviceType = iota
	DeviceTypeIntegratedGPU
	DeviceTypeDiscreteGPU
	DeviceTypeVirtualGPU
	DeviceTypeCPU
)

func (t DeviceType) String() string {
	switch t {
	case DeviceTypeIntegratedGPU:
		return "integrated"
	case DeviceTypeDiscreteGPU:
		return "discrete"
	case DeviceTypeVirtualGPU:
		return "virtual"
	case DeviceTypeCPU:
		return "cpu"
	default:
		return "other"
	}
}

// MakeVersion packs a Vulkan API version number.
func MakeVersion(major, minor, patch uint32) uint32 {
	return major<<22 | minor<<12 | patch
}

// VersionString formats a packed version as major.minor.patch.
func VersionString(v uint32) string {
	return fmt.Sprintf("%d.%d.%d", v>>22, v>>12&0x3ff, v&0xfff)
}

type applicationInfo struct {
	sType              uint32
	pNext              uintptr
	pApplicationName   uintptr
	applicationVersion uint32
	pEngineName        uintptr
	engineVersion      uint32
	apiVersion         uint32
}

type instanceCreateInfo struct {
	sType                   uint32
	pNext                   uintptr
	flags                   uint32
	pApplicationInfo        uintptr
	enabledLayerCount       uint32
	ppEnabledLayerNames     uintptr
	enabledExtensionCount   uint32
	ppEnabledExtensionNames uintptr
}

type physicalDeviceProperties struct {
	apiVersion        uint32
	driverVersion     uint32
	vendorID          uint32
	deviceID          uint32
	deviceType        uint32
	deviceName        [256]byte
	pipelineCacheUUID [16]byte
	limits            [63]uint64
	sparseProperties  [5]uint32
}

type physicalDeviceProperties2 struct {
	sType      uint32
	pNext      uintptr
	properties physicalDeviceProperties
}

type physicalDeviceIDProperties struct {
	sType           uint32
	pNext           uintptr
	deviceUUID      [16]byte
	driverUUID      [16]byte
	deviceLUID      [8]byte
	deviceNodeMask  uint32
	deviceLUIDValid uint32
}

type physicalDevicePCIBusInfoProperties struct {
	sType       uint32
	pNext       uintptr
	pciDomain   uint32
	pciBus      uint32
	pciDevice   uint32
	pciFunction uint32
}

type queueFamilyProperties struct {
	queueFlags                  uint32
	queueCount                  uint32
	timestampValidBits          uint32
	minImageTransferGranularity [3]uint32
}

type deviceQueueCreateInfo struct {
	sType            uint32
	pNext            uintptr
	flags            uint32
	queueFamilyIndex uint32
	queueCount       uint32
	pQueuePriorities uintptr
}

type deviceCreateInfo struct {
	sType                   uint32
	pNext                   uintptr
	flags                   uint32
	queueCreateInfoCount    uint32
	pQueueCreateInfos       uintptr
	enabledLayerCount       uint32
	ppEnabledLayerNames     uintptr
	enabledExtensionCount   uint32
	ppEnabledExtensionNames uintptr
	pEnabledFeatures        uintptr
}

type extensionProperties struct {
	extensionName [256]byte
	specVersion   uint32
}

type bufferCreateInfo struct {
	sType                 uint32
	pNext                 uintptr
	flags                 uint32
	size                  uint64
	usage                 uint32
	sharingMode           uint32
	queueFamilyIndexCount uint32
	pQueueFamilyIndices   uintptr
}

// externalMemoryInfo mirrors both VkExternalMemoryBufferCreateInfo and
// VkExportMemoryAllocateInfo, which share one layout.
type externalMemoryInfo struct {
	sType       uint32
	pNext       uintptr
	handleTypes uint32
}

type memoryRequirements struct {
	size           uint64
	alignment      uint64
	memoryTypeBits uint32
}

type memoryAllocateInfo struct {
	sType           uint32
	pNext           uintptr
	allocationSize  uint64
	memoryTypeIndex uint32
}

type memoryDedicatedAllocateInfo struct {
	sType  uint32
	pNext  uintptr
	image  uint64
	buffer uint64
}

// memoryGetHandleInfo mirrors VkMemoryGetFdInfoKHR and
// VkMemoryGetWin32HandleInfoKHR.
type memoryGetHandleInfo struct {
	sType      uint32
	pNext      uintptr
	memory     uint64
	handleType uint32
}

type memoryType struct {
	propertyFlags uint32
	heapIndex     uint32
}

type memoryHeap struct {
	size  uint64
	flags uint32
}

type physicalDeviceMemoryProperties struct {
	memoryTypeCount uint32
	memoryTypes     [32]memoryType
	memoryHeapCount uint32
	memoryHeaps     [16]memoryHeap
}

type commandPoolCreateInfo struct {
	sType            uint32
	pNext            uintptr
	flags            uint32
	queueFamilyIndex uint32
}

type commandBufferAllocateInfo struct {
	sType              uint32
	pNext              uintptr
	commandPool        uint64
	level              uint32
	commandBufferCount uint32
}

type commandBufferBeginInfo struct {
	sType            uint32
	pNext            uintptr
	flags            uint32
	pInheritanceInfo uintptr
}

type bufferMemoryBarrier struct {
	sType               uint32
	pNext               uintptr
	srcAccessMask       uint32
	dstAccessMask       uint32
	srcQueueFamilyIndex uint32
	dstQueueFamilyIndex uint32
	buffer              uint64
	offset              uint64
	size                uint64
}

type submitInfo struct {
	sType                uint32
	pNext                uintptr
	waitSemaphoreCount   uint32
	pWaitSemaphores      uintptr
	pWaitDstStageMask    uintptr
	commandBufferCount   uint32
	pCommandBuffers      uintptr
	signalSemaphoreCount uint32
	pSignalSemaphores    uintptr
}
