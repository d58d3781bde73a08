// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vk

import "github.com/gogpu/interop/driver"

// ABI is the driver ABI name of the Vulkan loader.
const ABI = "vulkan"

// Catalog lists the Vulkan entry points in resolution order. The Vulkan
// 1.0 commands are mandatory. Everything from the 1.1 commands on is
// optional and must be checked with Has before use.
var Catalog = driver.MustCatalog(ABI,
	// Vulkan 1.0
	"vkCreateInstance",
	"vkDestroyInstance",
	"vkEnumeratePhysicalDevices",
	"vkGetPhysicalDeviceFeatures",
	"vkGetPhysicalDeviceFormatProperties",
	"vkGetPhysicalDeviceImageFormatProperties",
	"vkGetPhysicalDeviceProperties",
	"vkGetPhysicalDeviceQueueFamilyProperties",
	"vkGetPhysicalDeviceMemoryProperties",
	"vkGetInstanceProcAddr",
	"vkGetDeviceProcAddr",
	"vkCreateDevice",
	"vkDestroyDevice",
	"vkEnumerateInstanceExtensionProperties",
	"vkEnumerateDeviceExtensionProperties",
	"vkEnumerateInstanceLayerProperties",
	"vkEnumerateDeviceLayerProperties",
	"vkGetDeviceQueue",
	"vkQueueSubmit",
	"vkQueueWaitIdle",
	"vkDeviceWaitIdle",
	"vkAllocateMemory",
	"vkFreeMemory",
	"vkMapMemory",
	"vkUnmapMemory",
	"vkFlushMappedMemoryRanges",
	"vkInvalidateMappedMemoryRanges",
	"vkGetDeviceMemoryCommitment",
	"vkBindBufferMemory",
	"vkBindImageMemory",
	"vkGetBufferMemoryRequirements",
	"vkGetImageMemoryRequirements",
	"vkGetImageSparseMemoryRequirements",
	"vkGetPhysicalDeviceSparseImageFormatProperties",
	"vkQueueBindSparse",
	"vkCreateFence",
	"vkDestroyFence",
	"vkResetFences",
	"vkGetFenceStatus",
	"vkWaitForFences",
	"vkCreateSemaphore",
	"vkDestroySemaphore",
	"vkCreateEvent",
	"vkDestroyEvent",
	"vkGetEventStatus",
	"vkSetEvent",
	"vkResetEvent",
	"vkCreateQueryPool",
	"vkDestroyQueryPool",
	"vkGetQueryPoolResults",
	"vkCreateBuffer",
	"vkDestroyBuffer",
	"vkCreateBufferView",
	"vkDestroyBufferView",
	"vkCreateImage",
	"vkDestroyImage",
	"vkGetImageSubresourceLayout",
	"vkCreateImageView",
	"vkDestroyImageView",
	"vkCreateShaderModule",
	"vkDestroyShaderModule",
	"vkCreatePipelineCache",
	"vkDestroyPipelineCache",
	"vkGetPipelineCacheData",
	"vkMergePipelineCaches",
	"vkCreateGraphicsPipelines",
	"vkCreateComputePipelines",
	"vkDestroyPipeline",
	"vkCreatePipelineLayout",
	"vkDestroyPipelineLayout",
	"vkCreateSampler",
	"vkDestroySampler",
	"vkCreateDescriptorSetLayout",
	"vkDestroyDescriptorSetLayout",
	"vkCreateDescriptorPool",
	"vkDestroyDescriptorPool",
	"vkResetDescriptorPool",
	"vkAllocateDescriptorSets",
	"vkFreeDescriptorSets",
	"vkUpdateDescriptorSets",
	"vkCreateFramebuffer",
	"vkDestroyFramebuffer",
	"vkCreateRenderPass",
	"vkDestroyRenderPass",
	"vkGetRenderAreaGranularity",
	"vkCreateCommandPool",
	"vkDestroyCommandPool",
	"vkResetCommandPool",
	"vkAllocateCommandBuffers",
	"vkFreeCommandBuffers",
	"vkBeginCommandBuffer",
	"vkEndCommandBuffer",
	"vkResetCommandBuffer",
	"vkCmdBindPipeline",
	"vkCmdSetViewport",
	"vkCmdSetScissor",
	"vkCmdSetLineWidth",
	"vkCmdSetDepthBias",
	"vkCmdSetBlendConstants",
	"vkCmdSetDepthBounds",
	"vkCmdSetStencilCompareMask",
	"vkCmdSetStencilWriteMask",
	"vkCmdSetStencilReference",
	"vkCmdBindDescriptorSets",
	"vkCmdBindIndexBuffer",
	"vkCmdBindVertexBuffers",
	"vkCmdDraw",
	"vkCmdDrawIndexed",
	"vkCmdDrawIndirect",
	"vkCmdDrawIndexedIndirect",
	"vkCmdDispatch",
	"vkCmdDispatchIndirect",
	"vkCmdCopyBuffer",
	"vkCmdCopyImage",
	"vkCmdBlitImage",
	"vkCmdCopyBufferToImage",
	"vkCmdCopyImageToBuffer",
	"vkCmdUpdateBuffer",
	"vkCmdFillBuffer",
	"vkCmdClearColorImage",
	"vkCmdClearDepthStencilImage",
	"vkCmdClearAttachments",
	"vkCmdResolveImage",
	"vkCmdSetEvent",
	"vkCmdResetEvent",
	"vkCmdWaitEvents",
	"vkCmdPipelineBarrier",
	"vkCmdBeginQuery",
	"vkCmdEndQuery",
	"vkCmdResetQueryPool",
	"vkCmdWriteTimestamp",
	"vkCmdCopyQueryPoolResults",
	"vkCmdPushConstants",
	"vkCmdBeginRenderPass",
	"vkCmdNextSubpass",
	"vkCmdEndRenderPass",
	"vkCmdExecuteCommands",

	driver.OptionalBelow,

	// Vulkan 1.1
	"vkEnumerateInstanceVersion",
	"vkBindBufferMemory2",
	"vkBindImageMemory2",
	"vkGetDeviceGroupPeerMemoryFeatures",
	"vkCmdSetDeviceMask",
	"vkCmdDispatchBase",
	"vkEnumeratePhysicalDeviceGroups",
	"vkGetImageMemoryRequirements2",
	"vkGetBufferMemoryRequirements2",
	"vkGetImageSparseMemoryRequirements2",
	"vkGetPhysicalDeviceFeatures2",
	"vkGetPhysicalDeviceProperties2",
	"vkGetPhysicalDeviceFormatProperties2",
	"vkGetPhysicalDeviceImageFormatProperties2",
	"vkGetPhysicalDeviceQueueFamilyProperties2",
	"vkGetPhysicalDeviceMemoryProperties2",
	"vkGetPhysicalDeviceSparseImageFormatProperties2",
	"vkTrimCommandPool",
	"vkGetDeviceQueue2",
	"vkCreateSamplerYcbcrConversion",
	"vkDestroySamplerYcbcrConversion",
	"vkCreateDescriptorUpdateTemplate",
	"vkDestroyDescriptorUpdateTemplate",
	"vkUpdateDescriptorSetWithTemplate",
	"vkGetPhysicalDeviceExternalBufferProperties",
	"vkGetPhysicalDeviceExternalFenceProperties",
	"vkGetPhysicalDeviceExternalSemaphoreProperties",
	"vkGetDescriptorSetLayoutSupport",

	// Vulkan 1.2
	"vkCmdDrawIndirectCount",
	"vkCmdDrawIndexedIndirectCount",
	"vkCreateRenderPass2",
	"vkCmdBeginRenderPass2",
	"vkCmdNextSubpass2",
	"vkCmdEndRenderPass2",
	"vkResetQueryPool",
	"vkGetSemaphoreCounterValue",
	"vkWaitSemaphores",
	"vkSignalSemaphore",
	"vkGetBufferDeviceAddress",
	"vkGetBufferOpaqueCaptureAddress",
	"vkGetDeviceMemoryOpaqueCaptureAddress",

	// Vulkan 1.3
	"vkGetPhysicalDeviceToolProperties",
	"vkCreatePrivateDataSlot",
	"vkDestroyPrivateDataSlot",
	"vkSetPrivateData",
	"vkGetPrivateData",
	"vkCmdSetEvent2",
	"vkCmdResetEvent2",
	"vkCmdWaitEvents2",
	"vkCmdPipelineBarrier2",
	"vkCmdWriteTimestamp2",
	"vkQueueSubmit2",
	"vkCmdCopyBuffer2",
	"vkCmdCopyImage2",
	"vkCmdCopyBufferToImage2",
	"vkCmdCopyImageToBuffer2",
	"vkCmdBlitImage2",
	"vkCmdResolveImage2",
	"vkCmdBeginRendering",
	"vkCmdEndRendering",
	"vkCmdSetCullMode",
	"vkCmdSetFrontFace",
	"vkCmdSetPrimitiveTopology",
	"vkCmdSetViewportWithCount",
	"vkCmdSetScissorWithCount",
	"vkCmdBindVertexBuffers2",
	"vkCmdSetDepthTestEnable",
	"vkCmdSetDepthWriteEnable",
	"vkCmdSetDepthCompareOp",
	"vkCmdSetDepthBoundsTestEnable",
	"vkCmdSetStencilTestEnable",
	"vkCmdSetStencilOp",
	"vkCmdSetRasterizerDiscardEnable",
	"vkCmdSetDepthBiasEnable",
	"vkCmdSetPrimitiveRestartEnable",
	"vkGetDeviceBufferMemoryRequirements",
	"vkGetDeviceImageMemoryRequirements",
	"vkGetDeviceImageSparseMemoryRequirements",

	// KHR draw indirect count
	"vkCmdDrawIndirectCountKHR",
	"vkCmdDrawIndexedIndirectCountKHR",

	// KHR buffer device address
	"vkGetBufferDeviceAddressKHR",

	// KHR acceleration structure
	"vkCreateAccelerationStructureKHR",
	"vkDestroyAccelerationStructureKHR",
	"vkCmdBuildAccelerationStructuresKHR",
	"vkCmdBuildAccelerationStructuresIndirectKHR",
	"vkBuildAccelerationStructuresKHR",
	"vkCopyAccelerationStructureKHR",
	"vkCopyAccelerationStructureToMemoryKHR",
	"vkCopyMemoryToAccelerationStructureKHR",
	"vkWriteAccelerationStructuresPropertiesKHR",
	"vkCmdCopyAccelerationStructureKHR",
	"vkCmdCopyAccelerationStructureToMemoryKHR",
	"vkCmdCopyMemoryToAccelerationStructureKHR",
	"vkGetAccelerationStructureDeviceAddressKHR",
	"vkCmdWriteAccelerationStructuresPropertiesKHR",
	"vkGetDeviceAccelerationStructureCompatibilityKHR",
	"vkGetAccelerationStructureBuildSizesKHR",

	// KHR ray tracing pipeline
	"vkCmdTraceRaysKHR",
	"vkCreateRayTracingPipelinesKHR",
	"vkGetRayTracingShaderGroupHandlesKHR",
	"vkGetRayTracingCaptureReplayShaderGroupHandlesKHR",
	"vkCmdTraceRaysIndirectKHR",
	"vkGetRayTracingShaderGroupStackSizeKHR",
	"vkCmdSetRayTracingPipelineStackSizeKHR",

	// EXT external memory host
	"vkGetMemoryHostPointerPropertiesEXT",

	// EXT conditional rendering
	"vkCmdBeginConditionalRenderingEXT",
	"vkCmdEndConditionalRenderingEXT",

	// EXT mesh shader
	"vkCmdDrawMeshTasksEXT",
	"vkCmdDrawMeshTasksIndirectEXT",
	"vkCmdDrawMeshTasksIndirectCountEXT",

	// KHR external memory fd
	"vkGetMemoryFdKHR",
	"vkGetMemoryFdPropertiesKHR",

	// KHR external memory win32
	"vkGetMemoryWin32HandleKHR",
	"vkGetMemoryWin32HandlePropertiesKHR",
)
