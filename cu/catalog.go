// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cu

import "github.com/gogpu/interop/driver"

// ABI is the driver ABI name of the CUDA driver API.
const ABI = "cuda"

// Catalog lists the CUDA driver API entry points in resolution order.
// Every entry is mandatory. Entries whose exported symbol is versioned
// are looked up by their unversioned name.
var Catalog = driver.MustCatalog(ABI,
	"cuGetErrorString",
	"cuGetErrorName",
	"cuInit",
	"cuDriverGetVersion",
	"cuDeviceGet",
	"cuDeviceGetCount",
	"cuDeviceGetName",
	"cuDeviceGetUuid",
	"cuDeviceTotalMem=cuDeviceTotalMem_v2",
	"cuDeviceGetAttribute",
	"cuDevicePrimaryCtxRetain",
	"cuDevicePrimaryCtxRelease=cuDevicePrimaryCtxRelease_v2",
	"cuDevicePrimaryCtxSetFlags=cuDevicePrimaryCtxSetFlags_v2",
	"cuDevicePrimaryCtxGetState",
	"cuDevicePrimaryCtxReset=cuDevicePrimaryCtxReset_v2",
	"cuCtxCreate=cuCtxCreate_v2",
	"cuCtxDestroy=cuCtxDestroy_v2",
	"cuCtxPushCurrent=cuCtxPushCurrent_v2",
	"cuCtxPopCurrent=cuCtxPopCurrent_v2",
	"cuCtxSetCurrent",
	"cuCtxGetCurrent",
	"cuCtxGetDevice",
	"cuCtxGetFlags",
	"cuCtxSynchronize",
	"cuCtxSetLimit",
	"cuCtxGetLimit",
	"cuCtxGetCacheConfig",
	"cuCtxSetCacheConfig",
	"cuCtxGetSharedMemConfig",
	"cuCtxSetSharedMemConfig",
	"cuCtxGetApiVersion",
	"cuCtxGetStreamPriorityRange",
	"cuModuleLoad",
	"cuModuleLoadData",
	"cuModuleLoadDataEx",
	"cuModuleLoadFatBinary",
	"cuModuleUnload",
	"cuModuleGetFunction",
	"cuModuleGetGlobal=cuModuleGetGlobal_v2",
	"cuModuleGetTexRef",
	"cuModuleGetSurfRef",
	"cuLinkCreate=cuLinkCreate_v2",
	"cuLinkAddData=cuLinkAddData_v2",
	"cuLinkAddFile=cuLinkAddFile_v2",
	"cuLinkComplete",
	"cuLinkDestroy",
	"cuMemGetInfo=cuMemGetInfo_v2",
	"cuMemAlloc=cuMemAlloc_v2",
	"cuMemAllocPitch=cuMemAllocPitch_v2",
	"cuMemFree=cuMemFree_v2",
	"cuMemGetAddressRange=cuMemGetAddressRange_v2",
	"cuMemAllocHost=cuMemAllocHost_v2",
	"cuMemFreeHost",
	"cuMemHostAlloc",
	"cuMemHostGetDevicePointer=cuMemHostGetDevicePointer_v2",
	"cuMemHostGetFlags",
	"cuMemAllocManaged",
	"cuDeviceGetByPCIBusId",
	"cuDeviceGetPCIBusId",
	"cuIpcGetEventHandle",
	"cuIpcOpenEventHandle",
	"cuIpcGetMemHandle",
	"cuIpcOpenMemHandle",
	"cuIpcCloseMemHandle",
	"cuMemHostRegister=cuMemHostRegister_v2",
	"cuMemHostUnregister",
	"cuMemcpy",
	"cuMemcpyPeer",
	"cuMemcpyHtoD=cuMemcpyHtoD_v2",
	"cuMemcpyDtoH=cuMemcpyDtoH_v2",
	"cuMemcpyDtoD=cuMemcpyDtoD_v2",
	"cuMemcpyDtoA=cuMemcpyDtoA_v2",
	"cuMemcpyAtoD=cuMemcpyAtoD_v2",
	"cuMemcpyHtoA=cuMemcpyHtoA_v2",
	"cuMemcpyAtoH=cuMemcpyAtoH_v2",
	"cuMemcpyAtoA=cuMemcpyAtoA_v2",
	"cuMemcpy2D=cuMemcpy2D_v2",
	"cuMemcpy2DUnaligned=cuMemcpy2DUnaligned_v2",
	"cuMemcpy3D=cuMemcpy3D_v2",
	"cuMemcpy3DPeer",
	"cuMemcpyAsync",
	"cuMemcpyPeerAsync",
	"cuMemcpyHtoDAsync=cuMemcpyHtoDAsync_v2",
	"cuMemcpyDtoHAsync=cuMemcpyDtoHAsync_v2",
	"cuMemcpyDtoDAsync=cuMemcpyDtoDAsync_v2",
	"cuMemcpyHtoAAsync=cuMemcpyHtoAAsync_v2",
	"cuMemcpyAtoHAsync=cuMemcpyAtoHAsync_v2",
	"cuMemcpy2DAsync=cuMemcpy2DAsync_v2",
	"cuMemcpy3DAsync=cuMemcpy3DAsync_v2",
	"cuMemcpy3DPeerAsync",
	"cuMemsetD8=cuMemsetD8_v2",
	"cuMemsetD16=cuMemsetD16_v2",
	"cuMemsetD32=cuMemsetD32_v2",
	"cuMemsetD2D8=cuMemsetD2D8_v2",
	"cuMemsetD2D16=cuMemsetD2D16_v2",
	"cuMemsetD2D32=cuMemsetD2D32_v2",
	"cuMemsetD8Async",
	"cuMemsetD16Async",
	"cuMemsetD32Async",
	"cuMemsetD2D8Async",
	"cuMemsetD2D16Async",
	"cuMemsetD2D32Async",
	"cuArrayCreate=cuArrayCreate_v2",
	"cuArrayGetDescriptor=cuArrayGetDescriptor_v2",
	"cuArrayDestroy",
	"cuArray3DCreate=cuArray3DCreate_v2",
	"cuArray3DGetDescriptor=cuArray3DGetDescriptor_v2",
	"cuMipmappedArrayCreate",
	"cuMipmappedArrayGetLevel",
	"cuMipmappedArrayDestroy",
	"cuPointerGetAttribute",
	"cuMemPrefetchAsync",
	"cuMemAdvise",
	"cuMemRangeGetAttribute",
	"cuMemRangeGetAttributes",
	"cuPointerSetAttribute",
	"cuPointerGetAttributes",
	"cuStreamCreate",
	"cuStreamCreateWithPriority",
	"cuStreamGetPriority",
	"cuStreamGetFlags",
	"cuStreamGetCtx",
	"cuStreamWaitEvent",
	"cuStreamAddCallback",
	"cuStreamBeginCapture=cuStreamBeginCapture_v2",
	"cuStreamEndCapture",
	"cuStreamIsCapturing",
	"cuStreamAttachMemAsync",
	"cuStreamQuery",
	"cuStreamSynchronize",
	"cuStreamDestroy=cuStreamDestroy_v2",
	"cuEventCreate",
	"cuEventRecord",
	"cuEventQuery",
	"cuEventSynchronize",
	"cuEventDestroy=cuEventDestroy_v2",
	"cuEventElapsedTime",
	"cuImportExternalMemory",
	"cuExternalMemoryGetMappedBuffer",
	"cuExternalMemoryGetMappedMipmappedArray",
	"cuDestroyExternalMemory",
	"cuImportExternalSemaphore",
	"cuSignalExternalSemaphoresAsync",
	"cuWaitExternalSemaphoresAsync",
	"cuDestroyExternalSemaphore",
	"cuStreamWaitValue32",
	"cuStreamWaitValue64",
	"cuStreamWriteValue32",
	"cuStreamWriteValue64",
	"cuStreamBatchMemOp",
	"cuFuncGetAttribute",
	"cuFuncSetAttribute",
	"cuFuncSetCacheConfig",
	"cuFuncSetSharedMemConfig",
	"cuLaunchKernel",
	"cuLaunchCooperativeKernel",
	"cuLaunchCooperativeKernelMultiDevice",
	"cuLaunchHostFunc",
	"cuGraphCreate",
	"cuGraphAddKernelNode",
	"cuGraphKernelNodeGetParams",
	"cuGraphKernelNodeSetParams",
	"cuGraphAddMemcpyNode",
	"cuGraphMemcpyNodeGetParams",
	"cuGraphMemcpyNodeSetParams",
	"cuGraphAddMemsetNode",
	"cuGraphMemsetNodeGetParams",
	"cuGraphMemsetNodeSetParams",
	"cuGraphAddHostNode",
	"cuGraphHostNodeGetParams",
	"cuGraphHostNodeSetParams",
	"cuGraphAddChildGraphNode",
	"cuGraphChildGraphNodeGetGraph",
	"cuGraphAddEmptyNode",
	"cuGraphClone",
	"cuGraphNodeFindInClone",
	"cuGraphNodeGetType",
	"cuGraphGetNodes",
	"cuGraphGetRootNodes",
	"cuGraphGetEdges",
	"cuGraphNodeGetDependencies",
	"cuGraphNodeGetDependentNodes",
	"cuGraphAddDependencies",
	"cuGraphRemoveDependencies",
	"cuGraphDestroyNode",
	"cuGraphInstantiate=cuGraphInstantiate_v2",
	"cuGraphLaunch",
	"cuGraphExecDestroy",
	"cuGraphDestroy",
	"cuOccupancyMaxActiveBlocksPerMultiprocessor",
	"cuOccupancyMaxActiveBlocksPerMultiprocessorWithFlags",
	"cuOccupancyMaxPotentialBlockSize",
	"cuOccupancyMaxPotentialBlockSizeWithFlags",
	"cuTexRefSetArray",
	"cuTexRefSetMipmappedArray",
	"cuTexRefSetAddress=cuTexRefSetAddress_v2",
	"cuTexRefSetAddress2D=cuTexRefSetAddress2D_v3",
	"cuTexRefSetFormat",
	"cuTexRefSetAddressMode",
	"cuTexRefSetFilterMode",
	"cuTexRefSetMipmapFilterMode",
	"cuTexRefSetMipmapLevelBias",
	"cuTexRefSetMipmapLevelClamp",
	"cuTexRefSetMaxAnisotropy",
	"cuTexRefSetBorderColor",
	"cuTexRefSetFlags",
	"cuTexRefGetAddress=cuTexRefGetAddress_v2",
	"cuTexRefGetArray",
	"cuTexRefGetMipmappedArray",
	"cuTexRefGetAddressMode",
	"cuTexRefGetFilterMode",
	"cuTexRefGetFormat",
	"cuTexRefGetMipmapFilterMode",
	"cuTexRefGetMipmapLevelBias",
	"cuTexRefGetMipmapLevelClamp",
	"cuTexRefGetMaxAnisotropy",
	"cuTexRefGetBorderColor",
	"cuTexRefGetFlags",
	"cuSurfRefSetArray",
	"cuSurfRefGetArray",
	"cuTexObjectCreate",
	"cuTexObjectDestroy",
	"cuTexObjectGetResourceDesc",
	"cuTexObjectGetTextureDesc",
	"cuTexObjectGetResourceViewDesc",
	"cuSurfObjectCreate",
	"cuSurfObjectDestroy",
	"cuSurfObjectGetResourceDesc",
	"cuDeviceCanAccessPeer",
	"cuCtxEnablePeerAccess",
	"cuCtxDisablePeerAccess",
	"cuDeviceGetP2PAttribute",
	"cuGraphicsUnregisterResource",
	"cuGraphicsSubResourceGetMappedArray",
	"cuGraphicsResourceGetMappedMipmappedArray",
	"cuGraphicsResourceGetMappedPointer=cuGraphicsResourceGetMappedPointer_v2",
	"cuGraphicsResourceSetMapFlags=cuGraphicsResourceSetMapFlags_v2",
	"cuGraphicsMapResources",
	"cuGraphicsUnmapResources",
	"cuGetExportTable",
)
