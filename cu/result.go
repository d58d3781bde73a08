// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cu

import "fmt"

// Result is a CUresult status code.
type Result int32

// Status codes returned by the driver API.
const (
	Success                  Result = 0
	ErrorInvalidValue        Result = 1
	ErrorOutOfMemory         Result = 2
	ErrorNotInitialized      Result = 3
	ErrorDeinitialized       Result = 4
	ErrorStubLibrary         Result = 34
	ErrorNoDevice            Result = 100
	ErrorInvalidDevice       Result = 101
	ErrorInvalidImage        Result = 200
	ErrorInvalidContext      Result = 201
	ErrorMapFailed           Result = 205
	ErrorNoBinaryForGPU      Result = 209
	ErrorInvalidPTX          Result = 218
	ErrorUnsupportedPTX      Result = 222
	ErrorInvalidSource       Result = 300
	ErrorFileNotFound        Result = 301
	ErrorOperatingSystem     Result = 304
	ErrorInvalidHandle       Result = 400
	ErrorNotFound            Result = 500
	ErrorNotReady            Result = 600
	ErrorIllegalAddress      Result = 700
	ErrorLaunchOutOfResource Result = 701
	ErrorLaunchTimeout       Result = 702
	ErrorLaunchFailed        Result = 719
	ErrorNotSupported        Result = 801
	ErrorUnknown             Result = 999
)

var resultNames = map[Result]string{
	Success:                  "CUDA_SUCCESS",
	ErrorInvalidValue:        "CUDA_ERROR_INVALID_VALUE",
	ErrorOutOfMemory:         "CUDA_ERROR_OUT_OF_MEMORY",
	ErrorNotInitialized:      "CUDA_ERROR_NOT_INITIALIZED",
	ErrorDeinitialized:       "CUDA_ERROR_DEINITIALIZED",
	ErrorStubLibrary:         "CUDA_ERROR_STUB_LIBRARY",
	ErrorNoDevice:            "CUDA_ERROR_NO_DEVICE",
	ErrorInvalidDevice:       "CUDA_ERROR_INVALID_DEVICE",
	ErrorInvalidImage:        "CUDA_ERROR_INVALID_IMAGE",
	ErrorInvalidContext:      "CUDA_ERROR_INVALID_CONTEXT",
	ErrorMapFailed:           "CUDA_ERROR_MAP_FAILED",
	ErrorNoBinaryForGPU:      "CUDA_ERROR_NO_BINARY_FOR_GPU",
	ErrorInvalidPTX:          "CUDA_ERROR_INVALID_PTX",
	ErrorUnsupportedPTX:      "CUDA_ERROR_UNSUPPORTED_PTX_VERSION",
	ErrorInvalidSource:       "CUDA_ERROR_INVALID_SOURCE",
	ErrorFileNotFound:        "CUDA_ERROR_FILE_NOT_FOUND",
	ErrorOperatingSystem:     "CUDA_ERROR_OPERATING_SYSTEM",
	ErrorInvalidHandle:       "CUDA_ERROR_INVALID_HANDLE",
	ErrorNotFound:            "CUDA_ERROR_NOT_FOUND",
	ErrorNotReady:            "CUDA_ERROR_NOT_READY",
	ErrorIllegalAddress:      "CUDA_ERROR_ILLEGAL_ADDRESS",
	ErrorLaunchOutOfResource: "CUDA_ERROR_LAUNCH_OUT_OF_RESOURCES",
	ErrorLaunchTimeout:       "CUDA_ERROR_LAUNCH_TIMEOUT",
	ErrorLaunchFailed:        "CUDA_ERROR_LAUNCH_FAILED",
	ErrorNotSupported:        "CUDA_ERROR_NOT_SUPPORTED",
	ErrorUnknown:             "CUDA_ERROR_UNKNOWN",
}

// Error implements error. Unknown codes are printed numerically.
func (r Result) Error() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("CUresult(%d)", int32(r))
}

// Err returns nil for Success and r otherwise.
func (r Result) Err() error {
	if r == Success {
		return nil
	}
	return r
}
