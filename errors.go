// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package interop

import (
	"errors"
	"fmt"

	"github.com/gogpu/interop/driver"
)

// Error kinds. Native failures are reported as [*OpError] values whose
// Kind is one of these, so callers match them with errors.Is.
var (
	// ErrCreateFailed means a context, device, buffer or kernel could not
	// be created.
	ErrCreateFailed = errors.New("interop: create failed")

	// ErrContextSwitchFailed means a domain could not be made current.
	ErrContextSwitchFailed = errors.New("interop: context switch failed")

	// ErrDispatchFailed means a parameter upload or kernel launch failed.
	ErrDispatchFailed = errors.New("interop: dispatch failed")

	// ErrSyncFailed means waiting for a domain or flushing a buffer failed.
	ErrSyncFailed = errors.New("interop: synchronize failed")

	// ErrImportFailed means the compute domain rejected exported memory.
	ErrImportFailed = errors.New("interop: import failed")

	// ErrExportUnsupported means the graphics domain cannot export buffer
	// memory. SharedResource.Share falls back to a staged mirror.
	ErrExportUnsupported = errors.New("interop: memory export unsupported")

	// ErrMissingMandatorySymbol is returned when a driver lacks a mandatory
	// entry point.
	ErrMissingMandatorySymbol = driver.ErrMissingMandatorySymbol
)

// Usage and lifecycle errors.
var (
	// ErrInvalidUsage is returned when a buffer is used against its usage
	// flags, size or owning domain, such as sharing a buffer without
	// storage usage.
	ErrInvalidUsage = errors.New("interop: invalid buffer usage")

	// ErrInvalidConfig is returned for incomplete pipeline configurations.
	ErrInvalidConfig = errors.New("interop: invalid pipeline configuration")

	// ErrNotShared is returned when a resource was not shared with a
	// compute domain yet.
	ErrNotShared = errors.New("interop: resource not shared with a compute domain")

	// ErrAlreadyShared is returned when a resource is shared twice.
	ErrAlreadyShared = errors.New("interop: resource already shared")

	// ErrNotSynchronized is returned by Flush when compute writes are
	// pending and the compute domain was not synchronized.
	ErrNotSynchronized = errors.New("interop: flush before compute synchronize")

	// ErrStopped is returned when the surface declines to present.
	ErrStopped = errors.New("interop: presentation stopped")

	// ErrFrameInProgress is returned when RunFrame is entered while another
	// frame is running.
	ErrFrameInProgress = errors.New("interop: frame already in progress")

	// ErrClosed is returned when using a closed pipeline, resource or domain.
	ErrClosed = errors.New("interop: closed")
)

// OpError is a failed native operation. It matches both its Kind and the
// underlying driver error.
type OpError struct {
	Kind   error
	Domain string
	Op     string
	Err    error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Domain, e.Op, e.Err)
}

// Unwrap returns the error kind and the underlying error.
func (e *OpError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Fail logs a failed native operation and returns it as an *OpError.
func Fail(kind error, domain, op string, err error) error {
	Logger().Error("native call failed", "domain", domain, "op", op, "kind", kind, "err", err)
	return &OpError{Kind: kind, Domain: domain, Op: op, Err: err}
}

// FrameError reports the pipeline step that a frame failed to reach.
type FrameError struct {
	Frame uint64
	Step  State
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("interop: frame %d: %s: %v", e.Frame, e.Step, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }
