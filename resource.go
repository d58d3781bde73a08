// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package interop

import (
	"errors"
	"fmt"
	"sync"
)

// ShareMode says how a SharedResource reaches the compute domain.
type ShareMode uint8

const (
	// ShareNone means the resource was not shared yet.
	ShareNone ShareMode = iota
	// ShareZeroCopy means both domains alias one allocation.
	ShareZeroCopy
	// ShareStaged means the compute domain writes a mirror that Flush
	// copies into the graphics buffer.
	ShareStaged
)

func (m ShareMode) String() string {
	switch m {
	case ShareNone:
		return "none"
	case ShareZeroCopy:
		return "zero-copy"
	case ShareStaged:
		return "staged"
	default:
		return fmt.Sprintf("ShareMode(%d)", uint8(m))
	}
}

// Phase tracks the coherence of a SharedResource between the domains.
type Phase uint8

const (
	// PhaseIdle means no compute writes are outstanding.
	PhaseIdle Phase = iota
	// PhaseWritten means compute work writing the resource was submitted.
	PhaseWritten
	// PhaseSynchronized means the compute writes completed.
	PhaseSynchronized
	// PhaseVisible means the completed writes were flushed to graphics.
	PhaseVisible
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseWritten:
		return "written"
	case PhaseSynchronized:
		return "synchronized"
	case PhaseVisible:
		return "visible"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// SharedResource is a graphics buffer that a compute domain writes into.
// All methods are safe for concurrent use.
type SharedResource struct {
	mu sync.Mutex

	owner GraphicsDomain
	buf   Buffer
	size  uint64
	usage Usage

	compute  ComputeDomain
	mode     ShareMode
	ptr      DevicePtr
	imported Imported
	staging  []byte

	phase  Phase
	closed bool
}

// NewSharedResource creates a buffer of size bytes in owner. usage must
// include UsageStorage; UsageInterop is added.
func NewSharedResource(owner GraphicsDomain, size uint64, usage Usage) (*SharedResource, error) {
	if !usage.Has(UsageStorage) {
		return nil, ErrInvalidUsage
	}
	if size == 0 {
		return nil, fmt.Errorf("%w: zero-sized shared buffer", ErrCreateFailed)
	}
	usage |= UsageInterop
	buf, err := owner.CreateBuffer(size, usage)
	if err != nil {
		return nil, fmt.Errorf("create shared buffer: %w", err)
	}
	Logger().Debug("shared buffer created", "domain", owner.Name(), "size", size)
	return &SharedResource{owner: owner, buf: buf, size: size, usage: usage}, nil
}

// Buffer returns the graphics-side buffer.
func (r *SharedResource) Buffer() Buffer { return r.buf }

// Size returns the buffer size in bytes.
func (r *SharedResource) Size() uint64 { return r.size }

// Usage returns the buffer usage flags.
func (r *SharedResource) Usage() Usage { return r.usage }

// Mode returns how the resource is shared.
func (r *SharedResource) Mode() ShareMode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

// Phase returns the current coherence phase.
func (r *SharedResource) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// ComputePtr returns the compute-side address the kernel writes to, or 0
// before the resource is shared.
func (r *SharedResource) ComputePtr() DevicePtr {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ptr
}

// Share makes the resource writable by c. It imports the graphics memory
// when the owner can export it and falls back to a staged mirror when the
// owner reports ErrExportUnsupported. Any other failure is returned.
func (r *SharedResource) Share(c ComputeDomain) error {
	err := r.ImportInto(c)
	if !errors.Is(err, ErrExportUnsupported) {
		return err
	}
	Logger().Warn("memory export unsupported, sharing through a staged mirror",
		"graphics", r.owner.Name(), "compute", c.Name(), "size", r.size)
	return r.MirrorInto(c)
}

// ImportInto exports the buffer memory from the owner and imports it into
// c, so that both domains alias one allocation.
func (r *SharedResource) ImportInto(c ComputeDomain) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.shareable(); err != nil {
		return err
	}

	mem, err := r.owner.Export(r.buf)
	if err != nil {
		return err
	}
	var imp Imported
	err = WithCurrent(c, func() error {
		var ierr error
		imp, ierr = c.Import(mem)
		return ierr
	})
	if err != nil || !mem.OwnershipTransferred() {
		if cerr := mem.Close(); cerr != nil {
			Logger().Warn("close exported handle", "type", mem.Type, "err", cerr)
		}
	}
	if err != nil {
		return err
	}

	r.compute = c
	r.imported = imp
	r.ptr = imp.Ptr()
	r.mode = ShareZeroCopy
	r.phase = PhaseIdle
	Logger().Info("shared resource imported",
		"graphics", r.owner.Name(), "compute", c.Name(), "handle", mem.Type, "size", r.size)
	return nil
}

// MirrorInto allocates a compute-side mirror of the buffer in c. Flush
// copies the mirror into the graphics buffer.
func (r *SharedResource) MirrorInto(c ComputeDomain) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.shareable(); err != nil {
		return err
	}

	var ptr DevicePtr
	err := WithCurrent(c, func() error {
		var aerr error
		ptr, aerr = c.Alloc(r.size)
		return aerr
	})
	if err != nil {
		return err
	}

	r.compute = c
	r.ptr = ptr
	r.staging = make([]byte, r.size)
	r.mode = ShareStaged
	r.phase = PhaseIdle
	Logger().Info("shared resource mirrored",
		"graphics", r.owner.Name(), "compute", c.Name(), "size", r.size)
	return nil
}

func (r *SharedResource) shareable() error {
	switch {
	case r.closed:
		return ErrClosed
	case r.mode != ShareNone:
		return ErrAlreadyShared
	}
	return nil
}

// MarkWritten records that compute work writing the resource was
// submitted.
func (r *SharedResource) MarkWritten() {
	r.mu.Lock()
	r.phase = PhaseWritten
	r.mu.Unlock()
}

// MarkSynchronized records that the compute domain was synchronized, so
// all submitted writes completed.
func (r *SharedResource) MarkSynchronized() {
	r.mu.Lock()
	if r.phase == PhaseWritten {
		r.phase = PhaseSynchronized
	}
	r.mu.Unlock()
}

// Flush makes completed compute writes visible to the graphics domain.
// It returns ErrNotSynchronized while writes are outstanding. In staged
// mode the mirror is downloaded and written into the graphics buffer.
func (r *SharedResource) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case r.closed:
		return ErrClosed
	case r.mode == ShareNone:
		return ErrNotShared
	case r.phase == PhaseWritten:
		return ErrNotSynchronized
	}

	if r.mode == ShareStaged {
		err := WithCurrent(r.compute, func() error {
			return r.compute.Download(r.staging, r.ptr)
		})
		if err != nil {
			return err
		}
		if err := r.owner.Write(r.buf, 0, r.staging); err != nil {
			return err
		}
	}
	if err := r.owner.Flush(r.buf); err != nil {
		return err
	}
	r.phase = PhaseVisible
	return nil
}

// Close releases the compute mapping or mirror and destroys the graphics
// buffer. Close is idempotent.
func (r *SharedResource) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error
	if r.compute != nil {
		err := WithCurrent(r.compute, func() error {
			switch r.mode {
			case ShareZeroCopy:
				return r.imported.Release()
			case ShareStaged:
				return r.compute.Free(r.ptr)
			}
			return nil
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	r.owner.DestroyBuffer(r.buf)
	r.imported = nil
	r.staging = nil
	r.ptr = 0
	return errors.Join(errs...)
}
