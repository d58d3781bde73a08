// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ffi

import (
	"runtime"
	"unsafe"
)

// maxCString bounds the scan in GoString.
const maxCString = 4096

// Frame pins the Go memory referenced by one native call. A Frame must be
// released after the call returns; it must not be copied after first use.
//
//	var f ffi.Frame
//	defer f.Release()
//	r := ffi.Call(fn, ffi.Ptr(&f, &info), f.CString(name))
type Frame struct {
	pinner runtime.Pinner
}

// Ptr pins v and returns its address. A nil v yields 0.
func Ptr[T any](f *Frame, v *T) uintptr {
	if v == nil {
		return 0
	}
	f.pinner.Pin(v)
	return uintptr(unsafe.Pointer(v))
}

// Slice pins the backing array of s and returns the address of its first
// element. An empty slice yields 0.
func Slice[T any](f *Frame, s []T) uintptr {
	if len(s) == 0 {
		return 0
	}
	f.pinner.Pin(&s[0])
	return uintptr(unsafe.Pointer(&s[0]))
}

// CString returns a pinned NUL-terminated copy of s.
func (f *Frame) CString(s string) uintptr {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return Slice(f, b)
}

// CStrings returns a pinned array of pointers to NUL-terminated copies of
// ss, or 0 when ss is empty.
func (f *Frame) CStrings(ss []string) uintptr {
	if len(ss) == 0 {
		return 0
	}
	ptrs := make([]uintptr, len(ss))
	for i, s := range ss {
		ptrs[i] = f.CString(s)
	}
	return Slice(f, ptrs)
}

// Release unpins everything pinned through f.
func (f *Frame) Release() {
	f.pinner.Unpin()
}

// GoString copies the NUL-terminated string at p, which must point to
// native memory. A zero p yields "".
func GoString(p uintptr) string {
	if p == 0 {
		return ""
	}
	base := unsafe.Pointer(p) //nolint:govet // p is a native address, not a Go pointer
	buf := unsafe.Slice((*byte)(base), maxCString)
	for i, c := range buf {
		if c == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}

// CBytes returns b up to its first NUL byte, as a Go string.
func CBytes(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
