// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package interop

import (
	"encoding/binary"
	"math"
)

// ParamsSize is the encoded size of Params.
const ParamsSize = 12

// CommonParamsSize is the encoded size of CommonParams.
const CommonParamsSize = 128

// Params are the per-frame kernel parameters.
type Params struct {
	// Size is the grid size in points along each axis.
	Size uint32
	// Scale is the spatial scale of the simulated surface.
	Scale float32
	// Time is the animation time in seconds.
	Time float32
}

// Bytes encodes p as three little-endian 32-bit words.
func (p Params) Bytes() []byte {
	b := make([]byte, 0, ParamsSize)
	b = binary.LittleEndian.AppendUint32(b, p.Size)
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(p.Scale))
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(p.Time))
	return b
}

// CommonParams is the uniform block of the point pipeline.
type CommonParams struct {
	Projection Mat4
	Modelview  Mat4
}

// Bytes encodes both matrices as column-major little-endian float32.
func (c CommonParams) Bytes() []byte {
	b := make([]byte, 0, CommonParamsSize)
	b = c.Projection.AppendBytes(b)
	b = c.Modelview.AppendBytes(b)
	return b
}

// CameraFunc computes the uniform block for a surface of the given size.
type CameraFunc func(width, height uint32, flipped bool) CommonParams

// DefaultCamera looks at the grid from (20, 20, 20) with a 60 degree
// vertical field of view and z up. The projection is flipped vertically
// for surfaces whose origin is at the top.
func DefaultCamera(width, height uint32, flipped bool) CommonParams {
	aspect := float32(1)
	if height != 0 {
		aspect = float32(width) / float32(height)
	}
	proj := Perspective(60, aspect, 0.1, 1000)
	if flipped {
		proj = ScaleMat4(1, -1, 1).Mul(proj)
	}
	return CommonParams{
		Projection: proj,
		Modelview:  LookAt(Vec3{20, 20, 20}, Vec3{}, Vec3{0, 0, 1}),
	}
}

// WorkGroups returns the number of groups of size group needed to cover
// grid items. group must be non-zero.
func WorkGroups(grid, group uint32) uint32 {
	n := grid / group
	if grid%group != 0 {
		n++
	}
	return n
}
