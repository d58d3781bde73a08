// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package interop

import (
	"encoding/binary"
	"math"
)

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

func (v Vec3) sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) dot(o Vec3) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) normalize() Vec3 {
	l := float32(math.Sqrt(float64(v.dot(v))))
	if l == 0 {
		return v
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// Mat4 is a 4x4 matrix stored in column-major order, the layout shader
// uniform blocks expect: element (row r, column c) is at index c*4+r.
type Mat4 [16]float32

// Identity4 returns the identity matrix.
func Identity4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// ScaleMat4 returns a scaling matrix.
func ScaleMat4(x, y, z float32) Mat4 {
	return Mat4{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}
}

// Perspective returns a right-handed perspective projection with a depth
// range of [0, 1]. fovy is the vertical field of view in degrees.
func Perspective(fovy, aspect, znear, zfar float32) Mat4 {
	f := float32(1 / math.Tan(float64(fovy)*math.Pi/360))
	nf := 1 / (znear - zfar)
	var m Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = zfar * nf
	m[11] = -1
	m[14] = znear * zfar * nf
	return m
}

// LookAt returns a right-handed view matrix for a camera at eye looking at
// target.
func LookAt(eye, target, up Vec3) Mat4 {
	f := target.sub(eye).normalize()
	s := f.cross(up).normalize()
	u := s.cross(f)
	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.dot(eye), -u.dot(eye), f.dot(eye), 1,
	}
}

// Mul returns m * o.
func (m Mat4) Mul(o Mat4) Mat4 {
	var out Mat4
	for c := range 4 {
		for r := range 4 {
			var sum float32
			for k := range 4 {
				sum += m[k*4+r] * o[c*4+k]
			}
			out[c*4+r] = sum
		}
	}
	return out
}

// Transform returns m * v.
func (m Mat4) Transform(v [4]float32) [4]float32 {
	var out [4]float32
	for r := range 4 {
		out[r] = m[r]*v[0] + m[4+r]*v[1] + m[8+r]*v[2] + m[12+r]*v[3]
	}
	return out
}

// AppendBytes appends m as 16 little-endian float32 values.
func (m Mat4) AppendBytes(b []byte) []byte {
	for _, v := range m {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
	}
	return b
}
