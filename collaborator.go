// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package interop

import (
	"time"

	"github.com/gogpu/gputypes"
)

// Surface is the presentation target of the frame loop.
type Surface interface {
	ColorFormat() gputypes.TextureFormat
	DepthFormat() gputypes.TextureFormat
	Size() (width, height uint32)

	// Flipped reports whether the surface origin is at the top, so the
	// projection must be flipped vertically.
	Flipped() bool

	// Begin starts recording the frame's draw commands.
	Begin() (Command, error)
	// End submits the recorded commands.
	End(cmd Command) error
	// Present shows the frame. It returns false when the loop should stop.
	Present() bool
}

// Command records draw work for one frame. Recording errors are reported
// by Surface.End.
type Command interface {
	SetPipeline(p GraphicsPipeline)
	SetUniform(slot uint32, data []byte)
	SetVertexBuffer(slot uint32, b Buffer)
	Draw(vertexCount uint32)
}

// GraphicsPipeline is a compiled draw pipeline.
type GraphicsPipeline interface {
	Label() string
}

// PipelineDescriptor describes a draw pipeline with one uniform block
// bound at group 0, binding 0.
type PipelineDescriptor struct {
	Label         string
	Shader        string
	VertexEntry   string
	FragmentEntry string
	VertexBuffers []gputypes.VertexBufferLayout
	Topology      gputypes.PrimitiveTopology
	ColorFormat   gputypes.TextureFormat
	DepthFormat   gputypes.TextureFormat
	DepthCompare  gputypes.CompareFunction
	UniformSize   uint64
}

// PipelineFactory creates draw pipelines for a surface.
type PipelineFactory interface {
	CreatePipeline(desc *PipelineDescriptor) (GraphicsPipeline, error)
}

// FrameInfo describes the frame an Overlay is drawn into.
type FrameInfo struct {
	Frame    uint64
	Params   Params
	Elapsed  time.Duration
	Previous time.Duration
	Width    uint32
	Height   uint32
}

// Overlay draws on top of the points, after them, in the same pass.
type Overlay interface {
	Update(info FrameInfo)
	Draw(cmd Command) error
}

// PointsLayout is the vertex layout of the shared buffer: one float32x4
// position per point, tightly packed.
func PointsLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{{
		ArrayStride: PointStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{{
			Format:         gputypes.VertexFormatFloat32x4,
			Offset:         0,
			ShaderLocation: 0,
		}},
	}}
}

// PointStride is the size in bytes of one point in the shared buffer.
const PointStride = 16
