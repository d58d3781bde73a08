// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/interop"
)

// PointsShader draws the shared buffer as points, colored by height. Its
// entry points are vs_main and fs_main and it reads interop.CommonParams
// from group 0, binding 0.
//
//go:embed shaders/points.wgsl
var PointsShader string

// CompileShaderToSPIRV compiles WGSL source to SPIR-V words.
func CompileShaderToSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile shader: SPIR-V size %d is not a multiple of 4", len(spirvBytes))
	}
	// SPIR-V is little-endian 32-bit words.
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

// Pipeline is a render pipeline with one uniform block at group 0,
// binding 0.
type Pipeline struct {
	label       string
	shader      hal.ShaderModule
	bindLayout  hal.BindGroupLayout
	pipeLayout  hal.PipelineLayout
	pipeline    hal.RenderPipeline
	uniformSize uint64
}

// Label returns the pipeline's debug label.
func (p *Pipeline) Label() string { return p.label }

// UniformSize returns the size of the uniform block.
func (p *Pipeline) UniformSize() uint64 { return p.uniformSize }

// PipelineFactory creates render pipelines on a Device. It implements
// interop.PipelineFactory.
type PipelineFactory struct {
	dev       *Device
	pipelines []*Pipeline
}

var _ interop.PipelineFactory = (*PipelineFactory)(nil)

// NewPipelineFactory returns a factory for d.
func NewPipelineFactory(d *Device) *PipelineFactory {
	return &PipelineFactory{dev: d}
}

// CreatePipeline compiles desc.Shader and creates the pipeline. A
// DepthFormat other than TextureFormatUndefined enables depth testing
// with desc.DepthCompare.
func (f *PipelineFactory) CreatePipeline(desc *interop.PipelineDescriptor) (interop.GraphicsPipeline, error) { //nolint:funlen // one descriptor per GPU object
	if desc == nil || desc.Shader == "" {
		return nil, fmt.Errorf("%w: pipeline needs a shader", interop.ErrInvalidConfig)
	}
	device := f.dev.device
	p := &Pipeline{label: desc.Label, uniformSize: desc.UniformSize}

	code, err := CompileShaderToSPIRV(desc.Shader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", desc.Label, err)
	}
	p.shader, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label + "_shader",
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s shader: %w", desc.Label, err)
	}

	p.bindLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: desc.Label + "_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		f.destroy(p)
		return nil, fmt.Errorf("create %s uniform layout: %w", desc.Label, err)
	}

	p.pipeLayout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            desc.Label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		f.destroy(p)
		return nil, fmt.Errorf("create %s pipeline layout: %w", desc.Label, err)
	}

	rpd := &hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: desc.VertexEntry,
			Buffers:    desc.VertexBuffers,
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: desc.FragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    desc.ColorFormat,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: desc.Topology,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
	if desc.DepthFormat != gputypes.TextureFormatUndefined {
		keep := hal.StencilFaceState{
			Compare:     gputypes.CompareFunctionAlways,
			FailOp:      hal.StencilOperationKeep,
			DepthFailOp: hal.StencilOperationKeep,
			PassOp:      hal.StencilOperationKeep,
		}
		rpd.DepthStencil = &hal.DepthStencilState{
			Format:            desc.DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      desc.DepthCompare,
			StencilFront:      keep,
			StencilBack:       keep,
			StencilReadMask:   0x00,
			StencilWriteMask:  0x00,
		}
	}
	p.pipeline, err = device.CreateRenderPipeline(rpd)
	if err != nil {
		f.destroy(p)
		return nil, fmt.Errorf("create %s pipeline: %w", desc.Label, err)
	}

	f.pipelines = append(f.pipelines, p)
	interop.Logger().Debug("render pipeline created", "label", desc.Label, "topology", desc.Topology)
	return p, nil
}

// destroy releases the objects of p in reverse creation order.
func (f *PipelineFactory) destroy(p *Pipeline) {
	device := f.dev.device
	if p.pipeline != nil {
		device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// Close destroys every pipeline the factory created.
func (f *PipelineFactory) Close() {
	for _, p := range f.pipelines {
		f.destroy(p)
	}
	f.pipelines = nil
}

// PointsPipeline describes the point pipeline for a surface.
func PointsPipeline(s interop.Surface) *interop.PipelineDescriptor {
	return &interop.PipelineDescriptor{
		Label:         "points",
		Shader:        PointsShader,
		VertexEntry:   "vs_main",
		FragmentEntry: "fs_main",
		VertexBuffers: interop.PointsLayout(),
		Topology:      gputypes.PrimitiveTopologyPointList,
		ColorFormat:   s.ColorFormat(),
		DepthFormat:   s.DepthFormat(),
		DepthCompare:  gputypes.CompareFunctionLessEqual,
		UniformSize:   interop.CommonParamsSize,
	}
}
