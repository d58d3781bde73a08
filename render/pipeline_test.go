// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/interop"
)

const spirvMagic = 0x07230203

func TestCompileShaderToSPIRV(t *testing.T) {
	if !strings.Contains(PointsShader, "fn vs_main") || !strings.Contains(PointsShader, "fn fs_main") {
		t.Fatal("points shader is missing its entry points")
	}
	code, err := CompileShaderToSPIRV(PointsShader)
	if err != nil {
		if strings.Contains(err.Error(), "not yet implemented") || strings.Contains(err.Error(), "not supported") {
			t.Skipf("naga: %v", err)
		}
		t.Fatalf("CompileShaderToSPIRV: %v", err)
	}
	if len(code) == 0 || code[0] != spirvMagic {
		t.Errorf("SPIR-V header = %#x, want magic %#x", code[:min(1, len(code))], spirvMagic)
	}
}

func TestCompileShaderToSPIRVInvalid(t *testing.T) {
	if _, err := CompileShaderToSPIRV("fn broken( {"); err == nil {
		t.Error("CompileShaderToSPIRV accepted invalid WGSL")
	}
}

func TestPointsPipelineDescriptor(t *testing.T) {
	d := openNoop(t)
	s := newSurface(t, d)
	desc := PointsPipeline(s)

	if desc.Topology != gputypes.PrimitiveTopologyPointList {
		t.Errorf("Topology = %v, want point list", desc.Topology)
	}
	if desc.ColorFormat != s.ColorFormat() || desc.DepthFormat != s.DepthFormat() {
		t.Errorf("formats = %v/%v, want the surface formats", desc.ColorFormat, desc.DepthFormat)
	}
	if desc.UniformSize != interop.CommonParamsSize {
		t.Errorf("UniformSize = %d, want %d", desc.UniformSize, interop.CommonParamsSize)
	}
	if len(desc.VertexBuffers) != 1 || desc.VertexBuffers[0].ArrayStride != interop.PointStride {
		t.Errorf("VertexBuffers = %+v, want one buffer of stride %d", desc.VertexBuffers, interop.PointStride)
	}
}

func TestCreatePipeline(t *testing.T) {
	d := openNoop(t)
	s := newSurface(t, d)
	p := pointsPipeline(t, d, s)
	if p.Label() != "points" {
		t.Errorf("Label = %q, want points", p.Label())
	}
	if p.UniformSize() != interop.CommonParamsSize {
		t.Errorf("UniformSize = %d", p.UniformSize())
	}
}

func TestCreatePipelineWithoutDepth(t *testing.T) {
	d := openNoop(t)
	s := newSurface(t, d)
	desc := PointsPipeline(s)
	desc.DepthFormat = gputypes.TextureFormatUndefined

	f := NewPipelineFactory(d)
	defer f.Close()
	if _, err := f.CreatePipeline(desc); err != nil {
		if strings.Contains(err.Error(), "not yet implemented") {
			t.Skipf("naga: %v", err)
		}
		t.Fatalf("CreatePipeline: %v", err)
	}
}

func TestCreatePipelineNeedsShader(t *testing.T) {
	d := openNoop(t)
	f := NewPipelineFactory(d)
	defer f.Close()
	for _, desc := range []*interop.PipelineDescriptor{nil, {Label: "empty"}} {
		if _, err := f.CreatePipeline(desc); !errors.Is(err, interop.ErrInvalidConfig) {
			t.Errorf("CreatePipeline(%+v) = %v, want ErrInvalidConfig", desc, err)
		}
	}
}

func TestFactoryCloseReleasesPipelines(t *testing.T) {
	d := openNoop(t)
	s := newSurface(t, d)
	f := NewPipelineFactory(d)
	p, err := f.CreatePipeline(PointsPipeline(s))
	if err != nil {
		t.Skipf("CreatePipeline: %v", err)
	}
	f.Close()

	cmd, err := s.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	cmd.SetPipeline(p)
	if err := s.End(cmd); !errors.Is(err, ErrRecording) {
		t.Errorf("End with a released pipeline = %v, want ErrRecording", err)
	}
}
