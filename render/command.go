// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/interop"
)

// ErrRecording is returned by Surface.End for an invalid recording.
var ErrRecording = errors.New("render: invalid command recording")

type opKind uint8

const (
	opSetPipeline opKind = iota
	opSetUniform
	opSetVertexBuffer
	opDraw
)

type op struct {
	kind     opKind
	pipeline *Pipeline
	slot     uint32
	data     []byte
	buffer   *Buffer
	count    uint32
}

// Command records draw work for one frame of a Surface. Nothing reaches
// the GPU until Surface.End replays the recording inside a render pass.
type Command struct {
	surface *Surface
	ops     []op
	errs    []error
	draws   uint32
}

var _ interop.Command = (*Command)(nil)

// SetPipeline selects the pipeline for the following draws. p must be a
// *Pipeline from a PipelineFactory on the surface's device.
func (c *Command) SetPipeline(p interop.GraphicsPipeline) {
	rp, ok := p.(*Pipeline)
	if !ok || rp.pipeline == nil {
		c.errs = append(c.errs, fmt.Errorf("%w: pipeline %T is not a live render pipeline", ErrRecording, p))
		return
	}
	c.ops = append(c.ops, op{kind: opSetPipeline, pipeline: rp})
}

// SetUniform sets the uniform block of the current pipeline. Only slot 0
// exists.
func (c *Command) SetUniform(slot uint32, data []byte) {
	if slot != 0 {
		c.errs = append(c.errs, fmt.Errorf("%w: uniform slot %d", ErrRecording, slot))
		return
	}
	c.ops = append(c.ops, op{kind: opSetUniform, slot: slot, data: append([]byte(nil), data...)})
}

// SetVertexBuffer binds b to the vertex buffer slot.
func (c *Command) SetVertexBuffer(slot uint32, b interop.Buffer) {
	hb, ok := b.(*Buffer)
	if !ok {
		c.errs = append(c.errs, fmt.Errorf("%w: vertex buffer %T not created by a hal device", ErrRecording, b))
		return
	}
	c.ops = append(c.ops, op{kind: opSetVertexBuffer, slot: slot, buffer: hb})
}

// Draw draws vertexCount vertices with the current state.
func (c *Command) Draw(vertexCount uint32) {
	c.ops = append(c.ops, op{kind: opDraw, count: vertexCount})
	c.draws += vertexCount
}

// Vertices returns the number of vertices drawn so far.
func (c *Command) Vertices() uint32 { return c.draws }

func (c *Command) err() error { return errors.Join(c.errs...) }
