// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/interop"
)

// headlessSurface is the presentation target of vulkan mode. It checks
// and counts the recorded draws without rasterizing them.
type headlessSurface struct {
	width, height uint32
	limit         uint64
	presented     uint64
	vertices      uint64
	open          *headlessCommand
}

func newHeadlessSurface(width, height uint32, frames uint64) *headlessSurface {
	return &headlessSurface{width: width, height: height, limit: frames}
}

func (s *headlessSurface) ColorFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8Unorm
}

func (s *headlessSurface) DepthFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatDepth24PlusStencil8
}

func (s *headlessSurface) Size() (uint32, uint32) { return s.width, s.height }
func (s *headlessSurface) Flipped() bool          { return false }

func (s *headlessSurface) Begin() (interop.Command, error) {
	if s.open != nil {
		return nil, errors.New("headless: frame already begun")
	}
	s.open = &headlessCommand{}
	return s.open, nil
}

func (s *headlessSurface) End(cmd interop.Command) error {
	c, ok := cmd.(*headlessCommand)
	if !ok || c != s.open {
		return errors.New("headless: command was not begun on this surface")
	}
	s.open = nil
	if c.err != nil {
		return c.err
	}
	s.vertices += uint64(c.vertices)
	return nil
}

func (s *headlessSurface) Present() bool {
	s.presented++
	return s.limit == 0 || s.presented < s.limit
}

// headlessCommand validates the draw sequence: a pipeline, its uniform
// block and a vertex buffer must be set before Draw.
type headlessCommand struct {
	pipeline bool
	uniform  bool
	buffer   bool
	vertices uint32
	err      error
}

func (c *headlessCommand) SetPipeline(p interop.GraphicsPipeline) { c.pipeline = p != nil }

func (c *headlessCommand) SetUniform(slot uint32, data []byte) {
	if slot != 0 || len(data) != interop.CommonParamsSize {
		c.fail(fmt.Errorf("headless: uniform slot %d with %d bytes", slot, len(data)))
		return
	}
	c.uniform = true
}

func (c *headlessCommand) SetVertexBuffer(_ uint32, b interop.Buffer) { c.buffer = b != nil }

func (c *headlessCommand) Draw(n uint32) {
	if !c.pipeline || !c.uniform || !c.buffer {
		c.fail(errors.New("headless: draw without pipeline, uniform and vertex buffer"))
		return
	}
	c.vertices += n
}

func (c *headlessCommand) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// headlessPipeline stands in for a render pipeline in vulkan mode.
type headlessPipeline struct{ label string }

func (p headlessPipeline) Label() string { return p.label }
