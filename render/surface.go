// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/interop"
)

// copyPitchAlignment is the row alignment of texture-to-buffer copies.
const copyPitchAlignment = 256

// SurfaceOption configures NewSurface.
type SurfaceOption func(*Surface)

// WithFrameLimit makes Present return false once n frames have been
// presented. A limit of 0 means no limit.
func WithFrameLimit(n uint64) SurfaceOption {
	return func(s *Surface) { s.limit = n }
}

// WithFlipped reports the surface as top-left origin.
func WithFlipped(flipped bool) SurfaceOption {
	return func(s *Surface) { s.flipped = flipped }
}

// WithClearColor sets the color the frame is cleared to.
func WithClearColor(c gputypes.Color) SurfaceOption {
	return func(s *Surface) { s.clear = c }
}

// WithReadback copies every presented frame into the image returned by
// Image. It is on by default.
func WithReadback(enabled bool) SurfaceOption {
	return func(s *Surface) { s.readback = enabled }
}

// Surface is an offscreen interop.Surface: an RGBA8 color texture with a
// depth/stencil attachment, read back into an *image.RGBA on Present.
type Surface struct {
	dev           *Device
	width, height uint32
	flipped       bool
	clear         gputypes.Color
	readback      bool
	limit         uint64

	colorTex  hal.Texture
	colorView hal.TextureView
	depthTex  hal.Texture
	depthView hal.TextureView

	mu        sync.Mutex
	recording *Command
	pixels    []byte
	presented uint64
}

var _ interop.Surface = (*Surface)(nil)

// NewSurface creates the attachments of a width×height surface.
func NewSurface(d *Device, width, height uint32, opts ...SurfaceOption) (*Surface, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: surface size %dx%d", interop.ErrInvalidConfig, width, height)
	}
	s := &Surface{
		dev:      d,
		width:    width,
		height:   height,
		clear:    gputypes.Color{R: 0, G: 0, B: 0, A: 1},
		readback: true,
	}
	for _, o := range opts {
		o(s)
	}
	if err := s.createTextures(); err != nil {
		s.destroyTextures()
		return nil, err
	}
	return s, nil
}

func (s *Surface) createTextures() error {
	device := s.dev.device
	size := hal.Extent3D{Width: s.width, Height: s.height, DepthOrArrayLayers: 1}

	var err error
	s.colorTex, err = device.CreateTexture(&hal.TextureDescriptor{
		Label:         "surface_color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        s.ColorFormat(),
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create color texture: %w", err)
	}
	s.colorView, err = device.CreateTextureView(s.colorTex, &hal.TextureViewDescriptor{
		Label: "surface_color_view",
	})
	if err != nil {
		return fmt.Errorf("create color view: %w", err)
	}

	s.depthTex, err = device.CreateTexture(&hal.TextureDescriptor{
		Label:         "surface_depth_stencil",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        s.DepthFormat(),
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create depth/stencil texture: %w", err)
	}
	s.depthView, err = device.CreateTextureView(s.depthTex, &hal.TextureViewDescriptor{
		Label: "surface_depth_stencil_view",
	})
	if err != nil {
		return fmt.Errorf("create depth/stencil view: %w", err)
	}
	return nil
}

func (s *Surface) destroyTextures() {
	device := s.dev.device
	if s.depthView != nil {
		device.DestroyTextureView(s.depthView)
		s.depthView = nil
	}
	if s.depthTex != nil {
		device.DestroyTexture(s.depthTex)
		s.depthTex = nil
	}
	if s.colorView != nil {
		device.DestroyTextureView(s.colorView)
		s.colorView = nil
	}
	if s.colorTex != nil {
		device.DestroyTexture(s.colorTex)
		s.colorTex = nil
	}
}

// ColorFormat returns TextureFormatRGBA8Unorm.
func (s *Surface) ColorFormat() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }

// DepthFormat returns TextureFormatDepth24PlusStencil8.
func (s *Surface) DepthFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatDepth24PlusStencil8
}

// Size returns the surface size in pixels.
func (s *Surface) Size() (width, height uint32) { return s.width, s.height }

// Flipped reports whether the surface has a top-left origin.
func (s *Surface) Flipped() bool { return s.flipped }

// Begin starts recording a frame.
func (s *Surface) Begin() (interop.Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.colorTex == nil {
		return nil, interop.ErrClosed
	}
	if s.recording != nil {
		return nil, fmt.Errorf("%w: frame already begun", ErrRecording)
	}
	s.recording = &Command{surface: s}
	return s.recording, nil
}

// frameResources are the per-frame uniform buffers and bind groups.
type frameResources struct {
	buffers    []hal.Buffer
	bindGroups []hal.BindGroup
}

func (r *frameResources) destroy(device hal.Device) {
	for _, bg := range r.bindGroups {
		device.DestroyBindGroup(bg)
	}
	for _, b := range r.buffers {
		device.DestroyBuffer(b)
	}
}

// End replays the recorded commands in one render pass, submits them,
// waits for completion and reads the color attachment back.
func (s *Surface) End(cmd interop.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := cmd.(*Command)
	if !ok || c != s.recording {
		return fmt.Errorf("%w: command was not begun on this surface", ErrRecording)
	}
	s.recording = nil
	if err := c.err(); err != nil {
		return err
	}

	device, queue := s.dev.device, s.dev.queue
	var res frameResources
	defer res.destroy(device)

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "surface_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("surface_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	// Uniform buffers must exist before the pass records bind groups.
	bindGroups, err := s.prepareUniforms(c.ops, &res)
	if err != nil {
		encoder.DiscardEncoding()
		return err
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "surface_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       s.colorView,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: s.clear,
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              s.depthView,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpDiscard,
			DepthClearValue:   1.0,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: 0,
		},
	})
	uniform := 0
	for _, o := range c.ops {
		switch o.kind {
		case opSetPipeline:
			rp.SetPipeline(o.pipeline.pipeline)
		case opSetUniform:
			rp.SetBindGroup(0, bindGroups[uniform], nil)
			uniform++
		case opSetVertexBuffer:
			rp.SetVertexBuffer(o.slot, o.buffer.buf, 0)
		case opDraw:
			rp.Draw(o.count, 1, 0, 0)
		}
	}
	rp.End()

	var staging hal.Buffer
	var alignedRow uint32
	if s.readback {
		staging, alignedRow, err = s.encodeReadback(encoder)
		if err != nil {
			encoder.DiscardEncoding()
			return err
		}
		defer device.DestroyBuffer(staging)
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	if err := s.dev.submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return err
	}
	if !s.readback {
		return nil
	}

	raw := make([]byte, uint64(alignedRow)*uint64(s.height))
	if err := queue.ReadBuffer(staging, 0, raw); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	s.pixels = stripRowPadding(raw, s.width*4, alignedRow, s.height)
	return nil
}

// prepareUniforms creates one uniform buffer and bind group per
// SetUniform op, using the layout of the pipeline current at that point.
func (s *Surface) prepareUniforms(ops []op, res *frameResources) ([]hal.BindGroup, error) {
	device, queue := s.dev.device, s.dev.queue
	var current *Pipeline
	for _, o := range ops {
		switch o.kind {
		case opSetPipeline:
			current = o.pipeline
			continue
		case opSetUniform:
		default:
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("%w: uniform set before a pipeline", ErrRecording)
		}
		size := max(current.uniformSize, uint64(len(o.data)))
		size = (size + 15) &^ 15
		buf, err := device.CreateBuffer(&hal.BufferDescriptor{
			Label: "surface_uniform",
			Size:  size,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, fmt.Errorf("create uniform buffer: %w", err)
		}
		res.buffers = append(res.buffers, buf)
		data := make([]byte, size)
		copy(data, o.data)
		queue.WriteBuffer(buf, 0, data)

		bg, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  "surface_uniform_bind",
			Layout: current.bindLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{
					Buffer: buf.NativeHandle(), Offset: 0, Size: size,
				}},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("create uniform bind group: %w", err)
		}
		res.bindGroups = append(res.bindGroups, bg)
	}
	return res.bindGroups, nil
}

func (s *Surface) encodeReadback(encoder hal.CommandEncoder) (hal.Buffer, uint32, error) {
	device := s.dev.device
	bytesPerRow := s.width * 4
	alignedRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)

	staging, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "surface_staging",
		Size:  uint64(alignedRow) * uint64(s.height),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("create staging buffer: %w", err)
	}

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.colorTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(s.colorTex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedRow, RowsPerImage: s.height},
		TextureBase:  hal.ImageCopyTexture{Texture: s.colorTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: s.width, Height: s.height, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.colorTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	return staging, alignedRow, nil
}

// stripRowPadding returns the tightly packed rows of an aligned copy.
func stripRowPadding(raw []byte, rowBytes, alignedRow, rows uint32) []byte {
	if rowBytes == alignedRow {
		return raw
	}
	tight := make([]byte, uint64(rowBytes)*uint64(rows))
	for row := range rows {
		src := int(row) * int(alignedRow)
		dst := int(row) * int(rowBytes)
		copy(tight[dst:dst+int(rowBytes)], raw[src:src+int(rowBytes)])
	}
	return tight
}

// Present counts the frame. It returns false once the frame limit is
// reached.
func (s *Surface) Present() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presented++
	return s.limit == 0 || s.presented < s.limit
}

// Presented returns the number of presented frames.
func (s *Surface) Presented() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presented
}

// Image returns a copy of the last frame read back, or nil before the
// first frame or with readback disabled.
func (s *Surface) Image() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pixels == nil {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, int(s.width), int(s.height)))
	copy(img.Pix, s.pixels)
	return img
}

// Close releases the attachments.
func (s *Surface) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyTextures()
}
