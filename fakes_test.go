// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package interop

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
)

var errNotCurrent = errors.New("fake: compute context not current")

// fakeBuffer models graphics memory with a physical backing store and the
// view graphics work sees. Flush copies the former into the latter.
type fakeBuffer struct {
	id       uintptr
	usage    Usage
	physical []byte
	visible  []byte
}

func (b *fakeBuffer) Size() uint64 { return uint64(len(b.physical)) }

type fakeGraphics struct {
	mu         sync.Mutex
	exportable bool
	buffers    map[uintptr]*fakeBuffer
	nextID     uintptr
	closed     []uintptr
	destroyed  int
	fail       map[string]error
	flushes    int
}

func newFakeGraphics(exportable bool) *fakeGraphics {
	return &fakeGraphics{exportable: exportable, buffers: map[uintptr]*fakeBuffer{}, nextID: 100, fail: map[string]error{}}
}

func (g *fakeGraphics) Name() string       { return "fake-graphics" }
func (g *fakeGraphics) MakeCurrent() error { return nil }
func (g *fakeGraphics) Synchronize() error { return g.fail["sync"] }
func (g *fakeGraphics) Close() error       { return nil }
func (g *fakeGraphics) Device() DeviceID   { return DeviceID{PCIBusID: "0000:01:00.0"} }

func (g *fakeGraphics) CreateBuffer(size uint64, usage Usage) (Buffer, error) {
	if err := g.fail["create"]; err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	b := &fakeBuffer{id: g.nextID, usage: usage, physical: make([]byte, size), visible: make([]byte, size)}
	g.buffers[b.id] = b
	return b, nil
}

func (g *fakeGraphics) DestroyBuffer(b Buffer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.buffers, b.(*fakeBuffer).id)
	g.destroyed++
}

func (g *fakeGraphics) Export(b Buffer) (ExternalMemory, error) {
	if !g.exportable {
		return ExternalMemory{}, ErrExportUnsupported
	}
	fb := b.(*fakeBuffer)
	return NewExternalMemory(fb.id, HandleOpaqueFD, fb.Size(), true, func(h uintptr) error {
		g.mu.Lock()
		g.closed = append(g.closed, h)
		g.mu.Unlock()
		return nil
	}), nil
}

func (g *fakeGraphics) Write(b Buffer, offset uint64, data []byte) error {
	if err := g.fail["write"]; err != nil {
		return err
	}
	copy(b.(*fakeBuffer).physical[offset:], data)
	return nil
}

func (g *fakeGraphics) Flush(b Buffer) error {
	if err := g.fail["flush"]; err != nil {
		return err
	}
	fb := b.(*fakeBuffer)
	copy(fb.visible, fb.physical)
	g.flushes++
	return nil
}

func (g *fakeGraphics) lookup(h uintptr) *fakeBuffer {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.buffers[h]
}

// fakeKernel runs fn against compute memory when the compute domain is
// synchronized.
type fakeKernel struct {
	name string
	fn   func(c *fakeCompute, args []DevicePtr)
}

func (k *fakeKernel) Name() string { return k.name }

// copyParamsKernel copies the parameter block into the start of the
// output buffer.
var copyParamsKernel = &fakeKernel{name: "copy-params", fn: func(c *fakeCompute, args []DevicePtr) {
	copy(c.mem[args[1]], c.mem[args[0]][:ParamsSize])
}}

type fakeImport struct {
	c    *fakeCompute
	ptr  DevicePtr
	size uint64
}

func (i *fakeImport) Ptr() DevicePtr { return i.ptr }
func (i *fakeImport) Size() uint64   { return i.size }
func (i *fakeImport) Release() error {
	if !i.c.current() {
		return errNotCurrent
	}
	delete(i.c.mem, i.ptr)
	i.c.released++
	return nil
}

type fakeCompute struct {
	peer *fakeGraphics

	base  bool
	depth int

	mem      map[DevicePtr][]byte
	next     DevicePtr
	pending  []func()
	fail     map[string]error
	calls    []string
	launches []Dispatch
	freed    int
	released int
}

func newFakeCompute(peer *fakeGraphics) *fakeCompute {
	return &fakeCompute{peer: peer, mem: map[DevicePtr][]byte{}, next: 0x1000, fail: map[string]error{}}
}

func (c *fakeCompute) current() bool { return c.base || c.depth > 0 }

func (c *fakeCompute) op(name string) error {
	c.calls = append(c.calls, name)
	if err := c.fail[name]; err != nil {
		return err
	}
	if !c.current() {
		return fmt.Errorf("%s: %w", name, errNotCurrent)
	}
	return nil
}

func (c *fakeCompute) Name() string { return "fake-compute" }

func (c *fakeCompute) MakeCurrent() error {
	c.calls = append(c.calls, "make-current")
	if err := c.fail["make-current"]; err != nil {
		return err
	}
	c.base = true
	return nil
}

func (c *fakeCompute) PushCurrent() error {
	c.calls = append(c.calls, "push")
	if err := c.fail["push"]; err != nil {
		return err
	}
	c.depth++
	return nil
}

func (c *fakeCompute) PopCurrent() error {
	c.calls = append(c.calls, "pop")
	c.depth--
	return c.fail["pop"]
}

func (c *fakeCompute) Synchronize() error {
	if err := c.op("sync"); err != nil {
		return err
	}
	for _, fn := range c.pending {
		fn()
	}
	c.pending = nil
	return nil
}

func (c *fakeCompute) Close() error { return nil }

func (c *fakeCompute) Alloc(size uint64) (DevicePtr, error) {
	if err := c.op("alloc"); err != nil {
		return 0, err
	}
	p := c.next
	c.next += DevicePtr(size + 0x100)
	c.mem[p] = make([]byte, size)
	return p, nil
}

func (c *fakeCompute) Free(p DevicePtr) error {
	if err := c.op("free"); err != nil {
		return err
	}
	delete(c.mem, p)
	c.freed++
	return nil
}

func (c *fakeCompute) Upload(dst DevicePtr, src []byte) error {
	if err := c.op("upload"); err != nil {
		return err
	}
	copy(c.mem[dst], src)
	return nil
}

func (c *fakeCompute) Download(dst []byte, src DevicePtr) error {
	if err := c.op("download"); err != nil {
		return err
	}
	copy(dst, c.mem[src])
	return nil
}

func (c *fakeCompute) Import(mem ExternalMemory) (Imported, error) {
	if err := c.op("import"); err != nil {
		return nil, err
	}
	b := c.peer.lookup(mem.Handle)
	if b == nil {
		return nil, Fail(ErrImportFailed, c.Name(), "import", errors.New("unknown handle"))
	}
	p := c.next
	c.next += DevicePtr(mem.Size + 0x100)
	c.mem[p] = b.physical
	return &fakeImport{c: c, ptr: p, size: mem.Size}, nil
}

func (c *fakeCompute) Dispatch(k Kernel, d Dispatch) error {
	if err := c.op("dispatch"); err != nil {
		return err
	}
	c.launches = append(c.launches, d)
	fk := k.(*fakeKernel)
	args := append([]DevicePtr(nil), d.Args...)
	c.pending = append(c.pending, func() { fk.fn(c, args) })
	return nil
}

// writeKernel returns a kernel that fills the output buffer with v.
func writeKernel(v byte) *fakeKernel {
	return &fakeKernel{name: "fill", fn: func(c *fakeCompute, args []DevicePtr) {
		out := c.mem[args[0]]
		for i := range out {
			out[i] = v
		}
	}}
}

type fakePipelineObject struct{ label string }

func (p *fakePipelineObject) Label() string { return p.label }

type fakeCommand struct {
	pipeline GraphicsPipeline
	uniform  []byte
	vertex   Buffer
	draws    []uint32
}

func (c *fakeCommand) SetPipeline(p GraphicsPipeline)    { c.pipeline = p }
func (c *fakeCommand) SetUniform(_ uint32, data []byte)   { c.uniform = append([]byte(nil), data...) }
func (c *fakeCommand) SetVertexBuffer(_ uint32, b Buffer) { c.vertex = b }
func (c *fakeCommand) Draw(vertexCount uint32)            { c.draws = append(c.draws, vertexCount) }

// fakeSurface snapshots what graphics work sees in the vertex buffer at
// the end of every frame.
type fakeSurface struct {
	width, height uint32
	flipped       bool
	presents      int // frames presented before Present returns false; <0 means forever
	beginErr      error
	endErr        error
	beginHook     func()

	begun     int
	presented int
	commands  []*fakeCommand
	snapshots [][]byte
}

func (s *fakeSurface) ColorFormat() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }
func (s *fakeSurface) DepthFormat() gputypes.TextureFormat { return gputypes.TextureFormatDepth24PlusStencil8 }
func (s *fakeSurface) Size() (uint32, uint32)              { return s.width, s.height }
func (s *fakeSurface) Flipped() bool                       { return s.flipped }

func (s *fakeSurface) Begin() (Command, error) {
	if s.beginHook != nil {
		s.beginHook()
	}
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	s.begun++
	cmd := &fakeCommand{}
	s.commands = append(s.commands, cmd)
	return cmd, nil
}

func (s *fakeSurface) End(cmd Command) error {
	if s.endErr != nil {
		return s.endErr
	}
	fc := cmd.(*fakeCommand)
	if fb, ok := fc.vertex.(*fakeBuffer); ok {
		s.snapshots = append(s.snapshots, append([]byte(nil), fb.visible...))
	}
	return nil
}

func (s *fakeSurface) Present() bool {
	if s.presents >= 0 && s.presented >= s.presents {
		return false
	}
	s.presented++
	return true
}

type transition struct{ from, to State }

type recordingObserver struct {
	mu          sync.Mutex
	transitions []transition
	frames      []uint64
	errs        []error
}

func (o *recordingObserver) StateChanged(from, to State) {
	o.mu.Lock()
	o.transitions = append(o.transitions, transition{from, to})
	o.mu.Unlock()
}

func (o *recordingObserver) FrameDone(frame uint64, _ time.Duration, err error) {
	o.mu.Lock()
	o.frames = append(o.frames, frame)
	o.errs = append(o.errs, err)
	o.mu.Unlock()
}
