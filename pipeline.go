// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package interop

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// MaxGridSize is the largest grid edge whose point count fits a single
// uint32 draw.
const MaxGridSize = 1<<16 - 1

// State is the position of a frame in the pipeline.
type State uint32

const (
	StateIdle State = iota
	StateParametersUploaded
	StateDispatched
	StateSynchronized
	StateFlushed
	StateDrawn
	StatePresented
)

var stateNames = [...]string{
	StateIdle:               "idle",
	StateParametersUploaded: "parameters-uploaded",
	StateDispatched:         "dispatched",
	StateSynchronized:       "synchronized",
	StateFlushed:            "flushed",
	StateDrawn:              "drawn",
	StatePresented:          "presented",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint32(s))
}

// Observer is notified of pipeline progress. Calls happen on the frame's
// goroutine and must not block.
type Observer interface {
	StateChanged(from, to State)
	FrameDone(frame uint64, elapsed time.Duration, err error)
}

// PipelineConfig wires the collaborators of a Pipeline.
type PipelineConfig struct {
	Compute  ComputeDomain
	Graphics GraphicsDomain
	Resource *SharedResource
	Kernel   Kernel
	Surface  Surface
	Draw     GraphicsPipeline

	// GridSize is the number of points along each axis.
	GridSize uint32
	// GroupSize is the work-group edge length.
	GroupSize uint32
}

func (c *PipelineConfig) validate() error {
	switch {
	case c.Compute == nil:
		return fmt.Errorf("%w: no compute domain", ErrInvalidConfig)
	case c.Graphics == nil:
		return fmt.Errorf("%w: no graphics domain", ErrInvalidConfig)
	case c.Resource == nil:
		return fmt.Errorf("%w: no shared resource", ErrInvalidConfig)
	case c.Kernel == nil:
		return fmt.Errorf("%w: no kernel", ErrInvalidConfig)
	case c.Surface == nil:
		return fmt.Errorf("%w: no surface", ErrInvalidConfig)
	case c.Draw == nil:
		return fmt.Errorf("%w: no draw pipeline", ErrInvalidConfig)
	case c.GridSize == 0 || c.GroupSize == 0:
		return fmt.Errorf("%w: grid %d, group %d", ErrInvalidConfig, c.GridSize, c.GroupSize)
	case c.GridSize > MaxGridSize:
		return fmt.Errorf("%w: grid %d exceeds %d", ErrInvalidConfig, c.GridSize, MaxGridSize)
	case c.Resource.Mode() == ShareNone:
		return ErrNotShared
	}
	need := uint64(c.GridSize) * uint64(c.GridSize) * PointStride
	if c.Resource.Size() < need {
		return fmt.Errorf("%w: shared buffer holds %d bytes, grid needs %d", ErrInvalidConfig, c.Resource.Size(), need)
	}
	return nil
}

// Pipeline runs the per-frame protocol between the compute and graphics
// domains. RunFrame must not be entered concurrently; a second caller gets
// ErrFrameInProgress.
type Pipeline struct {
	mu     sync.Mutex
	cfg    PipelineConfig
	opts   pipelineOptions
	groups uint32
	params DevicePtr

	state  atomic.Uint32
	frame  atomic.Uint64
	last   time.Duration
	closed bool
}

// NewPipeline validates cfg and allocates the compute-side parameter
// buffer. The resource must already be shared with cfg.Compute.
func NewPipeline(cfg PipelineConfig, opts ...PipelineOption) (*Pipeline, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	o := defaultPipelineOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var params DevicePtr
	err := WithCurrent(cfg.Compute, func() error {
		var aerr error
		params, aerr = cfg.Compute.Alloc(ParamsSize)
		return aerr
	})
	if err != nil {
		return nil, fmt.Errorf("allocate parameter buffer: %w", err)
	}

	p := &Pipeline{
		cfg:    cfg,
		opts:   o,
		groups: WorkGroups(cfg.GridSize, cfg.GroupSize),
		params: params,
	}
	Logger().Info("pipeline created",
		"compute", cfg.Compute.Name(),
		"graphics", cfg.Graphics.Name(),
		"grid", cfg.GridSize,
		"groups", p.groups,
		"mode", cfg.Resource.Mode())
	return p, nil
}

// State returns the state of the frame in progress, or StateIdle.
func (p *Pipeline) State() State { return State(p.state.Load()) }

// Frames returns the number of frames started.
func (p *Pipeline) Frames() uint64 { return p.frame.Load() }

// WorkGroups returns the number of work groups along each grid axis.
func (p *Pipeline) WorkGroups() uint32 { return p.groups }

func (p *Pipeline) advance(to State) {
	from := State(p.state.Swap(uint32(to)))
	Logger().Debug("frame state", "from", from, "to", to)
	for _, o := range p.opts.observers {
		o.StateChanged(from, to)
	}
}

// RunFrame drives one frame through every state in order. A failing step
// stops the frame and is reported as a *FrameError naming the state that
// was not reached; the pipeline returns to StateIdle either way. When the
// surface declines to present, RunFrame returns ErrStopped.
func (p *Pipeline) RunFrame(params Params) error {
	if !p.mu.TryLock() {
		return ErrFrameInProgress
	}
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}

	// Every step of a frame runs on one OS thread so the compute context
	// stays bound.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	frame := p.frame.Add(1) - 1
	start := time.Now()
	err := p.runFrame(frame, params, start)
	elapsed := time.Since(start)
	p.last = elapsed

	if p.State() != StateIdle {
		p.advance(StateIdle)
	}
	for _, o := range p.opts.observers {
		o.FrameDone(frame, elapsed, err)
	}
	return err
}

func (p *Pipeline) runFrame(frame uint64, params Params, start time.Time) error {
	c := p.cfg
	fail := func(step State, err error) error {
		Logger().Error("frame failed", "frame", frame, "step", step, "err", err)
		return &FrameError{Frame: frame, Step: step, Err: err}
	}

	if err := c.Compute.MakeCurrent(); err != nil {
		return fail(StateParametersUploaded, err)
	}
	if err := c.Compute.Upload(p.params, params.Bytes()); err != nil {
		return fail(StateParametersUploaded, err)
	}
	p.advance(StateParametersUploaded)

	d := Dispatch{
		Groups:    [3]uint32{p.groups, p.groups, 1},
		GroupSize: [3]uint32{c.GroupSize, c.GroupSize, 1},
		Args:      []DevicePtr{p.params, c.Resource.ComputePtr()},
	}
	if err := c.Compute.Dispatch(c.Kernel, d); err != nil {
		return fail(StateDispatched, err)
	}
	c.Resource.MarkWritten()
	p.advance(StateDispatched)

	if err := c.Compute.Synchronize(); err != nil {
		return fail(StateSynchronized, err)
	}
	c.Resource.MarkSynchronized()
	p.advance(StateSynchronized)

	if err := c.Resource.Flush(); err != nil {
		return fail(StateFlushed, err)
	}
	p.advance(StateFlushed)

	if err := p.draw(frame, params, start); err != nil {
		return fail(StateDrawn, err)
	}
	p.advance(StateDrawn)

	if !c.Surface.Present() {
		Logger().Info("surface stopped presenting", "frame", frame)
		return ErrStopped
	}
	p.advance(StatePresented)
	return nil
}

func (p *Pipeline) draw(frame uint64, params Params, start time.Time) error {
	c := p.cfg
	w, h := c.Surface.Size()
	cmd, err := c.Surface.Begin()
	if err != nil {
		return err
	}

	common := p.opts.camera(w, h, c.Surface.Flipped())
	cmd.SetPipeline(c.Draw)
	cmd.SetUniform(0, common.Bytes())
	cmd.SetVertexBuffer(0, c.Resource.Buffer())
	cmd.Draw(c.GridSize * c.GridSize)

	var overlayErr error
	if ov := p.opts.overlay; ov != nil {
		ov.Update(FrameInfo{
			Frame:    frame,
			Params:   params,
			Elapsed:  time.Since(start),
			Previous: p.last,
			Width:    w,
			Height:   h,
		})
		overlayErr = ov.Draw(cmd)
	}
	if err := c.Surface.End(cmd); err != nil {
		return err
	}
	if overlayErr != nil {
		return fmt.Errorf("overlay: %w", overlayErr)
	}
	return nil
}

// Run calls RunFrame until the surface stops presenting, a frame fails or
// ctx is done. next returns the parameters of each frame. Run returns nil
// when the surface stops and ctx.Err() when ctx is done.
func (p *Pipeline) Run(ctx context.Context, next func(frame uint64) Params) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := p.RunFrame(next(p.Frames()))
		if errors.Is(err, ErrStopped) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Close waits for the compute domain and frees the parameter buffer. It
// does not close the collaborators.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	c := p.cfg.Compute
	return WithCurrent(c, func() error {
		return errors.Join(c.Synchronize(), c.Free(p.params))
	})
}
