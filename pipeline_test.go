// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package interop

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
)

type pipelineFixture struct {
	graphics *fakeGraphics
	compute  *fakeCompute
	resource *SharedResource
	surface  *fakeSurface
	observer *recordingObserver
	pipeline *Pipeline
}

func newPipelineFixture(t *testing.T, exportable bool, grid, group uint32, opts ...PipelineOption) *pipelineFixture {
	t.Helper()
	g := newFakeGraphics(exportable)
	c := newFakeCompute(g)
	size := uint64(grid) * uint64(grid) * PointStride
	r, err := NewSharedResource(g, size, UsageStorage|UsageVertex)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Share(c); err != nil {
		t.Fatal(err)
	}
	s := &fakeSurface{width: 640, height: 480, presents: -1}
	obs := &recordingObserver{}
	p, err := NewPipeline(PipelineConfig{
		Compute:   c,
		Graphics:  g,
		Resource:  r,
		Kernel:    copyParamsKernel,
		Surface:   s,
		Draw:      &fakePipelineObject{label: "points"},
		GridSize:  grid,
		GroupSize: group,
	}, append([]PipelineOption{WithObserver(obs)}, opts...)...)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return &pipelineFixture{graphics: g, compute: c, resource: r, surface: s, observer: obs, pipeline: p}
}

func TestWorkGroups(t *testing.T) {
	tests := []struct {
		grid, group, want uint32
	}{
		{1024, 8, 128},
		{1000, 8, 125},
		{1001, 8, 126},
		{1, 8, 1},
		{8, 8, 1},
		{9, 8, 2},
		{16, 1, 16},
		{0xFFFFFFFF, 2, 0x80000000},
		{0xFFFFFFFF, 0xFFFFFFFF, 1},
	}
	for _, tt := range tests {
		if got := WorkGroups(tt.grid, tt.group); got != tt.want {
			t.Errorf("WorkGroups(%d, %d) = %d, want %d", tt.grid, tt.group, got, tt.want)
		}
	}
}

func TestRunFrameStateSequence(t *testing.T) {
	f := newPipelineFixture(t, true, 16, 8)
	if err := f.pipeline.RunFrame(Params{Size: 16, Scale: 16, Time: 1}); err != nil {
		t.Fatalf("RunFrame: %v", err)
	}

	want := []transition{
		{StateIdle, StateParametersUploaded},
		{StateParametersUploaded, StateDispatched},
		{StateDispatched, StateSynchronized},
		{StateSynchronized, StateFlushed},
		{StateFlushed, StateDrawn},
		{StateDrawn, StatePresented},
		{StatePresented, StateIdle},
	}
	if !slices.Equal(f.observer.transitions, want) {
		t.Errorf("transitions = %v\nwant %v", f.observer.transitions, want)
	}
	if f.pipeline.State() != StateIdle {
		t.Errorf("State = %s after frame, want idle", f.pipeline.State())
	}
	if !slices.Equal(f.observer.frames, []uint64{0}) || f.observer.errs[0] != nil {
		t.Errorf("FrameDone calls = %v %v", f.observer.frames, f.observer.errs)
	}
}

func TestRunFrameDispatchGeometry(t *testing.T) {
	f := newPipelineFixture(t, true, 1024, 8)
	if got := f.pipeline.WorkGroups(); got != 128 {
		t.Fatalf("WorkGroups = %d, want 128", got)
	}
	if err := f.pipeline.RunFrame(Params{Size: 1024}); err != nil {
		t.Fatal(err)
	}
	d := f.compute.launches[0]
	if d.Groups != [3]uint32{128, 128, 1} || d.GroupSize != [3]uint32{8, 8, 1} {
		t.Errorf("dispatch = %v x %v, want 128x128x1 groups of 8x8x1", d.Groups, d.GroupSize)
	}
	if len(d.Args) != 2 || d.Args[0] != f.pipeline.params || d.Args[1] != f.resource.ComputePtr() {
		t.Errorf("args = %v, want [params, positions]", d.Args)
	}
	if got := f.surface.commands[0].draws; !slices.Equal(got, []uint32{1024 * 1024}) {
		t.Errorf("draws = %v, want one draw of %d points", got, 1024*1024)
	}
}

func TestRunFrameDrawsThisFramesData(t *testing.T) {
	for _, exportable := range []bool{true, false} {
		f := newPipelineFixture(t, exportable, 4, 2)
		for i := range 3 {
			params := Params{Size: 4, Scale: 16, Time: float32(i) * 0.5}
			if err := f.pipeline.RunFrame(params); err != nil {
				t.Fatalf("exportable=%v frame %d: %v", exportable, i, err)
			}
			snap := f.surface.snapshots[i]
			if !bytes.Equal(snap[:ParamsSize], params.Bytes()) {
				t.Errorf("exportable=%v frame %d: drawn data %v, want %v", exportable, i, snap[:ParamsSize], params.Bytes())
			}
		}
	}
}

func TestRunFrameUniform(t *testing.T) {
	f := newPipelineFixture(t, true, 4, 2)
	f.surface.flipped = true
	if err := f.pipeline.RunFrame(Params{Size: 4}); err != nil {
		t.Fatal(err)
	}
	cmd := f.surface.commands[0]
	want := DefaultCamera(640, 480, true).Bytes()
	if !bytes.Equal(cmd.uniform, want) {
		t.Error("uniform block does not match DefaultCamera for a flipped surface")
	}
	if cmd.pipeline.Label() != "points" || cmd.vertex != f.resource.Buffer() {
		t.Error("draw not bound to the pipeline and shared buffer")
	}
}

func TestRunFrameFailures(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name   string
		inject func(f *pipelineFixture)
		step   State
	}{
		{"context", func(f *pipelineFixture) { f.compute.fail["make-current"] = boom }, StateParametersUploaded},
		{"upload", func(f *pipelineFixture) { f.compute.fail["upload"] = boom }, StateParametersUploaded},
		{"dispatch", func(f *pipelineFixture) { f.compute.fail["dispatch"] = boom }, StateDispatched},
		{"synchronize", func(f *pipelineFixture) { f.compute.fail["sync"] = boom }, StateSynchronized},
		{"flush", func(f *pipelineFixture) { f.graphics.fail["flush"] = boom }, StateFlushed},
		{"begin", func(f *pipelineFixture) { f.surface.beginErr = boom }, StateDrawn},
		{"end", func(f *pipelineFixture) { f.surface.endErr = boom }, StateDrawn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPipelineFixture(t, true, 4, 2)
			tt.inject(f)

			err := f.pipeline.RunFrame(Params{Size: 4})
			if !errors.Is(err, boom) {
				t.Fatalf("error = %v, want %v", err, boom)
			}
			var fe *FrameError
			if !errors.As(err, &fe) || fe.Step != tt.step {
				t.Fatalf("error = %v, want FrameError at %s", err, tt.step)
			}
			if f.pipeline.State() != StateIdle {
				t.Errorf("State = %s, want idle", f.pipeline.State())
			}
			for _, tr := range f.observer.transitions {
				if tr.to >= tt.step && tr.to != StateIdle {
					t.Errorf("reached %s after failing at %s", tr.to, tt.step)
				}
			}
			if f.surface.presented != 0 {
				t.Error("failed frame was presented")
			}
			if !errors.Is(f.observer.errs[0], boom) {
				t.Errorf("observer saw %v", f.observer.errs[0])
			}

			// The pipeline recovers once the failure is gone.
			clear(f.compute.fail)
			clear(f.graphics.fail)
			f.surface.beginErr, f.surface.endErr = nil, nil
			if err := f.pipeline.RunFrame(Params{Size: 4}); err != nil {
				t.Errorf("frame after recovery: %v", err)
			}
		})
	}
}

func TestRunFrameSkipsLaterStepsOnFailure(t *testing.T) {
	f := newPipelineFixture(t, true, 4, 2)
	f.compute.fail["dispatch"] = errors.New("launch failed")
	_ = f.pipeline.RunFrame(Params{Size: 4})
	if slices.Contains(f.compute.calls, "sync") {
		t.Error("synchronized after failed dispatch")
	}
	if f.graphics.flushes != 0 || f.surface.begun != 0 {
		t.Error("flushed or drew after failed dispatch")
	}
}

func TestRunStopsWhenSurfaceStops(t *testing.T) {
	f := newPipelineFixture(t, true, 4, 2)
	f.surface.presents = 3

	var seen []uint64
	err := f.pipeline.Run(context.Background(), func(frame uint64) Params {
		seen = append(seen, frame)
		return Params{Size: 4, Time: float32(frame)}
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !slices.Equal(seen, []uint64{0, 1, 2, 3}) {
		t.Errorf("frames = %v, want 0..3", seen)
	}
	if f.surface.presented != 3 {
		t.Errorf("presented = %d, want 3", f.surface.presented)
	}
	if !errors.Is(f.observer.errs[3], ErrStopped) {
		t.Errorf("last frame error = %v, want ErrStopped", f.observer.errs[3])
	}
}

func TestRunContextCanceled(t *testing.T) {
	f := newPipelineFixture(t, true, 4, 2)
	ctx, cancel := context.WithCancel(context.Background())
	err := f.pipeline.Run(ctx, func(frame uint64) Params {
		if frame == 2 {
			cancel()
		}
		return Params{Size: 4}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
	if f.pipeline.Frames() != 3 {
		t.Errorf("Frames = %d, want 3", f.pipeline.Frames())
	}
}

func TestRunReturnsFrameError(t *testing.T) {
	f := newPipelineFixture(t, true, 4, 2)
	f.compute.fail["sync"] = errors.New("device lost")
	err := f.pipeline.Run(context.Background(), func(uint64) Params { return Params{Size: 4} })
	var fe *FrameError
	if !errors.As(err, &fe) || fe.Step != StateSynchronized {
		t.Errorf("Run = %v, want FrameError at synchronized", err)
	}
}

func TestRunFrameInProgress(t *testing.T) {
	f := newPipelineFixture(t, true, 4, 2)
	entered := make(chan struct{})
	release := make(chan struct{})
	f.surface.beginHook = func() {
		close(entered)
		<-release
	}

	var wg sync.WaitGroup
	var first error
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = f.pipeline.RunFrame(Params{Size: 4})
	}()

	<-entered
	if err := f.pipeline.RunFrame(Params{Size: 4}); !errors.Is(err, ErrFrameInProgress) {
		t.Errorf("concurrent RunFrame = %v, want ErrFrameInProgress", err)
	}
	close(release)
	wg.Wait()
	if first != nil {
		t.Errorf("first frame: %v", first)
	}
}

func TestNewPipelineValidation(t *testing.T) {
	g := newFakeGraphics(true)
	c := newFakeCompute(g)
	shared, _ := NewSharedResource(g, 4*4*PointStride, UsageStorage)
	_ = shared.Share(c)
	unshared, _ := NewSharedResource(g, 4*4*PointStride, UsageStorage)
	small, _ := NewSharedResource(g, 16, UsageStorage)
	_ = small.Share(newFakeCompute(g))

	base := PipelineConfig{
		Compute: c, Graphics: g, Resource: shared, Kernel: copyParamsKernel,
		Surface: &fakeSurface{}, Draw: &fakePipelineObject{}, GridSize: 4, GroupSize: 2,
	}
	tests := []struct {
		name   string
		mutate func(*PipelineConfig)
		want   error
	}{
		{"no compute", func(c *PipelineConfig) { c.Compute = nil }, ErrInvalidConfig},
		{"no graphics", func(c *PipelineConfig) { c.Graphics = nil }, ErrInvalidConfig},
		{"no resource", func(c *PipelineConfig) { c.Resource = nil }, ErrInvalidConfig},
		{"no kernel", func(c *PipelineConfig) { c.Kernel = nil }, ErrInvalidConfig},
		{"no surface", func(c *PipelineConfig) { c.Surface = nil }, ErrInvalidConfig},
		{"no draw", func(c *PipelineConfig) { c.Draw = nil }, ErrInvalidConfig},
		{"zero group", func(c *PipelineConfig) { c.GroupSize = 0 }, ErrInvalidConfig},
		{"zero grid", func(c *PipelineConfig) { c.GridSize = 0 }, ErrInvalidConfig},
		{"unshared", func(c *PipelineConfig) { c.Resource = unshared }, ErrNotShared},
		{"too small", func(c *PipelineConfig) { c.Resource = small }, ErrInvalidConfig},
		{"grid wraps buffer size", func(c *PipelineConfig) { c.Resource = small; c.GridSize = 1 << 30; c.GroupSize = 8 }, ErrInvalidConfig},
		{"grid overflows draw count", func(c *PipelineConfig) { c.GridSize = MaxGridSize + 1 }, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if _, err := NewPipeline(cfg); !errors.Is(err, tt.want) {
				t.Errorf("NewPipeline = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPipelineClose(t *testing.T) {
	f := newPipelineFixture(t, true, 4, 2)
	if err := f.pipeline.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if f.compute.freed != 1 {
		t.Errorf("freed = %d, want the parameter buffer", f.compute.freed)
	}
	if err := f.pipeline.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := f.pipeline.RunFrame(Params{}); !errors.Is(err, ErrClosed) {
		t.Errorf("RunFrame after Close = %v, want ErrClosed", err)
	}
}

type countingOverlay struct {
	updates []FrameInfo
	draws   int
	err     error
}

func (o *countingOverlay) Update(info FrameInfo) { o.updates = append(o.updates, info) }
func (o *countingOverlay) Draw(cmd Command) error {
	o.draws++
	cmd.Draw(6)
	return o.err
}

func TestRunFrameOverlay(t *testing.T) {
	ov := &countingOverlay{}
	f := newPipelineFixture(t, true, 4, 2, WithOverlay(ov))
	if err := f.pipeline.RunFrame(Params{Size: 4, Time: 2}); err != nil {
		t.Fatal(err)
	}
	if ov.draws != 1 || len(ov.updates) != 1 || ov.updates[0].Params.Time != 2 {
		t.Errorf("overlay updates=%v draws=%d", ov.updates, ov.draws)
	}
	if got := f.surface.commands[0].draws; !slices.Equal(got, []uint32{16, 6}) {
		t.Errorf("draws = %v, want points then overlay", got)
	}

	ov.err = errors.New("font missing")
	var fe *FrameError
	if err := f.pipeline.RunFrame(Params{Size: 4}); !errors.As(err, &fe) || fe.Step != StateDrawn {
		t.Errorf("overlay failure = %v, want FrameError at drawn", err)
	}
}

func TestWithCamera(t *testing.T) {
	var gotW, gotH uint32
	cam := func(w, h uint32, _ bool) CommonParams {
		gotW, gotH = w, h
		return CommonParams{Projection: Identity4(), Modelview: Identity4()}
	}
	f := newPipelineFixture(t, true, 4, 2, WithCamera(cam))
	if err := f.pipeline.RunFrame(Params{Size: 4}); err != nil {
		t.Fatal(err)
	}
	if gotW != 640 || gotH != 480 {
		t.Errorf("camera got %dx%d", gotW, gotH)
	}
}

func TestStateString(t *testing.T) {
	if StateFlushed.String() != "flushed" || State(42).String() != "State(42)" {
		t.Error("unexpected state names")
	}
}
