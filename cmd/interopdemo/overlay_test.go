// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/gogpu/interop"
)

func TestStatsOverlayPeriod(t *testing.T) {
	var buf bytes.Buffer
	o := newStatsOverlay(slog.New(slog.NewTextHandler(&buf, nil)), 3)
	for i := range uint64(7) {
		o.Update(interop.FrameInfo{Frame: i, Previous: 10 * time.Millisecond, Width: 64, Height: 48})
	}
	if n := strings.Count(buf.String(), "frame stats"); n != 2 {
		t.Errorf("logged %d reports, want 2:\n%s", n, buf.String())
	}
	if !strings.Contains(buf.String(), "fps=100") {
		t.Errorf("report does not show 100 fps:\n%s", buf.String())
	}
	if err := o.Draw(nil); err != nil {
		t.Errorf("Draw = %v", err)
	}
}

func TestHeadlessSurface(t *testing.T) {
	s := newHeadlessSurface(64, 48, 2)
	cmd, err := s.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := s.Begin(); err == nil {
		t.Error("second Begin succeeded")
	}
	cmd.SetPipeline(headlessPipeline{label: "points"})
	cmd.SetUniform(0, interop.DefaultCamera(64, 48, false).Bytes())
	cmd.SetVertexBuffer(0, fixedBuffer(64))
	cmd.Draw(16)
	if err := s.End(cmd); err != nil {
		t.Fatalf("End: %v", err)
	}
	if s.vertices != 16 {
		t.Errorf("vertices = %d, want 16", s.vertices)
	}
	if !s.Present() || s.Present() {
		t.Error("Present does not stop after the frame limit")
	}
}

func TestHeadlessSurfaceRejectsIncompleteDraw(t *testing.T) {
	s := newHeadlessSurface(8, 8, 0)
	cmd, err := s.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	cmd.SetPipeline(headlessPipeline{label: "points"})
	cmd.Draw(4)
	if err := s.End(cmd); err == nil {
		t.Error("End accepted a draw without uniform and vertex buffer")
	}
	if err := s.End(&headlessCommand{}); err == nil {
		t.Error("End accepted a command that was not begun")
	}
}

type fixedBuffer uint64

func (b fixedBuffer) Size() uint64 { return uint64(b) }
