// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"log/slog"
	"time"

	"github.com/gogpu/interop"
)

// statsOverlay reports the frame rate every period frames. It draws
// nothing into the frame.
type statsOverlay struct {
	log    *slog.Logger
	period uint64
	frames uint64
	busy   time.Duration
	last   interop.FrameInfo
}

func newStatsOverlay(log *slog.Logger, period uint64) *statsOverlay {
	return &statsOverlay{log: log, period: max(period, 1)}
}

func (o *statsOverlay) Update(info interop.FrameInfo) {
	o.last = info
	o.frames++
	o.busy += info.Previous
	if o.frames < o.period {
		return
	}
	avg := o.busy / time.Duration(o.frames)
	fps := 0.0
	if avg > 0 {
		fps = float64(time.Second) / float64(avg)
	}
	o.log.Info("frame stats",
		"frame", info.Frame,
		"fps", int(fps+0.5),
		"avg", avg.Round(time.Microsecond),
		"size", [2]uint32{info.Width, info.Height},
		"time", info.Params.Time)
	o.frames = 0
	o.busy = 0
}

func (o *statsOverlay) Draw(interop.Command) error { return nil }
