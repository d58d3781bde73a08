// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package interop

// PipelineOption configures a Pipeline during creation.
//
// Example:
//
//	p, err := interop.NewPipeline(cfg,
//	    interop.WithObserver(collector),
//	    interop.WithCamera(myCamera))
type PipelineOption func(*pipelineOptions)

type pipelineOptions struct {
	camera    CameraFunc
	overlay   Overlay
	observers []Observer
}

func defaultPipelineOptions() pipelineOptions {
	return pipelineOptions{camera: DefaultCamera}
}

// WithCamera replaces DefaultCamera.
func WithCamera(fn CameraFunc) PipelineOption {
	return func(o *pipelineOptions) {
		if fn != nil {
			o.camera = fn
		}
	}
}

// WithOverlay draws o after the points in every frame.
func WithOverlay(o Overlay) PipelineOption {
	return func(opts *pipelineOptions) {
		opts.overlay = o
	}
}

// WithObserver adds an observer of state transitions and frame results.
// It may be given more than once.
func WithObserver(obs Observer) PipelineOption {
	return func(o *pipelineOptions) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}
