// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package interop

import "runtime"

// WithCurrent runs fn with d bound to the calling OS thread. The goroutine
// is locked to its thread until fn returns. Domains implementing Pusher
// are pushed and popped, others are made current.
func WithCurrent(d Domain, fn func() error) (err error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if p, ok := d.(Pusher); ok {
		if err := p.PushCurrent(); err != nil {
			return err
		}
		defer func() {
			if perr := p.PopCurrent(); perr != nil && err == nil {
				err = perr
			}
		}()
	} else if err := d.MakeCurrent(); err != nil {
		return err
	}
	return fn()
}
