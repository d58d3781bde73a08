// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cu

import (
	"runtime"

	"github.com/gogpu/interop/driver"
	"github.com/gogpu/interop/internal/ffi"
)

func init() {
	driver.Register(ABI, func() driver.Provider { return &Provider{} })
}

// LibraryNames returns the candidate file names of the CUDA driver
// library on this platform, most specific first.
func LibraryNames() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{"nvcuda.dll"}
	case "darwin":
		return []string{"libcuda.dylib", "/usr/local/cuda/lib/libcuda.dylib"}
	default:
		return []string{"libcuda.so.1", "libcuda.so"}
	}
}

// Provider loads the CUDA capability table from the driver library.
type Provider struct {
	lib *ffi.Library
}

// Catalog returns Catalog.
func (p *Provider) Catalog() *driver.Catalog { return Catalog }

// Load opens the driver library and resolves Catalog.
func (p *Provider) Load() (*driver.Table, error) {
	if p.lib == nil {
		lib, err := ffi.Open(LibraryNames()...)
		if err != nil {
			return nil, err
		}
		p.lib = lib
	}
	return driver.Build(p.lib, Catalog)
}

// Close unloads the driver library.
func (p *Provider) Close() error {
	if p.lib == nil {
		return nil
	}
	err := p.lib.Close()
	p.lib = nil
	return err
}

// Load opens the driver, builds the table and returns the API on it.
// The provider must be closed after the last use of the API.
func Load() (*API, *Provider, error) {
	p := &Provider{}
	t, err := p.Load()
	if err != nil {
		_ = p.Close()
		return nil, nil, err
	}
	api, err := Open(t)
	if err != nil {
		_ = p.Close()
		return nil, nil, err
	}
	return api, p, nil
}
