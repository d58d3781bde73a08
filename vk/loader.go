// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vk

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/gogpu/interop/driver"
	"github.com/gogpu/interop/internal/ffi"
)

func init() {
	driver.Register(ABI, func() driver.Provider { return &Provider{} })
}

// LibraryNames returns the candidate file names of the Vulkan loader on
// this platform, most specific first.
func LibraryNames() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{"vulkan-1.dll"}
	case "darwin":
		return []string{"libvulkan.1.dylib", "libvulkan.dylib", "libMoltenVK.dylib"}
	default:
		return []string{"libvulkan.so.1", "libvulkan.so"}
	}
}

// Loader is an opened Vulkan loader library.
type Loader struct {
	lib                 *ffi.Library
	getInstanceProcAddr uintptr
}

// Load opens the Vulkan loader and looks up vkGetInstanceProcAddr, the
// only symbol resolved directly from the library.
func Load() (*Loader, error) {
	lib, err := ffi.Open(LibraryNames()...)
	if err != nil {
		return nil, err
	}
	gipa := lib.Resolve("vkGetInstanceProcAddr")
	if gipa == 0 {
		_ = lib.Close()
		return nil, &driver.MissingSymbolError{ABI: ABI, Name: "vkGetInstanceProcAddr", Symbol: "vkGetInstanceProcAddr"}
	}
	return &Loader{lib: lib, getInstanceProcAddr: gipa}, nil
}

// Library returns the name the loader library was opened with.
func (l *Loader) Library() string { return l.lib.Name() }

// procAddr calls vkGetInstanceProcAddr. A zero instance resolves global
// commands.
func (l *Loader) procAddr(instance uintptr, name string) uintptr {
	var f ffi.Frame
	defer f.Release()
	return ffi.Call(l.getInstanceProcAddr, instance, f.CString(name))
}

// resolver resolves entry points for instance, falling back to the
// symbols the loader library exports itself.
func (l *Loader) resolver(instance uintptr) driver.Resolver {
	return driver.Chain(
		driver.ResolverFunc(func(symbol string) uintptr { return l.procAddr(instance, symbol) }),
		l.lib,
	)
}

// Close unloads the library. Instances created from it must be closed
// first.
func (l *Loader) Close() error {
	if l == nil {
		return nil
	}
	return l.lib.Close()
}

// Provider builds the Vulkan capability table on a headless instance.
type Provider struct {
	loader   *Loader
	instance *Instance
}

// Catalog returns Catalog.
func (p *Provider) Catalog() *driver.Catalog { return Catalog }

// Load opens the loader, creates an instance and returns its table.
func (p *Provider) Load() (*driver.Table, error) {
	if p.instance != nil {
		return p.instance.Table(), nil
	}
	if p.loader == nil {
		l, err := Load()
		if err != nil {
			return nil, err
		}
		p.loader = l
	}
	inst, err := NewInstance(p.loader, WithApplicationName("interop-caps"))
	if err != nil {
		return nil, fmt.Errorf("vulkan: create instance: %w", err)
	}
	p.instance = inst
	return inst.Table(), nil
}

// Close destroys the instance and unloads the loader.
func (p *Provider) Close() error {
	var errs []error
	if p.instance != nil {
		errs = append(errs, p.instance.Close())
		p.instance = nil
	}
	if p.loader != nil {
		errs = append(errs, p.loader.Close())
		p.loader = nil
	}
	return errors.Join(errs...)
}
