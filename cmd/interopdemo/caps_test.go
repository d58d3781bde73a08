// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gogpu/interop/driver"
)

type capsProvider struct {
	syms driver.MapResolver
}

var capsCatalog = driver.MustCatalog("caps-test", "init", "launch", driver.OptionalBelow, "graph", "peer")

func (p *capsProvider) Catalog() *driver.Catalog     { return capsCatalog }
func (p *capsProvider) Load() (*driver.Table, error) { return driver.Build(p.syms, capsCatalog) }
func (p *capsProvider) Close() error                 { return nil }

func registerCaps(t *testing.T, name string, syms driver.MapResolver) {
	t.Helper()
	driver.Register(name, func() driver.Provider { return &capsProvider{syms: syms} })
	t.Cleanup(func() { driver.Unregister(name) })
}

func TestWriteCaps(t *testing.T) {
	registerCaps(t, "caps-ok", driver.MapResolver{"init": 1, "launch": 2, "peer": 3})
	registerCaps(t, "caps-broken", driver.MapResolver{"init": 1})

	var out bytes.Buffer
	if err := writeCaps(&out, []string{"caps-ok", "caps-broken"}, true); err != nil {
		t.Fatalf("writeCaps: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"caps-ok      3/4",
		"2 mandatory, 2 optional",
		"caps-broken  0/4",
		"unavailable:",
		"caps-ok: 1 optional entry points absent",
		"  graph",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report lacks %q:\n%s", want, got)
		}
	}
}

func TestWriteCapsUnregistered(t *testing.T) {
	var out bytes.Buffer
	if err := writeCaps(&out, []string{"caps-none"}, false); err != nil {
		t.Fatalf("writeCaps: %v", err)
	}
	if !strings.Contains(out.String(), "unavailable: ") {
		t.Errorf("report = %q, want unavailable status", out.String())
	}
}
