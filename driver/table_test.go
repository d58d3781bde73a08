// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

import (
	"bytes"
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
)

// recordingResolver resolves from a map and records every lookup.
type recordingResolver struct {
	syms  map[string]uintptr
	calls []string
}

func (r *recordingResolver) Resolve(symbol string) uintptr {
	r.calls = append(r.calls, symbol)
	return r.syms[symbol]
}

func abcCatalog() *Catalog {
	return MustCatalog("test", "A", "B", OptionalBelow, "C")
}

func TestBuildAllPresent(t *testing.T) {
	r := &recordingResolver{syms: map[string]uintptr{"A": 0x10, "B": 0x20, "C": 0x30}}
	tab, err := Build(r, abcCatalog())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for name, want := range map[string]Proc{"A": 0x10, "B": 0x20, "C": 0x30} {
		if got := tab.Proc(name); got != want {
			t.Errorf("Proc(%s) = %#x, want %#x", name, got, want)
		}
	}
	if len(tab.Missing()) != 0 {
		t.Errorf("Missing = %v, want none", tab.Missing())
	}
	if tab.Present() != 3 || tab.Len() != 3 {
		t.Errorf("Present/Len = %d/%d", tab.Present(), tab.Len())
	}
	if !slices.Equal(r.calls, []string{"A", "B", "C"}) {
		t.Errorf("resolution order = %v", r.calls)
	}
}

func TestBuildOptionalAbsent(t *testing.T) {
	r := MapResolver{"A": 0x10, "B": 0x20}
	tab, err := Build(r, abcCatalog())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !tab.Has("A") || !tab.Has("B") {
		t.Error("mandatory entries should be present")
	}
	if tab.Has("C") {
		t.Error("C should be absent")
	}
	if p, ok := tab.Lookup("C"); ok || p.Valid() {
		t.Errorf("Lookup(C) = %#x, %v", p, ok)
	}
	if got := tab.Missing(); !slices.Equal(got, []string{"C"}) {
		t.Errorf("Missing = %v, want [C]", got)
	}
}

func TestBuildMandatoryAbsent(t *testing.T) {
	r := &recordingResolver{syms: map[string]uintptr{"A": 0x10, "C": 0x30}}
	tab, err := Build(r, abcCatalog())
	if tab != nil {
		t.Error("Build returned a partial table")
	}
	if !errors.Is(err, ErrMissingMandatorySymbol) {
		t.Fatalf("error = %v, want ErrMissingMandatorySymbol", err)
	}
	var mse *MissingSymbolError
	if !errors.As(err, &mse) {
		t.Fatalf("error %T is not *MissingSymbolError", err)
	}
	if mse.Name != "B" || mse.ABI != "test" {
		t.Errorf("MissingSymbolError = %+v, want Name=B ABI=test", mse)
	}
	if slices.Contains(r.calls, "C") {
		t.Error("entries after the failing mandatory entry were resolved")
	}
}

func TestBuildInterleavedTiers(t *testing.T) {
	c, err := NewCatalogEntries("test",
		Entry{Name: "a", Tier: Mandatory},
		Entry{Name: "b", Tier: Optional},
		Entry{Name: "c", Tier: Mandatory},
	)
	if err != nil {
		t.Fatalf("NewCatalogEntries: %v", err)
	}

	tab, err := Build(MapResolver{"a": 0x1, "c": 0x3}, c)
	if err != nil {
		t.Fatalf("Build without b: %v", err)
	}
	if tab.Has("b") || !tab.Has("a") || !tab.Has("c") {
		t.Errorf("Has a/b/c = %v/%v/%v, want true/false/true", tab.Has("a"), tab.Has("b"), tab.Has("c"))
	}
	if got := tab.Missing(); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Missing = %v, want [b]", got)
	}

	tab, err = Build(MapResolver{"a": 0x1, "b": 0x2}, c)
	if tab != nil {
		t.Error("Build returned a partial table")
	}
	var mse *MissingSymbolError
	if !errors.As(err, &mse) || mse.Name != "c" {
		t.Fatalf("error = %v, want missing c", err)
	}
	if !errors.Is(err, ErrMissingMandatorySymbol) {
		t.Errorf("error = %v does not match ErrMissingMandatorySymbol", err)
	}
}

func TestBuildUsesVersionedSymbol(t *testing.T) {
	c := MustCatalog("cuda", "cuMemAlloc=cuMemAlloc_v2")
	tab, err := Build(MapResolver{"cuMemAlloc_v2": 0x99, "cuMemAlloc": 0x1}, c)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tab.Proc("cuMemAlloc") != 0x99 {
		t.Errorf("Proc(cuMemAlloc) = %#x, want versioned address", tab.Proc("cuMemAlloc"))
	}

	_, err = Build(MapResolver{"cuMemAlloc": 0x1}, c)
	var mse *MissingSymbolError
	if !errors.As(err, &mse) || mse.Symbol != "cuMemAlloc_v2" {
		t.Errorf("error = %v, want missing cuMemAlloc_v2", err)
	}
	if !strings.Contains(err.Error(), "cuMemAlloc_v2") {
		t.Errorf("error text %q does not name the symbol", err)
	}
}

func TestBuildEmptyCatalog(t *testing.T) {
	c := MustCatalog("empty")
	tab, err := Build(MapResolver{}, c)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tab.Len() != 0 {
		t.Errorf("Len = %d", tab.Len())
	}
}

func TestBuildArgErrors(t *testing.T) {
	if _, err := Build(nil, abcCatalog()); !errors.Is(err, ErrNilResolver) {
		t.Errorf("nil resolver: %v", err)
	}
	if _, err := Build(MapResolver{}, nil); !errors.Is(err, ErrInvalidCatalog) {
		t.Errorf("nil catalog: %v", err)
	}
}

func TestBuildIdempotent(t *testing.T) {
	r := MapResolver{"A": 1, "B": 2}
	t1, err1 := Build(r, abcCatalog())
	t2, err2 := Build(r, abcCatalog())
	if err1 != nil || err2 != nil {
		t.Fatalf("Build: %v, %v", err1, err2)
	}
	for i := range t1.Len() {
		if t1.At(i) != t2.At(i) {
			t.Errorf("slot %d differs: %#x vs %#x", i, t1.At(i), t2.At(i))
		}
	}
}

// TestBuildRandomPresence checks, over random catalogs and random symbol
// sets, that Build fails exactly when some mandatory entry is missing and
// that a built table reports presence exactly as the resolver does.
func TestBuildRandomPresence(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for iter := range 500 {
		nmand := rng.IntN(6)
		nopt := rng.IntN(6)
		items := make([]string, 0, nmand+nopt+1)
		for i := range nmand {
			items = append(items, "m"+string(rune('a'+i)))
		}
		items = append(items, OptionalBelow)
		for i := range nopt {
			items = append(items, "o"+string(rune('a'+i)))
		}
		c := MustCatalog("rand", items...)

		syms := MapResolver{}
		firstMissing := ""
		for i := range c.Len() {
			e := c.Entry(i)
			if rng.IntN(4) != 0 {
				syms[e.Symbol] = uintptr(i + 1)
			} else if e.Tier == Mandatory && firstMissing == "" {
				firstMissing = e.Name
			}
		}

		tab, err := Build(syms, c)
		if firstMissing != "" {
			var mse *MissingSymbolError
			if !errors.As(err, &mse) || mse.Name != firstMissing {
				t.Fatalf("iter %d: error = %v, want missing %s", iter, err, firstMissing)
			}
			continue
		}
		if err != nil {
			t.Fatalf("iter %d: Build: %v", iter, err)
		}
		for i := range c.Len() {
			e := c.Entry(i)
			_, want := syms[e.Symbol]
			if tab.Has(e.Name) != want {
				t.Fatalf("iter %d: Has(%s) = %v, want %v", iter, e.Name, !want, want)
			}
		}
	}
}

func TestMustProc(t *testing.T) {
	tab, err := Build(MapResolver{"A": 1, "B": 2}, abcCatalog())
	if err != nil {
		t.Fatal(err)
	}
	if tab.MustProc("A") != 1 {
		t.Error("MustProc(A) wrong")
	}
	defer func() {
		if recover() == nil {
			t.Error("MustProc of an absent entry did not panic")
		}
	}()
	tab.MustProc("C")
}

func TestBuildLogsMissingSymbol(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })

	_, _ = Build(MapResolver{"A": 1}, abcCatalog())
	out := buf.String()
	if !strings.Contains(out, "name=B") || !strings.Contains(out, "abi=test") {
		t.Errorf("log output %q does not name the missing entry", out)
	}
}

func TestChain(t *testing.T) {
	r := Chain(nil, MapResolver{"A": 1}, ResolverFunc(func(s string) uintptr {
		if s == "B" {
			return 2
		}
		return 0
	}))
	if r.Resolve("A") != 1 || r.Resolve("B") != 2 || r.Resolve("C") != 0 {
		t.Error("Chain resolved unexpected addresses")
	}
}
