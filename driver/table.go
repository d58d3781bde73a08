// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

import "fmt"

// Proc is the address of a resolved native entry point. The zero Proc is
// absent.
type Proc uintptr

// Valid reports whether p refers to a resolved entry point.
func (p Proc) Valid() bool { return p != 0 }

// Table holds one resolved address per catalog entry. A Table is
// read-only once built and safe for concurrent use.
type Table struct {
	catalog *Catalog
	slots   []Proc
	absent  int
}

// Build resolves every entry of c through r, in catalog order.
//
// The first mandatory entry that resolves to 0 stops the build. The
// returned error is a *MissingSymbolError naming it; no partial table is
// returned and later entries are never resolved. Absent optional entries
// leave their slot at 0. Build has no other side effects, so calling it
// twice with the same resolver yields identical tables.
func Build(r Resolver, c *Catalog) (*Table, error) {
	if r == nil {
		return nil, ErrNilResolver
	}
	if c == nil {
		return nil, fmt.Errorf("%w: nil catalog", ErrInvalidCatalog)
	}
	log := slogger().With("abi", c.abi)

	slots := make([]Proc, len(c.entries))
	absent := 0
	for i, e := range c.entries {
		addr := r.Resolve(e.Symbol)
		if addr != 0 {
			slots[i] = Proc(addr)
			continue
		}
		if e.Tier == Mandatory {
			log.Error("can't resolve mandatory entry point", "name", e.Name, "symbol", e.Symbol)
			return nil, &MissingSymbolError{ABI: c.abi, Name: e.Name, Symbol: e.Symbol}
		}
		absent++
		log.Debug("optional entry point absent", "name", e.Name)
	}

	log.Info("capability table built",
		"mandatory", c.nmand,
		"optional", len(c.entries)-c.nmand,
		"absent", absent)
	return &Table{catalog: c, slots: slots, absent: absent}, nil
}

// ABI returns the ABI name of the table's catalog.
func (t *Table) ABI() string { return t.catalog.abi }

// Catalog returns the catalog the table was built from.
func (t *Table) Catalog() *Catalog { return t.catalog }

// Len returns the number of slots, equal to the catalog length.
func (t *Table) Len() int { return len(t.slots) }

// At returns the slot at catalog position i.
func (t *Table) At(i int) Proc { return t.slots[i] }

// Lookup returns the address of the entry called name. The boolean is
// false if the entry is unknown or absent.
func (t *Table) Lookup(name string) (Proc, bool) {
	i, ok := t.catalog.index[name]
	if !ok {
		return 0, false
	}
	p := t.slots[i]
	return p, p != 0
}

// Has reports whether the entry called name resolved.
func (t *Table) Has(name string) bool {
	_, ok := t.Lookup(name)
	return ok
}

// Proc returns the address of the entry called name, or 0.
func (t *Table) Proc(name string) Proc {
	p, _ := t.Lookup(name)
	return p
}

// MustProc returns the address of the entry called name and panics if it
// is unknown or absent. Use it only for mandatory entries.
func (t *Table) MustProc(name string) Proc {
	p, ok := t.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("driver: %s: entry point %s not resolved", t.catalog.abi, name))
	}
	return p
}

// Missing returns the names of absent optional entries in catalog order.
func (t *Table) Missing() []string {
	out := make([]string, 0, t.absent)
	for i, p := range t.slots {
		if p == 0 {
			out = append(out, t.catalog.entries[i].Name)
		}
	}
	return out
}

// Present returns the number of resolved slots.
func (t *Table) Present() int { return len(t.slots) - t.absent }
