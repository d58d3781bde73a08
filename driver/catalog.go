// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

import (
	"fmt"
	"strings"
)

// OptionalBelow separates mandatory catalog items from optional ones.
const OptionalBelow = "--optional--"

// Tier says whether an entry point must be present.
type Tier uint8

const (
	// Mandatory entries abort the build when absent.
	Mandatory Tier = iota
	// Optional entries leave an absent slot.
	Optional
)

func (t Tier) String() string {
	switch t {
	case Mandatory:
		return "mandatory"
	case Optional:
		return "optional"
	default:
		return fmt.Sprintf("Tier(%d)", uint8(t))
	}
}

// Entry is one catalog item. Name is how callers look the entry up; Symbol
// is the exported name passed to the resolver.
type Entry struct {
	Name   string
	Symbol string
	Tier   Tier
}

// Catalog is the ordered, immutable list of entry points of one driver ABI.
type Catalog struct {
	abi     string
	entries []Entry
	index   map[string]int
	nmand   int
}

// NewCatalog parses items into a catalog. Each item is either a bare
// symbol name or "name=symbol" when the exported symbol is versioned
// (for example "cuMemAlloc=cuMemAlloc_v2"). Items are mandatory until the
// first OptionalBelow marker; the marker may appear at most once.
// Blank items and duplicate names are rejected.
func NewCatalog(abi string, items ...string) (*Catalog, error) {
	c, err := newCatalog(abi, len(items))
	if err != nil {
		return nil, err
	}
	tier := Mandatory
	for i, item := range items {
		item = strings.TrimSpace(item)
		if item == OptionalBelow {
			if tier == Optional {
				return nil, fmt.Errorf("%w: %s: second optional marker at item %d", ErrInvalidCatalog, abi, i)
			}
			tier = Optional
			continue
		}
		name, symbol, aliased := strings.Cut(item, "=")
		name = strings.TrimSpace(name)
		symbol = strings.TrimSpace(symbol)
		if !aliased {
			symbol = name
		}
		if err := c.add(i, Entry{Name: name, Symbol: symbol, Tier: tier}); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// NewCatalogEntries builds a catalog from entries, each carrying its own
// tier, so mandatory and optional entries may interleave. An empty Symbol
// defaults to Name.
func NewCatalogEntries(abi string, entries ...Entry) (*Catalog, error) {
	c, err := newCatalog(abi, len(entries))
	if err != nil {
		return nil, err
	}
	for i, e := range entries {
		if e.Symbol == "" {
			e.Symbol = e.Name
		}
		if e.Tier != Mandatory && e.Tier != Optional {
			return nil, fmt.Errorf("%w: %s: entry %d has %v", ErrInvalidCatalog, abi, i, e.Tier)
		}
		if err := c.add(i, e); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func newCatalog(abi string, n int) (*Catalog, error) {
	if abi == "" {
		return nil, fmt.Errorf("%w: empty ABI name", ErrInvalidCatalog)
	}
	return &Catalog{
		abi:     abi,
		entries: make([]Entry, 0, n),
		index:   make(map[string]int, n),
	}, nil
}

func (c *Catalog) add(i int, e Entry) error {
	if e.Name == "" || e.Symbol == "" || strings.ContainsAny(e.Name+e.Symbol, " \t=") {
		return fmt.Errorf("%w: %s: malformed item %d %q", ErrInvalidCatalog, c.abi, i, e.Name)
	}
	if _, dup := c.index[e.Name]; dup {
		return fmt.Errorf("%w: %s: duplicate entry %s", ErrInvalidCatalog, c.abi, e.Name)
	}
	c.index[e.Name] = len(c.entries)
	c.entries = append(c.entries, e)
	if e.Tier == Mandatory {
		c.nmand++
	}
	return nil
}

// MustCatalog is like NewCatalog but panics on error. It is intended for
// package-level catalog definitions.
func MustCatalog(abi string, items ...string) *Catalog {
	c, err := NewCatalog(abi, items...)
	if err != nil {
		panic(err)
	}
	return c
}

// ABI returns the driver ABI name, for example "cuda" or "vulkan".
func (c *Catalog) ABI() string { return c.abi }

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Mandatory returns the number of mandatory entries.
func (c *Catalog) Mandatory() int { return c.nmand }

// Optional returns the number of optional entries.
func (c *Catalog) Optional() int { return len(c.entries) - c.nmand }

// Entry returns the i-th entry in catalog order.
func (c *Catalog) Entry(i int) Entry { return c.entries[i] }

// Entries returns a copy of all entries in catalog order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Index returns the position of the entry called name.
func (c *Catalog) Index(name string) (int, bool) {
	i, ok := c.index[name]
	return i, ok
}
