// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package driver builds capability tables for native GPU driver ABIs.
//
// A [Catalog] is the ordered list of entry points one ABI exposes. Entries
// before the [OptionalBelow] marker are mandatory; entries after it are
// optional. [Build] resolves every entry through a [Resolver] in catalog
// order. A missing mandatory entry aborts the build with a
// [*MissingSymbolError] and leaves no table behind. A missing optional entry
// leaves its slot absent and callers check it with [Table.Has] before use.
//
// Providers for concrete ABIs register themselves by name:
//
//	import _ "github.com/gogpu/interop/cu" // registers "cuda"
//
//	p := driver.Get("cuda")
//	t, err := p.Load()
package driver
