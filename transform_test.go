// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package jif

import "testing"

// Scenario 5 from spec §8: rename repoints every matching PHeader and
// never creates a duplicate string-table entry.
func TestRename(t *testing.T) {
	j := New()
	aOff := j.Strings.Intern("/a")
	j.PHeaders = []PHeader{
		{VBegin: 0, VEnd: PageSize, Backing: &BackingRef{PathOffset: aOff}},
		{VBegin: PageSize, VEnd: 2 * PageSize, Backing: &BackingRef{PathOffset: aOff}},
		{VBegin: 2 * PageSize, VEnd: 3 * PageSize}, // unbacked, unaffected
	}

	Rename(j, "/a", "/b")

	bOff, ok := j.Strings.find("/b")
	if !ok {
		t.Fatal("/b was not interned")
	}
	for i, want := range []bool{true, true, false} {
		h := &j.PHeaders[i]
		if h.HasBacking() != want {
			t.Fatalf("pheader[%d].HasBacking() = %v, want %v", i, h.HasBacking(), want)
		}
		if want && h.Backing.PathOffset != bOff {
			t.Fatalf("pheader[%d] still points at old offset", i)
		}
	}
}

func TestRenameNoDuplicateInterning(t *testing.T) {
	j := New()
	aOff := j.Strings.Intern("/a")
	j.Strings.Intern("/b") // already present
	j.PHeaders = []PHeader{{VBegin: 0, VEnd: PageSize, Backing: &BackingRef{PathOffset: aOff}}}

	before := j.Strings.Len()
	Rename(j, "/a", "/b")
	after := j.Strings.Len()

	if after != before {
		t.Fatalf("renaming onto an already-interned path must not grow the arena: %d -> %d", before, after)
	}
}

func TestRenameUnknownPathIsNoop(t *testing.T) {
	j := New()
	j.PHeaders = []PHeader{{VBegin: 0, VEnd: PageSize}}
	before := j.Strings.Len()
	Rename(j, "/does/not/exist", "/b")
	if j.Strings.Len() != before {
		t.Fatal("renaming a path that was never interned must be a no-op")
	}
}

func TestAddOrd(t *testing.T) {
	j := New()
	j.PHeaders = []PHeader{{VBegin: 0x10000, VEnd: 0x14000}}

	dropped := AddOrd(j, []AccessEntry{{Addr: 0x10000}, {Addr: 0x99999}})
	if dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}
	if len(j.Ord.Chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(j.Ord.Chunks))
	}
}

func TestAddOrdReplacesExisting(t *testing.T) {
	j := New()
	j.PHeaders = []PHeader{{VBegin: 0, VEnd: 0x4000}}
	j.Ord.Append(OrdChunk{PHeaderIndex: 0, PageOffset: 3, NPages: 1})

	AddOrd(j, []AccessEntry{{Addr: 0}})

	if len(j.Ord.Chunks) != 1 || j.Ord.Chunks[0].PageOffset != 0 {
		t.Fatalf("AddOrd must replace, not append to, existing chunks: %+v", j.Ord.Chunks)
	}
}
