// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package jif

import "testing"

func TestParseAccessLog(t *testing.T) {
	lines := []string{
		"100: 0x10000",
		"101: 0x11000",
		"garbage line",
		"102: 0x20000",
		"103: not-hex",
	}
	entries := ParseAccessLog(lines)
	want := []uint64{0x10000, 0x11000, 0x20000}
	if len(entries) != len(want) {
		t.Fatalf("parsed %d entries, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if e.Addr != want[i] {
			t.Errorf("entries[%d].Addr = %#x, want %#x", i, e.Addr, want[i])
		}
	}
}

// Scenario 4 from spec §8: two contiguous addresses in the same PHeader
// coalesce into one multi-page chunk; an out-of-range address is
// dropped and counted.
func TestBuildOrdCoalescesAndDropsOutOfRange(t *testing.T) {
	pheaders := []PHeader{
		{VBegin: 0x10000, VEnd: 0x14000},
		{VBegin: 0x20000, VEnd: 0x24000},
	}
	entries := []AccessEntry{
		{Addr: 0x10000},
		{Addr: 0x11000},
		{Addr: 0x30000}, // out of range for both pheaders
	}

	ord, dropped := BuildOrd(pheaders, entries)
	if dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}
	if len(ord.Chunks) != 1 {
		t.Fatalf("expected 1 coalesced chunk, got %d: %+v", len(ord.Chunks), ord.Chunks)
	}
	c := ord.Chunks[0]
	if c.PHeaderIndex != 0 || c.PageOffset != 0 || c.NPages != 2 {
		t.Fatalf("chunk = %+v, want {pheader=0 page=0 n=2}", c)
	}
}

func TestBuildOrdAcrossPheaders(t *testing.T) {
	pheaders := []PHeader{
		{VBegin: 0x10000, VEnd: 0x14000},
		{VBegin: 0x20000, VEnd: 0x24000},
	}
	entries := []AccessEntry{
		{Addr: 0x10000},
		{Addr: 0x11000},
		{Addr: 0x20000},
	}
	ord, dropped := BuildOrd(pheaders, entries)
	if dropped != 0 {
		t.Fatalf("dropped = %d, want 0", dropped)
	}
	if len(ord.Chunks) != 2 {
		t.Fatalf("expected 2 chunks (one per pheader run), got %d", len(ord.Chunks))
	}
}

func TestBuildOrdDropsDuplicatePages(t *testing.T) {
	pheaders := []PHeader{{VBegin: 0, VEnd: 0x4000}}
	entries := []AccessEntry{
		{Addr: 0x1000},
		{Addr: 0x1000}, // duplicate page, first occurrence wins
		{Addr: 0x2000},
	}
	ord, dropped := BuildOrd(pheaders, entries)
	if dropped != 0 {
		t.Fatalf("duplicate in-range entries must not count as dropped, got %d", dropped)
	}
	total := uint32(0)
	for _, c := range ord.Chunks {
		total += c.NPages
	}
	if total != 2 {
		t.Fatalf("expected 2 distinct pages recorded, got %d", total)
	}
}

func TestSplitMultiPage(t *testing.T) {
	ord := Ord{Chunks: []OrdChunk{{PHeaderIndex: 0, PageOffset: 0, NPages: 3}}}
	split := SplitMultiPage(ord)
	if len(split.Chunks) != 3 {
		t.Fatalf("expected 3 single-page chunks, got %d", len(split.Chunks))
	}
	for i, c := range split.Chunks {
		if c.NPages != 1 || c.PageOffset != uint32(i) {
			t.Errorf("chunk[%d] = %+v, want {page=%d n=1}", i, c, i)
		}
	}
}
