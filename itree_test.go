// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package jif

import "testing"

func TestBuildFromIntervalsEmpty(t *testing.T) {
	tree, err := BuildFromIntervals(0x1000, 0x4000, nil)
	if err != nil {
		t.Fatalf("BuildFromIntervals: %v", err)
	}
	if tree.NumIntervals() != 0 {
		t.Fatalf("NumIntervals = %d, want 0", tree.NumIntervals())
	}
	ref := tree.Resolve(0x2000, DataRef{Kind: RefZero})
	if ref.Kind != RefZero {
		t.Fatalf("empty tree must fall through to default, got %v", ref.Kind)
	}
}

// Scenario 2 from spec §8: one PHeader with two private intervals after
// dedup collapses three pages (A, A, B) to two.
func TestBuildFromIntervalsTwoIntervalsOneNode(t *testing.T) {
	ivs := []Interval{
		{Begin: 0x1000, End: 0x3000, Ref: DataRef{Kind: RefPrivate, Offset: 0}},
		{Begin: 0x3000, End: 0x4000, Ref: DataRef{Kind: RefPrivate, Offset: PageSize}},
	}
	tree, err := BuildFromIntervals(0x1000, 0x4000, ivs)
	if err != nil {
		t.Fatalf("BuildFromIntervals: %v", err)
	}
	if len(tree.Nodes) != 1 {
		t.Fatalf("expected 1 node for 2 intervals, got %d", len(tree.Nodes))
	}
	if got := tree.Nodes[0].count(); got != 2 {
		t.Fatalf("node holds %d real intervals, want 2", got)
	}

	ref := tree.Resolve(0x2000, DataRef{Kind: RefZero})
	want := DataRef{Kind: RefPrivate, Offset: 0x1000}
	if ref != want {
		t.Fatalf("Resolve(0x2000) = %+v, want %+v", ref, want)
	}

	ref = tree.Resolve(0x3500, DataRef{Kind: RefZero})
	want = DataRef{Kind: RefPrivate, Offset: PageSize + 0x500}
	if ref != want {
		t.Fatalf("Resolve(0x3500) = %+v, want %+v", ref, want)
	}
}

// Scenario 3 from spec §8: a single private override in the middle of an
// otherwise Shared-defaulted PHeader range.
func TestBuildFromIntervalsSharedOverride(t *testing.T) {
	ivs := []Interval{
		{Begin: 0x11000, End: 0x12000, Ref: DataRef{Kind: RefPrivate, Offset: 0}},
	}
	tree, err := BuildFromIntervals(0x10000, 0x14000, ivs)
	if err != nil {
		t.Fatalf("BuildFromIntervals: %v", err)
	}

	sharedDefault := DataRef{Kind: RefShared}
	if ref := tree.Resolve(0x10000, sharedDefault); ref.Kind != RefShared {
		t.Fatalf("Resolve(0x10000) = %v, want Shared (defaulted)", ref.Kind)
	}
	if ref := tree.Resolve(0x13000, sharedDefault); ref.Kind != RefShared {
		t.Fatalf("Resolve(0x13000) = %v, want Shared (defaulted)", ref.Kind)
	}
	if ref := tree.Resolve(0x11000, sharedDefault); ref.Kind != RefPrivate {
		t.Fatalf("Resolve(0x11000) = %v, want Private", ref.Kind)
	}
}

func TestBuildFromIntervalsRejectsOverlap(t *testing.T) {
	ivs := []Interval{
		{Begin: 0x1000, End: 0x3000, Ref: DataRef{Kind: RefPrivate}},
		{Begin: 0x2000, End: 0x4000, Ref: DataRef{Kind: RefPrivate, Offset: PageSize}},
	}
	if _, err := BuildFromIntervals(0x1000, 0x5000, ivs); err == nil {
		t.Fatal("expected error for overlapping intervals")
	}
}

func TestBuildFromIntervalsRejectsOutOfRange(t *testing.T) {
	ivs := []Interval{
		{Begin: 0, End: 0x1000, Ref: DataRef{Kind: RefPrivate}},
	}
	if _, err := BuildFromIntervals(0x1000, 0x4000, ivs); err == nil {
		t.Fatal("expected error for interval outside pheader range")
	}
}

func TestBuildFromIntervalsRejectsUnaligned(t *testing.T) {
	ivs := []Interval{
		{Begin: 0x1001, End: 0x2000, Ref: DataRef{Kind: RefPrivate}},
	}
	if _, err := BuildFromIntervals(0x1000, 0x4000, ivs); err == nil {
		t.Fatal("expected error for unaligned interval")
	}
}

// Lookup must agree with iteration order for every page, across a tree
// large enough to span multiple nodes.
func TestResolveAgreesWithPageProvenance(t *testing.T) {
	const n = 37 // larger than nodeItems*Fanout to force multiple levels
	vbegin := uint64(0)
	vend := uint64(n) * PageSize

	var ivs []Interval
	for i := 0; i < n; i += 2 {
		begin := vbegin + uint64(i)*PageSize
		end := begin + PageSize
		ivs = append(ivs, Interval{Begin: begin, End: end, Ref: DataRef{Kind: RefPrivate, Offset: uint64(i) * PageSize}})
	}

	tree, err := BuildFromIntervals(vbegin, vend, ivs)
	if err != nil {
		t.Fatalf("BuildFromIntervals: %v", err)
	}

	defaultRef := DataRef{Kind: RefZero}
	for page, got := range tree.PageProvenance(vbegin, vend, defaultRef) {
		want := tree.Resolve(page, defaultRef)
		if got != want {
			t.Fatalf("page %#x: PageProvenance = %+v, Resolve = %+v", page, got, want)
		}
	}
}

func TestPartitionSizesFrontLoadsRemainder(t *testing.T) {
	sizes := partitionSizes(7, 4)
	total := 0
	for _, s := range sizes {
		total += s
	}
	if total != 7 {
		t.Fatalf("partition sizes sum to %d, want 7", total)
	}
	// front-loaded: earlier segments are never smaller than later ones
	for i := 1; i < len(sizes); i++ {
		if sizes[i] > sizes[i-1] {
			t.Fatalf("sizes[%d]=%d > sizes[%d]=%d, expected non-increasing", i, sizes[i], i-1, sizes[i-1])
		}
	}
}

func TestIntervalIsSentinel(t *testing.T) {
	if !sentinelInterval.IsSentinel() {
		t.Fatal("sentinelInterval must report IsSentinel")
	}
	real := Interval{Begin: 0, End: PageSize}
	if real.IsSentinel() {
		t.Fatal("a real interval must not report IsSentinel")
	}
}
