// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package jif

import "testing"

func TestProtString(t *testing.T) {
	cases := []struct {
		p    Prot
		want string
	}{
		{0, "---"},
		{ProtRead, "R--"},
		{ProtRead | ProtWrite, "RW-"},
		{ProtRead | ProtWrite | ProtExec, "RWX"},
		{ProtExec, "--X"},
	}
	for _, c := range cases {
		if got := c.p.String(); got != c.want {
			t.Errorf("Prot(%d).String() = %q, want %q", c.p, got, c.want)
		}
	}
}

func TestPHeaderDefaultRefNoBacking(t *testing.T) {
	h := PHeader{VBegin: 0, VEnd: PageSize}
	if got := h.defaultRef().Kind; got != RefZero {
		t.Fatalf("defaultRef without backing = %v, want RefZero", got)
	}
}

func TestPHeaderDefaultRefWithBacking(t *testing.T) {
	h := PHeader{VBegin: 0, VEnd: PageSize, Backing: &BackingRef{}}
	if got := h.defaultRef().Kind; got != RefShared {
		t.Fatalf("defaultRef with backing = %v, want RefShared", got)
	}
}

func TestPHeaderResolveSharedOffset(t *testing.T) {
	h := PHeader{
		VBegin:  0x10000,
		VEnd:    0x14000,
		Backing: &BackingRef{PathOffset: 0, RefOffset: 0x5000},
	}
	ref := h.Resolve(0x11000)
	if ref.Kind != RefShared {
		t.Fatalf("Kind = %v, want RefShared", ref.Kind)
	}
	if ref.Offset != 0x5000+0x1000 {
		t.Fatalf("Offset = %#x, want %#x", ref.Offset, 0x5000+0x1000)
	}
}

func TestPHeaderNPages(t *testing.T) {
	h := PHeader{VBegin: 0x1000, VEnd: 0x5000}
	if got := h.NPages(); got != 4 {
		t.Fatalf("NPages = %d, want 4", got)
	}
}

func TestPHeaderHasITree(t *testing.T) {
	h := PHeader{VBegin: 0, VEnd: PageSize}
	if h.HasITree() {
		t.Fatal("zero-value Tree must report HasITree() == false")
	}
	h.Tree = mustTree(t, 0, PageSize, []Interval{
		{Begin: 0, End: PageSize, Ref: DataRef{Kind: RefPrivate}},
	})
	if !h.HasITree() {
		t.Fatal("a built Tree must report HasITree() == true")
	}
}

func TestPrivatePagesByBytes(t *testing.T) {
	if got := PrivatePagesByBytes(3 * PageSize); got != 3 {
		t.Fatalf("PrivatePagesByBytes(3*PageSize) = %d, want 3", got)
	}
}
