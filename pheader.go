// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package jif

import "iter"

// Prot is a PHeader's protection bitmask.
type Prot uint8

const (
	ProtRead Prot = 1 << iota
	ProtWrite
	ProtExec
)

func (p Prot) String() string {
	s := [3]byte{'-', '-', '-'}
	if p&ProtRead != 0 {
		s[0] = 'R'
	}
	if p&ProtWrite != 0 {
		s[1] = 'W'
	}
	if p&ProtExec != 0 {
		s[2] = 'X'
	}
	return string(s[:])
}

// BackingRef is a PHeader's optional external-file reference: the
// backing file is named by PathOffset into the owning JIF's string
// table, and ref addressing starts at RefOffset within that file.
type BackingRef struct {
	PathOffset uint32
	RefOffset  uint64
}

// PHeader describes one virtual memory area: its range, protection,
// optional backing file, and the ITree classifying every page inside
// the range.
type PHeader struct {
	VBegin uint64
	VEnd   uint64
	Prot   Prot

	// Backing is nil when the PHeader has no associated file; uncovered
	// ranges then default to Zero instead of Shared (§3).
	Backing *BackingRef

	Tree ITree
}

// HasBacking reports whether the PHeader names a backing file.
func (h *PHeader) HasBacking() bool {
	return h.Backing != nil
}

// defaultRef is the provenance implied for any page not covered by an
// explicit interval (§3 invariant iii).
func (h *PHeader) defaultRef() DataRef {
	if h.HasBacking() {
		return DataRef{Kind: RefShared}
	}
	return DataRef{Kind: RefZero}
}

// Resolve returns the provenance of the page containing vaddr, which
// must lie in [VBegin, VEnd).
func (h *PHeader) Resolve(vaddr uint64) DataRef {
	ref := h.Tree.Resolve(vaddr, h.defaultRef())
	if ref.Kind == RefShared && h.HasBacking() {
		return DataRef{Kind: RefShared, Offset: h.Backing.RefOffset + (vaddr - h.VBegin)}
	}
	return ref
}

// Pages iterates every page in the PHeader's range with its resolved
// provenance, in ascending virtual-address order.
func (h *PHeader) Pages() iter.Seq2[uint64, DataRef] {
	return h.Tree.PageProvenance(h.VBegin, h.VEnd, h.defaultRef())
}

// PageStats summarizes a PHeader's page provenance counts.
type PageStats struct {
	Zero    uint64
	Private uint64
	Shared  uint64
}

// Stats walks the PHeader's pages once and tallies provenance classes.
func (h *PHeader) Stats() PageStats {
	var s PageStats
	for _, ref := range h.Pages() {
		switch ref.Kind {
		case RefZero:
			s.Zero++
		case RefPrivate:
			s.Private++
		case RefShared:
			s.Shared++
		}
	}
	return s
}

// PrivatePagesByBytes returns dataSize / PageSize, the page count implied
// by a private-data region's byte length (§4.3).
func PrivatePagesByBytes(dataSize uint64) uint64 {
	return dataSize / PageSize
}

// NPages returns the number of pages spanned by the PHeader's range.
func (h *PHeader) NPages() uint64 {
	return pageCount(h.VBegin, h.VEnd)
}

// HasITree reports whether a non-trivial interval tree has been built
// for this PHeader.
func (h *PHeader) HasITree() bool {
	return len(h.Tree.Nodes) > 0
}
