// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package jif

import (
	"cmp"
	"slices"
)

// JIF is the materialized in-memory model of a Junction Image: an
// ordered list of PHeaders, an ordering section, a string table, and a
// private-data blob. A JIF value is exclusively owned by one holder;
// there is no sharing across JIF instances (§5, §9) and no locking
// discipline is provided.
type JIF struct {
	PHeaders []PHeader
	Ord      Ord
	Strings  StringTable

	// Data is the private-data blob; Private data-refs are byte offsets
	// into it, page-aligned, with length equal to the covering
	// interval's virtual length.
	Data []byte
}

// New returns an empty, ready-to-use JIF.
func New() *JIF {
	return &JIF{}
}

// Validate checks the whole-JIF invariants from §3 that span multiple
// PHeaders: pairwise-disjoint, vbegin-sorted ranges, and that every
// Private data-ref lies within Data and is page-aligned. It also checks
// each PHeader's own range (vbegin < vend, page-aligned) and the Ord
// chunks' PHeader indices and page ranges. ITree interval alignment,
// containment and disjointness are checked only when a tree is built
// with [BuildFromIntervals]; neither Validate nor [Materialize] checks
// them for intervals read from a file.
//
// Validate returns a fatal error for overlap, invalid PHeader ranges and
// out-of-bounds data refs, and folds sortedness and Ord chunk
// violations into the returned ValidationReport rather than failing
// outright (§7).
func (j *JIF) Validate() (*ValidationReport, error) {
	report := &ValidationReport{}

	for i := 1; i < len(j.PHeaders); i++ {
		if j.PHeaders[i].VBegin < j.PHeaders[i-1].VBegin {
			report.add(UnsortedPHeaders, i, "vbegin decreases")
		}
	}

	// Pairwise disjointness must hold regardless of table order (§3), so
	// check it against a copy sorted by VBegin: for half-open ranges,
	// disjointness of every adjacent pair in VBegin order implies
	// disjointness of every pair, not just adjacent ones.
	byVBegin := append([]PHeader(nil), j.PHeaders...)
	slices.SortFunc(byVBegin, func(a, b PHeader) int { return cmp.Compare(a.VBegin, b.VBegin) })
	for i := 1; i < len(byVBegin); i++ {
		prev, cur := &byVBegin[i-1], &byVBegin[i]
		if rangesOverlap(prev.VBegin, prev.VEnd, cur.VBegin, cur.VEnd) {
			return report, structErr(ErrOverlappingRanges, "pheader table")
		}
	}

	for i := range j.PHeaders {
		h := &j.PHeaders[i]
		if h.VBegin >= h.VEnd {
			return report, structErr(ErrInvalidRange, "pheader range")
		}
		if !pageAlign(h.VBegin) || !pageAlign(h.VEnd) {
			return report, structErr(ErrRangeNotPageAligned, "pheader range")
		}
		for _, node := range h.Tree.Nodes {
			for _, iv := range node.Intervals {
				if iv.IsSentinel() || iv.Ref.Kind != RefPrivate {
					continue
				}
				length := iv.End - iv.Begin
				if iv.Ref.Offset+length > uint64(len(j.Data)) {
					return report, structErr(ErrDataRefOutOfBounds, "private interval")
				}
				if !pageAlign(iv.Ref.Offset) {
					return report, structErr(ErrDataRefOutOfBounds, "private interval offset")
				}
			}
		}
	}

	for i := range j.Ord.Chunks {
		c := &j.Ord.Chunks[i]
		if c.PHeaderIndex < 0 || c.PHeaderIndex >= len(j.PHeaders) {
			report.add(OrdOutOfRange, i, "pheader index out of range")
			continue
		}
		h := &j.PHeaders[c.PHeaderIndex]
		last := uint64(c.PageOffset+c.NPages) * PageSize
		if last > h.NPages()*PageSize {
			report.add(OrdOutOfRange, i, "page range out of range")
			continue
		}
		if c.NPages > 1 {
			report.add(MultiPageOrdChunk, i, "chunk spans more than one page")
		}
	}

	return report, nil
}

// Stats aggregates PageStats across every PHeader.
func (j *JIF) Stats() PageStats {
	var total PageStats
	for i := range j.PHeaders {
		s := j.PHeaders[i].Stats()
		total.Zero += s.Zero
		total.Private += s.Private
		total.Shared += s.Shared
	}
	return total
}
