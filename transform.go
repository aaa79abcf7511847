// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package jif

import (
	"cmp"
	"slices"
)

// Normalize sorts j's PHeaders into the canonical VBegin-ascending order
// and remaps every Ord chunk's PHeaderIndex back-reference to match,
// since those references are by index, not pointer (§9). Write calls
// this before Flatten so that a lenient read of out-of-order input
// round-trips through a subsequent write in sorted form (§7, §8
// scenario 6); it is exported so callers can also normalize without
// writing.
func Normalize(j *JIF) {
	n := len(j.PHeaders)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(j.PHeaders[a].VBegin, j.PHeaders[b].VBegin)
	})

	sorted := make([]PHeader, n)
	oldToNew := make([]int, n)
	for newIdx, oldIdx := range order {
		sorted[newIdx] = j.PHeaders[oldIdx]
		oldToNew[oldIdx] = newIdx
	}
	j.PHeaders = sorted

	for i := range j.Ord.Chunks {
		c := &j.Ord.Chunks[i]
		if c.PHeaderIndex >= 0 && c.PHeaderIndex < n {
			c.PHeaderIndex = oldToNew[c.PHeaderIndex]
		}
	}
}

// Rename repoints every PHeader backed by oldPath to newPath. String
// interning ensures no duplicate newPath entry is created if one already
// exists in the string table (§8 scenario 5).
func Rename(j *JIF, oldPath, newPath string) {
	oldOff, found := j.Strings.find(oldPath)
	if !found {
		return
	}
	newOff := j.Strings.Intern(newPath)

	for i := range j.PHeaders {
		h := &j.PHeaders[i]
		if h.HasBacking() && h.Backing.PathOffset == oldOff {
			h.Backing.PathOffset = newOff
		}
	}
}

// AddOrd builds an ordering section from an access log and attaches it
// to j, replacing any existing Ord chunks. It returns the number of log
// entries that fell outside every PHeader and were discarded (§4.5,
// §8 scenario 4).
func AddOrd(j *JIF, entries []AccessEntry) int {
	ord, dropped := BuildOrd(j.PHeaders, entries)
	j.Ord = ord
	return dropped
}
