// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package jif

// PageSize is the page granularity the whole format operates on. Every
// virtual range, interval boundary, and private-data offset must be a
// multiple of PageSize.
const PageSize = 4096

// U64Max and U32Max are the wire sentinel values: U64Max marks an empty
// interval slot (ibegin == iend == U64Max), U32Max marks "no backing
// file" in a PHeader record.
const (
	U64Max = ^uint64(0)
	U32Max = ^uint32(0)
)

// pageAlign reports whether v is a multiple of PageSize.
func pageAlign(v uint64) bool {
	return v%PageSize == 0
}

// pageRoundUp rounds v up to the next multiple of PageSize.
func pageRoundUp(v uint64) uint64 {
	return (v + PageSize - 1) &^ (PageSize - 1)
}

// pageCount returns the number of pages spanned by [begin, end).
func pageCount(begin, end uint64) uint64 {
	return (end - begin) / PageSize
}

// rangesOverlap reports whether [aBegin, aEnd) and [bBegin, bEnd) share
// any address.
func rangesOverlap(aBegin, aEnd, bBegin, bEnd uint64) bool {
	return aBegin < bEnd && bBegin < aEnd
}

// rangeContains reports whether [innerBegin, innerEnd) lies entirely
// inside [outerBegin, outerEnd).
func rangeContains(outerBegin, outerEnd, innerBegin, innerEnd uint64) bool {
	return innerBegin >= outerBegin && innerEnd <= outerEnd
}
