// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package jif

import (
	"fmt"
	"strconv"
	"strings"
)

// OrdChunk names a run of consecutive pages, in access order, by the
// PHeader they belong to and their page offset from that PHeader's
// VBegin (§3).
type OrdChunk struct {
	PHeaderIndex int
	PageOffset   uint32 // in pages, from the owning PHeader's VBegin
	NPages       uint32
}

// Ord is the ordered list of access chunks attached to a JIF.
type Ord struct {
	Chunks []OrdChunk
}

// Append adds chunk to the end of the ordering section.
func (o *Ord) Append(chunk OrdChunk) {
	o.Chunks = append(o.Chunks, chunk)
}

// Iter returns the chunks in stored (access) order.
func (o *Ord) Iter() []OrdChunk {
	return o.Chunks
}

// AccessEntry is one parsed line of an access-log trace: a page address
// observed at a point in (unmodeled) time. The log's own timestamp
// format is opaque per §1; only the address and arrival order matter
// here.
type AccessEntry struct {
	Addr uint64
}

// ParseAccessLog parses lines of the form "<usecs>: <hex_addr>" (§4.5).
// Malformed lines are skipped; ParseAccessLog never returns an error
// since a malformed trace line is not itself a structural fault of the
// JIF being built.
func ParseAccessLog(lines []string) []AccessEntry {
	entries := make([]AccessEntry, 0, len(lines))
	for _, line := range lines {
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			continue
		}
		hexPart := strings.TrimSpace(line[idx+1:])
		hexPart = strings.TrimPrefix(hexPart, "0x")
		addr, err := strconv.ParseUint(hexPart, 16, 64)
		if err != nil {
			continue
		}
		entries = append(entries, AccessEntry{Addr: addr})
	}
	return entries
}

// BuildOrd groups access-log entries into Ord chunks (§4.5): entries
// whose address maps to the same PHeader and to contiguous pages are
// coalesced into one chunk; the first occurrence of each (pheader, page)
// pair is kept, later duplicates dropped; entries outside every PHeader
// are counted but discarded. The result preserves first-seen order.
func BuildOrd(pheaders []PHeader, entries []AccessEntry) (Ord, int) {
	type key struct {
		ph   int
		page uint64
	}
	seen := make(map[key]bool)

	var ord Ord
	dropped := 0

	var openPH int = -1
	var openStart uint64
	var openLen uint32

	flush := func() {
		if openPH < 0 {
			return
		}
		ord.Append(OrdChunk{
			PHeaderIndex: openPH,
			PageOffset:   uint32(openStart),
			NPages:       openLen,
		})
		openPH = -1
	}

	for _, e := range entries {
		ph, pageOffset, ok := locatePage(pheaders, e.Addr)
		if !ok {
			dropped++
			continue
		}
		k := key{ph: ph, page: pageOffset}
		if seen[k] {
			continue
		}
		seen[k] = true

		if openPH == ph && openStart+uint64(openLen) == pageOffset {
			openLen++
			continue
		}
		flush()
		openPH = ph
		openStart = pageOffset
		openLen = 1
	}
	flush()

	return ord, dropped
}

// locatePage finds the PHeader containing addr and returns its index
// along with the containing page's offset (in pages) from VBegin.
func locatePage(pheaders []PHeader, addr uint64) (idx int, pageOffset uint64, ok bool) {
	for i := range pheaders {
		h := &pheaders[i]
		if addr >= h.VBegin && addr < h.VEnd {
			return i, (addr - h.VBegin) / PageSize, true
		}
	}
	return 0, 0, false
}

// SplitMultiPage rewrites ord into a form with no chunk spanning more
// than one page — the fixable-error class named in §3 and §7. Tools
// that must emit the strictly-recoverable wire form call this before
// writing.
func SplitMultiPage(ord Ord) Ord {
	var out Ord
	for _, c := range ord.Chunks {
		for p := uint32(0); p < c.NPages; p++ {
			out.Append(OrdChunk{
				PHeaderIndex: c.PHeaderIndex,
				PageOffset:   c.PageOffset + p,
				NPages:       1,
			})
		}
	}
	return out
}

func (c OrdChunk) String() string {
	return fmt.Sprintf("pheader=%d page=%d n=%d", c.PHeaderIndex, c.PageOffset, c.NPages)
}
