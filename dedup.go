// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package jif

import (
	"bytes"
	"crypto/sha256"
)

// digest is the fixed-size content key used to coalesce identical
// private pages. The spec leaves the choice of digest open — any
// collision-resistant hash suffices as long as it is deterministic
// within a build run (§9) — sha256 is used here; see DESIGN.md for why
// this stays on the standard library rather than a third-party hash.
type digest [sha256.Size]byte

// DedupOption configures a Deduper.
type DedupOption func(*Deduper)

// WithZeroElision controls whether all-zero pages are elided to RefZero
// instead of being stored (and deduplicated) as private pages. Enabled
// by default.
func WithZeroElision(enabled bool) DedupOption {
	return func(d *Deduper) { d.elideZero = enabled }
}

// Deduper is a content-addressed store of private page bytes, keyed by
// digest with exact-byte tie-breaking on collision (§4.4).
type Deduper struct {
	elideZero bool
	index     map[digest]uint64 // digest -> offset into emitted
	emitted   []byte
}

// NewDeduper returns a Deduper with zero-elision enabled by default.
func NewDeduper(opts ...DedupOption) *Deduper {
	d := &Deduper{elideZero: true, index: make(map[digest]uint64)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Insert stores page (which must be exactly PageSize bytes), returning
// the DataRef future readers should use. An all-zero page is elided to
// RefZero when zero-elision is enabled; otherwise equal page contents
// always collapse to the same RefPrivate offset.
func (d *Deduper) Insert(page []byte) DataRef {
	if d.elideZero && isZeroPage(page) {
		return DataRef{Kind: RefZero}
	}

	key := digest(sha256.Sum256(page))
	if off, ok := d.index[key]; ok {
		end := off + uint64(len(page))
		if end <= uint64(len(d.emitted)) && bytes.Equal(d.emitted[off:end], page) {
			return DataRef{Kind: RefPrivate, Offset: off}
		}
	}

	off := uint64(len(d.emitted))
	d.emitted = append(d.emitted, page...)
	if _, ok := d.index[key]; !ok {
		d.index[key] = off
	}
	return DataRef{Kind: RefPrivate, Offset: off}
}

// Finalize returns the concatenated deduplicated data blob and the
// digest-to-offset mapping backing it.
func (d *Deduper) Finalize() ([]byte, map[digest]uint64) {
	return d.emitted, d.index
}

func isZeroPage(page []byte) bool {
	return bytes.Count(page, []byte{0}) == len(page)
}

// BuildITrees rebuilds every PHeader's ITree from its currently
// materialized page provenance, deduplicating private pages through a
// fresh Deduper and replacing j.Data with the resulting blob (§4.4).
//
// PHeaders are visited in index order and pages in ascending virtual
// order, which is what makes the resulting data-blob layout
// deterministic (§4.4 "Determinism").
func BuildITrees(j *JIF, opts ...DedupOption) error {
	dd := NewDeduper(opts...)

	type pending struct {
		phIdx int
		ivs   []Interval
	}
	var work []pending

	for i := range j.PHeaders {
		h := &j.PHeaders[i]
		if h.HasBacking() && uint64(len(j.Data)) < h.Backing.RefOffset {
			return structErr(ErrDataSizeMismatch, "backing ref offset")
		}

		var ivs []Interval
		var runStart uint64
		var runRef, lastRef DataRef
		open := false

		flush := func(end uint64) {
			if !open {
				return
			}
			if runRef.Kind != h.defaultRef().Kind {
				ivs = append(ivs, Interval{Begin: runStart, End: end, Ref: runRef})
			}
			open = false
		}

		for page, ref := range h.Pages() {
			var newRef DataRef
			switch ref.Kind {
			case RefZero:
				newRef = DataRef{Kind: RefZero}
			case RefShared:
				newRef = DataRef{Kind: RefShared}
			case RefPrivate:
				if int(ref.Offset)+PageSize > len(j.Data) {
					return structErr(ErrDataSizeMismatch, "private page offset")
				}
				newRef = dd.Insert(j.Data[ref.Offset : ref.Offset+PageSize])
			}

			if open && coalesces(lastRef, newRef) {
				lastRef = newRef
				continue
			}
			flush(page)
			runStart = page
			runRef = newRef
			lastRef = newRef
			open = true
		}
		flush(h.VEnd)

		work = append(work, pending{phIdx: i, ivs: ivs})
	}

	blob, _ := dd.Finalize()
	j.Data = blob

	for _, w := range work {
		h := &j.PHeaders[w.phIdx]
		tree, err := BuildFromIntervals(h.VBegin, h.VEnd, w.ivs)
		if err != nil {
			return err
		}
		h.Tree = tree
	}
	return nil
}

// coalesces reports whether two adjacent page provenances merge into a
// single run: same kind, and for RefPrivate, contiguous offsets (§4.4).
func coalesces(prev, next DataRef) bool {
	if prev.Kind != next.Kind {
		return false
	}
	if prev.Kind == RefPrivate {
		return next.Offset == prev.Offset+PageSize
	}
	return true
}

// Dedup deduplicates j in place. It is equivalent to BuildITrees and is
// provided as the name used by the library surface (§6.2); both collapse
// equal private pages and are idempotent — a second call never changes
// any PHeader's observed page provenance (§8).
func Dedup(j *JIF, opts ...DedupOption) error {
	return BuildITrees(j, opts...)
}
