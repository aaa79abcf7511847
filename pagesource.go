// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package jif

import (
	"fmt"
	"path/filepath"

	"github.com/junction-vm/jif/internal/backing"
)

// PageSource serves the actual PageSize bytes for any page in a JIF,
// resolving Private pages against the JIF's own Data blob and Shared
// pages against their backing file (opened lazily and cached per path,
// so a PHeader whose pages are visited densely pays for one mapping
// instead of one open per page).
//
// A PageSource is not safe for concurrent use.
type PageSource struct {
	j       *JIF
	dir     string
	readers map[string]backing.Reader
}

// NewPageSource returns a PageSource for j. Relative backing paths are
// resolved against dir.
func NewPageSource(j *JIF, dir string) *PageSource {
	return &PageSource{j: j, dir: dir, readers: make(map[string]backing.Reader)}
}

// ReadPage fills buf (which must be PageSize bytes) with the contents of
// the page at vaddr within the PHeader at pheaderIndex.
func (ps *PageSource) ReadPage(pheaderIndex int, vaddr uint64, buf []byte) error {
	if pheaderIndex < 0 || pheaderIndex >= len(ps.j.PHeaders) {
		return fmt.Errorf("jif: pheader index %d out of range", pheaderIndex)
	}
	if len(buf) != PageSize {
		return fmt.Errorf("jif: ReadPage buffer must be %d bytes, got %d", PageSize, len(buf))
	}
	h := &ps.j.PHeaders[pheaderIndex]
	ref := h.Resolve(vaddr)

	switch ref.Kind {
	case RefZero:
		clear(buf)
		return nil
	case RefPrivate:
		end := ref.Offset + PageSize
		if end > uint64(len(ps.j.Data)) {
			return structErr(ErrDataRefOutOfBounds, "page source private read")
		}
		copy(buf, ps.j.Data[ref.Offset:end])
		return nil
	case RefShared:
		r, err := ps.readerFor(h)
		if err != nil {
			return err
		}
		return r.ReadPage(ref.Offset, buf)
	default:
		return fmt.Errorf("jif: unknown ref kind %d", ref.Kind)
	}
}

func (ps *PageSource) readerFor(h *PHeader) (backing.Reader, error) {
	if !h.HasBacking() {
		return nil, fmt.Errorf("jif: pheader has no backing file")
	}
	path, err := ps.j.Strings.Get(h.Backing.PathOffset)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(ps.dir, path)
	}
	if r, ok := ps.readers[path]; ok {
		return r, nil
	}
	r, err := backing.OpenMapped(path)
	if err != nil {
		return nil, err
	}
	ps.readers[path] = r
	return r, nil
}

// Close releases every backing file opened so far.
func (ps *PageSource) Close() error {
	var first error
	for _, r := range ps.readers {
		if err := r.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
