// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package query implements a Go-native reading of the readjif selector
// grammar from spec §6.3 (jif[.field], pheader[range][.field],
// ord[range][.len], itrees[range][.len], strings), so that the CLI
// surfaces the spec describes have a concrete library underpinning even
// though the CLIs themselves stay out of scope (spec §1).
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/junction-vm/jif"
)

// selRange is an inclusive-exclusive [start, end) index range, or nil
// for "no range given" (meaning "all").
type selRange struct {
	start, end int
}

// selector is a parsed grammar element: base ("jif", "pheader", "ord",
// "itrees", "strings"), an optional index range, and an optional
// dotted field.
type selector struct {
	base    string
	rng     *selRange
	field   string
	lenOnly bool
}

// parse parses one selector string. `.len` is incompatible with
// `[range]`, matching the field-compatibility rule named in spec §6.3.
func parse(sel string) (*selector, error) {
	s := &selector{}

	base := sel
	if i := strings.IndexByte(base, '['); i >= 0 {
		close := strings.IndexByte(base, ']')
		if close < i {
			return nil, fmt.Errorf("query: unterminated range in %q", sel)
		}
		rngStr := base[i+1 : close]
		r, err := parseRange(rngStr)
		if err != nil {
			return nil, err
		}
		s.rng = r
		s.base = base[:i]
		base = base[close+1:]
	} else if i := strings.IndexByte(base, '.'); i >= 0 {
		s.base = base[:i]
		base = base[i:]
	} else {
		s.base = base
		base = ""
	}

	if strings.HasPrefix(base, ".") {
		field := base[1:]
		if field == "len" {
			if s.rng != nil {
				return nil, fmt.Errorf("query: .len is incompatible with a [range] in %q", sel)
			}
			s.lenOnly = true
		} else {
			s.field = field
		}
	}

	switch s.base {
	case "jif", "pheader", "ord", "itrees", "strings":
	default:
		return nil, fmt.Errorf("query: unknown selector base %q", s.base)
	}

	return s, nil
}

func parseRange(s string) (*selRange, error) {
	if s == "" {
		return &selRange{start: 0, end: -1}, nil
	}
	parts := strings.SplitN(s, ":", 2)
	start, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("query: bad range start %q: %w", s, err)
	}
	if len(parts) == 1 {
		return &selRange{start: start, end: start + 1}, nil
	}
	end, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("query: bad range end %q: %w", s, err)
	}
	return &selRange{start: start, end: end}, nil
}

// Select evaluates sel against j and returns a human-readable rendering
// of the result, the way readjif would print it.
func Select(j *jif.JIF, sel string) (string, error) {
	s, err := parse(sel)
	if err != nil {
		return "", err
	}

	switch s.base {
	case "jif":
		return selectJIF(j, s)
	case "pheader":
		return selectPHeader(j, s)
	case "ord":
		return selectOrd(j, s)
	case "itrees":
		return selectITrees(j, s)
	case "strings":
		return selectStrings(j)
	default:
		return "", fmt.Errorf("query: unknown selector base %q", s.base)
	}
}

func selectJIF(j *jif.JIF, s *selector) (string, error) {
	if s.lenOnly {
		return strconv.Itoa(len(j.PHeaders)), nil
	}
	switch s.field {
	case "", "pheaders":
		return strconv.Itoa(len(j.PHeaders)), nil
	case "stats":
		st := j.Stats()
		return fmt.Sprintf("zero=%d private=%d shared=%d", st.Zero, st.Private, st.Shared), nil
	default:
		return "", fmt.Errorf("query: jif has no field %q", s.field)
	}
}

func resolveRange(r *selRange, n int) (int, int) {
	if r == nil {
		return 0, n
	}
	start, end := r.start, r.end
	if end < 0 || end > n {
		end = n
	}
	if start < 0 {
		start = 0
	}
	if start > end {
		start = end
	}
	return start, end
}

func selectPHeader(j *jif.JIF, s *selector) (string, error) {
	start, end := resolveRange(s.rng, len(j.PHeaders))
	if s.lenOnly {
		return strconv.Itoa(end - start), nil
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		h := &j.PHeaders[i]
		switch s.field {
		case "", "range":
			fmt.Fprintf(&b, "[%x,%x)\n", h.VBegin, h.VEnd)
		case "prot":
			fmt.Fprintf(&b, "%s\n", h.Prot)
		case "pages":
			fmt.Fprintf(&b, "%d\n", h.NPages())
		default:
			return "", fmt.Errorf("query: pheader has no field %q", s.field)
		}
	}
	return b.String(), nil
}

func selectOrd(j *jif.JIF, s *selector) (string, error) {
	chunks := j.Ord.Iter()
	start, end := resolveRange(s.rng, len(chunks))
	if s.lenOnly {
		return strconv.Itoa(end - start), nil
	}
	var b strings.Builder
	for i := start; i < end; i++ {
		fmt.Fprintln(&b, chunks[i].String())
	}
	return b.String(), nil
}

func selectITrees(j *jif.JIF, s *selector) (string, error) {
	start, end := resolveRange(s.rng, len(j.PHeaders))
	if s.lenOnly {
		total := 0
		for i := start; i < end; i++ {
			total += j.PHeaders[i].Tree.NumIntervals()
		}
		return strconv.Itoa(total), nil
	}
	var b strings.Builder
	for i := start; i < end; i++ {
		fmt.Fprintf(&b, "pheader[%d]: %d intervals, %d nodes\n",
			i, j.PHeaders[i].Tree.NumIntervals(), len(j.PHeaders[i].Tree.Nodes))
	}
	return b.String(), nil
}

func selectStrings(j *jif.JIF) (string, error) {
	var b strings.Builder
	for off, path := range j.Strings.Iter() {
		fmt.Fprintf(&b, "%d: %s\n", off, path)
	}
	return b.String(), nil
}
