// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package jif

import (
	"bytes"
	"iter"
)

// StringTable is an append-only byte arena of NUL-terminated paths.
// Offsets are stable once assigned. The zero value is an empty table
// ready to use.
type StringTable struct {
	arena []byte
}

// Intern returns the offset of path within the arena, appending it if not
// already present. Interning is idempotent: calling Intern twice with the
// same path returns the same offset and never duplicates the entry.
func (s *StringTable) Intern(path string) uint32 {
	if off, ok := s.find(path); ok {
		return off
	}
	off := uint32(len(s.arena))
	s.arena = append(s.arena, path...)
	s.arena = append(s.arena, 0)
	return off
}

func (s *StringTable) find(path string) (uint32, bool) {
	needle := append([]byte(path), 0)
	for start := 0; start < len(s.arena); {
		idx := bytes.Index(s.arena[start:], needle)
		if idx < 0 {
			break
		}
		idx += start
		// Guard against matching a suffix of a longer string: the byte
		// preceding idx must be a NUL or the start of the arena.
		if idx == 0 || s.arena[idx-1] == 0 {
			return uint32(idx), true
		}
		start = idx + 1
	}
	return 0, false
}

// Get resolves offset to its NUL-terminated path. It returns
// ErrStringNotTerminated if no NUL byte is found before the end of the
// arena.
func (s *StringTable) Get(offset uint32) (string, error) {
	if int(offset) > len(s.arena) {
		return "", structErr(ErrPathOutOfRange, "string offset")
	}
	end := bytes.IndexByte(s.arena[offset:], 0)
	if end < 0 {
		return "", structErr(ErrStringNotTerminated, "string arena")
	}
	return string(s.arena[offset : int(offset)+end]), nil
}

// Iter yields every (offset, path) pair stored in the arena, in
// insertion order.
func (s *StringTable) Iter() iter.Seq2[uint32, string] {
	return func(yield func(uint32, string) bool) {
		off := uint32(0)
		for int(off) < len(s.arena) {
			end := bytes.IndexByte(s.arena[off:], 0)
			if end < 0 {
				return
			}
			path := string(s.arena[off : int(off)+end])
			if !yield(off, path) {
				return
			}
			off += uint32(end) + 1
		}
	}
}

// Bytes returns the arena verbatim, as written to a JIF's strings
// section.
func (s *StringTable) Bytes() []byte {
	return s.arena
}

// StringTableFromBytes wraps a raw strings section as a StringTable for
// read-only access; further Intern calls still append correctly.
func StringTableFromBytes(b []byte) *StringTable {
	return &StringTable{arena: append([]byte(nil), b...)}
}

// Len returns the size in bytes of the arena.
func (s *StringTable) Len() int {
	return len(s.arena)
}
