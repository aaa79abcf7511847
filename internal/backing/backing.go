// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package backing serves Shared-provenance page reads against a JIF
// PHeader's backing file. The default path uses os.File.ReadAt; on
// Linux, OpenMapped additionally memory-maps the file so repeated page
// reads avoid a read syscall per page, grounded on golang.org/x/sys/unix
// (seen in the retrieval pack's xyproto-vibe67, which uses the same
// module for direct syscalls around its own codegen backend).
package backing

import (
	"fmt"
	"os"
)

// Reader serves page-sized reads from a backing file at an absolute
// file offset.
type Reader interface {
	ReadPage(offset uint64, buf []byte) error
	Close() error
}

// fileReader is the portable default: plain ReadAt, no mapping.
type fileReader struct {
	f *os.File
}

// Open opens path for page reads via ReadAt.
func Open(path string) (Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("backing: open %s: %w", path, err)
	}
	return &fileReader{f: f}, nil
}

func (r *fileReader) ReadPage(offset uint64, buf []byte) error {
	_, err := r.f.ReadAt(buf, int64(offset))
	return err
}

func (r *fileReader) Close() error {
	return r.f.Close()
}
