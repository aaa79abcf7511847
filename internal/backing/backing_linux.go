// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

//go:build linux

package backing

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mmapReader serves ReadPage out of a read-only mapping of the whole
// file, avoiding a read syscall per page at the cost of holding the
// mapping open for the reader's lifetime.
type mmapReader struct {
	f    *os.File
	data []byte
}

// OpenMapped opens path and maps it read-only. Callers that expect to
// resolve many Shared pages against the same backing file should prefer
// this over Open.
func OpenMapped(path string) (Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("backing: open %s: %w", path, err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("backing: stat %s: %w", path, err)
	}
	if fi.Size() == 0 {
		return &mmapReader{f: f, data: nil}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(fi.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("backing: mmap %s: %w", path, err)
	}

	return &mmapReader{f: f, data: data}, nil
}

func (r *mmapReader) ReadPage(offset uint64, buf []byte) error {
	end := offset + uint64(len(buf))
	if end > uint64(len(r.data)) {
		return fmt.Errorf("backing: read past end of mapping at offset %d", offset)
	}
	copy(buf, r.data[offset:end])
	return nil
}

func (r *mmapReader) Close() error {
	if r.data != nil {
		if err := unix.Munmap(r.data); err != nil {
			return err
		}
	}
	return r.f.Close()
}
