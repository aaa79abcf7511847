// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package wire provides the little-endian fixed-width field helpers
// used by the JIF codec, grounded on the same encoding/binary idiom as
// the on-disk B-tree and WAL formats in the retrieval pack
// (askorykh-goDB's btree/file.go, ClusterCockpit/cc-backend's
// walCheckpoint.go).
package wire

import "encoding/binary"

// PutU64 appends the little-endian encoding of v to buf.
func PutU64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

// PutU32 appends the little-endian encoding of v to buf.
func PutU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

// PutU8 appends v to buf.
func PutU8(buf []byte, v uint8) []byte {
	return append(buf, v)
}

// GetU64 decodes a little-endian uint64 at the start of b.
func GetU64(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}

// GetU32 decodes a little-endian uint32 at the start of b.
func GetU32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}
