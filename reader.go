// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package jif

import (
	"bytes"
	"io"

	"github.com/junction-vm/jif/internal/wire"
)

// ReadOption configures [Read].
type ReadOption func(*readConfig)

type readConfig struct {
	strict bool
}

// Strict causes Read to return the first recoverable error as a fatal
// one instead of collecting it in the returned report (§6.2 "a strict
// variant that fails on any recoverable error").
func Strict() ReadOption {
	return func(c *readConfig) { c.strict = true }
}

// Read parses a JIF byte stream end to end: decode the raw form (§4.7
// steps 1-3), materialize it, then run structural validation on the
// materialized value. Fatal errors abort and return a nil JIF;
// recoverable ones are returned in the ValidationReport alongside the
// materialized value.
func Read(data []byte, opts ...ReadOption) (*JIF, *ValidationReport, error) {
	cfg := readConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	raw, _, err := decodeRaw(data)
	if err != nil {
		return nil, nil, err
	}

	j, err := Materialize(raw)
	if err != nil {
		return nil, nil, err
	}

	report, err := j.Validate()
	if err != nil {
		return nil, nil, err
	}

	if cfg.strict && !report.OK() {
		return nil, nil, structErr(report.Errors[0], "strict mode")
	}

	return j, report, nil
}

// decodeRaw implements §4.7 steps 1-3: verify magic/version/section
// table, then slice out each section at its declared offset, rejecting
// anything that would read past the end of input.
func decodeRaw(data []byte) (*RawJIF, *ValidationReport, error) {
	if len(data) < headerSize {
		return nil, nil, structErr(ErrTruncated, "header")
	}

	var magic [4]byte
	copy(magic[:], data[:4])
	if !bytes.Equal(magic[:], Magic[:]) {
		return nil, nil, structErr(ErrBadMagic, "header")
	}
	version := wire.GetU32(data[4:8])
	if version != FormatVersion {
		return nil, nil, structErr(ErrUnsupportedVersion, "header")
	}

	raw := &RawJIF{Header: rawHeader{Magic: magic, Version: version}}
	pos := 8
	for i := 0; i < numSections; i++ {
		raw.Header.Sections[i] = sectionRef{
			Offset: wire.GetU64(data[pos:]),
			Size:   wire.GetU64(data[pos+8:]),
		}
		pos += 16
	}

	section := func(idx int) ([]byte, error) {
		s := raw.Header.Sections[idx]
		end := s.Offset + s.Size
		if end > uint64(len(data)) || end < s.Offset {
			return nil, structErr(ErrSectionOutOfBounds, "section")
		}
		return data[s.Offset:end], nil
	}

	pheadersBytes, err := section(sectionPHeaders)
	if err != nil {
		return nil, nil, err
	}
	if len(pheadersBytes)%pheaderStride != 0 {
		return nil, nil, structErr(ErrTruncated, "pheader table stride mismatch")
	}
	n := len(pheadersBytes) / pheaderStride
	raw.PHeaders = make([]rawPHeader, n)
	for i := 0; i < n; i++ {
		b := pheadersBytes[i*pheaderStride:]
		raw.PHeaders[i] = rawPHeader{
			VBegin:          wire.GetU64(b[0:]),
			VEnd:            wire.GetU64(b[8:]),
			RefOffset:       wire.GetU64(b[16:]),
			ITreeNodeOffset: wire.GetU32(b[24:]),
			ITreeNodeCount:  wire.GetU32(b[28:]),
			PathnameOffset:  wire.GetU32(b[32:]),
			Prot:            b[36],
		}
	}

	nodesBytes, err := section(sectionITreeNodes)
	if err != nil {
		return nil, nil, err
	}
	if len(nodesBytes)%nodeStride != 0 {
		return nil, nil, structErr(ErrTruncated, "itree node table stride mismatch")
	}
	nNodes := len(nodesBytes) / nodeStride
	raw.ITreeNodes = make([]Node, nNodes)
	for i := 0; i < nNodes; i++ {
		b := nodesBytes[i*nodeStride:]
		var node Node
		for s := 0; s < nodeItems; s++ {
			ib := b[s*intervalStride:]
			node.Intervals[s] = Interval{
				Begin: wire.GetU64(ib[0:]),
				End:   wire.GetU64(ib[8:]),
				Ref: DataRef{
					Kind:   RefKind(ib[16]),
					Offset: wire.GetU64(ib[17:]),
				},
			}
		}
		raw.ITreeNodes[i] = node
	}

	ordBytes, err := section(sectionOrdChunks)
	if err != nil {
		return nil, nil, err
	}
	if len(ordBytes)%ordChunkStride != 0 {
		return nil, nil, structErr(ErrTruncated, "ord chunk table stride mismatch")
	}
	nOrd := len(ordBytes) / ordChunkStride
	raw.OrdChunks = make([]OrdChunk, nOrd)
	for i := 0; i < nOrd; i++ {
		b := ordBytes[i*ordChunkStride:]
		raw.OrdChunks[i] = OrdChunk{
			PHeaderIndex: int(wire.GetU32(b[0:])),
			PageOffset:   wire.GetU32(b[4:]),
			NPages:       wire.GetU32(b[8:]),
		}
	}

	raw.Strings, err = section(sectionStrings)
	if err != nil {
		return nil, nil, err
	}
	raw.Data, err = section(sectionData)
	if err != nil {
		return nil, nil, err
	}

	return raw, &ValidationReport{}, nil
}

// ReadAll reads every byte from r and parses it as a JIF stream.
func ReadAll(r io.Reader, opts ...ReadOption) (*JIF, *ValidationReport, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	return Read(data, opts...)
}
