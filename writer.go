// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package jif

import (
	"io"

	"github.com/junction-vm/jif/internal/wire"
)

// Write lays out j (via [Flatten]) and emits it to sink as a JIF byte
// stream (§4.8). The layout pass fully determines output size; emission
// never seeks backward except implicitly, by building the fixed-size
// header before any section.
//
// Write first normalizes j's PHeader order (see [Normalize]), so a
// lenient read of out-of-order input followed by a write always emits
// the canonical VBegin-sorted form (§7, §8 scenario 6).
func Write(j *JIF, sink io.Writer) error {
	Normalize(j)
	raw, err := Flatten(j)
	if err != nil {
		return err
	}
	buf := encodeRaw(raw)
	_, err = sink.Write(buf)
	return err
}

func encodeRaw(raw *RawJIF) []byte {
	buf := make([]byte, 0, headerSize+len(raw.Strings)+len(raw.Data)+1024)

	buf = append(buf, raw.Header.Magic[:]...)
	buf = wire.PutU32(buf, raw.Header.Version)
	for _, s := range raw.Header.Sections {
		buf = wire.PutU64(buf, s.Offset)
		buf = wire.PutU64(buf, s.Size)
	}

	for _, p := range raw.PHeaders {
		buf = wire.PutU64(buf, p.VBegin)
		buf = wire.PutU64(buf, p.VEnd)
		buf = wire.PutU64(buf, p.RefOffset)
		buf = wire.PutU32(buf, p.ITreeNodeOffset)
		buf = wire.PutU32(buf, p.ITreeNodeCount)
		buf = wire.PutU32(buf, p.PathnameOffset)
		buf = wire.PutU8(buf, p.Prot)
		buf = append(buf, make([]byte, 7)...) // reserved, always zero
	}

	for _, n := range raw.ITreeNodes {
		for _, iv := range n.Intervals {
			buf = wire.PutU64(buf, iv.Begin)
			buf = wire.PutU64(buf, iv.End)
			buf = wire.PutU8(buf, uint8(iv.Ref.Kind))
			payload := uint64(0)
			if iv.Ref.Kind == RefPrivate {
				payload = iv.Ref.Offset
			}
			buf = wire.PutU64(buf, payload)
		}
	}

	for _, c := range raw.OrdChunks {
		buf = wire.PutU32(buf, uint32(c.PHeaderIndex))
		buf = wire.PutU32(buf, c.PageOffset)
		buf = wire.PutU32(buf, c.NPages)
		buf = wire.PutU32(buf, 0) // reserved
	}

	buf = append(buf, raw.Strings...)

	dataOff := raw.Header.Sections[sectionData].Offset
	if pad := int(dataOff) - len(buf); pad > 0 {
		buf = append(buf, make([]byte, pad)...)
	}
	buf = append(buf, raw.Data...)

	return buf
}
