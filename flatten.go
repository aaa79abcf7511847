// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package jif

// Flatten walks a materialized JIF and assigns section offsets in the
// fixed order from §4.6 "Flatten (write path)": header, PHeader table,
// ITree node table, Ord chunk table, string arena, private-data blob.
// The returned RawJIF's header is fully back-patched.
func Flatten(j *JIF) (*RawJIF, error) {
	raw := &RawJIF{}

	raw.PHeaders = make([]rawPHeader, len(j.PHeaders))
	for i, h := range j.PHeaders {
		rp := rawPHeader{
			VBegin:          h.VBegin,
			VEnd:            h.VEnd,
			ITreeNodeOffset: uint32(len(raw.ITreeNodes)),
			ITreeNodeCount:  uint32(len(h.Tree.Nodes)),
			PathnameOffset:  U32Max,
			Prot:            uint8(h.Prot),
		}
		if h.HasBacking() {
			rp.RefOffset = h.Backing.RefOffset
			rp.PathnameOffset = h.Backing.PathOffset
		}
		raw.PHeaders[i] = rp
		raw.ITreeNodes = append(raw.ITreeNodes, h.Tree.Nodes...)
	}

	raw.OrdChunks = append([]OrdChunk(nil), j.Ord.Chunks...)
	raw.Strings = j.Strings.Bytes()
	raw.Data = j.Data

	off := uint64(headerSize)

	pheadersOff := off
	off += uint64(len(raw.PHeaders)) * pheaderStride

	itreeOff := off
	off += uint64(len(raw.ITreeNodes)) * nodeStride

	ordOff := off
	off += uint64(len(raw.OrdChunks)) * ordChunkStride

	stringsOff := off
	off += uint64(len(raw.Strings))

	dataOff := pageRoundUp(off)

	raw.Header = rawHeader{
		Magic:   Magic,
		Version: FormatVersion,
	}
	raw.Header.Sections[sectionPHeaders] = sectionRef{Offset: pheadersOff, Size: uint64(len(raw.PHeaders)) * pheaderStride}
	raw.Header.Sections[sectionITreeNodes] = sectionRef{Offset: itreeOff, Size: uint64(len(raw.ITreeNodes)) * nodeStride}
	raw.Header.Sections[sectionOrdChunks] = sectionRef{Offset: ordOff, Size: uint64(len(raw.OrdChunks)) * ordChunkStride}
	raw.Header.Sections[sectionStrings] = sectionRef{Offset: stringsOff, Size: uint64(len(raw.Strings))}
	raw.Header.Sections[sectionData] = sectionRef{Offset: dataOff, Size: uint64(len(raw.Data))}

	return raw, nil
}
