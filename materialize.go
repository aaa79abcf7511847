// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package jif

// Materialize resolves a validated RawJIF into an owned [JIF] (§4.6
// "Materialize (read path)"): each raw PHeader's backing reference is
// resolved against the string table, its ITree nodes are sliced out of
// the global node table, and the private-data blob is attached as-is.
func Materialize(raw *RawJIF) (*JIF, error) {
	j := &JIF{
		Strings: *StringTableFromBytes(raw.Strings),
		Data:    raw.Data,
	}

	j.PHeaders = make([]PHeader, len(raw.PHeaders))
	for i, rp := range raw.PHeaders {
		h := PHeader{
			VBegin: rp.VBegin,
			VEnd:   rp.VEnd,
			Prot:   Prot(rp.Prot),
		}

		if rp.PathnameOffset != U32Max {
			if _, err := j.Strings.Get(rp.PathnameOffset); err != nil {
				return nil, err
			}
			h.Backing = &BackingRef{PathOffset: rp.PathnameOffset, RefOffset: rp.RefOffset}
		}

		start, count := int(rp.ITreeNodeOffset), int(rp.ITreeNodeCount)
		if start+count > len(raw.ITreeNodes) {
			return nil, structErr(ErrSectionOutOfBounds, "itree node slice")
		}
		nodes := make([]Node, count)
		copy(nodes, raw.ITreeNodes[start:start+count])
		h.Tree = ITree{Nodes: nodes}

		j.PHeaders[i] = h
	}

	j.Ord = Ord{Chunks: append([]OrdChunk(nil), raw.OrdChunks...)}

	return j, nil
}
