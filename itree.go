// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package jif

import (
	"cmp"
	"iter"
	"slices"
)

// Fanout is wire-fixed: changing it is a format-breaking change (§9).
// Each node carries up to Fanout-1 intervals and up to Fanout children.
const Fanout = 4

// nodeItems is the number of interval slots per node (Fanout-1).
const nodeItems = Fanout - 1

// RefKind classifies how a range of pages resolves at restore time.
type RefKind uint8

const (
	// RefZero: the range reads as zero-filled.
	RefZero RefKind = iota
	// RefPrivate: the bytes live in the JIF's private-data blob at Offset.
	RefPrivate
	// RefShared: fall through to the owning PHeader's backing-file reference.
	RefShared
)

func (k RefKind) String() string {
	switch k {
	case RefZero:
		return "zero"
	case RefPrivate:
		return "private"
	case RefShared:
		return "shared"
	default:
		return "unknown"
	}
}

// DataRef names the provenance of a page range. Offset is only
// meaningful when Kind is RefPrivate.
type DataRef struct {
	Kind   RefKind
	Offset uint64
}

// at returns the DataRef specialized for a vaddr that lies delta bytes
// past the start of the interval it was found in: for RefPrivate, delta
// is added to Offset; other kinds are unaffected.
func (d DataRef) at(delta uint64) DataRef {
	if d.Kind != RefPrivate {
		return d
	}
	return DataRef{Kind: RefPrivate, Offset: d.Offset + delta}
}

// Interval is a page-aligned, half-open virtual range tagged with its
// provenance. Begin == End == U64Max marks an empty (sentinel) slot in a
// node's interval table; callers should use IsSentinel rather than
// compare directly.
type Interval struct {
	Begin uint64
	End   uint64
	Ref   DataRef
}

var sentinelInterval = Interval{Begin: U64Max, End: U64Max}

// IsSentinel reports whether iv occupies an otherwise-empty slot.
func (iv Interval) IsSentinel() bool {
	return iv.Begin == U64Max && iv.End == U64Max
}

// Node is one breadth-first node of an ITree's implicit B-tree: up to
// nodeItems intervals, increasing, left-padded with real entries and
// right-padded with sentinels. Child c of node n lives at array index
// Fanout*n + c + 1.
type Node struct {
	Intervals [nodeItems]Interval
}

func newSentinelNode() Node {
	n := Node{}
	for i := range n.Intervals {
		n.Intervals[i] = sentinelInterval
	}
	return n
}

// count returns how many of n's slots hold a real (non-sentinel)
// interval. Real entries are always a prefix of the slot array.
func (n Node) count() int {
	for i, iv := range n.Intervals {
		if iv.IsSentinel() {
			return i
		}
	}
	return nodeItems
}

// ITree is a PHeader's interval tree: the ordered collection of nodes
// classifying every page in the PHeader's virtual range as zero,
// private, or shared.
type ITree struct {
	Nodes []Node
}

// NumIntervals returns the number of real (non-sentinel) intervals
// stored across every node.
func (t ITree) NumIntervals() int {
	n := 0
	for _, nd := range t.Nodes {
		n += nd.count()
	}
	return n
}

// BuildFromIntervals constructs an ITree from an unordered list of
// intervals, all expected to fall within [vbegin, vend). It validates
// page alignment, containment, and pairwise disjointness (§4.2), sorts
// by Begin, and lays the result out as a breadth-first B-tree of fanout
// Fanout.
func BuildFromIntervals(vbegin, vend uint64, ivs []Interval) (ITree, error) {
	sorted := append([]Interval(nil), ivs...)
	slices.SortFunc(sorted, func(a, b Interval) int { return cmp.Compare(a.Begin, b.Begin) })

	for i, iv := range sorted {
		if iv.Begin >= iv.End {
			return ITree{}, structErr(ErrInvalidRange, "itree interval")
		}
		if !pageAlign(iv.Begin) || !pageAlign(iv.End) {
			return ITree{}, structErr(ErrRangeNotPageAligned, "itree interval")
		}
		if !rangeContains(vbegin, vend, iv.Begin, iv.End) {
			return ITree{}, structErr(ErrIntervalOutOfRange, "itree interval")
		}
		if i > 0 && rangesOverlap(sorted[i-1].Begin, sorted[i-1].End, iv.Begin, iv.End) {
			return ITree{}, structErr(ErrOverlappingRanges, "itree interval")
		}
	}

	var nodes []Node
	buildNode(0, sorted, &nodes)
	return ITree{Nodes: nodes}, nil
}

// ensureNode grows nodes (sentinel-filled) until index idx is valid.
func ensureNode(nodes *[]Node, idx int) {
	for len(*nodes) <= idx {
		*nodes = append(*nodes, newSentinelNode())
	}
}

// partitionSizes splits n items into parts contiguous groups as evenly
// as possible, front-loading the remainder.
func partitionSizes(n, parts int) []int {
	base, rem := n/parts, n%parts
	sizes := make([]int, parts)
	for i := range sizes {
		sizes[i] = base
		if i < rem {
			sizes[i]++
		}
	}
	return sizes
}

// buildNode recursively lays sorted, validated intervals into the
// breadth-first node array per §4.2: partition the range into Fanout
// balanced segments, promote the last interval of each of the first
// Fanout-1 segments to this node as a separator, and recurse into each
// segment (minus its promoted separator) as a child subtree.
func buildNode(nodeIdx int, items []Interval, nodes *[]Node) {
	ensureNode(nodes, nodeIdx)
	if len(items) == 0 {
		return
	}

	sizes := partitionSizes(len(items), Fanout)
	segs := make([][]Interval, Fanout)
	off := 0
	for i, sz := range sizes {
		segs[i] = items[off : off+sz]
		off += sz
	}

	node := newSentinelNode()
	for s := 0; s < nodeItems; s++ {
		if len(segs[s]) == 0 {
			continue
		}
		node.Intervals[s] = segs[s][len(segs[s])-1]
		segs[s] = segs[s][:len(segs[s])-1]
	}
	(*nodes)[nodeIdx] = node

	for s := 0; s < Fanout; s++ {
		if len(segs[s]) == 0 {
			continue
		}
		childIdx := Fanout*nodeIdx + s + 1
		buildNode(childIdx, segs[s], nodes)
	}
}

// Resolve performs the lookup described in §4.2: scan the current
// node's real intervals in order, descending into the appropriate child
// on a miss. defaultRef is returned unspecialized when vaddr falls
// outside every interval (implicit Shared-if-backed, else Zero — the
// caller supplies the already-resolved default).
func (t ITree) Resolve(vaddr uint64, defaultRef DataRef) DataRef {
	nodeIdx := 0
	for nodeIdx < len(t.Nodes) {
		node := t.Nodes[nodeIdx]
		n := node.count()

		i := 0
		for i < n && vaddr >= node.Intervals[i].End {
			i++
		}
		if i < n && vaddr >= node.Intervals[i].Begin {
			iv := node.Intervals[i]
			return iv.Ref.at(vaddr - iv.Begin)
		}

		nodeIdx = Fanout*nodeIdx + i + 1
	}
	return defaultRef
}

// PageProvenance iterates every page in [vbegin, vend) in ascending
// order, yielding its resolved provenance. Used by the deduper and by
// page-counting queries (§4.2).
func (t ITree) PageProvenance(vbegin, vend uint64, defaultRef DataRef) iter.Seq2[uint64, DataRef] {
	return func(yield func(uint64, DataRef) bool) {
		for page := vbegin; page < vend; page += PageSize {
			if !yield(page, t.Resolve(page, defaultRef)) {
				return
			}
		}
	}
}
