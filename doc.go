// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package jif implements the Junction Image Format (JIF) codec and
// transformation core: parsing a JIF byte stream into an in-memory model,
// validating its structural invariants, transforming it (page
// deduplication, interval-tree construction, access-ordering), and
// writing it back out.
//
// A JIF describes a process memory image as an ordered list of virtual
// memory areas ([PHeader]), each carrying protection bits, an optional
// backing-file reference, and an interval tree ([ITree]) that classifies
// every page in its range as zero-filled, privately held in the image's
// data blob, or shared from the backing file.
//
// The package works with two parallel representations of the same data:
// the raw form ([RawJIF]) mirrors the file's byte layout with unresolved
// offsets, and the materialized form ([JIF]) resolves those offsets into
// owned Go values. [Read] produces a materialized JIF; [Write] consumes
// one. Transformations ([BuildITrees], [Dedup], [Rename], [AddOrd])
// operate on the materialized form.
package jif
