// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Command jifdump is a thin illustration of the jif library, not an
// implementation of the readjif/jiftool/cmpjif/timejif CLIs described in
// spec §6.3 — those stay out of scope per spec §1. It reads a JIF file
// and prints one selector's value.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/junction-vm/jif"
	"github.com/junction-vm/jif/query"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: jifdump <file.jif> <selector>\n")
		os.Exit(2)
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatalf("jifdump: %v", err)
	}
	defer f.Close()

	j, report, err := jif.ReadAll(f)
	if err != nil {
		log.Fatalf("jifdump: %v", err)
	}
	if !report.OK() {
		fmt.Fprint(os.Stderr, report.String())
	}

	out, err := query.Select(j, os.Args[2])
	if err != nil {
		log.Fatalf("jifdump: %v", err)
	}
	fmt.Print(out)
}
