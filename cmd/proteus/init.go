// Copyright 2026 © The Proteus Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jllopis/proteus/cmd/proteus/scaffold"
)

func runInit(global globalFlags, args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)

	description := fs.String("description", "", "One-line extension description")
	archetype := fs.String("type", "minimal", "Extension archetype: "+strings.Join(scaffold.Archetypes, ", "))
	overwrite := fs.Bool("overwrite", false, "Generate into an existing directory")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: proteus init <directory> [flags]

Scaffold a new extension with the standard layout.

Arguments:
  directory    Target directory; its base name becomes the extension name

Flags:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Archetypes:
  minimal   Manifest, one skill and one rule document (default)
  guarded   Adds a PreToolUse hook and a permission policy
  full      Adds an agent and a tool on top of guarded

Examples:
  proteus init my-extension
  proteus init my-extension --type guarded --description "Guards shell usage"
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: directory argument required")
		fs.Usage()
		os.Exit(1)
	}
	if !scaffold.ValidArchetype(*archetype) {
		fmt.Fprintf(os.Stderr, "Error: invalid --type %q. Valid options: %s\n",
			*archetype, strings.Join(scaffold.Archetypes, ", "))
		os.Exit(1)
	}

	dir := fs.Arg(0)
	absDir, err := filepath.Abs(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid directory path: %v\n", err)
		os.Exit(1)
	}
	if _, err := os.Stat(absDir); err == nil && !*overwrite {
		fmt.Fprintf(os.Stderr, "Error: directory %q already exists. Use --overwrite to generate into it.\n", dir)
		os.Exit(1)
	}

	name := filepath.Base(absDir)
	desc := *description
	if desc == "" {
		desc = "An agent extension."
	}

	fmt.Printf("Creating extension %q (%s)...\n", name, *archetype)
	if err := scaffold.Generate(absDir, scaffold.Options{
		Name:        name,
		Description: desc,
		Archetype:   *archetype,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating extension: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Printf("  cd %s\n", dir)
	fmt.Println("  proteus check")
	fmt.Println("  proteus build --target claude")
}
