// Copyright 2026 © The Proteus Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/jllopis/proteus/pkg/compiler"
	"github.com/jllopis/proteus/pkg/config"
)

func runBuild(ctx context.Context, global globalFlags, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	targetName := fs.String("target", cfg.Build.DefaultTarget, "Target host (see 'proteus targets')")
	outDir := fs.String("out", cfg.Build.OutDir, "Output directory (default <dir>/dist/<target>)")
	dryRun := fs.Bool("dry-run", false, "Resolve and compile without writing files")
	fixDescriptions := fs.Bool("fix-descriptions", false, "Repair unquoted frontmatter descriptions in place")
	if err := fs.Parse(args); err != nil {
		fatal(err)
	}
	dir := "."
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}

	ctx, cancel := context.WithTimeout(ctx, global.Timeout)
	defer cancel()

	result, err := compiler.Compile(ctx, compiler.Options{
		Target:              *targetName,
		SourceDir:           dir,
		OutDir:              *outDir,
		DryRun:              *dryRun,
		FixYAMLDescriptions: *fixDescriptions,
	})
	if err != nil {
		fatal(err)
	}

	if global.JSON {
		printJSON(result)
		return
	}

	fmt.Printf("Build %s for %s\n", result.BuildID, result.Target)
	if result.Written {
		fmt.Printf("Wrote %d file(s) to %s\n", len(result.Files), result.OutDir)
	} else {
		fmt.Printf("Dry run: %d file(s) would be written\n", len(result.Files))
	}
	for _, f := range result.Files {
		fmt.Printf("  %s\n", f)
	}
	if len(result.Warnings) > 0 {
		fmt.Printf("\n%d warning(s):\n", len(result.Warnings))
		for _, w := range result.Warnings {
			fmt.Printf("  %s\n", w.String())
		}
	}
	if len(result.Compensations) > 0 {
		fmt.Printf("\n%d compensation requirement(s):\n", len(result.Compensations))
		writer := newTabWriter()
		writeRow(writer, "FEATURE", "COMPONENT", "REASON")
		for _, c := range result.Compensations {
			writeRow(writer, c.Feature, c.Component, c.Reason)
		}
		_ = writer.Flush()
		fmt.Println("\nRun 'proteus serve' alongside the emitted files to fulfill them.")
	}
}
