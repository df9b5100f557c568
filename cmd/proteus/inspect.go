// Copyright 2026 © The Proteus Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/jllopis/proteus/pkg/resolver"
)

func runInspect(ctx context.Context, global globalFlags, args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fatal(err)
	}
	dir := "."
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}

	ctx, cancel := context.WithTimeout(ctx, global.Timeout)
	defer cancel()

	res, err := resolver.Resolve(ctx, dir, resolver.Options{})
	if err != nil {
		fatal(err)
	}

	if global.JSON {
		printJSON(res)
		return
	}

	ir := res.IR
	fmt.Printf("%s %s\n", ir.Manifest.Name, ir.Manifest.Version)
	if ir.Manifest.Description != "" {
		fmt.Println(ir.Manifest.Description)
	}
	fmt.Println()

	writer := newTabWriter()
	writeRow(writer, "KIND", "NAME", "DESCRIPTION")
	for _, s := range ir.Skills {
		writeRow(writer, "skill", s.Metadata.Name, s.Metadata.Description)
	}
	for _, ag := range ir.Agents {
		writeRow(writer, "agent", ag.Metadata.Name, ag.Metadata.Description)
	}
	for _, h := range ir.Hooks {
		writeRow(writer, "hook", h.Metadata.Name, fmt.Sprintf("%s: %s", h.Event, h.Metadata.Description))
	}
	for _, t := range ir.Tools {
		writeRow(writer, "tool", t.Metadata.Name, t.Metadata.Description)
	}
	for _, p := range ir.Policies {
		writeRow(writer, "policy", p.Metadata.Name, p.Metadata.Description)
	}
	_ = writer.Flush()

	if len(ir.Rules) > 0 {
		fmt.Printf("\n%d rule document(s)\n", len(ir.Rules))
	}
	if !res.Valid {
		fmt.Printf("\nextension has errors; run 'proteus check %s'\n", dir)
	}
}
