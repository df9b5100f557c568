// Copyright 2026 © The Proteus Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/jllopis/proteus/pkg/compiler"
)

var targetSummaries = map[string]string{
	"claude": "Claude Code: native skills, commands, agents, hooks and permissions",
	"cursor": "Cursor: rule documents; hooks and tools ride the bridge",
	"roo":    "Roo: custom modes with capability groups; hooks and tools ride the bridge",
}

func runTargets(global globalFlags) {
	names := compiler.DefaultRegistry().Names()

	if global.JSON {
		printJSON(names)
		return
	}

	writer := newTabWriter()
	writeRow(writer, "TARGET", "SUMMARY")
	for _, name := range names {
		writeRow(writer, name, targetSummaries[name])
	}
	_ = writer.Flush()
	fmt.Println("\nPick one with 'proteus build --target <name>'.")
}
