// Copyright 2026 © The Proteus Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/jllopis/proteus/pkg/bridge"
	"github.com/jllopis/proteus/pkg/resolver"
)

// runProbe resolves the extension and invokes a single probe
// operation in-process, without standing up the MCP transport. Handy
// for checking what a host would be told before wiring the bridge in.
func runProbe(ctx context.Context, global globalFlags, args []string) {
	fs := flag.NewFlagSet("probe", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Println("Usage: proteus probe [dir] <operation> [key=value ...]")
		fmt.Println("Example: proteus probe . hook-pre-tool-use tool_name=Bash tool_input='rm -rf /'")
	}
	if err := fs.Parse(args); err != nil {
		fatal(err)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		fatal(fmt.Errorf("missing operation name"))
	}

	dir := "."
	rest := fs.Args()
	// A leading argument without '=' that is not an operation name is
	// the extension directory.
	if len(rest) > 1 && !strings.Contains(rest[0], "=") && !strings.HasPrefix(rest[0], "hook-") {
		dir = rest[0]
		rest = rest[1:]
	}
	op := rest[0]
	probeArgs := make(map[string]any, len(rest)-1)
	for _, pair := range rest[1:] {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			fatal(fmt.Errorf("argument %q is not key=value", pair))
		}
		probeArgs[key] = value
	}

	ctx, cancel := context.WithTimeout(ctx, global.Timeout)
	defer cancel()

	res, err := resolver.Resolve(ctx, dir, resolver.Options{})
	if err != nil {
		fatal(err)
	}

	engine := bridge.NewEngine(res.IR.AllHooks())
	result, err := engine.Invoke(ctx, op, probeArgs)
	if err != nil {
		fatal(err)
	}

	if global.JSON {
		printJSON(result)
		return
	}

	if result.Allowed {
		fmt.Println("allow")
	} else {
		fmt.Printf("deny: %s\n", result.Reason)
	}
	if result.Context != "" {
		fmt.Printf("context:\n%s\n", result.Context)
	}
	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
}
