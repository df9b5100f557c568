// Copyright 2026 © The Proteus Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/jllopis/proteus/pkg/config"
	"github.com/jllopis/proteus/pkg/extension"
	"github.com/jllopis/proteus/pkg/memstore"
)

func runMemory(ctx context.Context, global globalFlags, cfg *config.Config, args []string) {
	if len(args) == 0 {
		fatal(fmt.Errorf("usage: proteus memory <get|set|list|delete> [args]"))
	}
	action := args[0]

	fs := flag.NewFlagSet("memory "+action, flag.ExitOnError)
	scopeName := fs.String("scope", string(extension.ScopeProject), "Memory scope: user, project, local or session")
	path := fs.String("path", cfg.Memory.Path, "Path to the memory database")
	if err := fs.Parse(args[1:]); err != nil {
		fatal(err)
	}

	scope := extension.MemoryScope(*scopeName)
	if !scope.Valid() {
		fatal(fmt.Errorf("unknown scope %q", *scopeName))
	}

	store, err := memstore.Open(*path)
	if err != nil {
		fatal(err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(ctx, global.Timeout)
	defer cancel()

	switch action {
	case "get":
		if fs.NArg() != 1 {
			fatal(fmt.Errorf("usage: proteus memory get [--scope <scope>] <key>"))
		}
		value, err := store.Get(ctx, scope, fs.Arg(0))
		if err != nil {
			fatal(err)
		}
		if global.JSON {
			printJSON(map[string]string{"key": fs.Arg(0), "value": value})
			return
		}
		fmt.Println(value)
	case "set":
		if fs.NArg() != 2 {
			fatal(fmt.Errorf("usage: proteus memory set [--scope <scope>] <key> <value>"))
		}
		if err := store.Set(ctx, scope, fs.Arg(0), fs.Arg(1)); err != nil {
			fatal(err)
		}
	case "delete":
		if fs.NArg() != 1 {
			fatal(fmt.Errorf("usage: proteus memory delete [--scope <scope>] <key>"))
		}
		if err := store.Delete(ctx, scope, fs.Arg(0)); err != nil {
			fatal(err)
		}
	case "list":
		ensureNoArgs(fs.Args())
		keys, err := store.List(ctx, scope)
		if err != nil {
			fatal(err)
		}
		if global.JSON {
			printJSON(keys)
			return
		}
		for _, key := range keys {
			fmt.Println(key)
		}
	default:
		fatal(fmt.Errorf("unknown memory action %q", action))
	}
}
