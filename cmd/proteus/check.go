// Copyright 2026 © The Proteus Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jllopis/proteus/pkg/extension"
	"github.com/jllopis/proteus/pkg/resolver"
)

func runCheck(ctx context.Context, global globalFlags, args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
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

	res, err := resolver.Resolve(ctx, dir, resolver.Options{
		FixYAMLDescriptions: *fixDescriptions,
	})
	if err != nil {
		fatal(err)
	}

	if global.JSON {
		printJSON(struct {
			Valid    bool                `json:"valid"`
			Findings []extension.Finding `json:"findings,omitempty"`
		}{Valid: res.Valid, Findings: res.Findings})
	} else {
		for _, f := range res.Findings {
			fmt.Println(f.String())
		}
		if res.Valid {
			fmt.Printf("extension is valid (%d warning(s))\n",
				len(extension.Filter(res.Findings, extension.SeverityWarning)))
		} else {
			fmt.Printf("extension is invalid (%d error(s))\n",
				len(extension.Filter(res.Findings, extension.SeverityError)))
		}
	}

	if !res.Valid {
		os.Exit(1)
	}
}
