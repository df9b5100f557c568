// Copyright 2026 © The Proteus Authors
// SPDX-License-Identifier: Apache-2.0

// Package scaffold generates new extension source trees.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// Options configures extension generation.
type Options struct {
	Name        string
	Description string
	Archetype   string // minimal, guarded, full
}

// Archetypes lists the supported --type values in presentation order.
var Archetypes = []string{"minimal", "guarded", "full"}

// ValidArchetype reports whether name is a known archetype.
func ValidArchetype(name string) bool {
	for _, a := range Archetypes {
		if a == name {
			return true
		}
	}
	return false
}

// Generate creates a new extension source tree at dir.
func Generate(dir string, opts Options) error {
	for _, f := range filesToGenerate(opts) {
		path := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", f.Path, err)
		}
		if err := generateFile(path, f, opts); err != nil {
			return fmt.Errorf("generating %s: %w", f.Path, err)
		}
		fmt.Printf("  Created: %s\n", f.Path)
	}
	return nil
}

type fileSpec struct {
	Path     string
	Template string
}

func filesToGenerate(opts Options) []fileSpec {
	files := []fileSpec{
		{"extension.yaml", manifestTemplate},
		{"README.md", readmeTemplate},
		{"skills/getting-started/SKILL.md", skillTemplate},
		{"rules/style.md", ruleTemplate},
	}
	if opts.Archetype == "guarded" || opts.Archetype == "full" {
		files = append(files,
			fileSpec{"hooks/guard-bash/HOOK.md", hookTemplate},
			fileSpec{"policies/safety/POLICY.md", policyTemplate},
		)
	}
	if opts.Archetype == "full" {
		files = append(files,
			fileSpec{"agents/helper/AGENT.md", agentTemplate},
			fileSpec{"tools/word-count/TOOL.md", toolTemplate},
		)
	}
	return files
}

func generateFile(path string, spec fileSpec, opts Options) error {
	tmpl, err := template.New(spec.Path).Parse(spec.Template)
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()
	return tmpl.Execute(f, opts)
}
