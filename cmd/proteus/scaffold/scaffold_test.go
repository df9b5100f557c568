// Copyright 2026 © The Proteus Authors
// SPDX-License-Identifier: Apache-2.0

package scaffold

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jllopis/proteus/pkg/resolver"
)

func TestGenerateMinimal(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")

	err := Generate(dir, Options{Name: "demo", Description: "A demo.", Archetype: "minimal"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for _, rel := range []string{"extension.yaml", "README.md", "skills/getting-started/SKILL.md", "rules/style.md"} {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "hooks")); !os.IsNotExist(err) {
		t.Error("minimal archetype must not generate hooks")
	}
}

func TestGeneratedTreesResolveCleanly(t *testing.T) {
	for _, archetype := range Archetypes {
		t.Run(archetype, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "demo")
			err := Generate(dir, Options{Name: "demo", Description: "A demo.", Archetype: archetype})
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}

			res, err := resolver.Resolve(context.Background(), dir, resolver.Options{})
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if !res.Valid {
				t.Fatalf("generated tree is invalid: %v", res.Findings)
			}
			if res.IR.Manifest.Name != "demo" {
				t.Errorf("manifest name = %q", res.IR.Manifest.Name)
			}
		})
	}
}

func TestGenerateFullIncludesEveryKind(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")
	if err := Generate(dir, Options{Name: "demo", Description: "A demo.", Archetype: "full"}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	res, err := resolver.Resolve(context.Background(), dir, resolver.Options{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	ir := res.IR
	if len(ir.Skills) != 1 || len(ir.Agents) != 1 || len(ir.Hooks) != 1 || len(ir.Tools) != 1 || len(ir.Policies) != 1 {
		t.Errorf("unexpected component counts: skills=%d agents=%d hooks=%d tools=%d policies=%d",
			len(ir.Skills), len(ir.Agents), len(ir.Hooks), len(ir.Tools), len(ir.Policies))
	}
	if len(ir.Rules) != 1 {
		t.Errorf("expected one rule document, got %d", len(ir.Rules))
	}
}

func TestValidArchetype(t *testing.T) {
	for _, a := range Archetypes {
		if !ValidArchetype(a) {
			t.Errorf("%s should be valid", a)
		}
	}
	if ValidArchetype("corporate") {
		t.Error("unknown archetype accepted")
	}
}
