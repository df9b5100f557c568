package resolver

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jllopis/proteus/pkg/errors"
	"github.com/jllopis/proteus/pkg/extension"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for path, content := range files {
		full := filepath.Join(dir, path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return dir
}

func fullExtension(t *testing.T) string {
	t.Helper()
	return writeTree(t, map[string]string{
		"extension.yaml": "name: demo\nversion: 1.0.0\ndescription: Demo extension.\n",
		"skills/code-review/SKILL.md": `---
name: code-review
description: Reviews code changes.
allowed-tools: Read Grep
---
Look at the diff and comment.
`,
		"agents/deployer/AGENT.md": `---
name: deployer
description: Ships releases.
permission-mode: plan
memory: project
---
Deploy carefully.
`,
		"hooks/guard-bash/HOOK.md": `---
name: guard-bash
description: Blocks risky commands.
event: PreToolUse
matcher: "^Bash$"
type: command
command: ./check.sh
---
`,
		"tools/run-linter/TOOL.md": `---
name: run-linter
description: Runs the linter.
parameters:
  properties:
    files:
      type: array
  required: [files]
command: "lint {{files}}"
---
`,
		"policies/safety/POLICY.md": `---
name: safety
description: Keeps things safe.
deny: ["Bash(rm:*)"]
---
`,
		"rules/style.md": "Prefer small functions.",
	})
}

func TestResolveFullExtension(t *testing.T) {
	dir := fullExtension(t)
	res, err := Resolve(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !res.Valid {
		t.Fatalf("expected valid extension, findings: %v", res.Findings)
	}
	ir := res.IR
	if len(ir.Skills) != 1 || len(ir.Agents) != 1 || len(ir.Hooks) != 1 ||
		len(ir.Tools) != 1 || len(ir.Policies) != 1 {
		t.Fatalf("unexpected component counts: %+v", ir)
	}
	if ir.Manifest.Name != "demo" {
		t.Fatalf("unexpected manifest: %+v", ir.Manifest)
	}
	if ir.Rules["style.md"] != "Prefer small functions." {
		t.Fatalf("unexpected rules: %v", ir.Rules)
	}
	if ir.Hooks[0].Event != extension.EventPreToolUse {
		t.Fatalf("unexpected hook: %+v", ir.Hooks[0])
	}
}

func TestResolveIsolatesBrokenSibling(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"extension.yaml": "name: demo\n",
		"skills/good-one/SKILL.md": `---
name: good-one
description: Works fine.
---
Body.
`,
		"skills/broken/SKILL.md": `---
name: broken
---
Body without description.
`,
		"skills/also-good/SKILL.md": `---
name: also-good
description: Works too.
---
Body.
`,
	})
	res, err := Resolve(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Valid {
		t.Fatalf("expected invalid result")
	}
	if len(res.IR.Skills) != 2 {
		t.Fatalf("expected broken skill excluded and siblings kept, got %d", len(res.IR.Skills))
	}
	for _, s := range res.IR.Skills {
		if s.Metadata.Name == "broken" {
			t.Fatalf("broken skill must not reach the IR")
		}
	}
	var found bool
	for _, f := range res.Findings {
		if f.Severity == extension.SeverityError && strings.Contains(f.File, "broken") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an error finding for the broken file: %v", res.Findings)
	}
}

func TestResolveMissingManifestContinues(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"skills/solo/SKILL.md": `---
name: solo
description: Still discovered.
---
Body.
`,
	})
	res, err := Resolve(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("manifest problems must not abort resolution: %v", err)
	}
	if res.Valid {
		t.Fatalf("missing manifest must invalidate the result")
	}
	if len(res.IR.Skills) != 1 {
		t.Fatalf("expected skill discovery to proceed with default paths, got %+v", res.IR)
	}
	if res.IR.Manifest.Paths.Skills != "skills" {
		t.Fatalf("expected default paths, got %+v", res.IR.Manifest.Paths)
	}
}

func TestResolveMissingDirIsStructural(t *testing.T) {
	_, err := Resolve(context.Background(), filepath.Join(t.TempDir(), "nope"), Options{})
	if err == nil {
		t.Fatalf("expected error for missing directory")
	}
	if !errors.IsCode(err, errors.CodeNotFound) {
		t.Fatalf("expected CodeNotFound, got %v", err)
	}
}

func TestResolveFixYAMLDescriptions(t *testing.T) {
	files := map[string]string{
		"extension.yaml": "name: demo\n",
		"skills/helper/SKILL.md": `---
name: helper
description: Use this: when stuck
---
Body.
`,
	}

	dir := writeTree(t, files)
	res, err := Resolve(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Valid {
		t.Fatalf("bare colon description must fail without the fix option")
	}

	res, err = Resolve(context.Background(), dir, Options{FixYAMLDescriptions: true})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !res.Valid {
		t.Fatalf("expected fix option to repair the skill, findings: %v", res.Findings)
	}
	if res.IR.Skills[0].Metadata.Description != "Use this: when stuck" {
		t.Fatalf("unexpected description: %q", res.IR.Skills[0].Metadata.Description)
	}
}

func TestResolveDirMismatchWarnsOnly(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"extension.yaml": "name: demo\n",
		"skills/some-dir/SKILL.md": `---
name: other-name
description: Lives in the wrong directory.
---
Body.
`,
	})
	res, err := Resolve(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !res.Valid {
		t.Fatalf("mismatch must stay a warning: %v", res.Findings)
	}
	if len(res.IR.Skills) != 1 {
		t.Fatalf("mismatched skill must stay in the IR")
	}
	if len(extension.Filter(res.Findings, extension.SeverityWarning)) != 1 {
		t.Fatalf("expected one warning, got %v", res.Findings)
	}
}

func TestResolveDeterministic(t *testing.T) {
	dir := fullExtension(t)
	first, err := Resolve(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := Resolve(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !reflect.DeepEqual(first.IR, second.IR) {
		t.Fatalf("identical inputs must produce identical IRs")
	}
	if !reflect.DeepEqual(first.Findings, second.Findings) {
		t.Fatalf("identical inputs must produce identical findings")
	}
}
