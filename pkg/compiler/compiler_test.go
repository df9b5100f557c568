package compiler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jllopis/proteus/pkg/errors"
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

func validExtension(t *testing.T) string {
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
		"hooks/guard-bash/HOOK.md": `---
name: guard-bash
description: Blocks risky commands.
event: PreToolUse
matcher: "^Bash$"
type: command
command: ./check.sh
---
`,
		"rules/style.md": "Prefer small functions.",
	})
}

func TestCompileWritesArtifacts(t *testing.T) {
	dir := validExtension(t)

	res, err := Compile(context.Background(), Options{Target: "claude", SourceDir: dir})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if res.Target != "claude" || res.BuildID == "" {
		t.Errorf("incomplete result: %+v", res)
	}
	if !res.Written {
		t.Error("expected files to be written")
	}
	if res.OutDir != filepath.Join(dir, "dist", "claude") {
		t.Errorf("unexpected out dir %q", res.OutDir)
	}

	for _, rel := range res.Files {
		full := filepath.Join(res.OutDir, filepath.FromSlash(rel))
		if _, err := os.Stat(full); err != nil {
			t.Errorf("listed file %s not on disk: %v", rel, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(res.OutDir, "skills", "code-review", "SKILL.md"))
	if err != nil {
		t.Fatalf("skill artifact missing: %v", err)
	}
	if !strings.Contains(string(data), "allowed-tools: Read Grep") {
		t.Errorf("unexpected skill content:\n%s", data)
	}
}

func TestCompileDryRun(t *testing.T) {
	dir := validExtension(t)

	res, err := Compile(context.Background(), Options{Target: "cursor", SourceDir: dir, DryRun: true})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if res.Written || res.OutDir != "" {
		t.Errorf("dry run must not write: %+v", res)
	}
	if len(res.Files) == 0 {
		t.Error("dry run still lists the would-be files")
	}
	if _, err := os.Stat(filepath.Join(dir, "dist")); !os.IsNotExist(err) {
		t.Errorf("dist directory must not exist after dry run: %v", err)
	}
}

func TestCompileUnknownTargetFailsFast(t *testing.T) {
	dir := validExtension(t)

	_, err := Compile(context.Background(), Options{Target: "zed", SourceDir: dir})
	if err == nil {
		t.Fatal("expected error for unknown target")
	}
	if !errors.IsCode(err, errors.CodeTargetNotFound) {
		t.Errorf("expected TARGET_NOT_FOUND, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "dist")); !os.IsNotExist(statErr) {
		t.Error("unknown target must not produce output")
	}
}

func TestCompileInvalidExtension(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"extension.yaml": "name: demo\n",
		"skills/broken/SKILL.md": `---
name: broken
---
No description.
`,
	})

	_, err := Compile(context.Background(), Options{Target: "claude", SourceDir: dir})
	if err == nil {
		t.Fatal("expected error for invalid extension")
	}
	if !errors.IsCode(err, errors.CodeResolveFailed) {
		t.Errorf("expected RESOLVE_FAILED, got %v", err)
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("error should list the offending component: %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "dist")); !os.IsNotExist(statErr) {
		t.Error("failed resolution must not produce output")
	}
}

func TestCompileMissingManifest(t *testing.T) {
	dir := t.TempDir()

	_, err := Compile(context.Background(), Options{Target: "claude", SourceDir: dir})
	if err == nil {
		t.Fatal("expected error for missing manifest")
	}
	if !errors.IsCode(err, errors.CodeResolveFailed) {
		t.Errorf("expected RESOLVE_FAILED, got %v", err)
	}
	if !strings.Contains(err.Error(), "extension.yaml") {
		t.Errorf("error should name the manifest file: %v", err)
	}
}

func TestCompileMissingSourceDir(t *testing.T) {
	_, err := Compile(context.Background(), Options{
		Target:    "claude",
		SourceDir: filepath.Join(t.TempDir(), "nope"),
	})
	if !errors.IsCode(err, errors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND for missing directory, got %v", err)
	}
}

func TestCompileCollectsCompensations(t *testing.T) {
	dir := validExtension(t)

	// Cursor has no native hooks, so guard-bash needs the bridge.
	res, err := Compile(context.Background(), Options{Target: "cursor", SourceDir: dir, DryRun: true})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	found := false
	for _, c := range res.Compensations {
		if c.Feature == "hook-bridge" && c.Component == "guard-bash" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected hook-bridge compensation for guard-bash, got %v", res.Compensations)
	}
}

func TestCompileCustomOutDir(t *testing.T) {
	dir := validExtension(t)
	outDir := filepath.Join(t.TempDir(), "artifacts")

	res, err := Compile(context.Background(), Options{Target: "roo", SourceDir: dir, OutDir: outDir})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if res.OutDir != outDir {
		t.Errorf("custom out dir ignored: %q", res.OutDir)
	}
	if _, err := os.Stat(filepath.Join(outDir, ".roo", "rules", "skill-code-review.md")); err != nil {
		t.Errorf("expected roo artifact in custom dir: %v", err)
	}
}

func TestDefaultRegistryTargets(t *testing.T) {
	names := DefaultRegistry().Names()
	want := []string{"claude", "cursor", "roo"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
