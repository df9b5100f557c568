package cursor

import (
	"strings"
	"testing"

	"github.com/jllopis/proteus/pkg/extension"
	"github.com/jllopis/proteus/pkg/target"
)

func hookWithFallback(name string, strategy extension.FallbackStrategy) extension.HookDefinition {
	return extension.HookDefinition{
		Metadata: extension.ComponentMetadata{Name: name, Description: "Gate."},
		Event:    extension.EventPreToolUse,
		Matcher:  "Bash",
		Handlers: []extension.HookHandler{
			{Type: extension.HandlerCommand, Command: "go vet ./..."},
		},
		Fallback: extension.HookFallback{Strategy: strategy},
	}
}

func TestSkillsBecomeRules(t *testing.T) {
	ir := &extension.IR{
		Manifest: extension.Manifest{Name: "demo-ext"},
		Skills: []extension.SkillDefinition{
			{
				Metadata:     extension.ComponentMetadata{Name: "review", Description: "Reviews code."},
				Instructions: "Look at the diff.",
			},
		},
	}

	out, err := New().Compile(ir)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	doc, ok := out.Files[".cursor/rules/review.mdc"]
	if !ok {
		t.Fatalf("missing rule file, have %v", out.Paths())
	}
	if !strings.Contains(doc, `description: "Reviews code."`) {
		t.Errorf("skill rule should be description-gated:\n%s", doc)
	}
	if !strings.Contains(doc, "alwaysApply: false") {
		t.Errorf("skill rule must not always apply:\n%s", doc)
	}
	if !strings.Contains(doc, "Look at the diff.") {
		t.Errorf("instructions missing:\n%s", doc)
	}
}

// A hook with the default (mcp-tool) fallback must surface a hook-bridge
// compensation requirement and produce no native hook artifact.
func TestDefaultHookFallbackRequiresBridge(t *testing.T) {
	ir := &extension.IR{
		Manifest: extension.Manifest{Name: "demo-ext"},
		Hooks:    []extension.HookDefinition{hookWithFallback("test-gate", "")},
	}

	out, err := New().Compile(ir)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if len(out.Compensations) != 1 {
		t.Fatalf("expected 1 compensation, got %v", out.Compensations)
	}
	c := out.Compensations[0]
	if c.Feature != target.FeatureHookBridge || c.Component != "test-gate" {
		t.Errorf("unexpected compensation %+v", c)
	}
	if len(out.Files) != 0 {
		t.Errorf("bridged hook must not emit host files, got %v", out.Paths())
	}
}

func TestSkillInjectionHookBecomesRule(t *testing.T) {
	h := hookWithFallback("style-reminder", extension.FallbackSkillInjection)
	h.Fallback.Description = "remind about the style guide"
	ir := &extension.IR{
		Manifest: extension.Manifest{Name: "demo-ext"},
		Hooks:    []extension.HookDefinition{h},
	}

	out, err := New().Compile(ir)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	doc, ok := out.Files[".cursor/rules/hook-style-reminder.mdc"]
	if !ok {
		t.Fatalf("missing injected rule, have %v", out.Paths())
	}
	if !strings.Contains(doc, "remind about the style guide") {
		t.Errorf("injected rule should carry the fallback intent:\n%s", doc)
	}
	if len(out.Compensations) != 0 {
		t.Errorf("skill-injection needs no bridge, got %v", out.Compensations)
	}
}

func TestIgnoredHookIsDroppedWithWarning(t *testing.T) {
	ir := &extension.IR{
		Manifest: extension.Manifest{Name: "demo-ext"},
		Hooks:    []extension.HookDefinition{hookWithFallback("optional", extension.FallbackIgnore)},
	}

	out, err := New().Compile(ir)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if len(out.Files) != 0 || len(out.Compensations) != 0 {
		t.Errorf("ignored hook must leave no trace: files=%v comps=%v", out.Paths(), out.Compensations)
	}
	if len(out.Warnings) != 1 || out.Warnings[0].Component != "optional" {
		t.Errorf("expected a drop warning, got %v", out.Warnings)
	}
}

func TestPolicyLosesGranularity(t *testing.T) {
	ir := &extension.IR{
		Manifest: extension.Manifest{Name: "demo-ext"},
		Policies: []extension.PolicyDefinition{
			{
				Metadata:    extension.ComponentMetadata{Name: "safety", Description: "No rm."},
				Permissions: extension.PermissionRules{Deny: []string{"Bash(rm -rf:*)"}},
			},
		},
	}

	out, err := New().Compile(ir)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	doc, ok := out.Files[".cursor/rules/policy-safety.mdc"]
	if !ok {
		t.Fatalf("missing policy rule, have %v", out.Paths())
	}
	if !strings.Contains(doc, "Bash(rm -rf:*)") {
		t.Errorf("policy rule should list denied patterns:\n%s", doc)
	}
	if len(out.Warnings) != 1 {
		t.Errorf("policy downgrade must warn, got %v", out.Warnings)
	}
}

func TestToolsServeOverBridge(t *testing.T) {
	ir := &extension.IR{
		Manifest: extension.Manifest{Name: "demo-ext"},
		Tools: []extension.ToolDefinition{
			{
				Metadata:       extension.ComponentMetadata{Name: "loc-counter", Description: "Counts lines."},
				Implementation: extension.ToolImplementation{Type: extension.ImplCommand, Command: "wc -l {{files}}"},
			},
		},
	}

	out, err := New().Compile(ir)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if _, ok := out.Files[".cursor/mcp.json"]; !ok {
		t.Fatalf("missing mcp.json, have %v", out.Paths())
	}
	if !strings.Contains(out.Files[".cursor/mcp.json"], "demo-ext-bridge") {
		t.Errorf("bridge server not registered:\n%s", out.Files[".cursor/mcp.json"])
	}
	if len(out.Compensations) != 1 || out.Compensations[0].Feature != target.FeatureToolServing {
		t.Errorf("expected tool-serving compensation, got %v", out.Compensations)
	}
}

func TestRuleDocumentsAlwaysApply(t *testing.T) {
	ir := &extension.IR{
		Manifest: extension.Manifest{Name: "demo-ext"},
		Rules: map[string]string{
			"style/go.md": "Use tabs.",
		},
	}

	out, err := New().Compile(ir)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	doc, ok := out.Files[".cursor/rules/style-go.mdc"]
	if !ok {
		t.Fatalf("missing rule file, have %v", out.Paths())
	}
	if !strings.Contains(doc, "alwaysApply: true") {
		t.Errorf("rule documents load unconditionally:\n%s", doc)
	}
}
