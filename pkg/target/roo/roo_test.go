package roo

import (
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/jllopis/proteus/pkg/extension"
	"github.com/jllopis/proteus/pkg/target"
)

func TestAgentsBecomeCustomModes(t *testing.T) {
	ir := &extension.IR{
		Manifest: extension.Manifest{Name: "demo-ext"},
		Agents: []extension.AgentDefinition{
			{
				Metadata: extension.ComponentMetadata{
					Name:        "code-reviewer",
					Description: "Reviews pull requests.",
				},
				Tools:        extension.ToolAccess{Allowed: []string{"Read", "Grep"}},
				WhenToUse:    "When a PR needs review.",
				Instructions: "Be thorough.",
			},
			{
				Metadata: extension.ComponentMetadata{
					Name:        "builder",
					Description: "Builds things.",
				},
				ToolGroups:   []string{"read", "edit", "command"},
				Instructions: "Build.",
			},
		},
	}

	out, err := New().Compile(ir)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	var doc struct {
		CustomModes []struct {
			Slug           string   `yaml:"slug"`
			Name           string   `yaml:"name"`
			RoleDefinition string   `yaml:"roleDefinition"`
			WhenToUse      string   `yaml:"whenToUse"`
			Groups         []string `yaml:"groups"`
		} `yaml:"customModes"`
	}
	if err := yaml.Unmarshal([]byte(out.Files[".roomodes"]), &doc); err != nil {
		t.Fatalf(".roomodes is not valid YAML: %v", err)
	}
	if len(doc.CustomModes) != 2 {
		t.Fatalf("expected 2 modes, got %d", len(doc.CustomModes))
	}

	reviewer := doc.CustomModes[0]
	if reviewer.Slug != "code-reviewer" || reviewer.Name != "Code Reviewer" {
		t.Errorf("unexpected mode identity: %+v", reviewer)
	}
	// Read and Grep both map onto the read group.
	if !reflect.DeepEqual(reviewer.Groups, []string{"read"}) {
		t.Errorf("inferred groups = %v, want [read]", reviewer.Groups)
	}
	if reviewer.WhenToUse != "When a PR needs review." {
		t.Errorf("whenToUse lost: %+v", reviewer)
	}
	if !strings.Contains(reviewer.RoleDefinition, "Be thorough.") {
		t.Errorf("instructions should fold into roleDefinition: %q", reviewer.RoleDefinition)
	}

	// Explicit toolGroups win over inference.
	if !reflect.DeepEqual(doc.CustomModes[1].Groups, []string{"read", "edit", "command"}) {
		t.Errorf("explicit groups lost: %v", doc.CustomModes[1].Groups)
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
	doc, ok := out.Files[".roo/rules/skill-review.md"]
	if !ok {
		t.Fatalf("missing skill rule, have %v", out.Paths())
	}
	if !strings.Contains(doc, "Apply when: Reviews code.") {
		t.Errorf("skill rule should carry the trigger description:\n%s", doc)
	}
}

func TestHooksRequireBridge(t *testing.T) {
	ir := &extension.IR{
		Manifest: extension.Manifest{Name: "demo-ext"},
		Hooks: []extension.HookDefinition{
			{
				Metadata: extension.ComponentMetadata{Name: "test-gate"},
				Event:    extension.EventPreToolUse,
				Handlers: []extension.HookHandler{
					{Type: extension.HandlerCommand, Command: "go test ./..."},
				},
			},
		},
	}

	out, err := New().Compile(ir)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if len(out.Compensations) != 1 || out.Compensations[0].Feature != target.FeatureHookBridge {
		t.Errorf("expected hook-bridge compensation, got %v", out.Compensations)
	}
	if len(out.Files) != 0 {
		t.Errorf("bridged hook must not emit host files, got %v", out.Paths())
	}
}

func TestToolsAndRules(t *testing.T) {
	ir := &extension.IR{
		Manifest: extension.Manifest{Name: "demo-ext"},
		Tools: []extension.ToolDefinition{
			{
				Metadata:       extension.ComponentMetadata{Name: "loc-counter", Description: "Counts lines."},
				Implementation: extension.ToolImplementation{Type: extension.ImplCommand, Command: "wc -l {{files}}"},
			},
		},
		Rules: map[string]string{"style.md": "Use tabs."},
	}

	out, err := New().Compile(ir)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if !strings.Contains(out.Files[".roo/mcp.json"], "demo-ext-bridge") {
		t.Errorf("bridge not registered:\n%s", out.Files[".roo/mcp.json"])
	}
	if got := out.Files[".roo/rules/style.md"]; got != "Use tabs.\n" {
		t.Errorf("rule content = %q", got)
	}
}

func TestTitleFromSlug(t *testing.T) {
	tests := map[string]string{
		"code-reviewer": "Code Reviewer",
		"builder":       "Builder",
		"a-b-c":         "A B C",
	}
	for in, want := range tests {
		if got := titleFromSlug(in); got != want {
			t.Errorf("titleFromSlug(%q) = %q, want %q", in, got, want)
		}
	}
}
