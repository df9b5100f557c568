package extension

import "testing"

func TestEventKebab(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{EventPreToolUse, "pre-tool-use"},
		{EventSessionStart, "session-start"},
		{EventUserPromptSubmit, "user-prompt-submit"},
		{EventStop, "stop"},
	}
	for _, tt := range tests {
		if got := tt.event.Kebab(); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.event, tt.want, got)
		}
	}
}

func TestParseEvent(t *testing.T) {
	if e, ok := ParseEvent("PreToolUse"); !ok || e != EventPreToolUse {
		t.Fatalf("expected PascalCase to parse, got %v %v", e, ok)
	}
	if e, ok := ParseEvent("pre-tool-use"); !ok || e != EventPreToolUse {
		t.Fatalf("expected kebab-case to parse, got %v %v", e, ok)
	}
	if _, ok := ParseEvent("OnBoot"); ok {
		t.Fatalf("expected unknown event to be rejected")
	}
}

func TestEventCategories(t *testing.T) {
	for _, e := range KnownEvents() {
		if e.Category() == "" {
			t.Errorf("%s: missing category", e)
		}
	}
	if EventPreToolUse.Category() != CategoryTool {
		t.Errorf("PreToolUse should be a tool event")
	}
	if EventUserPromptSubmit.Category() != CategoryPrompt {
		t.Errorf("UserPromptSubmit should be a prompt event")
	}
	if Event("Bogus").Valid() {
		t.Errorf("unknown event must not validate")
	}
}

func TestAllHooksOrder(t *testing.T) {
	ir := &IR{
		Hooks: []HookDefinition{{Metadata: ComponentMetadata{Name: "top"}}},
		Skills: []SkillDefinition{{
			Hooks: []HookDefinition{{Metadata: ComponentMetadata{Name: "from-skill"}}},
		}},
		Agents: []AgentDefinition{{
			Hooks: []HookDefinition{{Metadata: ComponentMetadata{Name: "from-agent"}}},
		}},
	}
	all := ir.AllHooks()
	if len(all) != 3 {
		t.Fatalf("expected 3 hooks, got %d", len(all))
	}
	if all[0].Metadata.Name != "top" || all[1].Metadata.Name != "from-skill" || all[2].Metadata.Name != "from-agent" {
		t.Fatalf("unexpected hook order: %v", all)
	}
}
