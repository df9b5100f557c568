package extension

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLen        = 64
	maxDescriptionLen = 1024
)

var (
	namePattern        = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
	placeholderPattern = regexp.MustCompile(`\{\{([a-zA-Z0-9_-]+)\}\}`)
)

var propertyTypes = map[string]bool{
	"string":  true,
	"number":  true,
	"boolean": true,
	"array":   true,
	"object":  true,
}

// TemplatePlaceholders returns the distinct {{param}} names referenced by
// a command template, in first-appearance order.
func TemplatePlaceholders(command string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(command, -1)
	seen := make(map[string]bool, len(matches))
	var out []string
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		out = append(out, m[1])
	}
	return out
}

func componentLabel(kind Kind, meta ComponentMetadata) string {
	if name := strings.TrimSpace(meta.Name); name != "" {
		return name
	}
	return string(kind)
}

func validateMetadata(label string, meta ComponentMetadata, file string) []Finding {
	var out []Finding
	name := strings.TrimSpace(meta.Name)
	if name == "" {
		out = append(out, Errorf(label, file, "name is required"))
	} else {
		if utf8.RuneCountInString(name) > maxNameLen {
			out = append(out, Errorf(label, file, "name exceeds %d characters", maxNameLen))
		}
		if !namePattern.MatchString(name) {
			out = append(out, Errorf(label, file, "name must match %s", namePattern.String()))
		}
	}
	desc := strings.TrimSpace(meta.Description)
	if desc == "" {
		out = append(out, Errorf(label, file, "description is required"))
	} else if utf8.RuneCountInString(desc) > maxDescriptionLen {
		out = append(out, Warnf(label, file, "description exceeds %d characters", maxDescriptionLen))
	}
	return out
}

// ValidateSkill checks a skill definition and its inline hooks.
func ValidateSkill(s *SkillDefinition) []Finding {
	label := componentLabel(KindSkill, s.Metadata)
	out := validateMetadata(label, s.Metadata, s.Path)

	name := strings.TrimSpace(s.Metadata.Name)
	if name != "" && s.Path != "" {
		if dir := filepath.Base(filepath.Dir(s.Path)); dir != name {
			out = append(out, Warnf(label, s.Path, "name %q does not match directory name %q", name, dir))
		}
	}
	if strings.TrimSpace(s.Instructions) == "" {
		out = append(out, Errorf(label, s.Path, "instructions are required"))
	}
	if ctx := s.Execution.Context; ctx != "" && ctx != ExecFork && ctx != ExecInline {
		out = append(out, Errorf(label, s.Path, "execution context must be %q or %q", ExecFork, ExecInline))
	}
	for i := range s.Hooks {
		out = append(out, ValidateHook(&s.Hooks[i])...)
	}
	return out
}

// ValidateAgent checks an agent definition and its inline hooks.
func ValidateAgent(a *AgentDefinition) []Finding {
	label := componentLabel(KindAgent, a.Metadata)
	out := validateMetadata(label, a.Metadata, a.Path)

	if strings.TrimSpace(a.Instructions) == "" {
		out = append(out, Errorf(label, a.Path, "instructions are required"))
	}
	if a.PermissionMode != "" && !a.PermissionMode.Valid() {
		out = append(out, Errorf(label, a.Path, "unknown permission mode %q", a.PermissionMode))
	}
	if a.MemoryScope != "" && !a.MemoryScope.Valid() {
		out = append(out, Errorf(label, a.Path, "unknown memory scope %q", a.MemoryScope))
	}
	if a.MaxTurns < 0 {
		out = append(out, Errorf(label, a.Path, "max turns must be non-negative"))
	}
	for i, ref := range a.MCPServers {
		if strings.TrimSpace(ref.Name) == "" && strings.TrimSpace(ref.Command) == "" {
			out = append(out, Errorf(label, a.Path, "mcp server %d needs a name or a command", i))
		}
	}
	for i := range a.Hooks {
		out = append(out, ValidateHook(&a.Hooks[i])...)
	}
	return out
}

// ValidateHook checks a hook definition: event membership, matcher
// syntax, handler completeness and fallback strategy.
func ValidateHook(h *HookDefinition) []Finding {
	label := componentLabel(KindHook, h.Metadata)
	out := validateMetadata(label, h.Metadata, h.Path)

	if !h.Event.Valid() {
		out = append(out, Errorf(label, h.Path, "unknown event %q", h.Event))
	}
	if h.Matcher != "" {
		if _, err := regexp.Compile(h.Matcher); err != nil {
			out = append(out, Errorf(label, h.Path, "invalid matcher: %v", err))
		}
	}
	if len(h.Handlers) == 0 {
		out = append(out, Errorf(label, h.Path, "at least one handler is required"))
	}
	for i, handler := range h.Handlers {
		if !handler.Type.Valid() {
			out = append(out, Errorf(label, h.Path, "handler %d: unknown type %q", i, handler.Type))
			continue
		}
		switch handler.Type {
		case HandlerCommand:
			if strings.TrimSpace(handler.Command) == "" {
				out = append(out, Errorf(label, h.Path, "handler %d: command is required", i))
			}
		case HandlerPrompt:
			if strings.TrimSpace(handler.Prompt) == "" {
				out = append(out, Errorf(label, h.Path, "handler %d: prompt is required", i))
			}
		}
		if handler.Timeout < 0 {
			out = append(out, Errorf(label, h.Path, "handler %d: timeout must be non-negative", i))
		}
	}
	if h.Fallback.Strategy != "" && !h.Fallback.Strategy.Valid() {
		out = append(out, Errorf(label, h.Path, "unknown fallback strategy %q", h.Fallback.Strategy))
	}
	return out
}

// ValidateTool checks a tool definition: parameter schema consistency and
// implementation completeness.
func ValidateTool(t *ToolDefinition) []Finding {
	label := componentLabel(KindTool, t.Metadata)
	out := validateMetadata(label, t.Metadata, t.Path)

	declared := make(map[string]bool, len(t.Parameters.Properties))
	for i, p := range t.Parameters.Properties {
		if strings.TrimSpace(p.Name) == "" {
			out = append(out, Errorf(label, t.Path, "parameter %d: name is required", i))
			continue
		}
		declared[p.Name] = true
		if p.Type != "" && !propertyTypes[p.Type] {
			out = append(out, Errorf(label, t.Path, "parameter %q: unknown type %q", p.Name, p.Type))
		}
	}
	for _, req := range t.Parameters.Required {
		if !declared[req] {
			out = append(out, Errorf(label, t.Path, "required parameter %q is not declared", req))
		}
	}

	impl := t.Implementation
	if !impl.Type.Valid() {
		out = append(out, Errorf(label, t.Path, "unknown implementation type %q", impl.Type))
		return out
	}
	switch impl.Type {
	case ImplCommand:
		if strings.TrimSpace(impl.Command) == "" {
			out = append(out, Errorf(label, t.Path, "command implementation needs a command"))
			break
		}
		for _, ref := range TemplatePlaceholders(impl.Command) {
			if !declared[ref] {
				out = append(out, Warnf(label, t.Path, "command references undeclared parameter %q", ref))
			}
		}
	case ImplScript:
		if strings.TrimSpace(impl.Script) == "" {
			out = append(out, Errorf(label, t.Path, "script implementation needs a script path"))
		}
	case ImplMCPProxy:
		if strings.TrimSpace(impl.Server) == "" || strings.TrimSpace(impl.Tool) == "" {
			out = append(out, Errorf(label, t.Path, "mcp-proxy implementation needs server and tool"))
		}
	}
	return out
}

// ValidatePolicy checks a policy definition.
func ValidatePolicy(p *PolicyDefinition) []Finding {
	label := componentLabel(KindPolicy, p.Metadata)
	out := validateMetadata(label, p.Metadata, p.Path)

	if len(p.Permissions.Deny) == 0 && len(p.Permissions.Ask) == 0 &&
		len(p.Permissions.Allow) == 0 && p.Sandbox == nil {
		out = append(out, Warnf(label, p.Path, "policy defines no permission rules"))
	}
	return out
}

// ValidateManifest checks the extension manifest.
func ValidateManifest(m *Manifest, file string) []Finding {
	var out []Finding
	if strings.TrimSpace(m.Name) == "" {
		out = append(out, Errorf("manifest", file, "name is required"))
	}
	return out
}
