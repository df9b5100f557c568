// Package cursor emits Cursor artifacts. The host has no native
// skills, agents, hooks or permission blocks, so almost everything
// renders into .cursor/rules/*.mdc instructional documents; hooks and
// tools fall back to the compensation channel per their declared
// strategy.
package cursor

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jllopis/proteus/pkg/extension"
	"github.com/jllopis/proteus/pkg/target"
)

// Name is the registry key for this adapter.
const Name = "cursor"

// Adapter compiles the IR into Cursor's rule-file conventions.
type Adapter struct{}

// New returns the cursor adapter.
func New() *Adapter { return &Adapter{} }

// Name implements target.Adapter.
func (a *Adapter) Name() string { return Name }

// Compile implements target.Adapter.
func (a *Adapter) Compile(ir *extension.IR) (*target.Output, error) {
	out := target.NewOutput()

	for _, s := range ir.Skills {
		out.Files[".cursor/rules/"+s.Metadata.Name+".mdc"] = mdc(s.Metadata.Description, false, s.Instructions)
		if s.Invocation.UserInvocable != nil && *s.Invocation.UserInvocable {
			out.Warn(s.Metadata.Name, "cursor has no slash-invocation artifact; skill is available as a rule only")
		}
	}

	for _, ag := range ir.Agents {
		out.Files[".cursor/rules/agent-"+ag.Metadata.Name+".mdc"] = renderAgentRule(ag)
		out.Warn(ag.Metadata.Name, "cursor has no planner construct; agent rendered as instructional rule")
	}

	classifyHooks(ir.AllHooks(), out, func(name, content string) {
		out.Files[".cursor/rules/hook-"+name+".mdc"] = mdc("", true, content)
	})

	for _, p := range ir.Policies {
		out.Files[".cursor/rules/policy-"+p.Metadata.Name+".mdc"] = mdc("", true, target.RenderPolicyText(p))
		out.Warn(p.Metadata.Name, "cursor has no permission-rule block; granular enforcement is lost")
	}

	served := 0
	for _, t := range ir.Tools {
		if !t.Exposure.MCPEnabled() {
			out.Warn(t.Metadata.Name, "tool is not exposed over mcp; cursor cannot invoke it")
			continue
		}
		served++
		out.Compensate(target.FeatureToolServing, t.Metadata.Name,
			"cursor invokes extension tools through the mcp bridge")
	}
	if served > 0 {
		rendered, err := renderMCPConfig(ir.Manifest.Name)
		if err != nil {
			return nil, err
		}
		out.Files[".cursor/mcp.json"] = rendered
	}

	paths := make([]string, 0, len(ir.Rules))
	for p := range ir.Rules {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		out.Files[".cursor/rules/"+target.RuleSlug(p)+".mdc"] = mdc("", true, ir.Rules[p])
	}
	return out, nil
}

// classifyHooks applies the fallback strategy of every hook on a host
// without native hook support. mcp-tool hooks become compensation
// requirements, skill-injection hooks become rule text via emit, and
// ignore hooks are dropped with an explicit warning.
func classifyHooks(hooks []extension.HookDefinition, out *target.Output, emit func(name, content string)) {
	for _, h := range hooks {
		switch h.Fallback.Strategy {
		case extension.FallbackSkillInjection:
			emit(h.Metadata.Name, target.RenderHookInjection(h))
		case extension.FallbackIgnore:
			out.Warn(h.Metadata.Name, "host has no native hooks and fallback is ignore; hook dropped")
		default: // mcp-tool, also the unset default
			out.Compensate(target.FeatureHookBridge, h.Metadata.Name,
				fmt.Sprintf("%s hook requires the event-hook compensation service", h.Event))
		}
	}
}

func renderAgentRule(ag extension.AgentDefinition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Agent: %s\n\n%s\n\n%s\n", ag.Metadata.Name,
		strings.TrimSpace(ag.Metadata.Description), strings.TrimSpace(ag.Instructions))
	if len(ag.Tools.Allowed) > 0 {
		fmt.Fprintf(&b, "\nOnly use these tools: %s.\n", strings.Join(ag.Tools.Allowed, ", "))
	}
	if len(ag.Tools.Denied) > 0 {
		fmt.Fprintf(&b, "\nNever use these tools: %s.\n", strings.Join(ag.Tools.Denied, ", "))
	}
	return mdc(ag.Metadata.Description, false, b.String())
}

// mdc renders one .mdc rule document. Description-gated rules carry
// the description in frontmatter; alwaysApply rules load
// unconditionally.
func mdc(description string, always bool, body string) string {
	var b strings.Builder
	b.WriteString("---\n")
	if description != "" {
		fmt.Fprintf(&b, "description: %q\n", description)
	}
	fmt.Fprintf(&b, "alwaysApply: %t\n", always)
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimSpace(body))
	b.WriteByte('\n')
	return b.String()
}

func renderMCPConfig(extensionName string) (string, error) {
	doc := map[string]any{
		"mcpServers": map[string]any{
			extensionName + "-bridge": map[string]any{
				"command": "proteus",
				"args":    []string{"serve", "--transport", "stdio"},
			},
		},
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
