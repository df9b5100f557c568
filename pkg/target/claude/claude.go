// Package claude emits Claude Code artifacts: per-skill SKILL.md
// files in the external frontmatter convention, slash commands for
// user-invocable skills, agent definitions, a settings.json carrying
// native hooks and merged permissions, and a CLAUDE.md built from the
// rule documents. Tools are never emitted natively; they ride the
// compensation channel.
package claude

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jllopis/proteus/pkg/extension"
	"github.com/jllopis/proteus/pkg/target"
)

// Name is the registry key for this adapter.
const Name = "claude"

// Adapter compiles the IR into Claude Code's file conventions.
type Adapter struct{}

// New returns the claude adapter.
func New() *Adapter { return &Adapter{} }

// Name implements target.Adapter.
func (a *Adapter) Name() string { return Name }

// Compile implements target.Adapter.
func (a *Adapter) Compile(ir *extension.IR) (*target.Output, error) {
	out := target.NewOutput()

	for _, s := range ir.Skills {
		out.Files["skills/"+s.Metadata.Name+"/SKILL.md"] = renderSkill(s)
		if s.Invocation.UserInvocable == nil || *s.Invocation.UserInvocable {
			out.Files["commands/"+s.Metadata.Name+".md"] = renderCommand(s)
		}
	}

	for _, ag := range ir.Agents {
		out.Files["agents/"+ag.Metadata.Name+".md"] = renderAgent(ag, out)
	}

	settings := newSettings()
	settings.addHooks(ir.AllHooks(), out)
	for _, p := range ir.Policies {
		settings.addPolicy(p)
	}
	if !settings.empty() {
		rendered, err := settings.render()
		if err != nil {
			return nil, err
		}
		out.Files["settings.json"] = rendered
	}

	served := 0
	for _, t := range ir.Tools {
		if !t.Exposure.MCPEnabled() {
			out.Warn(t.Metadata.Name, "tool is not exposed over mcp and claude has no native tool format; it will be unavailable")
			continue
		}
		served++
		out.Compensate(target.FeatureToolServing, t.Metadata.Name,
			"claude invokes extension tools through the mcp bridge")
	}
	if served > 0 {
		rendered, err := renderMCPConfig(ir.Manifest.Name)
		if err != nil {
			return nil, err
		}
		out.Files[".mcp.json"] = rendered
	}

	if len(ir.Rules) > 0 {
		out.Files["CLAUDE.md"] = renderRules(ir)
	}
	return out, nil
}

// renderSkill writes the skill back out in the external convention:
// hyphenated keys, space-delimited tool list, inverted model flag.
func renderSkill(s extension.SkillDefinition) string {
	var fm frontmatter
	fm.add("name", s.Metadata.Name)
	fm.add("description", s.Metadata.Description)
	if len(s.Tools.Allowed) > 0 {
		fm.add("allowed-tools", strings.Join(s.Tools.Allowed, " "))
	}
	if len(s.Tools.Denied) > 0 {
		fm.add("denied-tools", strings.Join(s.Tools.Denied, " "))
	}
	if s.Invocation.ModelInvocable != nil && !*s.Invocation.ModelInvocable {
		fm.add("disable-model-invocation", "true")
	}
	if s.Invocation.ArgumentHint != "" {
		fm.add("argument-hint", s.Invocation.ArgumentHint)
	}
	if s.Execution.Context != "" {
		fm.add("context", s.Execution.Context)
	}
	if s.Execution.Agent != "" {
		fm.add("agent", s.Execution.Agent)
	}
	if s.Execution.Model != "" {
		fm.add("model", s.Execution.Model)
	}
	if s.Metadata.License != "" {
		fm.add("license", s.Metadata.License)
	}
	return fm.document(s.Instructions)
}

func renderCommand(s extension.SkillDefinition) string {
	var fm frontmatter
	fm.add("description", s.Metadata.Description)
	if s.Invocation.ArgumentHint != "" {
		fm.add("argument-hint", s.Invocation.ArgumentHint)
	}
	return fm.document(s.Instructions)
}

func renderAgent(ag extension.AgentDefinition, out *target.Output) string {
	var fm frontmatter
	fm.add("name", ag.Metadata.Name)
	fm.add("description", ag.Metadata.Description)
	if ag.Model != "" {
		fm.add("model", ag.Model)
	}
	if len(ag.Tools.Allowed) > 0 {
		fm.add("tools", strings.Join(ag.Tools.Allowed, ", "))
	}
	if len(ag.Tools.Denied) > 0 {
		out.Warn(ag.Metadata.Name, "claude agents cannot express a deny list; denied tools folded into instructions")
	}
	if ag.PermissionMode != "" {
		fm.add("permission-mode", string(ag.PermissionMode))
	}
	if ag.MaxTurns > 0 {
		fm.add("max-turns", fmt.Sprint(ag.MaxTurns))
	}
	if len(ag.Skills) > 0 {
		fm.add("skills", strings.Join(ag.Skills, ", "))
	}
	if ag.MemoryScope != "" {
		fm.add("memory", string(ag.MemoryScope))
	}

	body := ag.Instructions
	if len(ag.Tools.Denied) > 0 {
		body += "\n\nNever use these tools: " + strings.Join(ag.Tools.Denied, ", ") + "."
	}
	return fm.document(body)
}

func renderRules(ir *extension.IR) string {
	paths := make([]string, 0, len(ir.Rules))
	for p := range ir.Rules {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", ir.Manifest.Name)
	if desc := strings.TrimSpace(ir.Manifest.Description); desc != "" {
		fmt.Fprintf(&b, "\n%s\n", desc)
	}
	for _, p := range paths {
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", p, strings.TrimSpace(ir.Rules[p]))
	}
	return b.String()
}

// frontmatter accumulates ordered key/value lines for a markdown
// metadata block.
type frontmatter struct {
	lines []string
}

func (f *frontmatter) add(key, value string) {
	if strings.ContainsAny(value, ":#{}[]&*!|>'\"%@`") || value == "" {
		value = fmt.Sprintf("%q", value)
	}
	f.lines = append(f.lines, key+": "+value)
}

func (f *frontmatter) document(body string) string {
	var b strings.Builder
	b.WriteString("---\n")
	for _, line := range f.lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimSpace(body))
	b.WriteByte('\n')
	return b.String()
}
