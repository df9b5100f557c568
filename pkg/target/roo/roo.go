// Package roo emits Roo-style artifacts: agents become custom modes
// in a .roomodes YAML document with named capability groups, and
// everything else renders into .roo/rules documents or rides the
// compensation channel. Tool access translates to groups either from
// the agent's explicit toolGroups or by inference from the concrete
// tool names in its access lists.
package roo

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jllopis/proteus/pkg/extension"
	"github.com/jllopis/proteus/pkg/target"
)

// Name is the registry key for this adapter.
const Name = "roo"

// Adapter compiles the IR into Roo's mode and rule conventions.
type Adapter struct{}

// New returns the roo adapter.
func New() *Adapter { return &Adapter{} }

// Name implements target.Adapter.
func (a *Adapter) Name() string { return Name }

type customMode struct {
	Slug           string   `yaml:"slug"`
	Name           string   `yaml:"name"`
	RoleDefinition string   `yaml:"roleDefinition"`
	WhenToUse      string   `yaml:"whenToUse,omitempty"`
	Groups         []string `yaml:"groups"`
}

type roomodes struct {
	CustomModes []customMode `yaml:"customModes"`
}

// Compile implements target.Adapter.
func (a *Adapter) Compile(ir *extension.IR) (*target.Output, error) {
	out := target.NewOutput()

	if len(ir.Agents) > 0 {
		doc := roomodes{}
		for _, ag := range ir.Agents {
			doc.CustomModes = append(doc.CustomModes, modeFor(ag))
		}
		data, err := yaml.Marshal(&doc)
		if err != nil {
			return nil, err
		}
		out.Files[".roomodes"] = string(data)
	}

	for _, s := range ir.Skills {
		out.Files[".roo/rules/skill-"+s.Metadata.Name+".md"] = renderSkillRule(s)
		if s.Invocation.UserInvocable != nil && *s.Invocation.UserInvocable {
			out.Warn(s.Metadata.Name, "roo has no slash-invocation artifact; skill is available as a rule only")
		}
	}

	for _, h := range ir.AllHooks() {
		switch h.Fallback.Strategy {
		case extension.FallbackSkillInjection:
			out.Files[".roo/rules/hook-"+h.Metadata.Name+".md"] = target.RenderHookInjection(h)
		case extension.FallbackIgnore:
			out.Warn(h.Metadata.Name, "host has no native hooks and fallback is ignore; hook dropped")
		default:
			out.Compensate(target.FeatureHookBridge, h.Metadata.Name,
				fmt.Sprintf("%s hook requires the event-hook compensation service", h.Event))
		}
	}

	for _, p := range ir.Policies {
		out.Files[".roo/rules/policy-"+p.Metadata.Name+".md"] = target.RenderPolicyText(p)
		out.Warn(p.Metadata.Name, "roo has no permission-rule block; granular enforcement is lost")
	}

	served := 0
	for _, t := range ir.Tools {
		if !t.Exposure.MCPEnabled() {
			out.Warn(t.Metadata.Name, "tool is not exposed over mcp; roo cannot invoke it")
			continue
		}
		served++
		out.Compensate(target.FeatureToolServing, t.Metadata.Name,
			"roo invokes extension tools through the mcp bridge")
	}
	if served > 0 {
		rendered, err := renderMCPConfig(ir.Manifest.Name)
		if err != nil {
			return nil, err
		}
		out.Files[".roo/mcp.json"] = rendered
	}

	paths := make([]string, 0, len(ir.Rules))
	for p := range ir.Rules {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		out.Files[".roo/rules/"+target.RuleSlug(p)+".md"] = strings.TrimSpace(ir.Rules[p]) + "\n"
	}
	return out, nil
}

// modeFor maps an agent onto a custom mode. Explicit toolGroups win;
// otherwise groups are inferred from the concrete tool names in the
// access lists.
func modeFor(ag extension.AgentDefinition) customMode {
	groups := ag.ToolGroups
	if len(groups) == 0 {
		groups = target.InferGroups(ag.Tools)
	}
	role := strings.TrimSpace(ag.Metadata.Description)
	if instr := strings.TrimSpace(ag.Instructions); instr != "" {
		role += "\n\n" + instr
	}
	return customMode{
		Slug:           ag.Metadata.Name,
		Name:           titleFromSlug(ag.Metadata.Name),
		RoleDefinition: role,
		WhenToUse:      ag.WhenToUse,
		Groups:         groups,
	}
}

func renderSkillRule(s extension.SkillDefinition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", s.Metadata.Name)
	fmt.Fprintf(&b, "Apply when: %s\n\n", strings.TrimSpace(s.Metadata.Description))
	b.WriteString(strings.TrimSpace(s.Instructions))
	b.WriteByte('\n')
	return b.String()
}

func titleFromSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
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
