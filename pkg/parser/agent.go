package parser

import (
	"sort"
	"strings"

	"github.com/jllopis/proteus/pkg/extension"
)

// ParseAgent maps an AGENT.md file into an AgentDefinition. The body is
// the agent's instructions.
func ParseAgent(frontmatter, body, path string) (*extension.AgentDefinition, error) {
	m, err := decode(frontmatter)
	if err != nil {
		return nil, err
	}
	a := &extension.AgentDefinition{
		Metadata:       normMetadata(m),
		Model:          normString(m, "model", "", ""),
		MaxTurns:       normInt(m, "maxTurns", "max-turns", 0),
		Tools:          normToolAccess(m),
		PermissionMode: extension.PermissionMode(normString(m, "permissionMode", "permission-mode", "")),
		Skills:         normStringList(m, "skills", ""),
		MemoryScope:    extension.MemoryScope(normString(m, "memoryScope", "memory", "")),
		Instructions:   strings.TrimSpace(body),
		ToolGroups:     normStringList(m, "toolGroups", "tool-groups"),
		WhenToUse:      normString(m, "whenToUse", "when-to-use", ""),
		Path:           path,
	}
	a.MCPServers = parseMCPServers(m)
	a.Hooks = parseInlineHooks(a.Metadata.Name, m, path)
	return a, nil
}

// parseMCPServers accepts a list of names or inline specs, or a map
// keyed by server name. Map entries come out sorted by name.
func parseMCPServers(m map[string]any) []extension.MCPServerRef {
	v, ok := m["mcpServers"]
	if !ok {
		v, ok = m["mcp-servers"]
	}
	if !ok {
		return nil
	}

	switch entries := v.(type) {
	case []any:
		var out []extension.MCPServerRef
		for _, item := range entries {
			switch ref := item.(type) {
			case string:
				if name := strings.TrimSpace(ref); name != "" {
					out = append(out, extension.MCPServerRef{Name: name})
				}
			case map[string]any:
				out = append(out, serverRef("", ref))
			}
		}
		return out
	case map[string]any:
		names := make([]string, 0, len(entries))
		for name := range entries {
			names = append(names, name)
		}
		sort.Strings(names)
		var out []extension.MCPServerRef
		for _, name := range names {
			spec, _ := entries[name].(map[string]any)
			out = append(out, serverRef(name, spec))
		}
		return out
	}
	return nil
}

func serverRef(name string, m map[string]any) extension.MCPServerRef {
	r := extension.MCPServerRef{Name: name}
	if m == nil {
		return r
	}
	if n := normString(m, "name", "", ""); n != "" {
		r.Name = n
	}
	r.Command = normString(m, "command", "", "")
	r.Args = normStringList(m, "args", "")
	if env, ok := m["env"].(map[string]any); ok {
		r.Env = make(map[string]string, len(env))
		for k, val := range env {
			if s, ok := asString(val); ok {
				r.Env[k] = s
			}
		}
	}
	return r
}
