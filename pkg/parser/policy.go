package parser

import (
	"github.com/jllopis/proteus/pkg/extension"
)

// ParsePolicy maps a POLICY.md file into a PolicyDefinition. Rule lists
// accept arrays or space-delimited pattern strings in both the nested
// permissions: form and the legacy top-level form. The markdown body is
// commentary.
func ParsePolicy(frontmatter, _, path string) (*extension.PolicyDefinition, error) {
	m, err := decode(frontmatter)
	if err != nil {
		return nil, err
	}
	p := &extension.PolicyDefinition{
		Metadata: normMetadata(m),
		Permissions: extension.PermissionRules{
			Deny:  patternList(m, "permissions.deny", "deny"),
			Ask:   patternList(m, "permissions.ask", "ask"),
			Allow: patternList(m, "permissions.allow", "allow"),
		},
		Path: path,
	}
	if sm, ok := m["sandbox"].(map[string]any); ok {
		p.Sandbox = &extension.SandboxSpec{
			Enabled:          normBool(sm, "enabled", "", false),
			ExcludedCommands: normStringList(sm, "excludedCommands", "excluded-commands"),
			NetworkAllow:     normStringList(sm, "networkAllow", "network-allow"),
		}
	}
	return p, nil
}

func patternList(m map[string]any, canonical, legacy string) []string {
	if v, ok := lookup(m, canonical); ok {
		return toolList(v)
	}
	if v, ok := m[legacy]; ok {
		return toolList(v)
	}
	return nil
}
