package parser

import (
	"sort"

	"github.com/jllopis/proteus/pkg/extension"
)

// ParseTool maps a TOOL.md file into a ToolDefinition. The canonical
// form nests the execution spec under implementation:; the legacy
// shorthand is a top-level command or script field. The markdown body
// documents usage and carries no behavior.
func ParseTool(frontmatter, _, path string) (*extension.ToolDefinition, error) {
	m, err := decode(frontmatter)
	if err != nil {
		return nil, err
	}
	t := &extension.ToolDefinition{
		Metadata:       normMetadata(m),
		Parameters:     parseParameters(m),
		Implementation: parseImplementation(m),
		Exposure: extension.ToolExposure{
			MCP:    normBoolPtr(m, "exposure.mcp", "mcp", false),
			Native: normBoolPtr(m, "exposure.native", "native", false),
		},
		Path: path,
	}
	return t, nil
}

// parseParameters accepts properties either as a map keyed by parameter
// name (sorted for determinism) or as a sequence of {name, type, ...}
// entries kept in author order.
func parseParameters(m map[string]any) extension.ToolParameters {
	var params extension.ToolParameters
	pm, ok := m["parameters"].(map[string]any)
	if !ok {
		return params
	}
	switch props := pm["properties"].(type) {
	case map[string]any:
		names := make([]string, 0, len(props))
		for name := range props {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			spec, _ := props[name].(map[string]any)
			params.Properties = append(params.Properties, property(name, spec))
		}
	case []any:
		for _, item := range props {
			if spec, ok := item.(map[string]any); ok {
				params.Properties = append(params.Properties, property(normString(spec, "name", "", ""), spec))
			}
		}
	}
	params.Required = normStringList(pm, "required", "")
	return params
}

// property reads one parameter spec. Type defaults to string; array
// items accept both the scalar shorthand (items: string) and the
// schema form (items: {type: string}).
func property(name string, m map[string]any) extension.ToolProperty {
	p := extension.ToolProperty{Name: name, Type: "string"}
	if m == nil {
		return p
	}
	p.Type = normString(m, "type", "", "string")
	p.Description = normString(m, "description", "", "")
	switch items := m["items"].(type) {
	case string:
		p.Items = items
	case map[string]any:
		p.Items = normString(items, "type", "", "")
	}
	if p.Type == "array" && p.Items == "" {
		p.Items = "string"
	}
	return p
}

func parseImplementation(m map[string]any) extension.ToolImplementation {
	if im, ok := m["implementation"].(map[string]any); ok {
		impl := extension.ToolImplementation{
			Type:    extension.ImplementationType(normString(im, "type", "", "")),
			Command: normString(im, "command", "", ""),
			Script:  normString(im, "script", "", ""),
			Tool:    normString(im, "tool", "", ""),
			Server:  normString(im, "server", "", ""),
		}
		if impl.Type == "" {
			impl.Type = inferImplType(impl)
		}
		return impl
	}
	impl := extension.ToolImplementation{
		Command: normString(m, "command", "", ""),
		Script:  normString(m, "script", "", ""),
	}
	impl.Type = inferImplType(impl)
	return impl
}

func inferImplType(impl extension.ToolImplementation) extension.ImplementationType {
	switch {
	case impl.Command != "":
		return extension.ImplCommand
	case impl.Script != "":
		return extension.ImplScript
	case impl.Tool != "" && impl.Server != "":
		return extension.ImplMCPProxy
	}
	return ""
}
