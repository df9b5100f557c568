package parser

import (
	"strings"

	"github.com/jllopis/proteus/pkg/extension"
)

// ParseSkill maps a SKILL.md file into a SkillDefinition. The body is
// the skill's instructions. Canonical frontmatter groups invocation,
// tools and execution into sub-objects; the legacy convention spells
// the same fields as hyphenated top-level keys, with
// disable-model-invocation inverted into modelInvocable.
func ParseSkill(frontmatter, body, path string) (*extension.SkillDefinition, error) {
	m, err := decode(frontmatter)
	if err != nil {
		return nil, err
	}
	s := &extension.SkillDefinition{
		Metadata: normMetadata(m),
		Invocation: extension.SkillInvocation{
			UserInvocable:  normBoolPtr(m, "invocation.userInvocable", "user-invocable", false),
			ModelInvocable: normBoolPtr(m, "invocation.modelInvocable", "disable-model-invocation", true),
			ArgumentHint:   normString(m, "invocation.argumentHint", "argument-hint", ""),
		},
		Tools: normToolAccess(m),
		Execution: extension.SkillExecution{
			Context: normString(m, "execution.context", "context", ""),
			Agent:   normString(m, "execution.agent", "agent", ""),
			Model:   normString(m, "execution.model", "model", ""),
		},
		Resources:    normStringList(m, "resources", ""),
		Instructions: strings.TrimSpace(body),
		Path:         path,
	}
	s.Hooks = parseInlineHooks(s.Metadata.Name, m, path)
	return s, nil
}
