package loader

import (
	"regexp"
	"strings"
)

// Unquoted description values containing ": " break YAML parsing
// ("mapping values are not allowed in this context"). The pattern is
// common enough in hand-written frontmatter to deserve an opt-in repair.
var bareDescription = regexp.MustCompile(`^(\s*description:\s+)([^"'|>#\s].*: .*)$`)

// FixDescriptionQuoting quotes bare description scalars that contain a
// colon-space sequence. Already quoted, folded or block values are left
// alone. The repaired text is returned; callers re-parse it.
func FixDescriptionQuoting(raw string) string {
	lines := strings.Split(raw, "\n")
	changed := false
	for i, line := range lines {
		trimmed := strings.TrimRight(line, "\r")
		m := bareDescription.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[2])
		value = strings.ReplaceAll(value, `"`, `\"`)
		lines[i] = m[1] + `"` + value + `"`
		changed = true
	}
	if !changed {
		return raw
	}
	return strings.Join(lines, "\n")
}
