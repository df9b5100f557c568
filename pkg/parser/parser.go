// Package parser maps raw frontmatter into the canonical component
// shapes. Every semantic field accepts two authoring conventions: the
// terse external one (hyphenated keys, space-delimited tool lists,
// inverted "disable" flags) and the canonical one (structured
// sub-objects, arrays, positive booleans). Normalization is one
// deterministic helper per field trying canonical key, then legacy key,
// then the default, in that fixed order.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jllopis/proteus/pkg/extension"
)

// decode unmarshals a frontmatter block into an untyped map. An empty
// block is an empty map; a non-mapping block is an error.
func decode(frontmatter string) (map[string]any, error) {
	if strings.TrimSpace(frontmatter) == "" {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := yaml.Unmarshal([]byte(frontmatter), &m); err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// lookup resolves a dotted path ("invocation.argumentHint") through
// nested mappings.
func lookup(m map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	cur := any(m)
	for i, p := range parts {
		mm, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := mm[p]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		cur = v
	}
	return nil, false
}

// normString tries the canonical path, then the legacy key, then def.
func normString(m map[string]any, canonical, legacy, def string) string {
	if v, ok := lookup(m, canonical); ok {
		if s, ok := asString(v); ok {
			return s
		}
	}
	if legacy != "" {
		if v, ok := lookup(m, legacy); ok {
			if s, ok := asString(v); ok {
				return s
			}
		}
	}
	return def
}

// normInt tries the canonical path, then the legacy key, then def.
func normInt(m map[string]any, canonical, legacy string, def int) int {
	if v, ok := lookup(m, canonical); ok {
		if n, ok := asInt(v); ok {
			return n
		}
	}
	if legacy != "" {
		if v, ok := lookup(m, legacy); ok {
			if n, ok := asInt(v); ok {
				return n
			}
		}
	}
	return def
}

// normBool tries the canonical path, then the legacy key, then def.
func normBool(m map[string]any, canonical, legacy string, def bool) bool {
	if v, ok := lookup(m, canonical); ok {
		if b, ok := asBool(v); ok {
			return b
		}
	}
	if legacy != "" {
		if v, ok := lookup(m, legacy); ok {
			if b, ok := asBool(v); ok {
				return b
			}
		}
	}
	return def
}

// normBoolPtr is normBool with a "not declared" state. negateLegacy
// inverts the legacy value, covering external "disable" flags whose
// canonical counterpart is positive.
func normBoolPtr(m map[string]any, canonical, legacy string, negateLegacy bool) *bool {
	if v, ok := lookup(m, canonical); ok {
		if b, ok := asBool(v); ok {
			return &b
		}
	}
	if legacy != "" {
		if v, ok := lookup(m, legacy); ok {
			if b, ok := asBool(v); ok {
				if negateLegacy {
					b = !b
				}
				return &b
			}
		}
	}
	return nil
}

// normStringList tries the canonical path, then the legacy key. Either
// may hold a sequence or a single scalar.
func normStringList(m map[string]any, canonical, legacy string) []string {
	if v, ok := lookup(m, canonical); ok {
		return stringList(v)
	}
	if legacy != "" {
		if v, ok := lookup(m, legacy); ok {
			return stringList(v)
		}
	}
	return nil
}

// normToolAccess builds the allow/deny lists. Canonical tools.allowed /
// tools.denied are arrays; legacy allowed-tools / denied-tools are
// space-delimited strings (arrays tolerated).
func normToolAccess(m map[string]any) extension.ToolAccess {
	var ta extension.ToolAccess
	if v, ok := lookup(m, "tools.allowed"); ok {
		ta.Allowed = toolList(v)
	} else if v, ok := m["allowed-tools"]; ok {
		ta.Allowed = toolList(v)
	}
	if v, ok := lookup(m, "tools.denied"); ok {
		ta.Denied = toolList(v)
	} else if v, ok := m["denied-tools"]; ok {
		ta.Denied = toolList(v)
	}
	return ta
}

// normMetadata extracts the shared identity block. These keys are spelled
// the same in both conventions.
func normMetadata(m map[string]any) extension.ComponentMetadata {
	meta := extension.ComponentMetadata{
		Name:          normString(m, "name", "", ""),
		Description:   normString(m, "description", "", ""),
		Version:       normString(m, "version", "", ""),
		License:       normString(m, "license", "", ""),
		Compatibility: normString(m, "compatibility", "", ""),
		Tags:          normStringList(m, "tags", ""),
	}
	if v, ok := m["metadata"]; ok {
		if mm, ok := v.(map[string]any); ok {
			meta.Metadata = mm
		}
	}
	return meta
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(s), true
	}
	return "", false
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return parsed, true
		}
	}
	return 0, false
}

func asBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return parsed, true
		}
	}
	return false, false
}

// stringList accepts a sequence or a single scalar.
func stringList(v any) []string {
	switch items := v.(type) {
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := asString(item); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	case []string:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out
	default:
		if s, ok := asString(v); ok {
			if s = strings.TrimSpace(s); s != "" {
				return []string{s}
			}
		}
		return nil
	}
}

// toolList accepts a sequence or a space-delimited string. Spaces inside
// pattern parentheses (Bash(git commit: *)) are collapsed before the
// split so patterns survive intact.
func toolList(v any) []string {
	switch items := v.(type) {
	case []any, []string:
		raw := stringList(v)
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			out = append(out, sanitizePattern(item))
		}
		return dedupe(out)
	case string:
		return dedupe(strings.Fields(sanitizePattern(items)))
	}
	return nil
}

func sanitizePattern(input string) string {
	replacer := strings.NewReplacer(
		"( ", "(",
		" )", ")",
		": ", ":",
		" :", ":",
	)
	return replacer.Replace(input)
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
