package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jllopis/proteus/pkg/extension"
)

// ParseHook maps a HOOK.md file into a HookDefinition. The canonical
// form lists handlers explicitly; the legacy shorthand describes a
// single handler with top-level type/command fields. The markdown body
// is commentary and carries no behavior.
func ParseHook(frontmatter, _, path string) (*extension.HookDefinition, error) {
	m, err := decode(frontmatter)
	if err != nil {
		return nil, err
	}
	h := hookCore(m, path)
	h.Metadata = normMetadata(m)
	h.Event = eventFrom(normString(m, "event", "", ""))
	return &h, nil
}

// hookCore extracts the fields shared by standalone and inline hook
// declarations: matcher, handlers and fallback. The fallback strategy
// defaults to mcp-tool so undeclared hooks still reach hosts without
// native support.
func hookCore(m map[string]any, path string) extension.HookDefinition {
	h := extension.HookDefinition{
		Matcher: normString(m, "matcher", "", ""),
		Path:    path,
	}
	strategy := normString(m, "fallback.strategy", "", "")
	if strategy == "" {
		strategy = string(extension.FallbackMCPTool)
	}
	h.Fallback = extension.HookFallback{
		Strategy:    extension.FallbackStrategy(strategy),
		Description: normString(m, "fallback.description", "", ""),
	}

	if v, ok := m["handlers"]; ok {
		if list, ok := v.([]any); ok {
			for _, item := range list {
				if hm, ok := item.(map[string]any); ok {
					h.Handlers = append(h.Handlers, parseHandler(hm))
				}
			}
		}
	} else if hasHandlerFields(m) {
		h.Handlers = []extension.HookHandler{parseHandler(m)}
	}
	return h
}

func hasHandlerFields(m map[string]any) bool {
	for _, k := range []string{"type", "command", "prompt"} {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

// parseHandler reads one handler map. A missing type is inferred from
// the payload fields.
func parseHandler(m map[string]any) extension.HookHandler {
	h := extension.HookHandler{
		Type:          extension.HandlerType(normString(m, "type", "", "")),
		Command:       normString(m, "command", "", ""),
		Prompt:        normString(m, "prompt", "", ""),
		Model:         normString(m, "model", "", ""),
		Timeout:       normInt(m, "timeout", "", 0),
		StatusMessage: normString(m, "statusMessage", "status-message", ""),
		Async:         normBool(m, "async", "", false),
		Once:          normBool(m, "once", "", false),
	}
	if h.Type == "" {
		switch {
		case h.Command != "":
			h.Type = extension.HandlerCommand
		case h.Prompt != "":
			h.Type = extension.HandlerPrompt
		}
	}
	return h
}

// parseInlineHooks flattens a hooks: block declared inside a skill's or
// agent's frontmatter. The block is keyed by event name; each entry is a
// handler map, a {matcher, handlers} map, or a list of either. Unnamed
// entries get a synthetic name derived from owner, event and matcher.
func parseInlineHooks(owner string, m map[string]any, path string) []extension.HookDefinition {
	raw, ok := m["hooks"]
	if !ok {
		return nil
	}
	byEvent, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(byEvent))
	for k := range byEvent {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []extension.HookDefinition
	for _, key := range keys {
		entries, ok := byEvent[key].([]any)
		if !ok {
			entries = []any{byEvent[key]}
		}
		for _, entry := range entries {
			em, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			h := hookCore(em, path)
			h.Event = eventFrom(key)
			h.Metadata = extension.ComponentMetadata{
				Name:        normString(em, "name", "", ""),
				Description: normString(em, "description", "", ""),
			}
			if h.Metadata.Name == "" {
				h.Metadata.Name = syntheticHookName(owner, h.Event, h.Matcher)
			}
			if h.Metadata.Description == "" {
				h.Metadata.Description = syntheticHookDescription(owner, h.Event)
			}
			out = append(out, h)
		}
	}
	return out
}

// eventFrom keeps unknown event names verbatim so validation can report
// them instead of silently dropping the hook.
func eventFrom(raw string) extension.Event {
	if ev, ok := extension.ParseEvent(raw); ok {
		return ev
	}
	return extension.Event(raw)
}

func syntheticHookName(owner string, ev extension.Event, matcher string) string {
	name := ev.Kebab()
	if owner != "" {
		name = owner + "-" + name
	}
	if slug := slugify(matcher); slug != "" {
		name += "-" + slug
	}
	return name
}

func syntheticHookDescription(owner string, ev extension.Event) string {
	if owner == "" {
		return fmt.Sprintf("Inline %s hook", ev)
	}
	return fmt.Sprintf("Inline %s hook from %s", ev, owner)
}

// slugify reduces arbitrary text (typically a matcher regex) to a
// name-safe fragment.
func slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
	}
	return b.String()
}
