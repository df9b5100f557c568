package claude

import (
	"encoding/json"
	"sort"

	"github.com/jllopis/proteus/pkg/extension"
	"github.com/jllopis/proteus/pkg/target"
)

// settings assembles the host's settings.json: the native hooks block
// plus the merged permission rule sets from every policy.
type settings struct {
	hooks       map[extension.Event][]hookMatcherEntry
	permissions permissionBlock
	sandbox     *sandboxBlock
}

type hookMatcherEntry struct {
	Matcher string      `json:"matcher,omitempty"`
	Hooks   []hookEntry `json:"hooks"`
}

type hookEntry struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout int    `json:"timeout,omitempty"`
}

type permissionBlock struct {
	Allow []string `json:"allow,omitempty"`
	Deny  []string `json:"deny,omitempty"`
	Ask   []string `json:"ask,omitempty"`
}

type sandboxBlock struct {
	Enabled          bool     `json:"enabled"`
	ExcludedCommands []string `json:"excludedCommands,omitempty"`
	Network          []string `json:"network,omitempty"`
}

func newSettings() *settings {
	return &settings{hooks: map[extension.Event][]hookMatcherEntry{}}
}

// addHooks emits every command handler into the native hooks block.
// Prompt and agent handlers have no native equivalent yet and are
// skipped with a warning.
func (s *settings) addHooks(hooks []extension.HookDefinition, out *target.Output) {
	for _, h := range hooks {
		var entries []hookEntry
		for _, handler := range h.Handlers {
			if handler.Type != extension.HandlerCommand {
				out.Warn(h.Metadata.Name, "%s handlers are not executable natively; handler skipped", handler.Type)
				continue
			}
			entries = append(entries, hookEntry{
				Type:    "command",
				Command: handler.Command,
				Timeout: handler.Timeout,
			})
		}
		if len(entries) == 0 {
			continue
		}
		s.hooks[h.Event] = append(s.hooks[h.Event], hookMatcherEntry{
			Matcher: h.Matcher,
			Hooks:   entries,
		})
	}
}

// addPolicy merges one policy's pattern lists into the shared
// permission block, preserving order and dropping duplicates.
func (s *settings) addPolicy(p extension.PolicyDefinition) {
	s.permissions.Allow = mergePatterns(s.permissions.Allow, p.Permissions.Allow)
	s.permissions.Deny = mergePatterns(s.permissions.Deny, p.Permissions.Deny)
	s.permissions.Ask = mergePatterns(s.permissions.Ask, p.Permissions.Ask)
	if p.Sandbox != nil && s.sandbox == nil {
		s.sandbox = &sandboxBlock{
			Enabled:          p.Sandbox.Enabled,
			ExcludedCommands: p.Sandbox.ExcludedCommands,
			Network:          p.Sandbox.NetworkAllow,
		}
	}
}

func (s *settings) empty() bool {
	return len(s.hooks) == 0 &&
		len(s.permissions.Allow) == 0 && len(s.permissions.Deny) == 0 &&
		len(s.permissions.Ask) == 0 && s.sandbox == nil
}

func (s *settings) render() (string, error) {
	doc := struct {
		Hooks       map[string][]hookMatcherEntry `json:"hooks,omitempty"`
		Permissions *permissionBlock              `json:"permissions,omitempty"`
		Sandbox     *sandboxBlock                 `json:"sandbox,omitempty"`
	}{}

	if len(s.hooks) > 0 {
		doc.Hooks = map[string][]hookMatcherEntry{}
		events := make([]string, 0, len(s.hooks))
		for ev := range s.hooks {
			events = append(events, string(ev))
		}
		sort.Strings(events)
		for _, ev := range events {
			doc.Hooks[ev] = s.hooks[extension.Event(ev)]
		}
	}
	if len(s.permissions.Allow)+len(s.permissions.Deny)+len(s.permissions.Ask) > 0 {
		doc.Permissions = &s.permissions
	}
	doc.Sandbox = s.sandbox

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

// renderMCPConfig registers the extension's compensation bridge as an
// MCP server so served tools and probe operations reach the host.
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

func mergePatterns(dst, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, p := range dst {
		seen[p] = true
	}
	for _, p := range src {
		if !seen[p] {
			seen[p] = true
			dst = append(dst, p)
		}
	}
	return dst
}
