package target

import (
	"fmt"
	"strings"

	"github.com/jllopis/proteus/pkg/extension"
)

// RuleSlug reduces a rules-root-relative path to a flat, name-safe
// file stem: "style/go.md" becomes "style-go".
func RuleSlug(relPath string) string {
	stem := strings.TrimSuffix(relPath, ".md")
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(stem) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	if b.Len() == 0 {
		return "rule"
	}
	return b.String()
}

// RenderPolicyText renders a policy as instructional rule text for
// hosts without a first-class permission block. Granular enforcement
// is lost; callers emit the matching fidelity warning.
func RenderPolicyText(p extension.PolicyDefinition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Policy: %s\n\n%s\n", p.Metadata.Name, strings.TrimSpace(p.Metadata.Description))
	writePatternList(&b, "Never use (denied)", p.Permissions.Deny)
	writePatternList(&b, "Ask before using", p.Permissions.Ask)
	writePatternList(&b, "Allowed without asking", p.Permissions.Allow)
	if sb := p.Sandbox; sb != nil && sb.Enabled {
		b.WriteString("\nRun commands inside a sandbox.\n")
		writePatternList(&b, "Commands excluded from the sandbox", sb.ExcludedCommands)
		writePatternList(&b, "Network access limited to", sb.NetworkAllow)
	}
	return b.String()
}

// RenderHookInjection folds a hook's intent into instructional text
// for the skill-injection fallback strategy.
func RenderHookInjection(h extension.HookDefinition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Hook: %s\n\n", h.Metadata.Name)
	intent := strings.TrimSpace(h.Fallback.Description)
	if intent == "" {
		intent = strings.TrimSpace(h.Metadata.Description)
	}
	fmt.Fprintf(&b, "On the %s event", h.Event)
	if h.Matcher != "" {
		fmt.Fprintf(&b, " (when the subject matches `%s`)", h.Matcher)
	}
	fmt.Fprintf(&b, ": %s\n", intent)
	for _, handler := range h.Handlers {
		if handler.Type == extension.HandlerCommand && handler.Command != "" {
			fmt.Fprintf(&b, "\nRun `%s` and stop if it fails.\n", handler.Command)
		}
	}
	return b.String()
}

func writePatternList(b *strings.Builder, heading string, patterns []string) {
	if len(patterns) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", heading)
	for _, p := range patterns {
		fmt.Fprintf(b, "- `%s`\n", p)
	}
}
