package target

import (
	"strings"

	"github.com/jllopis/proteus/pkg/extension"
)

// Capability group names understood by group-based hosts.
const (
	GroupRead    = "read"
	GroupEdit    = "edit"
	GroupCommand = "command"
	GroupMCP     = "mcp"
)

var toolGroups = map[string]string{
	"Read":         GroupRead,
	"Grep":         GroupRead,
	"Glob":         GroupRead,
	"WebFetch":     GroupRead,
	"Edit":         GroupEdit,
	"Write":        GroupEdit,
	"MultiEdit":    GroupEdit,
	"NotebookEdit": GroupEdit,
	"Bash":         GroupCommand,
}

// InferGroups maps the concrete tool names appearing in an access list
// onto named capability groups. Tool patterns keep their head (a
// "Bash(git:*)" entry counts as Bash); an mcp__ prefix counts as the
// mcp group. The result is ordered read, edit, command, mcp and never
// empty: with no recognizable tools every group is granted, matching
// an agent that declared no restrictions.
func InferGroups(access extension.ToolAccess) []string {
	granted := map[string]bool{}
	recognized := false
	for _, name := range append(append([]string{}, access.Allowed...), access.Denied...) {
		head := name
		if i := strings.IndexByte(head, '('); i >= 0 {
			head = head[:i]
		}
		if strings.HasPrefix(head, "mcp__") {
			granted[GroupMCP] = true
			recognized = true
			continue
		}
		if g, ok := toolGroups[head]; ok {
			granted[g] = true
			recognized = true
		}
	}
	if !recognized {
		return []string{GroupRead, GroupEdit, GroupCommand, GroupMCP}
	}
	var out []string
	for _, g := range []string{GroupRead, GroupEdit, GroupCommand, GroupMCP} {
		if granted[g] {
			out = append(out, g)
		}
	}
	return out
}
