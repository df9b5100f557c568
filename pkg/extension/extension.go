// Package extension defines the canonical component shapes for portable
// agent extensions: skills, agents, hooks, tools, policies and rule
// documents, plus the resolved intermediate representation handed to
// target adapters. Parsing normalizes both authoring conventions into
// these types; adapters treat them as read-only.
package extension

// Kind identifies a component kind.
type Kind string

const (
	KindSkill  Kind = "skill"
	KindAgent  Kind = "agent"
	KindHook   Kind = "hook"
	KindTool   Kind = "tool"
	KindPolicy Kind = "policy"
)

// Filename returns the fixed component filename for the kind (SKILL.md,
// AGENT.md, ...). Matching is case-insensitive at discovery time.
func (k Kind) Filename() string {
	switch k {
	case KindSkill:
		return "SKILL.md"
	case KindAgent:
		return "AGENT.md"
	case KindHook:
		return "HOOK.md"
	case KindTool:
		return "TOOL.md"
	case KindPolicy:
		return "POLICY.md"
	}
	return ""
}

// Kinds lists the component kinds in resolution order.
func Kinds() []Kind {
	return []Kind{KindSkill, KindAgent, KindHook, KindTool, KindPolicy}
}

// ComponentMetadata is the shared identity block of every component kind.
// Name and Description are mandatory; everything else is additive.
type ComponentMetadata struct {
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Version       string            `json:"version,omitempty"`
	License       string            `json:"license,omitempty"`
	Compatibility string            `json:"compatibility,omitempty"`
	Metadata      map[string]any    `json:"metadata,omitempty"`
	Tags          []string          `json:"tags,omitempty"`
}

// ToolAccess carries allow/deny tool lists. Lists are deduplicated and
// order-preserving.
type ToolAccess struct {
	Allowed []string `json:"allowed,omitempty"`
	Denied  []string `json:"denied,omitempty"`
}

// Execution context values for skills.
const (
	ExecFork   = "fork"
	ExecInline = "inline"
)

// SkillInvocation controls who may trigger a skill. Nil booleans mean
// "not declared"; hosts default both to true.
type SkillInvocation struct {
	UserInvocable  *bool  `json:"userInvocable,omitempty"`
	ModelInvocable *bool  `json:"modelInvocable,omitempty"`
	ArgumentHint   string `json:"argumentHint,omitempty"`
}

// SkillExecution selects where skill instructions run.
type SkillExecution struct {
	Context string `json:"context,omitempty"` // "fork" or "inline"
	Agent   string `json:"agent,omitempty"`
	Model   string `json:"model,omitempty"`
}

// SkillDefinition is a behavioral contract: instructions plus invocation
// control, tool access and optional component-scoped hooks.
type SkillDefinition struct {
	Metadata     ComponentMetadata `json:"metadata"`
	Invocation   SkillInvocation   `json:"invocation,omitempty"`
	Tools        ToolAccess        `json:"tools,omitempty"`
	Execution    SkillExecution    `json:"execution,omitempty"`
	Resources    []string          `json:"resources,omitempty"`
	Instructions string            `json:"instructions"`
	Hooks        []HookDefinition  `json:"hooks,omitempty"`
	Path         string            `json:"path,omitempty"`
}

// PermissionMode is the fixed enumeration of agent permission modes.
type PermissionMode string

const (
	PermissionDefault     PermissionMode = "default"
	PermissionAcceptEdits PermissionMode = "acceptEdits"
	PermissionDontAsk     PermissionMode = "dontAsk"
	PermissionPlan        PermissionMode = "plan"
	PermissionDelegate    PermissionMode = "delegate"
	PermissionBypass      PermissionMode = "bypassPermissions"
)

// Valid reports whether the mode is a member of the enumeration.
func (m PermissionMode) Valid() bool {
	switch m {
	case PermissionDefault, PermissionAcceptEdits, PermissionDontAsk,
		PermissionPlan, PermissionDelegate, PermissionBypass:
		return true
	}
	return false
}

// MemoryScope selects the persistence scope of an agent's memory.
type MemoryScope string

const (
	ScopeUser    MemoryScope = "user"
	ScopeProject MemoryScope = "project"
	ScopeLocal   MemoryScope = "local"
	ScopeSession MemoryScope = "session"
)

// Valid reports whether the scope is a member of the enumeration.
func (s MemoryScope) Valid() bool {
	switch s {
	case ScopeUser, ScopeProject, ScopeLocal, ScopeSession:
		return true
	}
	return false
}

// MCPServerRef references an MCP server by name or by inline command spec.
type MCPServerRef struct {
	Name    string            `json:"name,omitempty"`
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// AgentDefinition is a planner/executor profile. ToolGroups and WhenToUse
// are consumed only by hosts that organize agents into capability-group
// modes; other adapters ignore them.
type AgentDefinition struct {
	Metadata       ComponentMetadata `json:"metadata"`
	Model          string            `json:"model,omitempty"`
	MaxTurns       int               `json:"maxTurns,omitempty"`
	Tools          ToolAccess        `json:"tools,omitempty"`
	PermissionMode PermissionMode    `json:"permissionMode,omitempty"`
	Skills         []string          `json:"skills,omitempty"`
	MCPServers     []MCPServerRef    `json:"mcpServers,omitempty"`
	MemoryScope    MemoryScope       `json:"memoryScope,omitempty"`
	Instructions   string            `json:"instructions"`
	Hooks          []HookDefinition  `json:"hooks,omitempty"`
	ToolGroups     []string          `json:"toolGroups,omitempty"`
	WhenToUse      string            `json:"whenToUse,omitempty"`
	Path           string            `json:"path,omitempty"`
}

// HandlerType identifies how a hook handler runs. Only command handlers
// execute today; prompt and agent handlers validate but no-op at run time.
type HandlerType string

const (
	HandlerCommand HandlerType = "command"
	HandlerPrompt  HandlerType = "prompt"
	HandlerAgent   HandlerType = "agent"
)

// Valid reports whether the handler type is a member of the enumeration.
func (t HandlerType) Valid() bool {
	switch t {
	case HandlerCommand, HandlerPrompt, HandlerAgent:
		return true
	}
	return false
}

// HookHandler is one handler attached to a hook. Timeout is in seconds;
// zero means the engine default.
type HookHandler struct {
	Type          HandlerType `json:"type"`
	Command       string      `json:"command,omitempty"`
	Prompt        string      `json:"prompt,omitempty"`
	Model         string      `json:"model,omitempty"`
	Timeout       int         `json:"timeout,omitempty"`
	StatusMessage string      `json:"statusMessage,omitempty"`
	Async         bool        `json:"async,omitempty"`
	Once          bool        `json:"once,omitempty"`
}

// FallbackStrategy selects how a hook degrades on hosts without native
// hook support.
type FallbackStrategy string

const (
	FallbackMCPTool        FallbackStrategy = "mcp-tool"
	FallbackSkillInjection FallbackStrategy = "skill-injection"
	FallbackIgnore         FallbackStrategy = "ignore"
)

// Valid reports whether the strategy is a member of the enumeration.
func (s FallbackStrategy) Valid() bool {
	switch s {
	case FallbackMCPTool, FallbackSkillInjection, FallbackIgnore:
		return true
	}
	return false
}

// HookFallback declares the degradation strategy for hosts that cannot
// run the hook natively.
type HookFallback struct {
	Strategy    FallbackStrategy `json:"strategy"`
	Description string           `json:"description,omitempty"`
}

// HookDefinition binds one or more handlers to a lifecycle event,
// optionally filtered by a matcher regex against the event subject.
type HookDefinition struct {
	Metadata ComponentMetadata `json:"metadata"`
	Event    Event             `json:"event"`
	Matcher  string            `json:"matcher,omitempty"`
	Handlers []HookHandler     `json:"handlers"`
	Fallback HookFallback      `json:"fallback,omitempty"`
	Path     string            `json:"path,omitempty"`
}

// ToolProperty is one declared parameter of a tool.
type ToolProperty struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Items       string `json:"items,omitempty"` // element type for arrays
}

// ToolParameters declares a tool's input schema.
type ToolParameters struct {
	Properties []ToolProperty `json:"properties,omitempty"`
	Required   []string       `json:"required,omitempty"`
}

// ImplementationType identifies how a tool executes.
type ImplementationType string

const (
	ImplCommand  ImplementationType = "command"
	ImplScript   ImplementationType = "script"
	ImplMCPProxy ImplementationType = "mcp-proxy"
)

// Valid reports whether the implementation type is a member of the
// enumeration.
func (t ImplementationType) Valid() bool {
	switch t {
	case ImplCommand, ImplScript, ImplMCPProxy:
		return true
	}
	return false
}

// ToolImplementation describes the execution backing of a tool.
type ToolImplementation struct {
	Type    ImplementationType `json:"type"`
	Command string             `json:"command,omitempty"` // template with {{param}} placeholders
	Script  string             `json:"script,omitempty"`  // path relative to extension root
	Tool    string             `json:"tool,omitempty"`    // proxied tool name
	Server  string             `json:"server,omitempty"`  // proxied server name
}

// ToolExposure controls where a tool is published. Nil means "not
// declared"; MCP exposure defaults to enabled.
type ToolExposure struct {
	MCP    *bool `json:"mcp,omitempty"`
	Native *bool `json:"native,omitempty"`
}

// MCPEnabled reports whether the tool should be served over MCP: true
// unless explicitly disabled.
func (e ToolExposure) MCPEnabled() bool {
	return e.MCP == nil || *e.MCP
}

// ToolDefinition is an invocable tool with a declared parameter schema.
type ToolDefinition struct {
	Metadata       ComponentMetadata  `json:"metadata"`
	Parameters     ToolParameters     `json:"parameters,omitempty"`
	Implementation ToolImplementation `json:"implementation"`
	Exposure       ToolExposure       `json:"exposure,omitempty"`
	Path           string             `json:"path,omitempty"`
}

// PermissionRules carries per-policy pattern lists.
type PermissionRules struct {
	Deny  []string `json:"deny,omitempty"`
	Ask   []string `json:"ask,omitempty"`
	Allow []string `json:"allow,omitempty"`
}

// SandboxSpec is an optional sandbox configuration attached to a policy.
type SandboxSpec struct {
	Enabled          bool     `json:"enabled"`
	ExcludedCommands []string `json:"excludedCommands,omitempty"`
	NetworkAllow     []string `json:"networkAllow,omitempty"`
}

// PolicyDefinition is a permission policy with optional sandbox spec.
type PolicyDefinition struct {
	Metadata    ComponentMetadata `json:"metadata"`
	Permissions PermissionRules   `json:"permissions,omitempty"`
	Sandbox     *SandboxSpec      `json:"sandbox,omitempty"`
	Path        string            `json:"path,omitempty"`
}

// ManifestPaths maps component kinds to subdirectories of the extension
// root. Omitted entries take the kind's default directory.
type ManifestPaths struct {
	Skills   string `yaml:"skills" json:"skills"`
	Agents   string `yaml:"agents" json:"agents"`
	Hooks    string `yaml:"hooks" json:"hooks"`
	Tools    string `yaml:"tools" json:"tools"`
	Policies string `yaml:"policies" json:"policies"`
	Rules    string `yaml:"rules" json:"rules"`
}

// Manifest is the extension.yaml descriptor at the extension root.
type Manifest struct {
	Name        string        `yaml:"name" json:"name"`
	Version     string        `yaml:"version" json:"version,omitempty"`
	Description string        `yaml:"description" json:"description,omitempty"`
	Paths       ManifestPaths `yaml:"paths" json:"paths"`
}

// IR is the assembled extension: the resolved manifest plus per-kind
// ordered component lists and the rule documents keyed by path relative
// to the rules root. Produced once per resolution; adapters never
// mutate it.
type IR struct {
	Manifest Manifest           `json:"manifest"`
	Skills   []SkillDefinition  `json:"skills,omitempty"`
	Agents   []AgentDefinition  `json:"agents,omitempty"`
	Hooks    []HookDefinition   `json:"hooks,omitempty"`
	Tools    []ToolDefinition   `json:"tools,omitempty"`
	Policies []PolicyDefinition `json:"policies,omitempty"`
	Rules    map[string]string  `json:"rules,omitempty"`
}

// AllHooks returns every hook in the extension: top-level hook components
// first, then skill-scoped and agent-scoped hooks in component order.
func (ir *IR) AllHooks() []HookDefinition {
	out := make([]HookDefinition, 0, len(ir.Hooks))
	out = append(out, ir.Hooks...)
	for _, s := range ir.Skills {
		out = append(out, s.Hooks...)
	}
	for _, a := range ir.Agents {
		out = append(out, a.Hooks...)
	}
	return out
}
