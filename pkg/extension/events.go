package extension

import "strings"

// Event is a canonical lifecycle event name. The set is fixed; hosts map
// their native event names onto it at compile time.
type Event string

const (
	EventSessionStart     Event = "SessionStart"
	EventSessionEnd       Event = "SessionEnd"
	EventPreToolUse       Event = "PreToolUse"
	EventPostToolUse      Event = "PostToolUse"
	EventSubagentStart    Event = "SubagentStart"
	EventSubagentStop     Event = "SubagentStop"
	EventNotification     Event = "Notification"
	EventUserPromptSubmit Event = "UserPromptSubmit"
	EventStop             Event = "Stop"
	EventPreCompact       Event = "PreCompact"
	EventFileEdited       Event = "FileEdited"
	EventFileCreated      Event = "FileCreated"
)

// EventCategory groups events that share an input shape.
type EventCategory string

const (
	CategorySession      EventCategory = "session"
	CategoryTool         EventCategory = "tool"
	CategoryAgent        EventCategory = "agent"
	CategoryNotification EventCategory = "notification"
	CategoryPrompt       EventCategory = "prompt"
	CategoryCompletion   EventCategory = "completion"
	CategoryCompaction   EventCategory = "compaction"
	CategoryFile         EventCategory = "file"
)

var eventCategories = map[Event]EventCategory{
	EventSessionStart:     CategorySession,
	EventSessionEnd:       CategorySession,
	EventPreToolUse:       CategoryTool,
	EventPostToolUse:      CategoryTool,
	EventSubagentStart:    CategoryAgent,
	EventSubagentStop:     CategoryAgent,
	EventNotification:     CategoryNotification,
	EventUserPromptSubmit: CategoryPrompt,
	EventStop:             CategoryCompletion,
	EventPreCompact:       CategoryCompaction,
	EventFileEdited:       CategoryFile,
	EventFileCreated:      CategoryFile,
}

// KnownEvents lists every canonical event in declaration order.
func KnownEvents() []Event {
	return []Event{
		EventSessionStart, EventSessionEnd,
		EventPreToolUse, EventPostToolUse,
		EventSubagentStart, EventSubagentStop,
		EventNotification, EventUserPromptSubmit,
		EventStop, EventPreCompact,
		EventFileEdited, EventFileCreated,
	}
}

// Valid reports whether the event is a member of the canonical set.
func (e Event) Valid() bool {
	_, ok := eventCategories[e]
	return ok
}

// Category returns the event's input-shape category, or "" for unknown
// events.
func (e Event) Category() EventCategory {
	return eventCategories[e]
}

// Kebab converts the PascalCase event name to kebab-case
// (PreToolUse -> pre-tool-use). Used for deterministic probe operation
// names.
func (e Event) Kebab() string {
	var b strings.Builder
	for i, r := range string(e) {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParseEvent resolves an event name written in either PascalCase or
// kebab-case. Returns false for names outside the canonical set.
func ParseEvent(s string) (Event, bool) {
	s = strings.TrimSpace(s)
	if e := Event(s); e.Valid() {
		return e, true
	}
	lower := strings.ToLower(s)
	for _, e := range KnownEvents() {
		if e.Kebab() == lower {
			return e, true
		}
	}
	return "", false
}
