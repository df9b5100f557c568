// Package bridge implements the hook compensation engine: the
// run-time service fulfilling event hooks on hosts that declared a
// hook-bridge compensation requirement at compile time. The engine
// exposes one externally invokable probe operation per canonical
// event and evaluates the matching hooks' handlers with allow/deny
// semantics. The probe mechanism fails open: an erroring handler must
// never block the caller's action on its own.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jllopis/proteus/pkg/errors"
	"github.com/jllopis/proteus/pkg/extension"
)

// OpPrefix starts every probe operation name.
const OpPrefix = "hook-"

// defaultHandlerTimeout bounds a command handler that declared no
// timeout of its own.
const defaultHandlerTimeout = 30 * time.Second

// InputField is one parameter of a probe operation's input shape.
type InputField struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// Operation is one externally invokable probe corresponding to a
// canonical event group.
type Operation struct {
	Name        string          `json:"name"`
	Event       extension.Event `json:"event"`
	Description string          `json:"description"`
	Input       []InputField    `json:"input"`
}

// Result is a probe decision. Warnings carry non-blocking handler
// problems (bad exit codes, spawn failures, timeouts).
type Result struct {
	Allowed  bool     `json:"allowed"`
	Reason   string   `json:"reason,omitempty"`
	Context  string   `json:"context,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Engine holds an immutable hook list scanned once at construction.
// It carries no per-invocation state, so concurrent probe invocations
// are safe.
type Engine struct {
	hooks   []extension.HookDefinition
	ops     []Operation
	byName  map[string]extension.Event
	log     *slog.Logger
	decided metric.Int64Counter
}

// NewEngine builds the probe surface for the given hooks. Hooks whose
// fallback strategy is ignore or skill-injection never need a
// compensation surface and are excluded up front.
func NewEngine(hooks []extension.HookDefinition) *Engine {
	e := &Engine{
		byName: map[string]extension.Event{},
		log:    slog.Default(),
	}
	for _, h := range hooks {
		switch h.Fallback.Strategy {
		case extension.FallbackIgnore, extension.FallbackSkillInjection:
			continue
		}
		e.hooks = append(e.hooks, h)
	}

	grouped := map[extension.Event][]extension.HookDefinition{}
	for _, h := range e.hooks {
		grouped[h.Event] = append(grouped[h.Event], h)
	}
	for _, ev := range extension.KnownEvents() {
		group, ok := grouped[ev]
		if !ok {
			continue
		}
		op := Operation{
			Name:        OpPrefix + ev.Kebab(),
			Event:       ev,
			Description: describeGroup(ev, group),
			Input:       inputShape(ev),
		}
		e.ops = append(e.ops, op)
		e.byName[op.Name] = ev
	}

	if counter, err := otel.Meter("proteus/bridge").Int64Counter(
		"proteus.bridge.decisions",
		metric.WithDescription("Probe decisions by event and outcome"),
	); err == nil {
		e.decided = counter
	}
	return e
}

// Operations enumerates the probe surface in canonical event order.
func (e *Engine) Operations() []Operation {
	out := make([]Operation, len(e.ops))
	copy(out, e.ops)
	return out
}

// Invoke evaluates the named probe operation. Hooks on the operation's
// event whose matcher accepts the caller-supplied subject run their
// handlers strictly in sequence, short-circuiting on the first deny.
// Unknown operation names are the only error case.
func (e *Engine) Invoke(ctx context.Context, opName string, args map[string]any) (*Result, error) {
	ev, ok := e.byName[opName]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "unknown probe operation", nil).
			WithContext("operation", opName)
	}

	subject := subjectOf(ev, args)
	matched := e.matching(ev, subject)
	if len(matched) == 0 {
		return &Result{Allowed: true, Reason: "no matching hooks"}, nil
	}

	result := &Result{Allowed: true}
	var contexts []string
	for _, h := range matched {
		for _, handler := range h.Handlers {
			decision := e.runHandler(ctx, h, handler, args)
			result.Warnings = append(result.Warnings, decision.Warnings...)
			if decision.Context != "" {
				contexts = append(contexts, decision.Context)
			}
			if !decision.Allowed {
				result.Allowed = false
				result.Reason = decision.Reason
				result.Context = strings.Join(contexts, "\n")
				e.count(ctx, ev, false)
				return result, nil
			}
		}
	}
	result.Context = strings.Join(contexts, "\n")
	e.count(ctx, ev, true)
	return result, nil
}

// matching filters the hook list to the event, applying each hook's
// matcher as a regular expression over the subject. Hooks without a
// matcher always participate.
func (e *Engine) matching(ev extension.Event, subject string) []extension.HookDefinition {
	var out []extension.HookDefinition
	for _, h := range e.hooks {
		if h.Event != ev {
			continue
		}
		if h.Matcher != "" {
			re, err := regexp.Compile(h.Matcher)
			if err != nil || !re.MatchString(subject) {
				continue
			}
		}
		out = append(out, h)
	}
	return out
}

// runHandler executes one handler and never returns an execution
// error: every failure mode converts to an allow with a warning so
// the probe mechanism cannot hard-fail the caller's action.
func (e *Engine) runHandler(ctx context.Context, h extension.HookDefinition, handler extension.HookHandler, args map[string]any) Result {
	switch handler.Type {
	case extension.HandlerCommand:
		return e.runCommand(ctx, h, handler, args)
	default:
		// prompt and agent handlers are accepted by validation but
		// execute as a pass-through until they gain a runtime.
		return Result{
			Allowed:  true,
			Warnings: []string{fmt.Sprintf("hook %s: %s handlers are not implemented; allowing", h.Metadata.Name, handler.Type)},
		}
	}
}

// runCommand spawns the declared shell command with the call
// arguments serialized as JSON on stdin. Exit 0 allows with stdout as
// context, exit 2 denies with stderr (falling back to stdout, then a
// generic message) as the reason, and anything else allows with a
// warning.
func (e *Engine) runCommand(ctx context.Context, h extension.HookDefinition, handler extension.HookHandler, args map[string]any) Result {
	timeout := defaultHandlerTimeout
	if handler.Timeout > 0 {
		timeout = time.Duration(handler.Timeout) * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(args)
	if err != nil {
		return Result{Allowed: true, Warnings: []string{
			fmt.Sprintf("hook %s: cannot serialize arguments: %v", h.Metadata.Name, err)}}
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", handler.Command)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		e.log.Warn("bridge.handler.timeout",
			slog.String("hook", h.Metadata.Name),
			slog.Duration("timeout", timeout),
		)
		return Result{Allowed: true, Warnings: []string{
			fmt.Sprintf("hook %s: handler timed out after %s; allowing", h.Metadata.Name, timeout)}}
	}
	if err == nil {
		return Result{Allowed: true, Context: strings.TrimSpace(stdout.String())}
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code == 2 {
			reason := strings.TrimSpace(stderr.String())
			if reason == "" {
				reason = strings.TrimSpace(stdout.String())
			}
			if reason == "" {
				reason = fmt.Sprintf("blocked by hook %s", h.Metadata.Name)
			}
			return Result{Allowed: false, Reason: reason}
		}
		return Result{Allowed: true, Warnings: []string{
			fmt.Sprintf("hook %s: handler exited %d (expected 0 or 2); allowing", h.Metadata.Name, code)}}
	}
	return Result{Allowed: true, Warnings: []string{
		fmt.Sprintf("hook %s: handler failed to run: %v; allowing", h.Metadata.Name, err)}}
}

func (e *Engine) count(ctx context.Context, ev extension.Event, allowed bool) {
	if e.decided == nil {
		return
	}
	e.decided.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("event", string(ev)),
			attribute.Bool("allowed", allowed),
		))
}

// subjectOf extracts the matcher subject from the call arguments
// according to the event's input shape.
func subjectOf(ev extension.Event, args map[string]any) string {
	key := "context"
	switch ev.Category() {
	case extension.CategoryTool:
		key = "tool_name"
	case extension.CategoryPrompt:
		key = "prompt"
	}
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// describeGroup assembles the probe description from the group's
// component descriptions, falling back to names.
func describeGroup(ev extension.Event, group []extension.HookDefinition) string {
	parts := make([]string, 0, len(group))
	for _, h := range group {
		d := strings.TrimSpace(h.Metadata.Description)
		if d == "" {
			d = h.Metadata.Name
		}
		parts = append(parts, d)
	}
	return fmt.Sprintf("%s checkpoint: %s", ev, strings.Join(parts, "; "))
}

// inputShape selects the probe input by event category: tool events
// take a subject name plus opaque payload, prompt events take free
// text, everything else an opaque context string.
func inputShape(ev extension.Event) []InputField {
	switch ev.Category() {
	case extension.CategoryTool:
		return []InputField{
			{Name: "tool_name", Type: "string", Description: "Name of the tool being used", Required: true},
			{Name: "tool_input", Type: "string", Description: "Serialized tool arguments"},
		}
	case extension.CategoryPrompt:
		return []InputField{
			{Name: "prompt", Type: "string", Description: "The submitted prompt text"},
		}
	default:
		return []InputField{
			{Name: "context", Type: "string", Description: "Opaque event context"},
		}
	}
}
