// Package target defines the contract every host adapter implements
// and the registry binding adapters to one compiler instance. Adapters
// are pure functions of the IR: they render a path→content file map
// plus warning and compensation side channels, and never touch disk,
// which keeps each adapter snapshot-testable on its output alone.
package target

import (
	"sort"
	"strings"

	"github.com/jllopis/proteus/pkg/errors"
	"github.com/jllopis/proteus/pkg/extension"
)

// Feature tags carried by compensation requirements.
const (
	// FeatureHookBridge marks a hook that must be fulfilled by the
	// shared compensation service because the host has no native
	// event-trigger mechanism.
	FeatureHookBridge = "hook-bridge"

	// FeatureToolServing marks a tool that must be served over the
	// compensation channel for cross-host portability.
	FeatureToolServing = "tool-serving"
)

// CompensationRequirement records one canonical capability a host
// cannot express natively. The compiler surfaces these so the
// compensation service can be provisioned alongside the emitted files.
type CompensationRequirement struct {
	Feature   string `json:"feature"`
	Reason    string `json:"reason"`
	Component string `json:"component"`
}

// Output is one adapter's result. Files are keyed by path relative to
// the output root; Warnings carry fidelity-loss notices.
type Output struct {
	Files         map[string]string         `json:"files"`
	Warnings      []extension.Finding       `json:"warnings,omitempty"`
	Compensations []CompensationRequirement `json:"compensations,omitempty"`
}

// NewOutput returns an Output with an initialized file map.
func NewOutput() *Output {
	return &Output{Files: map[string]string{}}
}

// Warn appends a warning-severity fidelity-loss finding.
func (o *Output) Warn(component, format string, args ...any) {
	o.Warnings = append(o.Warnings, extension.Warnf(component, "", format, args...))
}

// Compensate appends a compensation requirement.
func (o *Output) Compensate(feature, component, reason string) {
	o.Compensations = append(o.Compensations, CompensationRequirement{
		Feature:   feature,
		Reason:    reason,
		Component: component,
	})
}

// Paths returns the emitted file paths in sorted order.
func (o *Output) Paths() []string {
	paths := make([]string, 0, len(o.Files))
	for p := range o.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Adapter translates the canonical IR into one host's native artifact
// set. Compile must not mutate the IR and must not perform I/O.
type Adapter interface {
	Name() string
	Compile(ir *extension.IR) (*Output, error)
}

// Registry holds the adapters available to one compiler instance. It
// is explicit state handed in at construction, not a package-level
// table, so tests can carry distinct adapter sets side by side.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: map[string]Adapter{}}
}

// Register adds an adapter under its name. Registering a second
// adapter with the same name is an error.
func (r *Registry) Register(a Adapter) error {
	name := strings.TrimSpace(a.Name())
	if name == "" {
		return errors.New(errors.CodeInvalidInput, "adapter has no name", nil)
	}
	if _, ok := r.adapters[name]; ok {
		return errors.New(errors.CodeInvalidInput, "adapter already registered", nil).
			WithContext("target", name)
	}
	r.adapters[name] = a
	return nil
}

// Lookup resolves an adapter by target name. Unknown names yield a
// CodeTargetNotFound error listing every registered target.
func (r *Registry) Lookup(name string) (Adapter, error) {
	if a, ok := r.adapters[name]; ok {
		return a, nil
	}
	return nil, errors.New(errors.CodeTargetNotFound, "no adapter for target", nil).
		WithContext("target", name).
		WithContext("known", strings.Join(r.Names(), ", "))
}

// Names lists the registered target names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
