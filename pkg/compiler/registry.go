package compiler

import (
	"github.com/jllopis/proteus/pkg/target"
	"github.com/jllopis/proteus/pkg/target/claude"
	"github.com/jllopis/proteus/pkg/target/cursor"
	"github.com/jllopis/proteus/pkg/target/roo"
)

// DefaultRegistry wires the built-in adapters. Each call returns a
// fresh registry so callers can extend it without sharing state.
func DefaultRegistry() *target.Registry {
	r := target.NewRegistry()
	for _, a := range []target.Adapter{claude.New(), cursor.New(), roo.New()} {
		// Built-in names are distinct; Register cannot fail here.
		_ = r.Register(a)
	}
	return r
}
