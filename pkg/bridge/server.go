package bridge

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jllopis/proteus/pkg/errors"
	"github.com/jllopis/proteus/pkg/extension"
	proteusmcp "github.com/jllopis/proteus/pkg/mcp"
	"github.com/jllopis/proteus/pkg/memstore"
	"github.com/jllopis/proteus/pkg/telemetry"
	"github.com/jllopis/proteus/pkg/toolrun"
)

// Server is the shared compensation service: it publishes the
// engine's probe operations, the extension's MCP-exposed tools and
// the scoped memory tools over MCP for hosts that declared
// compensation requirements at compile time.
type Server struct {
	engine  *Engine
	mcp     *proteusmcp.Server
	store   *memstore.Store
	root    string
	proxy   toolrun.ProxyFunc
	metrics *telemetry.ErrorMetrics
	log     *slog.Logger
}

// ServerOption customizes the bridge server.
type ServerOption func(*Server)

// WithMemoryStore enables the scoped memory tools.
func WithMemoryStore(store *memstore.Store) ServerOption {
	return func(s *Server) { s.store = store }
}

// WithProxy supplies the forwarder for mcp-proxy tool implementations.
func WithProxy(proxy toolrun.ProxyFunc) ServerOption {
	return func(s *Server) { s.proxy = proxy }
}

// WithErrorMetrics enables error-rate tracking on probe and tool
// failures.
func WithErrorMetrics(metrics *telemetry.ErrorMetrics) ServerOption {
	return func(s *Server) { s.metrics = metrics }
}

// NewServer assembles the compensation surface for one resolved
// extension. Probe operations come from the engine; tool serving
// covers every tool whose mcp exposure is not explicitly false.
func NewServer(ir *extension.IR, root string, opts ...ServerOption) *Server {
	s := &Server{
		engine: NewEngine(ir.AllHooks()),
		mcp:    proteusmcp.NewServer(ir.Manifest.Name+"-bridge", ir.Manifest.Version),
		root:   root,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, op := range s.engine.Operations() {
		s.registerProbe(op)
	}
	for _, tool := range ir.Tools {
		if tool.Exposure.MCPEnabled() {
			s.registerTool(tool)
		}
	}
	if s.store != nil {
		s.registerMemoryTools()
	}
	return s
}

// Engine exposes the underlying compensation engine, mainly for
// one-shot probe invocations from the CLI.
func (s *Server) Engine() *Engine { return s.engine }

// ServeStdio blocks serving the stdio transport.
func (s *Server) ServeStdio() error { return s.mcp.ServeStdio() }

// ServeHTTP blocks serving the streamable-HTTP transport on addr.
func (s *Server) ServeHTTP(addr string) error { return s.mcp.ServeHTTP(addr) }

func (s *Server) registerProbe(op Operation) {
	toolOpts := []mcp.ToolOption{mcp.WithDescription(op.Description)}
	for _, field := range op.Input {
		var propOpts []mcp.PropertyOption
		if field.Description != "" {
			propOpts = append(propOpts, mcp.Description(field.Description))
		}
		if field.Required {
			propOpts = append(propOpts, mcp.Required())
		}
		toolOpts = append(toolOpts, mcp.WithString(field.Name, propOpts...))
	}

	name := op.Name
	s.mcp.AddTool(mcp.NewTool(name, toolOpts...), func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
		result, err := s.engine.Invoke(ctx, name, args)
		if err != nil {
			s.metrics.RecordErrorMetric(ctx, err, "bridge")
			return mcp.NewToolResultError(err.Error()), nil
		}
		if len(result.Warnings) > 0 {
			// Fail-open decisions count as recoveries.
			s.metrics.RecordRecovery(ctx, errors.CodeHookFailure)
		}
		payload, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(payload)), nil
	})
}

// registerTool publishes one extension tool, translating its declared
// parameter schema into the MCP schema vocabulary.
func (s *Server) registerTool(tool extension.ToolDefinition) {
	required := map[string]bool{}
	for _, name := range tool.Parameters.Required {
		required[name] = true
	}

	toolOpts := []mcp.ToolOption{mcp.WithDescription(tool.Metadata.Description)}
	for _, prop := range tool.Parameters.Properties {
		var propOpts []mcp.PropertyOption
		if prop.Description != "" {
			propOpts = append(propOpts, mcp.Description(prop.Description))
		}
		if required[prop.Name] {
			propOpts = append(propOpts, mcp.Required())
		}
		switch prop.Type {
		case "number":
			toolOpts = append(toolOpts, mcp.WithNumber(prop.Name, propOpts...))
		case "boolean":
			toolOpts = append(toolOpts, mcp.WithBoolean(prop.Name, propOpts...))
		case "array":
			items := prop.Items
			if items == "" {
				items = "string"
			}
			propOpts = append(propOpts, mcp.Items(map[string]any{"type": items}))
			toolOpts = append(toolOpts, mcp.WithArray(prop.Name, propOpts...))
		case "object":
			toolOpts = append(toolOpts, mcp.WithObject(prop.Name, propOpts...))
		default:
			toolOpts = append(toolOpts, mcp.WithString(prop.Name, propOpts...))
		}
	}

	def := tool
	s.mcp.AddTool(mcp.NewTool(tool.Metadata.Name, toolOpts...), func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
		out, err := toolrun.Run(ctx, def, args, toolrun.Options{Root: s.root, Proxy: s.proxy})
		if err != nil {
			s.metrics.RecordErrorMetric(ctx, err, "toolrun")
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	})
}

func (s *Server) registerMemoryTools() {
	scopeOpt := func() mcp.ToolOption {
		return mcp.WithString("scope", mcp.Required(),
			mcp.Description("Memory scope: user, project, local or session"))
	}

	s.mcp.AddTool(mcp.NewTool("memory-get",
		mcp.WithDescription("Read a value from scoped extension memory"),
		scopeOpt(),
		mcp.WithString("key", mcp.Required()),
	), func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
		scope, key := stringArg(args, "scope"), stringArg(args, "key")
		value, err := s.store.Get(ctx, extension.MemoryScope(scope), key)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(value), nil
	})

	s.mcp.AddTool(mcp.NewTool("memory-set",
		mcp.WithDescription("Write a value into scoped extension memory"),
		scopeOpt(),
		mcp.WithString("key", mcp.Required()),
		mcp.WithString("value", mcp.Required()),
	), func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
		scope, key := stringArg(args, "scope"), stringArg(args, "key")
		if err := s.store.Set(ctx, extension.MemoryScope(scope), key, stringArg(args, "value")); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("ok"), nil
	})

	s.mcp.AddTool(mcp.NewTool("memory-list",
		mcp.WithDescription("List the keys in one memory scope"),
		scopeOpt(),
	), func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
		keys, err := s.store.List(ctx, extension.MemoryScope(stringArg(args, "scope")))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		payload, _ := json.Marshal(keys)
		return mcp.NewToolResultText(string(payload)), nil
	})
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}
