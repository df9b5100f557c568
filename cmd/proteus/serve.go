// Copyright 2026 © The Proteus Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jllopis/proteus/pkg/bridge"
	"github.com/jllopis/proteus/pkg/config"
	"github.com/jllopis/proteus/pkg/errors"
	proteusmcp "github.com/jllopis/proteus/pkg/mcp"
	"github.com/jllopis/proteus/pkg/mcp/pool"
	"github.com/jllopis/proteus/pkg/memstore"
	"github.com/jllopis/proteus/pkg/resolver"
	"github.com/jllopis/proteus/pkg/telemetry"
	"github.com/jllopis/proteus/pkg/toolrun"
)

func runServe(ctx context.Context, global globalFlags, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	transport := fs.String("transport", cfg.Serve.Transport, "Transport: stdio or http")
	addr := fs.String("addr", cfg.Serve.Addr, "Listen address for the http transport")
	memoryPath := fs.String("memory", cfg.Memory.Path, "Path to the memory database (empty disables memory tools)")
	if err := fs.Parse(args); err != nil {
		fatal(err)
	}
	dir := "."
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}

	resolveCtx, cancel := context.WithTimeout(ctx, global.Timeout)
	res, err := resolver.Resolve(resolveCtx, dir, resolver.Options{})
	cancel()
	if err != nil {
		fatal(err)
	}
	if !res.Valid {
		fatal(fmt.Errorf("extension in %s is invalid; run 'proteus check %s'", dir, dir))
	}

	var opts []bridge.ServerOption

	metrics, err := telemetry.NewErrorMetrics(ctx)
	if err != nil {
		fatal(err)
	}
	opts = append(opts, bridge.WithErrorMetrics(metrics))

	if *memoryPath != "" {
		store, err := memstore.Open(*memoryPath)
		if err != nil {
			fatal(err)
		}
		defer store.Close()
		opts = append(opts, bridge.WithMemoryStore(store))
	}

	if len(cfg.MCP.Servers) > 0 {
		connections := pool.New()
		defer connections.Close()
		if err := registerUpstreams(connections, cfg.MCP.Servers); err != nil {
			fatal(err)
		}
		opts = append(opts, bridge.WithProxy(poolProxy(connections)))
	}

	// Long-running command: pick up log-level edits without a restart.
	if path := configFilePath(global.ConfigArgs); path != "" {
		watcher, _, werr := config.WatchConfig(ctx, path)
		if werr != nil {
			slog.Warn("config watch disabled", "path", path, "error", werr)
		} else {
			watcher.OnChange(func(next *config.Config) {
				telemetry.ConfigureSlog(os.Stderr, next.Log.Level, next.Log.Format)
			})
			defer watcher.Stop()
		}
	}

	server := bridge.NewServer(res.IR, dir, opts...)

	switch *transport {
	case "stdio":
		slog.Info("serving compensation bridge", "transport", "stdio", "extension", res.IR.Manifest.Name)
		err = server.ServeStdio()
	case "http":
		slog.Info("serving compensation bridge", "transport", "http", "addr", *addr, "extension", res.IR.Manifest.Name)
		err = server.ServeHTTP(*addr)
	default:
		fatal(fmt.Errorf("unknown transport %q (want stdio or http)", *transport))
	}
	if err != nil {
		fatal(err)
	}
}

// configFilePath extracts the last --config value from the collected
// global config arguments.
func configFilePath(args []string) string {
	var path string
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--config" && i+1 < len(args):
			path = args[i+1]
			i++
		case strings.HasPrefix(args[i], "--config="):
			path = strings.TrimPrefix(args[i], "--config=")
		}
	}
	return path
}

// registerUpstreams maps the configured MCP servers onto the
// connection pool so mcp-proxy tools can delegate to them.
func registerUpstreams(connections *pool.Pool, servers map[string]config.MCPServerConfig) error {
	for name, sc := range servers {
		clientOpts := []proteusmcp.ClientOption{proteusmcp.WithServerName(name)}
		if sc.TimeoutSeconds != nil && *sc.TimeoutSeconds > 0 {
			clientOpts = append(clientOpts, proteusmcp.WithTimeout(time.Duration(*sc.TimeoutSeconds)*time.Second))
		}

		entry := pool.ServerConfig{
			Name:            name,
			ProtocolVersion: sc.ProtocolVersion,
			ClientOptions:   clientOpts,
		}
		switch sc.Transport {
		case "", "stdio":
			entry.Type = pool.ServerTypeStdio
			entry.Command = sc.Command
			entry.Args = sc.Args
		case "http":
			entry.Type = pool.ServerTypeHTTP
			entry.URL = sc.URL
		default:
			return fmt.Errorf("mcp server %q: unknown transport %q", name, sc.Transport)
		}
		if err := connections.Register(entry); err != nil {
			return fmt.Errorf("mcp server %q: %w", name, err)
		}
	}
	return nil
}

// poolProxy forwards mcp-proxy tool invocations through the shared
// connection pool and flattens the result to text.
func poolProxy(connections *pool.Pool) toolrun.ProxyFunc {
	return func(ctx context.Context, server, tool string, args map[string]any) (string, error) {
		client, err := connections.Get(ctx, server)
		if err != nil {
			return "", errors.New(errors.CodeToolFailure,
				fmt.Sprintf("connect to mcp server %q", server), err)
		}
		defer connections.Release(server, client)

		result, err := client.CallTool(ctx, tool, args)
		if err != nil {
			return "", errors.New(errors.CodeToolFailure,
				fmt.Sprintf("call %s on %q", tool, server), err)
		}
		text := flattenContent(result)
		if result.IsError {
			return "", errors.New(errors.CodeToolFailure,
				fmt.Sprintf("%s on %q failed: %s", tool, server, text), nil)
		}
		return text, nil
	}
}

func flattenContent(result *mcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		switch c := content.(type) {
		case mcp.TextContent:
			parts = append(parts, c.Text)
		case *mcp.TextContent:
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "\n")
}
