// Copyright 2026 © The Proteus Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jllopis/proteus/pkg/config"
	"github.com/jllopis/proteus/pkg/mcp/pool"
)

func TestRegisterUpstreams(t *testing.T) {
	connections := pool.New()
	defer connections.Close()

	timeout := 10
	err := registerUpstreams(connections, map[string]config.MCPServerConfig{
		"files":  {Command: "mcp-files", Args: []string{"--root", "/tmp"}, TimeoutSeconds: &timeout},
		"github": {Transport: "http", URL: "http://localhost:8080/mcp", ProtocolVersion: "2025-03-26"},
	})
	if err != nil {
		t.Fatalf("registerUpstreams failed: %v", err)
	}

	files, ok := connections.ServerInfo("files")
	if !ok {
		t.Fatal("files server not registered")
	}
	if files.Type != pool.ServerTypeStdio || files.Command != "mcp-files" {
		t.Errorf("unexpected config: %+v", files)
	}

	github, ok := connections.ServerInfo("github")
	if !ok {
		t.Fatal("github server not registered")
	}
	if github.Type != pool.ServerTypeHTTP || github.ProtocolVersion != "2025-03-26" {
		t.Errorf("unexpected config: %+v", github)
	}
}

func TestRegisterUpstreamsUnknownTransport(t *testing.T) {
	connections := pool.New()
	defer connections.Close()

	err := registerUpstreams(connections, map[string]config.MCPServerConfig{
		"bad": {Transport: "websocket", URL: "ws://localhost"},
	})
	if err == nil {
		t.Fatal("expected error for unknown transport")
	}
}

func TestConfigFilePath(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{nil, ""},
		{[]string{"--set", "log.level=debug"}, ""},
		{[]string{"--config", "a.yaml"}, "a.yaml"},
		{[]string{"--config=b.yaml"}, "b.yaml"},
		{[]string{"--config", "a.yaml", "--config=b.yaml"}, "b.yaml"},
	}
	for _, tt := range tests {
		if got := configFilePath(tt.args); got != tt.want {
			t.Errorf("configFilePath(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestFlattenContent(t *testing.T) {
	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: "first"},
			mcp.TextContent{Type: "text", Text: "second"},
		},
	}
	if got := flattenContent(result); got != "first\nsecond" {
		t.Errorf("flattenContent = %q", got)
	}
	if got := flattenContent(&mcp.CallToolResult{}); got != "" {
		t.Errorf("empty result should flatten to empty string, got %q", got)
	}
}
