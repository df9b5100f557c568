// Package toolrun executes tool definitions: command templates with
// {{param}} substitution, script files, and mcp-proxy delegation to
// another MCP server. It is the run-time counterpart of the tool
// components the compiler serves over the compensation channel.
package toolrun

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jllopis/proteus/pkg/errors"
	"github.com/jllopis/proteus/pkg/extension"
)

// ProxyFunc forwards an mcp-proxy invocation to the named server and
// tool, returning the text result.
type ProxyFunc func(ctx context.Context, server, tool string, args map[string]any) (string, error)

// Options configure tool execution.
type Options struct {
	// Root anchors relative script paths (the extension root).
	Root string
	// Proxy handles mcp-proxy implementations. Nil means proxying is
	// unavailable and such tools fail with CodeToolFailure.
	Proxy ProxyFunc
}

// Run executes one tool invocation and returns its standard output
// verbatim. Missing required arguments and unknown implementation
// types are CodeInvalidInput; a failing process is CodeToolFailure
// carrying the stderr text.
func Run(ctx context.Context, tool extension.ToolDefinition, args map[string]any, opts Options) (string, error) {
	if err := checkRequired(tool, args); err != nil {
		return "", err
	}

	switch tool.Implementation.Type {
	case extension.ImplCommand:
		command := Substitute(tool.Implementation.Command, args)
		return runShell(ctx, tool.Metadata.Name, command, nil)
	case extension.ImplScript:
		script := tool.Implementation.Script
		if !filepath.IsAbs(script) && opts.Root != "" {
			script = filepath.Join(opts.Root, script)
		}
		payload, err := json.Marshal(args)
		if err != nil {
			return "", errors.New(errors.CodeInvalidInput, "serialize script arguments", err).
				WithContext("tool", tool.Metadata.Name)
		}
		return runShell(ctx, tool.Metadata.Name, "", []string{script, string(payload)})
	case extension.ImplMCPProxy:
		if opts.Proxy == nil {
			return "", errors.New(errors.CodeToolFailure, "no mcp proxy configured", nil).
				WithContext("tool", tool.Metadata.Name).
				WithContext("server", tool.Implementation.Server)
		}
		return opts.Proxy(ctx, tool.Implementation.Server, tool.Implementation.Tool, args)
	default:
		return "", errors.New(errors.CodeInvalidInput, "unknown implementation type", nil).
			WithContext("tool", tool.Metadata.Name).
			WithContext("type", string(tool.Implementation.Type))
	}
}

// Substitute replaces every {{param}} occurrence in the template with
// the argument's textual form: strings verbatim, arrays space-joined,
// scalars via fmt. Unknown placeholders are left untouched so the
// failure is visible in the executed command.
func Substitute(template string, args map[string]any) string {
	out := template
	for name, value := range args {
		out = strings.ReplaceAll(out, "{{"+name+"}}", argText(value))
	}
	return out
}

func argText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, argText(item))
		}
		return strings.Join(parts, " ")
	case []string:
		return strings.Join(v, " ")
	default:
		return fmt.Sprint(v)
	}
}

func checkRequired(tool extension.ToolDefinition, args map[string]any) error {
	for _, name := range tool.Parameters.Required {
		if _, ok := args[name]; !ok {
			return errors.New(errors.CodeInvalidInput, "missing required argument", nil).
				WithContext("tool", tool.Metadata.Name).
				WithContext("argument", name)
		}
	}
	return nil
}

// runShell executes either a shell command line or an argv vector.
// Exit 0 returns stdout verbatim; anything else is a CodeToolFailure
// carrying stderr (falling back to the exit error text).
func runShell(ctx context.Context, toolName, command string, argv []string) (string, error) {
	var cmd *exec.Cmd
	if command != "" {
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	} else {
		cmd = exec.CommandContext(ctx, argv[0], argv[1:]...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			return "", errors.New(errors.CodeToolFailure, detail, err).
				WithContext("tool", toolName).
				WithContext("exit_code", exitErr.ExitCode())
		}
		return "", errors.New(errors.CodeToolFailure, detail, err).
			WithContext("tool", toolName)
	}
	return stdout.String(), nil
}
