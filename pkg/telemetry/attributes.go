// Copyright 2026 © The Proteus Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry provides OpenTelemetry integration with rich attributes
// for extension compilation and hook bridge observability.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Semantic conventions for Proteus telemetry.
// These follow OpenTelemetry naming conventions where applicable.
const (
	// Extension resolution attributes
	AttrExtensionName    = "proteus.extension.name"
	AttrExtensionDir     = "proteus.extension.dir"
	AttrExtensionValid   = "proteus.extension.valid"
	AttrFindingsTotal    = "proteus.findings.total"
	AttrFindingsErrors   = "proteus.findings.errors"
	AttrFindingsWarnings = "proteus.findings.warnings"

	// Component count attributes
	AttrSkillsCount   = "proteus.components.skills"
	AttrAgentsCount   = "proteus.components.agents"
	AttrHooksCount    = "proteus.components.hooks"
	AttrToolsCount    = "proteus.components.tools"
	AttrPoliciesCount = "proteus.components.policies"

	// Build attributes
	AttrBuildID            = "proteus.build.id"
	AttrBuildTarget        = "proteus.build.target"
	AttrBuildDryRun        = "proteus.build.dry_run"
	AttrBuildFiles         = "proteus.build.files"
	AttrBuildWarnings      = "proteus.build.warnings"
	AttrBuildCompensations = "proteus.build.compensations"

	// Bridge attributes
	AttrBridgeOperation = "proteus.bridge.operation"
	AttrBridgeEvent     = "proteus.bridge.event"
	AttrBridgeAllowed   = "proteus.bridge.allowed"
	AttrBridgeHook      = "proteus.bridge.hook"

	// Tool invocation attributes
	AttrToolName       = "proteus.tool.name"
	AttrToolKind       = "proteus.tool.kind" // "command", "script", "mcp-proxy"
	AttrToolArgs       = "proteus.tool.arguments"
	AttrToolResult     = "proteus.tool.result"
	AttrToolDurationMs = "proteus.tool.duration_ms"
	AttrToolSuccess    = "proteus.tool.success"
)

// ResolutionAttributes returns attributes describing a resolved extension.
func ResolutionAttributes(name string, valid bool, errs, warns int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Bool(AttrExtensionValid, valid),
		attribute.Int(AttrFindingsTotal, errs+warns),
	}
	if name != "" {
		attrs = append(attrs, attribute.String(AttrExtensionName, name))
	}
	if errs > 0 {
		attrs = append(attrs, attribute.Int(AttrFindingsErrors, errs))
	}
	if warns > 0 {
		attrs = append(attrs, attribute.Int(AttrFindingsWarnings, warns))
	}
	return attrs
}

// ComponentAttributes returns per-kind component counts for resolution spans.
func ComponentAttributes(skills, agents, hooks, tools, policies int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrSkillsCount, skills),
		attribute.Int(AttrAgentsCount, agents),
		attribute.Int(AttrHooksCount, hooks),
		attribute.Int(AttrToolsCount, tools),
		attribute.Int(AttrPoliciesCount, policies),
	}
}

// BuildAttributes returns attributes for a compilation span.
func BuildAttributes(buildID, target string, dryRun bool) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrBuildTarget, target),
		attribute.Bool(AttrBuildDryRun, dryRun),
	}
	if buildID != "" {
		attrs = append(attrs, attribute.String(AttrBuildID, buildID))
	}
	return attrs
}

// BuildResultAttributes returns attributes describing compilation output.
func BuildResultAttributes(files, warnings, compensations int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrBuildFiles, files),
		attribute.Int(AttrBuildWarnings, warnings),
		attribute.Int(AttrBuildCompensations, compensations),
	}
}

// DecisionAttributes returns attributes for a bridge probe decision.
func DecisionAttributes(operation, event string, allowed bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrBridgeOperation, operation),
		attribute.String(AttrBridgeEvent, event),
		attribute.Bool(AttrBridgeAllowed, allowed),
	}
}

// ToolCallAttributes returns attributes for a tool invocation span.
func ToolCallAttributes(name, kind string, durationMs float64, success bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrToolName, name),
		attribute.String(AttrToolKind, kind),
		attribute.Float64(AttrToolDurationMs, durationMs),
		attribute.Bool(AttrToolSuccess, success),
	}
}

// ToolCallArgsResult returns attributes with tool arguments and result (truncated for safety).
func ToolCallArgsResult(args, result string, maxLen int) []attribute.KeyValue {
	if maxLen <= 0 {
		maxLen = 500
	}
	attrs := []attribute.KeyValue{}
	if args != "" {
		if len(args) > maxLen {
			args = args[:maxLen] + "..."
		}
		attrs = append(attrs, attribute.String(AttrToolArgs, args))
	}
	if result != "" {
		if len(result) > maxLen {
			result = result[:maxLen] + "..."
		}
		attrs = append(attrs, attribute.String(AttrToolResult, result))
	}
	return attrs
}
