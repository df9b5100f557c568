// Copyright 2026 © The Proteus Authors
// SPDX-License-Identifier: Apache-2.0

package scaffold

const manifestTemplate = `name: {{.Name}}
version: 0.1.0
description: "{{.Description}}"
`

const readmeTemplate = `# {{.Name}}

{{.Description}}

## Layout

Components live in per-kind directories, one component per
subdirectory, each described by a fixed-name markdown file with YAML
frontmatter:

- skills/<name>/SKILL.md
- agents/<name>/AGENT.md
- hooks/<name>/HOOK.md
- tools/<name>/TOOL.md
- policies/<name>/POLICY.md
- rules/*.md (plain markdown, no frontmatter)

## Workflow

Validate, then compile for the host you use:

    proteus check
    proteus build --target claude

Targets that cannot express hooks or tools natively report
compensation requirements; fulfill them by running the bridge:

    proteus serve
`

const skillTemplate = `---
name: getting-started
description: "Explains how this extension is organized and compiled."
allowed-tools: Read Grep
invocation:
  user-invocable: true
  argument-hint: "[topic]"
---
When asked about this extension, read the component files under the
per-kind directories and summarize what each one contributes.
`

const ruleTemplate = `Prefer small, focused changes. Explain what you changed and why.
`

const hookTemplate = `---
name: guard-bash
description: "Reviews shell commands before they run."
event: PreToolUse
matcher: "^Bash$"
type: command
command: ./hooks/guard-bash/check.sh
timeout: 10
fallback:
  strategy: mcp-tool
---
Exit 0 to allow, 2 to deny with the reason on stderr.
`

const policyTemplate = `---
name: safety
description: "Baseline permission rules."
permissions:
  deny:
    - "Bash(rm -rf*)"
  ask:
    - "Write(*)"
---
Deny destructive shell commands outright; prompt before writes.
`

const agentTemplate = `---
name: helper
description: "General-purpose helper for routine tasks."
model: inherit
tools:
  allowed:
    - Read
    - Grep
memoryScope: project
whenToUse: "Delegate routine lookups and summaries here."
---
You are a focused helper. Answer briefly and cite the files you read.
`

const toolTemplate = `---
name: word-count
description: "Counts words in the given text."
parameters:
  properties:
    text:
      type: string
      description: "Text to count."
  required: [text]
implementation:
  type: command
  command: "printf '%s' {{"{{text}}"}} | wc -w"
---
Counts whitespace-separated words. The result is the count on stdout.
`
