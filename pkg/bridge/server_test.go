package bridge

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jllopis/proteus/pkg/extension"
	"github.com/jllopis/proteus/pkg/memstore"
)

func TestNewServerBuildsProbeSurface(t *testing.T) {
	ir := &extension.IR{
		Manifest: extension.Manifest{Name: "demo", Version: "1.0.0"},
		Hooks: []extension.HookDefinition{
			commandHook("guard", extension.EventPreToolUse, "Bash", "exit 2"),
		},
		Tools: []extension.ToolDefinition{
			{
				Metadata: extension.ComponentMetadata{Name: "loc-counter", Description: "Counts lines."},
				Parameters: extension.ToolParameters{
					Properties: []extension.ToolProperty{
						{Name: "files", Type: "array", Items: "string"},
					},
					Required: []string{"files"},
				},
				Implementation: extension.ToolImplementation{Type: extension.ImplCommand, Command: "wc -l {{files}}"},
			},
		},
	}

	srv := NewServer(ir, t.TempDir())
	ops := srv.Engine().Operations()
	if len(ops) != 1 || ops[0].Name != "hook-pre-tool-use" {
		t.Fatalf("unexpected probe surface: %+v", ops)
	}

	// The engine behind the server makes real decisions.
	res, err := srv.Engine().Invoke(context.Background(), "hook-pre-tool-use", map[string]any{"tool_name": "Bash"})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if res.Allowed {
		t.Error("expected deny from guard hook")
	}
}

func TestNewServerWithMemoryStore(t *testing.T) {
	store, err := memstore.Open(filepath.Join(t.TempDir(), "memory.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	ir := &extension.IR{Manifest: extension.Manifest{Name: "demo"}}
	srv := NewServer(ir, "", WithMemoryStore(store))
	if srv.store != store {
		t.Error("memory store not attached")
	}
}

func TestStringArg(t *testing.T) {
	args := map[string]any{"name": "value", "count": 3}
	if got := stringArg(args, "name"); got != "value" {
		t.Errorf("got %q", got)
	}
	if got := stringArg(args, "count"); got != "" {
		t.Errorf("non-string arg should be empty, got %q", got)
	}
	if got := stringArg(args, "missing"); got != "" {
		t.Errorf("missing arg should be empty, got %q", got)
	}
}
