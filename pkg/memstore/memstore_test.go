package memstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jllopis/proteus/pkg/errors"
	"github.com/jllopis/proteus/pkg/extension"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "memory.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSetGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, extension.ScopeProject, "style", "tabs"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := s.Get(ctx, extension.ScopeProject, "style")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "tabs" {
		t.Errorf("got %q, want tabs", got)
	}
}

func TestSetUpserts(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, extension.ScopeUser, "editor", "vim"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, extension.ScopeUser, "editor", "emacs"); err != nil {
		t.Fatalf("second Set failed: %v", err)
	}
	got, err := s.Get(ctx, extension.ScopeUser, "editor")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "emacs" {
		t.Errorf("upsert lost: got %q", got)
	}
}

func TestGetMissing(t *testing.T) {
	s := openStore(t)

	_, err := s.Get(context.Background(), extension.ScopeLocal, "absent")
	if err == nil {
		t.Fatal("expected error for missing key")
	}
	if !errors.IsCode(err, errors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestScopesAreIsolated(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, extension.ScopeProject, "key", "project-value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := s.Get(ctx, extension.ScopeUser, "key"); !errors.IsCode(err, errors.CodeNotFound) {
		t.Errorf("scopes must not leak, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, extension.ScopeSession, "temp", "1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Delete(ctx, extension.ScopeSession, "temp"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, extension.ScopeSession, "temp"); !errors.IsCode(err, errors.CodeNotFound) {
		t.Errorf("expected NOT_FOUND after delete, got %v", err)
	}

	// Deleting again is not an error.
	if err := s.Delete(ctx, extension.ScopeSession, "temp"); err != nil {
		t.Errorf("idempotent delete failed: %v", err)
	}
}

func TestListSorted(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	for _, key := range []string{"zeta", "alpha", "mid"} {
		if err := s.Set(ctx, extension.ScopeProject, key, "v"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	s.Set(ctx, extension.ScopeUser, "other-scope", "v")

	keys, err := s.List(ctx, extension.ScopeProject)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	if len(keys) != len(want) {
		t.Fatalf("got %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.Set(ctx, extension.ScopeProject, "persisted", "yes"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Get(ctx, extension.ScopeProject, "persisted")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if got != "yes" {
		t.Errorf("got %q, want yes", got)
	}
}
