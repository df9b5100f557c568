// Package compiler orchestrates one build: validate the requested
// target, resolve the extension, run the adapter and materialize the
// emitted files. Structural problems (unknown target, error-severity
// findings) fail fast before anything is written.
package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/proteus/pkg/errors"
	"github.com/jllopis/proteus/pkg/extension"
	"github.com/jllopis/proteus/pkg/resolver"
	"github.com/jllopis/proteus/pkg/target"
)

// Options configure one compile request.
type Options struct {
	// Target names the adapter to run.
	Target string
	// SourceDir is the extension root.
	SourceDir string
	// OutDir overrides the default dist/<target> output location.
	OutDir string
	// DryRun skips file materialization.
	DryRun bool
	// FixYAMLDescriptions forwards the resolver repair option.
	FixYAMLDescriptions bool
	// Registry supplies the adapter set; nil selects DefaultRegistry.
	Registry *target.Registry
}

// BuildResult is the externally observable outcome of one compile.
// Warnings list resolver-stage findings ahead of adapter-stage ones.
type BuildResult struct {
	Target        string                           `json:"target"`
	BuildID       string                           `json:"buildId"`
	OutDir        string                           `json:"outDir,omitempty"`
	Files         []string                         `json:"files"`
	Warnings      []extension.Finding              `json:"warnings,omitempty"`
	Compensations []target.CompensationRequirement `json:"compensations,omitempty"`
	Written       bool                             `json:"written"`
}

// Compile runs one build request. It returns an error for the two
// structural cases only: the target adapter is missing, or resolution
// produced error-severity findings (every one of them listed in the
// message). Warnings never block.
func Compile(ctx context.Context, opts Options) (*BuildResult, error) {
	registry := opts.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}
	adapter, err := registry.Lookup(opts.Target)
	if err != nil {
		return nil, err
	}

	tracer := otel.Tracer("proteus/compiler")
	ctx, span := tracer.Start(ctx, "Compiler.Compile", trace.WithAttributes(
		attribute.String("build.target", opts.Target),
		attribute.String("build.source_dir", opts.SourceDir),
		attribute.Bool("build.dry_run", opts.DryRun),
	))
	defer span.End()

	res, err := resolver.Resolve(ctx, opts.SourceDir, resolver.Options{
		FixYAMLDescriptions: opts.FixYAMLDescriptions,
	})
	if err != nil {
		return nil, err
	}
	if !res.Valid {
		return nil, resolveError(res.Findings)
	}

	out, err := adapter.Compile(res.IR)
	if err != nil {
		return nil, errors.New(errors.CodeInternal, "adapter failed", err).
			WithContext("target", opts.Target)
	}

	result := &BuildResult{
		Target:        opts.Target,
		BuildID:       uuid.NewString(),
		Files:         out.Paths(),
		Warnings:      append(warningsOf(res.Findings), out.Warnings...),
		Compensations: out.Compensations,
	}

	if !opts.DryRun {
		outDir := opts.OutDir
		if outDir == "" {
			outDir = filepath.Join(opts.SourceDir, "dist", opts.Target)
		}
		if err := writeFiles(outDir, out); err != nil {
			return nil, err
		}
		result.OutDir = outDir
		result.Written = true
	}

	span.SetAttributes(
		attribute.Int("build.files", len(result.Files)),
		attribute.Int("build.warnings", len(result.Warnings)),
		attribute.Int("build.compensations", len(result.Compensations)),
	)
	slog.Default().Info("compiler.build.complete",
		slog.String("target", result.Target),
		slog.String("build_id", result.BuildID),
		slog.Int("files", len(result.Files)),
		slog.Int("warnings", len(result.Warnings)),
		slog.Bool("written", result.Written),
	)
	return result, nil
}

// writeFiles materializes the adapter output under outDir in sorted
// path order. A filesystem error aborts the remaining writes; files
// already written stay on disk, since a re-run overwrites them anyway.
func writeFiles(outDir string, out *target.Output) error {
	for _, rel := range out.Paths() {
		full := filepath.Join(outDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return errors.New(errors.CodeInternal, "create output directory", err).
				WithContext("path", full)
		}
		if err := os.WriteFile(full, []byte(out.Files[rel]), 0o644); err != nil {
			return errors.New(errors.CodeInternal, "write output file", err).
				WithContext("path", full)
		}
	}
	return nil
}

func resolveError(findings []extension.Finding) error {
	errs := extension.Filter(findings, extension.SeverityError)
	lines := make([]string, 0, len(errs))
	for _, f := range errs {
		lines = append(lines, f.String())
	}
	return errors.New(errors.CodeResolveFailed,
		fmt.Sprintf("resolution failed with %d error(s):\n%s", len(errs), strings.Join(lines, "\n")), nil)
}

func warningsOf(findings []extension.Finding) []extension.Finding {
	return extension.Filter(findings, extension.SeverityWarning)
}
