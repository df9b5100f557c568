// Package resolver turns an extension source tree into a validated IR.
// One pass discovers every component kind under the manifest-declared
// directories, parses and validates each file independently, and
// assembles the IR. Data problems never abort the pass: they accumulate
// as findings and the broken file is skipped, leaving siblings intact.
package resolver

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/proteus/pkg/errors"
	"github.com/jllopis/proteus/pkg/extension"
	"github.com/jllopis/proteus/pkg/loader"
	"github.com/jllopis/proteus/pkg/parser"
)

// Options tune one resolution pass.
type Options struct {
	// FixYAMLDescriptions retries a failed frontmatter parse after
	// quoting bare description: values containing colons.
	FixYAMLDescriptions bool
}

// Result is the outcome of one resolution pass. Valid is true iff no
// finding carries error severity; warnings never invalidate.
type Result struct {
	IR       *extension.IR       `json:"ir"`
	Findings []extension.Finding `json:"findings,omitempty"`
	Valid    bool                `json:"valid"`
}

// Resolve loads, parses and validates the extension rooted at dir. The
// returned error covers only structural failures (the directory itself
// is missing); everything data-shaped lands in Result.Findings.
func Resolve(ctx context.Context, dir string, opts Options) (*Result, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeNotFound, "extension directory not found", err).
				WithContext("dir", dir)
		}
		return nil, errors.New(errors.CodeInternal, "stat extension directory", err).
			WithContext("dir", dir)
	}

	tracer := otel.Tracer("proteus/resolver")
	ctx, span := tracer.Start(ctx, "Resolver.Resolve", trace.WithAttributes(
		attribute.String("extension.dir", dir),
	))
	defer span.End()

	r := &resolution{
		opts:   opts,
		tracer: tracer,
		log:    slog.Default(),
	}

	manifestPath := filepath.Join(dir, loader.ManifestFilename)
	manifest, err := loader.LoadManifest(dir)
	if err != nil {
		r.record(extension.Errorf("manifest", manifestPath, "%v", err))
		manifest = &extension.Manifest{Paths: loader.DefaultPaths()}
	} else {
		r.findings = append(r.findings, extension.ValidateManifest(manifest, manifestPath)...)
	}

	ir := &extension.IR{Manifest: *manifest}
	ir.Skills = loadKind(ctx, r, extension.KindSkill,
		filepath.Join(dir, manifest.Paths.Skills), parser.ParseSkill, extension.ValidateSkill)
	ir.Agents = loadKind(ctx, r, extension.KindAgent,
		filepath.Join(dir, manifest.Paths.Agents), parser.ParseAgent, extension.ValidateAgent)
	ir.Hooks = loadKind(ctx, r, extension.KindHook,
		filepath.Join(dir, manifest.Paths.Hooks), parser.ParseHook, extension.ValidateHook)
	ir.Tools = loadKind(ctx, r, extension.KindTool,
		filepath.Join(dir, manifest.Paths.Tools), parser.ParseTool, extension.ValidateTool)
	ir.Policies = loadKind(ctx, r, extension.KindPolicy,
		filepath.Join(dir, manifest.Paths.Policies), parser.ParsePolicy, extension.ValidatePolicy)
	ir.Rules = r.rules(filepath.Join(dir, manifest.Paths.Rules))

	res := &Result{
		IR:       ir,
		Findings: r.findings,
		Valid:    !extension.HasErrors(r.findings),
	}
	span.SetAttributes(
		attribute.Int("components.skills", len(ir.Skills)),
		attribute.Int("components.agents", len(ir.Agents)),
		attribute.Int("components.hooks", len(ir.Hooks)),
		attribute.Int("components.tools", len(ir.Tools)),
		attribute.Int("components.policies", len(ir.Policies)),
		attribute.Int("findings", len(res.Findings)),
		attribute.Bool("valid", res.Valid),
	)
	r.log.Debug("resolver.resolve.complete",
		slog.String("dir", dir),
		slog.Int("findings", len(res.Findings)),
		slog.Bool("valid", res.Valid),
	)
	return res, nil
}

type resolution struct {
	opts     Options
	tracer   trace.Tracer
	log      *slog.Logger
	findings []extension.Finding
}

func (r *resolution) record(f extension.Finding) {
	r.findings = append(r.findings, f)
}

// frontmatter reads path and splits its YAML block from the body. A
// failure records a finding and reports !ok.
func (r *resolution) frontmatter(label, path string) (fm, body string, ok bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		r.record(extension.Errorf(label, path, "read: %v", err))
		return "", "", false
	}
	fm, body, err = loader.SplitFrontmatter(string(data))
	if err != nil {
		r.record(extension.Errorf(label, path, "%v", err))
		return "", "", false
	}
	return fm, body, true
}

// loadKind discovers, parses and validates one component kind. Each file
// fails independently: a broken file records its findings and is
// skipped, siblings are unaffected. Components with warnings stay in.
func loadKind[T any](ctx context.Context, r *resolution, kind extension.Kind, root string,
	parse func(fm, body, path string) (*T, error),
	validate func(*T) []extension.Finding,
) []T {
	_, span := r.tracer.Start(ctx, "Resolver.Load", trace.WithAttributes(
		attribute.String("component.kind", string(kind)),
	))
	defer span.End()

	paths, err := loader.Discover(root, kind.Filename())
	if err != nil {
		r.record(extension.Errorf(string(kind), root, "discover: %v", err))
		return nil
	}
	var out []T
	for _, path := range paths {
		fm, body, ok := r.frontmatter(string(kind), path)
		if !ok {
			continue
		}
		def, err := parse(fm, body, path)
		if err != nil && r.opts.FixYAMLDescriptions {
			def, err = parse(loader.FixDescriptionQuoting(fm), body, path)
		}
		if err != nil {
			r.record(extension.Errorf(string(kind), path, "%v", err))
			continue
		}
		findings := validate(def)
		r.findings = append(r.findings, findings...)
		if extension.HasErrors(findings) {
			continue
		}
		out = append(out, *def)
	}
	span.SetAttributes(attribute.Int("count", len(out)))
	r.log.Debug("resolver.kind.loaded",
		slog.String("kind", string(kind)),
		slog.Int("count", len(out)),
	)
	return out
}

func (r *resolution) rules(root string) map[string]string {
	rules, err := loader.DiscoverRules(root)
	if err != nil {
		r.record(extension.Errorf("rules", root, "discover: %v", err))
		return nil
	}
	return rules
}
