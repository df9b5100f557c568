// Package loader reads extension sources from disk: the manifest, the
// fixed per-kind component files and plain rule documents. It performs
// no interpretation beyond frontmatter splitting; field normalization
// lives in pkg/parser.
package loader

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jllopis/proteus/pkg/errors"
	"github.com/jllopis/proteus/pkg/extension"
)

// ManifestFilename is the fixed descriptor name at the extension root.
const ManifestFilename = "extension.yaml"

// DefaultPaths returns the per-kind directory layout used when the
// manifest omits entries.
func DefaultPaths() extension.ManifestPaths {
	return extension.ManifestPaths{
		Skills:   "skills",
		Agents:   "agents",
		Hooks:    "hooks",
		Tools:    "tools",
		Policies: "policies",
		Rules:    "rules",
	}
}

// LoadManifest reads extension.yaml from dir. A missing file yields a
// CodeManifestNotFound error; unknown keys are tolerated. Omitted path
// entries are filled with the defaults.
func LoadManifest(dir string) (*extension.Manifest, error) {
	path := filepath.Join(dir, ManifestFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeManifestNotFound, "no "+ManifestFilename+" found", err).
				WithContext("dir", dir)
		}
		return nil, errors.New(errors.CodeInvalidInput, "read manifest", err).
			WithContext("path", path)
	}
	var m extension.Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.New(errors.CodeInvalidInput, "parse manifest", err).
			WithContext("path", path)
	}
	fillPathDefaults(&m.Paths)
	return &m, nil
}

func fillPathDefaults(p *extension.ManifestPaths) {
	defaults := DefaultPaths()
	if p.Skills == "" {
		p.Skills = defaults.Skills
	}
	if p.Agents == "" {
		p.Agents = defaults.Agents
	}
	if p.Hooks == "" {
		p.Hooks = defaults.Hooks
	}
	if p.Tools == "" {
		p.Tools = defaults.Tools
	}
	if p.Policies == "" {
		p.Policies = defaults.Policies
	}
	if p.Rules == "" {
		p.Rules = defaults.Rules
	}
}
