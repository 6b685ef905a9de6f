// Package terragrunt extracts the requirements of a terragrunt stack from its
// terragrunt.hcl: the terraform source, explicit dependencies, and (unless
// disabled) the local modules and sops files used by that source.
//
// Terragrunt functions are never evaluated. A source or config_path that
// calls one is read as written, so a quoted "${get_terragrunt_dir()}/.." keeps
// its text and a bare find_in_parent_folders("vpc") becomes that literal call;
// placeholders then rewrite either form into a relative path.
package terragrunt

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kingrea/superdag/internal/providers/hclfile"
	"github.com/kingrea/superdag/internal/providers/sops"
	"github.com/kingrea/superdag/internal/providers/terraform"
	"github.com/kingrea/superdag/internal/requirements"
)

// Name is the routing name of this provider.
const Name = "terragrunt"

// DefaultFilename is read from the artifact directory unless the provider
// config sets "filename".
const DefaultFilename = "terragrunt.hcl"

// Provider parses terragrunt configurations.
type Provider struct {
	filename string
}

// Register installs the provider factory.
func Register(reg *requirements.Registry) {
	reg.MustRegister(Name, New)
}

// New constructs the provider.
func New(cfg requirements.Config) (requirements.Provider, error) {
	filename := cfg.String("filename", DefaultFilename)
	if filepath.IsAbs(filename) || strings.Contains(filename, "..") {
		return nil, fmt.Errorf("filename must be relative to the artifact, got %q", filename)
	}
	return &Provider{filename: filename}, nil
}

func (p *Provider) Name() string { return Name }

// Manifest is the subset of terragrunt.hcl the provider understands.
type Manifest struct {
	Source       string
	Dependencies []string
}

// Requirements reads <artifact>/terragrunt.hcl. A stack without the file has
// no terragrunt requirements.
func (p *Provider) Requirements(_ context.Context, artifact string, opts requirements.Options) ([]string, error) {
	path := filepath.Join(artifact, p.filename)
	manifest, err := Load(path, opts)
	if err != nil {
		if requirements.NotFound(err) {
			return nil, requirements.Missing(Name, artifact, path)
		}
		return nil, requirements.Malformed(Name, artifact, path, err)
	}

	set := map[string]struct{}{}
	for _, dep := range manifest.Dependencies {
		set[hclfile.Resolve(artifact, dep)] = struct{}{}
	}
	if manifest.Source == "" {
		return sortedKeys(set), nil
	}
	if !hclfile.IsLocal(manifest.Source) {
		set[manifest.Source] = struct{}{}
		return sortedKeys(set), nil
	}

	source := hclfile.Resolve(artifact, manifest.Source)
	set[source] = struct{}{}
	if !opts.SkipTerraformDeps {
		mods, err := terraform.Modules(source, opts)
		if err != nil && !requirements.NotFound(err) {
			return nil, requirements.Malformed(Name, artifact, source, err)
		}
		for _, mod := range mods {
			set[mod] = struct{}{}
		}
	}
	if !opts.SkipSopsDeps {
		files, err := sops.Files(source, opts.Segments(artifact), opts)
		if err != nil && !requirements.NotFound(err) {
			return nil, requirements.Malformed(Name, artifact, source, err)
		}
		for _, file := range files {
			set[file] = struct{}{}
		}
	}
	return sortedKeys(set), nil
}

// Load parses a terragrunt file. The terraform source is read from a
// `terraform { source }` block or a top-level `source` attribute, with
// placeholders applied and, for local sources, the `//` subdirectory marker
// collapsed. Dependencies come from `dependencies { paths }` and every
// `dependency "<name>" { config_path }`.
func Load(path string, opts requirements.Options) (Manifest, error) {
	f, err := hclfile.Parse(path)
	if err != nil {
		return Manifest{}, err
	}
	var manifest Manifest

	sourceAttr, err := hclfile.Attribute(f.Body, "source")
	if err != nil {
		return Manifest{}, err
	}
	blocks, err := hclfile.Blocks(f.Body, "terraform")
	if err != nil {
		return Manifest{}, err
	}
	for _, block := range blocks {
		attr, err := hclfile.Attribute(block.Body, "source")
		if err != nil {
			return Manifest{}, err
		}
		if attr != nil {
			sourceAttr = attr
		}
	}
	if sourceAttr != nil {
		source, err := f.EvalString(sourceAttr.Expr, nil)
		if err != nil {
			return Manifest{}, fmt.Errorf("terraform source: %w", err)
		}
		source = opts.Replace(source)
		if hclfile.IsLocal(source) {
			for strings.Contains(source, "//") {
				source = strings.ReplaceAll(source, "//", "/")
			}
		}
		manifest.Source = source
	}

	blocks, err = hclfile.Blocks(f.Body, "dependencies")
	if err != nil {
		return Manifest{}, err
	}
	for _, block := range blocks {
		attr, err := hclfile.Attribute(block.Body, "paths")
		if err != nil {
			return Manifest{}, err
		}
		if attr == nil {
			continue
		}
		paths, err := f.EvalStrings(attr.Expr, nil)
		if err != nil {
			return Manifest{}, fmt.Errorf("dependencies paths: %w", err)
		}
		for _, p := range paths {
			manifest.Dependencies = append(manifest.Dependencies, opts.Replace(p))
		}
	}

	blocks, err = hclfile.Blocks(f.Body, "dependency", "name")
	if err != nil {
		return Manifest{}, err
	}
	for _, block := range blocks {
		attr, err := hclfile.Attribute(block.Body, "config_path")
		if err != nil {
			return Manifest{}, err
		}
		if attr == nil {
			return Manifest{}, fmt.Errorf("dependency %q: config_path is required", block.Labels[0])
		}
		p, err := f.EvalString(attr.Expr, nil)
		if err != nil {
			return Manifest{}, fmt.Errorf("dependency %q config_path: %w", block.Labels[0], err)
		}
		manifest.Dependencies = append(manifest.Dependencies, opts.Replace(p))
	}
	return manifest, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
