// Package terraform finds the local modules a terraform configuration uses.
package terraform

import (
	"context"
	"fmt"
	"sort"

	"github.com/kingrea/superdag/internal/providers/hclfile"
	"github.com/kingrea/superdag/internal/requirements"
)

// Name is the routing name of this provider.
const Name = "terraform"

// Provider reports `module` blocks with a local source as requirements.
type Provider struct{}

// Register installs the provider factory.
func Register(reg *requirements.Registry) {
	reg.MustRegister(Name, New)
}

// New constructs the provider. It takes no configuration.
func New(requirements.Config) (requirements.Provider, error) {
	return &Provider{}, nil
}

func (p *Provider) Name() string { return Name }

// Requirements lists the local module directories referenced by the *.tf
// files inside artifact.
func (p *Provider) Requirements(_ context.Context, artifact string, opts requirements.Options) ([]string, error) {
	mods, err := Modules(artifact, opts)
	if err != nil {
		if requirements.NotFound(err) {
			return nil, requirements.Missing(Name, artifact, artifact)
		}
		return nil, requirements.Malformed(Name, artifact, artifact, err)
	}
	return mods, nil
}

// Modules parses the *.tf files of dir and returns the cleaned paths of every
// module whose source is local. Remote and registry sources are skipped.
func Modules(dir string, opts requirements.Options) ([]string, error) {
	files, err := hclfile.ParseDir(dir)
	if err != nil {
		return nil, err
	}
	set := map[string]struct{}{}
	for _, f := range files {
		blocks, err := hclfile.Blocks(f.Body, "module", "name")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Path, err)
		}
		for _, block := range blocks {
			attr, err := hclfile.Attribute(block.Body, "source")
			if err != nil {
				return nil, fmt.Errorf("%s: module %q: %w", f.Path, block.Labels[0], err)
			}
			if attr == nil {
				continue
			}
			source, err := f.EvalString(attr.Expr, nil)
			if err != nil {
				return nil, fmt.Errorf("%s: module %q source: %w", f.Path, block.Labels[0], err)
			}
			source = opts.Replace(source)
			if !hclfile.IsLocal(source) {
				continue
			}
			set[hclfile.Resolve(dir, source)] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for path := range set {
		out = append(out, path)
	}
	sort.Strings(out)
	return out, nil
}
