// Package sops finds the encrypted secret files a terraform configuration
// reads through `data "sops_file"` blocks.
package sops

import (
	"context"
	"fmt"
	"sort"

	"github.com/kingrea/superdag/internal/providers/hclfile"
	"github.com/kingrea/superdag/internal/requirements"
)

// Name is the routing name of this provider.
const Name = "sops"

const dataSourceType = "sops_file"

// Provider reports sops secret files as requirements.
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

// Requirements lists the sops files read by the *.tf files inside artifact.
// The artifact's named path segments are available as variables inside
// source_file, e.g. "${account}/secrets.enc.yaml".
func (p *Provider) Requirements(_ context.Context, artifact string, opts requirements.Options) ([]string, error) {
	files, err := Files(artifact, opts.Segments(artifact), opts)
	if err != nil {
		if requirements.NotFound(err) {
			return nil, requirements.Missing(Name, artifact, artifact)
		}
		return nil, requirements.Malformed(Name, artifact, artifact, err)
	}
	return files, nil
}

// Files parses the *.tf files of dir and returns the cleaned path of every
// sops_file source_file, resolved against dir.
func Files(dir string, vars map[string]string, opts requirements.Options) ([]string, error) {
	files, err := hclfile.ParseDir(dir)
	if err != nil {
		return nil, err
	}
	ctx := hclfile.Variables(vars)
	set := map[string]struct{}{}
	for _, f := range files {
		blocks, err := hclfile.Blocks(f.Body, "data", "type", "name")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Path, err)
		}
		for _, block := range blocks {
			if block.Labels[0] != dataSourceType {
				continue
			}
			attr, err := hclfile.Attribute(block.Body, "source_file")
			if err != nil {
				return nil, fmt.Errorf("%s: sops_file %q: %w", f.Path, block.Labels[1], err)
			}
			if attr == nil {
				continue
			}
			source, err := f.EvalString(attr.Expr, ctx)
			if err != nil {
				return nil, fmt.Errorf("%s: sops_file %q source_file: %w", f.Path, block.Labels[1], err)
			}
			set[hclfile.Resolve(dir, opts.Replace(source))] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for path := range set {
		out = append(out, path)
	}
	sort.Strings(out)
	return out, nil
}
