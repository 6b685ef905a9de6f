// Package static reads requirements declared by hand in a YAML file next to
// the artifact.
package static

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kingrea/superdag/internal/providers/hclfile"
	"github.com/kingrea/superdag/internal/requirements"
	"gopkg.in/yaml.v3"
)

// Name is the routing name of this provider.
const Name = "static"

// DefaultFilename is read from the artifact directory unless the provider
// config sets "filename".
const DefaultFilename = "requirements.yaml"

// Manifest is the on-disk format.
//
//	requirements:
//	  - ../vpc          # relative to the artifact
//	  - stacks/shared   # taken as an artifact identifier
type Manifest struct {
	Requirements []string `yaml:"requirements"`
}

// Provider reads a Manifest from each artifact.
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

func (p *Provider) Requirements(_ context.Context, artifact string, opts requirements.Options) ([]string, error) {
	path := filepath.Join(artifact, p.filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if requirements.NotFound(err) {
			return nil, requirements.Missing(Name, artifact, path)
		}
		return nil, requirements.Malformed(Name, artifact, path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, requirements.Malformed(Name, artifact, path, err)
	}
	set := map[string]struct{}{}
	for _, entry := range manifest.Requirements {
		entry = strings.TrimSpace(opts.Replace(entry))
		if entry == "" {
			continue
		}
		if hclfile.IsLocal(entry) {
			entry = hclfile.Resolve(artifact, entry)
		}
		set[entry] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for entry := range set {
		out = append(out, entry)
	}
	sort.Strings(out)
	return out, nil
}
