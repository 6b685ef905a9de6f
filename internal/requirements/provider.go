package requirements

import (
	"context"
	"sort"
	"strings"
)

// Provider returns the direct requirements of one artifact. Implementations
// must be deterministic for a fixed on-disk state and safe to call from
// several goroutines at once.
type Provider interface {
	Name() string
	Requirements(ctx context.Context, artifact string, opts Options) ([]string, error)
}

// Config is provider-specific configuration (opaque to the router).
type Config map[string]any

// String returns the trimmed string value stored under key, or fallback.
func (c Config) String(key, fallback string) string {
	if c == nil {
		return fallback
	}
	raw, ok := c[key]
	if !ok {
		return fallback
	}
	value, ok := raw.(string)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

// Options carries caller-supplied settings shared by every provider call.
type Options struct {
	// SkipTerraformDeps disables following terraform module sources.
	SkipTerraformDeps bool
	// SkipSopsDeps disables collecting sops secret files.
	SkipSopsDeps bool
	// Placeholders maps literal tokens to their replacement in extracted
	// paths, e.g. "${get_terragrunt_dir()}" -> ".".
	Placeholders map[string]string
	// PathSegments names positions inside an artifact identifier, e.g.
	// {"account": 1, "region": 2}. Positions count non-empty components.
	PathSegments map[string]int
}

// Replace applies every placeholder to value. Longer tokens are applied
// first so overlapping tokens resolve the same way on every call.
func (o Options) Replace(value string) string {
	if len(o.Placeholders) == 0 {
		return value
	}
	tokens := make([]string, 0, len(o.Placeholders))
	for token := range o.Placeholders {
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})
	for _, token := range tokens {
		value = strings.ReplaceAll(value, token, o.Placeholders[token])
	}
	return value
}

// Segments resolves the named path segments of artifact. Names pointing past
// the end of the identifier are omitted.
func (o Options) Segments(artifact string) map[string]string {
	if len(o.PathSegments) == 0 {
		return nil
	}
	var parts []string
	for _, part := range strings.Split(artifact, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	out := make(map[string]string, len(o.PathSegments))
	for name, idx := range o.PathSegments {
		if idx < 0 || idx >= len(parts) {
			continue
		}
		out[name] = parts[idx]
	}
	return out
}

// Func adapts a plain function to the Provider interface.
type Func struct {
	ID string
	Fn func(ctx context.Context, artifact string, opts Options) ([]string, error)
}

func (f Func) Name() string { return f.ID }

func (f Func) Requirements(ctx context.Context, artifact string, opts Options) ([]string, error) {
	if f.Fn == nil {
		return nil, nil
	}
	return f.Fn(ctx, artifact, opts)
}
