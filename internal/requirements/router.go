package requirements

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Routes are the two routing tables. Prefixes bind a path prefix to provider
// names; Artifacts bind one exact artifact identifier.
type Routes struct {
	Prefixes  map[string][]string
	Artifacts map[string][]string
}

type prefixRoute struct {
	prefix    string
	providers []Provider
}

// Router maps each artifact to the providers that apply to it. Every
// provider named by a route is resolved once, when the router is built.
type Router struct {
	prefixes []prefixRoute
	exact    map[string][]Provider
}

// NewRouter resolves every provider referenced by routes. configs supplies
// optional per-provider configuration. An unknown provider name fails with a
// *ConfigurationError.
func NewRouter(reg *Registry, routes Routes, configs map[string]Config) (*Router, error) {
	if reg == nil {
		return nil, &ConfigurationError{Reason: "provider registry is required"}
	}
	resolved := map[string]Provider{}
	resolve := func(route string, names []string) ([]Provider, error) {
		out := make([]Provider, 0, len(names))
		seen := map[string]struct{}{}
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				return nil, &ConfigurationError{Route: route, Reason: "empty provider name"}
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			provider, ok := resolved[name]
			if !ok {
				var err error
				provider, err = reg.Resolve(name, configs[name])
				if err != nil {
					if cfgErr, ok := err.(*ConfigurationError); ok {
						cfgErr.Route = route
					}
					return nil, err
				}
				resolved[name] = provider
			}
			out = append(out, provider)
		}
		return out, nil
	}

	r := &Router{exact: map[string][]Provider{}}
	for prefix, names := range routes.Prefixes {
		providers, err := resolve(prefix, names)
		if err != nil {
			return nil, err
		}
		r.prefixes = append(r.prefixes, prefixRoute{prefix: prefix, providers: providers})
	}
	sort.Slice(r.prefixes, func(i, j int) bool {
		a, b := r.prefixes[i].prefix, r.prefixes[j].prefix
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
	for artifact, names := range routes.Artifacts {
		providers, err := resolve(artifact, names)
		if err != nil {
			return nil, err
		}
		r.exact[artifact] = providers
	}
	return r, nil
}

// ProvidersFor returns the providers of the longest matching prefix followed
// by the providers bound to the exact artifact. Each provider appears once.
func (r *Router) ProvidersFor(artifact string) []Provider {
	if r == nil {
		return nil
	}
	var out []Provider
	seen := map[string]struct{}{}
	add := func(providers []Provider) {
		for _, p := range providers {
			if _, dup := seen[p.Name()]; dup {
				continue
			}
			seen[p.Name()] = struct{}{}
			out = append(out, p)
		}
	}
	for _, route := range r.prefixes {
		if strings.HasPrefix(artifact, route.prefix) {
			add(route.providers)
			break
		}
	}
	add(r.exact[artifact])
	return out
}

// Result is the union of every applicable provider's answer for one
// artifact.
type Result struct {
	Artifact     string
	Requirements []string
	// Missing lists providers that found no definition for the artifact.
	Missing []string
}

// Resolve queries every applicable provider and unions the answers. A
// missing definition contributes nothing; any other provider error aborts.
// The artifact never appears in its own requirements.
func (r *Router) Resolve(ctx context.Context, artifact string, opts Options) (Result, error) {
	result := Result{Artifact: artifact}
	set := map[string]struct{}{}
	for _, provider := range r.ProvidersFor(artifact) {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		reqs, err := provider.Requirements(ctx, artifact, opts)
		if err != nil {
			if IsMissing(err) {
				result.Missing = append(result.Missing, provider.Name())
				continue
			}
			return Result{}, fmt.Errorf("requirements: %s via %s: %w", artifact, provider.Name(), err)
		}
		for _, req := range reqs {
			if req == "" || req == artifact {
				continue
			}
			set[req] = struct{}{}
		}
	}
	if len(set) > 0 {
		result.Requirements = make([]string, 0, len(set))
		for req := range set {
			result.Requirements = append(result.Requirements, req)
		}
		sort.Strings(result.Requirements)
	}
	return result, nil
}
