package requirements

import (
	"context"
	"fmt"

	"github.com/kingrea/superdag/internal/dag"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds concurrent provider calls when no limit is given.
const DefaultWorkers = 8

// Resolver is the part of Router used by Collect.
type Resolver interface {
	Resolve(ctx context.Context, artifact string, opts Options) (Result, error)
}

// Collection is the outcome of Collect.
type Collection struct {
	Requirements dag.RequirementMap
	// Results holds one entry per input artifact, in input order.
	Results []Result
}

// Misses returns every (artifact, provider) pair that had no definition.
func (c Collection) Misses() [][2]string {
	var out [][2]string
	for _, res := range c.Results {
		for _, provider := range res.Missing {
			out = append(out, [2]string{res.Artifact, provider})
		}
	}
	return out
}

// Collect resolves the requirements of every artifact with at most workers
// concurrent calls. The first error cancels outstanding work. Only artifacts
// with at least one requirement are kept in the map.
func Collect(ctx context.Context, resolver Resolver, artifacts []string, opts Options, workers int) (Collection, error) {
	if resolver == nil {
		return Collection{}, fmt.Errorf("requirements: resolver is required")
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	results := make([]Result, len(artifacts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, artifact := range artifacts {
		i, artifact := i, artifact
		g.Go(func() error {
			res, err := resolver.Resolve(gctx, artifact, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Collection{}, err
	}

	reqs := dag.RequirementMap{}
	for _, res := range results {
		if len(res.Requirements) == 0 {
			continue
		}
		set, ok := reqs[res.Artifact]
		if !ok {
			set = dag.NewSet()
			reqs[res.Artifact] = set
		}
		for _, req := range res.Requirements {
			set.Add(req)
		}
	}
	return Collection{Requirements: reqs, Results: results}, nil
}
