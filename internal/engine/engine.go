// Package engine wires discovery, requirement collection and the dag core
// into one planning run.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kingrea/superdag/internal/config"
	"github.com/kingrea/superdag/internal/dag"
	"github.com/kingrea/superdag/internal/discovery"
	"github.com/kingrea/superdag/internal/logbook"
	"github.com/kingrea/superdag/internal/providers"
	"github.com/kingrea/superdag/internal/requirements"
	"github.com/kingrea/superdag/plugins"
)

// Settings is everything a planning run needs besides its inputs.
type Settings struct {
	Resolver requirements.Resolver
	Options  requirements.Options
	Exclude  dag.Set
	// Glob optionally narrows discovery; see discovery.Artifacts.
	Glob    string
	Workers int
	Log     *logbook.Logbook
}

// Result captures every intermediate value of one run.
type Result struct {
	RunID        string
	Artifacts    []string
	Requirements dag.RequirementMap
	// Misses lists (artifact, provider) pairs with no definition on disk.
	Misses [][2]string
	Edges  []dag.Edge
	Plan   dag.Plan
}

// Run discovers the artifacts under root, collects their requirements and
// schedules everything affected by modified. Modified identifiers are
// cleaned like discovered ones, and modified artifacts outside root (plain
// files included) are still considered.
func Run(ctx context.Context, s Settings, root string, modified []string) (Result, error) {
	if s.Resolver == nil {
		return Result{}, errors.New("engine: requirement resolver is required")
	}
	res := Result{RunID: logbook.NewRunID()}
	log := s.Log.WithRun(res.RunID)
	modSet := dag.NewSet(canonical(modified)...)
	log.Info("plan root=%s modified=%s", root, strings.Join(modSet.Sorted(), ","))

	found, err := discovery.Artifacts(root, s.Glob)
	if err != nil {
		log.Error("%v", err)
		return Result{}, err
	}
	res.Artifacts = union(found, modSet.Sorted())
	log.Info("discovered %d artifacts (%d under root)", len(res.Artifacts), len(found))

	coll, err := requirements.Collect(ctx, s.Resolver, res.Artifacts, s.Options, s.Workers)
	if err != nil {
		log.Error("%v", err)
		return Result{}, fmt.Errorf("engine: collect requirements: %w", err)
	}
	res.Requirements = coll.Requirements
	res.Misses = coll.Misses()
	for _, miss := range res.Misses {
		log.Warn("no %s definition for %s", miss[1], miss[0])
	}

	res.Edges = dag.Propagate(res.Requirements, modSet, s.Exclude)
	graph := dag.Build(res.Edges, modSet)
	log.Info("graph has %d nodes and %d edges", graph.Len(), len(res.Edges))

	plan, err := dag.Schedule(graph)
	if err != nil {
		log.Error("%v", err)
		return Result{}, fmt.Errorf("engine: %w", err)
	}
	res.Plan = plan
	log.Info("scheduled %d artifacts in %d batches", plan.Size(), plan.Len())
	return res, nil
}

// Planner keeps the outcome of the most recent Compute call.
type Planner struct {
	settings Settings

	mu   sync.RWMutex
	last Result
}

// NewPlanner returns a planner running with s.
func NewPlanner(s Settings) *Planner {
	return &Planner{settings: s}
}

// FromConfig builds a planner from project configuration: built-in and
// script providers are registered, routing is resolved and the options,
// exclusions and worker limit are taken from cfg.
func FromConfig(cfg *config.Config, log *logbook.Logbook) (*Planner, error) {
	reg, err := NewRegistry(cfg)
	if err != nil {
		return nil, err
	}
	router, err := requirements.NewRouter(reg, cfg.Routes(), cfg.ProviderConfigs())
	if err != nil {
		return nil, err
	}
	return NewPlanner(Settings{
		Resolver: router,
		Options:  cfg.RequirementOptions(),
		Exclude:  cfg.Exclude(),
		Glob:     cfg.Glob(),
		Workers:  cfg.Workers(),
		Log:      log,
	}), nil
}

// NewRegistry returns a registry holding the built-in providers plus the
// script providers found in the project's providers directory.
func NewRegistry(cfg *config.Config) (*requirements.Registry, error) {
	reg := requirements.NewRegistry()
	providers.RegisterBuiltins(reg)
	if cfg != nil {
		if err := plugins.RegisterScriptProviders(reg, cfg.ProvidersDir()); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Compute replaces the held plan with a freshly computed one. On failure
// the held result is cleared.
func (p *Planner) Compute(ctx context.Context, root string, modified []string) error {
	res, err := Run(ctx, p.settings, root, modified)
	p.mu.Lock()
	p.last = res
	p.mu.Unlock()
	return err
}

// Plan returns a copy of the most recently computed plan.
func (p *Planner) Plan() dag.Plan {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last.Plan.Clone()
}

// Filter returns the held plan restricted to artifacts under prefix.
func (p *Planner) Filter(prefix string) dag.Plan {
	return p.Plan().Filter(prefix)
}

// Result returns the most recent run, including requirements and edges.
// The plan and requirement map are copies.
func (p *Planner) Result() Result {
	p.mu.RLock()
	defer p.mu.RUnlock()
	res := p.last
	res.Artifacts = append([]string(nil), res.Artifacts...)
	res.Requirements = res.Requirements.Clone()
	res.Misses = append([][2]string(nil), res.Misses...)
	res.Edges = append([]dag.Edge(nil), res.Edges...)
	res.Plan = res.Plan.Clone()
	return res
}

func canonical(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = discovery.Canonical(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func union(a, b []string) []string {
	set := dag.NewSet(a...)
	for _, v := range b {
		set.Add(v)
	}
	return set.Sorted()
}
