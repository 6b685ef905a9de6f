// superdag computes the batches in which changed infrastructure stacks and
// everything depending on them can be applied.
//
//	superdag plan  -root stacks -modified stacks/vpc [-prefix P] [-format text|yaml|json]
//	superdag graph -root stacks -modified stacks/vpc
//	superdag view  -root stacks -modified stacks/vpc
//	superdag providers
//	superdag init
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kingrea/superdag/internal/config"
	"github.com/kingrea/superdag/internal/engine"
	"github.com/kingrea/superdag/internal/logbook"
	"github.com/kingrea/superdag/internal/render"
	"github.com/kingrea/superdag/internal/tui"
)

const usage = `usage: superdag <command> [flags]

commands:
  plan       print the execution plan for the modified artifacts
  graph      print requirements, ordering edges and batches
  view       browse the execution plan interactively
  providers  list the available requirement providers
  init       create .superdag/ with a default config`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		die("%v", err)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		return flag.ErrHelp
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "plan", "graph", "view":
		return runPlan(ctx, cmd, rest, stdout)
	case "providers":
		return runProviders(rest, stdout)
	case "init":
		return runInit(rest, stdout)
	case "help", "-h", "--help":
		fmt.Fprintln(stdout, usage)
		return nil
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

type planFlags struct {
	project  string
	root     string
	modified listFlag
	prefix   string
	format   string
	workers  int
}

func parsePlanFlags(name string, args []string) (planFlags, error) {
	var pf planFlags
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&pf.project, "project", "", "project directory holding .superdag/ (defaults to cwd)")
	fs.StringVar(&pf.root, "root", ".", "directory whose entries are the candidate artifacts")
	fs.Var(&pf.modified, "modified", "changed artifact (repeatable, or comma separated)")
	fs.StringVar(&pf.prefix, "prefix", "", "only show artifacts starting with this prefix")
	fs.StringVar(&pf.format, "format", "", "output format: text, yaml or json")
	fs.IntVar(&pf.workers, "workers", 0, "concurrent provider calls (overrides config)")
	if err := fs.Parse(args); err != nil {
		return pf, err
	}
	pf.modified = append(pf.modified, fs.Args()...)
	return pf, nil
}

func runPlan(ctx context.Context, cmd string, args []string, stdout io.Writer) error {
	pf, err := parsePlanFlags(cmd, args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(pf.project)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if pf.workers > 0 {
		cfg.Project.Workers = pf.workers
	}
	prefix := cfg.Output().Prefix
	if pf.prefix != "" {
		prefix = pf.prefix
	}
	format := cfg.Output().Format
	if pf.format != "" {
		format = pf.format
	}

	book, err := logbook.New(cfg.LogPath())
	if err != nil {
		return fmt.Errorf("open logbook: %w", err)
	}
	planner, err := engine.FromConfig(cfg, book)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	if err := planner.Compute(ctx, pf.root, pf.modified); err != nil {
		return fmt.Errorf("plan: %w", err)
	}

	switch cmd {
	case "graph":
		res := planner.Result()
		doc := render.NewGraphDocument(res.Requirements, res.Misses, res.Edges, res.Plan.Filter(prefix))
		return render.Graph(stdout, format, doc)
	case "view":
		recompute := func(ctx context.Context) (engine.Result, error) {
			if err := planner.Compute(ctx, pf.root, pf.modified); err != nil {
				return engine.Result{}, err
			}
			return planner.Result(), nil
		}
		app := tui.NewApp(planner.Result(), prefix, tui.WithLogbook(book), tui.WithRecompute(recompute))
		return tui.Run(app)
	default:
		return render.Plan(stdout, format, planner.Filter(prefix))
	}
}

func runProviders(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("providers", flag.ContinueOnError)
	project := fs.String("project", "", "project directory holding .superdag/ (defaults to cwd)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*project)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	reg, err := engine.NewRegistry(cfg)
	if err != nil {
		return fmt.Errorf("load providers: %w", err)
	}
	for _, name := range reg.Names() {
		fmt.Fprintln(stdout, name)
	}
	return nil
}

func runInit(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	project := fs.String("project", "", "project directory (defaults to cwd)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	dir, err := projectDir(*project)
	if err != nil {
		return err
	}
	if err := config.InitDir(dir); err != nil {
		return fmt.Errorf("init %s: %w", config.Dir, err)
	}
	fmt.Fprintf(stdout, "Initialized %s\n", filepath.Join(dir, config.Dir))
	return nil
}

func loadConfig(project string) (*config.Config, error) {
	dir, err := projectDir(project)
	if err != nil {
		return nil, err
	}
	return config.NewConfig(dir)
}

func projectDir(project string) (string, error) {
	if strings.TrimSpace(project) == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("determine working directory: %w", err)
		}
		project = cwd
	}
	abs, err := filepath.Abs(project)
	if err != nil {
		return "", fmt.Errorf("resolve project dir: %w", err)
	}
	return abs, nil
}

// listFlag collects a repeatable string flag; each value may hold several
// comma separated entries.
type listFlag []string

func (l *listFlag) String() string {
	if l == nil {
		return ""
	}
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}
