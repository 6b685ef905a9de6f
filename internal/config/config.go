// Package config handles the .superdag directory and its config.yaml.
// Every project planned with superdag may carry a .superdag/ folder in its
// root; without one the defaults apply.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/superdag/internal/dag"
	"github.com/kingrea/superdag/internal/requirements"
)

const (
	// Dir is the per-project directory holding config, logs and scripts.
	Dir = ".superdag"

	DefaultWorkers = requirements.DefaultWorkers
	DefaultFormat  = "text"

	EnvWorkers = "SUPERDAG_WORKERS"
	EnvPrefix  = "SUPERDAG_PREFIX"
	EnvFormat  = "SUPERDAG_FORMAT"
)

// Formats lists the accepted output formats.
var Formats = []string{"text", "yaml", "json"}

const defaultProjectConfigYAML = `# superdag project configuration
version: 1

# Optional doublestar pattern (relative to the root) selecting artifacts.
# Empty means every directory directly under the root.
discovery:
  glob: ""

# Which requirement providers apply to which artifact. The longest matching
# prefix wins; exact bindings are added on top.
routing:
  prefixes:
    "": [terragrunt]
  artifacts: {}

# Artifacts whose derived modification never propagates to their dependents.
exclude: []

options:
  skip_terraform_deps: false
  skip_sops_deps: false
  placeholders: {}
  # Named positions in an artifact path, exposed to sops source_file
  # expressions, e.g. account: 1
  path_segments: {}

# Per-provider settings, e.g. static: {filename: requirements.yaml}
providers: {}

workers: 8

output:
  prefix: ""
  format: text
`

// DiscoveryConfig controls artifact enumeration.
type DiscoveryConfig struct {
	Glob string `yaml:"glob,omitempty"`
}

// RoutingConfig holds the two provider routing tables.
type RoutingConfig struct {
	Prefixes  map[string][]string `yaml:"prefixes"`
	Artifacts map[string][]string `yaml:"artifacts"`
}

// OptionsConfig mirrors requirements.Options.
type OptionsConfig struct {
	SkipTerraformDeps bool              `yaml:"skip_terraform_deps"`
	SkipSopsDeps      bool              `yaml:"skip_sops_deps"`
	Placeholders      map[string]string `yaml:"placeholders"`
	PathSegments      map[string]int    `yaml:"path_segments"`
}

// OutputConfig captures plan rendering preferences.
type OutputConfig struct {
	Prefix string `yaml:"prefix"`
	Format string `yaml:"format"`
}

// ProjectConfig models .superdag/config.yaml.
type ProjectConfig struct {
	Version   int                       `yaml:"version"`
	Discovery DiscoveryConfig           `yaml:"discovery"`
	Routing   RoutingConfig             `yaml:"routing"`
	Exclude   []string                  `yaml:"exclude"`
	Options   OptionsConfig             `yaml:"options"`
	Providers map[string]map[string]any `yaml:"providers"`
	Workers   int                       `yaml:"workers"`
	Output    OutputConfig              `yaml:"output"`
}

// Config holds the runtime configuration for one project.
type Config struct {
	// ProjectDir is the directory superdag was run from.
	ProjectDir string
	// ProjectConfigDir is ProjectDir/.superdag
	ProjectConfigDir string

	Project ProjectConfig
}

// InitDir creates the .superdag directory structure and a default
// config.yaml. An existing config file is left untouched.
//
//	.superdag/
//	├── config.yaml
//	├── logs/
//	└── providers/   <- yaegi script providers
func InitDir(projectDir string) error {
	root := filepath.Join(projectDir, Dir)
	for _, dir := range []string{
		filepath.Join(root, "logs"),
		filepath.Join(root, "providers"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	return ensureProjectConfig(filepath.Join(root, "config.yaml"))
}

// NewConfig loads the project config (or defaults), then applies
// environment overrides. A .env file in projectDir is read first.
func NewConfig(projectDir string) (*Config, error) {
	_ = godotenv.Load(filepath.Join(projectDir, ".env"))

	cfg := &Config{
		ProjectDir:       projectDir,
		ProjectConfigDir: filepath.Join(projectDir, Dir),
		Project:          DefaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	if err := cfg.Project.applyEnv(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Project.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.ProjectConfigDir, "config.yaml")
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.ProjectConfigDir, "logs")
}

// LogPath returns the logbook file.
func (c *Config) LogPath() string {
	return filepath.Join(c.LogsDir(), "superdag.log")
}

// ProvidersDir returns the directory scanned for script providers.
func (c *Config) ProvidersDir() string {
	return filepath.Join(c.ProjectConfigDir, "providers")
}

// Routes returns the routing tables for requirements.NewRouter.
func (c *Config) Routes() requirements.Routes {
	return requirements.Routes{
		Prefixes:  c.Project.Routing.Prefixes,
		Artifacts: c.Project.Routing.Artifacts,
	}
}

// ProviderConfigs returns per-provider settings keyed by provider name.
func (c *Config) ProviderConfigs() map[string]requirements.Config {
	out := make(map[string]requirements.Config, len(c.Project.Providers))
	for name, values := range c.Project.Providers {
		out[name] = requirements.Config(values)
	}
	return out
}

// RequirementOptions returns the options passed to every provider call.
func (c *Config) RequirementOptions() requirements.Options {
	o := c.Project.Options
	return requirements.Options{
		SkipTerraformDeps: o.SkipTerraformDeps,
		SkipSopsDeps:      o.SkipSopsDeps,
		Placeholders:      o.Placeholders,
		PathSegments:      o.PathSegments,
	}
}

// Exclude returns the exclusion set.
func (c *Config) Exclude() dag.Set {
	return dag.NewSet(c.Project.Exclude...)
}

// Workers returns the provider concurrency limit.
func (c *Config) Workers() int {
	return c.Project.Workers
}

// Output returns the rendering preferences.
func (c *Config) Output() OutputConfig {
	return c.Project.Output
}

// Glob returns the discovery pattern, empty when unset.
func (c *Config) Glob() string {
	return c.Project.Discovery.Glob
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

// DefaultProjectConfig returns the settings used when no config file exists:
// every artifact is routed to the terragrunt provider.
func DefaultProjectConfig() ProjectConfig {
	pc := ProjectConfig{
		Routing: RoutingConfig{
			Prefixes: map[string][]string{"": {"terragrunt"}},
		},
	}
	pc.applyDefaults()
	return pc
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.Routing.Prefixes == nil {
		pc.Routing.Prefixes = map[string][]string{}
	}
	if pc.Routing.Artifacts == nil {
		pc.Routing.Artifacts = map[string][]string{}
	}
	if pc.Options.Placeholders == nil {
		pc.Options.Placeholders = map[string]string{}
	}
	if pc.Options.PathSegments == nil {
		pc.Options.PathSegments = map[string]int{}
	}
	if pc.Providers == nil {
		pc.Providers = map[string]map[string]any{}
	}
	if pc.Workers == 0 {
		pc.Workers = DefaultWorkers
	}
	if strings.TrimSpace(pc.Output.Format) == "" {
		pc.Output.Format = DefaultFormat
	}
}

func (pc *ProjectConfig) normalize() {
	pc.Discovery.Glob = strings.TrimSpace(pc.Discovery.Glob)
	pc.Routing.Prefixes = normalizeTable(pc.Routing.Prefixes)
	pc.Routing.Artifacts = normalizeTable(pc.Routing.Artifacts)
	pc.Exclude = normalizeList(pc.Exclude)
	pc.Output.Prefix = strings.TrimSpace(pc.Output.Prefix)
	pc.Output.Format = strings.ToLower(strings.TrimSpace(pc.Output.Format))
}

func (pc *ProjectConfig) applyEnv() error {
	if raw := strings.TrimSpace(os.Getenv(EnvWorkers)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		pc.Workers = n
	}
	if raw, ok := os.LookupEnv(EnvPrefix); ok {
		pc.Output.Prefix = strings.TrimSpace(raw)
	}
	if raw := strings.TrimSpace(os.Getenv(EnvFormat)); raw != "" {
		pc.Output.Format = strings.ToLower(raw)
	}
	return nil
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if pc.Workers < 1 {
		return fmt.Errorf("workers must be >= 1")
	}
	if !contains(Formats, pc.Output.Format) {
		return fmt.Errorf("output.format must be one of %s", strings.Join(Formats, ", "))
	}
	if err := validateTable("routing.prefixes", pc.Routing.Prefixes); err != nil {
		return err
	}
	if err := validateTable("routing.artifacts", pc.Routing.Artifacts); err != nil {
		return err
	}
	if _, ok := pc.Routing.Artifacts[""]; ok {
		return fmt.Errorf("routing.artifacts: empty artifact name")
	}
	for name, idx := range pc.Options.PathSegments {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("options.path_segments: empty name")
		}
		if idx < 0 {
			return fmt.Errorf("options.path_segments[%s] must be >= 0", name)
		}
	}
	return nil
}

func normalizeTable(table map[string][]string) map[string][]string {
	out := make(map[string][]string, len(table))
	for key, names := range table {
		key = strings.TrimSpace(key)
		out[key] = append(out[key], names...)
	}
	for key, names := range out {
		var cleaned []string
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name != "" && !contains(cleaned, name) {
				cleaned = append(cleaned, name)
			}
		}
		out[key] = cleaned
	}
	return out
}

func validateTable(field string, table map[string][]string) error {
	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if len(table[key]) == 0 {
			return fmt.Errorf("%s[%q] lists no providers", field, key)
		}
	}
	return nil
}

func normalizeList(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" && !contains(out, v) {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
