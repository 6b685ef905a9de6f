package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, projectDir, body string) {
	t.Helper()
	dir := filepath.Join(projectDir, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(strings.TrimSpace(body)), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestNewConfigDefaultsWhenMissing(t *testing.T) {
	c, err := NewConfig(t.TempDir())
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Project.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.Project.Version)
	}
	if c.Workers() != DefaultWorkers {
		t.Fatalf("expected %d workers, got %d", DefaultWorkers, c.Workers())
	}
	if c.Output().Format != "text" {
		t.Fatalf("expected text format, got %q", c.Output().Format)
	}
	if got := c.Routes().Prefixes[""]; !reflect.DeepEqual(got, []string{"terragrunt"}) {
		t.Fatalf("expected terragrunt catch-all route, got %v", got)
	}
}

func TestNewConfigParsesYaml(t *testing.T) {
	projectDir := t.TempDir()
	writeConfig(t, projectDir, `
version: 1
discovery:
  glob: "stacks/*/*"
routing:
  prefixes:
    " stacks/ ": [terragrunt, static, terragrunt]
  artifacts:
    stacks/legacy: [static]
exclude: [stacks/b, stacks/a, stacks/b]
options:
  skip_sops_deps: true
  placeholders:
    "{{env}}": prod
  path_segments:
    account: 1
providers:
  static:
    filename: deps.yaml
workers: 3
output:
  prefix: stacks/prod
  format: YAML
`)
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Glob() != "stacks/*/*" {
		t.Fatalf("wrong glob: %q", c.Glob())
	}
	if got := c.Routes().Prefixes["stacks/"]; !reflect.DeepEqual(got, []string{"terragrunt", "static"}) {
		t.Fatalf("expected normalized prefix route, got %v", got)
	}
	if got := c.Routes().Artifacts["stacks/legacy"]; !reflect.DeepEqual(got, []string{"static"}) {
		t.Fatalf("wrong exact route: %v", got)
	}
	if !reflect.DeepEqual(c.Exclude().Sorted(), []string{"stacks/a", "stacks/b"}) {
		t.Fatalf("wrong exclusions: %v", c.Exclude().Sorted())
	}
	opts := c.RequirementOptions()
	if !opts.SkipSopsDeps || opts.SkipTerraformDeps {
		t.Fatalf("wrong skip flags: %+v", opts)
	}
	if opts.Placeholders["{{env}}"] != "prod" || opts.PathSegments["account"] != 1 {
		t.Fatalf("wrong options: %+v", opts)
	}
	if got := c.ProviderConfigs()["static"].String("filename", ""); got != "deps.yaml" {
		t.Fatalf("wrong static filename: %q", got)
	}
	if c.Workers() != 3 {
		t.Fatalf("expected 3 workers, got %d", c.Workers())
	}
	if out := c.Output(); out.Prefix != "stacks/prod" || out.Format != "yaml" {
		t.Fatalf("wrong output: %+v", out)
	}
}

func TestNewConfigValidation(t *testing.T) {
	cases := map[string]string{
		"format":   "output:\n  format: xml\n",
		"workers":  "workers: -1\n",
		"route":    "routing:\n  prefixes:\n    stacks/: []\n",
		"segments": "options:\n  path_segments:\n    account: -2\n",
		"yaml":     "routing: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			projectDir := t.TempDir()
			writeConfig(t, projectDir, body)
			if _, err := NewConfig(projectDir); err == nil {
				t.Fatalf("expected validation error but got none")
			}
		})
	}
}

func TestNewConfigEnvOverrides(t *testing.T) {
	projectDir := t.TempDir()
	writeConfig(t, projectDir, "workers: 2\noutput:\n  prefix: stacks/dev\n")
	t.Setenv(EnvWorkers, "5")
	t.Setenv(EnvPrefix, "stacks/prod")
	t.Setenv(EnvFormat, "JSON")
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Workers() != 5 || c.Output().Prefix != "stacks/prod" || c.Output().Format != "json" {
		t.Fatalf("env overrides not applied: workers=%d output=%+v", c.Workers(), c.Output())
	}

	t.Setenv(EnvWorkers, "many")
	if _, err := NewConfig(projectDir); err == nil {
		t.Fatalf("expected error for invalid %s", EnvWorkers)
	}
}

func TestNewConfigReadsDotEnv(t *testing.T) {
	projectDir := t.TempDir()
	// t.Setenv registers a restore so the value loaded from .env is cleared.
	t.Setenv(EnvFormat, "")
	os.Unsetenv(EnvFormat)
	if err := os.WriteFile(filepath.Join(projectDir, ".env"), []byte(EnvFormat+"=yaml\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Output().Format != "yaml" {
		t.Fatalf("expected format from .env, got %q", c.Output().Format)
	}
}

func TestInitDirWritesLoadableDefault(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitDir(projectDir); err != nil {
		t.Fatalf("InitDir: %v", err)
	}
	for _, dir := range []string{"logs", "providers"} {
		if info, err := os.Stat(filepath.Join(projectDir, Dir, dir)); err != nil || !info.IsDir() {
			t.Fatalf("expected %s directory: %v", dir, err)
		}
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("default config does not load: %v", err)
	}
	if got := c.Routes().Prefixes[""]; !reflect.DeepEqual(got, []string{"terragrunt"}) {
		t.Fatalf("unexpected default routes: %v", c.Routes())
	}

	custom := []byte("version: 1\nworkers: 2\n")
	if err := os.WriteFile(c.ProjectConfigPath(), custom, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := InitDir(projectDir); err != nil {
		t.Fatalf("second InitDir: %v", err)
	}
	data, _ := os.ReadFile(c.ProjectConfigPath())
	if string(data) != string(custom) {
		t.Fatalf("InitDir overwrote existing config")
	}
}
