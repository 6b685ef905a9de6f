package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kingrea/superdag/internal/render"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func stackProject(t *testing.T) (string, string) {
	t.Helper()
	project := t.TempDir()
	stacks := filepath.Join(project, "stacks")
	writeFile(t, filepath.Join(stacks, "vpc", "terragrunt.hcl"), "inputs = {}\n")
	writeFile(t, filepath.Join(stacks, "app", "terragrunt.hcl"), "dependency \"vpc\" {\n  config_path = \"../vpc\"\n}\n")
	writeFile(t, filepath.Join(stacks, "dns", "terragrunt.hcl"), "inputs = {}\n")
	return project, filepath.ToSlash(stacks)
}

func TestPlanCommandJSON(t *testing.T) {
	project, stacks := stackProject(t)
	var out bytes.Buffer
	args := []string{"plan", "-project", project, "-root", stacks, "-modified", stacks + "/vpc", "-format", "json"}
	if err := run(context.Background(), args, &out); err != nil {
		t.Fatalf("plan: %v", err)
	}
	var doc render.Document
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("parse output: %v\n%s", err, out.String())
	}
	want := []render.Batch{
		{Index: 1, Artifacts: []string{stacks + "/vpc"}},
		{Index: 2, Artifacts: []string{stacks + "/app"}},
	}
	if !reflect.DeepEqual(doc.Batches, want) {
		t.Fatalf("batches = %+v, want %+v", doc.Batches, want)
	}
	if _, err := os.Stat(filepath.Join(project, ".superdag", "logs", "superdag.log")); err != nil {
		t.Fatalf("expected logbook to be written: %v", err)
	}
}

func TestPlanCommandPrefix(t *testing.T) {
	project, stacks := stackProject(t)
	var out bytes.Buffer
	args := []string{"plan", "-project", project, "-root", stacks, "-modified", stacks + "/vpc," + stacks + "/dns", "-prefix", stacks + "/a"}
	if err := run(context.Background(), args, &out); err != nil {
		t.Fatalf("plan: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, stacks+"/app") || strings.Contains(text, stacks+"/vpc") {
		t.Fatalf("unexpected filtered plan:\n%s", text)
	}
}

func TestGraphCommand(t *testing.T) {
	project, stacks := stackProject(t)
	var out bytes.Buffer
	args := []string{"graph", "-project", project, "-root", stacks, "-format", "text", stacks + "/vpc"}
	if err := run(context.Background(), args, &out); err != nil {
		t.Fatalf("graph: %v", err)
	}
	if !strings.Contains(out.String(), stacks+"/vpc -> "+stacks+"/app") {
		t.Fatalf("expected edge in graph output:\n%s", out.String())
	}
}

func TestInitAndProvidersCommands(t *testing.T) {
	project := t.TempDir()
	var out bytes.Buffer
	if err := run(context.Background(), []string{"init", "-project", project}, &out); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(project, ".superdag", "config.yaml")); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	writeFile(t, filepath.Join(project, ".superdag", "providers", "helm.go"), `package main

func Name() string { return "helm" }

func Requirements(artifact string, options map[string]string) ([]string, error) {
	return nil, nil
}
`)
	out.Reset()
	if err := run(context.Background(), []string{"providers", "-project", project}, &out); err != nil {
		t.Fatalf("providers: %v", err)
	}
	got := strings.Fields(out.String())
	want := []string{"helm", "sops", "static", "terraform", "terragrunt"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("providers = %v, want %v", got, want)
	}
}

func TestUnknownCommand(t *testing.T) {
	if err := run(context.Background(), []string{"deploy"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for unknown command")
	}
}

func TestListFlag(t *testing.T) {
	var l listFlag
	for _, v := range []string{"a, b", "", "c"} {
		if err := l.Set(v); err != nil {
			t.Fatal(err)
		}
	}
	if !reflect.DeepEqual([]string(l), []string{"a", "b", "c"}) {
		t.Fatalf("listFlag = %v", l)
	}
}
