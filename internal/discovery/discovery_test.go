package discovery

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, dir := range dirs {
		if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(dir)), 0o755); err != nil {
			t.Fatal(err)
		}
	}
}

func TestArtifactsListsDirectories(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "vpc", "dns", ".git", "app/nested")
	if err := os.WriteFile(filepath.Join(root, "README.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Artifacts(root, "")
	if err != nil {
		t.Fatalf("Artifacts: %v", err)
	}
	base := filepath.ToSlash(root)
	want := []string{base + "/app", base + "/dns", base + "/vpc"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Artifacts = %v, want %v", got, want)
	}
}

func TestArtifactsWithGlob(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "prod/eu/dns", "prod/us/dns", "prod/us/vpc", "dev/eu/dns")
	got, err := Artifacts(root, "prod/**/dns")
	if err != nil {
		t.Fatalf("Artifacts: %v", err)
	}
	base := filepath.ToSlash(root)
	want := []string{base + "/prod/eu/dns", base + "/prod/us/dns"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Artifacts = %v, want %v", got, want)
	}
}

func TestArtifactsMissingRoot(t *testing.T) {
	if _, err := Artifacts(filepath.Join(t.TempDir(), "absent"), ""); err == nil {
		t.Fatalf("expected error for missing root")
	}
}

func TestIdentifier(t *testing.T) {
	if got := Identifier(".", "vpc"); got != "vpc" {
		t.Fatalf("Identifier(., vpc) = %q", got)
	}
	if got := Identifier("stacks/", "vpc"); got != "stacks/vpc" {
		t.Fatalf("Identifier(stacks/, vpc) = %q", got)
	}
}

func TestCanonicalCleansIdentifiers(t *testing.T) {
	for in, want := range map[string]string{
		"stacks/vpc/":         "stacks/vpc",
		"stacks/./vpc":        "stacks/vpc",
		" stacks/app/../vpc ": "stacks/vpc",
		"  ":                  "",
	} {
		if got := Canonical(in); got != want {
			t.Fatalf("Canonical(%q) = %q, want %q", in, got, want)
		}
	}
}
