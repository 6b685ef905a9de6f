package requirements

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNotFoundCoversFileArtifacts(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "prod.enc.yaml")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := os.ReadFile(filepath.Join(file, "terragrunt.hcl"))
	if !NotFound(err) {
		t.Fatalf("expected a path through a plain file to count as not found, got %v", err)
	}
	_, err = os.ReadFile(filepath.Join(dir, "absent", "terragrunt.hcl"))
	if !NotFound(err) {
		t.Fatalf("expected a missing file to count as not found, got %v", err)
	}
	if NotFound(os.ErrPermission) {
		t.Fatalf("permission errors are not missing definitions")
	}
}
