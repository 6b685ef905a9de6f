// Package discovery enumerates the candidate artifacts under a root.
package discovery

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// Artifacts returns the artifact identifiers under root, sorted. Without a
// pattern every non-hidden directory directly under root is an artifact.
// With a pattern, the doublestar matches (relative to root) that are
// directories are used instead. Identifiers are slash-separated and keep
// root as their prefix, so they double as paths from the working directory.
func Artifacts(root, pattern string) ([]string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		root = "."
	}
	if info, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("discovery: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("discovery: %s is not a directory", root)
	}
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return listDir(root)
	}
	return glob(root, pattern)
}

func listDir(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("discovery: read %s: %w", root, err)
	}
	var out []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		out = append(out, Identifier(root, entry.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func glob(root, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(filepath.Join(root, filepath.FromSlash(pattern)))
	if err != nil {
		return nil, fmt.Errorf("discovery: glob %q: %w", pattern, err)
	}
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || !info.IsDir() {
			continue
		}
		rel, err := filepath.Rel(root, match)
		if err != nil || rel == "." {
			continue
		}
		id := Identifier(root, filepath.ToSlash(rel))
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// Identifier joins root and a root-relative entry into an artifact ID.
func Identifier(root, entry string) string {
	return path.Join(filepath.ToSlash(root), entry)
}

// Canonical cleans an artifact identifier the way discovered and provider
// supplied identifiers are cleaned, so "stacks/vpc/" and "stacks/./vpc" both
// name "stacks/vpc". Blank input yields "".
func Canonical(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	return filepath.ToSlash(filepath.Clean(filepath.FromSlash(id)))
}
