package plugins

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/kingrea/superdag/internal/requirements"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

const (
	nameFuncName         = "Name"
	requirementsFuncName = "Requirements"
)

type requirementsFunc = func(string, map[string]string) ([]string, error)

// Script is a requirement provider interpreted from a Go source file. The
// file must be `package main` and define
//
//	func Requirements(artifact string, options map[string]string) ([]string, error)
//
// and may define `func Name() string`; otherwise the file name is used.
// Returning an error wrapping os.ErrNotExist marks the definition missing.
type Script struct {
	Path string

	name string
	mu   sync.Mutex
	fn   requirementsFunc
}

func (s *Script) Name() string { return s.name }

// Requirements calls the interpreted function. Calls are serialized because
// an interpreter is not safe for concurrent use.
func (s *Script) Requirements(ctx context.Context, artifact string, opts requirements.Options) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	reqs, err := s.call(artifact, scriptOptions(artifact, opts))
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, requirements.Missing(s.name, artifact, s.Path)
		}
		return nil, requirements.Malformed(s.name, artifact, s.Path, err)
	}
	return reqs, nil
}

func (s *Script) call(artifact string, options map[string]string) (reqs []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.fn(artifact, options)
}

// scriptOptions flattens Options into string pairs scripts can read without
// importing anything from this module.
func scriptOptions(artifact string, opts requirements.Options) map[string]string {
	out := map[string]string{
		"skip_terraform_deps": strconv.FormatBool(opts.SkipTerraformDeps),
		"skip_sops_deps":      strconv.FormatBool(opts.SkipSopsDeps),
	}
	for token, value := range opts.Placeholders {
		out["placeholder:"+token] = value
	}
	for name, value := range opts.Segments(artifact) {
		out["segment:"+name] = value
	}
	return out
}

// LoadScriptDir interprets every .go file in dir. A missing directory means
// no scripts.
func LoadScriptDir(dir string) ([]*Script, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: read %s: %w", trimmed, err)
	}
	var scripts []*Script
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".go" {
			continue
		}
		script, err := LoadScriptFile(filepath.Join(trimmed, entry.Name()))
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, script)
	}
	sort.Slice(scripts, func(i, j int) bool { return scripts[i].Path < scripts[j].Path })
	return scripts, nil
}

// LoadScriptFile interprets a single provider script.
func LoadScriptFile(path string) (*Script, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plugin: read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, fmt.Errorf("plugin: %s is empty", path)
	}
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("plugin: load stdlib symbols: %w", err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return nil, fmt.Errorf("plugin: interpret %s: %w", path, err)
	}

	fnValue, err := i.Eval(requirementsFuncName)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s must define %s(string, map[string]string) ([]string, error): %w", path, requirementsFuncName, err)
	}
	fn, err := asRequirementsFunc(fnValue)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if nameValue, err := i.Eval(nameFuncName); err == nil {
		nameFn, ok := nameValue.Interface().(func() string)
		if !ok {
			return nil, fmt.Errorf("plugin: %s: %s must be func() string", path, nameFuncName)
		}
		if custom := strings.TrimSpace(nameFn()); custom != "" {
			name = custom
		}
	}
	return &Script{Path: filepath.Clean(path), name: name, fn: fn}, nil
}

func asRequirementsFunc(value reflect.Value) (requirementsFunc, error) {
	if !value.IsValid() || value.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", requirementsFuncName)
	}
	fn, ok := value.Interface().(requirementsFunc)
	if !ok {
		return nil, fmt.Errorf("%s must be func(string, map[string]string) ([]string, error)", requirementsFuncName)
	}
	return fn, nil
}
