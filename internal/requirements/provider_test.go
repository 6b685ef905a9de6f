package requirements

import (
	"context"
	"reflect"
	"testing"
)

func TestOptionsReplaceLongestTokenFirst(t *testing.T) {
	opts := Options{Placeholders: map[string]string{
		"${root}":                 "/srv",
		"${root}/modules":         "/opt/modules",
		"${get_terragrunt_dir()}": ".",
	}}
	got := opts.Replace("${root}/modules/vpc")
	if got != "/opt/modules/vpc" {
		t.Fatalf("replace = %q", got)
	}
	if got := opts.Replace("${get_terragrunt_dir()}/../x"); got != "./../x" {
		t.Fatalf("replace = %q", got)
	}
	if got := (Options{}).Replace("as-is"); got != "as-is" {
		t.Fatalf("replace without placeholders = %q", got)
	}
}

func TestOptionsSegments(t *testing.T) {
	opts := Options{PathSegments: map[string]int{"account": 1, "region": 2, "env": 9}}
	got := opts.Segments("/stacks/prod-account/eu-west-1/app")
	want := map[string]string{"account": "prod-account", "region": "eu-west-1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("segments = %v, want %v", got, want)
	}
	if (Options{}).Segments("a/b") != nil {
		t.Fatalf("expected nil segments without configuration")
	}
}

func TestConfigString(t *testing.T) {
	cfg := Config{"filename": " deps.yaml ", "count": 3}
	if got := cfg.String("filename", "x"); got != "deps.yaml" {
		t.Fatalf("string = %q", got)
	}
	if got := cfg.String("count", "x"); got != "x" {
		t.Fatalf("non-string should fall back, got %q", got)
	}
	if got := Config(nil).String("filename", "y"); got != "y" {
		t.Fatalf("nil config should fall back, got %q", got)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	factory := func(Config) (Provider, error) {
		return Func{ID: "noop", Fn: func(context.Context, string, Options) ([]string, error) { return nil, nil }}, nil
	}
	if err := reg.Register("noop", factory); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("noop", factory); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if err := reg.Register("", factory); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if _, err := reg.Resolve("missing", nil); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
	p, err := reg.Resolve("noop", nil)
	if err != nil || p.Name() != "noop" {
		t.Fatalf("resolve noop: %v %v", p, err)
	}
	if !reflect.DeepEqual(reg.Names(), []string{"noop"}) {
		t.Fatalf("names = %v", reg.Names())
	}
}
