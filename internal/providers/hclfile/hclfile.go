// Package hclfile holds the HCL reading helpers shared by the terraform,
// sops and terragrunt providers.
package hclfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// File is a parsed HCL file plus its path.
type File struct {
	Path string
	*hcl.File
}

// Parse reads and parses one HCL file. A missing file yields an error
// wrapping fs.ErrNotExist.
func Parse(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	parsed, diags := hclparse.NewParser().ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %s", path, diags.Error())
	}
	return &File{Path: path, File: parsed}, nil
}

// ParseDir parses every *.tf file directly inside dir, sorted by name. A
// missing directory, or one without *.tf files, yields an error wrapping
// fs.ErrNotExist.
func ParseDir(dir string) ([]*File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".tf" {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: no terraform files: %w", dir, fs.ErrNotExist)
	}
	sort.Strings(paths)
	files := make([]*File, 0, len(paths))
	for _, path := range paths {
		f, err := Parse(path)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// Blocks returns the blocks of the given type found in body, ignoring
// everything else in it.
func Blocks(body hcl.Body, blockType string, labels ...string) ([]*hcl.Block, error) {
	content, _, diags := body.PartialContent(&hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{{Type: blockType, LabelNames: labels}},
	})
	if diags.HasErrors() {
		return nil, errors.New(diags.Error())
	}
	return content.Blocks, nil
}

// Attribute returns the named attribute of body, if set.
func Attribute(body hcl.Body, name string) (*hcl.Attribute, error) {
	content, _, diags := body.PartialContent(&hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{{Name: name}},
	})
	if diags.HasErrors() {
		return nil, errors.New(diags.Error())
	}
	attr, ok := content.Attributes[name]
	if !ok {
		return nil, nil
	}
	return attr, nil
}

// EvalString evaluates expr to a string. An expression that cannot be
// evaluated, typically because it calls terragrunt functions, falls back to
// its source text so placeholders can be applied to it: a quoted template
// yields the text between the quotes, a bare function call such as
// find_in_parent_folders("vpc") yields the call as written.
func (f *File) EvalString(expr hcl.Expression, ctx *hcl.EvalContext) (string, error) {
	val, diags := expr.Value(ctx)
	if diags.HasErrors() {
		if raw, ok := f.rawSource(expr); ok {
			return raw, nil
		}
		return "", errors.New(diags.Error())
	}
	return asString(val, expr.Range())
}

// EvalStrings evaluates expr to a list of strings.
func (f *File) EvalStrings(expr hcl.Expression, ctx *hcl.EvalContext) ([]string, error) {
	val, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return nil, errors.New(diags.Error())
	}
	if val.IsNull() || !val.IsKnown() {
		return nil, fmt.Errorf("%s: value is not known", expr.Range())
	}
	ty := val.Type()
	if !ty.IsListType() && !ty.IsTupleType() && !ty.IsSetType() {
		return nil, fmt.Errorf("%s: expected a list of strings", expr.Range())
	}
	var out []string
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		s, err := asString(elem, expr.Range())
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *File) rawSource(expr hcl.Expression) (string, bool) {
	quoted := false
	switch expr.(type) {
	case *hclsyntax.TemplateExpr, *hclsyntax.TemplateWrapExpr:
		quoted = true
	case *hclsyntax.FunctionCallExpr:
	default:
		return "", false
	}
	rng := expr.Range()
	if rng.Start.Byte < 0 || rng.End.Byte > len(f.Bytes) || rng.End.Byte-rng.Start.Byte < 2 {
		return "", false
	}
	text := string(f.Bytes[rng.Start.Byte:rng.End.Byte])
	if !quoted {
		return text, true
	}
	if text[0] != '"' || text[len(text)-1] != '"' {
		return "", false
	}
	return text[1 : len(text)-1], true
}

func asString(val cty.Value, rng hcl.Range) (string, error) {
	if val.IsNull() || !val.IsKnown() {
		return "", fmt.Errorf("%s: value is not known", rng)
	}
	converted, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("%s: %w", rng, err)
	}
	return converted.AsString(), nil
}

// Variables builds an evaluation context exposing vars as top-level
// variables.
func Variables(vars map[string]string) *hcl.EvalContext {
	if len(vars) == 0 {
		return nil
	}
	values := make(map[string]cty.Value, len(vars))
	for name, value := range vars {
		values[name] = cty.StringVal(value)
	}
	return &hcl.EvalContext{Variables: values}
}

// IsLocal reports whether source points at the local file system rather
// than a registry or remote repository.
func IsLocal(source string) bool {
	return strings.HasPrefix(source, "./") ||
		strings.HasPrefix(source, "../") ||
		strings.HasPrefix(source, "/") ||
		source == "." || source == ".."
}

// Resolve joins a relative path onto base and cleans it. Absolute paths are
// only cleaned.
func Resolve(base, rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.ToSlash(filepath.Clean(rel))
	}
	return filepath.ToSlash(filepath.Clean(filepath.Join(base, rel)))
}
