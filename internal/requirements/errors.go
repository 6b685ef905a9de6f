package requirements

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// MissingDefinitionError reports that an artifact has no definition for a
// provider. Collect treats it as an empty requirement set.
type MissingDefinitionError struct {
	Artifact string
	Provider string
	Path     string
}

func (e *MissingDefinitionError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("requirements: %s: no %s definition at %s", e.Artifact, e.Provider, e.Path)
	}
	return fmt.Sprintf("requirements: %s: no %s definition", e.Artifact, e.Provider)
}

// MalformedDefinitionError reports a definition that exists but cannot be
// parsed. It aborts the computation.
type MalformedDefinitionError struct {
	Artifact string
	Provider string
	Path     string
	Err      error
}

func (e *MalformedDefinitionError) Error() string {
	where := e.Artifact
	if e.Path != "" {
		where = e.Path
	}
	return fmt.Sprintf("requirements: %s: malformed %s definition %s: %v", e.Artifact, e.Provider, where, e.Err)
}

func (e *MalformedDefinitionError) Unwrap() error { return e.Err }

// ConfigurationError reports routing or provider setup problems detected
// before any graph work starts.
type ConfigurationError struct {
	Provider string
	Route    string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Route != "" && e.Provider != "":
		return fmt.Sprintf("requirements: route %q: provider %s: %s", e.Route, e.Provider, e.Reason)
	case e.Provider != "":
		return fmt.Sprintf("requirements: provider %s: %s", e.Provider, e.Reason)
	default:
		return fmt.Sprintf("requirements: %s", e.Reason)
	}
}

// IsMissing reports whether err is (or wraps) a MissingDefinitionError.
func IsMissing(err error) bool {
	var missing *MissingDefinitionError
	return errors.As(err, &missing)
}

// NotFound reports whether err means a definition is absent on disk: the
// file does not exist, or a component of its path is a plain file rather
// than a directory (an artifact that is itself a file has no definition).
func NotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

// Missing builds a MissingDefinitionError.
func Missing(provider, artifact, path string) error {
	return &MissingDefinitionError{Artifact: artifact, Provider: provider, Path: path}
}

// Malformed builds a MalformedDefinitionError.
func Malformed(provider, artifact, path string, err error) error {
	return &MalformedDefinitionError{Artifact: artifact, Provider: provider, Path: path, Err: err}
}
