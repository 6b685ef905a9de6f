package plugins

import (
	"fmt"

	"github.com/kingrea/superdag/internal/requirements"
)

// RegisterScriptProviders interprets the scripts in dir and registers each
// one under its name. Scripts are loaded once here; routing later binds them
// by name like any built-in provider.
func RegisterScriptProviders(reg *requirements.Registry, dir string) error {
	if reg == nil {
		return nil
	}
	scripts, err := LoadScriptDir(dir)
	if err != nil {
		return err
	}
	seen := make(map[string]string)
	for _, script := range scripts {
		if existing, ok := seen[script.Name()]; ok {
			return fmt.Errorf("plugin: duplicate provider %s (%s and %s)", script.Name(), existing, script.Path)
		}
		seen[script.Name()] = script.Path
		s := script
		if err := reg.Register(s.Name(), func(requirements.Config) (requirements.Provider, error) {
			return s, nil
		}); err != nil {
			return fmt.Errorf("plugin: register %s from %s: %w", s.Name(), s.Path, err)
		}
	}
	return nil
}
