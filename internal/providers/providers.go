// Package providers wires the built-in requirement providers.
package providers

import (
	"github.com/kingrea/superdag/internal/providers/sops"
	"github.com/kingrea/superdag/internal/providers/static"
	"github.com/kingrea/superdag/internal/providers/terraform"
	"github.com/kingrea/superdag/internal/providers/terragrunt"
	"github.com/kingrea/superdag/internal/requirements"
)

// RegisterBuiltins installs all of the built-in provider factories into the
// provided registry.
func RegisterBuiltins(reg *requirements.Registry) {
	if reg == nil {
		return
	}
	sops.Register(reg)
	static.Register(reg)
	terraform.Register(reg)
	terragrunt.Register(reg)
}
