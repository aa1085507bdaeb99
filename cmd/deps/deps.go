// Package deps assembles the dependency-management command group.
package deps

import (
	"github.com/spf13/cobra"

	"github.com/frctools/vendordep/cmd/deps/command"
)

// Commands returns the top-level commands this area contributes.
func Commands() []*cobra.Command {
	return []*cobra.Command{
		command.NewFetchCmd(),
		command.NewValidateCmd(),
		command.NewPlatformsCmd(),
	}
}
