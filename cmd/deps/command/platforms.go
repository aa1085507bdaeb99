package command

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/frctools/vendordep/module/vendordep/types"
)

// NewPlatformsCmd wires up:
//
//	vendordep platforms
func NewPlatformsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "platforms",
		Short: "List supported platform classifiers",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			rows := pterm.TableData{{"Classifier", "OS", "Arch"}}
			for _, c := range types.KnownClassifiers() {
				p, _ := types.ParsePlatform(c)
				rows = append(rows, []string{c, p.OS, p.Arch})
			}
			_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	}
}
