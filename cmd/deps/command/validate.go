package command

import (
	"context"
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/frctools/vendordep/module/vendordep/manifest"
	"github.com/frctools/vendordep/module/vendordep/types"
)

// NewValidateCmd wires up:
//
//	vendordep validate <manifest>...
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [manifest]...",
		Short: "Parse and validate vendor dependency manifests",
		Long: heredoc.Doc(`
			Parse each manifest, check its required fields and artifact
			declarations, and verify the batch has no declared conflicts.
			Nothing is downloaded.
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), args)
		},
	}
	return cmd
}

func runValidate(ctx context.Context, refs []string) error {
	src := manifest.AutoSource{}
	var parsed []*types.VendorManifest
	failed := 0

	for _, ref := range refs {
		raw, err := src.Fetch(ctx, ref)
		if err != nil {
			pterm.Error.Printfln("%s: %v", ref, err)
			failed++
			continue
		}
		m, err := manifest.Parse(raw)
		if err != nil {
			pterm.Error.Printfln("%s: %v", ref, err)
			failed++
			continue
		}
		parsed = append(parsed, m)
		pterm.Success.Printfln("%s: %s (%d artifacts)", ref, m.Key(), m.ArtifactCount())
	}

	if err := manifest.ValidateConflicts(parsed); err != nil {
		pterm.Error.Println(err.Error())
		failed++
	}

	if failed > 0 {
		return fmt.Errorf("%d manifest(s) failed validation", failed)
	}
	return nil
}
