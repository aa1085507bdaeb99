package command

import (
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/frctools/vendordep/config"
	"github.com/frctools/vendordep/module/vendordep"
	"github.com/frctools/vendordep/module/vendordep/httpclient"
	"github.com/frctools/vendordep/module/vendordep/manifest"
	"github.com/frctools/vendordep/module/vendordep/types"
	"github.com/frctools/vendordep/util/common/printer"
)

// NewFetchCmd wires up:
//
//	vendordep fetch <manifest>... --platform <classifier>
func NewFetchCmd() *cobra.Command {
	var (
		platformName  string
		debugBinaries bool
		staticLibs    bool
		extraRepos    []string
		skipFailed    bool
		concurrency   int
	)

	cmd := &cobra.Command{
		Use:   "fetch [manifest]...",
		Short: "Download the artifacts a manifest declares for one platform",
		Long: heredoc.Doc(`
			Resolve every artifact declared by the given vendor dependency
			manifests against a target platform, download them with bounded
			concurrency, and unpack them into the dependency store.

			Manifests can be local JSON files or URLs. Re-running against a
			warm store skips artifacts that are already complete.
		`),
		Example: heredoc.Doc(`
			vendordep fetch vendordeps/Phoenix6.json --platform linuxx86-64
			vendordep fetch https://example.com/lib.json --platform linuxathena --static
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			platform, err := types.ParsePlatform(platformName)
			if err != nil {
				return err
			}
			platform.Debug = debugBinaries
			platform.Static = staticLibs

			fileCfg, err := config.Load(config.Global.ConfigPath)
			if err != nil {
				return err
			}
			storeRoot := config.Global.StoreRoot
			if storeRoot == "" {
				storeRoot = fileCfg.StoreRoot
			}
			if storeRoot == "" {
				storeRoot = config.DefaultStoreRoot()
			}
			if concurrency <= 0 {
				concurrency = fileCfg.Concurrency
			}

			var clientOpts []httpclient.Option
			if fileCfg.RetryMax > 0 {
				clientOpts = append(clientOpts, httpclient.WithRetryMax(fileCfg.RetryMax))
			}

			svc, err := vendordep.NewService(vendordep.Config{
				StoreRoot:   storeRoot,
				Concurrency: concurrency,
				ExtraRepos:  append(fileCfg.ExtraRepos, extraRepos...),
			}, manifest.AutoSource{}, httpclient.NewClient(clientOpts...))
			if err != nil {
				return err
			}

			report, err := svc.Run(cmd.Context(), args, platform)
			if err != nil {
				return err
			}

			for _, resErr := range report.ResolutionErrors {
				pterm.Warning.Println(resErr.Error())
			}
			printer.PrintResults(report.Results)

			if args := report.Libraries.CompilerArgs(); len(args) > 0 {
				pterm.Info.Printfln("Installed libraries: %d include dirs, %d libraries",
					len(report.Libraries.IncludeDirs), len(report.Libraries.Libraries))
			}

			summary := report.Summary()
			if !summary.FullyResolved() && !skipFailed {
				return fmt.Errorf("%d artifact(s) failed to resolve", len(summary.Failed))
			}
			if len(report.ResolutionErrors) > 0 && !skipFailed {
				return fmt.Errorf("%d manifest entr(ies) could not be resolved", len(report.ResolutionErrors))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&platformName, "platform", "", "Target platform classifier (required), e.g. linuxx86-64")
	cmd.Flags().BoolVar(&debugBinaries, "debug-binaries", false, "Fetch debug artifact flavors")
	cmd.Flags().BoolVar(&staticLibs, "static", false, "Fetch static artifact flavors where published")
	cmd.Flags().StringArrayVar(&extraRepos, "repo", nil, "Additional Maven repository to search (repeatable)")
	cmd.Flags().BoolVar(&skipFailed, "skip-failed", false, "Exit zero even when some artifacts fail")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Maximum in-flight downloads (default 4)")
	_ = cmd.MarkFlagRequired("platform")

	return cmd
}
