package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/frctools/vendordep/cmd/deps"
	"github.com/frctools/vendordep/config"
	"github.com/frctools/vendordep/module/vendordep/types"
)

var rootCmd = &cobra.Command{
	Use:   "vendordep",
	Short: "Resolve and fetch vendor build dependencies",
	Long: "vendordep reads vendor dependency manifests, resolves their artifacts " +
		"for a target platform, and downloads them into a local dependency store.",
	SilenceUsage: true,
}

// Execute wires logging, configuration, and the command tree, then runs the
// CLI.
func Execute() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&config.Global.ConfigPath, "config", config.DefaultPath(), "Path to the tool config file")
	flags.StringVar(&config.Global.StoreRoot, "store", "", "Dependency store root (overrides config)")
	flags.BoolVar(&config.Global.Debug, "debug", false, "Enable debug logging")
	flags.BoolVar(&config.Global.JSONLogs, "json-logs", false, "Emit structured JSON logs instead of console output")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		setupLogging()
	}

	for _, c := range deps.Commands() {
		rootCmd.AddCommand(c)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func setupLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if config.Global.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if !config.Global.JSONLogs && term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log.Logger = log.Output(os.Stderr).Hook(types.TerminalHook{})
	}
}
