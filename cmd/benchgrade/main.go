// Package main provides the benchgrade CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

// globalOpts are the flags shared by every command. Non-empty values override
// the config file.
type globalOpts struct {
	configPath string
	dataDir    string
	debugDir   string
	logLevel   string
	logFormat  string
	noColor    bool
}

func newRootCmd() *cobra.Command {
	g := &globalOpts{}

	rootCmd := &cobra.Command{
		Use:   "benchgrade",
		Short: "Building energy benchmarking grades and statistics",
		Long: `benchgrade grades every building in the city's energy benchmarking export
against its peers, then writes the statistics the site is built from.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Path to config file (default: find .benchgrade/config.yaml)")
	pf.StringVar(&g.dataDir, "data-dir", "", "Directory holding the input tables and JSON outputs")
	pf.StringVar(&g.debugDir, "debug-dir", "", "Directory for indented copies of the JSON outputs")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.StringVar(&g.logFormat, "log-format", "", "Log format: text or json")
	pf.BoolVar(&g.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		newRunCmd(g),
		newStageCmd(g),
		newPublishCmd(g),
		newEmissionsCmd(g),
		newArchiveCmd(g),
	)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
