// Package cmd implements the datagrid command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/charmbracelet/datagrid/internal/config"
	"github.com/charmbracelet/datagrid/internal/log"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "devel"

var rootCmd = &cobra.Command{
	Use:   "datagrid",
	Short: "Browse tabular data in the terminal",
	Long: heredoc.Doc(`
		Browse tabular data in the terminal.

		Tables of any size are scrolled, sorted, selected and edited without
		rendering more rows than fit on the screen.
	`),
	Example: heredoc.Doc(`
		# Browse a CSV file
		datagrid view people.csv

		# Freeze the first column of a JSON array
		datagrid view --freeze 1 people.json

		# Scroll through a million slow rows
		datagrid demo --rows 1000000 --latency 200ms
	`),
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		log.SetupConsole(cmd.ErrOrStderr(), debug)
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file, replaces the default search paths")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")

	rootCmd.AddCommand(
		viewCmd,
		demoCmd,
		snapshotCmd,
		schemaCmd,
	)
}

// Execute runs the root command.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	paths := config.ConfigPaths()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		paths = []string{path}
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return nil, err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Log.Debug = true
	}
	return cfg, nil
}
