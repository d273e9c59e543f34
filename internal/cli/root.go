// Package cli implements the flowkit command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flowkit/pkg/logger"
)

// Version is the current version number.
const Version = "0.1.0"

var (
	cfgFile string
	debug   bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:     "flowkit",
	Short:   "Task and workflow orchestration engine",
	Long:    `flowkit chains validated tasks into workflows, drives a fixed command lifecycle over a hook bus, and wraps AI-assisted commands with typed tool dispatch.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if debug {
			level = "debug"
		}
		if quiet {
			level = "error"
		}
		return logger.Init(level)
	},
}

// Execute runs the root command.
func Execute() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
