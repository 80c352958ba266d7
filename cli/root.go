// Package cli implements the legalbot command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/config"
)

var (
	configPath string
	verbose    bool
	version    = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "legalbot",
	Short: "Answer legal questions from a document corpus",
	Long: `legalbot answers legal questions in plain language.

It indexes the legal documents in the corpus directory once, retrieves the
passages most relevant to each question and asks Claude to explain them for
a non-lawyer. Conversations are kept per session.

Quick Start:
  legalbot index                          # Build the document index
  legalbot ask "What is a plaint?"        # One-off question
  legalbot chat                           # Interactive session
  legalbot serve                          # HTTP and WebSocket API`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig reads configuration. Interactive commands log warnings only
// unless --verbose is set.
func loadConfig(interactive bool) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	switch {
	case verbose:
		cfg.Log.Level = "debug"
	case interactive:
		cfg.Log.Level = "warn"
	}
	return cfg, nil
}
