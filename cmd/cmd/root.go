// Package cmd wires the CLI commands: serve runs the HTTP server,
// generate runs the batch newsletter job, and debug exercises every
// content provider for a set of interests.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seanmtli/personalnewsletter/internal/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "newsletter",
	Short: "Personalized sports-news digest generator",
	Long: `newsletter curates a personalized sports-news digest per user by
querying multiple content providers with graceful fallback, renders it as
an HTML email, and delivers it.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.newsletter.yaml)")
}

// loadConfig loads configuration for a subcommand run.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
