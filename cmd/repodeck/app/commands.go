// Package app provides the entry point for the repodeck application.
package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jmalmgren/repodeck/internal/logger"
	"github.com/jmalmgren/repodeck/internal/provider"
	"github.com/jmalmgren/repodeck/internal/storage"
	"github.com/jmalmgren/repodeck/internal/store"
)

var stateDir string

var rootCmd = &cobra.Command{
	Use:               "repodeck",
	DisableAutoGenTag: true,
	Short:             "Aggregate repositories from GitHub, GitLab and Bitbucket",
	Long: `repodeck aggregates the repositories you own across GitHub, GitLab and
Bitbucket into a single cached, groupable, searchable list.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// NewRootCmd creates the root command for repodeck.
func NewRootCmd() *cobra.Command {
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "",
		"Directory for tokens, groups, cache and logs (default ~/.repodeck)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newGroupCmd())

	return rootCmd
}

// setup resolves the state directory and routes logging to a file inside it.
func setup(_ *cobra.Command, _ []string) error {
	if stateDir == "" {
		dir, err := storage.DefaultDir()
		if err != nil {
			return fmt.Errorf("failed to resolve state directory: %w", err)
		}
		stateDir = dir
	}
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	if err := logger.Init(filepath.Join(stateDir, "repodeck.log")); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

// newStore builds a store over the state directory with the real platform
// adapters. The caller owns Close.
func newStore() (*store.Store, error) {
	kv, err := storage.NewLocal(stateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open state directory: %w", err)
	}

	return store.New(store.Options{
		KV:      kv,
		Sources: provider.Sources(),
	}), nil
}
