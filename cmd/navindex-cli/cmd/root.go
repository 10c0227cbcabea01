package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"navindex/internal/app"
	"navindex/internal/config"
)

var (
	configPath string
	dbPath     string
	kindFlag   string
	binFlag    bool
	navApp     *app.App
)

var rootCmd = &cobra.Command{
	Use:   "navindex-cli",
	Short: "Query and manage navigation trees",
	Long: `navindex-cli answers structural questions about the document and media
navigation trees (parents, children, descendants, ancestors, siblings, levels)
and manages them: add, move, trash, restore, remove, purge and rebuild.

Trees are loaded from the SQLite store before every command. When a Redis URL
is configured, changes are broadcast so other processes rebuild too.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.DatabasePath = config.ExpandPath(dbPath)
		}

		navApp, err = app.Open(cfg)
		if err != nil {
			return err
		}
		if err := navApp.Bootstrap(cmd.Context()); err != nil {
			navApp.Close()
			return err
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if navApp == nil {
			return nil
		}
		return navApp.Close()
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorColor("Error:"), err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $"+config.EnvConfig+")")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the SQLite store (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&kindFlag, "kind", "k", "document", "item kind: document or media")
	rootCmd.PersistentFlags().BoolVarP(&binFlag, "bin", "b", false, "use the recycle bin tree")
}

// GetApp returns the initialized application
func GetApp() *app.App {
	return navApp
}
