package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"navindex/internal/adapters/tui"
	"navindex/internal/app"
	"navindex/internal/config"
)

func main() {
	configFlag := flag.String("config", "", "config file (default $"+config.EnvConfig+")")
	dbFlag := flag.String("db", "", "path to the SQLite store (overrides config)")
	flag.Parse()

	if err := run(*configFlag, *dbFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, dbPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.DatabasePath = config.ExpandPath(dbPath)
	}
	// Log lines would corrupt the alternate screen
	cfg.LogLevel = "error"

	a, err := app.Open(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Bootstrap(ctx); err != nil {
		return err
	}
	if a.Notifier != nil {
		go a.Watch(ctx, nil)
	}

	p := tea.NewProgram(tui.NewApp(a.Env()), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
