// Package app wires the store, the navigation registry and the optional
// rebuild notifier into the environment shared by every navindex binary.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"navindex/internal/adapters/redis"
	"navindex/internal/adapters/sqlite"
	"navindex/internal/application/commands"
	"navindex/internal/config"
	"navindex/internal/domain"
	"navindex/internal/logging"
	"navindex/internal/navigation"
	"navindex/internal/ports"
	"navindex/internal/telemetry"
)

// App holds the long-lived dependencies of one process.
type App struct {
	Config       *config.Config
	Logger       *logging.Logger
	Store        *sqlite.Store
	Registry     *navigation.Registry
	Bootstrapper *navigation.Bootstrapper
	Notifier     ports.RebuildNotifier // nil when Redis is not configured
	Telemetry    *telemetry.Telemetry  // nil unless enabled in the config
	Origin       string
}

// Open connects the store and the notifier and builds the navigation registry.
// The trees stay empty until Bootstrap runs.
func Open(cfg *config.Config) (*App, error) {
	logger, err := logging.FromConfig(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	a := &App{
		Config: cfg,
		Logger: logger,
		Store:  store,
		Origin: origin(),
	}
	opts := []navigation.Option{navigation.WithLogger(logger)}
	if cfg.Telemetry {
		a.Telemetry = telemetry.New(logger)
		opts = append(opts,
			navigation.WithTracerProvider(a.Telemetry.TracerProvider),
			navigation.WithMeterProvider(a.Telemetry.MeterProvider),
		)
	}
	a.Registry = navigation.NewRegistry(append(opts, navigation.WithGuard(store))...)
	a.Bootstrapper = navigation.NewBootstrapper(a.Registry, opts...)

	if cfg.RedisURL != "" {
		n, err := redis.NewNotifier(redis.NotifierOptions{
			URL:     cfg.RedisURL,
			Channel: cfg.RebuildChannel,
			Logger:  logger,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Notifier = n
	}

	return a, nil
}

// Env returns the command environment for this process.
func (a *App) Env() commands.Env {
	env := commands.Env{
		Registry: a.Registry,
		Writer:   a.Store,
		Origin:   a.Origin,
	}
	// Keep the interface nil rather than holding a nil pointer
	if a.Notifier != nil {
		env.Notifier = a.Notifier
	}
	return env
}

// Bootstrap loads every tree from the store.
func (a *App) Bootstrap(ctx context.Context) error {
	_, err := commands.NewBootstrapCommand(a.Bootstrapper).Execute(ctx)
	return err
}

// Watch rebuilds trees on request from other processes until ctx ends.
// Requests this process published itself are ignored.
func (a *App) Watch(ctx context.Context, onRebuild func(domain.RebuildRequest, *domain.RebuildStats, error)) error {
	if a.Notifier == nil {
		return errors.New("watch requires redis_url to be configured")
	}

	requests, err := a.Notifier.Subscribe(ctx)
	if err != nil {
		return err
	}

	for req := range requests {
		if req.Origin == a.Origin {
			continue
		}
		idx, ok := a.Registry.Lookup(req.Kind, req.Trashed)
		if !ok {
			a.Logger.WarnContext(ctx, "rebuild requested for unknown tree",
				"kind", req.Kind.String(),
				"trashed", req.Trashed,
			)
			continue
		}
		stats, err := idx.Rebuild(ctx)
		if onRebuild != nil {
			onRebuild(req, stats, err)
		}
	}
	return ctx.Err()
}

// Close releases the notifier, the telemetry providers and the store.
func (a *App) Close() error {
	var errs []error
	if a.Notifier != nil {
		errs = append(errs, a.Notifier.Close())
	}
	if a.Telemetry != nil {
		errs = append(errs, a.Telemetry.Shutdown(context.Background()))
	}
	errs = append(errs, a.Store.Close())
	return errors.Join(errs...)
}

func origin() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("%s:%d", host, os.Getpid())
}
