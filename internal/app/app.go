package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"AnimeNewsBot/internal/config"
	"AnimeNewsBot/internal/infrastructure/parser"
	"AnimeNewsBot/internal/infrastructure/storage"
	"AnimeNewsBot/internal/infrastructure/telegram"
	"AnimeNewsBot/internal/logging"
	"AnimeNewsBot/internal/ports"
	"AnimeNewsBot/internal/scanner"
	"AnimeNewsBot/internal/usecase"
)

// Application wires configuration to the pipeline and owns adapter
// lifecycles.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	closers  []func() error
}

// New validates the configuration and builds a runnable application.
// With dryRun set, publishing is replaced by logging and Telegram
// credentials are not required.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger, dryRun bool) (*Application, error) {
	if err := cfg.Validate(!dryRun); err != nil {
		return nil, err
	}

	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout()}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewAnnScanner(httpClient, cfg.HTTP.RetryAttempts, cfg.Site.Location()))
	registry.Register(parser.NewRssScanner(cfg.HTTP.Timeout()))

	source := parser.NewStrategySource(registry, cfg.Site, baseLogger.With("component", "source"))

	app := &Application{cfg: cfg}

	store, err := app.buildStore(ctx)
	if err != nil {
		return nil, err
	}

	var publisher ports.Publisher
	if dryRun {
		publisher = telegram.NewDryRunPublisher(cfg.Notifications.Telegram.Decorate, baseLogger.With("component", "publisher"))
	} else {
		publisher = telegram.NewPublisher(cfg.Notifications.Telegram, httpClient, baseLogger.With("component", "publisher"))
	}

	app.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:    source,
		Store:     store,
		Publisher: publisher,
		Logger:    baseLogger.With("component", "pipeline"),
	})

	return app, nil
}

// Run performs a single pipeline execution for the current site-local day.
func (a *Application) Run(ctx context.Context) error {
	now := time.Now().In(a.cfg.Site.Location())
	return a.pipeline.Run(ctx, now)
}

// Close releases adapter resources.
func (a *Application) Close() error {
	var firstErr error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (a *Application) buildStore(ctx context.Context) (ports.SeenStore, error) {
	switch a.cfg.Store.Backend {
	case "postgres":
		store, err := storage.OpenPostgresStore(ctx, a.cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	case "file":
		return storage.NewFileStore(a.cfg.Store.Path), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", a.cfg.Store.Backend)
	}
}
