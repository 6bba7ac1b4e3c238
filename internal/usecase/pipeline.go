package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"AnimeNewsBot/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source    ports.ArticleSource
	Store     ports.SeenStore
	Publisher ports.Publisher
	Logger    *slog.Logger
}

// Pipeline runs one fetch → filter → publish → record pass. It holds no
// state of its own; the seen-set travels through explicitly.
type Pipeline struct {
	source    ports.ArticleSource
	store     ports.SeenStore
	publisher ports.Publisher
	logger    *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:    deps.Source,
		store:     deps.Store,
		publisher: deps.Publisher,
		logger:    deps.Logger,
	}
}

// Run executes a single pipeline pass for the given local time. Load,
// fetch and save failures abort the run; a failed publish only skips its
// article, so it is retried on the next invocation, and later articles
// still go out.
func (p *Pipeline) Run(ctx context.Context, now time.Time) error {
	seen, err := p.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load seen-store: %w", err)
	}

	articles, err := p.source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch articles: %w", err)
	}

	fresh := FilterNew(articles, now, seen)
	p.info("run", "listed", len(articles), "new", len(fresh), "day", now.Format("2006-01-02"))

	published := 0
	for _, article := range fresh {
		if err := p.publisher.Publish(ctx, article); err != nil {
			p.error("publish failed", "article", article.ID, "error", err)
			continue
		}
		seen.Add(article.ID)
		published++
		p.info("published", "article", article.ID, "title", article.Title)
	}

	if err := p.store.Save(ctx, seen); err != nil {
		return fmt.Errorf("save seen-store: %w", err)
	}

	p.info("run complete", "published", published, "skipped", len(fresh)-published)
	return nil
}

func (p *Pipeline) info(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) error(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
