package telegram

import (
	"context"
	"log/slog"

	"AnimeNewsBot/internal/domain"
	"AnimeNewsBot/internal/ports"
)

// DryRunPublisher formats messages like the real publisher but only logs
// them. Selected by the --dry-run flag.
type DryRunPublisher struct {
	decorate bool
	logger   *slog.Logger
}

var _ ports.Publisher = (*DryRunPublisher)(nil)

// NewDryRunPublisher builds the logging-only publisher.
func NewDryRunPublisher(decorate bool, log *slog.Logger) *DryRunPublisher {
	return &DryRunPublisher{decorate: decorate, logger: log}
}

// Publish logs the rendered message instead of sending it.
func (p *DryRunPublisher) Publish(_ context.Context, article domain.Article) error {
	if p.logger != nil {
		p.logger.Info("dry-run publish", "article", article.ID, "message", FormatMessage(article, p.decorate))
	}
	return nil
}
