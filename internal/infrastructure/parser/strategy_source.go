package parser

import (
	"context"
	"fmt"
	"log/slog"

	"AnimeNewsBot/internal/config"
	"AnimeNewsBot/internal/domain"
	"AnimeNewsBot/internal/ports"
	"AnimeNewsBot/internal/scanner"
)

// StrategySource implements ArticleSource via the registered scanner
// strategy for the configured site.
type StrategySource struct {
	registry *scanner.Registry
	site     config.SiteConfig
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with the config-defined site.
func NewStrategySource(reg *scanner.Registry, site config.SiteConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{registry: reg, site: site, logger: log}
}

// Fetch resolves the site's scanner strategy and returns everything the
// site currently lists, in listing order. Any failure here is a fetch
// error and fatal for the run.
func (s *StrategySource) Fetch(ctx context.Context) ([]domain.Article, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("%w: scanner registry is not configured", domain.ErrFetch)
	}

	strategy, err := s.registry.Resolve(s.site.Scanner)
	if err != nil {
		return nil, fmt.Errorf("%w: site %s: %v", domain.ErrFetch, s.site.Name, err)
	}

	req := scanner.Request{
		SiteName: s.site.Name,
		URL:      s.site.URL,
		FeedURL:  s.site.FeedURL,
	}

	results, err := strategy.Scan(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: scan site %s: %v", domain.ErrFetch, s.site.Name, err)
	}

	for i := range results {
		if results[i].Source == "" {
			results[i].Source = s.site.Name
		}
	}

	s.debug("fetched listing", "site", s.site.Name, "scanner", s.site.Scanner, "count", len(results))
	return results, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
