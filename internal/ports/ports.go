package ports

import (
	"context"

	"AnimeNewsBot/internal/domain"
)

// ArticleSource pulls the articles currently listed on the configured site,
// in listing order (most recent first).
type ArticleSource interface {
	Fetch(ctx context.Context) ([]domain.Article, error)
}

// SeenStore persists the set of already-published article identifiers
// across runs.
type SeenStore interface {
	Load(ctx context.Context) (domain.SeenSet, error)
	Save(ctx context.Context, set domain.SeenSet) error
}

// Publisher delivers one article as a formatted message to the channel.
type Publisher interface {
	Publish(ctx context.Context, article domain.Article) error
}
