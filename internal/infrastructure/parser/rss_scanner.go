package parser

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"AnimeNewsBot/internal/domain"
	"AnimeNewsBot/internal/scanner"
)

// RssScanner reads the site's RSS/Atom feed instead of scraping the HTML
// listing. Less brittle than the page scanner when the site offers a feed.
type RssScanner struct {
	parser  *gofeed.Parser
	timeout time.Duration
}

var _ scanner.Scanner = (*RssScanner)(nil)

// NewRssScanner builds the feed strategy with a per-fetch timeout.
func NewRssScanner(timeout time.Duration) *RssScanner {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	fp := gofeed.NewParser()
	fp.UserAgent = userAgent
	return &RssScanner{parser: fp, timeout: timeout}
}

// Name identifies the strategy inside the registry.
func (r *RssScanner) Name() string {
	return "rss"
}

// Scan retrieves and parses the feed, mapping items to articles in feed
// order. Items without a title or link are rejected rather than passed on
// as partial records.
func (r *RssScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	feedURL := req.FeedURL
	if feedURL == "" {
		feedURL = req.URL
	}
	if feedURL == "" {
		return nil, fmt.Errorf("no feed url provided for site %s", req.SiteName)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	articles := make([]domain.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		article, err := feedItemArticle(item, req.SiteName)
		if err != nil {
			return nil, fmt.Errorf("feed %s: %w", feedURL, err)
		}
		articles = append(articles, article)
	}

	return articles, nil
}

func feedItemArticle(item *gofeed.Item, siteName string) (domain.Article, error) {
	if item.Title == "" {
		return domain.Article{}, fmt.Errorf("item has no title")
	}
	if item.Link == "" {
		return domain.Article{}, fmt.Errorf("item %q has no link", item.Title)
	}

	article := domain.Article{
		ID:      item.GUID,
		Title:   item.Title,
		Summary: item.Description,
		URL:     item.Link,
		Source:  siteName,
	}
	if article.ID == "" {
		article.ID = item.Link
	}
	if item.Image != nil {
		article.ImageURL = item.Image.URL
	}

	switch {
	case item.PublishedParsed != nil:
		article.PublishedAt = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		article.PublishedAt = *item.UpdatedParsed
	default:
		return domain.Article{}, fmt.Errorf("item %q has no publication date", item.Title)
	}

	return article, nil
}
