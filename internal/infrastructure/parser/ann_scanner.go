package parser

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-pkgz/repeater/v2"

	"AnimeNewsBot/internal/domain"
	"AnimeNewsBot/internal/scanner"
)

const (
	// Browser-like headers, the site serves a reduced page to obvious bots.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	summaryMaxRunes = 200
	summaryMinChars = 20
)

var dayHeadingLayouts = []string{
	"Monday, January 2, 2006",
	"January 2, 2006",
	"Monday, January 2",
	"2006-01-02",
}

// AnnScanner reads the Anime News Network style news listing: day sections
// containing article boxes, most recent first.
type AnnScanner struct {
	client  *http.Client
	retries int
	loc     *time.Location
	clock   func() time.Time
}

var _ scanner.Scanner = (*AnnScanner)(nil)

// NewAnnScanner wires an HTTP client; retries defaults to 3 attempts.
// Day headings carry no time or zone, so they resolve to midnight in loc,
// the site's timezone. Parsing them in UTC instead would shift the date
// for any site west of UTC and the daily filter would drop everything.
func NewAnnScanner(client *http.Client, retries int, loc *time.Location) *AnnScanner {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if retries <= 0 {
		retries = 3
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AnnScanner{client: client, retries: retries, loc: loc, clock: time.Now}
}

// Name identifies the strategy inside the registry.
func (a *AnnScanner) Name() string {
	return "ann"
}

// Scan fetches the listing page and extracts every article on it, in page
// order. Date and seen-set filtering happen downstream.
func (a *AnnScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("no listing url provided for site %s", req.SiteName)
	}

	doc, err := a.fetchDocument(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	articles := a.extractArticles(doc, req.SiteName, req.URL)
	if len(articles) == 0 {
		return nil, fmt.Errorf("page structure not recognized: no articles found at %s", req.URL)
	}

	return articles, nil
}

func (a *AnnScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	var doc *goquery.Document

	retrier := repeater.NewBackoff(a.retries, 2*time.Second, repeater.WithMaxDelay(8*time.Second))
	err := retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := a.client.Do(req)
		if err != nil {
			return fmt.Errorf("request document: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("site returned %s", resp.Status)
		}

		doc, err = goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return fmt.Errorf("parse document: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

func (a *AnnScanner) extractArticles(doc *goquery.Document, siteName, pageURL string) []domain.Article {
	base := baseURL(pageURL)
	var collected []domain.Article

	doc.Find(".mainfeed-day").Each(func(i int, day *goquery.Selection) {
		publishedAt, ok := a.parseDayDate(day)
		if !ok {
			return
		}

		day.Find(".herald.box.news, .news-item, article").Each(func(j int, box *goquery.Selection) {
			article, err := parseEntry(box, siteName, base, publishedAt)
			if err != nil {
				return
			}
			collected = append(collected, article)
		})
	})

	return collected
}

// parseDayDate resolves the date of one day section, preferring a machine
// readable time element over the visible heading. Zone-less values are
// interpreted in the site's timezone. Headings without a year
// ("Thursday, August 28") get the current year, rolled back by one around
// the new-year boundary.
func (a *AnnScanner) parseDayDate(day *goquery.Selection) (time.Time, bool) {
	if dt, exists := day.Find("time").First().Attr("datetime"); exists {
		if parsed, err := time.Parse(time.RFC3339, dt); err == nil {
			return parsed, true
		}
		if parsed, err := time.ParseInLocation("2006-01-02", dt, a.loc); err == nil {
			return parsed, true
		}
	}

	heading := strings.TrimSpace(day.Find("h2, h3").First().Text())
	if heading == "" {
		heading = strings.TrimSpace(day.AttrOr("name", ""))
	}
	if heading == "" {
		return time.Time{}, false
	}

	now := a.clock().In(a.loc)
	for _, layout := range dayHeadingLayouts {
		parsed, err := time.ParseInLocation(layout, heading, a.loc)
		if err != nil {
			continue
		}
		if parsed.Year() == 0 {
			parsed = parsed.AddDate(now.Year(), 0, 0)
			if parsed.After(now.AddDate(0, 0, 1)) {
				parsed = parsed.AddDate(-1, 0, 0)
			}
		}
		return parsed, true
	}

	return time.Time{}, false
}

func parseEntry(box *goquery.Selection, siteName, base string, publishedAt time.Time) (domain.Article, error) {
	title := strings.TrimSpace(box.Find("h3, h2, h1").First().Text())
	if title == "" {
		return domain.Article{}, fmt.Errorf("entry has no title")
	}

	link := box.Find("h3 a, h2 a, h1 a, a").First()
	href, _ := link.Attr("href")
	href = strings.TrimSpace(href)
	if href == "" {
		return domain.Article{}, fmt.Errorf("entry %q has no link", title)
	}
	href = absoluteURL(base, href)

	article := domain.Article{
		ID:          href,
		Title:       title,
		Summary:     extractSummary(box),
		URL:         href,
		ImageURL:    extractImageURL(box, base),
		Source:      siteName,
		PublishedAt: publishedAt,
	}

	return article, nil
}

// extractSummary picks the first meaningful paragraph, skipping archive
// boilerplate, and truncates it the way the channel expects.
func extractSummary(box *goquery.Selection) string {
	var summary string
	box.Find("p").EachWithBreak(func(i int, p *goquery.Selection) bool {
		text := strings.TrimSpace(p.Text())
		if len(text) <= summaryMinChars {
			return true
		}
		if strings.Contains(strings.ToLower(text), "see the archives") {
			return true
		}
		summary = text
		return false
	})

	if utf8.RuneCountInString(summary) > summaryMaxRunes {
		summary = string([]rune(summary)[:summaryMaxRunes]) + "..."
	}
	return summary
}

func extractImageURL(box *goquery.Selection, base string) string {
	img := box.Find("img.thumbnail, img[src*='jpg'], img[src*='png'], img[src*='jpeg']").First()
	src, exists := img.Attr("src")
	if !exists {
		src, _ = img.Attr("data-src")
	}
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	return absoluteURL(base, src)
}

func absoluteURL(base, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return base + ref
}

func baseURL(pageURL string) string {
	for _, scheme := range []string{"https://", "http://"} {
		if rest, ok := strings.CutPrefix(pageURL, scheme); ok {
			host, _, _ := strings.Cut(rest, "/")
			return scheme + host
		}
	}
	return strings.TrimSuffix(pageURL, "/")
}
