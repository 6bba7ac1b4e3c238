package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"AnimeNewsBot/internal/domain"
	"AnimeNewsBot/internal/scanner"
	"AnimeNewsBot/internal/usecase"
)

const listingHTML = `
<div class="mainfeed-day">
  <h2>Friday, August 28, 2026</h2>
  <div class="herald box news">
    <h3><a href="/news/2026-08-28/fresh-article/.12345">Fresh Article</a></h3>
    <p>too short</p>
    <p>You can see the archives of everything that was posted before today.</p>
    <p>A meaningful summary paragraph carrying enough text to be worth posting to the channel.</p>
    <img class="thumbnail" src="/thumbnails/fit200x200/cms/news/12345.jpg">
  </div>
  <div class="herald box news">
    <h3><a href="https://example.org/absolute">Second Article</a></h3>
    <p>Another summary paragraph that is comfortably longer than the minimum threshold.</p>
  </div>
</div>
<div class="mainfeed-day">
  <h2>Thursday, August 27, 2026</h2>
  <div class="herald box news">
    <h3><a href="/news/2026-08-27/old-article/.12344">Old Article</a></h3>
    <p>Yesterday's summary paragraph, also long enough to clear the length filter.</p>
  </div>
</div>`

func TestAnnScannerScan(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); !strings.Contains(got, "Mozilla") {
			t.Errorf("unexpected user-agent: %s", got)
		}
		_, _ = w.Write([]byte(listingHTML))
	}))
	defer server.Close()

	sc := NewAnnScanner(server.Client(), 1, time.UTC)

	articles, err := sc.Scan(context.Background(), scanner.Request{SiteName: "ann", URL: server.URL + "/news/"})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if len(articles) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(articles))
	}

	first := articles[0]
	if first.Title != "Fresh Article" {
		t.Fatalf("unexpected title: %s", first.Title)
	}
	if first.URL != server.URL+"/news/2026-08-28/fresh-article/.12345" {
		t.Fatalf("unexpected url: %s", first.URL)
	}
	if first.ID != first.URL {
		t.Fatalf("id should be the link url, got %s", first.ID)
	}
	if !strings.HasPrefix(first.Summary, "A meaningful summary") {
		t.Fatalf("summary should skip short and archive paragraphs, got %q", first.Summary)
	}
	if first.ImageURL != server.URL+"/thumbnails/fit200x200/cms/news/12345.jpg" {
		t.Fatalf("unexpected image url: %s", first.ImageURL)
	}

	wantDay := time.Date(2026, time.August, 28, 0, 0, 0, 0, time.UTC)
	if first.PublishedAt.Format("2006-01-02") != wantDay.Format("2006-01-02") {
		t.Fatalf("unexpected published date: %v", first.PublishedAt)
	}

	if articles[1].URL != "https://example.org/absolute" {
		t.Fatalf("absolute link must stay untouched: %s", articles[1].URL)
	}
	if articles[2].PublishedAt.Day() != 27 {
		t.Fatalf("second day section date not applied: %v", articles[2].PublishedAt)
	}
}

func TestAnnScannerSiteLocalDates(t *testing.T) {
	t.Parallel()

	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(listingHTML))
	}))
	defer server.Close()

	sc := NewAnnScanner(server.Client(), 1, ny)

	articles, err := sc.Scan(context.Background(), scanner.Request{SiteName: "ann", URL: server.URL + "/news/"})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(articles) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(articles))
	}

	// heading dates must resolve to site-local midnight, not UTC midnight,
	// or every article under today's heading shifts to the prior day
	first := articles[0]
	if first.PublishedAt.Location() != ny {
		t.Fatalf("published date not in site location: %v", first.PublishedAt.Location())
	}
	y, m, d := first.PublishedAt.Date()
	if y != 2026 || m != time.August || d != 28 {
		t.Fatalf("heading date shifted: %v", first.PublishedAt)
	}

	now := time.Date(2026, time.August, 28, 10, 0, 0, 0, ny)
	fresh := usecase.FilterNew(articles, now, domain.NewSeenSet())
	if len(fresh) != 2 {
		t.Fatalf("articles listed under today's heading were filtered out: got %d", len(fresh))
	}
}

func TestAnnScannerUnrecognizedPage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>nothing here</p></body></html>"))
	}))
	defer server.Close()

	sc := NewAnnScanner(server.Client(), 1, time.UTC)

	_, err := sc.Scan(context.Background(), scanner.Request{SiteName: "ann", URL: server.URL})
	if err == nil {
		t.Fatal("expected error for unrecognized page structure")
	}
}

func TestAnnScannerServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	sc := NewAnnScanner(server.Client(), 1, time.UTC)

	_, err := sc.Scan(context.Background(), scanner.Request{SiteName: "ann", URL: server.URL})
	if err == nil {
		t.Fatal("expected error on server failure")
	}
}

func TestParseDayDateYearRollover(t *testing.T) {
	t.Parallel()

	sc := NewAnnScanner(nil, 1, time.UTC)
	sc.clock = func() time.Time {
		return time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div class="mainfeed-day"><h2>Wednesday, December 31</h2></div>`))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	parsed, ok := sc.parseDayDate(doc.Find(".mainfeed-day").First())
	if !ok {
		t.Fatal("expected date to parse")
	}
	if parsed.Year() != 2025 {
		t.Fatalf("December heading seen in January must land in the prior year, got %d", parsed.Year())
	}
}

func TestParseEntryMissingLink(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<div class="herald box news"><h3>No Link Here</h3></div>`))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	_, err = parseEntry(doc.Find(".herald").First(), "ann", "https://example.org", time.Now())
	if err == nil {
		t.Fatal("expected error for entry without link")
	}
}

func TestExtractSummaryTruncation(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("word ", 100)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<div><p>" + long + "</p></div>"))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	summary := extractSummary(doc.Find("div").First())
	if !strings.HasSuffix(summary, "...") {
		t.Fatalf("long summary should be truncated, got %q", summary)
	}
	if got := len([]rune(summary)); got != summaryMaxRunes+3 {
		t.Fatalf("unexpected truncated length: %d", got)
	}
}

func TestAbsoluteURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ref  string
		want string
	}{
		{"https://example.org/x", "https://example.org/x"},
		{"/news/a", "https://site.test/news/a"},
		{"news/a", "https://site.test/news/a"},
		{"//cdn.test/img.jpg", "https://cdn.test/img.jpg"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := absoluteURL("https://site.test", tt.ref); got != tt.want {
			t.Errorf("absoluteURL(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}
