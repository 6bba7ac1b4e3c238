package usecase

import (
	"time"

	"AnimeNewsBot/internal/domain"
)

// FilterNew narrows the fetched listing to articles published on day's
// calendar date (in day's location) that are not yet in the seen-set.
// Pure and order-preserving.
func FilterNew(articles []domain.Article, day time.Time, seen domain.SeenSet) []domain.Article {
	fresh := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		if !sameDate(article.PublishedAt, day) {
			continue
		}
		if seen.Contains(article.ID) {
			continue
		}
		fresh = append(fresh, article)
	}
	return fresh
}

func sameDate(published, day time.Time) bool {
	y1, m1, d1 := published.In(day.Location()).Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
