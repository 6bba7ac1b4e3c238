package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AnimeNewsBot/internal/domain"
)

type fakeSource struct {
	articles []domain.Article
	err      error
}

func (f *fakeSource) Fetch(context.Context) ([]domain.Article, error) {
	return f.articles, f.err
}

type fakeStore struct {
	set     domain.SeenSet
	loadErr error
	saveErr error
	saved   domain.SeenSet
}

func (f *fakeStore) Load(context.Context) (domain.SeenSet, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.set, nil
}

func (f *fakeStore) Save(_ context.Context, set domain.SeenSet) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = set
	return nil
}

type fakePublisher struct {
	failIDs   map[string]bool
	published []string
}

func (f *fakePublisher) Publish(_ context.Context, article domain.Article) error {
	if f.failIDs[article.ID] {
		return fmt.Errorf("%w: article %s: channel rejected", domain.ErrPublish, article.ID)
	}
	f.published = append(f.published, article.ID)
	return nil
}

func testArticles(now time.Time, ids ...string) []domain.Article {
	articles := make([]domain.Article, 0, len(ids))
	for _, id := range ids {
		articles = append(articles, domain.Article{ID: id, Title: "title " + id, URL: "https://example.org/" + id, PublishedAt: now})
	}
	return articles
}

func TestPipelineRunHappyPath(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	store := &fakeStore{set: domain.NewSeenSet("a1")}
	publisher := &fakePublisher{}
	pipeline := NewPipeline(PipelineDeps{
		Source:    &fakeSource{articles: testArticles(now, "a1", "a2", "a3")},
		Store:     store,
		Publisher: publisher,
	})

	require.NoError(t, pipeline.Run(context.Background(), now))

	assert.Equal(t, []string{"a2", "a3"}, publisher.published)
	require.NotNil(t, store.saved)
	assert.True(t, store.saved.Contains("a1"))
	assert.True(t, store.saved.Contains("a2"))
	assert.True(t, store.saved.Contains("a3"))
}

func TestPipelineRunPartialFailure(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	store := &fakeStore{set: domain.NewSeenSet()}
	publisher := &fakePublisher{failIDs: map[string]bool{"a2": true}}
	pipeline := NewPipeline(PipelineDeps{
		Source:    &fakeSource{articles: testArticles(now, "a1", "a2", "a3")},
		Store:     store,
		Publisher: publisher,
	})

	// one failed article must not abort the run
	require.NoError(t, pipeline.Run(context.Background(), now))

	assert.Equal(t, []string{"a1", "a3"}, publisher.published)
	require.NotNil(t, store.saved)
	assert.True(t, store.saved.Contains("a1"))
	assert.True(t, store.saved.Contains("a3"))
	assert.False(t, store.saved.Contains("a2"), "failed article must be retried next run")
}

func TestPipelineRunIdempotent(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	store := &fakeStore{set: domain.NewSeenSet()}
	source := &fakeSource{articles: testArticles(now, "a1", "a2")}

	first := &fakePublisher{}
	require.NoError(t, NewPipeline(PipelineDeps{Source: source, Store: store, Publisher: first}).Run(context.Background(), now))
	assert.Len(t, first.published, 2)

	// second run over the unchanged listing, loading what the first saved
	store.set = store.saved
	second := &fakePublisher{}
	require.NoError(t, NewPipeline(PipelineDeps{Source: source, Store: store, Publisher: second}).Run(context.Background(), now))
	assert.Empty(t, second.published)
}

func TestPipelineRunFatalErrors(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	articles := testArticles(now, "a1")

	tests := []struct {
		name    string
		deps    PipelineDeps
		wantErr error
	}{
		{
			name: "load failure",
			deps: PipelineDeps{
				Source:    &fakeSource{articles: articles},
				Store:     &fakeStore{loadErr: fmt.Errorf("%w: bad json", domain.ErrStoreCorrupt)},
				Publisher: &fakePublisher{},
			},
			wantErr: domain.ErrStoreCorrupt,
		},
		{
			name: "fetch failure",
			deps: PipelineDeps{
				Source:    &fakeSource{err: fmt.Errorf("%w: connection refused", domain.ErrFetch)},
				Store:     &fakeStore{set: domain.NewSeenSet()},
				Publisher: &fakePublisher{},
			},
			wantErr: domain.ErrFetch,
		},
		{
			name: "save failure",
			deps: PipelineDeps{
				Source:    &fakeSource{articles: articles},
				Store:     &fakeStore{set: domain.NewSeenSet(), saveErr: fmt.Errorf("%w: disk full", domain.ErrStoreWrite)},
				Publisher: &fakePublisher{},
			},
			wantErr: domain.ErrStoreWrite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewPipeline(tt.deps).Run(context.Background(), now)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr))
		})
	}
}
