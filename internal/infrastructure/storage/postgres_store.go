package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq" // postgres driver

	"AnimeNewsBot/internal/domain"
	"AnimeNewsBot/internal/ports"
)

// PostgresStore keeps the seen-set in a single-column table, one row per
// published article identifier. Alternative to FileStore for deployments
// that already run Postgres.
type PostgresStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.SeenStore = (*PostgresStore)(nil)

// OpenPostgresStore connects to the DSN and ensures the table exists.
func OpenPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	store := NewPostgresStore(db)
	if err := store.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresStore wires an existing connection.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS seen_articles (
                external_id TEXT PRIMARY KEY,
                created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
              )`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("%w: ensure schema: %v", domain.ErrStoreWrite, err)
	}
	return nil
}

// Load reads every recorded identifier. An empty table is a first run.
func (s *PostgresStore) Load(ctx context.Context) (domain.SeenSet, error) {
	query, args, err := s.loadQuery()
	if err != nil {
		return nil, fmt.Errorf("%w: build query: %v", domain.ErrStoreCorrupt, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query seen: %v", domain.ErrStoreCorrupt, err)
	}
	defer rows.Close()

	set := domain.NewSeenSet()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scan id: %v", domain.ErrStoreCorrupt, err)
		}
		set.Add(id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows iteration: %v", domain.ErrStoreCorrupt, err)
	}

	return set, nil
}

// Save inserts identifiers not yet recorded. Existing rows stay untouched,
// the set is insert-only.
func (s *PostgresStore) Save(ctx context.Context, set domain.SeenSet) error {
	if set.Len() == 0 {
		return nil
	}

	ids := set.IDs()
	sort.Strings(ids)

	query, args, err := s.saveQuery(ids)
	if err != nil {
		return fmt.Errorf("%w: build insert: %v", domain.ErrStoreWrite, err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insert seen: %v", domain.ErrStoreWrite, err)
	}

	return nil
}

func (s *PostgresStore) loadQuery() (string, []interface{}, error) {
	return s.builder.Select("external_id").From("seen_articles").ToSql()
}

func (s *PostgresStore) saveQuery(ids []string) (string, []interface{}, error) {
	insert := s.builder.Insert("seen_articles").Columns("external_id")
	for _, id := range ids {
		insert = insert.Values(id)
	}
	return insert.Suffix("ON CONFLICT (external_id) DO NOTHING").ToSql()
}
