package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"AnimeNewsBot/internal/domain"
	"AnimeNewsBot/internal/ports"
)

// FileStore persists the seen-set as a JSON array of article identifiers
// in a single file, read fully at start and rewritten fully at end.
type FileStore struct {
	path string
}

var _ ports.SeenStore = (*FileStore)(nil)

// NewFileStore points the store at its file; the file may not exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the persisted identifier set. A missing file is a first run
// and yields an empty set; an unparseable file is a corrupt store and
// fatal, so a broken state file cannot silently cause mass re-posting.
func (s *FileStore) Load(_ context.Context) (domain.SeenSet, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return domain.NewSeenSet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrStoreCorrupt, s.path, err)
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrStoreCorrupt, s.path, err)
	}

	return domain.NewSeenSet(ids...), nil
}

// Save rewrites the file with the full current set. Writes go through a
// temp file and rename so a crash mid-write cannot leave a corrupt store.
func (s *FileStore) Save(_ context.Context, set domain.SeenSet) error {
	ids := set.IDs()
	sort.Strings(ids)

	raw, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", domain.ErrStoreWrite, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp in %s: %v", domain.ErrStoreWrite, dir, err)
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: write %s: %v", domain.ErrStoreWrite, tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: close %s: %v", domain.ErrStoreWrite, tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: rename to %s: %v", domain.ErrStoreWrite, s.path, err)
	}

	return nil
}
