package domain

import "time"

// Article is a single news item extracted from the site listing.
type Article struct {
	ID          string
	Title       string
	Summary     string
	URL         string
	ImageURL    string
	Source      string
	PublishedAt time.Time
}

// SeenSet holds identifiers of articles already published. Insert-only:
// ids are added after a successful publish and never removed.
type SeenSet map[string]struct{}

// NewSeenSet builds a set from a list of identifiers, dropping duplicates.
func NewSeenSet(ids ...string) SeenSet {
	set := make(SeenSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Contains reports membership.
func (s SeenSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts an identifier; adding an existing id is a no-op.
func (s SeenSet) Add(id string) {
	s[id] = struct{}{}
}

// IDs returns the recorded identifiers in unspecified order.
func (s SeenSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of recorded identifiers.
func (s SeenSet) Len() int {
	return len(s)
}
