package domain

import "errors"

// Failure categories of the pipeline. Fetch, store and config errors are
// fatal for a run; a publish error only skips the affected article.
var (
	ErrConfig       = errors.New("configuration error")
	ErrFetch        = errors.New("fetch error")
	ErrStoreCorrupt = errors.New("seen-store corrupt")
	ErrStoreWrite   = errors.New("seen-store write error")
	ErrPublish      = errors.New("publish error")
)
