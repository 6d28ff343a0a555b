package repository

import "errors"

// ErrNoRecord is returned by point lookups when no record matches.
// Write operations never return it; they report a zero applied count
// instead, so callers can fold existence checks into the write result.
var ErrNoRecord = errors.New("repository: record not found")
