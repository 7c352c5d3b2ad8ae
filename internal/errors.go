package internal

import "errors"

// Failure classes of an export run. ErrSourceUnavailable aborts the whole
// run; everything else is contained to the collection that raised it.
var (
	ErrSourceUnavailable  = errors.New("source unavailable")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrCollectionEmpty    = errors.New("collection is empty")
)
