package scribe

import "errors"

var (
	// ErrStoreRequired is returned by New when no store option is given.
	ErrStoreRequired = errors.New("scribe: store is required")

	// ErrBatchActive is returned by StartBatch while a batch is in progress.
	ErrBatchActive = errors.New("scribe: a batch is already active")

	// ErrNoActiveBatch is returned by EndBatch when no batch was started.
	ErrNoActiveBatch = errors.New("scribe: no active batch")

	// ErrInvalidLevel is returned by Log for an unrecognized severity level.
	ErrInvalidLevel = errors.New("scribe: invalid level")
)
