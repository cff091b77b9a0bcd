package batch

import "errors"

var (
	// ErrInvalidOwnerID is returned by Controller.Create when the
	// request carries no owner_id.
	ErrInvalidOwnerID = errors.New("owner_id is required")
	// ErrEmptyBatch is not returned by this package; Controller.Create
	// reports zero input files as batch.ErrNoFiles.
	ErrEmptyBatch = errors.New("batch must contain at least one file")
	// ErrAnalyzeFailed is not returned by this package; the worker
	// records an unclassified Analyzer Adapter error as a permanent
	// failure with error code "permanent".
	ErrAnalyzeFailed = errors.New("analyzer call failed")
)
