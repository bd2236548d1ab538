package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, caches and loaders return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: record or file does not exist
// - ErrMalformed: a stored document could not be decoded
// - ErrUnavailable: backing service temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrMalformed   = errors.New("malformed document")
	ErrUnavailable = errors.New("unavailable")
)
