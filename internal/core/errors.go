package core

import "errors"

var (
	// ErrUnknownFileKind is returned when a kind is not registered.
	ErrUnknownFileKind = errors.New("unknown file kind")

	// ErrDirectoryNotFound is returned by local discovery when the base
	// directory does not exist.
	ErrDirectoryNotFound = errors.New("directory not found")

	// ErrSourceUnavailable wraps storage client failures (network, auth,
	// missing bucket) during discovery or reading.
	ErrSourceUnavailable = errors.New("file source unavailable")

	// ErrAmbiguousFiles is returned when more than one file classifies to
	// the same kind for a business date.
	ErrAmbiguousFiles = errors.New("ambiguous file match")

	// ErrFieldCount is returned when a record's field count does not match
	// the configured column count. It fails the whole batch.
	ErrFieldCount = errors.New("field count mismatch")

	// ErrLoadInProgress is returned when a load of the same kind is already
	// running and the wait for its slot expired.
	ErrLoadInProgress = errors.New("load already in progress")

	// ErrInvalidDate is returned for business dates not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date")
)
