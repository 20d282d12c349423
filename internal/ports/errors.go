package ports

import "errors"

// Error kinds shared by the adapters. Concrete errors wrap one of these so
// callers can classify failures with errors.Is.
var (
	// ErrSpawn means the archiving tool could not be started.
	ErrSpawn = errors.New("archive tool could not be started")

	// ErrNonZeroExit means the tool ran but reported failure.
	ErrNonZeroExit = errors.New("archive tool exited with failure")

	// ErrParse means tool output did not match the expected dialect.
	ErrParse = errors.New("unrecognized archive tool output")

	// ErrFilesystem means a local path could not be read.
	ErrFilesystem = errors.New("filesystem access failed")

	// ErrListingMismatch means a plain and a verbose listing of the same
	// archive could not be paired entry by entry.
	ErrListingMismatch = errors.New("archive listings do not correspond")
)
