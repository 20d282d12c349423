package ports

import "context"

// Archiver abstracts the external archiving tool for testability.
// Production code uses the ExecTar adapter; tests use MockArchiver.
type Archiver interface {
	// Create writes archivePath from sources, resolved relative to root.
	// total is reported unchanged in every progress event.
	Create(ctx context.Context, archivePath, root string, sources []string, total int, progress ProgressFunc) error

	// Extract unpacks archivePath into destDir.
	Extract(ctx context.Context, archivePath, destDir string, total int, progress ProgressFunc) error

	// List returns the entry names of the archive in tool order.
	List(ctx context.Context, archivePath string) ([]string, error)

	// ListStats returns one record per line of the tool's verbose table.
	ListStats(ctx context.Context, archivePath string) ([]FileStat, error)
}

// ProgressEvent reports one processed archive entry.
type ProgressEvent struct {
	Total   int
	Current int
	Name    string
}

// ProgressFunc receives progress events. A nil ProgressFunc disables reporting.
type ProgressFunc func(ProgressEvent)

// FileStat is one row of the tool's verbose listing. Fields are passed
// through as reported.
type FileStat struct {
	Permissions string `json:"permissions"`
	Owner       string `json:"owner"`
	Group       string `json:"group"`
	Size        string `json:"size"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Name        string `json:"name"`
}

// SizeEntry pairs a listed entry name with its reported size.
type SizeEntry struct {
	Size string `json:"size"`
	Name string `json:"name"`
}
