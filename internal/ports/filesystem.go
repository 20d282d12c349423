// Package ports defines interfaces (contracts) for external dependencies.
// These enable dependency injection and testability via mock implementations.
package ports

import "os"

// FileSystem abstracts filesystem access for testability.
// Production code uses the OSFileSystem adapter; tests use MockFileSystem.
type FileSystem interface {
	// Stat returns file info for the named file.
	Stat(name string) (os.FileInfo, error)

	// Walk lists every file and directory under dir as a slash-separated
	// path relative to root. dir itself is included unless it equals root.
	// Parents always precede their descendants.
	Walk(dir, root string) ([]string, error)
}
