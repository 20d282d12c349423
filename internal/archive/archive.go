// Package archive creates, extracts and inspects tar archives, reporting
// per-entry progress and optionally checking the result.
package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mcdonaldj/tarwrap/internal/adapters/exectar"
	"github.com/mcdonaldj/tarwrap/internal/adapters/osfs"
	"github.com/mcdonaldj/tarwrap/internal/config"
	"github.com/mcdonaldj/tarwrap/internal/logging"
	"github.com/mcdonaldj/tarwrap/internal/manifest"
	"github.com/mcdonaldj/tarwrap/internal/ports"
)

// CreateOptions configures a create operation.
type CreateOptions struct {
	// Root resolves sources and is tar's working directory.
	// Empty means the current directory.
	Root     string
	Progress ports.ProgressFunc
	// Test lists the new archive and checks it holds every walked entry.
	Test bool
}

// ExtractOptions configures an extract operation.
type ExtractOptions struct {
	Progress ports.ProgressFunc
	// Test walks the destination and checks it holds every listed entry.
	Test bool
}

// Service provides archive operations with injected dependencies.
// It keeps no per-call state and is safe for concurrent use.
type Service struct {
	fs       ports.FileSystem
	archiver ports.Archiver
	logger   *log.Logger
}

// NewService creates a new archive service with the given dependencies.
// A nil logger discards output.
func NewService(fs ports.FileSystem, archiver ports.Archiver, logger *log.Logger) *Service {
	return &Service{
		fs:       fs,
		archiver: archiver,
		logger:   logging.Component(logger, "archive"),
	}
}

// NewDefaultService creates an archive service backed by the local disk
// and the tar binary named in cfg.
func NewDefaultService(cfg *config.Config, logger *log.Logger) (*Service, error) {
	dialect, err := cfg.ResolveDialect(runtime.GOOS)
	if err != nil {
		return nil, err
	}
	tar := exectar.New(
		exectar.WithTarPath(cfg.TarPath),
		exectar.WithDialect(dialect),
		exectar.WithLogger(logger),
	)
	return NewService(osfs.New(), tar, logger), nil
}

// Create archives sources into name. Directories among sources are walked
// to count their entries; the count is the total reported with progress.
// With opts.Test the result reports whether the new archive lists every
// walked entry; otherwise it is true on success.
func (s *Service) Create(ctx context.Context, name string, sources []string, opts CreateOptions) (bool, error) {
	if len(sources) == 0 {
		return false, fmt.Errorf("no sources specified for archive")
	}

	root := opts.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return false, fsError(".", err)
		}
		root = wd
	}

	files, err := s.expand(root, sources)
	if err != nil {
		return false, err
	}

	archivePath, err := filepath.Abs(name)
	if err != nil {
		return false, fsError(name, err)
	}

	s.logger.Debug("creating archive", "archive", archivePath, "root", root, "sources", len(sources), "total", len(files))
	if err := s.archiver.Create(ctx, archivePath, root, sources, len(files), opts.Progress); err != nil {
		return false, err
	}
	if !opts.Test {
		return true, nil
	}

	listing, err := s.archiver.List(ctx, archivePath)
	if err != nil {
		return false, fmt.Errorf("testing archive: %w", err)
	}
	return s.covers(archivePath, files, listing), nil
}

// Extract unpacks archivePath into dest. The archive is listed first to
// size the operation. With opts.Test the result reports whether dest holds
// every listed entry; otherwise it is true on success.
func (s *Service) Extract(ctx context.Context, archivePath, dest string, opts ExtractOptions) (bool, error) {
	listing, err := s.archiver.List(ctx, archivePath)
	if err != nil {
		return false, err
	}

	s.logger.Debug("extracting archive", "archive", archivePath, "dest", dest, "total", len(listing))
	if err := s.archiver.Extract(ctx, archivePath, dest, len(listing), opts.Progress); err != nil {
		return false, err
	}
	if !opts.Test {
		return true, nil
	}

	extracted, err := s.fs.Walk(dest, dest)
	if err != nil {
		return false, fmt.Errorf("testing extraction: %w", ensureFS(dest, err))
	}
	// dest itself stands for a "./" member.
	extracted = append(extracted, ".")
	return s.covers(dest, listing, extracted), nil
}

// List returns the entry names of archivePath.
func (s *Service) List(ctx context.Context, archivePath string) ([]string, error) {
	return s.archiver.List(ctx, archivePath)
}

// ListStats returns the verbose listing of archivePath.
func (s *Service) ListStats(ctx context.Context, archivePath string) ([]ports.FileStat, error) {
	return s.archiver.ListStats(ctx, archivePath)
}

// ListSize pairs each listed name with the size from the verbose listing.
// The two listings are produced separately, so they are checked to hold
// the same entries in the same order before being paired.
func (s *Service) ListSize(ctx context.Context, archivePath string) ([]ports.SizeEntry, error) {
	names, err := s.archiver.List(ctx, archivePath)
	if err != nil {
		return nil, err
	}
	stats, err := s.archiver.ListStats(ctx, archivePath)
	if err != nil {
		return nil, err
	}

	if len(names) != len(stats) {
		return nil, fmt.Errorf("%w: %s: %d names, %d stat lines",
			ports.ErrListingMismatch, archivePath, len(names), len(stats))
	}

	sizes := make([]ports.SizeEntry, len(names))
	for i, name := range names {
		if !sameEntry(name, stats[i].Name) {
			return nil, fmt.Errorf("%w: %s: entry %d is %q in the listing but %q in the table",
				ports.ErrListingMismatch, archivePath, i, name, stats[i].Name)
		}
		sizes[i] = ports.SizeEntry{Size: stats[i].Size, Name: name}
	}
	return sizes, nil
}

// expand resolves sources against root into the manifest tar will act on.
// Entries keep each source's own spelling ("." yields ".", "./a.txt", ...)
// because that is what tar records and prints for them.
func (s *Service) expand(root string, sources []string) ([]string, error) {
	var files []string
	for _, src := range sources {
		path := src
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, src)
		}

		info, err := s.fs.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("resolving source %s: %w", src, ensureFS(path, err))
		}

		entry := filepath.ToSlash(src)
		files = append(files, entry)
		if !info.IsDir() {
			continue
		}

		entries, err := s.fs.Walk(path, path)
		if err != nil {
			return nil, fmt.Errorf("walking source %s: %w", src, ensureFS(path, err))
		}
		prefix := strings.TrimSuffix(entry, "/") + "/"
		for _, e := range entries {
			files = append(files, prefix+e)
		}
	}
	return files, nil
}

func (s *Service) covers(target string, expected, observed []string) bool {
	missing := manifest.Missing(expected, observed)
	if len(missing) == 0 {
		return true
	}
	s.logger.Warn("verification failed", "target", target, "missing", len(missing), "first", missing[0])
	return false
}

// sameEntry reports whether a -tvf name describes the -tf entry name. The
// table joins whitespace runs and appends link targets.
func sameEntry(name, statName string) bool {
	name = strings.Join(strings.Fields(name), " ")
	if statName == name {
		return true
	}
	return strings.HasPrefix(statName, name+" -> ") || strings.HasPrefix(statName, name+" link to ")
}

func fsError(path string, err error) error {
	return fmt.Errorf("%w: %s: %w", ports.ErrFilesystem, path, err)
}

func ensureFS(path string, err error) error {
	if errors.Is(err, ports.ErrFilesystem) {
		return err
	}
	return fsError(path, err)
}
