package mocks

import (
	"context"
	"sync"

	"github.com/mcdonaldj/tarwrap/internal/ports"
)

// MockArchiver implements ports.Archiver for testing.
type MockArchiver struct {
	mu sync.Mutex

	// CreateCalls records calls to Create
	CreateCalls []CreateCall
	// ExtractCalls records calls to Extract
	ExtractCalls []ExtractCall
	// ListCalls records archive paths passed to List
	ListCalls []string

	// ListResults maps archive paths to entry names
	ListResults map[string][]string
	// StatResults maps archive paths to verbose listings
	StatResults map[string][]ports.FileStat
	// ProgressNames are reported, in order, by Create and Extract
	ProgressNames []string
	// Errors maps method names to errors
	Errors map[string]error
	// OnCreate, if set, runs after a successful Create (e.g. to register
	// the new archive in ListResults)
	OnCreate func(call CreateCall)
}

// CreateCall records parameters of a Create call.
type CreateCall struct {
	ArchivePath string
	Root        string
	Sources     []string
	Total       int
}

// ExtractCall records parameters of an Extract call.
type ExtractCall struct {
	ArchivePath string
	DestDir     string
	Total       int
}

// NewMockArchiver creates a new mock archiver.
func NewMockArchiver() *MockArchiver {
	return &MockArchiver{
		ListResults: make(map[string][]string),
		StatResults: make(map[string][]ports.FileStat),
		Errors:      make(map[string]error),
	}
}

// Create records the call and reports ProgressNames.
func (m *MockArchiver) Create(ctx context.Context, archivePath, root string, sources []string, total int, progress ports.ProgressFunc) error {
	call := CreateCall{
		ArchivePath: archivePath,
		Root:        root,
		Sources:     append([]string(nil), sources...),
		Total:       total,
	}
	m.mu.Lock()
	m.CreateCalls = append(m.CreateCalls, call)
	m.mu.Unlock()

	m.report(total, progress)
	if err, ok := m.Errors["Create"]; ok {
		return err
	}
	if m.OnCreate != nil {
		m.OnCreate(call)
	}
	return nil
}

// Extract records the call and reports ProgressNames.
func (m *MockArchiver) Extract(ctx context.Context, archivePath, destDir string, total int, progress ports.ProgressFunc) error {
	m.mu.Lock()
	m.ExtractCalls = append(m.ExtractCalls, ExtractCall{
		ArchivePath: archivePath,
		DestDir:     destDir,
		Total:       total,
	})
	m.mu.Unlock()

	m.report(total, progress)
	if err, ok := m.Errors["Extract"]; ok {
		return err
	}
	return nil
}

// List returns ListResults[archivePath].
func (m *MockArchiver) List(ctx context.Context, archivePath string) ([]string, error) {
	m.mu.Lock()
	m.ListCalls = append(m.ListCalls, archivePath)
	m.mu.Unlock()

	if err, ok := m.Errors["List"]; ok {
		return nil, err
	}
	if result, ok := m.ListResults[archivePath]; ok {
		return result, nil
	}
	return []string{}, nil
}

// ListStats returns StatResults[archivePath].
func (m *MockArchiver) ListStats(ctx context.Context, archivePath string) ([]ports.FileStat, error) {
	if err, ok := m.Errors["ListStats"]; ok {
		return nil, err
	}
	if result, ok := m.StatResults[archivePath]; ok {
		return result, nil
	}
	return []ports.FileStat{}, nil
}

func (m *MockArchiver) report(total int, progress ports.ProgressFunc) {
	if progress == nil {
		return
	}
	for i, name := range m.ProgressNames {
		progress(ports.ProgressEvent{Total: total, Current: i + 1, Name: name})
	}
}

// Compile-time check that MockArchiver implements ports.Archiver.
var _ ports.Archiver = (*MockArchiver)(nil)
