// Package exectar provides an archiver adapter that drives the tar binary
// using exec.Command.
package exectar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mcdonaldj/tarwrap/internal/logging"
	"github.com/mcdonaldj/tarwrap/internal/ports"
	"github.com/mcdonaldj/tarwrap/internal/tarfmt"
)

// maxDiagnostic bounds how much of the progress stream is kept for error
// reports when diagnostics share that stream.
const maxDiagnostic = 8 * 1024

// ExecTar implements ports.Archiver using exec.Command.
type ExecTar struct {
	// tarPath is the path to the tar binary. Defaults to "tar".
	tarPath string
	dialect tarfmt.Dialect
	logger  *log.Logger
}

// Option is a functional option for configuring ExecTar.
type Option func(*ExecTar)

// WithTarPath sets a custom path to the tar binary.
func WithTarPath(path string) Option {
	return func(t *ExecTar) {
		t.tarPath = path
	}
}

// WithDialect sets the output dialect of the tar binary.
func WithDialect(d tarfmt.Dialect) Option {
	return func(t *ExecTar) {
		t.dialect = d
	}
}

// WithLogger sets the logger used for command tracing.
func WithLogger(l *log.Logger) Option {
	return func(t *ExecTar) {
		t.logger = l
	}
}

// New creates a new ExecTar adapter. Without WithDialect the dialect of the
// tar normally shipped with the host OS is assumed.
func New(opts ...Option) *ExecTar {
	t := &ExecTar{
		tarPath: "tar",
		dialect: tarfmt.ForOS(runtime.GOOS),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = logging.Component(t.logger, "exectar")
	return t
}

// Dialect returns the output dialect this adapter parses.
func (t *ExecTar) Dialect() tarfmt.Dialect {
	return t.dialect
}

// Create runs "tar -cvf archivePath sources..." inside root.
func (t *ExecTar) Create(ctx context.Context, archivePath, root string, sources []string, total int, progress ports.ProgressFunc) error {
	if len(sources) == 0 {
		return fmt.Errorf("no sources specified for archive")
	}

	args := append([]string{"-cvf", archivePath}, sources...)
	n, err := t.stream(ctx, root, args, reporter(total, progress))
	if err != nil {
		return fmt.Errorf("tar create %s: %w", archivePath, err)
	}
	t.logger.Debug("archive created", "archive", archivePath, "entries", n, "expected", total)
	return nil
}

// Extract runs "tar -xvf archivePath -C destDir".
func (t *ExecTar) Extract(ctx context.Context, archivePath, destDir string, total int, progress ports.ProgressFunc) error {
	args := []string{"-xvf", archivePath, "-C", destDir}
	n, err := t.stream(ctx, "", args, reporter(total, progress))
	if err != nil {
		return fmt.Errorf("tar extract %s: %w", archivePath, err)
	}
	t.logger.Debug("archive extracted", "archive", archivePath, "dest", destDir, "entries", n, "expected", total)
	return nil
}

// List runs "tar -tf archivePath" and returns one name per line.
func (t *ExecTar) List(ctx context.Context, archivePath string) ([]string, error) {
	out, err := t.output(ctx, "-tf", archivePath)
	if err != nil {
		return nil, fmt.Errorf("tar list %s: %w", archivePath, err)
	}
	return tarfmt.SplitLines(t.dialect, out), nil
}

// ListStats runs "tar -tvf archivePath" and decodes the table.
func (t *ExecTar) ListStats(ctx context.Context, archivePath string) ([]ports.FileStat, error) {
	out, err := t.output(ctx, "-tvf", archivePath)
	if err != nil {
		return nil, fmt.Errorf("tar list %s: %w", archivePath, err)
	}
	stats, err := tarfmt.ParseStats(t.dialect, out)
	if err != nil {
		return nil, fmt.Errorf("tar list %s: %w", archivePath, err)
	}
	if stats == nil {
		stats = []ports.FileStat{}
	}
	return stats, nil
}

// reporter numbers entries as they are reported and forwards them to
// progress, if any.
func reporter(total int, progress ports.ProgressFunc) func(string) {
	current := 0
	return func(name string) {
		current++
		if progress != nil {
			progress(ports.ProgressEvent{Total: total, Current: current, Name: name})
		}
	}
}

// stream runs tar and feeds every entry name printed on the dialect's
// progress stream to onName, in arrival order. It returns only after the
// stream is fully drained, so no trailing entries are lost.
func (t *ExecTar) stream(ctx context.Context, dir string, args []string, onName func(string)) (int, error) {
	cmd := t.command(ctx, args...)
	cmd.Dir = dir

	var other bytes.Buffer
	var pipe io.ReadCloser
	var err error
	if t.dialect.Stream == tarfmt.Stderr {
		cmd.Stdout = &other
		pipe, err = cmd.StderrPipe()
	} else {
		cmd.Stderr = &other
		pipe, err = cmd.StdoutPipe()
	}
	if err != nil {
		return 0, &SpawnError{Tool: t.tarPath, Err: err}
	}

	t.logger.Debug("running", "tar", t.tarPath, "args", args, "dir", dir, "stream", t.dialect.Stream)
	if err := cmd.Start(); err != nil {
		return 0, &SpawnError{Tool: t.tarPath, Err: err}
	}

	parser := tarfmt.NewProgressParser(t.dialect)
	tail := &tailBuffer{max: maxDiagnostic}
	count := 0
	emit := func(names []string) {
		for _, name := range names {
			count++
			onName(name)
		}
	}

	buf := make([]byte, 32*1024)
	var readErr error
	for {
		n, err := pipe.Read(buf)
		if n > 0 {
			_, _ = tail.Write(buf[:n])
			emit(parser.Feed(buf[:n]))
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				readErr = err
			}
			break
		}
	}
	emit(parser.Flush())

	if err := cmd.Wait(); err != nil {
		diag := other.String()
		if t.dialect.Stream == tarfmt.Stderr {
			diag = tail.String()
		}
		return count, t.runError(ctx, args, err, diag)
	}
	if readErr != nil {
		return count, fmt.Errorf("reading tar output: %w", readErr)
	}
	return count, nil
}

// output runs tar to completion and returns its stdout.
func (t *ExecTar) output(ctx context.Context, args ...string) (string, error) {
	cmd := t.command(ctx, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	t.logger.Debug("running", "tar", t.tarPath, "args", args)
	if err := cmd.Start(); err != nil {
		return "", &SpawnError{Tool: t.tarPath, Err: err}
	}
	if err := cmd.Wait(); err != nil {
		return "", t.runError(ctx, args, err, stderr.String())
	}
	return stdout.String(), nil
}

func (t *ExecTar) runError(ctx context.Context, args []string, err error, diag string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{
			Tool:   t.tarPath,
			Args:   args,
			Code:   exitErr.ExitCode(),
			Output: strings.TrimSpace(diag),
			Err:    err,
		}
	}
	return fmt.Errorf("waiting for %s: %w", t.tarPath, err)
}

// command creates an exec.Cmd for the tar binary.
func (t *ExecTar) command(ctx context.Context, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, t.tarPath, args...)
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	b   []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.b = append(t.b, p...)
	if over := len(t.b) - t.max; over > 0 {
		t.b = append(t.b[:0], t.b[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string { return string(t.b) }

// Compile-time check that ExecTar implements ports.Archiver.
var _ ports.Archiver = (*ExecTar)(nil)
