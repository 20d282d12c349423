package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/mcdonaldj/tarwrap/internal/archive"
	"github.com/mcdonaldj/tarwrap/internal/config"
	"github.com/mcdonaldj/tarwrap/internal/ports"
	"github.com/mcdonaldj/tarwrap/internal/tui"
)

// ============================================================================
// Mock implementations for testing
// ============================================================================

// mockConfigService implements ConfigService for testing.
type mockConfigService struct {
	config        *config.Config
	loadErr       error
	saveErr       error
	saved         *config.Config
	configPath    string
	configPathErr error
	defaultCfgErr error
}

func newMockConfigService() *mockConfigService {
	return &mockConfigService{
		config: &config.Config{
			TarPath:  "tar",
			Dialect:  "gnu",
			LogLevel: "warn",
		},
		configPath: "/test/.config/tarwrap/config.yaml",
	}
}

func (m *mockConfigService) Load() (*config.Config, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.config, nil
}

func (m *mockConfigService) Save(cfg *config.Config) error {
	m.saved = cfg
	return m.saveErr
}

func (m *mockConfigService) ConfigPath() (string, error) {
	if m.configPathErr != nil {
		return "", m.configPathErr
	}
	return m.configPath, nil
}

func (m *mockConfigService) DefaultConfig() (*config.Config, error) {
	if m.defaultCfgErr != nil {
		return nil, m.defaultCfgErr
	}
	return config.DefaultConfig()
}

// mockArchiveService implements ArchiveService for testing.
type mockArchiveService struct {
	createName    string
	createSources []string
	createOpts    archive.CreateOptions
	extractOpts   archive.ExtractOptions
	extractDest   string

	events []ports.ProgressEvent
	ok     bool
	err    error

	names []string
	stats []ports.FileStat
	sizes []ports.SizeEntry
}

func newMockArchiveService() *mockArchiveService {
	return &mockArchiveService{ok: true}
}

func (m *mockArchiveService) emit(progress ports.ProgressFunc) {
	if progress == nil {
		return
	}
	for _, ev := range m.events {
		progress(ev)
	}
}

func (m *mockArchiveService) Create(ctx context.Context, name string, sources []string, opts archive.CreateOptions) (bool, error) {
	m.createName = name
	m.createSources = sources
	m.createOpts = opts
	m.emit(opts.Progress)
	return m.ok, m.err
}

func (m *mockArchiveService) Extract(ctx context.Context, archivePath, dest string, opts archive.ExtractOptions) (bool, error) {
	m.extractDest = dest
	m.extractOpts = opts
	m.emit(opts.Progress)
	return m.ok, m.err
}

func (m *mockArchiveService) List(ctx context.Context, archivePath string) ([]string, error) {
	return m.names, m.err
}

func (m *mockArchiveService) ListStats(ctx context.Context, archivePath string) ([]ports.FileStat, error) {
	return m.stats, m.err
}

func (m *mockArchiveService) ListSize(ctx context.Context, archivePath string) ([]ports.SizeEntry, error) {
	return m.sizes, m.err
}

// ============================================================================
// Test helper
// ============================================================================

// testCLI creates a CLI for testing with mocks and exit tracking.
type testCLI struct {
	*CLI
	out        *bytes.Buffer
	errOut     *bytes.Buffer
	exitCode   int
	exitCalled bool
	cfgSvc     *mockConfigService
	archiveSvc *mockArchiveService
}

func newTestCLI(args []string) *testCLI {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	tc := &testCLI{
		out:        out,
		errOut:     errOut,
		cfgSvc:     newMockConfigService(),
		archiveSvc: newMockArchiveService(),
	}

	noColor := func(a ...interface{}) string { return strings.Trim(strings.Join(toStrings(a), " "), " ") }

	tc.CLI = &CLI{
		Out:     out,
		Err:     errOut,
		Version: "test",
		Args:    args,
		Exit: func(code int) {
			tc.exitCode = code
			tc.exitCalled = true
		},
		ConfigSvc:  tc.cfgSvc,
		ArchiveSvc: tc.archiveSvc,
		LookPath:   func(file string) (string, error) { return "/usr/bin/" + file, nil },
		green:      noColor,
		yellow:     noColor,
		cyan:       noColor,
		gray:       noColor,
		red:        noColor,
	}

	return tc
}

func toStrings(a []interface{}) []string {
	result := make([]string, len(a))
	for i, v := range a {
		if s, ok := v.(string); ok {
			result[i] = s
		} else {
			result[i] = ""
		}
	}
	return result
}

// ============================================================================
// Tests
// ============================================================================

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	var errOut bytes.Buffer

	c := NewForTesting(&out, &errOut, []string{"tarwrap", "version"})
	c.Version = "1.2.3"
	c.Run()

	output := out.String()
	if !strings.Contains(output, "tarwrap v1.2.3") {
		t.Errorf("version output = %q, expected to contain 'tarwrap v1.2.3'", output)
	}
}

func TestVersionFlags(t *testing.T) {
	for _, arg := range []string{"version", "-v", "--version"} {
		t.Run(arg, func(t *testing.T) {
			tc := newTestCLI([]string{"tarwrap", arg})
			tc.Version = "2.0.0"
			tc.Run()

			if !strings.Contains(tc.out.String(), "tarwrap v2.0.0") {
				t.Errorf("output = %q", tc.out.String())
			}
		})
	}
}

func TestHelpFlags(t *testing.T) {
	for _, arg := range []string{"help", "-h", "--help"} {
		t.Run(arg, func(t *testing.T) {
			tc := newTestCLI([]string{"tarwrap", arg})
			tc.Run()

			output := tc.out.String()
			for _, want := range []string{"tarwrap create", "tarwrap extract", "tarwrap size", "--test", "--ui"} {
				if !strings.Contains(output, want) {
					t.Errorf("help should mention %q", want)
				}
			}
			if tc.exitCalled {
				t.Error("help should not exit")
			}
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	tc := newTestCLI([]string{"tarwrap", "frobnicate"})
	tc.Run()

	if !tc.exitCalled || tc.exitCode != 1 {
		t.Errorf("exit = %v/%d, expected exit 1", tc.exitCalled, tc.exitCode)
	}
	if !strings.Contains(tc.errOut.String(), "Unknown command: frobnicate") {
		t.Errorf("stderr = %q", tc.errOut.String())
	}
}

func TestNoCommand(t *testing.T) {
	tc := newTestCLI([]string{"tarwrap"})
	tc.Run()

	if !strings.Contains(tc.out.String(), "No command specified") {
		t.Errorf("output = %q", tc.out.String())
	}
	if tc.exitCalled {
		t.Error("no command should not exit")
	}
}

func TestParseFlags(t *testing.T) {
	args, f, err := parseFlags([]string{"out.tar", "--test", "a", "--root=/src", "b", "--ui"})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}
	if strings.Join(args, ",") != "out.tar,a,b" {
		t.Errorf("args = %v", args)
	}
	if !f.test || !f.ui || f.root != "/src" {
		t.Errorf("flags = %+v", f)
	}

	if _, _, err := parseFlags([]string{"--wipe"}); err == nil {
		t.Error("unknown flags should be rejected")
	}
}

func TestCreateSuccess(t *testing.T) {
	tc := newTestCLI([]string{"tarwrap", "create", "out.tar", "a.txt", "sub", "--root=/src"})
	tc.archiveSvc.events = []ports.ProgressEvent{
		{Total: 2, Current: 1, Name: "a.txt"},
		{Total: 2, Current: 2, Name: "sub/"},
	}
	tc.Run()

	if tc.exitCalled {
		t.Fatalf("unexpected exit, stderr = %q", tc.errOut.String())
	}
	svc := tc.archiveSvc
	if svc.createName != "out.tar" || strings.Join(svc.createSources, ",") != "a.txt,sub" {
		t.Errorf("Create(%q, %v)", svc.createName, svc.createSources)
	}
	if svc.createOpts.Root != "/src" {
		t.Errorf("Root = %q, expected /src", svc.createOpts.Root)
	}
	if svc.createOpts.Test {
		t.Error("Test should be off without --test or verify")
	}

	output := tc.out.String()
	if !strings.Contains(output, "[1/2] a.txt") || !strings.Contains(output, "[2/2] sub/") {
		t.Errorf("progress lines missing:\n%s", output)
	}
	if !strings.Contains(output, "Created out.tar") {
		t.Errorf("output = %q", output)
	}
	if strings.Contains(output, "verified") {
		t.Error("unverified create should not claim verification")
	}
}

func TestCreateVerify(t *testing.T) {
	t.Run("flag", func(t *testing.T) {
		tc := newTestCLI([]string{"tarwrap", "create", "out.tar", "a.txt", "--test"})
		tc.Run()

		if !tc.archiveSvc.createOpts.Test {
			t.Error("--test should enable verification")
		}
		if !strings.Contains(tc.out.String(), "(verified)") {
			t.Errorf("output = %q", tc.out.String())
		}
	})

	t.Run("config", func(t *testing.T) {
		tc := newTestCLI([]string{"tarwrap", "create", "out.tar", "a.txt"})
		tc.cfgSvc.config.Verify = true
		tc.Run()

		if !tc.archiveSvc.createOpts.Test {
			t.Error("verify: true should enable verification")
		}
	})

	t.Run("failure", func(t *testing.T) {
		tc := newTestCLI([]string{"tarwrap", "create", "out.tar", "a.txt", "--test"})
		tc.archiveSvc.ok = false
		tc.Run()

		if !tc.exitCalled || tc.exitCode != 1 {
			t.Error("failed verification should exit 1")
		}
		if !strings.Contains(tc.errOut.String(), "Verification failed") {
			t.Errorf("stderr = %q", tc.errOut.String())
		}
	})
}

func TestCreateErrors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		setup func(tc *testCLI)
		want  string
	}{
		{"missing sources", []string{"tarwrap", "create", "out.tar"}, nil, "Usage: tarwrap create"},
		{"unknown flag", []string{"tarwrap", "create", "out.tar", "a", "--wipe"}, nil, "unknown flag"},
		{"config load", []string{"tarwrap", "create", "out.tar", "a"}, func(tc *testCLI) {
			tc.cfgSvc.loadErr = errors.New("bad yaml")
		}, "Error loading config"},
		{"operation", []string{"tarwrap", "create", "out.tar", "a"}, func(tc *testCLI) {
			tc.archiveSvc.err = ports.ErrNonZeroExit
		}, "archive tool exited with failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := newTestCLI(tt.args)
			if tt.setup != nil {
				tt.setup(tc)
			}
			tc.Run()

			if !tc.exitCalled || tc.exitCode != 1 {
				t.Errorf("exit = %v/%d, expected exit 1", tc.exitCalled, tc.exitCode)
			}
			combined := tc.out.String() + tc.errOut.String()
			if !strings.Contains(combined, tt.want) {
				t.Errorf("output should contain %q, got:\n%s", tt.want, combined)
			}
		})
	}
}

func TestCreateWithUI(t *testing.T) {
	tc := newTestCLI([]string{"tarwrap", "create", "out.tar", "a.txt", "--ui"})
	tc.archiveSvc.events = []ports.ProgressEvent{{Total: 1, Current: 1, Name: "a.txt"}}

	var title string
	var seen []ports.ProgressEvent
	tc.RunUI = func(ctx context.Context, name string, op tui.Operation) (bool, error) {
		title = name
		return op(ctx, func(ev ports.ProgressEvent) { seen = append(seen, ev) })
	}
	tc.Run()

	if title != "Creating out.tar" {
		t.Errorf("title = %q", title)
	}
	if len(seen) != 1 {
		t.Errorf("UI saw %d events, expected 1", len(seen))
	}
	if strings.Contains(tc.out.String(), "[1/1]") {
		t.Error("progress lines should not be printed in UI mode")
	}
}

func TestExtract(t *testing.T) {
	tc := newTestCLI([]string{"tarwrap", "extract", "in.tar", "/dest", "--test"})
	tc.archiveSvc.events = []ports.ProgressEvent{{Total: 1, Current: 1, Name: "a.txt"}}
	tc.Run()

	if tc.exitCalled {
		t.Fatalf("unexpected exit, stderr = %q", tc.errOut.String())
	}
	if tc.archiveSvc.extractDest != "/dest" || !tc.archiveSvc.extractOpts.Test {
		t.Errorf("Extract dest = %q, opts = %+v", tc.archiveSvc.extractDest, tc.archiveSvc.extractOpts)
	}
	if !strings.Contains(tc.out.String(), "Extracted in.tar (verified)") {
		t.Errorf("output = %q", tc.out.String())
	}
}

func TestExtractUsage(t *testing.T) {
	for _, args := range [][]string{
		{"tarwrap", "extract", "in.tar"},
		{"tarwrap", "extract", "in.tar", "/dest", "--root=/x"},
	} {
		tc := newTestCLI(args)
		tc.Run()
		if !tc.exitCalled {
			t.Errorf("%v should exit", args)
		}
	}
}

func TestList(t *testing.T) {
	tc := newTestCLI([]string{"tarwrap", "list", "in.tar"})
	tc.archiveSvc.names = []string{"a.txt", "sub/", "sub/b.txt"}
	tc.Run()

	if tc.out.String() != "a.txt\nsub/\nsub/b.txt\n" {
		t.Errorf("output = %q", tc.out.String())
	}
}

func TestListingUsage(t *testing.T) {
	for _, cmd := range []string{"list", "stats", "size"} {
		t.Run(cmd, func(t *testing.T) {
			tc := newTestCLI([]string{"tarwrap", cmd})
			tc.Run()

			if !tc.exitCalled {
				t.Error("missing archive should exit")
			}
			if !strings.Contains(tc.out.String(), "Usage: tarwrap "+cmd+" <archive>") {
				t.Errorf("output = %q", tc.out.String())
			}
		})
	}
}

func TestListingError(t *testing.T) {
	for _, cmd := range []string{"list", "stats", "size"} {
		t.Run(cmd, func(t *testing.T) {
			tc := newTestCLI([]string{"tarwrap", cmd, "in.tar"})
			tc.archiveSvc.err = ports.ErrSpawn
			tc.Run()

			if !tc.exitCalled || tc.exitCode != 1 {
				t.Error("listing errors should exit 1")
			}
			if !strings.Contains(tc.errOut.String(), "archive tool could not be started") {
				t.Errorf("stderr = %q", tc.errOut.String())
			}
		})
	}
}

func TestStats(t *testing.T) {
	tc := newTestCLI([]string{"tarwrap", "stats", "in.tar"})
	tc.archiveSvc.stats = []ports.FileStat{
		{Permissions: "-rw-r--r--", Owner: "alice", Group: "staff", Size: "1500", Date: "2024-01-02", Time: "10:00", Name: "a.txt"},
		{Permissions: "drwxr-xr-x", Size: "0", Date: "Jan 2", Time: "2024", Name: "sub/"},
	}
	tc.Run()

	output := tc.out.String()
	for _, want := range []string{"MODE", "alice", "staff", "1.5 kB", "a.txt", "Jan 2", "sub/"} {
		if !strings.Contains(output, want) {
			t.Errorf("output should contain %q:\n%s", want, output)
		}
	}
}

func TestStatsEmpty(t *testing.T) {
	tc := newTestCLI([]string{"tarwrap", "stats", "in.tar"})
	tc.archiveSvc.stats = []ports.FileStat{}
	tc.Run()

	if !strings.Contains(tc.out.String(), "in.tar is empty") {
		t.Errorf("output = %q", tc.out.String())
	}
}

func TestSize(t *testing.T) {
	tc := newTestCLI([]string{"tarwrap", "size", "in.tar"})
	tc.archiveSvc.sizes = []ports.SizeEntry{
		{Size: "2000", Name: "a.txt"},
		{Size: "1000", Name: "b.txt"},
	}
	tc.Run()

	output := tc.out.String()
	if !strings.Contains(output, "2.0 kB  a.txt") {
		t.Errorf("output = %q", output)
	}
	if !strings.Contains(output, "Total: 3.0 kB in 2 entries") {
		t.Errorf("output = %q", output)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0", "0 B"},
		{"5", "5 B"},
		{"1500", "1.5 kB"},
		{"n/a", "n/a"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.in); got != tt.want {
			t.Errorf("formatSize(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestInitConfig(t *testing.T) {
	tc := newTestCLI([]string{"tarwrap", "init"})
	tc.Run()

	if tc.cfgSvc.saved == nil || tc.cfgSvc.saved.TarPath != "tar" {
		t.Errorf("saved = %+v, expected defaults", tc.cfgSvc.saved)
	}
	if !strings.Contains(tc.out.String(), "Created config at /test/.config/tarwrap/config.yaml") {
		t.Errorf("output = %q", tc.out.String())
	}
}

func TestInitConfigSaveError(t *testing.T) {
	tc := newTestCLI([]string{"tarwrap", "init"})
	tc.cfgSvc.saveErr = os.ErrPermission
	tc.Run()

	if !tc.exitCalled {
		t.Error("save error should exit")
	}
	if !strings.Contains(tc.errOut.String(), "Error saving config") {
		t.Errorf("stderr = %q", tc.errOut.String())
	}
}

func TestShowStatus(t *testing.T) {
	tc := newTestCLI([]string{"tarwrap", "status"})
	tc.Run()

	output := tc.out.String()
	for _, want := range []string{"/test/.config/tarwrap/config.yaml", "/usr/bin/tar", "gnu", "stdout", "with --test", "warn"} {
		if !strings.Contains(output, want) {
			t.Errorf("status should contain %q:\n%s", want, output)
		}
	}
}

func TestShowStatusTarMissing(t *testing.T) {
	tc := newTestCLI([]string{"tarwrap", "status"})
	tc.LookPath = func(string) (string, error) { return "", errors.New("not found") }
	tc.cfgSvc.config.Verify = true
	tc.Run()

	output := tc.out.String()
	if !strings.Contains(output, "(not found)") {
		t.Errorf("status should flag a missing tar:\n%s", output)
	}
	if !strings.Contains(output, "always") {
		t.Errorf("status should show verify always:\n%s", output)
	}
}

func TestShowStatusBadDialect(t *testing.T) {
	tc := newTestCLI([]string{"tarwrap", "status"})
	tc.cfgSvc.config.Dialect = "sun"
	tc.Run()

	if !tc.exitCalled {
		t.Error("unknown dialect should exit")
	}
}

func TestCLINew(t *testing.T) {
	c := New("1.0.0")
	if c.Version != "1.0.0" {
		t.Errorf("Version = %q", c.Version)
	}
	if c.Out != os.Stdout || c.Err != os.Stderr {
		t.Error("New should write to stdout and stderr")
	}
	if c.ctx() == nil {
		t.Error("ctx should default to Background")
	}
	if _, ok := c.configSvc().(*defaultConfigService); !ok {
		t.Error("configSvc should default to the config package")
	}
}
