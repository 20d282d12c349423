// Package cli provides the command-line interface with injectable io.Writer for testing.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mcdonaldj/tarwrap/internal/archive"
	"github.com/mcdonaldj/tarwrap/internal/config"
	"github.com/mcdonaldj/tarwrap/internal/logging"
	"github.com/mcdonaldj/tarwrap/internal/ports"
	"github.com/mcdonaldj/tarwrap/internal/tui"
)

// ConfigService provides configuration operations for the CLI.
type ConfigService interface {
	Load() (*config.Config, error)
	Save(cfg *config.Config) error
	ConfigPath() (string, error)
	DefaultConfig() (*config.Config, error)
}

// ArchiveService provides archive operations for the CLI.
type ArchiveService interface {
	Create(ctx context.Context, name string, sources []string, opts archive.CreateOptions) (bool, error)
	Extract(ctx context.Context, archivePath, dest string, opts archive.ExtractOptions) (bool, error)
	List(ctx context.Context, archivePath string) ([]string, error)
	ListStats(ctx context.Context, archivePath string) ([]ports.FileStat, error)
	ListSize(ctx context.Context, archivePath string) ([]ports.SizeEntry, error)
}

// ProgressRunner runs op behind an interactive progress display.
type ProgressRunner func(ctx context.Context, title string, op tui.Operation) (bool, error)

// CLI represents the command-line interface with injectable dependencies.
type CLI struct {
	Out     io.Writer // Standard output
	Err     io.Writer // Standard error
	Version string    // Application version
	Args    []string  // Command arguments (like os.Args)

	// Exit function for testability (defaults to os.Exit)
	Exit func(code int)

	// Ctx is passed to every archive operation (defaults to Background)
	Ctx context.Context

	// Injectable dependencies (nil means use defaults)
	ConfigSvc  ConfigService
	ArchiveSvc ArchiveService
	RunUI      ProgressRunner
	LookPath   func(file string) (string, error)

	// Color functions (can be disabled for testing)
	green  func(a ...interface{}) string
	yellow func(a ...interface{}) string
	cyan   func(a ...interface{}) string
	gray   func(a ...interface{}) string
	red    func(a ...interface{}) string
}

// New creates a new CLI with default settings.
func New(version string) *CLI {
	return &CLI{
		Out:     os.Stdout,
		Err:     os.Stderr,
		Version: version,
		Args:    os.Args,
		Exit:    os.Exit,
		green:   color.New(color.FgGreen, color.Bold).SprintFunc(),
		yellow:  color.New(color.FgYellow).SprintFunc(),
		cyan:    color.New(color.FgCyan).SprintFunc(),
		gray:    color.New(color.FgHiBlack).SprintFunc(),
		red:     color.New(color.FgRed).SprintFunc(),
	}
}

// NewForTesting creates a CLI configured for testing (no colors, captured output).
func NewForTesting(out, errOut io.Writer, args []string) *CLI {
	noColor := func(a ...interface{}) string { return fmt.Sprint(a...) }
	exitCode := 0
	return &CLI{
		Out:     out,
		Err:     errOut,
		Version: "test",
		Args:    args,
		Exit:    func(code int) { exitCode = code; _ = exitCode },
		green:   noColor,
		yellow:  noColor,
		cyan:    noColor,
		gray:    noColor,
		red:     noColor,
	}
}

// defaultConfigService wraps the config package functions.
type defaultConfigService struct{}

func (d *defaultConfigService) Load() (*config.Config, error)          { return config.Load() }
func (d *defaultConfigService) Save(cfg *config.Config) error          { return cfg.Save() }
func (d *defaultConfigService) ConfigPath() (string, error)            { return config.ConfigPath() }
func (d *defaultConfigService) DefaultConfig() (*config.Config, error) { return config.DefaultConfig() }

// Helper methods to get the service or default
func (c *CLI) configSvc() ConfigService {
	if c.ConfigSvc != nil {
		return c.ConfigSvc
	}
	return &defaultConfigService{}
}

func (c *CLI) archiveSvc(cfg *config.Config) (ArchiveService, error) {
	if c.ArchiveSvc != nil {
		return c.ArchiveSvc, nil
	}
	logger, err := logging.New(c.Err, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return archive.NewDefaultService(cfg, logger)
}

func (c *CLI) runUI() ProgressRunner {
	if c.RunUI != nil {
		return c.RunUI
	}
	return func(ctx context.Context, title string, op tui.Operation) (bool, error) {
		return tui.RunProgress(ctx, title, op)
	}
}

func (c *CLI) lookPath(file string) (string, error) {
	if c.LookPath != nil {
		return c.LookPath(file)
	}
	return exec.LookPath(file)
}

func (c *CLI) ctx() context.Context {
	if c.Ctx != nil {
		return c.Ctx
	}
	return context.Background()
}

// Run executes the CLI with the configured arguments.
func (c *CLI) Run() {
	if len(c.Args) < 2 {
		fmt.Fprintln(c.Out, "No command specified. Use 'tarwrap help' for usage.")
		return
	}

	switch c.Args[1] {
	case "create", "c":
		c.RunCreate()
	case "extract", "x":
		c.RunExtract()
	case "list", "ls":
		c.RunList()
	case "stats":
		c.RunStats()
	case "size":
		c.RunSize()
	case "init":
		c.InitConfig()
	case "status":
		c.ShowStatus()
	case "version", "-v", "--version":
		fmt.Fprintf(c.Out, "tarwrap v%s\n", c.Version)
	case "help", "-h", "--help":
		c.PrintUsage()
	default:
		fmt.Fprintf(c.Err, "Unknown command: %s\n", c.Args[1])
		c.PrintUsage()
		c.Exit(1)
	}
}

// PrintUsage prints the help message.
func (c *CLI) PrintUsage() {
	fmt.Fprintln(c.Out, `tarwrap - tar with progress and verification

Usage:
  tarwrap create <archive> <source>... [--root=DIR] [--test] [--ui]
                                           Archive sources (resolved against DIR)
  tarwrap extract <archive> <dest> [--test] [--ui]
                                           Extract an archive into dest
  tarwrap list <archive>                   List entry names
  tarwrap stats <archive>                  List entries with permissions, owner and size
  tarwrap size <archive>                   List entry sizes
  tarwrap status                           Show tar binary and settings
  tarwrap init                             Create default config file
  tarwrap version, -v                      Show version
  tarwrap help, -h                         Show this help

Flags:
  --test   check the result after the operation (also enabled by verify: true)
  --ui     show an interactive progress bar

Config: $XDG_CONFIG_HOME/tarwrap/config.yaml`)
}

// flags holds the options shared by create and extract.
type flags struct {
	root string
	test bool
	ui   bool
}

func parseFlags(args []string) ([]string, flags, error) {
	var positional []string
	var f flags
	for _, arg := range args {
		switch {
		case arg == "--test":
			f.test = true
		case arg == "--ui":
			f.ui = true
		case strings.HasPrefix(arg, "--root="):
			f.root = strings.TrimPrefix(arg, "--root=")
		case strings.HasPrefix(arg, "--"):
			return nil, f, fmt.Errorf("unknown flag: %s", arg)
		default:
			positional = append(positional, arg)
		}
	}
	return positional, f, nil
}

// setup loads the config and builds the archive service.
func (c *CLI) setup() (*config.Config, ArchiveService, bool) {
	cfg, err := c.configSvc().Load()
	if err != nil {
		fmt.Fprintf(c.Err, "Error loading config: %v\n", err)
		c.Exit(1)
		return nil, nil, false
	}
	svc, err := c.archiveSvc(cfg)
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return nil, nil, false
	}
	return cfg, svc, true
}

// RunCreate creates an archive.
func (c *CLI) RunCreate() {
	args, f, err := parseFlags(c.Args[2:])
	if err != nil || len(args) < 2 {
		if err != nil {
			fmt.Fprintf(c.Err, "Error: %v\n", err)
		}
		fmt.Fprintln(c.Out, "Usage: tarwrap create <archive> <source>... [--root=DIR] [--test] [--ui]")
		c.Exit(1)
		return
	}

	cfg, svc, ok := c.setup()
	if !ok {
		return
	}

	name, sources := args[0], args[1:]
	test := f.test || cfg.Verify
	op := func(ctx context.Context, progress ports.ProgressFunc) (bool, error) {
		return svc.Create(ctx, name, sources, archive.CreateOptions{
			Root:     f.root,
			Progress: progress,
			Test:     test,
		})
	}

	if !f.ui {
		fmt.Fprintf(c.Out, "%s Creating %s...\n", c.cyan("=>"), name)
	}
	verified, err := c.runOp("Creating "+name, f.ui, op)
	c.report(verified, err, test, "Created "+name)
}

// RunExtract extracts an archive.
func (c *CLI) RunExtract() {
	args, f, err := parseFlags(c.Args[2:])
	if err == nil && f.root != "" {
		err = fmt.Errorf("--root is only valid for create")
	}
	if err != nil || len(args) != 2 {
		if err != nil {
			fmt.Fprintf(c.Err, "Error: %v\n", err)
		}
		fmt.Fprintln(c.Out, "Usage: tarwrap extract <archive> <dest> [--test] [--ui]")
		c.Exit(1)
		return
	}

	cfg, svc, ok := c.setup()
	if !ok {
		return
	}

	archivePath, dest := args[0], args[1]
	test := f.test || cfg.Verify
	op := func(ctx context.Context, progress ports.ProgressFunc) (bool, error) {
		return svc.Extract(ctx, archivePath, dest, archive.ExtractOptions{
			Progress: progress,
			Test:     test,
		})
	}

	if !f.ui {
		fmt.Fprintf(c.Out, "%s Extracting %s into %s...\n", c.cyan("=>"), archivePath, dest)
	}
	verified, err := c.runOp("Extracting "+archivePath, f.ui, op)
	c.report(verified, err, test, "Extracted "+archivePath)
}

func (c *CLI) runOp(title string, ui bool, op tui.Operation) (bool, error) {
	if ui {
		return c.runUI()(c.ctx(), title, op)
	}
	return op(c.ctx(), c.printProgress)
}

func (c *CLI) printProgress(ev ports.ProgressEvent) {
	fmt.Fprintf(c.Out, "  %s %s\n", c.gray(fmt.Sprintf("[%d/%d]", ev.Current, ev.Total)), ev.Name)
}

func (c *CLI) report(ok bool, err error, test bool, done string) {
	if err != nil {
		fmt.Fprintf(c.Err, "%s %v\n", c.red("x"), err)
		c.Exit(1)
		return
	}
	if !ok {
		fmt.Fprintf(c.Err, "%s Verification failed: entries are missing\n", c.red("x"))
		c.Exit(1)
		return
	}
	if test {
		fmt.Fprintf(c.Out, "%s %s %s\n", c.green("*"), done, c.gray("(verified)"))
		return
	}
	fmt.Fprintf(c.Out, "%s %s\n", c.green("*"), done)
}

// archiveArg returns the single archive argument of a listing command.
func (c *CLI) archiveArg(command string) (string, bool) {
	if len(c.Args) != 3 {
		fmt.Fprintf(c.Out, "Usage: tarwrap %s <archive>\n", command)
		c.Exit(1)
		return "", false
	}
	return c.Args[2], true
}

// RunList prints the entry names of an archive.
func (c *CLI) RunList() {
	archivePath, ok := c.archiveArg("list")
	if !ok {
		return
	}
	_, svc, ok := c.setup()
	if !ok {
		return
	}

	names, err := svc.List(c.ctx(), archivePath)
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}
	for _, name := range names {
		fmt.Fprintln(c.Out, name)
	}
}

// RunStats prints the verbose listing of an archive.
func (c *CLI) RunStats() {
	archivePath, ok := c.archiveArg("stats")
	if !ok {
		return
	}
	_, svc, ok := c.setup()
	if !ok {
		return
	}

	stats, err := svc.ListStats(c.ctx(), archivePath)
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}
	if len(stats) == 0 {
		fmt.Fprintf(c.Out, "%s is empty\n", archivePath)
		return
	}

	fmt.Fprintf(c.Out, "%-10s %-10s %-10s %9s %-12s %-8s %s\n", "MODE", "OWNER", "GROUP", "SIZE", "DATE", "TIME", "NAME")
	for _, s := range stats {
		fmt.Fprintf(c.Out, "%-10s %-10s %-10s %9s %-12s %-8s %s\n",
			s.Permissions,
			orDash(s.Owner),
			orDash(s.Group),
			formatSize(s.Size),
			s.Date,
			s.Time,
			s.Name)
	}
}

// RunSize prints the size of every entry and the archive total.
func (c *CLI) RunSize() {
	archivePath, ok := c.archiveArg("size")
	if !ok {
		return
	}
	_, svc, ok := c.setup()
	if !ok {
		return
	}

	sizes, err := svc.ListSize(c.ctx(), archivePath)
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}

	var total uint64
	for _, s := range sizes {
		if n, err := strconv.ParseUint(s.Size, 10, 64); err == nil {
			total += n
		}
		fmt.Fprintf(c.Out, "%9s  %s\n", formatSize(s.Size), s.Name)
	}
	fmt.Fprintf(c.Out, "\n%s %s in %d entries\n", c.cyan("Total:"), humanize.Bytes(total), len(sizes))
}

// InitConfig creates the default config file.
func (c *CLI) InitConfig() {
	svc := c.configSvc()
	cfg, err := svc.DefaultConfig()
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}
	if err := svc.Save(cfg); err != nil {
		fmt.Fprintf(c.Err, "Error saving config: %v\n", err)
		c.Exit(1)
		return
	}
	path, err := svc.ConfigPath()
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}
	fmt.Fprintf(c.Out, "Created config at %s\n", path)
}

// ShowStatus shows the tar binary and active settings.
func (c *CLI) ShowStatus() {
	cfgSvc := c.configSvc()

	cfg, err := cfgSvc.Load()
	if err != nil {
		fmt.Fprintf(c.Err, "Error loading config: %v\n", err)
		c.Exit(1)
		return
	}

	configPath, err := cfgSvc.ConfigPath()
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}

	dialect, err := cfg.ResolveDialect(runtime.GOOS)
	if err != nil {
		fmt.Fprintf(c.Err, "Error: %v\n", err)
		c.Exit(1)
		return
	}

	fmt.Fprintln(c.Out, "tarwrap status:")
	fmt.Fprintf(c.Out, "  Config:  %s\n", configPath)
	if path, err := c.lookPath(cfg.TarPath); err != nil {
		fmt.Fprintf(c.Out, "  Tar:     %s %s\n", cfg.TarPath, c.red("(not found)"))
	} else {
		fmt.Fprintf(c.Out, "  Tar:     %s\n", c.green(path))
	}
	fmt.Fprintf(c.Out, "  Dialect: %s %s\n", dialect.Name,
		c.gray(fmt.Sprintf("(progress on %s, %s table)", dialect.Stream, dialect.Layout)))
	if cfg.Verify {
		fmt.Fprintf(c.Out, "  Verify:  %s\n", c.green("always"))
	} else {
		fmt.Fprintf(c.Out, "  Verify:  %s\n", c.gray("with --test"))
	}
	fmt.Fprintf(c.Out, "  Log:     %s\n", cfg.LogLevel)
}

// formatSize renders a decimal byte count for humans, passing anything
// else through.
func formatSize(size string) string {
	n, err := strconv.ParseUint(size, 10, 64)
	if err != nil {
		return size
	}
	return humanize.Bytes(n)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
