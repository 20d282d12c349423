// Package tarfmt decodes the textual output of the tar tool: progress lines
// emitted by -v operations and the table printed by -tvf.
package tarfmt

import (
	"fmt"
	"strings"
)

// Stream selects which subprocess output carries progress lines.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// Layout selects the column layout of a -tvf table.
type Layout int

const (
	// LayoutCompact is "perm owner/group size date time name".
	LayoutCompact Layout = iota
	// LayoutVerbose is the ls-style "perm f f f size month day year name".
	LayoutVerbose
)

func (l Layout) String() string {
	if l == LayoutVerbose {
		return "verbose"
	}
	return "compact"
}

// Dialect fixes how one tar build formats its output.
type Dialect struct {
	Name       string
	Stream     Stream
	LineEnding string
	Layout     Layout
	// PrefixLen is the number of leading bytes on each progress line
	// before the entry name ("a " / "x " for libarchive).
	PrefixLen int
	// Escaped means names are printed with C-style backslash escapes
	// ("caf\303\251.txt") and must be decoded with Unquote.
	Escaped bool
}

// Decode returns name as stored in the archive, undoing the output quoting
// of the dialect.
func (d Dialect) Decode(name string) string {
	if !d.Escaped {
		return name
	}
	return Unquote(name)
}

// Presets.
var (
	Compact = Dialect{Name: "compact", Stream: Stderr, LineEnding: "\r\n", Layout: LayoutCompact, PrefixLen: 2}
	Verbose = Dialect{Name: "verbose", Stream: Stdout, LineEnding: "\n", Layout: LayoutVerbose}

	// GNU matches GNU tar: bare escaped names on stdout, owner/group table.
	GNU = Dialect{Name: "gnu", Stream: Stdout, LineEnding: "\n", Layout: LayoutCompact, Escaped: true}

	// BSD matches libarchive bsdtar on Unix: prefixed names on stderr,
	// ls-style table.
	BSD = Dialect{Name: "bsd", Stream: Stderr, LineEnding: "\n", Layout: LayoutVerbose, PrefixLen: 2}
)

var presets = map[string]Dialect{
	Compact.Name: Compact,
	Verbose.Name: Verbose,
	GNU.Name:     GNU,
	BSD.Name:     BSD,
}

// ForOS returns the dialect of the tar normally installed on goos.
func ForOS(goos string) Dialect {
	switch goos {
	case "windows":
		return Compact
	case "darwin", "freebsd", "openbsd", "netbsd", "dragonfly":
		return BSD
	default:
		return GNU
	}
}

// ByName resolves a preset name. "auto" and "" resolve to ForOS(goos).
func ByName(name, goos string) (Dialect, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		return ForOS(goos), nil
	}
	d, ok := presets[name]
	if !ok {
		return Dialect{}, fmt.Errorf("unknown dialect %q", name)
	}
	return d, nil
}
