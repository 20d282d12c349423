package tarfmt

import (
	"fmt"
	"strings"

	"github.com/mcdonaldj/tarwrap/internal/ports"
)

// ParseError reports a -tvf line that does not fit the expected layout.
type ParseError struct {
	Layout Layout
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s stat line %q: %s", e.Layout, e.Line, e.Reason)
}

// Unwrap lets errors.Is match ports.ErrParse.
func (e *ParseError) Unwrap() error { return ports.ErrParse }

// statFields is a decoded -tvf row in one of the two layouts.
type statFields interface {
	record() ports.FileStat
}

type compactFields struct {
	permissions, owner, group, size, date, time, name string
}

func (f compactFields) record() ports.FileStat {
	return ports.FileStat{
		Permissions: f.permissions,
		Owner:       f.owner,
		Group:       f.group,
		Size:        f.size,
		Date:        f.date,
		Time:        f.time,
		Name:        f.name,
	}
}

// verboseFields keeps only what the ls-style layout reports reliably.
type verboseFields struct {
	permissions, size, month, day, year, name string
}

func (f verboseFields) record() ports.FileStat {
	return ports.FileStat{
		Permissions: f.permissions,
		Size:        f.size,
		Date:        f.month + " " + f.day,
		Time:        f.year,
		Name:        f.name,
	}
}

const (
	compactMinFields = 5
	verboseMinFields = 8
)

// ParseStatLine decodes one line of -tvf output.
func ParseStatLine(layout Layout, line string) (ports.FileStat, error) {
	fields, err := decodeStat(layout, line)
	if err != nil {
		return ports.FileStat{}, err
	}
	return fields.record(), nil
}

func decodeStat(layout Layout, line string) (statFields, error) {
	tokens := strings.Fields(line)
	fail := func(reason string) error {
		return &ParseError{Layout: layout, Line: line, Reason: reason}
	}

	switch layout {
	case LayoutCompact:
		if len(tokens) < compactMinFields {
			return nil, fail(fmt.Sprintf("want at least %d fields, got %d", compactMinFields, len(tokens)))
		}
		owner, group, ok := strings.Cut(tokens[1], "/")
		if !ok {
			return nil, fail("owner/group field has no '/'")
		}
		return compactFields{
			permissions: tokens[0],
			owner:       owner,
			group:       group,
			size:        tokens[2],
			date:        tokens[3],
			time:        tokens[4],
			name:        strings.Join(tokens[5:], " "),
		}, nil
	case LayoutVerbose:
		if len(tokens) < verboseMinFields {
			return nil, fail(fmt.Sprintf("want at least %d fields, got %d", verboseMinFields, len(tokens)))
		}
		return verboseFields{
			permissions: tokens[0],
			size:        tokens[4],
			month:       tokens[5],
			day:         tokens[6],
			year:        tokens[7],
			name:        strings.Join(tokens[8:], " "),
		}, nil
	default:
		return nil, fail("unknown layout")
	}
}

// ParseStats decodes every non-blank line of a -tvf table printed by a
// tool of dialect d.
func ParseStats(d Dialect, output string) ([]ports.FileStat, error) {
	var stats []ports.FileStat
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		st, err := ParseStatLine(d.Layout, line)
		if err != nil {
			return nil, err
		}
		st.Name = d.Decode(st.Name)
		stats = append(stats, st)
	}
	return stats, nil
}

// SplitLines splits -tf output on the dialect's line ending, dropping the
// empty element after the final terminator, and decodes each name.
func SplitLines(d Dialect, output string) []string {
	if output == "" {
		return []string{}
	}
	lines := strings.Split(output, d.LineEnding)
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = d.Decode(line)
	}
	return lines
}
