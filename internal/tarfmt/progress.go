package tarfmt

import (
	"bytes"
	"strings"
)

// ParseProgress extracts entry names from a chunk of -v output. Only
// complete lines are meaningful; a trailing partial line is returned as if
// it were complete, so callers reading a live stream should use
// ProgressParser instead.
func ParseProgress(d Dialect, chunk string) []string {
	var names []string
	for _, line := range strings.Split(chunk, "\n") {
		if name, ok := progressName(d, line); ok {
			names = append(names, name)
		}
	}
	return names
}

func progressName(d Dialect, line string) (string, bool) {
	line = strings.TrimSuffix(line, "\r")
	if strings.TrimSpace(line) == "" {
		return "", false
	}
	if d.PrefixLen > 0 {
		// Prefixed dialects share the stream with diagnostics such as
		// "tar: x: Cannot stat"; only "<op> " prefixes mark an entry.
		if len(line) <= d.PrefixLen || line[d.PrefixLen-1] != ' ' {
			return "", false
		}
		line = line[d.PrefixLen:]
	}
	return d.Decode(line), true
}

// ProgressParser turns a stream of arbitrary chunks into entry names,
// holding back an unterminated line until the next chunk or Flush.
type ProgressParser struct {
	dialect Dialect
	pending []byte
}

// NewProgressParser returns a parser for d.
func NewProgressParser(d Dialect) *ProgressParser {
	return &ProgressParser{dialect: d}
}

// Feed consumes chunk and returns the names of every line it completes.
func (p *ProgressParser) Feed(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}
	p.pending = append(p.pending, chunk...)
	end := bytes.LastIndexByte(p.pending, '\n')
	if end < 0 {
		return nil
	}
	complete := string(p.pending[:end])
	p.pending = append(p.pending[:0], p.pending[end+1:]...)
	return ParseProgress(p.dialect, complete)
}

// Flush returns the name on a final unterminated line, if any.
func (p *ProgressParser) Flush() []string {
	if len(p.pending) == 0 {
		return nil
	}
	rest := string(p.pending)
	p.pending = p.pending[:0]
	return ParseProgress(p.dialect, rest)
}
