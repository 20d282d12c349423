// Package manifest compares the set of paths an archive operation was
// expected to touch against what was actually observed afterwards.
package manifest

import "strings"

// Normalize converts path separators to '/', strips trailing slashes and
// drops the leading "/", "./" and "../" components tar removes from member
// names, so "sub\\dir\\", "./sub/dir/" and "sub/dir" all become "sub/dir".
// A path that reduces to nothing is the root entry ".".
func Normalize(path string) string {
	path = strings.TrimRight(strings.ReplaceAll(path, `\`, "/"), "/")
	for {
		trimmed := strings.TrimPrefix(path, "/")
		trimmed = strings.TrimPrefix(trimmed, "./")
		trimmed = strings.TrimPrefix(trimmed, "../")
		if trimmed == path {
			break
		}
		path = trimmed
	}
	if path == "" || path == ".." {
		return "."
	}
	return path
}

// Missing returns the normalized expected entries absent from observed,
// in expected order.
func Missing(expected, observed []string) []string {
	seen := make(map[string]struct{}, len(observed))
	for _, o := range observed {
		seen[Normalize(o)] = struct{}{}
	}

	var missing []string
	for _, e := range expected {
		n := Normalize(e)
		if _, ok := seen[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}

// Covers reports whether every expected entry appears in observed.
// Entries present only in observed do not fail the check.
func Covers(expected, observed []string) bool {
	return len(Missing(expected, observed)) == 0
}
