package exectar

import (
	"fmt"
	"strings"

	"github.com/mcdonaldj/tarwrap/internal/ports"
)

// SpawnError means the tar binary could not be started.
type SpawnError struct {
	Tool string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("starting %s: %v", e.Tool, e.Err)
}

func (e *SpawnError) Unwrap() []error { return []error{ports.ErrSpawn, e.Err} }

// ExitError means tar ran and exited non-zero. Output holds what tar
// printed on its diagnostic stream.
type ExitError struct {
	Tool   string
	Args   []string
	Code   int
	Output string
	Err    error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s %s exited with code %d", e.Tool, strings.Join(e.Args, " "), e.Code)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

func (e *ExitError) Unwrap() []error { return []error{ports.ErrNonZeroExit, e.Err} }
