package console

import (
	"os"

	"github.com/moby/term"
)

// IsTerminal returns true if stderr is a terminal, i.e. colored log lines will
// be seen by a person rather than captured.
func IsTerminal() bool {
	return term.IsTerminal(os.Stderr.Fd())
}
