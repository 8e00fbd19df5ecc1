// Package terminal provides small terminal-control helpers for the REPL.
package terminal

import (
	"fmt"
	"os"
)

// Clear erases the screen and moves the cursor to the top-left corner using
// ANSI escape sequences. Terminals without ANSI support print garbage for
// one frame and keep working.
func Clear() {
	fmt.Fprint(os.Stdout, "\033[2J\033[H")
}
