// Package builtin intercepts the reserved command names (cd, exit,
// about) before a line reaches the pipeline executor.
package builtin

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
)

// Dispatcher resolves and runs built-in commands. Its collaborators are
// injected so tests can fake the process-wide working directory and the
// filesystem the about banner reads from.
type Dispatcher struct {
	Fs     afero.Fs
	Stdout io.Writer
	Stderr io.Writer

	Getenv func(string) string
	Chdir  func(string) error
	Home   func() (string, error)
}

// Dispatch runs line if its first token names a built-in. It reports
// whether the line was handled and whether the shell should exit.
func (d *Dispatcher) Dispatch(line string) (handled, exit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, false
	}

	switch fields[0] {
	case "cd":
		d.cd(fields)
		return true, false
	case "exit", "exit;":
		return true, true
	case "about":
		d.about()
		return true, false
	}
	return false, false
}

// IsBuiltin reports whether name is a reserved command, used by the
// completion path to restrict cd to directories.
func IsBuiltin(name string) bool {
	switch name {
	case "cd", "exit", "exit;", "about":
		return true
	}
	return false
}

// cd changes the shell's own working directory; with no argument it
// goes home. Failures are reported and the shell keeps running.
func (d *Dispatcher) cd(args []string) {
	switch len(args) {
	case 1:
		home, err := d.Home()
		if err != nil {
			fmt.Fprintf(d.Stderr, "%s: %v\n", args[0], err)
			return
		}
		args = append(args, home)
		fallthrough
	case 2:
		if err := d.Chdir(args[1]); err != nil {
			fmt.Fprintf(d.Stderr, "%s: %v\n", args[0], err)
		}
	default:
		fmt.Fprintf(d.Stderr, "%s: too many arguments\n", args[0])
	}
}
