// Package pipeline turns a submitted command line into a chain of OS
// processes connected by pipes and awaits the final one.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrCommandNotFound is the error resulting when no search directory
// contains an executable with the requested name.
var ErrCommandNotFound = errors.New("command not found")

// stageDelimiter separates pipeline stages. The grammar is literal: a
// pipe must be surrounded by single spaces.
const stageDelimiter = " | "

// Stage is one command within a pipeline.
type Stage struct {
	Name string
	Args []string

	// Path is the resolved executable path, filled in by the runner
	// before any stage is spawned.
	Path string
}

// Parse splits a command line into stages on the literal " | "
// delimiter and each stage on whitespace. Empty segments, including a
// trailing one left by a dangling pipe, are dropped.
func Parse(line string) []Stage {
	var stages []Stage
	for _, segment := range strings.Split(line, stageDelimiter) {
		fields := strings.Fields(segment)
		if len(fields) == 0 {
			continue
		}
		stages = append(stages, Stage{Name: fields[0], Args: fields[1:]})
	}
	return stages
}

// Runner resolves and executes pipelines. The filesystem is only used
// for executable resolution so tests can probe a fake search path; the
// spawned processes always run against the real OS.
type Runner struct {
	Fs         afero.Fs
	SearchPath []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func NewRunner(fs afero.Fs, searchPath []string, stdin io.Reader, stdout, stderr io.Writer) *Runner {
	return &Runner{
		Fs:         fs,
		SearchPath: searchPath,
		Stdin:      stdin,
		Stdout:     stdout,
		Stderr:     stderr,
	}
}

// Resolve maps a command name to an executable path. A name containing
// a path separator is used verbatim; otherwise the search directories
// are probed in order for a regular file of that name.
func (r *Runner) Resolve(name string) (string, error) {
	if strings.Contains(name, "/") {
		return name, nil
	}
	for _, dir := range r.SearchPath {
		candidate := filepath.Join(dir, name)
		info, err := r.Fs.Stat(candidate)
		if err != nil {
			continue
		}
		if info.Mode().IsRegular() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s: %w", name, ErrCommandNotFound)
}

// Run executes line as a pipeline and blocks until the final stage
// exits. Every stage is resolved before the first is spawned: an
// unresolvable name aborts the whole pipeline with no process started.
// A nonzero exit status of the final stage is not an error.
func (r *Runner) Run(line string) error {
	stages := Parse(line)
	if len(stages) == 0 {
		return nil
	}

	for i := range stages {
		path, err := r.Resolve(stages[i].Name)
		if err != nil {
			return err
		}
		stages[i].Path = path
	}

	var started []*exec.Cmd
	var prevRead *os.File

	for i := range stages {
		cmd := exec.Command(stages[i].Path, stages[i].Args...)
		cmd.Stderr = r.Stderr

		if i == 0 {
			cmd.Stdin = r.Stdin
		} else {
			cmd.Stdin = prevRead
		}

		var nextRead, writeEnd *os.File
		if i < len(stages)-1 {
			pr, pw, err := os.Pipe()
			if err != nil {
				closeFile(prevRead)
				r.reap(started)
				return err
			}
			nextRead, writeEnd = pr, pw
			cmd.Stdout = pw
		} else {
			cmd.Stdout = r.Stdout
		}

		err := cmd.Start()

		// The child holds its own copies now; release ours so
		// consumers can observe end-of-stream.
		closeFile(prevRead)
		closeFile(writeEnd)

		if err != nil {
			closeFile(nextRead)
			r.reap(started)
			return fmt.Errorf("%s: %w", stages[i].Name, err)
		}

		started = append(started, cmd)
		prevRead = nextRead
	}

	// Await only the final stage; earlier ones terminate when their
	// output pipes drain and are reaped off the critical path.
	for _, cmd := range started[:len(started)-1] {
		cmd := cmd
		go func() { _ = cmd.Wait() }()
	}

	err := started[len(started)-1].Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// The command ran; its exit status is its own business.
		return nil
	}
	return err
}

// reap awaits stages that were already spawned when a later spawn
// failed, so no process is orphaned. Their pipe ends are closed by the
// time this runs, so they see end-of-stream and exit.
func (r *Runner) reap(started []*exec.Cmd) {
	for _, cmd := range started {
		_ = cmd.Wait()
	}
}

func closeFile(f *os.File) {
	if f != nil {
		f.Close()
	}
}
