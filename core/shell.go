// Package core ties the terminal, editor, builtins and pipeline
// executor together into an interactive shell session.
package core

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/afero"

	"github.com/reef-sh/reef/core/builtin"
	"github.com/reef-sh/reef/core/complete"
	"github.com/reef-sh/reef/core/config"
	"github.com/reef-sh/reef/core/editor"
	"github.com/reef-sh/reef/core/history"
	"github.com/reef-sh/reef/core/logger"
	"github.com/reef-sh/reef/core/pipeline"
	"github.com/reef-sh/reef/core/term"
)

const unknownName = "?"

var colorError = color.New(color.FgRed)

// Shell runs one interactive session: it reads finalized lines from
// the editor, intercepts builtins and hands everything else to the
// pipeline runner.
type Shell struct {
	Config   *config.Configuration
	Editor   *editor.Editor
	Builtins *builtin.Dispatcher
	Runner   *pipeline.Runner
	Session  *logger.SessionLogger
	Stderr   io.Writer

	// Getenv, Getwd and Hostname feed prompt rendering. They are
	// injected so tests do not depend on the host environment.
	Getenv   func(string) string
	Getwd    func() (string, error)
	Hostname func() (string, error)

	toClose listCloser
}

// NewShell wires a session onto the given streams. stdin must be the
// controlling terminal for interactive editing; a non-terminal stream
// still works and ends the session at EOF.
func NewShell(configuration *config.Configuration, fs afero.Fs, stdin *os.File, stdout, stderr io.Writer) (*Shell, error) {
	var toClose listCloser

	log := logger.NewNopLogger()
	if path := configuration.CommandLog; path != "" {
		fd, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			// A broken log path shouldn't take the shell down.
			fmt.Fprintf(stderr, "reef: can't open command log %s: %v\n", path, err)
		} else {
			toClose = append(toClose, fd)
			log = logger.NewJSONLinesRecorder(fd)
		}
	}

	shell := &Shell{
		Config:   configuration,
		Runner:   pipeline.NewRunner(fs, configuration.SearchPath, stdin, stdout, stderr),
		Session:  log.NewSession(),
		Stderr:   stderr,
		Getenv:   os.Getenv,
		Getwd:    os.Getwd,
		Hostname: os.Hostname,
		toClose:  toClose,
	}

	shell.Builtins = &builtin.Dispatcher{
		Fs:     fs,
		Stdout: stdout,
		Stderr: stderr,
		Getenv: os.Getenv,
		Chdir:  os.Chdir,
		Home:   os.UserHomeDir,
	}

	shell.Editor = editor.New(term.New(stdin), stdout, history.NewStore(), complete.NewEngine(fs), shell.Prompt)
	shell.Editor.Err = stderr
	shell.Editor.PollInterval = configuration.PollInterval()

	return shell, nil
}

// Prompt renders the configured prompt template. \u expands to the
// user, \h to the host and \w to the working directory with the home
// prefix collapsed to ~.
func (s *Shell) Prompt() string {
	prompt := s.Config.Prompt

	user := s.Getenv("USER")
	if user == "" {
		user = unknownName
	}
	prompt = strings.ReplaceAll(prompt, `\u`, user)

	host, err := s.Hostname()
	if err != nil || host == "" {
		host = unknownName
	}
	prompt = strings.ReplaceAll(prompt, `\h`, host)

	wd, err := s.Getwd()
	if err != nil {
		wd = unknownName
	}
	if home := s.Getenv("HOME"); home != "" && strings.HasPrefix(wd, home) {
		wd = "~" + strings.TrimPrefix(wd, home)
	}
	prompt = strings.ReplaceAll(prompt, `\w`, wd)

	return prompt
}

// Run loops until exit, interactive EOF or a terminal failure.
func (s *Shell) Run() error {
	s.Session.SessionStart(s.Getenv("USER"))
	defer s.Session.SessionEnd()

	for {
		line, err := s.Editor.ReadLine()
		switch {
		case errors.Is(err, io.EOF):
			return nil // Input closed, quit.
		case err != nil:
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		s.Session.Line(line)

		if handled, exit := s.Builtins.Dispatch(line); handled {
			s.Session.Builtin(strings.Fields(line)[0])
			if exit {
				return nil
			}
			continue
		}

		if err := s.Runner.Run(line); err != nil {
			fmt.Fprintln(s.Stderr, colorError.Sprint(err))
			s.Session.RunError(line, err)
		}
	}
}

func (s *Shell) Close() error {
	return s.toClose.Close()
}

type listCloser []io.Closer

func (lc listCloser) Close() error {
	var lastErr error
	for _, v := range lc {
		if err := v.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}
