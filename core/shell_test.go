package core

import (
	"bytes"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reef-sh/reef/core/builtin"
	"github.com/reef-sh/reef/core/complete"
	"github.com/reef-sh/reef/core/config"
	"github.com/reef-sh/reef/core/editor"
	"github.com/reef-sh/reef/core/history"
	"github.com/reef-sh/reef/core/logger"
	"github.com/reef-sh/reef/core/pipeline"
	"github.com/reef-sh/reef/core/term"
)

// scriptedTerm replays a fixed key sequence, then reports EOF.
type scriptedTerm struct {
	keys []term.Key
	next int
}

func (f *scriptedTerm) MakeRaw() error { return nil }
func (f *scriptedTerm) Restore() error { return nil }
func (f *scriptedTerm) Width() int     { return 80 }

func (f *scriptedTerm) Poll(time.Duration) (term.Key, bool, error) {
	if f.next >= len(f.keys) {
		return term.Key{}, false, io.EOF
	}
	k := f.keys[f.next]
	f.next++
	return k, true, nil
}

func typed(lines ...string) []term.Key {
	var keys []term.Key
	for _, line := range lines {
		for _, r := range line {
			keys = append(keys, term.Key{Kind: term.KindRune, Rune: r})
		}
		keys = append(keys, term.Key{Kind: term.KindEnter})
	}
	return keys
}

func newTestShell(keys []term.Key) (*Shell, *bytes.Buffer, *bytes.Buffer) {
	fs := afero.NewMemMapFs()
	configuration := config.Default()

	var stdout, stderr bytes.Buffer
	log := logger.NewJSONLinesRecorder(&stdout) // replaced per-test when inspected

	shell := &Shell{
		Config:   configuration,
		Runner:   pipeline.NewRunner(fs, configuration.SearchPath, nil, &stdout, &stderr),
		Session:  log.NewSession(),
		Stderr:   &stderr,
		Getenv:   func(string) string { return "" },
		Getwd:    func() (string, error) { return "/home/tester/src", nil },
		Hostname: func() (string, error) { return "reefbox", nil },
	}
	shell.Builtins = &builtin.Dispatcher{
		Fs:     fs,
		Stdout: &stdout,
		Stderr: &stderr,
		Getenv: func(string) string { return "" },
		Chdir:  func(string) error { return nil },
		Home:   func() (string, error) { return "/home/tester", nil },
	}
	shell.Editor = editor.New(&scriptedTerm{keys: keys}, &stdout, history.NewStore(), complete.NewEngine(fs), shell.Prompt)

	return shell, &stdout, &stderr
}

func TestPromptRendersTemplate(t *testing.T) {
	shell, _, _ := newTestShell(nil)
	shell.Config.Prompt = `\u@\h:\w> `
	shell.Getenv = func(key string) string {
		switch key {
		case "USER":
			return "alice"
		case "HOME":
			return "/home/tester"
		}
		return ""
	}

	assert.Equal(t, "alice@reefbox:~/src> ", shell.Prompt())
}

func TestPromptFallsBackWhenUnknown(t *testing.T) {
	shell, _, _ := newTestShell(nil)
	shell.Config.Prompt = `\u@\h:\w> `
	shell.Hostname = func() (string, error) { return "", errors.New("no hostname") }
	shell.Getwd = func() (string, error) { return "", errors.New("no cwd") }

	assert.Equal(t, "?@?:?> ", shell.Prompt())
}

func TestRunExitEndsSession(t *testing.T) {
	shell, _, _ := newTestShell(typed("exit"))

	var events bytes.Buffer
	shell.Session = logger.NewJSONLinesRecorder(&events).NewSession()

	require.NoError(t, shell.Run())

	log := events.String()
	assert.Contains(t, log, `"session_start"`)
	assert.Contains(t, log, `"command":"exit"`)
	assert.Contains(t, log, `"builtin":{"name":"exit"}`)
	assert.Contains(t, log, `"session_end"`)
}

func TestRunEndOfInputExitsCleanly(t *testing.T) {
	shell, _, _ := newTestShell(nil)
	require.NoError(t, shell.Run())
}

func TestRunSkipsBlankLines(t *testing.T) {
	shell, _, _ := newTestShell(typed("   ", "exit"))

	var events bytes.Buffer
	shell.Session = logger.NewJSONLinesRecorder(&events).NewSession()

	require.NoError(t, shell.Run())
	assert.NotContains(t, events.String(), `"command":"   "`)
}

func TestRunReportsCommandNotFound(t *testing.T) {
	// The search path is empty on MemMapFs, so nothing resolves.
	shell, _, stderr := newTestShell(typed("squid --now", "exit"))

	var events bytes.Buffer
	shell.Session = logger.NewJSONLinesRecorder(&events).NewSession()

	require.NoError(t, shell.Run())
	assert.Contains(t, stderr.String(), "squid")
	assert.Contains(t, stderr.String(), "command not found")
	assert.Contains(t, events.String(), `"run_error"`)
	assert.Contains(t, events.String(), `"command":"squid --now"`)
}

func TestNewShellDegradesOnBadCommandLog(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	configuration := config.Default()
	configuration.CommandLog = "/var/log/reef.jsonl"

	in, err := os.Open(os.DevNull)
	require.NoError(t, err)
	defer in.Close()

	var stdout, stderr bytes.Buffer
	shell, err := NewShell(configuration, fs, in, &stdout, &stderr)
	require.NoError(t, err)
	defer shell.Close()

	assert.Contains(t, stderr.String(), "can't open command log")
}
