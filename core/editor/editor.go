// Package editor reads one command line from the terminal: it owns the
// edit buffer, history recall and the completion trigger for the
// duration of a single input cycle.
package editor

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/muesli/termenv"

	"github.com/reef-sh/reef/core/complete"
	"github.com/reef-sh/reef/core/history"
	"github.com/reef-sh/reef/core/term"
)

const defaultPollInterval = 500 * time.Millisecond

// Term is the terminal surface the editor drives. *term.Terminal
// satisfies it; tests substitute a scripted fake.
type Term interface {
	MakeRaw() error
	Restore() error
	Width() int
	Poll(timeout time.Duration) (term.Key, bool, error)
}

// Editor is the line-input state machine. One ReadLine call is one
// input cycle: raw mode is enabled on entry and restored before the
// finalized line is handed back, so anything executed afterwards
// inherits normal terminal semantics.
type Editor struct {
	Term      Term
	Out       io.Writer
	History   *history.Store
	Completer *complete.Engine

	// Err receives completion diagnostics; nil falls back to Out.
	Err io.Writer

	// Prompt is re-evaluated on every redraw so a cd mid-session shows
	// up immediately.
	Prompt func() string

	// PollInterval bounds one key-event wait; zero means the default.
	PollInterval time.Duration

	// HomeDir resolves ~ for completion fragments. Defaults to the
	// invoking user's home directory.
	HomeDir func() (string, error)

	output *termenv.Output
}

func New(t Term, out io.Writer, hist *history.Store, completer *complete.Engine, prompt func() string) *Editor {
	return &Editor{
		Term:      t,
		Out:       out,
		History:   hist,
		Completer: completer,
		Prompt:    prompt,
		output:    termenv.NewOutput(out),
	}
}

// ReadLine collects one finalized command line. It returns io.EOF when
// the input closes.
func (e *Editor) ReadLine() (string, error) {
	if err := e.Term.MakeRaw(); err != nil {
		return "", err
	}
	defer e.Term.Restore()

	var buf string
	cursor := e.History.NewCursor()
	e.redraw(buf)

	for {
		key, ok, err := e.Term.Poll(e.pollInterval())
		if err != nil {
			return "", err
		}
		if !ok {
			// Poll timeout; nothing to do.
			continue
		}

		switch key.Kind {
		case term.KindRune:
			buf += string(key.Rune)
			e.redraw(buf)

		case term.KindBackspace:
			if buf != "" {
				_, size := utf8.DecodeLastRuneInString(buf)
				buf = buf[:len(buf)-size]
			}
			e.redraw(buf)

		case term.KindInterrupt:
			buf = ""
			fmt.Fprint(e.Out, "\r\n")
			e.redraw(buf)

		case term.KindUp:
			if line, changed := cursor.Up(buf); changed {
				buf = line
				e.redraw(buf)
			}

		case term.KindDown:
			if line, changed := cursor.Down(); changed {
				buf = line
				e.redraw(buf)
			}

		case term.KindTab:
			buf = e.complete(buf)
			e.redraw(buf)

		case term.KindEnter:
			fmt.Fprint(e.Out, "\r\n")
			if strings.TrimSpace(buf) != "" {
				e.History.Append(buf)
			}
			return buf, nil
		}
	}
}

// redraw clears the prompt line and rewrites prompt plus buffer in one
// shot so the display never tears.
func (e *Editor) redraw(buf string) {
	fmt.Fprint(e.Out, "\r")
	e.output.ClearLine()
	fmt.Fprint(e.Out, e.Prompt(), buf)
}

// complete runs the completion trigger on the buffer's trailing token
// and returns the (possibly rewritten) buffer. A single match rewrites
// the token in place; multiple matches print the suggestion grid below
// the prompt; failures are reported and editing continues.
func (e *Editor) complete(buf string) string {
	// The fragment is the last whitespace-delimited field even when the
	// buffer ends in a space, so the rewrite of a single match replaces
	// that field and swallows the trailing space.
	fields := strings.Fields(buf)
	var token string
	if len(fields) > 0 {
		token = fields[len(fields)-1]
	}

	fragment := token
	if strings.HasPrefix(fragment, "~") {
		if home, err := e.home(); err == nil {
			fragment = home + fragment[1:]
		}
	}

	dirsOnly := len(fields) > 0 && fields[0] == "cd"
	matches, err := e.Completer.Suggest(fragment, dirsOnly)
	if err != nil {
		e.printBelow(e.errOut(), func(w io.Writer) { fmt.Fprintln(w, err) })
		return buf
	}

	switch len(matches) {
	case 0:
		return buf

	case 1:
		name := matches[0].Name
		if matches[0].IsDir {
			name += "/"
		}
		dir, _ := complete.SplitFragment(token)
		start := len(buf)
		if token != "" {
			start = strings.LastIndex(buf, token)
		}
		return buf[:start] + dir + name

	default:
		e.printBelow(e.Out, func(w io.Writer) { complete.Grid(w, matches, e.Term.Width()) })
		return buf
	}
}

// printBelow temporarily leaves raw mode so multi-line output renders
// with ordinary newline handling, then resumes the cycle.
func (e *Editor) printBelow(w io.Writer, print func(io.Writer)) {
	_ = e.Term.Restore()
	fmt.Fprintln(e.Out)
	print(w)
	_ = e.Term.MakeRaw()
}

func (e *Editor) errOut() io.Writer {
	if e.Err != nil {
		return e.Err
	}
	return e.Out
}

func (e *Editor) pollInterval() time.Duration {
	if e.PollInterval <= 0 {
		return defaultPollInterval
	}
	return e.PollInterval
}

func (e *Editor) home() (string, error) {
	if e.HomeDir != nil {
		return e.HomeDir()
	}
	return os.UserHomeDir()
}
