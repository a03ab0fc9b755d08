// Package term owns the process's controlling terminal: raw input mode,
// width queries and the key-event stream the line editor polls.
package term

import (
	"errors"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

const defaultWidth = 80

// Terminal wraps the shell's input file. Raw mode is toggled around
// each input cycle only; MakeRaw and Restore are idempotent so spawned
// processes always inherit cooked-mode semantics.
//
// No byte leaves the kernel's input queue except inside Poll, and then
// only one at a time: whatever the user types ahead of a running
// pipeline stays queued for that stage to read.
type Terminal struct {
	in  *os.File
	fd  int
	tty bool

	saved *term.State

	dec *Decoder
	eof bool
}

func New(in *os.File) *Terminal {
	fd := int(in.Fd())
	return &Terminal{
		in:  in,
		fd:  fd,
		tty: term.IsTerminal(fd),
		dec: NewDecoder(&byteReader{f: in}),
	}
}

// MakeRaw switches the terminal to raw, unbuffered input. On a
// non-terminal input (a piped script) it is a no-op so the shell can
// still consume line-oriented input to end-of-file.
func (t *Terminal) MakeRaw() error {
	if !t.tty || t.saved != nil {
		return nil
	}
	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return err
	}
	t.saved = state
	return nil
}

// Restore returns the terminal to its previous (line-buffered) mode.
func (t *Terminal) Restore() error {
	if t.saved == nil {
		return nil
	}
	err := term.Restore(t.fd, t.saved)
	t.saved = nil
	return err
}

// Width reports the terminal width in columns, defaulting when the
// input is not a terminal.
func (t *Terminal) Width() int {
	if !t.tty {
		return defaultWidth
	}
	w, _, err := term.GetSize(t.fd)
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// Poll waits up to timeout for the next key event. The second return is
// false when the timeout elapsed with no event. Once the input reaches
// end-of-file every subsequent call returns io.EOF.
func (t *Terminal) Poll(timeout time.Duration) (Key, bool, error) {
	if t.eof {
		return Key{}, false, io.EOF
	}

	ready, err := t.wait(timeout)
	if err != nil {
		return Key{}, false, err
	}
	if !ready {
		return Key{}, false, nil
	}

	key, err := t.dec.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			t.eof = true
		}
		return Key{}, false, err
	}
	return key, true, nil
}

// wait blocks until the input has at least one readable byte or the
// timeout elapses.
func (t *Terminal) wait(timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(t.fd), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, int(timeout.Milliseconds()))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		return n > 0, nil
	}
}

// byteReader hands the decoder one byte per read. The decoder may
// buffer it, but never a byte beyond the key being decoded.
type byteReader struct {
	f *os.File
}

func (b *byteReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return b.f.Read(p[:1])
}
