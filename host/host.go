// Package host is a reference terminal adapter for cmd/zireaeldemo. It
// implements just enough of a "plat" contract (raw mode enter/leave, size
// query, blocking read with timeout, single-flush write) over
// golang.org/x/term to let a demo program build a drawlist, submit it to
// a zireael.Engine, and present the result to a real terminal.
//
// Nothing here is part of THE CORE's tested contract: zireael itself never
// touches an os.File or a syscall. This package exists only so the demo
// has somewhere to put that plumbing, the way purfecterm's cli package
// wraps its Buffer/Parser around a real stdin/stdout.
package host

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"
)

// Terminal owns raw-mode state for a single real terminal (stdin/stdout by
// convention, but any *os.File pair can be passed to New).
type Terminal struct {
	in  *os.File
	out *os.File

	oldState *term.State
	rawMode  bool
}

// New wraps in/out without touching terminal modes yet; call EnterRaw to
// switch into raw mode.
func New(in, out *os.File) *Terminal {
	return &Terminal{in: in, out: out}
}

// EnterRaw puts the input file descriptor into raw mode, disabling line
// buffering and echo so individual bytes reach the demo's Poll loop as
// they arrive. It is a no-op if already raw.
func (t *Terminal) EnterRaw() error {
	if t.rawMode {
		return nil
	}
	st, err := term.MakeRaw(int(t.in.Fd()))
	if err != nil {
		return fmt.Errorf("host: enter raw mode: %w", err)
	}
	t.oldState = st
	t.rawMode = true
	return nil
}

// LeaveRaw restores the terminal mode captured by EnterRaw. Safe to call
// even if EnterRaw was never called or already undone.
func (t *Terminal) LeaveRaw() error {
	if !t.rawMode || t.oldState == nil {
		return nil
	}
	err := term.Restore(int(t.in.Fd()), t.oldState)
	t.rawMode = false
	t.oldState = nil
	if err != nil {
		return fmt.Errorf("host: leave raw mode: %w", err)
	}
	return nil
}

// Size queries the current terminal dimensions in columns and rows.
func (t *Terminal) Size() (cols, rows int, err error) {
	cols, rows, err = term.GetSize(int(t.out.Fd()))
	if err != nil {
		return 0, 0, fmt.Errorf("host: query size: %w", err)
	}
	return cols, rows, nil
}

// ReadTimeout blocks until at least one byte is available, the deadline
// passes, or the read fails, and returns whatever bytes were read. A
// zero-length, nil-error result means the deadline elapsed with nothing
// to read; callers should treat that as "poll again".
func (t *Terminal) ReadTimeout(buf []byte, timeout time.Duration) (int, error) {
	if err := t.in.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		// Not every in-file supports deadlines (e.g. a plain pipe in
		// tests); fall back to a blocking read with no timeout.
		return t.in.Read(buf)
	}
	n, err := t.in.Read(buf)
	if err != nil {
		if os.IsTimeout(err) {
			return 0, nil
		}
		return n, err
	}
	return n, nil
}

// Write flushes out in a single call, matching the core's "present writes
// in one flush" expectation (spec.md §5) at the host boundary too.
func (t *Terminal) Write(p []byte) error {
	_, err := t.out.Write(p)
	if err != nil {
		return fmt.Errorf("host: write: %w", err)
	}
	return nil
}

// Close restores the terminal mode. It does not close the underlying
// files: New did not own them, so it does not own their lifetime.
func (t *Terminal) Close() error {
	return t.LeaveRaw()
}

// NotifyResize delivers on ch whenever the host terminal's window size
// changes (SIGWINCH). The caller re-queries Size and calls Engine.Resize.
// Stop unregisters the signal.
func NotifyResize(ch chan<- os.Signal) (stop func()) {
	signal.Notify(ch, syscall.SIGWINCH)
	return func() { signal.Stop(ch) }
}
