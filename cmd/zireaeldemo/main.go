// Command zireaeldemo is a minimal interactive demo wiring the host
// terminal adapter to a zireael.Engine, the way purfecterm's cli package
// wires a real stdin/stdout to purfecterm.Buffer. It draws a static
// banner and a live keystroke echo, and quits on Ctrl-C or 'q'.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RtlZeroMemory/zireael"
	"github.com/RtlZeroMemory/zireael/dlbuild"
	"github.com/RtlZeroMemory/zireael/host"
)

const pollTimeout = 30 * time.Millisecond

func main() {
	if err := run(); err != nil {
		log.Fatalf("zireaeldemo: %v", err)
	}
}

func run() error {
	term := host.New(os.Stdin, os.Stdout)
	if err := term.EnterRaw(); err != nil {
		return err
	}
	defer term.Close()

	cols, rows, err := term.Size()
	if err != nil {
		return err
	}

	engine, err := zireael.NewEngine(cols, rows, zireael.DefaultLimits(), zireael.EngineOptions{
		Capability: zireael.DefaultCapability(),
		Policy:     zireael.WidthPolicyEmojiNarrow,
	})
	if err != nil {
		return err
	}
	defer engine.Destroy()

	// An abnormal-termination path (SIGINT/SIGTERM arriving mid-frame)
	// skips the normal defer unwind, so it restores raw mode through the
	// engine registry instead of relying on this goroutine's defers.
	abort := make(chan os.Signal, 1)
	signal.Notify(abort, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-abort
		zireael.RestoreAll(func(e *zireael.Engine) { e.Destroy() })
		term.LeaveRaw()
		os.Exit(130)
	}()

	resize := make(chan os.Signal, 1)
	stopResize := host.NotifyResize(resize)
	defer stopResize()

	// direct-key-handler (the teacher's own input dependency, purfecterm
	// cli/input.go) owns stdin and decodes keystrokes into named keys;
	// KeyboardSource re-encodes them into the raw VT bytes the engine's
	// input parser expects, so the read loop below stays agnostic to
	// which source produced the bytes.
	kbd, err := host.NewKeyboardSource(os.Stdin)
	if err != nil {
		return err
	}
	defer kbd.Stop()

	if err := present(term, engine, "connected", 0, 0); err != nil {
		return err
	}

	buf := make([]byte, 4096)
	last := ""
	for {
		select {
		case <-resize:
			c, r, err := term.Size()
			if err != nil {
				return err
			}
			if err := engine.Resize(c, r); err != nil {
				return err
			}
		default:
		}

		n, err := kbd.ReadTimeout(buf, pollTimeout)
		if err != nil {
			return err
		}
		now := time.Now().UnixMilli()
		if n > 0 {
			if err := engine.Poll(buf[:n], now); err != nil {
				return err
			}
		} else {
			engine.IdleFlush(now)
		}

		quit := false
		for {
			ev, ok := engine.PopEvent()
			if !ok {
				break
			}
			switch ev.Type {
			case zireael.EventResize:
				last = fmt.Sprintf("resized to %dx%d", ev.Cols, ev.Rows)
			case zireael.EventKey:
				if ev.Key == zireael.KeyCtrlLetter && ev.Rune == 'C' {
					quit = true
				}
				last = fmt.Sprintf("key %v mods=%v", ev.Key, ev.Mods)
			case zireael.EventText:
				if ev.Rune == 'q' {
					quit = true
				}
				last = fmt.Sprintf("text %q", ev.Rune)
			}
		}
		if quit {
			return nil
		}

		if err := present(term, engine, last, engine.Cols(), engine.Rows()); err != nil {
			return err
		}
	}
}

// present builds a small static drawlist (a cleared frame, a title bar, a
// banner line, and a status line) and submits/presents it in one round
// trip, matching the core's "submit then present" flow (spec.md §5).
func present(term *host.Terminal, engine *zireael.Engine, status string, cols, rows int) error {
	var b dlbuild.Builder
	b.Clear()

	banner := []byte("zireael demo -- press q or Ctrl-C to quit")
	bannerID := b.InternString(banner)
	titleStyle := dlbuild.WireStyle{
		FGRGB: dlbuild.RGB(255, 255, 255),
		BGRGB: dlbuild.RGB(0, 0, 128),
		Attrs: dlbuild.AttrBold,
	}
	b.FillRect(0, 0, int32(max(cols, 1)), 1, titleStyle)
	b.DrawText(1, 0, bannerID, uint32(len(banner)), titleStyle)

	if status != "" {
		statusBytes := []byte(status)
		statusID := b.InternString(statusBytes)
		statusStyle := dlbuild.WireStyle{FGRGB: dlbuild.RGB(0, 255, 0)}
		b.DrawText(1, 2, statusID, uint32(len(statusBytes)), statusStyle)
	}

	if err := engine.Submit(b.Build(), zireael.DLVersion1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	out, _, err := engine.Present(&zireael.DesiredCursor{X: 0, Y: 2, Shape: zireael.CursorShapeBlock, Visible: true})
	if err != nil {
		return fmt.Errorf("present: %w", err)
	}
	return term.Write(out)
}
