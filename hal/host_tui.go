//go:build !tinygo

package hal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-tty"

	"reflex/internal/buildinfo"
	"reflex/internal/ringview"
)

// TUIConfig controls the terminal runner.
type TUIConfig struct {
	Hz        int
	Seed      uint32
	TracePath string
	// Hold is how long one space bar press keeps the button down.
	Hold time.Duration
}

const (
	defaultTUIHold = 150 * time.Millisecond
	tuiFPS         = 30
	tuiLogLines    = 10
)

// RunTUI draws the ring in the terminal. Space presses the button for cfg.Hold,
// r/s start and stop a trace, q quits.
func RunTUI(ctx context.Context, newApp func(HAL) App, cfg TUIConfig) error {
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return errors.New("tui mode requires a terminal on stdout")
	}
	if cfg.Hold <= 0 {
		cfg.Hold = defaultTUIHold
	}

	t, err := tty.Open()
	if err != nil {
		return fmt.Errorf("open tty: %w", err)
	}
	defer t.Close()
	out := colorable.NewColorable(os.Stdout)

	logs := &lineQueue{}
	h := newHost(HostConfig{Hz: cfg.Hz, Seed: cfg.Seed}, logs)
	tracePath := cfg.TracePath
	if tracePath != "" {
		if err := h.trace.Start(tracePath, h.hz); err != nil {
			return err
		}
	} else {
		tracePath = defaultTracePath
	}
	defer func() { _ = h.trace.Stop() }()

	app := newApp(h)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- h.run(ctx, app, nil) }()

	keys := make(chan rune, 16)
	go readKeys(t, keys)

	fmt.Fprint(out, "\x1b[?25l\x1b[2J")
	defer fmt.Fprint(out, "\x1b[?25h\r\n")

	frame := time.NewTicker(time.Second / tuiFPS)
	defer frame.Stop()

	var (
		tail    []string
		release <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case r, ok := <-keys:
			if !ok {
				return nil
			}
			switch r {
			case ' ':
				h.press(true)
				release = time.After(cfg.Hold)
			case 'r':
				if err := h.trace.Start(tracePath, h.hz); err != nil {
					h.logger.WriteLineString("trace: " + err.Error())
				} else {
					h.logger.WriteLineString("trace: recording " + tracePath)
				}
			case 's':
				if h.trace.Active() {
					if err := h.trace.Stop(); err != nil {
						h.logger.WriteLineString("trace: " + err.Error())
					} else {
						h.logger.WriteLineString("trace: stopped")
					}
				}
			case 'q', 'Q', 0x03, 0x1b:
				return nil
			}
		case <-release:
			h.press(false)
			release = nil
		case <-frame.C:
			tail = appendTail(tail, logs.drain(), tuiLogLines)
			renderTUI(out, h, app, tail)
		}
	}
}

func readKeys(t *tty.TTY, keys chan<- rune) {
	defer close(keys)
	for {
		r, err := t.ReadRune()
		if err != nil {
			return
		}
		keys <- r
	}
}

func appendTail(tail, more []string, n int) []string {
	tail = append(tail, more...)
	if len(tail) > n {
		tail = append(tail[:0], tail[len(tail)-n:]...)
	}
	return tail
}

func renderTUI(w io.Writer, h *hostHAL, app App, tail []string) {
	var b strings.Builder
	b.WriteString("\x1b[H")
	line := func(s string) {
		b.WriteString(s)
		b.WriteString("\x1b[K\r\n")
	}

	title := buildinfo.String()
	if h.trace.Active() {
		title += "  \x1b[31mREC\x1b[0m"
	}
	line(title)
	line("")
	for _, row := range ringview.TextFromBrightness(h.meter.Take()) {
		line(colorizeRow(row))
	}
	line("")
	if sr, ok := app.(StatusReporter); ok {
		line(sr.Status())
	}
	line("space: button   r/s: trace   q: quit")
	line("")
	for i := 0; i < tuiLogLines; i++ {
		if i < len(tail) {
			line(tail[i])
		} else {
			line("")
		}
	}
	_, _ = io.WriteString(w, b.String())
}

func colorizeRow(row string) string {
	var b strings.Builder
	for _, r := range row {
		switch r {
		case 'O':
			b.WriteString("\x1b[1;31mO\x1b[0m")
		case 'o':
			b.WriteString("\x1b[31mo\x1b[0m")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
