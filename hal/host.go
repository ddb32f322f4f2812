//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"reflex/firmware/charlie"
	"reflex/internal/ringview"
	"reflex/internal/vcd"
)

// HostConfig describes the simulated board shared by every host runner.
type HostConfig struct {
	Hz int
	// Seed for the game's random source; 0 picks one from the wall clock.
	Seed uint32
	// TracePath, if set, records a VCD trace from the first tick.
	TracePath string
}

// defaultTracePath is where an interactive runner records when started without -trace.
const defaultTracePath = "reflex.vcd"

type hostHAL struct {
	logger *hostLogger
	port   *VirtualPort
	timer  *ManualTimer
	power  *VirtualPower
	seed   uint32
	hz     int

	meter ringview.Meter
	trace hostTrace
}

// New returns a host HAL with a virtual port and a manually fired timer.
// Nothing fires the timer until one of the Run* runners drives it.
func New() HAL {
	return newHost(HostConfig{}, os.Stdout)
}

func newHost(cfg HostConfig, log io.Writer) *hostHAL {
	if cfg.Hz <= 0 {
		cfg.Hz = DefaultHz
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint32(time.Now().UnixNano()) | 1
	}
	port := NewVirtualPort()
	return &hostHAL{
		logger: &hostLogger{w: log},
		port:   port,
		timer:  NewManualTimer(),
		power:  NewVirtualPower(port, ButtonBit),
		seed:   cfg.Seed,
		hz:     cfg.Hz,
	}
}

func (h *hostHAL) Logger() Logger { return h.logger }
func (h *hostHAL) Port() Port     { return h.port }
func (h *hostHAL) Timer() Timer   { return h.timer }
func (h *hostHAL) Power() Power   { return h.power }
func (h *hostHAL) Seed() uint32   { return h.seed }

// press drives the button pin low (pressed) or releases it.
func (h *hostHAL) press(down bool) { h.port.PullLow(ButtonBit, down) }

// run drives the timer at h.hz and steps app once per overflow until ctx ends,
// the app fails, or after returns false. after sees the number of steps so far.
func (h *hostHAL) run(ctx context.Context, app App, after func(steps uint64) bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h.power.Done = ctx.Done()
	go h.clock(ctx)

	var steps uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-h.timer.Ready():
		}
		if err := app.Step(); err != nil {
			return err
		}
		steps++
		h.sample()
		if after != nil && !after(steps) {
			return nil
		}
	}
}

func (h *hostHAL) clock(ctx context.Context) {
	d := time.Second / time.Duration(h.hz)
	if d <= 0 {
		d = time.Microsecond
	}
	t := time.NewTicker(d)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			h.timer.Fire()
		}
	}
}

func (h *hostHAL) sample() {
	level, dir := h.port.Registers()
	h.meter.Sample(level, dir)
	if err := h.trace.sample(h.timer.Fired(), level, dir, h.port.Input()); err != nil {
		h.logger.WriteLineString("trace: " + err.Error())
		_ = h.trace.Stop()
	}
}

func (h *hostHAL) summary() string {
	return fmt.Sprintf("host: %d overflows, %d coalesced, %d sleeps",
		h.timer.Fired(), h.timer.Coalesced(), h.power.Sleeps())
}

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

// hostTrace records port activity as a VCD file while started.
type hostTrace struct {
	mu   sync.Mutex
	f    *os.File
	w    *PortTrace
	path string
}

func (t *hostTrace) Start(path string, hz int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.f != nil {
		return fmt.Errorf("trace already writing %s", t.path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trace: %w", err)
	}
	t.f = f
	t.path = path
	t.w = NewTraceWriter(f, hz)
	return nil
}

func (t *hostTrace) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.f == nil {
		return nil
	}
	err := t.w.Flush()
	if cerr := t.f.Close(); err == nil {
		err = cerr
	}
	t.f, t.w = nil, nil
	if err != nil {
		return fmt.Errorf("close trace %s: %w", t.path, err)
	}
	return nil
}

func (t *hostTrace) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.f != nil
}

func (t *hostTrace) sample(tick uint64, level, dir, in uint8) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.w == nil {
		return nil
	}
	return t.w.Sample(tick, level, dir, in)
}

// PortTrace writes port states to a VCD stream stamped in nanoseconds.
type PortTrace struct {
	w  *vcd.Writer
	hz uint64
}

// NewTraceWriter returns a trace of the port signals for a timer running at hz.
func NewTraceWriter(w io.Writer, hz int) *PortTrace {
	if hz <= 0 {
		hz = DefaultHz
	}
	return &PortTrace{
		hz: uint64(hz),
		w: vcd.NewWriter(w, "reflex", "1 ns",
			vcd.Signal{Name: "portb", Width: 8},
			vcd.Signal{Name: "ddrb", Width: 8},
			vcd.Signal{Name: "pinb", Width: 8},
			vcd.Signal{Name: "button", Width: 1},
			vcd.Signal{Name: "led", Width: 5},
		),
	}
}

// Nanos converts a tick count to trace time.
func (p *PortTrace) Nanos(tick uint64) uint64 {
	const ns = uint64(time.Second)
	return tick/p.hz*ns + tick%p.hz*ns/p.hz
}

// Sample writes one port state. led is the lit LED index, or 31 when none or several are lit.
func (p *PortTrace) Sample(tick uint64, level, dir, in uint8) error {
	var pressed uint64
	if in&Bit(ButtonBit) == 0 {
		pressed = 1
	}
	led := uint64(31)
	if i := charlie.Lit(level, dir); i >= 0 {
		led = uint64(i)
	}
	return p.w.Sample(p.Nanos(tick), uint64(level), uint64(dir), uint64(in), pressed, led)
}

func (p *PortTrace) Flush() error { return p.w.Flush() }

// lineQueue collects written text as complete lines for the log pane.
type lineQueue struct {
	mu      sync.Mutex
	partial strings.Builder
	lines   []string
}

func (q *lineQueue) Write(p []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, b := range p {
		if b == '\n' {
			q.lines = append(q.lines, q.partial.String())
			q.partial.Reset()
			continue
		}
		q.partial.WriteByte(b)
	}
	const maxLines = 64
	if len(q.lines) > maxLines {
		q.lines = append(q.lines[:0], q.lines[len(q.lines)-maxLines:]...)
	}
	return len(p), nil
}

func (q *lineQueue) drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.lines
	q.lines = nil
	return out
}
