//go:build !tinygo

package main

import (
	"fmt"
	"io"
	"strings"

	"reflex/app"
	"reflex/firmware/game"
	"reflex/hal"
)

// replayHAL is a board whose timer fires only when the replay says so.
type replayHAL struct {
	log   *transcript
	port  *hal.VirtualPort
	timer *hal.ManualTimer
	power *hal.VirtualPower
	seed  uint32
}

func (h *replayHAL) Logger() hal.Logger { return h.log }
func (h *replayHAL) Port() hal.Port     { return h.port }
func (h *replayHAL) Timer() hal.Timer   { return h.timer }
func (h *replayHAL) Power() hal.Power   { return h.power }
func (h *replayHAL) Seed() uint32       { return h.seed }

// transcript records firmware log lines stamped with the current tick.
type transcript struct {
	tick  uint64
	lines []string
}

func (t *transcript) WriteLineString(s string) {
	t.lines = append(t.lines, fmt.Sprintf("[%8d] %s", t.tick, s))
}

func (t *transcript) WriteLineBytes(b []byte) { t.WriteLineString(string(b)) }

func (t *transcript) logf(format string, args ...any) {
	t.WriteLineString(fmt.Sprintf(format, args...))
}

type result struct {
	lines  []string
	ticks  uint64
	state  game.State
	stage  uint8
	sleeps uint32
}

// replayer owns the button while a script runs.
type replayer struct {
	s    *script
	h    *replayHAL
	sys  *app.System
	next int

	holding   bool
	releaseAt uint64
	wakeAt    uint64
	stopped   bool
}

// replay runs s to completion. A sleeping device is woken by the next scheduled press,
// skipping the ticks in between; with none left the replay ends there.
func replay(s *script, trace io.Writer) (*result, error) {
	port := hal.NewVirtualPort()
	h := &replayHAL{
		log:   &transcript{},
		port:  port,
		timer: hal.NewManualTimer(),
		power: hal.NewVirtualPower(port, hal.ButtonBit),
		seed:  s.Seed,
	}
	done := make(chan struct{})
	h.power.Done = done

	r := &replayer{s: s, h: h}
	h.power.OnSleep = func() {
		switch {
		case r.holding:
			h.log.logf("replay: release wakes the device")
			r.release()
		case r.next < len(s.Presses):
			at := s.Presses[r.next]
			if at < h.log.tick {
				at = h.log.tick
			}
			h.log.logf("replay: press at tick %d wakes the device", at)
			r.wakeAt = at
			r.press(at)
		default:
			h.log.logf("replay: asleep with no presses left")
			r.stopped = true
			close(done)
		}
	}

	r.sys = app.NewWithConfig(h, app.Config{Game: s.Game.config()})

	var tw *hal.PortTrace
	if trace != nil {
		tw = hal.NewTraceWriter(trace, hal.DefaultHz)
	}

	for tick := uint64(1); tick <= s.Ticks && !r.stopped; tick++ {
		h.log.tick = tick
		r.drive(tick)

		h.timer.Fire()
		if err := r.sys.Step(); err != nil {
			return nil, fmt.Errorf("tick %d: %w", tick, err)
		}
		if r.wakeAt > tick {
			tick = r.wakeAt
			h.log.tick = tick
		}
		r.wakeAt = 0

		if tw != nil {
			level, dir := port.Registers()
			if err := tw.Sample(tick, level, dir, port.Input()); err != nil {
				return nil, fmt.Errorf("trace: %w", err)
			}
		}
	}
	if tw != nil {
		if err := tw.Flush(); err != nil {
			return nil, fmt.Errorf("trace: %w", err)
		}
	}

	c := r.sys.Game().Context()
	return &result{
		lines:  h.log.lines,
		ticks:  h.log.tick,
		state:  c.State,
		stage:  c.Stage,
		sleeps: r.sys.Sleeps(),
	}, nil
}

// drive applies the button edges due at tick.
func (r *replayer) drive(tick uint64) {
	if r.holding && tick >= r.releaseAt {
		r.release()
	}
	if r.holding {
		return
	}
	if r.next < len(r.s.Presses) && r.s.Presses[r.next] <= tick {
		r.press(tick)
		return
	}
	if r.s.Autoplay != "" && r.wantPress() {
		r.holding = true
		r.releaseAt = tick + r.s.Hold
		r.h.port.PullLow(hal.ButtonBit, true)
	}
}

func (r *replayer) wantPress() bool {
	g := r.sys.Game()
	c := g.Context()
	if c.State != game.StateActive || c.PhaseTicks >= g.Config().Period(c.Stage)/2 {
		return false
	}
	onTarget := c.Cursor == c.Target
	return onTarget == (r.s.Autoplay == "hit")
}

func (r *replayer) press(tick uint64) {
	r.next++
	r.holding = true
	r.releaseAt = tick + r.s.Hold
	r.h.port.PullLow(hal.ButtonBit, true)
}

func (r *replayer) release() {
	r.holding = false
	r.h.port.PullLow(hal.ButtonBit, false)
}

// check compares res against s.Expect and returns one message per failed expectation.
func check(s *script, res *result) []string {
	var failures []string
	e := s.Expect
	if e.State != "" && res.state.String() != e.State {
		failures = append(failures, fmt.Sprintf("state %s, want %s", res.state, e.State))
	}
	if e.Stage != nil && res.stage != *e.Stage {
		failures = append(failures, fmt.Sprintf("stage %d, want %d", res.stage, *e.Stage))
	}
	if e.MinStage != nil && res.stage < *e.MinStage {
		failures = append(failures, fmt.Sprintf("stage %d, want at least %d", res.stage, *e.MinStage))
	}
	if e.Sleeps != nil && res.sleeps != *e.Sleeps {
		failures = append(failures, fmt.Sprintf("%d sleeps, want %d", res.sleeps, *e.Sleeps))
	}
	all := strings.Join(res.lines, "\n")
	for _, want := range e.Logs {
		if !strings.Contains(all, want) {
			failures = append(failures, fmt.Sprintf("no log line contains %q", want))
		}
	}
	for _, unwanted := range e.NoLogs {
		if strings.Contains(all, unwanted) {
			failures = append(failures, fmt.Sprintf("unexpected log line containing %q", unwanted))
		}
	}
	return failures
}
