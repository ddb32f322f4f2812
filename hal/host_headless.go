//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	Hz      int
	// Ticks stops the run after this many ticks; 0 runs until ctx ends.
	Ticks uint64
	Seed  uint32
	// Presses lists the ticks at which the button goes down.
	Presses []uint64
	// Hold is how many ticks each scheduled press lasts.
	Hold uint64
	// WakeAfter presses the button this long after the device falls asleep; 0 leaves it asleep.
	WakeAfter time.Duration
	TracePath string
}

const (
	defaultHoldTicks = 200
	wakePulse        = 50 * time.Millisecond
)

// RunHeadless runs the firmware without opening a window, logging to stdout.
func RunHeadless(ctx context.Context, newApp func(HAL) App, cfg HeadlessConfig) error {
	if cfg.Hz < 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	if cfg.Hold == 0 {
		cfg.Hold = defaultHoldTicks
	}

	h := newHost(HostConfig{Hz: cfg.Hz, Seed: cfg.Seed}, os.Stdout)
	if cfg.TracePath != "" {
		if err := h.trace.Start(cfg.TracePath, h.hz); err != nil {
			return err
		}
		defer func() {
			if err := h.trace.Stop(); err != nil {
				h.logger.WriteLineString("trace: " + err.Error())
			}
		}()
	}
	if cfg.WakeAfter > 0 {
		h.power.OnSleep = func() {
			time.AfterFunc(cfg.WakeAfter, func() {
				h.logger.WriteLineString("host: wake press")
				h.press(true)
				time.AfterFunc(wakePulse, func() { h.press(false) })
			})
		}
	}

	app := newApp(h)
	sched := newPressSchedule(cfg.Presses, cfg.Hold)

	err := h.run(ctx, app, func(steps uint64) bool {
		if down, ok := sched.at(steps); ok {
			h.press(down)
		}
		return cfg.Ticks == 0 || steps < cfg.Ticks
	})
	h.logger.WriteLineString(h.summary())
	return err
}

// pressSchedule turns press start ticks into down/up edges.
type pressSchedule struct {
	edges []pressEdge
	next  int
}

type pressEdge struct {
	tick uint64
	down bool
}

func newPressSchedule(starts []uint64, hold uint64) *pressSchedule {
	s := &pressSchedule{}
	for _, t := range starts {
		s.edges = append(s.edges, pressEdge{t, true}, pressEdge{t + hold, false})
	}
	sort.SliceStable(s.edges, func(i, j int) bool { return s.edges[i].tick < s.edges[j].tick })
	return s
}

// at returns the last edge scheduled at or before tick that has not been returned yet.
func (s *pressSchedule) at(tick uint64) (down, ok bool) {
	for s.next < len(s.edges) && s.edges[s.next].tick <= tick {
		down, ok = s.edges[s.next].down, true
		s.next++
	}
	return down, ok
}
