//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"reflex/app"
	"reflex/hal"
)

// tickList is a comma-separated list of tick numbers.
type tickList []uint64

func (l *tickList) String() string {
	parts := make([]string, len(*l))
	for i, t := range *l {
		parts[i] = strconv.FormatUint(t, 10)
	}
	return strings.Join(parts, ",")
}

func (l *tickList) Set(s string) error {
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		t, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid tick %q: %w", f, err)
		}
		*l = append(*l, t)
	}
	return nil
}

func main() {
	var (
		cfg   hal.HeadlessConfig
		tui   bool
		seed  uint64
		press tickList
	)
	flag.BoolVar(&cfg.Enabled, "headless", false, "Run without a window.")
	flag.BoolVar(&tui, "tui", false, "Draw the LED ring in the terminal.")
	flag.IntVar(&cfg.Hz, "hz", hal.DefaultHz, "Timer overflow rate.")
	flag.Uint64Var(&cfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.Uint64Var(&seed, "seed", 0, "Random seed (0 = from the clock).")
	flag.Var(&press, "press", "Comma-separated ticks at which to press the button (headless).")
	flag.Uint64Var(&cfg.Hold, "hold", 200, "Ticks a button press lasts.")
	flag.DurationVar(&cfg.WakeAfter, "wake-after", 0, "Press the button this long after the device sleeps (headless).")
	flag.StringVar(&cfg.TracePath, "trace", "", "Write a VCD trace of the port to this file.")
	flag.Parse()

	if seed > 0xFFFFFFFF {
		fmt.Fprintln(os.Stderr, "seed must fit in 32 bits")
		os.Exit(2)
	}
	cfg.Seed = uint32(seed)
	cfg.Presses = press

	appCfg, err := app.LoadConfigFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	newApp := func(h hal.HAL) hal.App {
		return app.NewWithConfig(h, appCfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case cfg.Enabled:
		err = hal.RunHeadless(ctx, newApp, cfg)
	case tui:
		hz := cfg.Hz
		if hz <= 0 {
			hz = hal.DefaultHz
		}
		err = hal.RunTUI(ctx, newApp, hal.TUIConfig{
			Hz:        cfg.Hz,
			Seed:      cfg.Seed,
			TracePath: cfg.TracePath,
			Hold:      time.Duration(cfg.Hold) * time.Second / time.Duration(hz),
		})
	default:
		err = hal.RunWindow(ctx, newApp, hal.WindowConfig{
			Hz:        cfg.Hz,
			Seed:      cfg.Seed,
			TracePath: cfg.TracePath,
		})
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
