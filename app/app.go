package app

import (
	"reflex/firmware/button"
	"reflex/firmware/charlie"
	"reflex/firmware/game"
	"reflex/firmware/power"
	"reflex/firmware/tick"
	"reflex/hal"
	"reflex/internal/buildinfo"
)

// Config holds the firmware settings. The zero value is the stock game.
type Config struct {
	Game game.Config
}

// System is the wired firmware: tick source, LED driver, power manager and game.
type System struct {
	h     hal.HAL
	ticks *tick.Source
	leds  *charlie.Driver
	power *power.Manager
	game  *game.Game

	status statusBox
}

// New initializes the firmware with the default config.
func New(h hal.HAL) *System {
	return NewWithConfig(h, Config{})
}

// NewWithConfig initializes the firmware: button as pulled-up input, LEDs off, game in Init.
func NewWithConfig(h hal.HAL, cfg Config) *System {
	port := h.Port()
	log := h.Logger()

	hal.SetOutput(port, hal.ButtonBit, false)
	hal.SetBit(port, hal.ButtonBit)

	leds := charlie.NewDriver(port)
	leds.Off()

	pm := power.NewManager(cfg.Game.IdleTimeout, leds, h.Power(), log)
	g := game.New(
		cfg.Game,
		leds,
		button.NewPortInput(port, hal.ButtonBit),
		pm,
		game.NewXorshift32(h.Seed()),
		log,
	)

	if log != nil {
		log.WriteLineString("reflex: boot " + buildinfo.Short())
	}

	s := &System{
		h:     h,
		ticks: tick.NewSource(h.Timer()),
		leds:  leds,
		power: pm,
		game:  g,
	}
	s.publish()
	return s
}

// Run starts the firmware and polls forever (TinyGo/native entrypoint).
func Run(h hal.HAL) {
	RunWithConfig(h, Config{})
}

func RunWithConfig(h hal.HAL, cfg Config) {
	s := NewWithConfig(h, cfg)
	for {
		_ = s.Step()
	}
}

// Step runs one main-loop iteration: at most one tick.
func (s *System) Step() error {
	if s.ticks.Poll() {
		s.game.Tick()
		s.publish()
	}
	return nil
}

func (s *System) Game() *game.Game { return s.game }

// Ticks returns the number of ticks processed.
func (s *System) Ticks() uint64 { return s.ticks.Count() }

// Sleeps returns how many times the device went to sleep.
func (s *System) Sleeps() uint32 { return s.power.Sleeps() }
