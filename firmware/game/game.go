// Package game is the tick-driven state machine of the reflex game.
//
// A cursor runs around the 16-LED ring and the player presses the button when it sits on
// the blinking target. Every hit reverses the cursor and speeds it up; a miss ends the game.
// Nothing here blocks except the power manager's sleep, and nothing runs between ticks.
package game

import (
	"strconv"

	"reflex/firmware/button"
	"reflex/firmware/charlie"
	"reflex/firmware/power"
	"reflex/hal"
)

// LEDs shows one LED of the ring or none.
type LEDs interface {
	Set(i uint8)
	Off()
}

// Button reports the raw (unfiltered) button level.
type Button interface {
	Pressed() bool
}

// Game owns the game context and the components it steps.
type Game struct {
	cfg Config
	ctx Context

	leds  LEDs
	btn   Button
	deb   *button.Debouncer
	power *power.Manager
	rnd   Rand
	log   hal.Logger

	ticks uint64
}

// New returns a game in the Init state. power and log may be nil.
func New(cfg Config, leds LEDs, btn Button, pm *power.Manager, rnd Rand, log hal.Logger) *Game {
	cfg = cfg.withDefaults()
	if rnd == nil {
		rnd = NewXorshift32(0)
	}
	g := &Game{
		cfg:   cfg,
		leds:  leds,
		btn:   btn,
		deb:   button.NewDebouncer(cfg.DebounceThreshold),
		power: pm,
		rnd:   rnd,
		log:   log,
	}
	g.Reset()
	return g
}

// Reset starts over from the attract animation.
//
// It is the only recovery path: Fail and Win end here, and so does a wake from sleep.
func (g *Game) Reset() {
	if g.ctx.State != StateInit {
		g.logState(StateInit)
	}
	g.ctx = Context{
		State:  StateInit,
		Target: g.randomTarget(),
	}
	g.deb.Reset()
	g.leds.Off()
}

// Tick advances the game by one tick.
func (g *Game) Tick() {
	g.ticks++

	var reset bool
	switch g.ctx.State {
	case StateInit:
		g.tickInit()
	case StateActive:
		reset = g.tickActive()
	case StateFail:
		reset = g.tickFail()
	case StateWin:
		reset = g.tickWin()
	}
	if !reset {
		g.ctx.PhaseTicks++
	}
}

// Context returns a copy of the game state.
func (g *Game) Context() Context { return g.ctx }

func (g *Game) State() State { return g.ctx.State }

func (g *Game) Config() Config { return g.cfg }

// Ticks returns the number of ticks processed since construction.
func (g *Game) Ticks() uint64 { return g.ticks }

func (g *Game) tickInit() {
	c := &g.ctx
	if c.PhaseTicks > g.cfg.InitSpinPeriod {
		c.Cursor = next(c.Cursor)
		c.PhaseTicks = 0
		if c.Cursor == c.Target {
			c.Passes++
			if c.Passes > g.cfg.InitSpinPasses {
				g.start()
			}
		}
	}
	g.leds.Set(c.Cursor)
}

func (g *Game) start() {
	g.logState(StateActive)
	c := &g.ctx
	c.State = StateActive
	c.Stage = 0
	c.IdleTicks = 0
	c.Target = g.randomTarget()
	g.deb.Reset()
}

func (g *Game) tickActive() (reset bool) {
	c := &g.ctx
	c.IdleTicks++

	if c.PhaseTicks > g.cfg.Period(c.Stage) {
		if c.Direction {
			c.Cursor = next(c.Cursor)
		} else {
			c.Cursor = prev(c.Cursor)
		}
		c.PhaseTicks = 0
	}

	pressed := g.btn != nil && g.btn.Pressed()
	if g.deb.Update(pressed) {
		// The board has no entropy source; the player's timing is the only one.
		if m, ok := g.rnd.(Mixer); ok {
			m.Mix(uint32(g.ticks))
		}
		if c.Cursor == c.Target {
			g.hit()
		} else {
			g.enter(StateFail)
		}
	}

	// The target flashes briefly so the cursor stays the brighter of the two.
	if c.PhaseTicks%targetEvery == 1 {
		g.leds.Set(c.Target)
	} else {
		g.leds.Set(c.Cursor)
	}

	if c.State == StateActive && g.power != nil && g.power.Check(c.IdleTicks) {
		g.Reset()
		return true
	}
	return false
}

func (g *Game) hit() {
	c := &g.ctx
	c.IdleTicks = 0
	c.Direction = !c.Direction
	c.Target = g.randomTarget()
	c.Stage++
	if g.log != nil {
		b := append(make([]byte, 0, 40), "game: hit stage="...)
		b = strconv.AppendUint(b, uint64(c.Stage), 10)
		b = append(b, " target="...)
		b = strconv.AppendUint(b, uint64(c.Target), 10)
		g.log.WriteLineBytes(b)
	}
	if c.Stage > g.cfg.MaxStage {
		g.enter(StateWin)
	}
}

func (g *Game) enter(s State) {
	g.logState(s)
	g.ctx.State = s
	g.ctx.PhaseTicks = 0
}

func (g *Game) tickFail() (reset bool) {
	c := &g.ctx
	if c.PhaseTicks > g.cfg.FailTicks {
		g.Reset()
		return true
	}
	if c.PhaseTicks&(1<<blinkBit) != 0 {
		g.leds.Set(c.Cursor)
	} else {
		g.leds.Off()
	}
	return false
}

func (g *Game) tickWin() (reset bool) {
	c := &g.ctx
	if c.PhaseTicks > g.cfg.WinTicks {
		g.Reset()
		return true
	}
	if c.PhaseTicks&(1<<blinkBit) != 0 {
		c.Cursor = next(c.Cursor)
		g.leds.Set(c.Cursor)
	} else {
		g.leds.Off()
	}
	return false
}

func (g *Game) randomTarget() uint8 {
	return uint8(g.rnd.Uint32() % charlie.LEDCount)
}

func (g *Game) logState(to State) {
	if g.log == nil {
		return
	}
	b := append(make([]byte, 0, 48), "game: "...)
	b = append(b, g.ctx.State.String()...)
	b = append(b, " -> "...)
	b = append(b, to.String()...)
	b = append(b, " stage="...)
	b = strconv.AppendUint(b, uint64(g.ctx.Stage), 10)
	g.log.WriteLineBytes(b)
}
