// Package power sends the device to sleep after a stretch of idle play.
package power

import (
	"strconv"

	"reflex/hal"
)

// DefaultTimeout is the idle tick count that triggers sleep.
const DefaultTimeout = 40000

// LEDs is the part of the LED driver the manager needs.
type LEDs interface {
	Off()
}

// Manager decides when to sleep and performs the blocking sleep.
type Manager struct {
	timeout uint32
	leds    LEDs
	power   hal.Power
	log     hal.Logger

	sleeps uint32
}

func NewManager(timeout uint32, leds LEDs, power hal.Power, log hal.Logger) *Manager {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Manager{timeout: timeout, leds: leds, power: power, log: log}
}

// Check sleeps if idle exceeds the timeout and reports whether it did.
//
// After a sleep the caller must reset the game, whether the wake edge fired or the host
// aborted the sleep.
func (m *Manager) Check(idle uint32) bool {
	if idle <= m.timeout {
		return false
	}
	if m.leds != nil {
		m.leds.Off()
	}
	m.sleeps++
	if m.log != nil {
		b := append(make([]byte, 0, 40), "power: sleep after "...)
		b = strconv.AppendUint(b, uint64(idle), 10)
		m.log.WriteLineBytes(append(b, " idle ticks"...))
	}
	woke := true
	if m.power != nil {
		woke = m.power.EnterLowPower()
	}
	if m.log != nil {
		if woke {
			m.log.WriteLineString("power: wake")
		} else {
			m.log.WriteLineString("power: sleep aborted")
		}
	}
	return true
}

func (m *Manager) Timeout() uint32 { return m.timeout }

// Sleeps returns how many times the manager put the device to sleep.
func (m *Manager) Sleeps() uint32 { return m.sleeps }
