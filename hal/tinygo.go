//go:build tinygo && avr

package hal

import (
	"device/avr"
	"runtime/interrupt"
)

type tinyGoHAL struct {
	port  avrPort
	timer avrTimer
	power avrPower
}

// New returns the ATtiny85 HAL.
//
// Timer0 runs in normal mode straight off the CPU clock, so the overflow flag rises every
// 256 cycles. Port B carries the LED matrix on PB1..PB5 and the button on PB0.
func New() HAL {
	avr.TCCR0A.Set(0)
	avr.TCCR0B.Set(avr.TCCR0B_CS00)
	avr.TCNT0.Set(0)
	avr.TIFR.Set(avr.TIFR_TOV0)

	interrupt.New(avr.IRQ_PCINT0, func(interrupt.Interrupt) {})

	return &tinyGoHAL{}
}

func (h *tinyGoHAL) Logger() Logger { return nullLogger{} }
func (h *tinyGoHAL) Port() Port     { return h.port }
func (h *tinyGoHAL) Timer() Timer   { return h.timer }
func (h *tinyGoHAL) Power() Power   { return h.power }

// Seed is fixed: the chip has no entropy source and the timer was just reset. The game
// mixes the tick count of each press into its generator instead.
func (h *tinyGoHAL) Seed() uint32 {
	return 0xACE1
}

type nullLogger struct{}

func (nullLogger) WriteLineString(string) {}
func (nullLogger) WriteLineBytes([]byte)  {}

type avrPort struct{}

func (avrPort) Level() uint8         { return avr.PORTB.Get() }
func (avrPort) SetLevel(v uint8)     { avr.PORTB.Set(v) }
func (avrPort) Direction() uint8     { return avr.DDRB.Get() }
func (avrPort) SetDirection(v uint8) { avr.DDRB.Set(v) }
func (avrPort) Input() uint8         { return avr.PINB.Get() }

type avrTimer struct{}

func (avrTimer) Overflowed() bool { return avr.TIFR.HasBits(avr.TIFR_TOV0) }

// ClearOverflow writes a one to TOV0, which clears it.
func (avrTimer) ClearOverflow() { avr.TIFR.Set(avr.TIFR_TOV0) }

type avrPower struct{}

// EnterLowPower powers down until the button pin changes. Only that edge wakes the part.
func (avrPower) EnterLowPower() bool {
	avr.GIMSK.SetBits(avr.GIMSK_PCIE)
	avr.PCMSK.SetBits(avr.PCMSK_PCINT0)
	avr.MCUCR.ClearBits(avr.MCUCR_SM0)
	avr.MCUCR.SetBits(avr.MCUCR_SM1 | avr.MCUCR_SE)

	avr.Asm("sei")
	avr.Asm("sleep")
	avr.Asm("cli")

	avr.MCUCR.ClearBits(avr.MCUCR_SE)
	avr.PCMSK.ClearBits(avr.PCMSK_PCINT0)
	avr.GIMSK.ClearBits(avr.GIMSK_PCIE)
	return true
}
