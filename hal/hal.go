package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var ErrNotImplemented = errors.New("not implemented")

// DefaultHz is the overflow rate of an 8-bit timer clocked at 1 MHz without a prescaler.
const DefaultHz = 3906

// ButtonBit is the port bit the push button is wired to (active low, pull-up).
const ButtonBit = 0

// App is the firmware as seen by a host runner: one main-loop iteration per Step.
type App interface {
	Step() error
}

// StatusReporter is implemented by apps that can describe their state in one line.
type StatusReporter interface {
	Status() string
}

// Port is one 8-bit digital IO port.
//
// Level is the output/pull-up register, Direction the data-direction register (1 = output)
// and Input the pin-read register. Every pin of the LED matrix and the button share it, so
// writers must read-modify-write and keep the bits they do not own.
type Port interface {
	Level() uint8
	SetLevel(v uint8)
	Direction() uint8
	SetDirection(v uint8)
	Input() uint8
}

// Timer is a free-running counter that raises an overflow flag once per period.
//
// The flag stays set until cleared; overflows that happen while it is set are lost.
type Timer interface {
	Overflowed() bool
	ClearOverflow()
}

// Power puts the processor into its lowest-power mode.
//
// EnterLowPower arms a one-shot wake on the button pin edge, halts, and returns with the
// wake source disarmed. It reports false when the host aborted the sleep before any edge.
// It is the only blocking call on a HAL.
type Power interface {
	EnterLowPower() (woke bool)
}

// HAL provides the only contact point between the firmware and the outside world.
type HAL interface {
	Logger() Logger
	Port() Port
	Timer() Timer
	Power() Power
	// Seed returns a value to seed the firmware's pseudo-random generator.
	Seed() uint32
}

// Bit returns the mask for pin bit n.
func Bit(n uint8) uint8 { return 1 << n }

// SetBit sets bit n of p's level register, keeping every other bit.
func SetBit(p Port, n uint8) { p.SetLevel(p.Level() | Bit(n)) }

// SetOutput switches bit n of p's direction register, keeping every other bit.
func SetOutput(p Port, n uint8, output bool) {
	if output {
		p.SetDirection(p.Direction() | Bit(n))
		return
	}
	p.SetDirection(p.Direction() &^ Bit(n))
}
