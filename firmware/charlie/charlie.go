// Package charlie drives the 16-LED charlieplexed ring.
//
// Each LED sits between two pins of one shared port: it lights when its drive pin is an
// output driven high and its sink pin an output driven low, with every other multiplexed
// pin left as a high-impedance input. The button shares the same port and its bits are
// carried through every write unchanged.
package charlie

// Pin is a bit position on the shared port.
type Pin uint8

const (
	PB0 Pin = iota
	PB1
	PB2
	PB3
	PB4
	PB5
)

// ButtonPin carries the push button (active low, pull-up).
const ButtonPin = PB0

// LEDCount is the number of addressable LEDs.
const LEDCount = 16

// Table maps an LED index to its (drive, sink) pin pair. It is the board wiring.
var Table = [LEDCount][2]Pin{
	// Group 0
	{PB1, PB2},
	{PB1, PB3},
	{PB1, PB4},
	{PB1, PB5},

	// Group 1
	{PB2, PB1},
	{PB2, PB3},
	{PB2, PB4},
	{PB2, PB5},

	// Group 2
	{PB3, PB1},
	{PB3, PB2},
	{PB3, PB4},
	{PB3, PB5},

	// Group 3
	{PB4, PB1},
	{PB4, PB2},
	{PB4, PB3},
	{PB4, PB5},
}

// Port is the register view the driver needs.
type Port interface {
	Level() uint8
	SetLevel(v uint8)
	Direction() uint8
	SetDirection(v uint8)
}

const buttonMask = uint8(1) << ButtonPin

// Driver lights one LED at a time.
type Driver struct {
	port Port
}

func NewDriver(port Port) *Driver {
	return &Driver{port: port}
}

// Set lights LED i and nothing else.
func (d *Driver) Set(i uint8) {
	if int(i) >= LEDCount {
		panic("charlie: led index out of range")
	}
	pair := Table[i]

	level := d.port.Level() & buttonMask
	dir := d.port.Direction() & buttonMask

	level |= 1 << pair[0]
	dir |= 1<<pair[0] | 1<<pair[1]

	d.port.SetLevel(level)
	d.port.SetDirection(dir)
}

// Off releases every multiplexed pin to a high-impedance input.
func (d *Driver) Off() {
	d.port.SetLevel(d.port.Level() & buttonMask)
	d.port.SetDirection(d.port.Direction() & buttonMask)
}

// Decode reports which LEDs the level and direction registers light.
func Decode(level, dir uint8) [LEDCount]bool {
	var lit [LEDCount]bool
	for i, pair := range Table {
		drive := uint8(1) << pair[0]
		sink := uint8(1) << pair[1]
		lit[i] = level&drive != 0 && level&sink == 0 && dir&drive != 0 && dir&sink != 0
	}
	return lit
}

// Lit returns the index of the single lit LED, or -1 if none or more than one is lit.
func Lit(level, dir uint8) int {
	idx := -1
	for i, on := range Decode(level, dir) {
		if !on {
			continue
		}
		if idx >= 0 {
			return -1
		}
		idx = i
	}
	return idx
}
