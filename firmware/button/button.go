// Package button filters the raw push-button level into a stable pressed state.
package button

// DefaultThreshold is the number of net pressed (or released) ticks needed to flip the
// filtered state.
const DefaultThreshold = 10

// Debouncer is a bounded up/down counter with hysteresis.
//
// The counter moves one step per tick toward the raw level. The filtered state turns
// pressed when the counter reaches the threshold and released when it reaches zero, so a
// single noisy sample can never flip it.
type Debouncer struct {
	threshold uint8
	count     uint8
	raw       bool
	pressed   bool
	prev      bool
}

func NewDebouncer(threshold uint8) *Debouncer {
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	return &Debouncer{threshold: threshold}
}

// Update feeds one tick of raw level and reports a press edge.
func (d *Debouncer) Update(raw bool) (rising bool) {
	d.raw = raw
	if raw {
		if d.count < d.threshold {
			d.count++
		}
	} else if d.count > 0 {
		d.count--
	}

	switch d.count {
	case d.threshold:
		d.pressed = true
	case 0:
		d.pressed = false
	}

	rising = d.pressed && !d.prev
	d.prev = d.pressed
	return rising
}

// Pressed returns the filtered level.
func (d *Debouncer) Pressed() bool { return d.pressed }

// Raw returns the last raw level fed to Update.
func (d *Debouncer) Raw() bool { return d.raw }

// Count returns the integrator value in [0, threshold].
func (d *Debouncer) Count() uint8 { return d.count }

func (d *Debouncer) Threshold() uint8 { return d.threshold }

// Reset returns the debouncer to released with an empty counter.
func (d *Debouncer) Reset() {
	d.count = 0
	d.raw = false
	d.pressed = false
	d.prev = false
}

// Port is the pin-read register of the port the button is wired to.
type Port interface {
	Input() uint8
}

// PortInput reads an active-low button on one port bit.
type PortInput struct {
	port Port
	mask uint8
}

func NewPortInput(port Port, bit uint8) PortInput {
	return PortInput{port: port, mask: 1 << bit}
}

// Pressed reports whether the pin is pulled low.
func (in PortInput) Pressed() bool {
	return in.port.Input()&in.mask == 0
}
