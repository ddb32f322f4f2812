package hal

import "sync/atomic"

// VirtualPower sleeps on a VirtualPort: it arms a pin-change wake on one pin and blocks
// until the pin changes or Done is closed.
type VirtualPower struct {
	port *VirtualPort
	pin  uint8

	// OnSleep, if set, runs after the wake is armed and before blocking.
	OnSleep func()
	// OnWake, if set, runs after the wake was disarmed.
	OnWake func()
	// Done aborts a sleep when closed (host shutdown).
	Done <-chan struct{}

	sleeps atomic.Uint64
}

func NewVirtualPower(port *VirtualPort, pin uint8) *VirtualPower {
	return &VirtualPower{port: port, pin: pin}
}

// EnterLowPower blocks until the armed pin changes (true) or Done is closed (false).
func (p *VirtualPower) EnterLowPower() (woke bool) {
	wake := p.port.ArmWake(p.pin)
	p.sleeps.Add(1)
	if p.OnSleep != nil {
		p.OnSleep()
	}
	select {
	case <-wake:
		woke = true
	case <-p.Done:
		select {
		case <-wake:
			woke = true
		default:
		}
	}
	p.port.DisarmWake()
	if p.OnWake != nil {
		p.OnWake()
	}
	return woke
}

// Sleeps returns how many times EnterLowPower was called.
func (p *VirtualPower) Sleeps() uint64 { return p.sleeps.Load() }
