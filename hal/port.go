package hal

import "sync"

// VirtualPort is an in-memory Port: a level/direction register pair plus the lines that
// outside hardware pulls low (a pressed button).
//
// Input pins read low when pulled low externally, high when their pull-up (level bit) is
// enabled, and low when floating. Output pins read back their level bit.
type VirtualPort struct {
	mu    sync.Mutex
	level uint8
	dir   uint8
	ext   uint8

	wakeMask uint8
	wake     chan struct{}
}

// NewVirtualPort returns a port with every pin an input without pull-up.
func NewVirtualPort() *VirtualPort {
	return &VirtualPort{}
}

func (p *VirtualPort) Level() uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

func (p *VirtualPort) SetLevel(v uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	before := p.inputLocked()
	p.level = v
	p.notifyLocked(before)
}

func (p *VirtualPort) Direction() uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dir
}

func (p *VirtualPort) SetDirection(v uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	before := p.inputLocked()
	p.dir = v
	p.notifyLocked(before)
}

func (p *VirtualPort) Input() uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inputLocked()
}

// Registers returns the level and direction registers as one consistent pair.
func (p *VirtualPort) Registers() (level, dir uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level, p.dir
}

// PullLow models outside hardware shorting pin n to ground (low=true) or letting go.
func (p *VirtualPort) PullLow(n uint8, low bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	before := p.inputLocked()
	if low {
		p.ext |= Bit(n)
	} else {
		p.ext &^= Bit(n)
	}
	p.notifyLocked(before)
}

// ArmWake arms a one-shot pin-change wake on pin n.
//
// The returned channel is closed on the first change of the pin's input level.
func (p *VirtualPort) ArmWake(n uint8) <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.wakeMask = Bit(n)
	p.wake = make(chan struct{})
	return p.wake
}

// DisarmWake drops an armed wake that has not fired.
func (p *VirtualPort) DisarmWake() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.wakeMask = 0
	p.wake = nil
}

// WakeArmed reports whether a pin-change wake is waiting to fire.
func (p *VirtualPort) WakeArmed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wake != nil
}

func (p *VirtualPort) inputLocked() uint8 {
	in := p.level & p.dir
	pulled := p.level &^ p.dir &^ p.ext
	return in | pulled
}

func (p *VirtualPort) notifyLocked(before uint8) {
	if p.wake == nil {
		return
	}
	if (before^p.inputLocked())&p.wakeMask == 0 {
		return
	}
	close(p.wake)
	p.wake = nil
	p.wakeMask = 0
}
