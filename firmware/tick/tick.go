// Package tick turns timer overflows into scheduling ticks.
package tick

import "reflex/hal"

// Source polls a timer overflow flag.
//
// Each observed overflow is acknowledged before it is delivered, and delivered once.
// Overflows that happen while the previous one is still pending are merged by the timer
// and never queued here.
type Source struct {
	t     hal.Timer
	count uint64
}

func NewSource(t hal.Timer) *Source {
	return &Source{t: t}
}

// Poll reports whether a tick is due and acknowledges it.
func (s *Source) Poll() bool {
	if s.t == nil || !s.t.Overflowed() {
		return false
	}
	s.t.ClearOverflow()
	s.count++
	return true
}

// Count returns the number of ticks delivered so far.
func (s *Source) Count() uint64 { return s.count }
