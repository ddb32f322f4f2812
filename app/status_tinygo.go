//go:build tinygo

package app

// The firmware has no front end reading status.
type statusBox struct{}

func (s *System) publish() {}
