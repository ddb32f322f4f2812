//go:build !tinygo

package app

import (
	"fmt"
	"sync"

	"reflex/firmware/game"
)

// statusBox holds the game context as of the last completed Step. Front ends read it
// from their own goroutines while the runner keeps stepping.
type statusBox struct {
	mu  sync.Mutex
	ctx game.Context
}

func (s *System) publish() {
	c := s.game.Context()
	s.status.mu.Lock()
	s.status.ctx = c
	s.status.mu.Unlock()
}

// Snapshot returns the game context published by the last Step. Safe for concurrent use.
func (s *System) Snapshot() game.Context {
	s.status.mu.Lock()
	defer s.status.mu.Unlock()
	return s.status.ctx
}

// Status describes the game in one line for host front ends. Safe for concurrent use.
func (s *System) Status() string {
	c := s.Snapshot()
	return fmt.Sprintf("%-6s stage %2d  cursor %2d  target %2d  idle %5d", c.State, c.Stage, c.Cursor, c.Target, c.IdleTicks)
}
