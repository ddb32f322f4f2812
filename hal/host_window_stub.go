//go:build !tinygo && !cgo

package hal

import (
	"context"
	"errors"
)

// WindowConfig controls the desktop window runner.
type WindowConfig struct {
	Hz        int
	Seed      uint32
	TracePath string
}

func RunWindow(_ context.Context, _ func(h HAL) App, _ WindowConfig) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}
