//go:build !tinygo && cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// hostKeyboard maps the desktop keyboard onto the board: space is the push button.
type hostKeyboard struct {
	button     bool
	traceStart bool
	traceStop  bool
	quit       bool
}

func newHostKeyboard() *hostKeyboard {
	return &hostKeyboard{}
}

func (k *hostKeyboard) poll() {
	k.button = ebiten.IsKeyPressed(ebiten.KeySpace)
	k.traceStart = inpututil.IsKeyJustPressed(ebiten.KeyR)
	k.traceStop = inpututil.IsKeyJustPressed(ebiten.KeyS)
	k.quit = inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ)
}
