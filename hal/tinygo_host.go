//go:build tinygo && !baremetal

package hal

import (
	"os"
	"time"
)

type tinyGoHostHAL struct {
	logger tinyGoHostLogger
	port   *VirtualPort
	timer  *ManualTimer
	power  *VirtualPower
}

// New returns a TinyGo-on-host HAL implementation.
//
// This is used by `tinygo run` targets like linux/wasm where there is no MCU pin mapping.
// Any byte on stdin briefly presses the button.
func New() HAL {
	port := NewVirtualPort()
	h := &tinyGoHostHAL{
		port:  port,
		timer: NewManualTimer(),
		power: NewVirtualPower(port, ButtonBit),
	}
	go func() {
		ticker := time.NewTicker(time.Second / DefaultHz)
		defer ticker.Stop()
		for range ticker.C {
			h.timer.Fire()
		}
	}()
	go func() {
		buf := make([]byte, 1)
		for {
			if _, err := os.Stdin.Read(buf); err != nil {
				return
			}
			port.PullLow(ButtonBit, true)
			time.Sleep(50 * time.Millisecond)
			port.PullLow(ButtonBit, false)
		}
	}()
	return h
}

func (h *tinyGoHostHAL) Logger() Logger { return h.logger }
func (h *tinyGoHostHAL) Port() Port     { return h.port }
func (h *tinyGoHostHAL) Timer() Timer   { return h.timer }
func (h *tinyGoHostHAL) Power() Power   { return h.power }
func (h *tinyGoHostHAL) Seed() uint32   { return uint32(time.Now().UnixNano()) | 1 }

type tinyGoHostLogger struct{}

func (l tinyGoHostLogger) WriteLineString(s string) {
	println(s)
}

func (l tinyGoHostLogger) WriteLineBytes(b []byte) {
	println(string(b))
}
