// Package ringview lays out the 16-LED ring for host front ends and measures how bright
// each LED looks to a viewer of the multiplexed port.
package ringview

import (
	"fmt"
	"image"
	"math"
	"sync"

	"reflex/firmware/charlie"
)

// rows places LED indices on a 7-line text board, clockwise from the top centre.
var rows = [...]struct {
	format string
	leds   []int
}{
	{"       %c %c %c", []int{15, 0, 1}},
	{"     %c       %c", []int{14, 2}},
	{"   %c           %c", []int{13, 3}},
	{"   %c           %c", []int{12, 4}},
	{"   %c           %c", []int{11, 5}},
	{"     %c       %c", []int{10, 6}},
	{"       %c %c %c", []int{9, 8, 7}},
}

// Glyph maps a brightness in [0,1] to a board character.
func Glyph(b float64) rune {
	switch {
	case b >= 0.5:
		return 'O'
	case b >= 0.05:
		return 'o'
	default:
		return '.'
	}
}

// Text renders the ring as seven text lines. glyph is called once per LED.
func Text(glyph func(i int) rune) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		args := make([]any, len(row.leds))
		for k, i := range row.leds {
			args[k] = glyph(i)
		}
		out = append(out, fmt.Sprintf(row.format, args...))
	}
	return out
}

// TextFromBrightness renders a brightness snapshot with Glyph.
func TextFromBrightness(b [charlie.LEDCount]float64) []string {
	return Text(func(i int) rune { return Glyph(b[i]) })
}

// Points returns the centre of every LED on a circle of radius r around (cx, cy),
// LED 0 at the top and the index increasing clockwise.
func Points(cx, cy, r int) [charlie.LEDCount]image.Point {
	var pts [charlie.LEDCount]image.Point
	for i := range pts {
		a := -math.Pi/2 + float64(i)*2*math.Pi/charlie.LEDCount
		pts[i] = image.Pt(
			cx+int(math.Round(float64(r)*math.Cos(a))),
			cy+int(math.Round(float64(r)*math.Sin(a))),
		)
	}
	return pts
}

// Meter accumulates per-LED on-time from port register samples, the way an eye
// integrates a multiplexed display. It is safe for concurrent use.
type Meter struct {
	mu      sync.Mutex
	on      [charlie.LEDCount]uint32
	samples uint32
}

// Sample decodes one port state and counts the LEDs it lights.
func (m *Meter) Sample(level, dir uint8) {
	lit := charlie.Decode(level, dir)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples++
	for i, on := range lit {
		if on {
			m.on[i]++
		}
	}
}

// Take returns each LED's on-fraction since the previous Take and starts a new window.
// With no samples in the window every LED reads 0.
func (m *Meter) Take() [charlie.LEDCount]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out [charlie.LEDCount]float64
	if m.samples > 0 {
		for i, n := range m.on {
			out[i] = float64(n) / float64(m.samples)
		}
	}
	m.on = [charlie.LEDCount]uint32{}
	m.samples = 0
	return out
}
