//go:build !tinygo

package hal

import (
	"image/color"
	"sync"

	"tinygo.org/x/drivers"
)

// hostFramebuffer is an RGB565 frame in memory that tinyfont and tinyterm draw into.
// SetScroll mimics a panel's vertical scroll register: row 0 on screen shows buffer row scroll.
type hostFramebuffer struct {
	mu     sync.Mutex
	width  int
	height int
	stride int
	buf    []byte
	scroll int
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	stride := width * 2
	return &hostFramebuffer{
		width:  width,
		height: height,
		stride: stride,
		buf:    make([]byte, stride*height),
	}
}

func (f *hostFramebuffer) Size() (x, y int16) { return int16(f.width), int16(f.height) }
func (f *hostFramebuffer) Display() error     { return nil }

func (f *hostFramebuffer) SetPixel(x, y int16, c color.RGBA) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setLocked(int(x), int(y), rgb565(c.R, c.G, c.B))
}

func (f *hostFramebuffer) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	pixel := rgb565(c.R, c.G, c.B)
	f.mu.Lock()
	defer f.mu.Unlock()
	for yy := int(y); yy < int(y)+int(height); yy++ {
		for xx := int(x); xx < int(x)+int(width); xx++ {
			f.setLocked(xx, yy, pixel)
		}
	}
	return nil
}

func (f *hostFramebuffer) SetScroll(line int16) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := int(line) % f.height
	if s < 0 {
		s += f.height
	}
	f.scroll = s
}

func (f *hostFramebuffer) SetRotation(drivers.Rotation) error { return ErrNotImplemented }

func (f *hostFramebuffer) setLocked(x, y int, pixel uint16) {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return
	}
	i := y*f.stride + x*2
	f.buf[i] = byte(pixel)
	f.buf[i+1] = byte(pixel >> 8)
}

func (f *hostFramebuffer) ClearRGB(r, g, b uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pixel := rgb565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
}

// FillCircle paints a filled disc centred on (cx, cy).
func (f *hostFramebuffer) FillCircle(cx, cy, r int, c color.RGBA) {
	pixel := rgb565(c.R, c.G, c.B)
	f.mu.Lock()
	defer f.mu.Unlock()
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				f.setLocked(cx+dx, cy+dy, pixel)
			}
		}
	}
}

// snapshotRGBA converts the visible frame, scroll applied, into dst (4 bytes per pixel).
func (f *hostFramebuffer) snapshotRGBA(dst []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for y := 0; y < f.height; y++ {
		src := f.buf[((y+f.scroll)%f.height)*f.stride:]
		row := dst[y*f.width*4:]
		for x := 0; x < f.width; x++ {
			r, g, b := rgb888From565(uint16(src[x*2]) | uint16(src[x*2+1])<<8)
			row[x*4+0] = r
			row[x*4+1] = g
			row[x*4+2] = b
			row[x*4+3] = 0xFF
		}
	}
}
