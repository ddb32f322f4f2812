package ringview

import (
	"strings"
	"testing"

	"reflex/firmware/charlie"
)

func TestTextPlacesEveryLEDOnce(t *testing.T) {
	for i := 0; i < charlie.LEDCount; i++ {
		lines := Text(func(j int) rune {
			if j == i {
				return 'X'
			}
			return '.'
		})
		if len(lines) != 7 {
			t.Fatalf("got %d lines", len(lines))
		}
		n := strings.Count(strings.Join(lines, "\n"), "X")
		if n != 1 {
			t.Fatalf("led %d drawn %d times", i, n)
		}
	}
}

func TestTextTopRow(t *testing.T) {
	lines := Text(func(j int) rune {
		switch j {
		case 15:
			return 'a'
		case 0:
			return 'b'
		case 1:
			return 'c'
		}
		return '.'
	})
	if got, want := lines[0], "       a b c"; got != want {
		t.Fatalf("top row %q want %q", got, want)
	}
	if !strings.HasSuffix(lines[3], ".") || !strings.HasPrefix(strings.TrimSpace(lines[3]), ".") {
		t.Fatalf("middle row %q", lines[3])
	}
}

func TestGlyph(t *testing.T) {
	tests := []struct {
		b    float64
		want rune
	}{
		{0, '.'},
		{0.01, '.'},
		{0.125, 'o'},
		{0.875, 'O'},
		{1, 'O'},
	}
	for _, tt := range tests {
		if got := Glyph(tt.b); got != tt.want {
			t.Fatalf("Glyph(%v)=%q want %q", tt.b, got, tt.want)
		}
	}
}

func TestPointsClockwiseFromTop(t *testing.T) {
	pts := Points(100, 100, 50)
	if pts[0].X != 100 || pts[0].Y != 50 {
		t.Fatalf("led 0 at %v", pts[0])
	}
	if pts[4].X != 150 || pts[4].Y != 100 {
		t.Fatalf("led 4 at %v", pts[4])
	}
	if pts[8].X != 100 || pts[8].Y != 150 {
		t.Fatalf("led 8 at %v", pts[8])
	}
	if pts[12].X != 50 || pts[12].Y != 100 {
		t.Fatalf("led 12 at %v", pts[12])
	}
}

type regs struct{ level, dir uint8 }

func (r *regs) Level() uint8         { return r.level }
func (r *regs) SetLevel(v uint8)     { r.level = v }
func (r *regs) Direction() uint8     { return r.dir }
func (r *regs) SetDirection(v uint8) { r.dir = v }

func TestMeterIntegratesMultiplexing(t *testing.T) {
	p := &regs{}
	d := charlie.NewDriver(p)
	var m Meter

	for i := 0; i < 8; i++ {
		if i%8 == 1 {
			d.Set(9)
		} else {
			d.Set(2)
		}
		m.Sample(p.level, p.dir)
	}
	b := m.Take()
	if b[2] != 7.0/8 || b[9] != 1.0/8 {
		t.Fatalf("brightness cursor=%v target=%v", b[2], b[9])
	}
	if Glyph(b[2]) != 'O' || Glyph(b[9]) != 'o' {
		t.Fatalf("glyphs %q %q", Glyph(b[2]), Glyph(b[9]))
	}

	b = m.Take()
	for i, v := range b {
		if v != 0 {
			t.Fatalf("led %d=%v after empty window", i, v)
		}
	}
}
