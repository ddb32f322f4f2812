// Package vcd writes Value Change Dump traces readable by GTKWave and similar viewers.
package vcd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Signal declares one traced wire or bus.
type Signal struct {
	Name  string
	Width int
}

// Writer emits a VCD header followed by time-stamped value changes.
// Only values that differ from the previous sample are written.
type Writer struct {
	w         *bufio.Writer
	scope     string
	timescale string
	signals   []Signal
	last      []uint64
	started   bool
	lastTime  uint64
	stamped   bool
	err       error
}

var (
	ErrSampleWidth = errors.New("vcd: sample has the wrong number of values")
	ErrTimescale   = errors.New("vcd: timescale must be 1, 10 or 100 of s, ms, us, ns, ps or fs")
)

// ValidTimescale reports whether ts is a legal VCD timescale such as "1 ns" or "100us".
func ValidTimescale(ts string) bool {
	ts = strings.ReplaceAll(ts, " ", "")
	for _, n := range []string{"100", "10", "1"} {
		if !strings.HasPrefix(ts, n) {
			continue
		}
		switch ts[len(n):] {
		case "s", "ms", "us", "ns", "ps", "fs":
			return true
		}
		return false
	}
	return false
}

// NewWriter returns a writer for the given signals. timescale is a VCD unit such as "1 ns";
// an illegal one makes every Sample fail with ErrTimescale.
func NewWriter(w io.Writer, scope, timescale string, signals ...Signal) *Writer {
	for i := range signals {
		if signals[i].Width <= 0 {
			signals[i].Width = 1
		}
	}
	vw := &Writer{
		w:         bufio.NewWriter(w),
		scope:     scope,
		timescale: timescale,
		signals:   signals,
		last:      make([]uint64, len(signals)),
	}
	if !ValidTimescale(timescale) {
		vw.err = ErrTimescale
	}
	return vw
}

// id returns the short printable identifier of signal i.
func id(i int) string {
	const first, span = '!', '~' - '!' + 1
	var b []byte
	for {
		b = append(b, byte(first+i%span))
		i /= span
		if i == 0 {
			return string(b)
		}
		i--
	}
}

func (w *Writer) header(values []uint64) {
	fmt.Fprintf(w.w, "$timescale %s $end\n", w.timescale)
	fmt.Fprintf(w.w, "$scope module %s $end\n", w.scope)
	for i, s := range w.signals {
		fmt.Fprintf(w.w, "$var wire %d %s %s $end\n", s.Width, id(i), s.Name)
	}
	fmt.Fprintf(w.w, "$upscope $end\n$enddefinitions $end\n")
	fmt.Fprintf(w.w, "#%d\n$dumpvars\n", w.lastTime)
	for i := range w.signals {
		w.value(i, values[i])
	}
	fmt.Fprintf(w.w, "$end\n")
}

func (w *Writer) value(i int, v uint64) {
	width := w.signals[i].Width
	if width == 1 {
		w.w.WriteByte('0' + byte(v&1))
		w.w.WriteString(id(i))
		w.w.WriteByte('\n')
		return
	}
	if width < 64 {
		v &= 1<<width - 1
	}
	w.w.WriteByte('b')
	w.w.WriteString(strconv.FormatUint(v, 2))
	w.w.WriteByte(' ')
	w.w.WriteString(id(i))
	w.w.WriteByte('\n')
	w.last[i] = v
}

// Sample records the signal values at time t (in timescale units). Times must not go
// backwards; a sample with no changes writes nothing.
func (w *Writer) Sample(t uint64, values ...uint64) error {
	if w.err != nil {
		return w.err
	}
	if len(values) != len(w.signals) {
		return ErrSampleWidth
	}
	if !w.started {
		w.started = true
		w.lastTime = t
		w.stamped = true
		w.header(values)
		for i, v := range values {
			w.last[i] = v
		}
		return w.flushErr()
	}
	if t < w.lastTime {
		return fmt.Errorf("vcd: time %d before %d", t, w.lastTime)
	}
	// Several samples may share one time; its stamp is written once.
	stamped := t == w.lastTime && w.stamped
	for i, v := range values {
		if v == w.last[i] {
			continue
		}
		if !stamped {
			fmt.Fprintf(w.w, "#%d\n", t)
			stamped = true
			w.stamped = true
		}
		w.value(i, v)
		w.last[i] = v
	}
	if t != w.lastTime {
		w.stamped = stamped
	}
	w.lastTime = t
	return nil
}

// Flush writes buffered output.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.flushErr()
}

func (w *Writer) flushErr() error {
	if err := w.w.Flush(); err != nil {
		w.err = fmt.Errorf("vcd: %w", err)
	}
	return w.err
}
