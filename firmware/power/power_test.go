package power

import "testing"

type fakeLEDs struct{ off int }

func (l *fakeLEDs) Off() { l.off++ }

type fakePower struct {
	calls   int
	ledsOff func() int
	offSeen int
	abort   bool
}

func (p *fakePower) EnterLowPower() bool {
	p.calls++
	if p.ledsOff != nil {
		p.offSeen = p.ledsOff()
	}
	return !p.abort
}

type lines []string

func (l *lines) WriteLineString(s string) { *l = append(*l, s) }
func (l *lines) WriteLineBytes(b []byte)  { *l = append(*l, string(b)) }

func TestCheckBoundary(t *testing.T) {
	leds := &fakeLEDs{}
	pw := &fakePower{ledsOff: func() int { return leds.off }}
	var log lines
	m := NewManager(100, leds, pw, &log)

	if m.Check(100) {
		t.Fatal("slept at the timeout, want strictly after")
	}
	if pw.calls != 0 {
		t.Fatal("unexpected sleep")
	}
	if !m.Check(101) {
		t.Fatal("expected sleep past the timeout")
	}
	if pw.calls != 1 || m.Sleeps() != 1 {
		t.Fatalf("sleep calls = %d, sleeps = %d", pw.calls, m.Sleeps())
	}
	if pw.offSeen != 1 {
		t.Fatal("expected LEDs off before sleeping")
	}
	if len(log) != 2 || log[0] != "power: sleep after 101 idle ticks" || log[1] != "power: wake" {
		t.Fatalf("log = %q", log)
	}
}

func TestCheckLogsAbortedSleep(t *testing.T) {
	pw := &fakePower{abort: true}
	var log lines
	m := NewManager(10, nil, pw, &log)

	if !m.Check(11) {
		t.Fatal("an aborted sleep still needs a reset")
	}
	if len(log) != 2 || log[1] != "power: sleep aborted" {
		t.Fatalf("log = %q", log)
	}
	if m.Sleeps() != 1 {
		t.Fatalf("sleeps = %d", m.Sleeps())
	}
}

func TestDefaults(t *testing.T) {
	m := NewManager(0, nil, nil, nil)
	if m.Timeout() != DefaultTimeout {
		t.Fatalf("timeout = %d", m.Timeout())
	}
	// Nil collaborators are tolerated.
	if !m.Check(DefaultTimeout + 1) {
		t.Fatal("expected sleep")
	}
}
