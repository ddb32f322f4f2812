package game

import (
	"strings"
	"testing"

	"reflex/firmware/power"
)

type recLEDs struct {
	lit  int
	sets int
	offs int
}

func (l *recLEDs) Set(i uint8) {
	if i >= 16 {
		panic("led index out of range")
	}
	l.lit = int(i)
	l.sets++
}

func (l *recLEDs) Off() {
	l.lit = -1
	l.offs++
}

type fakeButton struct{ pressed bool }

func (b *fakeButton) Pressed() bool { return b.pressed }

// seqRand returns vals in order, then repeats the last one.
type seqRand struct {
	vals []uint32
	i    int
}

func (r *seqRand) Uint32() uint32 {
	v := r.vals[r.i]
	if r.i < len(r.vals)-1 {
		r.i++
	}
	return v
}

type countingPower struct {
	calls  int
	onTick func() uint64
	at     []uint64
}

func (p *countingPower) EnterLowPower() bool {
	p.calls++
	if p.onTick != nil {
		p.at = append(p.at, p.onTick())
	}
	return true
}

type lines []string

func (l *lines) WriteLineString(s string) { *l = append(*l, s) }
func (l *lines) WriteLineBytes(b []byte)  { *l = append(*l, string(b)) }

type rig struct {
	g    *Game
	leds *recLEDs
	btn  *fakeButton
	pw   *countingPower
	pm   *power.Manager
}

func newRig(cfg Config, rnd Rand) *rig {
	r := &rig{leds: &recLEDs{lit: -1}, btn: &fakeButton{}, pw: &countingPower{}}
	cfg = cfg.withDefaults()
	r.pm = power.NewManager(cfg.IdleTimeout, r.leds, r.pw, nil)
	r.g = New(cfg, r.leds, r.btn, r.pm, rnd, nil)
	r.pw.onTick = r.g.Ticks
	return r
}

// activate puts the game straight into Active with the given cursor and target.
func (r *rig) activate(cursor, target uint8) {
	r.g.ctx = Context{State: StateActive, Cursor: cursor, Target: target}
	r.g.deb.Reset()
}

func (r *rig) run(n int) {
	for i := 0; i < n; i++ {
		r.g.Tick()
	}
}

func TestNewStartsInInit(t *testing.T) {
	r := newRig(Config{}, &seqRand{vals: []uint32{21}})
	c := r.g.Context()
	if c.State != StateInit {
		t.Fatalf("state = %s", c.State)
	}
	if c.Target != 21%16 {
		t.Fatalf("target = %d, want %d", c.Target, 21%16)
	}
	if c.Cursor != 0 || c.Stage != 0 || c.IdleTicks != 0 || c.PhaseTicks != 0 {
		t.Fatalf("unexpected context %+v", c)
	}
	if r.g.Config() != DefaultConfig() {
		t.Fatal("expected default config")
	}
}

func TestInitSpinsIntoActive(t *testing.T) {
	cfg := Config{InitSpinPeriod: 2, InitSpinPasses: 1}
	r := newRig(cfg, &seqRand{vals: []uint32{3, 7}})

	prevCursor := r.g.Context().Cursor
	for i := 0; i < 10000 && r.g.State() == StateInit; i++ {
		r.g.Tick()
		c := r.g.Context()
		if c.State == StateInit && c.Cursor != prevCursor && c.Cursor != next(prevCursor) {
			t.Fatalf("cursor jumped %d -> %d", prevCursor, c.Cursor)
		}
		if c.State == StateInit && r.leds.lit != int(c.Cursor) {
			t.Fatalf("init shows %d, cursor %d", r.leds.lit, c.Cursor)
		}
		prevCursor = c.Cursor
	}

	c := r.g.Context()
	if c.State != StateActive {
		t.Fatalf("state = %s, want active", c.State)
	}
	if c.Stage != 0 {
		t.Fatalf("stage = %d", c.Stage)
	}
	if c.Cursor != 3 {
		t.Fatalf("cursor = %d, want to stop on the old target 3", c.Cursor)
	}
	if c.Target != 7 {
		t.Fatalf("target = %d, want fresh target 7", c.Target)
	}
	if c.Passes != 2 {
		t.Fatalf("passes = %d, want 2", c.Passes)
	}
	// The cursor steps every third tick from tick 4; the second landing on 3 is step 19.
	if got, want := r.g.Ticks(), uint64(1+3*19); got != want {
		t.Fatalf("active after %d ticks, want %d", got, want)
	}
}

func TestHitAdvancesStage(t *testing.T) {
	r := newRig(Config{}, &seqRand{vals: []uint32{0, 9}})
	r.activate(5, 5)
	r.g.ctx.IdleTicks = 1234
	dir := r.g.ctx.Direction

	r.btn.pressed = true
	r.run(9)
	if r.g.Context().Stage != 0 {
		t.Fatal("hit registered before debounce threshold")
	}
	r.run(1)

	c := r.g.Context()
	if c.State != StateActive {
		t.Fatalf("state = %s", c.State)
	}
	if c.Stage != 1 {
		t.Fatalf("stage = %d, want 1", c.Stage)
	}
	if c.Direction == dir {
		t.Fatal("expected direction to flip")
	}
	if c.Target != 9 {
		t.Fatalf("target = %d, want 9", c.Target)
	}
	if c.IdleTicks != 0 {
		t.Fatalf("idle = %d, want 0", c.IdleTicks)
	}

	// Holding the button does not score again.
	r.run(50)
	if r.g.Context().Stage != 1 {
		t.Fatal("held button scored twice")
	}
}

func TestMissFailsThenResets(t *testing.T) {
	cfg := Config{FailTicks: 500}
	r := newRig(cfg, &seqRand{vals: []uint32{4, 11}})
	r.activate(2, 4)
	r.g.ctx.Stage = 7

	r.btn.pressed = true
	r.run(10)
	if s := r.g.State(); s != StateFail {
		t.Fatalf("state = %s, want fail", s)
	}
	r.btn.pressed = false

	r.run(int(cfg.FailTicks))
	if s := r.g.State(); s != StateFail {
		t.Fatalf("left fail early: %s", s)
	}
	r.run(1)

	c := r.g.Context()
	if c.State != StateInit {
		t.Fatalf("state = %s, want init", c.State)
	}
	if c.Stage != 0 || c.IdleTicks != 0 || c.PhaseTicks != 0 || c.Cursor != 0 {
		t.Fatalf("expected cleared context, got %+v", c)
	}
	if c.Target != 11 {
		t.Fatalf("target = %d, want fresh 11", c.Target)
	}
}

func TestFailBlinksCursor(t *testing.T) {
	r := newRig(Config{}, nil)
	r.g.ctx = Context{State: StateFail, Cursor: 6}

	for i := 0; i < 1024; i++ {
		phase := r.g.ctx.PhaseTicks
		r.g.Tick()
		want := -1
		if phase&(1<<blinkBit) != 0 {
			want = 6
		}
		if r.leds.lit != want {
			t.Fatalf("phase %d: lit %d, want %d", phase, r.leds.lit, want)
		}
	}
}

func TestActiveShowsTargetLessOften(t *testing.T) {
	r := newRig(Config{}, nil)
	r.activate(1, 12)

	var cursor, target int
	for i := 0; i < 800; i++ {
		r.g.Tick()
		switch r.leds.lit {
		case 1:
			cursor++
		case 12:
			target++
		default:
			t.Fatalf("tick %d: lit %d", i, r.leds.lit)
		}
	}
	if target == 0 || cursor <= target {
		t.Fatalf("cursor shown %d times, target %d", cursor, target)
	}
	if target != 100 {
		t.Fatalf("target shown %d times, want once every %d ticks", target, targetEvery)
	}
}

func TestCursorStepsWithDirection(t *testing.T) {
	cfg := Config{BasePeriod: 10, MinPeriod: 1}
	r := newRig(cfg, nil)

	r.activate(0, 8)
	r.run(12)
	if c := r.g.Context().Cursor; c != 15 {
		t.Fatalf("counter-clockwise cursor = %d, want 15", c)
	}

	r.activate(15, 8)
	r.g.ctx.Direction = true
	r.run(12)
	if c := r.g.Context().Cursor; c != 0 {
		t.Fatalf("clockwise cursor = %d, want 0", c)
	}
}

func TestPeriodClamps(t *testing.T) {
	cfg := Config{BasePeriod: 800, StepPerStage: 16, MinPeriod: 16}
	tests := []struct {
		stage uint8
		want  uint32
	}{
		{0, 800},
		{10, 640},
		{48, 32},
		{49, 16},
		{50, 16},
		{255, 16},
	}
	for _, tt := range tests {
		if got := cfg.Period(tt.stage); got != tt.want {
			t.Errorf("Period(%d) = %d, want %d", tt.stage, got, tt.want)
		}
	}

	fast := Config{BasePeriod: 100, StepPerStage: 60, MinPeriod: 30}
	if got := fast.Period(1); got != 40 {
		t.Errorf("Period(1) = %d, want 40", got)
	}
	if got := fast.Period(2); got != 30 {
		t.Errorf("Period(2) = %d, want 30", got)
	}

	// 255 * 0x01010102 wraps to 254 in 32 bits.
	huge := Config{StepPerStage: 0x01010102}.withDefaults()
	for _, stage := range []uint8{1, 2, 255} {
		if got := huge.Period(stage); got != huge.MinPeriod {
			t.Errorf("huge step Period(%d) = %d, want %d", stage, got, huge.MinPeriod)
		}
	}
}

func TestIdleTimeoutSleepsOnTick40001(t *testing.T) {
	r := newRig(Config{IdleTimeout: 40000}, nil)
	r.activate(0, 8)

	r.run(40000)
	if r.pw.calls != 0 {
		t.Fatalf("slept after %d ticks", r.g.Ticks())
	}
	if r.g.State() != StateActive {
		t.Fatalf("state = %s", r.g.State())
	}

	r.run(1)
	if r.pw.calls != 1 {
		t.Fatalf("sleep calls = %d, want 1", r.pw.calls)
	}
	if r.pw.at[0] != 40001 {
		t.Fatalf("slept on tick %d, want 40001", r.pw.at[0])
	}

	c := r.g.Context()
	if c.State != StateInit || c.IdleTicks != 0 || c.PhaseTicks != 0 || c.Stage != 0 {
		t.Fatalf("expected reset context, got %+v", c)
	}
	if r.pm.Sleeps() != 1 {
		t.Fatalf("manager sleeps = %d", r.pm.Sleeps())
	}

	// The attract animation plus a full idle timeout is longer than this.
	r.run(40000)
	if r.pw.calls != 1 {
		t.Fatalf("slept again in init: %d", r.pw.calls)
	}
}

func TestHitResetsIdleTimer(t *testing.T) {
	cfg := Config{IdleTimeout: 1000, BasePeriod: 5000}
	r := newRig(cfg, &seqRand{vals: []uint32{0, 3}})
	r.activate(3, 3)

	r.run(900)
	r.btn.pressed = true
	r.run(10)
	if r.g.Context().Stage != 1 {
		t.Fatal("expected hit")
	}
	r.btn.pressed = false
	r.run(900)
	if r.pw.calls != 0 {
		t.Fatal("slept although a hit reset the idle timer")
	}
	r.run(200)
	if r.pw.calls != 1 {
		t.Fatalf("sleep calls = %d, want 1", r.pw.calls)
	}
}

// TestPlayThroughToWin plays a perfect game with a bot and checks stage monotonicity.
func TestPlayThroughToWin(t *testing.T) {
	cfg := Config{
		BasePeriod:   300,
		StepPerStage: 10,
		MinPeriod:    200,
		MaxStage:     3,
		WinTicks:     1000,
		IdleTimeout:  1 << 30,
	}
	r := newRig(cfg, NewXorshift32(7))
	r.activate(0, 0)

	lastStage := uint8(0)
	hits := 0
	for i := 0; i < 2_000_000 && r.g.State() == StateActive; i++ {
		c := r.g.Context()
		r.btn.pressed = c.Cursor == c.Target && c.PhaseTicks < 100
		r.g.Tick()

		c = r.g.Context()
		if c.State == StateFail {
			t.Fatalf("bot missed at tick %d", r.g.Ticks())
		}
		if c.Stage < lastStage {
			t.Fatalf("stage went down %d -> %d", lastStage, c.Stage)
		}
		if c.Stage > lastStage+1 {
			t.Fatalf("stage skipped %d -> %d", lastStage, c.Stage)
		}
		if c.Stage != lastStage {
			hits++
		}
		lastStage = c.Stage
	}

	c := r.g.Context()
	if c.State != StateWin {
		t.Fatalf("state = %s, want win", c.State)
	}
	if c.Stage != cfg.MaxStage+1 || hits != int(cfg.MaxStage)+1 {
		t.Fatalf("stage = %d hits = %d", c.Stage, hits)
	}

	r.btn.pressed = false
	r.run(int(cfg.WinTicks) + 1)
	if r.g.State() != StateInit || r.g.Context().Stage != 0 {
		t.Fatalf("expected reset after win, got %+v", r.g.Context())
	}
}

func TestWinSweepsRing(t *testing.T) {
	r := newRig(Config{}, nil)
	r.g.ctx = Context{State: StateWin, Cursor: 0}

	seen := make(map[int]bool)
	for i := 0; i < 512; i++ {
		r.g.Tick()
		if r.leds.lit >= 0 {
			seen[r.leds.lit] = true
		}
	}
	if len(seen) != 16 {
		t.Fatalf("win animation lit %d LEDs, want 16", len(seen))
	}
}

func TestCursorAndTargetStayInRange(t *testing.T) {
	cfg := Config{
		InitSpinPeriod: 3,
		BasePeriod:     40,
		StepPerStage:   8,
		MinPeriod:      1,
		MaxStage:       20,
		FailTicks:      300,
		WinTicks:       300,
		IdleTimeout:    5000,
	}
	r := newRig(cfg, NewXorshift32(99))
	noise := NewXorshift32(1234)

	states := make(map[State]bool)
	for i := 0; i < 500_000; i++ {
		// Hold the button in runs of random length.
		if noise.Uint32()%64 == 0 {
			r.btn.pressed = !r.btn.pressed
		}
		r.g.Tick()
		c := r.g.Context()
		if c.Cursor >= 16 || c.Target >= 16 {
			t.Fatalf("tick %d: cursor=%d target=%d", i, c.Cursor, c.Target)
		}
		if r.g.deb.Count() > r.g.deb.Threshold() {
			t.Fatalf("debounce counter %d out of range", r.g.deb.Count())
		}
		states[c.State] = true
	}
	for _, s := range []State{StateInit, StateActive, StateFail} {
		if !states[s] {
			t.Errorf("never reached %s", s)
		}
	}
}

func TestTargetsUniform(t *testing.T) {
	r := newRig(Config{}, NewXorshift32(2024))
	var counts [16]int
	const draws = 16000
	for i := 0; i < draws; i++ {
		counts[r.g.randomTarget()]++
	}
	for i, n := range counts {
		if n < 800 || n > 1200 {
			t.Errorf("target %d drawn %d times out of %d", i, n, draws)
		}
	}
}

func TestTransitionsAreLogged(t *testing.T) {
	var log lines
	leds := &recLEDs{}
	g := New(Config{FailTicks: 10}, leds, &fakeButton{pressed: true}, nil, &seqRand{vals: []uint32{0, 1}}, &log)
	g.ctx = Context{State: StateActive, Cursor: 0, Target: 1}

	for i := 0; i < 30; i++ {
		g.Tick()
	}
	got := strings.Join(log, "\n")
	for _, want := range []string{"game: active -> fail stage=0", "game: fail -> init stage=0"} {
		if !strings.Contains(got, want) {
			t.Errorf("log missing %q:\n%s", want, got)
		}
	}
}

func TestStateString(t *testing.T) {
	if StateWin.String() != "win" || State(9).String() != "unknown" {
		t.Fatal("unexpected state names")
	}
}

type mixRand struct {
	seqRand
	mixed []uint32
}

func (r *mixRand) Mix(v uint32) { r.mixed = append(r.mixed, v) }

func TestPressTimingFeedsRand(t *testing.T) {
	rnd := &mixRand{seqRand: seqRand{vals: []uint32{0, 5}}}
	r := newRig(Config{}, rnd)
	r.activate(0, 0)
	r.btn.pressed = true

	var hitAt uint64
	for i := 0; i < 50 && hitAt == 0; i++ {
		r.g.Tick()
		if r.g.Context().Stage == 1 {
			hitAt = r.g.Ticks()
		}
	}
	if hitAt == 0 {
		t.Fatal("press never registered")
	}
	if len(rnd.mixed) != 1 || rnd.mixed[0] != uint32(hitAt) {
		t.Fatalf("mixed %v, want [%d]", rnd.mixed, hitAt)
	}

	// Holding the button is one press.
	r.run(100)
	if len(rnd.mixed) != 1 {
		t.Fatalf("mixed %v while held", rnd.mixed)
	}
}

func TestXorshiftMix(t *testing.T) {
	a, b := NewXorshift32(7), NewXorshift32(7)
	b.Mix(1234)
	if a.Uint32() == b.Uint32() {
		t.Fatal("mix did not change the sequence")
	}

	z := NewXorshift32(7)
	z.Mix(7 * 0x144CBC89) // 0x144CBC89 inverts 0x9E3779B9 mod 2^32.
	if z.s == 0 {
		t.Fatal("mix left a zero state")
	}
	for i := 0; i < 10; i++ {
		if z.Uint32() == 0 {
			t.Fatal("generator stuck at zero")
		}
	}
}
