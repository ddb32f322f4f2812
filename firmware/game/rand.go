package game

// Rand is a source of uniformly distributed 32-bit values.
type Rand interface {
	Uint32() uint32
}

// Mixer is a Rand that can fold outside entropy into its state.
type Mixer interface {
	Rand
	Mix(v uint32)
}

// Xorshift32 is a small, allocation-free generator fit for an 8-bit part.
type Xorshift32 struct {
	s uint32
}

func NewXorshift32(seed uint32) *Xorshift32 {
	if seed == 0 {
		seed = 0x9E3779B9
	}
	return &Xorshift32{s: seed}
}

func (x *Xorshift32) Uint32() uint32 {
	s := x.s
	s ^= s << 13
	s ^= s >> 17
	s ^= s << 5
	x.s = s
	return s
}

// Mix folds v into the state. The state never becomes zero.
func (x *Xorshift32) Mix(v uint32) {
	x.s ^= v * 0x9E3779B9
	if x.s == 0 {
		x.s = 0x9E3779B9
	}
}
