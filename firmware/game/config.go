package game

import (
	"reflex/firmware/button"
	"reflex/firmware/power"
)

// Config holds the game timing, in ticks. Zero fields take the defaults.
type Config struct {
	// InitSpinPeriod is the cursor step period of the attract animation.
	InitSpinPeriod uint32
	// InitSpinPasses is how many times the spinning cursor must land on the target
	// before play starts (play starts on pass InitSpinPasses+1).
	InitSpinPasses uint8

	// BasePeriod is the cursor step period at stage 0.
	BasePeriod uint32
	// StepPerStage shortens the period for every stage cleared.
	StepPerStage uint32
	// MinPeriod is the floor of the step period.
	MinPeriod uint32
	// MaxStage is the last stage; clearing it wins.
	MaxStage uint8

	FailTicks   uint32
	WinTicks    uint32
	IdleTimeout uint32

	DebounceThreshold uint8
}

const (
	DefaultInitSpinPeriod = 100
	DefaultInitSpinPasses = 3
	DefaultBasePeriod     = 800
	DefaultStepPerStage   = 16
	DefaultMinPeriod      = 16
	DefaultMaxStage       = 45
	DefaultFailTicks      = 8000
	DefaultWinTicks       = 8000

	// blinkBit selects the PhaseTicks bit that blinks the Fail/Win animations.
	blinkBit = 7
	// targetEvery shows the target once per this many ticks; the cursor the rest.
	targetEvery = 8
)

// DefaultConfig returns the stock timing for a 1 MHz part with an unscaled 8-bit timer.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.InitSpinPeriod == 0 {
		c.InitSpinPeriod = DefaultInitSpinPeriod
	}
	if c.InitSpinPasses == 0 {
		c.InitSpinPasses = DefaultInitSpinPasses
	}
	if c.BasePeriod == 0 {
		c.BasePeriod = DefaultBasePeriod
	}
	if c.StepPerStage == 0 {
		c.StepPerStage = DefaultStepPerStage
	}
	if c.MinPeriod == 0 {
		c.MinPeriod = DefaultMinPeriod
	}
	if c.MaxStage == 0 {
		c.MaxStage = DefaultMaxStage
	}
	if c.MaxStage == 255 {
		// Stage must be able to pass MaxStage without wrapping.
		c.MaxStage = 254
	}
	if c.FailTicks == 0 {
		c.FailTicks = DefaultFailTicks
	}
	if c.WinTicks == 0 {
		c.WinTicks = DefaultWinTicks
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = power.DefaultTimeout
	}
	if c.DebounceThreshold == 0 {
		c.DebounceThreshold = button.DefaultThreshold
	}
	return c
}

// Period returns the cursor step period for stage, never below MinPeriod.
func (c Config) Period(stage uint8) uint32 {
	dec := uint64(stage) * uint64(c.StepPerStage)
	if dec >= uint64(c.BasePeriod) || uint64(c.BasePeriod)-dec < uint64(c.MinPeriod) {
		return c.MinPeriod
	}
	return c.BasePeriod - uint32(dec)
}
