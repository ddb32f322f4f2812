//go:build !tinygo

package app

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"reflex/firmware/game"
)

// envConfig lists the game tunables that can be overridden from the environment.
// Unset or zero values keep the stock timing.
type envConfig struct {
	InitSpinPeriod    uint32 `env:"REFLEX_INIT_SPIN_PERIOD"`
	InitSpinPasses    uint8  `env:"REFLEX_INIT_SPIN_PASSES"`
	BasePeriod        uint32 `env:"REFLEX_BASE_PERIOD"`
	StepPerStage      uint32 `env:"REFLEX_STEP_PER_STAGE"`
	MinPeriod         uint32 `env:"REFLEX_MIN_PERIOD"`
	MaxStage          uint8  `env:"REFLEX_MAX_STAGE"`
	FailTicks         uint32 `env:"REFLEX_FAIL_TICKS"`
	WinTicks          uint32 `env:"REFLEX_WIN_TICKS"`
	IdleTimeout       uint32 `env:"REFLEX_IDLE_TIMEOUT"`
	DebounceThreshold uint8  `env:"REFLEX_DEBOUNCE_THRESHOLD"`
}

// LoadConfigFromEnv reads REFLEX_* game tunables.
func LoadConfigFromEnv() (Config, error) {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return Config{Game: game.Config{
		InitSpinPeriod:    e.InitSpinPeriod,
		InitSpinPasses:    e.InitSpinPasses,
		BasePeriod:        e.BasePeriod,
		StepPerStage:      e.StepPerStage,
		MinPeriod:         e.MinPeriod,
		MaxStage:          e.MaxStage,
		FailTicks:         e.FailTicks,
		WinTicks:          e.WinTicks,
		IdleTimeout:       e.IdleTimeout,
		DebounceThreshold: e.DebounceThreshold,
	}}, nil
}
