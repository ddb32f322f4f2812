//go:build !tinygo

package main

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v2"

	"reflex/firmware/game"
)

const defaultHold = 30

// script is one replay scenario. Times are in ticks.
type script struct {
	Name  string `yaml:"name"`
	Seed  uint32 `yaml:"seed"`
	Ticks uint64 `yaml:"ticks"`
	// Autoplay presses by itself while Active: "hit" when the cursor is on the target,
	// "miss" when it is not.
	Autoplay string        `yaml:"autoplay"`
	Hold     uint64        `yaml:"hold"`
	Game     gameOverrides `yaml:"game"`
	Presses  []uint64      `yaml:"presses"`
	Expect   expect        `yaml:"expect"`
}

type gameOverrides struct {
	InitSpinPeriod    uint32 `yaml:"init_spin_period"`
	InitSpinPasses    uint8  `yaml:"init_spin_passes"`
	BasePeriod        uint32 `yaml:"base_period"`
	StepPerStage      uint32 `yaml:"step_per_stage"`
	MinPeriod         uint32 `yaml:"min_period"`
	MaxStage          uint8  `yaml:"max_stage"`
	FailTicks         uint32 `yaml:"fail_ticks"`
	WinTicks          uint32 `yaml:"win_ticks"`
	IdleTimeout       uint32 `yaml:"idle_timeout"`
	DebounceThreshold uint8  `yaml:"debounce_threshold"`
}

func (o gameOverrides) config() game.Config {
	return game.Config{
		InitSpinPeriod:    o.InitSpinPeriod,
		InitSpinPasses:    o.InitSpinPasses,
		BasePeriod:        o.BasePeriod,
		StepPerStage:      o.StepPerStage,
		MinPeriod:         o.MinPeriod,
		MaxStage:          o.MaxStage,
		FailTicks:         o.FailTicks,
		WinTicks:          o.WinTicks,
		IdleTimeout:       o.IdleTimeout,
		DebounceThreshold: o.DebounceThreshold,
	}
}

// expect lists the checks run after the replay. Unset fields are not checked.
type expect struct {
	State    string   `yaml:"state"`
	Stage    *uint8   `yaml:"stage"`
	MinStage *uint8   `yaml:"min_stage"`
	Sleeps   *uint32  `yaml:"sleeps"`
	Logs     []string `yaml:"logs"`
	NoLogs   []string `yaml:"no_logs"`
}

func loadScript(path string) (*script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %q: %w", path, err)
	}
	s, err := parseScript(data)
	if err != nil {
		return nil, fmt.Errorf("script %q: %w", path, err)
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}

func parseScript(data []byte) (*script, error) {
	var s script
	if err := yaml.UnmarshalStrict(data, &s); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if s.Ticks == 0 {
		return nil, fmt.Errorf("ticks must be > 0")
	}
	switch s.Autoplay {
	case "", "hit", "miss":
	default:
		return nil, fmt.Errorf("unknown autoplay %q", s.Autoplay)
	}
	if s.Hold == 0 {
		s.Hold = defaultHold
	}
	sort.Slice(s.Presses, func(i, j int) bool { return s.Presses[i] < s.Presses[j] })
	return &s, nil
}
