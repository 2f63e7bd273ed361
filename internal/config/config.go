package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

type GameConfig struct {
	// Staged sequence delays in milliseconds. Zero keeps the built-in default.
	InitialRockMs int `json:"initial_rock_ms"`
	RevealMs      int `json:"reveal_ms"`
	BufferMs      int `json:"buffer_ms"`
	// TickRate is the match loop frequency in ticks per second.
	TickRate int `json:"tick_rate"`

	Language   string  `json:"language"`
	Voice      string  `json:"voice"`
	SpeechRate float64 `json:"speech_rate"`
	BotLevel   string  `json:"bot_level"`
}

// Default mirrors data/game_config.json.
var Default = GameConfig{
	InitialRockMs: 1200,
	RevealMs:      2000,
	BufferMs:      250,
	TickRate:      10,
	Language:      "ja",
	Voice:         "girl",
	SpeechRate:    0.5,
	BotLevel:      "uniform",
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		c, err := ReadGameConfig(path)
		if err != nil {
			loadErr = err
			return
		}
		cfg = &c
	})
	return loadErr
}

// ReadGameConfig parses a config file without touching the global one.
// Fields missing from the file keep their defaults.
func ReadGameConfig(path string) (GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GameConfig{}, fmt.Errorf("failed to read game config: %w", err)
	}

	c := Default
	if err := json.Unmarshal(data, &c); err != nil {
		return GameConfig{}, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	return c, nil
}

// GetGameConfig returns the global game configuration, or the defaults when none was loaded.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return Default
	}
	return *cfg
}

func (c GameConfig) InitialRockDelay() time.Duration {
	return millis(c.InitialRockMs, Default.InitialRockMs)
}

func (c GameConfig) RevealDelay() time.Duration {
	return millis(c.RevealMs, Default.RevealMs)
}

func (c GameConfig) BufferDelay() time.Duration {
	return millis(c.BufferMs, Default.BufferMs)
}

// TickInterval is the virtual time one match loop tick advances.
func (c GameConfig) TickInterval() time.Duration {
	rate := c.TickRate
	if rate <= 0 {
		rate = Default.TickRate
	}
	return time.Second / time.Duration(rate)
}

func millis(v, fallback int) time.Duration {
	if v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Millisecond
}
