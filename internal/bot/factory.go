package bot

import (
	"fmt"
	"strings"
)

// Level selects the brain an agent plays with.
type Level string

const (
	LevelUniform Level = "uniform"
)

// ParseLevel maps a config string to a Level. Empty means uniform.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case "", LevelUniform:
		return LevelUniform, nil
	default:
		return "", fmt.Errorf("unknown bot level: %q", s)
	}
}

// NewBrain creates a brain for the level backed by rng.
func NewBrain(level Level, rng Chooser) (Brain, error) {
	switch level {
	case LevelUniform, "":
		return NewUniformBrain(rng), nil
	default:
		return nil, fmt.Errorf("unknown bot level: %q", level)
	}
}
