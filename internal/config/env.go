package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// RuntimeEnv is the server configuration passed through the Nakama runtime env map.
type RuntimeEnv struct {
	GameConfigPath   string        `env:"attimuite_game_config" envDefault:"data/game_config.json"`
	IdentitiesPath   string        `env:"attimuite_cpu_identities" envDefault:"data/cpu_identities.json"`
	ClipSecret       string        `env:"attimuite_clip_secret"`
	ClipIssuer       string        `env:"attimuite_clip_issuer" envDefault:"attimuite"`
	ClipBaseURL      string        `env:"attimuite_clip_base_url"`
	ClipTTL          time.Duration `env:"attimuite_clip_ttl" envDefault:"5m"`
	NarrationEnabled bool          `env:"attimuite_narration_enabled" envDefault:"true"`
}

// ParseEnv fills target from vars instead of the process environment.
func ParseEnv(target any, vars map[string]string) error {
	if vars == nil {
		vars = map[string]string{}
	}
	if err := env.ParseWithOptions(target, env.Options{Environment: vars}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadRuntimeEnv parses the Nakama runtime env map.
func LoadRuntimeEnv(vars map[string]string) (RuntimeEnv, error) {
	var e RuntimeEnv
	if err := ParseEnv(&e, vars); err != nil {
		return RuntimeEnv{}, err
	}
	return e, nil
}

// ClipSigningEnabled reports whether narration clip URLs can be signed.
func (e RuntimeEnv) ClipSigningEnabled() bool {
	return e.ClipSecret != "" && e.ClipBaseURL != ""
}
