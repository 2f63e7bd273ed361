package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"

	"attimuite/internal/config"
	"attimuite/internal/narration"
)

// InitModule wires RPCs, the match handler and the onboarding hook.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, err := config.LoadRuntimeEnv(runtimeEnv(ctx))
	if err != nil {
		return err
	}
	clipSigner = newClipSigner(env, logger)

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameAttimuite, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(clipSigner), nil
	}); err != nil {
		return err
	}

	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}

	logger.Info("Attimuite Go module loaded.")
	return nil
}

// newClipSigner returns nil when narration clips are turned off or not configured.
func newClipSigner(env config.RuntimeEnv, logger runtime.Logger) *narration.ClipSigner {
	switch {
	case !env.NarrationEnabled:
		logger.Info("Narration clip signing disabled by attimuite_narration_enabled=false.")
		return nil
	case !env.ClipSigningEnabled():
		logger.Warn("Narration clip signing disabled: attimuite_clip_secret or attimuite_clip_base_url missing.")
		return nil
	}
	return narration.NewClipSigner(env.ClipSecret, env.ClipIssuer, env.ClipBaseURL, env.ClipTTL)
}
