package nakama

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/form3tech-oss/jwt-go"
	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"

	"attimuite/internal/app/onboarding"
)

// AfterAuthenticateDevice names new accounts and seeds their scoreboard.
func AfterAuthenticateDevice(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, out *api.Session, in *api.AuthenticateDeviceRequest) error {
	if out == nil || !out.Created {
		return nil
	}

	userID, err := sessionUserID(ctx, out)
	if err != nil {
		logger.Error("AfterAuthenticateDevice: %v", err)
		return err
	}
	logger.Info("Onboarding new user %s", userID)

	service := onboarding.NewService(NewNakamaAccountAdapter(nk), NewNakamaScoreSeedAdapter(nk), nil)
	result, err := service.OnboardNewUser(ctx, userID)
	if result.ProfileUpdateErr != nil {
		logger.Warn("AfterAuthenticateDevice: Failed to update profile for user %s: %v", userID, result.ProfileUpdateErr)
	}
	if err != nil {
		logger.Error("AfterAuthenticateDevice: Onboarding failed for user %s: %v", userID, err)
		return err
	}
	if !result.ScoreSeeded {
		logger.Info("AfterAuthenticateDevice: Score already present for user %s", userID)
	}
	return nil
}

// sessionUserID prefers the runtime context and falls back to the session token's uid claim.
func sessionUserID(ctx context.Context, out *api.Session) (string, error) {
	if userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string); ok && userID != "" {
		return userID, nil
	}
	userID, err := extractUserIDFromToken(out.Token)
	if err != nil {
		return "", fmt.Errorf("failed to extract user ID from token: %w", err)
	}
	return userID, nil
}

// extractUserIDFromToken reads the uid claim. The token was just issued by
// Nakama, so the signature is not checked here.
func extractUserIDFromToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("failed to parse session token: %w", err)
	}
	uid, _ := claims["uid"].(string)
	if uid == "" {
		return "", fmt.Errorf("token claims missing uid")
	}
	return uid, nil
}
