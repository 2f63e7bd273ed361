package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"

	"attimuite/internal/domain"
	"attimuite/internal/narration"
	"attimuite/internal/score"
)

// clipSigner is configured by InitModule from the runtime env; nil disables clip signing.
var clipSigner *narration.ClipSigner

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	rpcs := map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		RpcSoloMatch:     RpcSoloMatchHandler,
		RpcScoreGet:      RpcScoreGetHandler,
		RpcScoreReset:    RpcScoreResetHandler,
		RpcNarrationClip: RpcNarrationClipHandler,
	}
	for id, fn := range rpcs {
		if err := initializer.RegisterRpc(id, fn); err != nil {
			return fmt.Errorf("register rpc %s: %w", id, err)
		}
	}
	return nil
}

// SoloMatchRequest optionally carries the caller's narration preferences.
type SoloMatchRequest struct {
	Language string `json:"language"`
	Voice    string `json:"voice"`
}

// SoloMatchResponse is returned to clients after a solo match is created.
type SoloMatchResponse struct {
	MatchID string `json:"match_id"`
}

type matchCreator interface {
	MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error)
}

// RpcSoloMatchHandler creates a match reserved for the caller against the CPU.
func RpcSoloMatchHandler(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return soloMatch(ctx, logger, nk, payload)
}

func soloMatch(ctx context.Context, logger runtime.Logger, nk matchCreator, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	var req SoloMatchRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("Invalid payload", codeInvalidArgument)
		}
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameAttimuite, map[string]interface{}{
		"user_id":  userID,
		"language": req.Language,
		"voice":    req.Voice,
	})
	if err != nil {
		logger.Error("RpcSoloMatch [User:%s]: Failed to create match: %v", userID, err)
		return "", runtime.NewError("Internal error", codeInternal)
	}
	logger.Info("RpcSoloMatch [User:%s]: Created match %s", userID, matchID)

	b, _ := json.Marshal(SoloMatchResponse{MatchID: matchID})
	return string(b), nil
}

// RpcScoreGetHandler returns the caller's stored score, zero when none exists.
func RpcScoreGetHandler(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return scoreGet(ctx, logger, nk)
}

func scoreGet(ctx context.Context, logger runtime.Logger, nk storageModule) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	sc, err := NewStorageScoreStore(nk, userID).Load(ctx)
	if err != nil && !errors.Is(err, score.ErrNotFound) {
		logger.Error("RpcScoreGet [User:%s]: %v", userID, err)
		return "", runtime.NewError("Internal error", codeInternal)
	}
	b, _ := json.Marshal(sc)
	return string(b), nil
}

// ScoreResetRequest names the caller's running match, if any, so it resets too.
type ScoreResetRequest struct {
	MatchID string `json:"match_id"`
}

type scoreResetModule interface {
	storageModule
	MatchSignal(ctx context.Context, id string, data string) (string, error)
}

// RpcScoreResetHandler zeroes the caller's score and resets their running match.
func RpcScoreResetHandler(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return scoreReset(ctx, logger, nk, payload)
}

func scoreReset(ctx context.Context, logger runtime.Logger, nk scoreResetModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	var req ScoreResetRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("Invalid payload", codeInvalidArgument)
		}
	}

	if err := NewStorageScoreStore(nk, userID).Save(ctx, domain.Score{}); err != nil {
		logger.Error("RpcScoreReset [User:%s]: %v", userID, err)
		return "", runtime.NewError("Internal error", codeInternal)
	}

	if req.MatchID != "" {
		signal, _ := json.Marshal(matchSignal{Kind: SignalScoreReset})
		if _, err := nk.MatchSignal(ctx, req.MatchID, string(signal)); err != nil {
			// The stored score is already zero; the match picks it up on next open.
			logger.Warn("RpcScoreReset [User:%s]: Failed to signal match %s: %v", userID, req.MatchID, err)
		}
	}

	b, _ := json.Marshal(domain.Score{})
	return string(b), nil
}

// NarrationClipRequest asks for the pre-rendered clip of one message key.
type NarrationClipRequest struct {
	Key      string  `json:"key"`
	Language string  `json:"language"`
	Voice    string  `json:"voice"`
	Speed    float64 `json:"speed"`
}

// NarrationClipResponse is the signed clip plus the shaped narration request.
type NarrationClipResponse struct {
	narration.SignedClip
	Request narration.Request `json:"request"`
}

// RpcNarrationClipHandler signs a download URL for a narration clip.
func RpcNarrationClipHandler(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	if clipSigner == nil {
		return "", runtime.NewError("Narration clips are not configured", codeNotFound)
	}

	var req NarrationClipRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", codeInvalidArgument)
	}
	key := domain.MessageKey(req.Key)
	if !key.Known() {
		return "", runtime.NewError("Unknown message key", codeInvalidArgument)
	}

	builder := narration.NewBuilder(narration.Settings{Language: req.Language, Voice: req.Voice, Speed: req.Speed})
	shaped := builder.Build(key, 0)
	clip, err := clipSigner.Sign(userID, shaped)
	if err != nil {
		logger.Error("Failed to sign narration clip: %v", err)
		return "", runtime.NewError("Internal error", codeInternal)
	}

	b, _ := json.Marshal(NarrationClipResponse{SignedClip: clip, Request: shaped})
	return string(b), nil
}

func callerID(ctx context.Context) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("Authentication required", codeUnauthenticated)
	}
	return userID, nil
}
