package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"

	"attimuite/internal/domain"
	"attimuite/internal/ports"
	"attimuite/internal/score"
)

// storageModule is the part of runtime.NakamaModule the score adapters use.
type storageModule interface {
	StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error)
	StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error)
}

// StorageScoreStore keeps one user's score in Nakama storage.
type StorageScoreStore struct {
	nk     storageModule
	userID string
}

// NewStorageScoreStore creates a store for userID.
func NewStorageScoreStore(nk storageModule, userID string) *StorageScoreStore {
	return &StorageScoreStore{nk: nk, userID: userID}
}

func (s *StorageScoreStore) Load(ctx context.Context) (domain.Score, error) {
	if s.userID == "" {
		return domain.Score{}, fmt.Errorf("userID is required")
	}
	objects, err := s.nk.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: scoreCollection,
		Key:        scoreKey,
		UserID:     s.userID,
	}})
	if err != nil {
		return domain.Score{}, fmt.Errorf("failed to read score: %w", err)
	}
	if len(objects) == 0 || objects[0].GetValue() == "" {
		return domain.Score{}, score.ErrNotFound
	}

	var sc domain.Score
	if err := json.Unmarshal([]byte(objects[0].GetValue()), &sc); err != nil {
		return domain.Score{}, fmt.Errorf("failed to unmarshal score: %w", err)
	}
	return sc.Normalize(), nil
}

func (s *StorageScoreStore) Save(ctx context.Context, sc domain.Score) error {
	return s.write(ctx, sc.Normalize(), "")
}

func (s *StorageScoreStore) write(ctx context.Context, sc domain.Score, version string) error {
	if s.userID == "" {
		return fmt.Errorf("userID is required")
	}
	value, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("failed to marshal score: %w", err)
	}
	_, err = s.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
		Collection:      scoreCollection,
		Key:             scoreKey,
		UserID:          s.userID,
		Value:           string(value),
		Version:         version,
		PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}})
	if err != nil {
		return fmt.Errorf("failed to write score: %w", err)
	}
	return nil
}

// NakamaScoreSeedAdapter creates the zero score record for new accounts.
type NakamaScoreSeedAdapter struct {
	nk storageModule
}

func NewNakamaScoreSeedAdapter(nk storageModule) *NakamaScoreSeedAdapter {
	return &NakamaScoreSeedAdapter{nk: nk}
}

// SeedScoreOnce writes a zero score only if none exists yet.
func (a *NakamaScoreSeedAdapter) SeedScoreOnce(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("userID is required")
	}
	// Version "*" makes the write create-only.
	err := NewStorageScoreStore(a.nk, userID).write(ctx, domain.Score{}, "*")
	if err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return false, nil
		}
		return false, fmt.Errorf("failed to seed score: %w", err)
	}
	return true, nil
}

var (
	_ ports.ScoreStore    = (*StorageScoreStore)(nil)
	_ ports.ScoreSeedPort = (*NakamaScoreSeedAdapter)(nil)
)
