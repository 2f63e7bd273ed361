package ports

import (
	"context"

	"attimuite/internal/domain"
)

// ScoreStore persists the player/cpu score between sessions.
type ScoreStore interface {
	// Load returns the stored score. Implementations return score.ErrNotFound
	// when nothing has been stored yet.
	Load(ctx context.Context) (domain.Score, error)

	// Save replaces the stored score.
	Save(ctx context.Context, score domain.Score) error
}

// ScoreSeedPort creates the initial score record for a new user.
type ScoreSeedPort interface {
	// SeedScoreOnce writes a zero score if the user has no record yet.
	// Returns seeded=false when a record already existed.
	SeedScoreOnce(ctx context.Context, userID string) (bool, error)
}
