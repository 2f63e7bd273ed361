package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"attimuite/internal/ports"
)

// Result captures non-fatal onboarding outcomes.
type Result struct {
	// ProfileUpdateErr is set when the profile update failed but onboarding continued.
	ProfileUpdateErr error
	// ScoreSeeded is false when the user already had a score record.
	ScoreSeeded bool
	// DisplayName is the generated friendly name.
	DisplayName string
}

// Service handles post-auth onboarding for new users.
type Service struct {
	accounts ports.AccountPort
	scores   ports.ScoreSeedPort
	rng      *rand.Rand
}

// NewService constructs an onboarding service with required ports.
// accounts/scores must be non-nil; rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, scores ports.ScoreSeedPort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts: accounts,
		scores:   scores,
		rng:      rng,
	}
}

// OnboardNewUser gives a new account a friendly name and an empty scoreboard.
// Returns a Result with any non-fatal issues and an error if the score record cannot be created.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil || s.scores == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}

	result := Result{DisplayName: s.generateFriendlyName()}
	if err := s.accounts.UpdateProfile(ctx, userID, result.DisplayName, result.DisplayName); err != nil {
		result.ProfileUpdateErr = err
	}

	seeded, err := s.scores.SeedScoreOnce(ctx, userID)
	if err != nil {
		return result, fmt.Errorf("failed to seed score: %w", err)
	}
	result.ScoreSeeded = seeded

	return result, nil
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Happy", "Shiny", "Brave", "Clever", "Swift", "Calm", "Mighty", "Witty", "Sly", "Wild"}
	nouns := []string{"Panda", "Tiger", "Eagle", "Dolphin", "Wolf", "Otter", "Falcon", "Bear", "Fox", "Lion"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
