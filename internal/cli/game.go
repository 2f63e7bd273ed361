package cli

import (
	"context"
	"fmt"

	"attimuite/internal/app"
	"attimuite/internal/bot"
	"attimuite/internal/config"
	"attimuite/internal/i18n"
	"attimuite/internal/logging"
	"attimuite/internal/narration"
)

// game is one local session plus what the TUI needs to present it.
type game struct {
	session  *app.Session
	agent    *bot.Agent
	catalog  *i18n.Catalog
	language string
	logger   *logging.Logger
}

// newGame wires a session against the CPU. rng may be nil for a time-seeded source.
func newGame(s Settings, rng bot.Chooser) (*game, error) {
	cfg := config.Default
	if s.GameConfig != "" {
		c, err := config.ReadGameConfig(s.GameConfig)
		if err != nil {
			return nil, err
		}
		cfg = c
	}

	logger, err := logging.NewFile(s.LogFile, firstNonEmpty(s.LogLevel, "info"))
	if err != nil {
		return nil, err
	}

	level, err := bot.ParseLevel(cfg.BotLevel)
	if err != nil {
		return nil, err
	}
	brain, err := bot.NewBrain(level, rng)
	if err != nil {
		return nil, err
	}
	agent := bot.NewAgent(bot.DefaultIdentity, brain)

	speed := s.SpeechRate
	if speed == 0 {
		speed = cfg.SpeechRate
	}
	settings := narration.Settings{
		Language: firstNonEmpty(s.Language, cfg.Language),
		Voice:    firstNonEmpty(s.Voice, agent.Voice, cfg.Voice),
		Speed:    speed,
	}
	builder := narration.NewBuilder(settings)

	session, err := app.NewSession(app.Options{
		Timings: app.Timings{
			InitialRock: cfg.InitialRockDelay(),
			Reveal:      cfg.RevealDelay(),
			Buffer:      cfg.BufferDelay(),
		},
		Opponent:  agent,
		Store:     scoreStore(s),
		Narration: builder,
		Logger:    logger.WithField("client", "tui"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	logger.Info("Session %s started against %s", session.ID(), agent.Name)

	return &game{
		session:  session,
		agent:    agent,
		catalog:  i18n.Default(),
		language: builder.Settings().Language,
		logger:   logger,
	}, nil
}

func (g *game) close(ctx context.Context) {
	g.session.Close(ctx)
	_ = g.logger.Sync()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
