package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"

	"attimuite/internal/domain"
	"attimuite/internal/narration"
	"attimuite/internal/ports"
	"attimuite/internal/score"
)

// Opponent supplies the computer's draws.
type Opponent interface {
	PickHand() domain.Hand
	PickDirection() domain.Direction
}

// Options configure a Session. Opponent is required.
type Options struct {
	SessionID string
	Timings   Timings
	Opponent  Opponent
	Store     ports.ScoreStore
	Narration *narration.Builder
	Logger    runtime.Logger
}

// Session is one human-vs-computer game. It is not safe for concurrent use:
// hosts drive it from a single loop and dispatch the events each call returns.
type Session struct {
	id       string
	timings  Timings
	opponent Opponent
	store    ports.ScoreStore
	narrator *narration.Builder
	logger   runtime.Logger
	sched    *Scheduler

	phase           domain.Phase
	playerHand      domain.Hand
	cpuHand         domain.Hand
	playerDirection domain.Direction
	cpuDirection    domain.Direction
	isCPUAttacker   bool
	finalWinner     domain.Side
	message         domain.MessageKey
	messageSeq      uint64
	score           domain.Score
	transitioning   bool
	controlsVisible bool

	outbox    []Event
	narration []narration.Request
}

var ErrNoOpponent = errors.New("session requires an opponent")

// NewSession builds an idle session. Call Open to load the stored score.
func NewSession(opts Options) (*Session, error) {
	if opts.Opponent == nil {
		return nil, ErrNoOpponent
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	if opts.Narration == nil {
		opts.Narration = narration.NewBuilder(narration.Settings{})
	}
	return &Session{
		id:              opts.SessionID,
		timings:         opts.Timings.withDefaults(),
		opponent:        opts.Opponent,
		store:           opts.Store,
		narrator:        opts.Narration,
		logger:          opts.Logger,
		sched:           NewScheduler(),
		phase:           domain.PhaseIdle,
		controlsVisible: true,
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Snapshot returns the current presentation view.
func (s *Session) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		SessionID:            s.id,
		Phase:                s.phase,
		PlayerHand:           s.playerHand,
		CPUHand:              s.cpuHand,
		PlayerDirection:      s.playerDirection,
		CPUDirection:         s.cpuDirection,
		IsCPUAttacker:        s.isCPUAttacker,
		FinalWinner:          s.finalWinner,
		Message:              s.message,
		MessageSeq:           s.messageSeq,
		Score:                s.score,
		IsTransitioning:      s.transitioning,
		InputControlsVisible: s.controlsVisible,
	}
}

// Pending reports how many timed steps are still queued.
func (s *Session) Pending() int {
	return s.sched.Pending()
}

// SetNarration replaces the narration preferences for later messages.
func (s *Session) SetNarration(settings narration.Settings) {
	s.narrator.SetSettings(settings)
}

// Open loads the stored score. A missing record starts from zero; other
// failures are logged and the session keeps its in-memory score.
func (s *Session) Open(ctx context.Context) []Event {
	if s.store != nil {
		loaded, err := s.store.Load(ctx)
		switch {
		case err == nil:
			s.score = loaded.Normalize()
		case errors.Is(err, score.ErrNotFound):
		default:
			s.warn("failed to load score", err)
		}
	}
	s.publish()
	return s.drain()
}

// Close finishes any staged sequence, so a duel already decided still scores,
// then flushes the score to storage. Failures are logged only.
func (s *Session) Close(ctx context.Context) {
	s.sched.Flush(ctx)
	s.drain()
	s.persist(ctx)
}

// Start plays the opening rock display and moves to ready. No-op unless idle.
func (s *Session) Start() []Event {
	if s.phase != domain.PhaseIdle {
		return nil
	}
	s.showInitialRock()
	s.publish()
	s.sched.Stage(Step{Delay: s.timings.InitialRock, Run: s.finishInitialRock})
	return s.drain()
}

// PickHand plays one janken throw for the player.
func (s *Session) PickHand(hand domain.Hand) []Event {
	if s.transitioning || (s.phase != domain.PhaseReady && s.phase != domain.PhaseJanken) {
		s.debug("pick hand rejected", "phase", s.phase)
		return nil
	}
	if _, err := domain.ParseHand(string(hand)); err != nil {
		s.debug("pick hand rejected", "hand", hand)
		return nil
	}

	s.phase = domain.PhaseJanken
	s.playerHand = hand
	s.cpuHand = s.opponent.PickHand()
	s.transitioning = true

	switch domain.ResolveJanken(s.playerHand, s.cpuHand) {
	case domain.OutcomeTie:
		s.sched.Stage(Step{Delay: s.timings.Reveal, Run: func(context.Context) {
			s.clearHands()
			s.setMessage(domain.MsgTie)
			s.phase = domain.PhaseReady
			s.transitioning = false
			s.publish()
		}})
	case domain.OutcomePlayer:
		s.isCPUAttacker = false
		s.setMessage(domain.MsgPlayerPoints)
		s.stageEnterAimm(domain.MsgPointDirection)
	case domain.OutcomeCPU:
		s.isCPUAttacker = true
		s.setMessage(domain.MsgCPUPoints)
		s.stageEnterAimm(domain.MsgAcchiMuiteHoi)
	}
	s.publish()
	return s.drain()
}

func (s *Session) stageEnterAimm(intro domain.MessageKey) {
	s.sched.Stage(
		Step{Delay: s.timings.Reveal, Run: func(context.Context) {
			s.clearHands()
			s.publish()
		}},
		Step{Delay: s.timings.Buffer, Run: func(context.Context) {
			s.phase = domain.PhaseAimm
			s.playerDirection = ""
			s.cpuDirection = ""
			s.controlsVisible = true
			s.setMessage(intro)
			s.transitioning = false
			s.publish()
		}},
	)
}

// PointDirection commits the player's direction; the computer reveals at the same time.
func (s *Session) PointDirection(dir domain.Direction) []Event {
	if s.transitioning || s.phase != domain.PhaseAimm {
		s.debug("point direction rejected", "phase", s.phase)
		return nil
	}
	if _, err := domain.ParseDirection(string(dir)); err != nil {
		s.debug("point direction rejected", "direction", dir)
		return nil
	}

	s.transitioning = true
	s.playerDirection = dir
	s.cpuDirection = s.opponent.PickDirection()
	s.evaluateDuel(!s.isCPUAttacker)
	s.publish()
	return s.drain()
}

func (s *Session) evaluateDuel(attackerIsPlayer bool) {
	attacker, defender := s.cpuDirection, s.playerDirection
	if attackerIsPlayer {
		attacker, defender = s.playerDirection, s.cpuDirection
	}
	if attacker == "" || defender == "" {
		s.transitioning = false
		return
	}

	if domain.AttackerWinsDuel(attacker, defender) {
		winner, msg := domain.SideCPU, domain.MsgCPUWins
		if attackerIsPlayer {
			winner, msg = domain.SidePlayer, domain.MsgPlayerWins
		}
		s.sched.Stage(
			Step{Delay: s.timings.Reveal, Run: func(ctx context.Context) {
				s.phase = domain.PhaseResult
				s.finalWinner = winner
				s.setMessage(msg)
				s.score = s.score.Add(winner)
				s.publish()
				s.persist(ctx)
			}},
			Step{Delay: s.timings.Reveal, Run: func(context.Context) {
				s.resetAll()
			}},
		)
		return
	}

	s.clearHands()
	s.controlsVisible = false
	s.sched.Stage(
		Step{Delay: s.timings.Reveal, Run: func(context.Context) {
			s.playerDirection = ""
			s.cpuDirection = ""
			s.setMessage(domain.MsgNoDecision)
			s.publish()
		}},
		Step{Delay: s.timings.Reveal, Run: func(context.Context) {
			s.showInitialRock()
			s.publish()
		}},
		Step{Delay: s.timings.InitialRock, Run: func(ctx context.Context) {
			s.controlsVisible = true
			s.finishInitialRock(ctx)
		}},
	)
}

// ResetAll abandons the current round and returns to ready via the rock display.
// Scores are kept.
func (s *Session) ResetAll() []Event {
	s.resetAll()
	return s.drain()
}

// ResetScoresAndAll zeroes and persists the score, then resets the round.
func (s *Session) ResetScoresAndAll(ctx context.Context) []Event {
	s.score = domain.Score{}
	s.persist(ctx)
	s.resetAll()
	return s.drain()
}

// ApplyRemoteScore folds a score received from another device into the session.
// Phase, lock and pending steps are left untouched.
func (s *Session) ApplyRemoteScore(remote domain.Score) []Event {
	remote = remote.Normalize()
	if remote == s.score {
		return nil
	}
	s.score = remote
	s.publish()
	return s.drain()
}

// Advance moves the session clock forward by d and returns the events of
// every step that ran.
func (s *Session) Advance(ctx context.Context, d time.Duration) []Event {
	s.sched.Advance(ctx, d)
	return s.drain()
}

func (s *Session) resetAll() {
	s.sched.Clear()
	s.finalWinner = domain.SideNone
	s.playerDirection = ""
	s.cpuDirection = ""
	s.controlsVisible = true
	s.showInitialRock()
	s.publish()
	s.sched.Stage(Step{Delay: s.timings.InitialRock, Run: s.finishInitialRock})
}

func (s *Session) showInitialRock() {
	s.playerHand = domain.Rock
	s.cpuHand = domain.Rock
	s.setMessage(domain.MsgInitialRock)
	s.transitioning = true
}

func (s *Session) finishInitialRock(context.Context) {
	s.clearHands()
	s.phase = domain.PhaseReady
	s.setMessage(domain.MsgJankenPon)
	s.transitioning = false
	s.publish()
}

func (s *Session) clearHands() {
	s.playerHand = ""
	s.cpuHand = ""
}

// setMessage always bumps the sequence so a repeated key is narrated again.
func (s *Session) setMessage(key domain.MessageKey) {
	s.message = key
	s.messageSeq++
	s.narration = append(s.narration, s.narrator.Build(key, s.messageSeq))
}

func (s *Session) publish() {
	s.outbox = append(s.outbox, Event{
		Kind:    EventStateChanged,
		Payload: StateChangedPayload{Snapshot: s.Snapshot()},
	})
	for _, req := range s.narration {
		s.outbox = append(s.outbox, Event{Kind: EventNarration, Payload: NarrationPayload{Request: req}})
	}
	s.narration = nil
}

func (s *Session) drain() []Event {
	events := s.outbox
	s.outbox = nil
	return events
}

func (s *Session) persist(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, s.score); err != nil {
		s.warn("failed to save score", err)
	}
}

func (s *Session) warn(msg string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.WithField("session_id", s.id).WithField("error", err).Warn(msg)
}

func (s *Session) debug(msg string, key string, value any) {
	if s.logger == nil {
		return
	}
	s.logger.WithField("session_id", s.id).WithField(key, value).Debug(msg)
}
