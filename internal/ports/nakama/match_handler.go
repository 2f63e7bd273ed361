package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"attimuite/internal/app"
	"attimuite/internal/bot"
	"attimuite/internal/config"
	"attimuite/internal/domain"
	"attimuite/internal/i18n"
	"attimuite/internal/narration"
	"attimuite/internal/ports"
)

// emptyMatchTimeout is how long a match waits for its human before terminating.
const emptyMatchTimeout = 30 * time.Second

// MatchState holds the authoritative runtime state for one solo match.
type MatchState struct {
	UserID    string                      `json:"user_id"`   // the seated human; empty until someone joins
	Presences map[string]runtime.Presence `json:"-"`         // UserId -> Presence
	Session   *app.Session                `json:"-"`         // created on first join
	Agent     *bot.Agent                  `json:"-"`         // the CPU opponent
	Config    config.GameConfig           `json:"-"`
	Narration narration.Settings          `json:"narration"` // the human's narration preferences
	Tick      int64                       `json:"tick"`
	LastPhase domain.Phase                `json:"last_phase"`
}

type matchHandler struct {
	newStore func(nk runtime.NakamaModule, userID string) ports.ScoreStore
	rng      bot.Chooser
	catalog  *i18n.Catalog
	signer   *narration.ClipSigner
}

func newMatchHandler(signer *narration.ClipSigner) *matchHandler {
	return &matchHandler{
		newStore: func(nk runtime.NakamaModule, userID string) ports.ScoreStore {
			return NewStorageScoreStore(nk, userID)
		},
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		catalog: i18n.Default(),
		signer:  signer,
	}
}

// MatchInit is called when the match is created. Optional params:
// user_id reserves the seat, language and voice set narration preferences.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	env, err := config.LoadRuntimeEnv(runtimeEnv(ctx))
	if err != nil {
		logger.Warn("MatchInit: Invalid runtime env: %v", err)
	}
	if err := config.LoadGameConfig(env.GameConfigPath); err != nil {
		logger.Warn("MatchInit: Could not load game config, using defaults: %v", err)
	}
	if err := bot.LoadIdentities(env.IdentitiesPath); err != nil {
		logger.Warn("MatchInit: Could not load cpu identities: %v", err)
	}
	cfg := config.GetGameConfig()

	agent, err := mh.newAgent(cfg)
	if err != nil {
		logger.Error("MatchInit: Failed to create cpu agent: %v", err)
		return nil, 0, ""
	}

	state := &MatchState{
		UserID:    stringParam(params, "user_id"),
		Presences: make(map[string]runtime.Presence),
		Agent:     agent,
		Config:    cfg,
		Narration: narration.Settings{
			Language: firstNonEmpty(stringParam(params, "language"), cfg.Language),
			Voice:    firstNonEmpty(stringParam(params, "voice"), agent.Voice, cfg.Voice),
			Speed:    cfg.SpeechRate,
		},
		LastPhase: domain.PhaseIdle,
	}

	label, err := mh.label(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := cfg.TickRate
	if tickRate <= 0 {
		tickRate = config.Default.TickRate
	}
	return state, tickRate, label
}

func (mh *matchHandler) newAgent(cfg config.GameConfig) (*bot.Agent, error) {
	identity := bot.GetIdentity(mh.rng.Intn(max(bot.IdentityCount(), 1)))
	level, err := bot.ParseLevel(firstNonEmpty(identity.Level, cfg.BotLevel))
	if err != nil {
		return nil, err
	}
	brain, err := bot.NewBrain(level, mh.rng)
	if err != nil {
		return nil, err
	}
	return bot.NewAgent(identity, brain), nil
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	if matchState.UserID != "" && matchState.UserID != presence.GetUserId() {
		return state, false, "Match is reserved for another player"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		if matchState.UserID == "" {
			matchState.UserID = userID
		}
		if userID != matchState.UserID {
			logger.Warn("MatchJoin: Ignoring unexpected user %s", userID)
			continue
		}
		matchState.Presences[userID] = p

		if matchState.Session != nil {
			// Reconnect: resend the current view.
			mh.dispatch(ctx, matchState, dispatcher, logger, []app.Event{{
				Kind:    app.EventStateChanged,
				Payload: app.StateChangedPayload{Snapshot: matchState.Session.Snapshot()},
			}})
			continue
		}

		session, err := app.NewSession(app.Options{
			Timings: app.Timings{
				InitialRock: matchState.Config.InitialRockDelay(),
				Reveal:      matchState.Config.RevealDelay(),
				Buffer:      matchState.Config.BufferDelay(),
			},
			Opponent:  matchState.Agent,
			Store:     mh.newStore(nk, userID),
			Narration: narration.NewBuilder(matchState.Narration),
			Logger:    logger.WithField("user_id", userID),
		})
		if err != nil {
			logger.Error("MatchJoin: Failed to create session for %s: %v", userID, err)
			continue
		}
		matchState.Session = session
		logger.Info("MatchJoin: User %s plays against %s (session %s)", userID, matchState.Agent.Name, session.ID())

		events := session.Open(ctx)
		events = append(events, session.Start()...)
		mh.dispatch(ctx, matchState, dispatcher, logger, events)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave ends the match when the human leaves; the CPU never plays alone.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
	}
	if len(matchState.Presences) > 0 {
		return matchState
	}

	if matchState.Session != nil {
		matchState.Session.Close(ctx)
	}
	logger.Info("MatchLeave: Player %s left, terminating match.", matchState.UserID)
	return nil
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	matchState.Tick = tick

	session := matchState.Session
	if session == nil {
		if time.Duration(tick)*matchState.Config.TickInterval() >= emptyMatchTimeout {
			logger.Info("MatchLoop: No player joined, terminating match.")
			return nil
		}
		return matchState
	}

	var events []app.Event
	for _, msg := range messages {
		if msg.GetUserId() != matchState.UserID {
			logger.Warn("MatchLoop: Ignoring message from non-player %s", msg.GetUserId())
			continue
		}
		switch msg.GetOpCode() {
		case OpPickHand:
			events = append(events, mh.handlePickHand(matchState, dispatcher, logger, msg)...)
		case OpPointDirection:
			events = append(events, mh.handlePointDirection(matchState, dispatcher, logger, msg)...)
		case OpResetScore:
			events = append(events, session.ResetScoresAndAll(ctx)...)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
			mh.sendError(matchState, dispatcher, logger, codeInvalidArgument, "unknown opcode")
		}
	}

	events = append(events, session.Advance(ctx, matchState.Config.TickInterval())...)
	mh.dispatch(ctx, matchState, dispatcher, logger, events)

	if phase := session.Snapshot().Phase; phase != matchState.LastPhase {
		matchState.LastPhase = phase
		mh.updateLabel(matchState, dispatcher, logger)
	}
	return matchState
}

type pickHandRequest struct {
	Hand string `json:"hand"`
}

type pointDirectionRequest struct {
	Direction string `json:"direction"`
}

func (mh *matchHandler) handlePickHand(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) []app.Event {
	var req pickHandRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("handlePickHand: Invalid payload from %s: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, codeInvalidArgument, "invalid payload")
		return nil
	}
	hand, err := domain.ParseHand(req.Hand)
	if err != nil {
		mh.sendError(state, dispatcher, logger, codeInvalidArgument, err.Error())
		return nil
	}
	return state.Session.PickHand(hand)
}

func (mh *matchHandler) handlePointDirection(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) []app.Event {
	var req pointDirectionRequest
	if err := json.Unmarshal(msg.GetData(), &req); err != nil {
		logger.Warn("handlePointDirection: Invalid payload from %s: %v", msg.GetUserId(), err)
		mh.sendError(state, dispatcher, logger, codeInvalidArgument, "invalid payload")
		return nil
	}
	dir, err := domain.ParseDirection(req.Direction)
	if err != nil {
		mh.sendError(state, dispatcher, logger, codeInvalidArgument, err.Error())
		return nil
	}
	return state.Session.PointDirection(dir)
}

// dispatch broadcasts session events to the seated player.
func (mh *matchHandler) dispatch(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		var opCode int64
		var fields map[string]interface{}

		switch ev.Kind {
		case app.EventStateChanged:
			p := ev.Payload.(app.StateChangedPayload)
			opCode = OpStateChanged
			fields = snapshotPayload(p.Snapshot, mh.catalog.Lookup(string(p.Snapshot.Message), state.Narration.Language))
		case app.EventNarration:
			p := ev.Payload.(app.NarrationPayload)
			opCode = OpNarration
			fields = narrationPayload(p.Request, mh.catalog.Lookup(string(p.Request.Key), p.Request.Language), mh.signClip(state, logger, p.Request))
		default:
			logger.Warn("Unknown event kind: %v", ev.Kind)
			continue
		}

		bytes, err := encodeStruct(fields)
		if err != nil {
			logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
			continue
		}
		if err := dispatcher.BroadcastMessage(opCode, bytes, nil, nil, true); err != nil {
			logger.Error("Failed to broadcast event %v: %v", ev.Kind, err)
		}
	}
}

func (mh *matchHandler) signClip(state *MatchState, logger runtime.Logger, req narration.Request) *narration.SignedClip {
	if mh.signer == nil {
		return nil
	}
	clip, err := mh.signer.Sign(state.UserID, req)
	if err != nil {
		logger.Warn("Failed to sign narration clip %s: %v", req.Key, err)
		return nil
	}
	return &clip
}

// sendError sends an error event to the seated player.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, code int, message string) {
	presence, ok := state.Presences[state.UserID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", state.UserID)
		return
	}
	bytes, err := encodeStruct(errorPayload(code, message))
	if err != nil {
		logger.Error("Failed to marshal error event: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpError, bytes, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("Failed to send error event: %v", err)
	}
}

func (mh *matchHandler) label(state *MatchState) (string, error) {
	open := 0
	if state.UserID == "" {
		open = 1
	}
	phase := domain.PhaseIdle
	if state.Session != nil {
		phase = state.Session.Snapshot().Phase
	}
	return marshalLabel(map[string]interface{}{
		"game":  scoreKey,
		"mode":  "solo",
		"open":  open,
		"phase": string(phase),
		"cpu":   state.Agent.Name,
	})
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := mh.label(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminating in %d seconds", graceSeconds)
	if matchState, ok := state.(*MatchState); ok && matchState.Session != nil {
		matchState.Session.Close(ctx)
	}
	return state
}

type matchSignal struct {
	Kind  string        `json:"kind"`
	Score *domain.Score `json:"score,omitempty"`
}

// MatchSignal folds out-of-band score changes into the running session.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok || matchState.Session == nil {
		return state, `{"ok":false,"error":"no session"}`
	}

	var sig matchSignal
	if err := json.Unmarshal([]byte(data), &sig); err != nil {
		return state, `{"ok":false,"error":"invalid signal"}`
	}

	var events []app.Event
	switch sig.Kind {
	case SignalScoreSync:
		if sig.Score == nil {
			return state, `{"ok":false,"error":"score required"}`
		}
		events = matchState.Session.ApplyRemoteScore(*sig.Score)
	case SignalScoreReset:
		events = matchState.Session.ResetScoresAndAll(ctx)
	default:
		return state, `{"ok":false,"error":"unknown signal"}`
	}
	mh.dispatch(ctx, matchState, dispatcher, logger, events)
	return matchState, `{"ok":true}`
}

func runtimeEnv(ctx context.Context) map[string]string {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	return env
}

func stringParam(params map[string]interface{}, key string) string {
	v, _ := params[key].(string)
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
