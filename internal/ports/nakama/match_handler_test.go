package nakama

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/heroiclabs/nakama-common/runtime"

	"attimuite/internal/domain"
	"attimuite/internal/i18n"
	"attimuite/internal/narration"
	"attimuite/internal/ports"
	"attimuite/internal/score"
)

const testUser = "user-1"

// newTestHandler builds a handler whose CPU always draws rock and points up.
func newTestHandler(store ports.ScoreStore) *matchHandler {
	return &matchHandler{
		newStore: func(nk runtime.NakamaModule, userID string) ports.ScoreStore {
			return store
		},
		rng:     &fixedChooser{},
		catalog: i18n.Default(),
	}
}

type matchRig struct {
	t          *testing.T
	ctx        context.Context
	mh         *matchHandler
	state      *MatchState
	dispatcher *mockDispatcher
	tick       int64
}

func newMatchRig(t *testing.T, store ports.ScoreStore, params map[string]interface{}) *matchRig {
	t.Helper()
	mh := newTestHandler(store)
	ctx := context.Background()
	state, tickRate, label := mh.MatchInit(ctx, noopLogger{}, nil, nil, params)
	if state == nil {
		t.Fatal("MatchInit returned nil state")
	}
	if tickRate != 10 {
		t.Fatalf("Expected tick rate 10, got %d", tickRate)
	}
	if labelFields(t, label)["game"] != "attimuite" {
		t.Fatalf("Unexpected label %s", label)
	}
	return &matchRig{t: t, ctx: ctx, mh: mh, state: state.(*MatchState), dispatcher: &mockDispatcher{}}
}

func (r *matchRig) join(userID string) {
	r.t.Helper()
	p := mockPresence{userID: userID}
	_, ok, reason := r.mh.MatchJoinAttempt(r.ctx, noopLogger{}, nil, nil, r.dispatcher, r.tick, r.state, p, nil)
	if !ok {
		r.t.Fatalf("Join attempt rejected: %s", reason)
	}
	r.mh.MatchJoin(r.ctx, noopLogger{}, nil, nil, r.dispatcher, r.tick, r.state, []runtime.Presence{p})
}

func (r *matchRig) loop(messages ...runtime.MatchData) interface{} {
	r.tick++
	return r.mh.MatchLoop(r.ctx, noopLogger{}, nil, nil, r.dispatcher, r.tick, r.state, messages)
}

// runUntil ticks the match until the snapshot reaches phase, failing after limit ticks.
func (r *matchRig) runUntil(phase domain.Phase, limit int) {
	r.t.Helper()
	for i := 0; ; i++ {
		if r.state.Session.Snapshot().Phase == phase {
			return
		}
		if i == limit {
			break
		}
		r.loop()
	}
	r.t.Fatalf("Phase %s not reached after %d ticks, at %s", phase, limit, r.state.Session.Snapshot().Phase)
}

func message(userID string, opCode int64, body interface{}) mockMatchData {
	data, _ := json.Marshal(body)
	return mockMatchData{mockPresence: mockPresence{userID: userID}, opCode: opCode, data: data}
}

func TestMatchFullRound(t *testing.T) {
	store := score.NewMemoryStore()
	r := newMatchRig(t, store, map[string]interface{}{"user_id": testUser})
	r.join(testUser)

	first := r.dispatcher.byOpCode(OpStateChanged)
	if len(first) == 0 {
		t.Fatal("Expected state events on join")
	}
	last := r.dispatcher.lastState()
	if last["message"] != string(domain.MsgInitialRock) {
		t.Fatalf("Expected initial rock message, got %v", last["message"])
	}
	if last["message_text"] != "最初はグー！" {
		t.Fatalf("Expected localized text, got %v", last["message_text"])
	}
	if last["is_transitioning"] != true {
		t.Fatal("Expected input to be locked during the opening rock")
	}

	r.runUntil(domain.PhaseReady, 12)
	if got := r.dispatcher.lastState()["message"]; got != string(domain.MsgJankenPon) {
		t.Fatalf("Expected janken_pon, got %v", got)
	}
	if labelFields(t, r.dispatcher.lastLabel)["phase"] != "ready" {
		t.Fatalf("Expected label to follow the phase, got %q", r.dispatcher.lastLabel)
	}

	// CPU draws rock, so paper wins the janken.
	r.loop(message(testUser, OpPickHand, pickHandRequest{Hand: "paper"}))
	var sawReveal bool
	for _, s := range r.dispatcher.byOpCode(OpStateChanged) {
		if s["phase"] == string(domain.PhaseJanken) && s["cpu_hand"] == "rock" && s["cpu_image"] == "googal" {
			sawReveal = true
		}
	}
	if !sawReveal {
		t.Fatal("Expected a janken reveal with the CPU's rock")
	}

	r.runUntil(domain.PhaseAimm, 30)
	aimm := r.dispatcher.lastState()
	if aimm["message"] != string(domain.MsgPointDirection) || aimm["is_cpu_attacker"] != false {
		t.Fatalf("Expected the player to point, got %v", aimm)
	}
	if aimm["direction_buttons_visible"] != true {
		t.Fatal("Expected direction buttons to be visible")
	}

	// CPU faces up too, so pointing up wins.
	r.loop(message(testUser, OpPointDirection, pointDirectionRequest{Direction: "up"}))
	r.runUntil(domain.PhaseResult, 30)
	result := r.dispatcher.lastState()
	if result["final_winner"] != string(domain.SidePlayer) || result["player_score"] != float64(1) {
		t.Fatalf("Expected player win with score 1, got %v", result)
	}

	saved, err := store.Load(r.ctx)
	if err != nil || saved != (domain.Score{Player: 1}) {
		t.Fatalf("Expected stored score 1-0, got %v (%v)", saved, err)
	}

	r.runUntil(domain.PhaseReady, 40)
	if r.state.Session.Snapshot().Score.Player != 1 {
		t.Fatal("Expected the score to survive the reset")
	}
}

func TestMatchNarrationEvents(t *testing.T) {
	r := newMatchRig(t, score.NewMemoryStore(), map[string]interface{}{"user_id": testUser, "language": "en"})
	r.join(testUser)
	r.runUntil(domain.PhaseReady, 12)

	narrations := r.dispatcher.byOpCode(OpNarration)
	if len(narrations) != 2 {
		t.Fatalf("Expected 2 narration events, got %d", len(narrations))
	}
	if narrations[0]["key"] != string(domain.MsgInitialRock) || narrations[0]["language"] != "ja" {
		t.Fatalf("Expected the opening rock to be narrated in Japanese, got %v", narrations[0])
	}
	if narrations[1]["key"] != string(domain.MsgJankenPon) || narrations[1]["language"] != "en" {
		t.Fatalf("Expected janken_pon in the player's language, got %v", narrations[1])
	}
	if narrations[1]["interrupt"] != false {
		t.Fatal("Expected janken_pon not to interrupt")
	}
	if _, ok := narrations[1]["clip_url"]; ok {
		t.Fatal("Expected no clip without a signer")
	}
	if got := r.dispatcher.lastState()["message_text"]; got != "Rock, paper, scissors!" {
		t.Fatalf("Expected English message text, got %v", got)
	}
}

func TestMatchNarrationClipsSigned(t *testing.T) {
	r := newMatchRig(t, score.NewMemoryStore(), map[string]interface{}{"user_id": testUser})
	r.mh.signer = narration.NewClipSigner("secret", "attimuite", "https://cdn.example.com/", 0)
	r.join(testUser)

	narrations := r.dispatcher.byOpCode(OpNarration)
	if len(narrations) == 0 {
		t.Fatal("Expected narration on join")
	}
	url, _ := narrations[0]["clip_url"].(string)
	if url != "https://cdn.example.com/tts/ja/girl/initial_rock_ja.mp3" {
		t.Fatalf("Unexpected clip url %q", url)
	}
	token, _ := narrations[0]["clip_token"].(string)
	path, err := r.mh.signer.Verify(token)
	if err != nil || path != "tts/ja/girl/initial_rock_ja.mp3" {
		t.Fatalf("Expected a verifiable token, got %q (%v)", path, err)
	}
}

func TestMatchJoinAttemptReserved(t *testing.T) {
	r := newMatchRig(t, score.NewMemoryStore(), map[string]interface{}{"user_id": testUser})
	_, ok, reason := r.mh.MatchJoinAttempt(r.ctx, noopLogger{}, nil, nil, r.dispatcher, 0, r.state, mockPresence{userID: "intruder"}, nil)
	if ok || reason == "" {
		t.Fatal("Expected reserved match to reject other users")
	}

	_, ok, _ = r.mh.MatchJoinAttempt(r.ctx, noopLogger{}, nil, nil, r.dispatcher, 0, "bad state", mockPresence{userID: testUser}, nil)
	if ok {
		t.Fatal("Expected invalid state to reject")
	}
}

func TestMatchFirstJoinerTakesOpenSeat(t *testing.T) {
	r := newMatchRig(t, score.NewMemoryStore(), nil)
	if labelFields(t, mustLabel(t, r))["open"] != float64(1) {
		t.Fatal("Expected open label before anyone joins")
	}
	r.join("walk-in")
	if r.state.UserID != "walk-in" || r.state.Session == nil {
		t.Fatalf("Expected walk-in to be seated, got %q", r.state.UserID)
	}
	if labelFields(t, r.dispatcher.lastLabel)["open"] != float64(0) {
		t.Fatalf("Expected closed label, got %s", r.dispatcher.lastLabel)
	}
}

func mustLabel(t *testing.T, r *matchRig) string {
	t.Helper()
	label, err := r.mh.label(r.state)
	if err != nil {
		t.Fatalf("label failed: %v", err)
	}
	return label
}

func labelFields(t *testing.T, label string) map[string]interface{} {
	t.Helper()
	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(label), &fields); err != nil {
		t.Fatalf("label %q is not JSON: %v", label, err)
	}
	return fields
}

func TestMatchReconnectResendsSnapshot(t *testing.T) {
	r := newMatchRig(t, score.NewMemoryStore(), map[string]interface{}{"user_id": testUser})
	r.join(testUser)
	session := r.state.Session
	before := len(r.dispatcher.byOpCode(OpStateChanged))

	r.join(testUser)
	if r.state.Session != session {
		t.Fatal("Expected reconnect to keep the session")
	}
	if got := len(r.dispatcher.byOpCode(OpStateChanged)); got != before+1 {
		t.Fatalf("Expected one resent snapshot, got %d new", got-before)
	}
}

func TestMatchLoopRejectsBadInput(t *testing.T) {
	r := newMatchRig(t, score.NewMemoryStore(), map[string]interface{}{"user_id": testUser})
	r.join(testUser)
	r.runUntil(domain.PhaseReady, 12)

	r.loop(mockMatchData{mockPresence: mockPresence{userID: testUser}, opCode: 99})
	r.loop(mockMatchData{mockPresence: mockPresence{userID: testUser}, opCode: OpPickHand, data: []byte("{not json")})
	r.loop(message(testUser, OpPickHand, pickHandRequest{Hand: "lizard"}))

	errs := r.dispatcher.byOpCode(OpError)
	if len(errs) != 3 {
		t.Fatalf("Expected 3 error events, got %d", len(errs))
	}
	if errs[0]["message"] != "unknown opcode" || errs[0]["code"] != float64(codeInvalidArgument) {
		t.Fatalf("Unexpected error payload %v", errs[0])
	}
	if errs[1]["message"] != "invalid payload" {
		t.Fatalf("Unexpected error payload %v", errs[1])
	}
	for _, m := range r.dispatcher.messages {
		if m.opCode == OpError && (len(m.recipients) != 1 || m.recipients[0].GetUserId() != testUser) {
			t.Fatal("Expected errors to target the player only")
		}
	}
	if r.state.Session.Snapshot().Phase != domain.PhaseReady {
		t.Fatal("Expected bad input to leave the phase alone")
	}
}

func TestMatchLoopIgnoresOtherUsers(t *testing.T) {
	r := newMatchRig(t, score.NewMemoryStore(), map[string]interface{}{"user_id": testUser})
	r.join(testUser)
	r.runUntil(domain.PhaseReady, 12)

	r.loop(message("intruder", OpPickHand, pickHandRequest{Hand: "paper"}))
	if r.state.Session.Snapshot().Phase != domain.PhaseReady {
		t.Fatal("Expected input from other users to be ignored")
	}
}

func TestMatchWrongPhaseInputIsIgnored(t *testing.T) {
	r := newMatchRig(t, score.NewMemoryStore(), map[string]interface{}{"user_id": testUser})
	r.join(testUser)

	// Still locked by the opening rock.
	r.loop(message(testUser, OpPickHand, pickHandRequest{Hand: "paper"}))
	r.loop(message(testUser, OpPointDirection, pointDirectionRequest{Direction: "up"}))
	snap := r.state.Session.Snapshot()
	if snap.PlayerHand != domain.Rock || snap.PlayerDirection != "" {
		t.Fatalf("Expected locked input to be ignored, got %+v", snap)
	}
	if len(r.dispatcher.byOpCode(OpError)) != 0 {
		t.Fatal("Expected silent rejection for well-formed input")
	}
}

func TestMatchResetScoreOpcode(t *testing.T) {
	store := score.NewMemoryStore()
	_ = store.Save(context.Background(), domain.Score{Player: 3, CPU: 2})
	r := newMatchRig(t, store, map[string]interface{}{"user_id": testUser})
	r.join(testUser)
	if r.dispatcher.lastState()["player_score"] != float64(3) {
		t.Fatal("Expected stored score to load on join")
	}
	r.runUntil(domain.PhaseReady, 12)

	r.loop(mockMatchData{mockPresence: mockPresence{userID: testUser}, opCode: OpResetScore})
	if got := r.state.Session.Snapshot().Score; got != (domain.Score{}) {
		t.Fatalf("Expected zero score, got %+v", got)
	}
	saved, _ := store.Load(r.ctx)
	if saved != (domain.Score{}) {
		t.Fatalf("Expected zero score stored, got %+v", saved)
	}
	if r.state.Session.Snapshot().Message != domain.MsgInitialRock {
		t.Fatal("Expected reset to replay the opening rock")
	}
}

func TestMatchSignal(t *testing.T) {
	r := newMatchRig(t, score.NewMemoryStore(), map[string]interface{}{"user_id": testUser})

	_, resp := r.mh.MatchSignal(r.ctx, noopLogger{}, nil, nil, r.dispatcher, 0, r.state, `{"kind":"score_reset"}`)
	if !strings.Contains(resp, `"ok":false`) {
		t.Fatalf("Expected failure without a session, got %s", resp)
	}

	r.join(testUser)
	_, resp = r.mh.MatchSignal(r.ctx, noopLogger{}, nil, nil, r.dispatcher, 0, r.state, `{"kind":"score_sync","score":{"player":4,"cpu":1}}`)
	if resp != `{"ok":true}` {
		t.Fatalf("Unexpected response %s", resp)
	}
	if got := r.state.Session.Snapshot().Score; got != (domain.Score{Player: 4, CPU: 1}) {
		t.Fatalf("Expected synced score, got %+v", got)
	}
	if r.dispatcher.lastState()["cpu_score"] != float64(1) {
		t.Fatal("Expected synced score to be broadcast")
	}

	_, resp = r.mh.MatchSignal(r.ctx, noopLogger{}, nil, nil, r.dispatcher, 0, r.state, `{"kind":"score_sync"}`)
	if !strings.Contains(resp, "score required") {
		t.Fatalf("Unexpected response %s", resp)
	}
	_, resp = r.mh.MatchSignal(r.ctx, noopLogger{}, nil, nil, r.dispatcher, 0, r.state, `{"kind":"dance"}`)
	if !strings.Contains(resp, "unknown signal") {
		t.Fatalf("Unexpected response %s", resp)
	}
	_, resp = r.mh.MatchSignal(r.ctx, noopLogger{}, nil, nil, r.dispatcher, 0, r.state, `nope`)
	if !strings.Contains(resp, "invalid signal") {
		t.Fatalf("Unexpected response %s", resp)
	}

	_, resp = r.mh.MatchSignal(r.ctx, noopLogger{}, nil, nil, r.dispatcher, 0, r.state, `{"kind":"score_reset"}`)
	if resp != `{"ok":true}` || r.state.Session.Snapshot().Score != (domain.Score{}) {
		t.Fatalf("Expected reset, got %s", resp)
	}
}

func TestMatchLeaveTerminatesAndFlushes(t *testing.T) {
	store := score.NewMemoryStore()
	r := newMatchRig(t, store, map[string]interface{}{"user_id": testUser})
	r.join(testUser)

	out := r.mh.MatchLeave(r.ctx, noopLogger{}, nil, nil, r.dispatcher, r.tick, r.state, []runtime.Presence{mockPresence{userID: testUser}})
	if out != nil {
		t.Fatal("Expected match to terminate when the player leaves")
	}
	if _, err := store.Load(r.ctx); err != nil {
		t.Fatalf("Expected score to be flushed on leave: %v", err)
	}
	if r.state.Session.Pending() != 0 {
		t.Fatal("Expected pending steps to be dropped")
	}
}

func TestMatchLoopTerminatesWhenNobodyJoins(t *testing.T) {
	r := newMatchRig(t, score.NewMemoryStore(), map[string]interface{}{"user_id": testUser})
	var out interface{} = r.state
	for i := 0; i < 300 && out != nil; i++ {
		out = r.loop()
	}
	if out != nil {
		t.Fatal("Expected empty match to terminate")
	}
	if r.tick != 300 {
		t.Fatalf("Expected termination at 30s, got tick %d", r.tick)
	}
}

func TestMarshalLabel(t *testing.T) {
	label, err := marshalLabel(map[string]interface{}{"game": "attimuite", "open": 1})
	if err != nil {
		t.Fatalf("marshalLabel failed: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(label), &decoded); err != nil {
		t.Fatalf("label is not JSON: %v", err)
	}
	if decoded["game"] != "attimuite" || decoded["open"] != float64(1) {
		t.Fatalf("Unexpected label %v", decoded)
	}
}

func TestEncodeStructRoundTrip(t *testing.T) {
	snap := domain.Snapshot{SessionID: "s", Phase: domain.PhaseJanken, PlayerHand: domain.Paper, CPUHand: domain.Rock, MessageSeq: 7}
	data, err := encodeStruct(snapshotPayload(snap, "text"))
	if err != nil {
		t.Fatalf("encodeStruct failed: %v", err)
	}
	fields, err := decodeStruct(data)
	if err != nil {
		t.Fatalf("decodeStruct failed: %v", err)
	}
	if fields["player_image"] != "pa" || fields["cpu_image"] != "googal" || fields["message_seq"] != float64(7) {
		t.Fatalf("Unexpected fields %v", fields)
	}
}
