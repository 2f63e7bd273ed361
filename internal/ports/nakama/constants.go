package nakama

const (
	// MatchNameAttimuite is the authoritative match handler name registered with Nakama.
	MatchNameAttimuite = "attimuite_match"

	RpcSoloMatch     = "solo_match"
	RpcScoreGet      = "score_get"
	RpcScoreReset    = "score_reset"
	RpcNarrationClip = "narration_clip"

	scoreCollection = "scores"
	scoreKey        = "attimuite"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpPickHand       int64 = 1
	OpPointDirection int64 = 2
	OpResetScore     int64 = 3

	// Server -> Client events
	OpStateChanged int64 = 101
	OpNarration    int64 = 102
	OpError        int64 = 103
)

// Match signal kinds.
const (
	SignalScoreSync  = "score_sync"
	SignalScoreReset = "score_reset"
)

// gRPC status codes used for runtime errors.
const (
	codeInvalidArgument = 3
	codeNotFound        = 5
	codeInternal        = 13
	codeUnauthenticated = 16
)
