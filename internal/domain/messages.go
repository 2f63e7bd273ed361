package domain

// MessageKey identifies what should currently be communicated to the user.
// Keys are resolved to text by the locale catalog and to speech by the narrator.
type MessageKey string

const (
	MsgNone           MessageKey = ""
	MsgInitialRock    MessageKey = "initial_rock"
	MsgJankenPon      MessageKey = "janken_pon"
	MsgTie            MessageKey = "tie"
	MsgPlayerPoints   MessageKey = "player_points"
	MsgCPUPoints      MessageKey = "cpu_points"
	MsgPointDirection MessageKey = "point_direction"
	MsgAcchiMuiteHoi  MessageKey = "acchi_muite_hoi"
	MsgPlayerWins     MessageKey = "player_wins"
	MsgCPUWins        MessageKey = "cpu_wins"
	MsgNoDecision     MessageKey = "no_decision"
)

// FixedNarrationLanguage is the language used for keys that ignore the user's
// language setting when spoken.
const FixedNarrationLanguage = "ja"

type messageTrait struct {
	fixedLanguage bool
	interrupt     bool
}

var messageTraits = map[MessageKey]messageTrait{
	MsgInitialRock:    {fixedLanguage: true, interrupt: true},
	MsgJankenPon:      {},
	MsgTie:            {fixedLanguage: true, interrupt: true},
	MsgPlayerPoints:   {interrupt: true},
	MsgCPUPoints:      {interrupt: true},
	MsgPointDirection: {},
	MsgAcchiMuiteHoi:  {fixedLanguage: true, interrupt: true},
	MsgPlayerWins:     {interrupt: true},
	MsgCPUWins:        {interrupt: true},
	MsgNoDecision:     {interrupt: true},
}

// AllMessageKeys lists every key the session can emit.
var AllMessageKeys = []MessageKey{
	MsgInitialRock,
	MsgJankenPon,
	MsgTie,
	MsgPlayerPoints,
	MsgCPUPoints,
	MsgPointDirection,
	MsgAcchiMuiteHoi,
	MsgPlayerWins,
	MsgCPUWins,
	MsgNoDecision,
}

// Known reports whether k is part of the enumerated key set.
func (k MessageKey) Known() bool {
	_, ok := messageTraits[k]
	return ok
}

// FixedLanguage returns the language the key is always narrated in, if any.
func (k MessageKey) FixedLanguage() (string, bool) {
	if messageTraits[k].fixedLanguage {
		return FixedNarrationLanguage, true
	}
	return "", false
}

// Interrupts reports whether narrating k should cut off speech in progress.
func (k MessageKey) Interrupts() bool {
	return messageTraits[k].interrupt
}
