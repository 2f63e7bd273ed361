package domain

// Phase represents the lifecycle stage of a game session.
type Phase string

const (
	// PhaseIdle is the state before the session has been started.
	PhaseIdle Phase = "idle"
	// PhaseReady waits for the player to pick a hand.
	PhaseReady Phase = "ready"
	// PhaseJanken shows both hands while the janken outcome is revealed.
	PhaseJanken Phase = "janken"
	// PhaseAimm is the pointing duel that follows a decided janken.
	PhaseAimm Phase = "aimm"
	// PhaseResult shows the duel winner before the session resets.
	PhaseResult Phase = "result"
)

// Side identifies one of the two participants.
type Side string

const (
	// SideNone means no side, e.g. no winner yet.
	SideNone Side = ""
	// SidePlayer is the human participant.
	SidePlayer Side = "player"
	// SideCPU is the computer participant.
	SideCPU Side = "cpu"
)

// Score holds the persisted point totals for both sides.
type Score struct {
	Player int `json:"player" yaml:"player"`
	CPU    int `json:"cpu" yaml:"cpu"`
}

// Add returns a copy of the score with one point awarded to side.
func (s Score) Add(side Side) Score {
	switch side {
	case SidePlayer:
		s.Player++
	case SideCPU:
		s.CPU++
	}
	return s
}

// Normalize clamps negative totals to zero.
func (s Score) Normalize() Score {
	if s.Player < 0 {
		s.Player = 0
	}
	if s.CPU < 0 {
		s.CPU = 0
	}
	return s
}
