package domain

// Snapshot is the presentation view of a session. Empty hands, directions
// and winner mean "not set".
type Snapshot struct {
	SessionID            string     `json:"session_id"`
	Phase                Phase      `json:"phase"`
	PlayerHand           Hand       `json:"player_hand,omitempty"`
	CPUHand              Hand       `json:"cpu_hand,omitempty"`
	PlayerDirection      Direction  `json:"player_direction,omitempty"`
	CPUDirection         Direction  `json:"cpu_direction,omitempty"`
	IsCPUAttacker        bool       `json:"is_cpu_attacker"`
	FinalWinner          Side       `json:"final_winner,omitempty"`
	Message              MessageKey `json:"message"`
	MessageSeq           uint64     `json:"message_seq"`
	Score                Score      `json:"score"`
	IsTransitioning      bool       `json:"is_transitioning"`
	InputControlsVisible bool       `json:"input_controls_visible"`
}

// HandButtonsVisible reports whether the janken buttons are shown.
func (s Snapshot) HandButtonsVisible() bool {
	return s.Phase == PhaseReady || s.Phase == PhaseJanken
}

// DirectionButtonsVisible reports whether the pointing buttons are shown.
func (s Snapshot) DirectionButtonsVisible() bool {
	return s.Phase == PhaseAimm && s.InputControlsVisible
}

// AcceptsInput reports whether player input would currently be considered.
func (s Snapshot) AcceptsInput() bool {
	return !s.IsTransitioning && s.Phase != PhaseIdle
}
