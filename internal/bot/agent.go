package bot

import (
	"attimuite/internal/domain"
)

// Agent is the computer opponent seated against a human.
type Agent struct {
	ID    string
	Name  string
	Voice string
	Brain Brain
}

// NewAgent seats the identity with the given brain.
func NewAgent(identity Identity, brain Brain) *Agent {
	return &Agent{
		ID:    identity.ID,
		Name:  identity.DisplayName,
		Voice: identity.Voice,
		Brain: brain,
	}
}

// PickHand draws the agent's janken hand.
func (a *Agent) PickHand() domain.Hand {
	return a.Brain.Hand()
}

// PickDirection draws the agent's pointing or facing direction.
func (a *Agent) PickDirection() domain.Direction {
	return a.Brain.Direction()
}
