package domain

import "fmt"

// Hand is a janken hand shape.
type Hand string

const (
	Rock     Hand = "rock"
	Scissors Hand = "scissors"
	Paper    Hand = "paper"
)

// AllHands lists every hand in draw order.
var AllHands = []Hand{Rock, Scissors, Paper}

// ParseHand converts a wire name into a Hand.
func ParseHand(s string) (Hand, error) {
	for _, h := range AllHands {
		if string(h) == s {
			return h, nil
		}
	}
	return "", fmt.Errorf("unknown hand %q", s)
}

// beats reports whether h defeats other.
func (h Hand) beats(other Hand) bool {
	switch h {
	case Rock:
		return other == Scissors
	case Scissors:
		return other == Paper
	case Paper:
		return other == Rock
	}
	return false
}

// Direction is a pointing/facing direction in the aimm duel.
type Direction string

const (
	Up    Direction = "up"
	Right Direction = "right"
	Down  Direction = "down"
	Left  Direction = "left"
)

// AllDirections lists every direction in draw order.
var AllDirections = []Direction{Up, Right, Down, Left}

// ParseDirection converts a wire name into a Direction.
func ParseDirection(s string) (Direction, error) {
	for _, d := range AllDirections {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown direction %q", s)
}

// JankenOutcome is the result of one janken throw.
type JankenOutcome int

const (
	OutcomeTie JankenOutcome = iota
	OutcomePlayer
	OutcomeCPU
)

func (o JankenOutcome) String() string {
	switch o {
	case OutcomePlayer:
		return "player"
	case OutcomeCPU:
		return "cpu"
	default:
		return "tie"
	}
}

// ResolveJanken decides a throw. Equal hands tie; otherwise rock beats scissors,
// scissors beats paper and paper beats rock.
func ResolveJanken(player, cpu Hand) JankenOutcome {
	switch {
	case player == cpu:
		return OutcomeTie
	case player.beats(cpu):
		return OutcomePlayer
	default:
		return OutcomeCPU
	}
}

// AttackerWinsDuel reports whether the attacker's pointing direction caught the
// defender. Only an exact match counts; every other pair is a no decision.
func AttackerWinsDuel(attacker, defender Direction) bool {
	return attacker == defender
}
