// Package narration shapes message keys into speech requests for the narrator.
package narration

import (
	"strings"

	"attimuite/internal/domain"
)

// Voice categories understood by the speech backends.
const (
	VoiceGirl  = "girl"
	VoiceBoy   = "boy"
	VoiceRobot = "robot"
)

// Speech rates. Zero or negative selects DefaultSpeed; anything else is clamped.
const (
	DefaultSpeed = 0.5
	MinSpeed     = 0.1
	MaxSpeed     = 2.0
)

// Settings are the user's narration preferences.
type Settings struct {
	Language string
	Voice    string
	Speed    float64
}

// Request asks the narrator to speak one message key.
type Request struct {
	Seq       uint64            `json:"seq"`
	Key       domain.MessageKey `json:"key"`
	Language  string            `json:"language"`
	Voice     string            `json:"voice"`
	Speed     float64           `json:"speed"`
	Interrupt bool              `json:"interrupt"`
}

// Builder turns message keys into requests using the current settings.
type Builder struct {
	settings Settings
}

// NewBuilder returns a builder with normalized settings.
func NewBuilder(settings Settings) *Builder {
	b := &Builder{}
	b.SetSettings(settings)
	return b
}

// SetSettings replaces the narration preferences.
func (b *Builder) SetSettings(settings Settings) {
	b.settings = normalize(settings)
}

// Settings returns the normalized preferences.
func (b *Builder) Settings() Settings {
	return b.settings
}

// Build creates the request for key. seq must be unique per emission so that
// repeating a key still produces a distinct trigger.
func (b *Builder) Build(key domain.MessageKey, seq uint64) Request {
	lang := b.settings.Language
	if fixed, ok := key.FixedLanguage(); ok {
		lang = fixed
	}
	return Request{
		Seq:       seq,
		Key:       key,
		Language:  lang,
		Voice:     b.settings.Voice,
		Speed:     b.settings.Speed,
		Interrupt: key.Interrupts(),
	}
}

func normalize(s Settings) Settings {
	s.Language = strings.ToLower(strings.TrimSpace(s.Language))
	if s.Language == "" {
		s.Language = domain.FixedNarrationLanguage
	}
	switch s.Voice {
	case VoiceGirl, VoiceBoy, VoiceRobot:
	default:
		s.Voice = VoiceGirl
	}
	switch {
	case s.Speed <= 0:
		s.Speed = DefaultSpeed
	case s.Speed < MinSpeed:
		s.Speed = MinSpeed
	case s.Speed > MaxSpeed:
		s.Speed = MaxSpeed
	}
	return s
}
