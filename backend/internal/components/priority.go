package components

import "taskify/backend/internal/models"

// Tone is the emphasis a badge is drawn with.
type Tone int

const (
	ToneNeutral Tone = iota
	ToneMedium
	ToneWarning
)

func (t Tone) String() string {
	switch t {
	case ToneMedium:
		return "medium"
	case ToneWarning:
		return "warning"
	default:
		return "neutral"
	}
}

type Badge struct {
	Symbol string
	Label  string
	Tone   Tone
}

func (b Badge) String() string {
	return b.Symbol + " " + b.Label
}

var badges = map[models.Priority]Badge{
	models.PriorityLow:    {Symbol: "○", Label: "low", Tone: ToneNeutral},
	models.PriorityMedium: {Symbol: "−", Label: "medium", Tone: ToneMedium},
	models.PriorityHigh:   {Symbol: "⚠", Label: "high", Tone: ToneWarning},
}

// BadgeFor maps a priority to its badge; unknown levels render as medium.
func BadgeFor(p models.Priority) Badge {
	if b, ok := badges[p]; ok {
		return b
	}
	return badges[models.PriorityMedium]
}
