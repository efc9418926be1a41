package gateway

import (
	"strings"

	"github.com/Desarso/fitcoach/models"
)

// classifyRule maps a case-insensitive keyword to a mode.
type classifyRule struct {
	Keyword string
	Mode    models.Mode
}

// rules are checked in order; the first keyword found wins.
var rules = []classifyRule{
	{Keyword: "news", Mode: models.ModeTrendSearch},
	{Keyword: "trend", Mode: models.ModeTrendSearch},
	{Keyword: "study", Mode: models.ModeTrendSearch},
}

// Classify picks the mode for a free-text conversation request. Text that
// matches no rule is chat.
func Classify(text string) models.Mode {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if strings.Contains(lower, r.Keyword) {
			return r.Mode
		}
	}
	return models.ModeChat
}
