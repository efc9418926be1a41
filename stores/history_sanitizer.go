package stores

import (
	"github.com/Desarso/fitcoach/models"
)

// SanitizeHistory ensures the chat history has a valid turn structure for the
// generation API before it is sent as context.
//
// Valid pattern: user -> model, repeated. The function ensures:
//   - History always starts with a user entry
//   - Every user entry is answered by exactly one model entry
//   - A trailing unanswered user entry is dropped (the new message follows it)
//
// When maxExchanges > 0 only the most recent maxExchanges pairs are kept.
func SanitizeHistory(entries []models.HistoryEntry, maxExchanges int) []models.HistoryEntry {
	if len(entries) == 0 {
		return entries
	}

	pairs := make([][2]models.HistoryEntry, 0, len(entries)/2)
	for i := 0; i < len(entries); i++ {
		if entries[i].Role != models.RoleUser {
			// Orphaned model entry with no preceding user entry
			continue
		}
		if i+1 < len(entries) && entries[i+1].Role == models.RoleModel {
			pairs = append(pairs, [2]models.HistoryEntry{entries[i], entries[i+1]})
			i++
		}
		// Otherwise an unanswered user entry: skip it
	}

	if maxExchanges > 0 && len(pairs) > maxExchanges {
		pairs = pairs[len(pairs)-maxExchanges:]
	}

	result := make([]models.HistoryEntry, 0, len(pairs)*2)
	for _, p := range pairs {
		result = append(result, p[0], p[1])
	}
	return result
}

// DetectCorruptedHistory checks if the history has any issues that would cause API errors.
// Returns a list of issues found (empty if history is clean).
func DetectCorruptedHistory(entries []models.HistoryEntry) []string {
	issues := []string{}
	if len(entries) == 0 {
		return issues
	}

	if entries[0].Role != models.RoleUser {
		issues = append(issues, "History starts with a model entry")
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Role == entries[i-1].Role {
			issues = append(issues, "Two consecutive "+string(entries[i].Role)+" entries")
		}
	}
	if entries[len(entries)-1].Role == models.RoleUser {
		issues = append(issues, "Unanswered user entry at end of history")
	}
	return issues
}
