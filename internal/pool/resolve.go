package pool

import (
	"maps"

	"github.com/omarshaarawi/survivorbot/internal/models"
)

// ResolveWeek settles the competition's current week. Active entries of the
// competition survive only with a WIN for their pick; everything else,
// including a missing pick, eliminates them. The week then advances by one and
// the outcomes are recorded in the history. Entries are settled independently.
func (e *Engine) ResolveWeek(comp models.Competition, entries []models.Entry, outcomes map[string]models.TeamStatus) (models.Competition, []models.Entry) {
	week := comp.CurrentWeek

	out := make([]models.Entry, len(entries))
	for i, en := range entries {
		out[i] = settle(en, comp.ID, week, outcomes)
	}

	next := comp.Clone()
	next.History = append(next.History, models.WeeklyResult{Week: week, Results: recorded(outcomes)})
	next.CurrentWeek = week + 1
	return next, out
}

func settle(en models.Entry, competitionID string, week int, outcomes map[string]models.TeamStatus) models.Entry {
	if en.CompetitionID != competitionID || en.Status != models.EntryActive {
		return en
	}
	pick, ok := en.PickFor(week)
	if ok && outcomes[pick.TeamID] == models.StatusWin {
		return en
	}
	eliminated := en.Clone()
	eliminated.Status = models.EntryEliminated
	return eliminated
}

func recorded(outcomes map[string]models.TeamStatus) map[string]models.TeamStatus {
	if outcomes == nil {
		return map[string]models.TeamStatus{}
	}
	return maps.Clone(outcomes)
}
