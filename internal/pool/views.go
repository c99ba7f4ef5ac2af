package pool

import (
	"sort"

	"github.com/omarshaarawi/survivorbot/internal/models"
)

type TeamCount struct {
	Team  models.Team
	Count int
}

// SelectionBreakdown counts the picks of active entries for week, most picked
// first. Ties keep the order in which the teams first appear.
func (e *Engine) SelectionBreakdown(comp models.Competition, entries []models.Entry, week int) []TeamCount {
	var order []string
	counts := make(map[string]int)

	for _, en := range entries {
		if en.CompetitionID != comp.ID || en.Status != models.EntryActive {
			continue
		}
		pick, ok := en.PickFor(week)
		if !ok {
			continue
		}
		if _, seen := counts[pick.TeamID]; !seen {
			order = append(order, pick.TeamID)
		}
		counts[pick.TeamID]++
	}

	out := make([]TeamCount, 0, len(order))
	for _, id := range order {
		team, ok := e.teams.Find(id)
		if !ok {
			team = models.Team{ID: id, Name: id, ShortName: id}
		}
		out = append(out, TeamCount{Team: team, Count: counts[id]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// StandingsWeeks returns 1..N where N covers the current week and any pick
// made for a later week.
func (e *Engine) StandingsWeeks(comp models.Competition, entries []models.Entry) []int {
	last := comp.CurrentWeek
	for _, en := range entries {
		if en.CompetitionID != comp.ID {
			continue
		}
		for _, p := range en.Picks {
			last = max(last, p.Week)
		}
	}

	weeks := make([]int, 0, last)
	for w := 1; w <= last; w++ {
		weeks = append(weeks, w)
	}
	return weeks
}

// Survivors returns the active entries of the competition.
func Survivors(comp models.Competition, entries []models.Entry) []models.Entry {
	var out []models.Entry
	for _, en := range entries {
		if en.CompetitionID == comp.ID && en.Status == models.EntryActive {
			out = append(out, en)
		}
	}
	return out
}
