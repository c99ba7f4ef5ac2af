package pool

import (
	"sort"
	"time"

	"github.com/omarshaarawi/survivorbot/internal/models"
)

// FixtureLookup reports the kickoff of the team's fixture in a week. Fixture
// data is best effort, so a missing fixture is not an error.
type FixtureLookup interface {
	Kickoff(week int, teamID string) (time.Time, bool)
}

// Fixtures adapts cached fixtures to FixtureLookup.
type Fixtures []models.Fixture

func (f Fixtures) Kickoff(week int, teamID string) (time.Time, bool) {
	for _, fx := range f {
		if fx.Matchday == week && fx.Involves(teamID) && !fx.Kickoff.IsZero() {
			return fx.Kickoff, true
		}
	}
	return time.Time{}, false
}

type PickRequest struct {
	Entry  models.Entry
	Week   int
	TeamID string
	// CurrentWeek is the competition's current week; earlier weeks are resolved.
	CurrentWeek int
	// Entries may hold every known entry; only the owner's other entries in the
	// same competition are considered.
	Entries  []models.Entry
	Fixtures FixtureLookup
	Now      time.Time
}

// RequestPick validates a pick and stages it for confirmation. Checks run in
// order and the first failure wins.
func (e *Engine) RequestPick(req PickRequest) (models.PendingPick, error) {
	entry := req.Entry

	if entry.Status != models.EntryActive {
		return models.PendingPick{}, reject(ErrEntryNotActive, "%s is %s", entry.Name, entry.Status)
	}

	if !e.isID(req.TeamID) {
		return models.PendingPick{}, reject(ErrUnknownTeam, "%q", req.TeamID)
	}

	if req.Week < 1 || req.Week < req.CurrentWeek {
		return models.PendingPick{}, reject(ErrWeekClosed, "week %d is already resolved", req.Week)
	}

	if req.Fixtures != nil {
		if kickoff, ok := req.Fixtures.Kickoff(req.Week, req.TeamID); ok && e.IsLocked(kickoff, req.Now) {
			return models.PendingPick{}, reject(ErrMatchLocked, "%s kicked off or starts within %s", e.teams.Name(req.TeamID), e.rules.LockWindow)
		}
	}

	if usedInEntry(entry, req.TeamID, req.Week) {
		return models.PendingPick{}, reject(ErrTeamAlreadyUsedInEntry, "%s already used by %s", e.teams.Name(req.TeamID), entry.Name)
	}

	if other, ok := usedByOwnerBefore(entry, req.Entries, req.TeamID, req.Week); ok {
		return models.PendingPick{}, reject(ErrTeamAlreadyUsedByOwner, "%s already picked by %s in an earlier week", e.teams.Name(req.TeamID), other.Name)
	}

	return models.PendingPick{EntryID: entry.ID, Week: req.Week, TeamID: req.TeamID}, nil
}

type ConfirmRequest struct {
	Entry       models.Entry
	Pending     models.PendingPick
	CurrentWeek int
	Fixtures    FixtureLookup
	Now         time.Time
}

// ConfirmPick commits a staged pick, replacing any pick the entry holds for
// the same week. The week and the kickoff lock are checked again against the
// time of confirmation.
func (e *Engine) ConfirmPick(req ConfirmRequest) (models.Entry, error) {
	entry, pending := req.Entry, req.Pending
	if entry.ID != pending.EntryID {
		return entry, reject(ErrPickMismatch, "staged pick belongs to another entry")
	}
	if entry.Status != models.EntryActive {
		return entry, reject(ErrEntryNotActive, "%s is %s", entry.Name, entry.Status)
	}
	if pending.Week < req.CurrentWeek {
		return entry, reject(ErrWeekClosed, "week %d is already resolved", pending.Week)
	}
	if req.Fixtures != nil {
		if kickoff, ok := req.Fixtures.Kickoff(pending.Week, pending.TeamID); ok && e.IsLocked(kickoff, req.Now) {
			return entry, reject(ErrMatchLocked, "%s kicked off or starts within %s", e.teams.Name(pending.TeamID), e.rules.LockWindow)
		}
	}

	out := entry.Clone()
	picks := out.Picks[:0]
	for _, p := range out.Picks {
		if p.Week != pending.Week {
			picks = append(picks, p)
		}
	}
	picks = append(picks, models.Pick{Week: pending.Week, TeamID: pending.TeamID})
	sort.SliceStable(picks, func(i, j int) bool { return picks[i].Week < picks[j].Week })
	out.Picks = picks
	return out, nil
}

// AvailableTeams lists the teams the entry may still pick for week, ignoring
// fixture locks.
func (e *Engine) AvailableTeams(entry models.Entry, entries []models.Entry, week int) []models.Team {
	var out []models.Team
	for _, t := range e.teams.All() {
		if usedInEntry(entry, t.ID, week) {
			continue
		}
		if _, ok := usedByOwnerBefore(entry, entries, t.ID, week); ok {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (e *Engine) isID(id string) bool {
	t, ok := e.teams.Find(id)
	return ok && t.ID == id
}

func usedInEntry(entry models.Entry, teamID string, week int) bool {
	for _, p := range entry.Picks {
		if p.TeamID == teamID && p.Week != week {
			return true
		}
	}
	return false
}

// usedByOwnerBefore only looks at strictly earlier weeks. Later weeks picked by
// another entry of the same owner do not block the pick.
func usedByOwnerBefore(entry models.Entry, entries []models.Entry, teamID string, week int) (models.Entry, bool) {
	for _, other := range entries {
		if other.ID == entry.ID || other.OwnerNickname != entry.OwnerNickname || other.CompetitionID != entry.CompetitionID {
			continue
		}
		for _, p := range other.Picks {
			if p.TeamID == teamID && p.Week < week {
				return other, true
			}
		}
	}
	return models.Entry{}, false
}
