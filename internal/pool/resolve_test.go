package pool

import (
	"testing"

	"github.com/omarshaarawi/survivorbot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveWeekElimination(t *testing.T) {
	e := newTestEngine(t)
	comp := testCompetition(2)

	entries := []models.Entry{
		testEntry("win", "alice", pick(2, "ARS")),
		testEntry("draw", "alice", pick(2, "LIV")),
		testEntry("loss", "bob", pick(2, "CHE")),
		testEntry("pending", "bob", pick(2, "TOT")),
		testEntry("nopick", "carol", pick(1, "ARS")),
	}
	outcomes := map[string]models.TeamStatus{
		"ARS": models.StatusWin,
		"LIV": models.StatusDraw,
		"CHE": models.StatusLoss,
		"TOT": models.StatusPending,
	}

	next, got := e.ResolveWeek(comp, entries, outcomes)

	want := map[string]models.EntryStatus{
		"win":     models.EntryActive,
		"draw":    models.EntryEliminated,
		"loss":    models.EntryEliminated,
		"pending": models.EntryEliminated,
		"nopick":  models.EntryEliminated,
	}
	require.Len(t, got, len(entries))
	for _, en := range got {
		assert.Equal(t, want[en.ID], en.Status, en.ID)
	}
	assert.Equal(t, 3, next.CurrentWeek)

	for _, en := range entries {
		assert.Equal(t, models.EntryActive, en.Status, "input entries are not mutated")
	}
	assert.Equal(t, 2, comp.CurrentWeek, "input competition is not mutated")
}

func TestResolveWeekLeavesOtherEntriesAlone(t *testing.T) {
	e := newTestEngine(t)

	otherPool := testEntry("x", "alice")
	otherPool.CompetitionID = "c2"
	eliminated := testEntry("y", "alice", pick(1, "ARS"))
	eliminated.Status = models.EntryEliminated
	winner := testEntry("z", "alice")
	winner.Status = models.EntryWinner

	_, got := e.ResolveWeek(testCompetition(1), []models.Entry{otherPool, eliminated, winner}, map[string]models.TeamStatus{"ARS": models.StatusWin})

	assert.Equal(t, models.EntryActive, got[0].Status)
	assert.Equal(t, models.EntryEliminated, got[1].Status, "no transition leaves ELIMINATED")
	assert.Equal(t, models.EntryWinner, got[2].Status)
}

func TestResolveWeekAdvancesByOne(t *testing.T) {
	e := newTestEngine(t)

	for _, week := range []int{1, 2, 7, 38} {
		next, _ := e.ResolveWeek(testCompetition(week), nil, nil)
		assert.Equal(t, week+1, next.CurrentWeek)
	}
}

func TestResolveWeekRecordsHistory(t *testing.T) {
	e := newTestEngine(t)
	outcomes := map[string]models.TeamStatus{"ARS": models.StatusWin}

	next, _ := e.ResolveWeek(testCompetition(1), nil, outcomes)
	next, _ = e.ResolveWeek(next, nil, nil)

	require.Len(t, next.History, 2)
	assert.Equal(t, 1, next.History[0].Week)
	assert.Equal(t, 2, next.History[1].Week)
	assert.NotNil(t, next.History[1].Results)

	outcomes["ARS"] = models.StatusLoss
	status, ok := next.Result(1, "ARS")
	require.True(t, ok)
	assert.Equal(t, models.StatusWin, status, "history keeps its own copy")
}
