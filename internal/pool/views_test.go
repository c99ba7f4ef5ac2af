package pool

import (
	"testing"

	"github.com/omarshaarawi/survivorbot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionBreakdown(t *testing.T) {
	e := newTestEngine(t)
	entries := []models.Entry{
		testEntry("e1", "alice", pick(1, "ARS")),
		testEntry("e2", "bob", pick(1, "ARS")),
		testEntry("e3", "carol", pick(1, "BRE")),
	}

	got := e.SelectionBreakdown(testCompetition(1), entries, 1)

	require.Len(t, got, 2)
	assert.Equal(t, "ARS", got[0].Team.ID)
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, "BRE", got[1].Team.ID)
	assert.Equal(t, 1, got[1].Count)
}

func TestSelectionBreakdownSkipsInactiveAndTiesAreStable(t *testing.T) {
	e := newTestEngine(t)
	out := testEntry("e0", "dave", pick(1, "ARS"))
	out.Status = models.EntryEliminated
	otherPool := testEntry("e9", "erin", pick(1, "ARS"))
	otherPool.CompetitionID = "c2"

	entries := []models.Entry{
		out,
		otherPool,
		testEntry("e1", "alice", pick(1, "LIV")),
		testEntry("e2", "bob", pick(1, "CHE")),
		testEntry("e3", "carol", pick(2, "ARS")),
		testEntry("e4", "carol", pick(1, "CHE")),
		testEntry("e5", "frank", pick(1, "TOT")),
	}

	got := e.SelectionBreakdown(testCompetition(1), entries, 1)

	var ids []string
	for _, tc := range got {
		ids = append(ids, tc.Team.ID)
	}
	assert.Equal(t, []string{"CHE", "LIV", "TOT"}, ids)
}

func TestStandingsWeeks(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, []int{1, 2, 3}, e.StandingsWeeks(testCompetition(3), nil))

	entries := []models.Entry{testEntry("e1", "alice", pick(1, "ARS"), pick(5, "LIV"))}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, e.StandingsWeeks(testCompetition(2), entries))

	otherPool := testEntry("e2", "bob", pick(9, "LIV"))
	otherPool.CompetitionID = "c2"
	assert.Equal(t, []int{1, 2}, e.StandingsWeeks(testCompetition(2), []models.Entry{otherPool}))
}

func TestSurvivors(t *testing.T) {
	out := testEntry("e2", "bob")
	out.Status = models.EntryEliminated

	got := Survivors(testCompetition(1), []models.Entry{testEntry("e1", "alice"), out})
	require.Len(t, got, 1)
	assert.Equal(t, "e1", got[0].ID)
}
