package pool

import (
	"fmt"
	"testing"
	"time"

	"github.com/omarshaarawi/survivorbot/internal/models"
	"github.com/omarshaarawi/survivorbot/internal/teams"
)

var now = time.Date(2024, 8, 16, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(DefaultRules(), teams.PremierLeague())
	n := 0
	e.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return e
}

func testCompetition(week int) models.Competition {
	return models.Competition{
		ID:          "c1",
		Name:        "Office Pool",
		CurrentWeek: week,
		Status:      models.CompetitionOpen,
	}
}

func testEntry(id, owner string, picks ...models.Pick) models.Entry {
	return models.Entry{
		ID:            id,
		CompetitionID: "c1",
		Name:          "Entry " + id,
		OwnerNickname: owner,
		Status:        models.EntryActive,
		Picks:         picks,
		CreatedAtWeek: 1,
	}
}

func pick(week int, team string) models.Pick {
	return models.Pick{Week: week, TeamID: team}
}
