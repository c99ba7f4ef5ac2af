package league

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/survivorbot/internal/models"
	"github.com/omarshaarawi/survivorbot/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePrimary struct {
	table       []models.LeagueTableEntry
	tableErr    error
	fixtures    []models.Fixture
	fixturesErr error
}

func (f *fakePrimary) GetStandings(context.Context) ([]models.LeagueTableEntry, error) {
	return f.table, f.tableErr
}

func (f *fakePrimary) GetScheduledMatches(context.Context) ([]models.Fixture, error) {
	return f.fixtures, f.fixturesErr
}

type fakeFallback struct {
	table          []models.LeagueTableEntry
	sources        []models.Source
	form           []models.TeamForm
	formErr        error
	standingsCalls atomic.Int32
}

func (f *fakeFallback) GetStandings(context.Context) ([]models.LeagueTableEntry, []models.Source, error) {
	f.standingsCalls.Add(1)
	return f.table, f.sources, nil
}

func (f *fakeFallback) GetForm(context.Context) ([]models.TeamForm, []models.Source, error) {
	return f.form, nil, f.formErr
}

func (f *fakeFallback) ScoutAdvice(_ context.Context, week int, entry models.Entry, _ []models.Team) string {
	return entry.Name
}

var refreshedAt = time.Date(2024, 11, 20, 9, 0, 0, 0, time.UTC)

func TestRefreshUsesPrimary(t *testing.T) {
	primary := &fakePrimary{
		table:    []models.LeagueTableEntry{{Position: 1, TeamID: "LIV", Team: "Liverpool", Points: 31}},
		fixtures: []models.Fixture{{Matchday: 12, HomeTeamID: "ARS", AwayTeamID: "NFO"}},
	}
	fallback := &fakeFallback{form: []models.TeamForm{{TeamID: "ARS", Points: 10}}}
	repo := memory.NewRepository()

	data, err := NewAPI(primary, fallback, repo, clockwork.NewFakeClockAt(refreshedAt)).Refresh(context.Background())
	require.NoError(t, err)

	require.Len(t, data.Table, 1)
	assert.Equal(t, "LIV", data.Table[0].TeamID)
	assert.Len(t, data.Fixtures, 1)
	assert.Len(t, data.Form, 1)
	assert.Equal(t, refreshedAt, data.LastUpdated)
	assert.Zero(t, fallback.standingsCalls.Load(), "search standings only when the primary table is empty")
}

func TestRefreshFallsBackToSearchStandings(t *testing.T) {
	primary := &fakePrimary{tableErr: errors.New("unexpected status code: 403")}
	fallback := &fakeFallback{
		table:   []models.LeagueTableEntry{{Position: 1, TeamID: "ARS", Team: "Arsenal"}},
		sources: []models.Source{{Title: "BBC Sport", URI: "https://www.bbc.co.uk/sport/football/premier-league/table"}},
	}
	repo := memory.NewRepository()

	data, err := NewAPI(primary, fallback, repo, clockwork.NewFakeClockAt(refreshedAt)).Refresh(context.Background())
	assert.ErrorContains(t, err, "error fetching standings")

	assert.Equal(t, int32(1), fallback.standingsCalls.Load())
	require.Len(t, data.Table, 1)
	assert.Equal(t, "ARS", data.Table[0].TeamID)
	assert.Len(t, data.Sources, 1)
}

func TestRefreshFailuresKeepCachedData(t *testing.T) {
	repo := memory.NewRepository()
	repo.SaveFixtures([]models.Fixture{{Matchday: 11, HomeTeamID: "CHE", AwayTeamID: "ARS"}}, refreshedAt.Add(-time.Hour))
	repo.SaveForm([]models.TeamForm{{TeamID: "CHE"}}, nil, refreshedAt.Add(-time.Hour))

	primary := &fakePrimary{fixturesErr: errors.New("connection refused")}
	fallback := &fakeFallback{formErr: errors.New("gemini: no API key configured")}

	data, err := NewAPI(primary, fallback, repo, clockwork.NewFakeClockAt(refreshedAt)).Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, primary.fixturesErr) || errors.Is(err, fallback.formErr), err)

	assert.Empty(t, data.Table)
	assert.Len(t, data.Fixtures, 1)
	assert.Len(t, data.Form, 1)
}

func TestRefreshEmptyFixturesReplaceCache(t *testing.T) {
	repo := memory.NewRepository()
	repo.SaveFixtures([]models.Fixture{{Matchday: 38}}, refreshedAt.Add(-time.Hour))

	data, err := NewAPI(&fakePrimary{}, &fakeFallback{}, repo, clockwork.NewFakeClockAt(refreshedAt)).Refresh(context.Background())
	require.NoError(t, err)

	assert.Empty(t, data.Fixtures, "a successful empty response means the season is over")
}

func TestScoutPassesThrough(t *testing.T) {
	api := NewAPI(&fakePrimary{}, &fakeFallback{}, memory.NewRepository(), clockwork.NewRealClock())
	assert.Equal(t, "Entry #1", api.Scout(context.Background(), 3, models.Entry{Name: "Entry #1"}, nil))
}
