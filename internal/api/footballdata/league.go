package footballdata

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/omarshaarawi/survivorbot/internal/models"
	"github.com/omarshaarawi/survivorbot/internal/teams"
	"github.com/tidwall/gjson"
)

type API struct {
	client *Client
	teams  *teams.Directory
}

func NewAPI(client *Client, directory *teams.Directory) *API {
	return &API{client: client, teams: directory}
}

func (a *API) GetStandings(ctx context.Context) ([]models.LeagueTableEntry, error) {
	endpoint := fmt.Sprintf("/competitions/%s/standings", a.client.Config.Competition)

	res, err := a.client.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching standings: %w", err)
	}

	rows := res.Get(`standings.#(type=="TOTAL").table`).Array()
	table := make([]models.LeagueTableEntry, 0, len(rows))
	for _, row := range rows {
		entry := models.LeagueTableEntry{
			Position: int(row.Get("position").Int()),
			Team:     "Unknown",
			Played:   int(row.Get("playedGames").Int()),
			Win:      int(row.Get("won").Int()),
			Draw:     int(row.Get("draw").Int()),
			Loss:     int(row.Get("lost").Int()),
			GD:       int(row.Get("goalDifference").Int()),
			Points:   int(row.Get("points").Int()),
		}
		if name := row.Get("team.name").String(); name != "" {
			entry.Team = name
			if team, ok := a.teams.Match(name); ok {
				entry.TeamID = team.ID
				entry.Team = team.Name
			} else {
				slog.Warn("Unrecognized team in standings", "team", name)
			}
		}
		table = append(table, entry)
	}

	return table, nil
}

func (a *API) GetScheduledMatches(ctx context.Context) ([]models.Fixture, error) {
	endpoint := fmt.Sprintf("/competitions/%s/matches", a.client.Config.Competition)
	params := map[string]string{
		"status": "SCHEDULED",
	}

	res, err := a.client.Get(ctx, endpoint, params)
	if err != nil {
		return nil, fmt.Errorf("fetching matches: %w", err)
	}

	return a.parseMatches(res.Get("matches").Array()), nil
}

func (a *API) parseMatches(matches []gjson.Result) []models.Fixture {
	fixtures := make([]models.Fixture, 0, len(matches))
	for _, m := range matches {
		f := models.Fixture{
			Matchday: int(m.Get("matchday").Int()),
			HomeTeam: m.Get("homeTeam.name").String(),
			AwayTeam: m.Get("awayTeam.name").String(),
			Status:   fixtureStatus(m.Get("status").String()),
		}
		if team, ok := a.teams.Match(f.HomeTeam); ok {
			f.HomeTeamID, f.HomeTeam = team.ID, team.Name
		}
		if team, ok := a.teams.Match(f.AwayTeam); ok {
			f.AwayTeamID, f.AwayTeam = team.ID, team.Name
		}
		if kickoff, err := time.Parse(time.RFC3339, m.Get("utcDate").String()); err == nil {
			f.Kickoff = kickoff
		}
		home, away := m.Get("score.fullTime.home"), m.Get("score.fullTime.away")
		if home.Exists() && home.Type != gjson.Null && away.Exists() && away.Type != gjson.Null {
			f.Score = fmt.Sprintf("%d-%d", home.Int(), away.Int())
		}
		fixtures = append(fixtures, f)
	}

	sort.SliceStable(fixtures, func(i, j int) bool {
		if fixtures[i].Matchday != fixtures[j].Matchday {
			return fixtures[i].Matchday < fixtures[j].Matchday
		}
		return fixtures[i].Kickoff.Before(fixtures[j].Kickoff)
	})
	return fixtures
}

func fixtureStatus(status string) models.FixtureStatus {
	switch status {
	case "IN_PLAY", "PAUSED", "LIVE":
		return models.FixtureLive
	case "FINISHED", "AWARDED":
		return models.FixtureFinished
	default:
		return models.FixtureScheduled
	}
}
