package models

import "time"

type LeagueTableEntry struct {
	Position int    `json:"position"`
	TeamID   string `json:"teamId,omitempty"`
	Team     string `json:"team"`
	Played   int    `json:"played"`
	Win      int    `json:"win"`
	Draw     int    `json:"draw"`
	Loss     int    `json:"loss"`
	GD       int    `json:"gd"`
	Points   int    `json:"points"`
}

type FixtureStatus string

const (
	FixtureScheduled FixtureStatus = "SCHEDULED"
	FixtureLive      FixtureStatus = "LIVE"
	FixtureFinished  FixtureStatus = "FT"
)

type Fixture struct {
	Matchday   int
	HomeTeamID string
	AwayTeamID string
	HomeTeam   string
	AwayTeam   string
	Kickoff    time.Time
	Status     FixtureStatus
	Score      string
}

// Involves reports whether teamID plays in the fixture.
func (f Fixture) Involves(teamID string) bool {
	return teamID != "" && (f.HomeTeamID == teamID || f.AwayTeamID == teamID)
}

type FormResult string

const (
	FormWin  FormResult = "W"
	FormDraw FormResult = "D"
	FormLoss FormResult = "L"
)

type TeamForm struct {
	TeamID         string
	TeamName       string
	TeamLogo       string
	Last5          []FormResult
	GoalsFor       int
	GoalsAgainst   int
	GoalDifference int
	Points         int
}

type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// LeagueData is cached external data. It is never persisted with the session.
type LeagueData struct {
	Table       []LeagueTableEntry
	Fixtures    []Fixture
	Form        []TeamForm
	Sources     []Source
	FormSources []Source
	LastUpdated time.Time
}

func (d LeagueData) Clone() LeagueData {
	out := d
	out.Table = append([]LeagueTableEntry(nil), d.Table...)
	out.Fixtures = append([]Fixture(nil), d.Fixtures...)
	out.Sources = append([]Source(nil), d.Sources...)
	out.FormSources = append([]Source(nil), d.FormSources...)
	out.Form = make([]TeamForm, len(d.Form))
	for i, f := range d.Form {
		f.Last5 = append([]FormResult(nil), f.Last5...)
		out.Form[i] = f
	}
	return out
}
