package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/omarshaarawi/survivorbot/internal/models"
	"github.com/omarshaarawi/survivorbot/internal/retry"
	"github.com/omarshaarawi/survivorbot/internal/teams"
	"github.com/tidwall/gjson"
)

const (
	source = "gemini"

	PlaceholderLogo = "https://via.placeholder.com/50"

	scoutDelayed  = "Scouting report delayed..."
	scoutFallback = "Trust your manager's intuition today."
)

type API struct {
	gen    Generator
	teams  *teams.Directory
	season string
	Policy retry.Policy
}

func NewAPI(gen Generator, directory *teams.Directory, season string) *API {
	return &API{
		gen:    gen,
		teams:  directory,
		season: season,
		Policy: retry.DefaultPolicy(),
	}
}

func (a *API) generate(ctx context.Context, prompt string, search bool) (Generation, error) {
	var gen Generation
	err := retry.Do(ctx, source, a.Policy, func(ctx context.Context) error {
		var err error
		gen, err = a.gen.Generate(ctx, prompt, search)
		return err
	})
	return gen, err
}

// GetStandings asks the search-grounded model for the league table. A
// response without a usable JSON array yields an empty table, not an error.
func (a *API) GetStandings(ctx context.Context) ([]models.LeagueTableEntry, []models.Source, error) {
	prompt := fmt.Sprintf("Retrieve the current %s English Premier League standings. "+
		"I need the full table: position, team name, played, won, drawn, lost, goal difference, "+
		"and total points for all 20 teams. Please return the data as a raw JSON array of objects.", a.season)

	gen, err := a.generate(ctx, prompt, true)
	if err != nil {
		return nil, nil, fmt.Errorf("standings search: %w", err)
	}

	rows, ok := rowsOf(gen.Text)
	if !ok {
		slog.Warn("Standings search returned no usable JSON", "chars", len(gen.Text))
		return []models.LeagueTableEntry{}, gen.Sources, nil
	}

	table := make([]models.LeagueTableEntry, 0, len(rows))
	for i, row := range rows {
		entry := models.LeagueTableEntry{
			Position: intOf(row, "position", "pos", "rank"),
			Team:     strOf(row, "team", "teamName", "team.name", "name"),
			Played:   intOf(row, "played", "playedGames", "p"),
			Win:      intOf(row, "won", "win", "w"),
			Draw:     intOf(row, "drawn", "draw", "d"),
			Loss:     intOf(row, "lost", "loss", "l"),
			GD:       intOf(row, "goalDifference", "gd", "goal_difference"),
			Points:   intOf(row, "points", "pts"),
		}
		if entry.Position == 0 {
			entry.Position = i + 1
		}
		if entry.Team == "" {
			entry.Team = "Unknown"
		} else if team, ok := a.teams.Match(entry.Team); ok {
			entry.TeamID, entry.Team = team.ID, team.Name
		}
		table = append(table, entry)
	}
	return table, gen.Sources, nil
}

// GetForm asks the search-grounded model for each club's recent results and
// normalizes them: at most five results, anything but W or L counts as D.
// Rows are ordered by form points, then goal difference.
func (a *API) GetForm(ctx context.Context) ([]models.TeamForm, []models.Source, error) {
	prompt := fmt.Sprintf(`Find the current form for all 20 Premier League teams in the %s season.
For each team, I need a JSON object with:
1. teamName (string)
2. last5 (array of 'W', 'D', or 'L')
3. goalsFor (number)
4. goalsAgainst (number)
Return the results as a raw JSON array.`, a.season)

	gen, err := a.generate(ctx, prompt, true)
	if err != nil {
		return nil, nil, fmt.Errorf("form search: %w", err)
	}

	rows, ok := rowsOf(gen.Text)
	if !ok {
		slog.Warn("Form search returned no usable JSON", "chars", len(gen.Text))
		return []models.TeamForm{}, gen.Sources, nil
	}

	form := make([]models.TeamForm, 0, len(rows))
	for _, row := range rows {
		form = append(form, a.normalizeForm(row))
	}

	sort.SliceStable(form, func(i, j int) bool {
		if form[i].Points != form[j].Points {
			return form[i].Points > form[j].Points
		}
		return form[i].GoalDifference > form[j].GoalDifference
	})
	return form, gen.Sources, nil
}

func (a *API) normalizeForm(row gjson.Result) models.TeamForm {
	f := models.TeamForm{
		TeamName:     strOf(row, "teamName", "team", "name"),
		TeamLogo:     PlaceholderLogo,
		Last5:        []models.FormResult{},
		GoalsFor:     intOf(row, "goalsFor"),
		GoalsAgainst: intOf(row, "goalsAgainst"),
	}
	f.GoalDifference = f.GoalsFor - f.GoalsAgainst

	if team, ok := a.teams.Find(f.TeamName); ok {
		f.TeamID, f.TeamName = team.ID, team.Name
		if team.Logo != "" {
			f.TeamLogo = team.Logo
		}
	}

	for _, r := range row.Get("last5").Array() {
		if len(f.Last5) == 5 {
			break
		}
		result := models.FormResult(strings.ToUpper(strings.TrimSpace(r.String())))
		switch result {
		case models.FormWin:
			f.Points += 3
		case models.FormDraw:
			f.Points++
		case models.FormLoss:
		default:
			result = models.FormDraw
			f.Points++
		}
		f.Last5 = append(f.Last5, result)
	}
	return f
}

// ScoutAdvice returns a short pick suggestion for entry. It never fails:
// errors and empty answers are replaced with stock lines.
func (a *API) ScoutAdvice(ctx context.Context, week int, entry models.Entry, available []models.Team) string {
	var used []string
	for _, p := range entry.Picks {
		if p.Week < week {
			used = append(used, a.teams.Name(p.TeamID))
		}
	}
	usedList := strings.Join(used, ", ")
	if usedList == "" {
		usedList = "None"
	}

	names := make([]string, 0, len(available))
	for _, t := range available {
		names = append(names, t.Name)
	}

	prompt := fmt.Sprintf(`Context: Premier League Survivor Pool (Last Man Standing).
User must pick 1 team to WIN each week. Cannot reuse teams.
Current Week: %d
Previously Used: %s
Options for this week: %s

Role: Expert Football Scout.
Task: Provide a tactical pick for this week (Safe vs Value). Be concise (under 50 words).`,
		week, usedList, strings.Join(names, ", "))

	gen, err := a.generate(ctx, prompt, false)
	if err != nil {
		slog.Error("Error getting scout advice", "error", err)
		return scoutFallback
	}
	if gen.Text == "" {
		return scoutDelayed
	}
	return gen.Text
}

func rowsOf(text string) ([]gjson.Result, bool) {
	res, ok := ExtractJSON(text)
	if !ok {
		return nil, false
	}
	if res.IsArray() {
		return res.Array(), true
	}
	for _, key := range []string{"table", "standings", "teams", "form"} {
		if v := res.Get(key); v.IsArray() {
			return v.Array(), true
		}
	}
	return nil, false
}

func strOf(row gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := row.Get(p); v.Type == gjson.String && v.String() != "" {
			return strings.TrimSpace(v.String())
		}
	}
	return ""
}

func intOf(row gjson.Result, paths ...string) int {
	for _, p := range paths {
		if v := row.Get(p); v.Exists() && v.Type != gjson.Null {
			return int(v.Int())
		}
	}
	return 0
}
