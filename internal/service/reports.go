package service

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/omarshaarawi/survivorbot/internal/models"
	"github.com/omarshaarawi/survivorbot/internal/pool"
)

const shareBaseURL = "https://wa.me/?"

// Breakdown shows how the pool's surviving entries picked for week. A week of
// 0 means the current week.
func (s *SurvivorService) Breakdown(week int) (string, error) {
	state := s.store.Snapshot()
	comp, err := selected(state)
	if err != nil {
		return "", err
	}
	if week == 0 {
		week = comp.CurrentWeek
	}

	counts := s.engine.SelectionBreakdown(comp, state.Entries, week)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 *MW %d pick breakdown*\n\n", week))
	if len(counts) == 0 {
		sb.WriteString("No picks yet.")
		return sb.String(), nil
	}

	total := 0
	for _, c := range counts {
		total += c.Count
	}
	for _, c := range counts {
		sb.WriteString(fmt.Sprintf("%s: %d (%d%%)\n", c.Team.Name, c.Count, c.Count*100/total))
	}
	return sb.String(), nil
}

// Standings shows every entry of the pool with its pick per week.
func (s *SurvivorService) Standings() (string, error) {
	state := s.store.Snapshot()
	comp, err := selected(state)
	if err != nil {
		return "", err
	}

	entries := state.EntriesIn(comp.ID, "")
	weeks := s.engine.StandingsWeeks(comp, entries)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 *Standings: %s*\n\n", md(comp.Name)))
	if len(entries) == 0 {
		sb.WriteString("No entries yet.")
		return sb.String(), nil
	}

	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%s *%s* (%s)\n", statusIcon(e.Status), md(e.Name), md(e.OwnerNickname)))
		cells := make([]string, 0, len(weeks))
		for _, w := range weeks {
			p, ok := e.PickFor(w)
			if !ok {
				cells = append(cells, fmt.Sprintf("MW%d -", w))
				continue
			}
			cell := fmt.Sprintf("MW%d %s", w, s.shortName(p.TeamID))
			if w < comp.CurrentWeek {
				if status, _ := comp.Result(w, p.TeamID); status == models.StatusWin {
					cell += " ✅"
				} else {
					cell += " ❌"
				}
			}
			cells = append(cells, cell)
		}
		sb.WriteString("   " + strings.Join(cells, " · ") + "\n")
	}
	return sb.String(), nil
}

// Table shows the league table ordered by points, then goal difference.
func (s *SurvivorService) Table() string {
	data := s.repo.GetData()

	table := append([]models.LeagueTableEntry(nil), data.Table...)
	sort.SliceStable(table, func(i, j int) bool {
		if table[i].Points != table[j].Points {
			return table[i].Points > table[j].Points
		}
		return table[i].GD > table[j].GD
	})

	var sb strings.Builder
	sb.WriteString("🏆 *Premier League Table*\n\n")
	if len(table) == 0 {
		sb.WriteString("No table data available yet.")
		return sb.String()
	}
	for i, row := range table {
		sb.WriteString(fmt.Sprintf("%d. *%s* %d pts\n", i+1, md(row.Team), row.Points))
		sb.WriteString(fmt.Sprintf("   P %d  W %d  D %d  L %d  GD %+d\n", row.Played, row.Win, row.Draw, row.Loss, row.GD))
	}
	writeSources(&sb, data.Sources)
	writeUpdated(&sb, data.LastUpdated, s.settings.Location)
	return sb.String()
}

// Fixtures lists one matchweek of upcoming fixtures. A week of 0 means the
// selected pool's current week, or the earliest cached matchweek when that
// week has no fixtures.
func (s *SurvivorService) Fixtures(week int) string {
	data := s.repo.GetData()

	byWeek := map[int][]models.Fixture{}
	var weeks []int
	for _, f := range data.Fixtures {
		if _, ok := byWeek[f.Matchday]; !ok {
			weeks = append(weeks, f.Matchday)
		}
		byWeek[f.Matchday] = append(byWeek[f.Matchday], f)
	}
	sort.Ints(weeks)

	var sb strings.Builder
	if len(weeks) == 0 {
		sb.WriteString("📅 *Fixtures*\n\nNo upcoming fixtures.")
		return sb.String()
	}
	if week == 0 {
		week = weeks[0]
		if comp, err := selected(s.store.Snapshot()); err == nil && len(byWeek[comp.CurrentWeek]) > 0 {
			week = comp.CurrentWeek
		}
	}

	sb.WriteString(fmt.Sprintf("📅 *MW %d Fixtures*\n\n", week))
	fixtures := byWeek[week]
	if len(fixtures) == 0 {
		sb.WriteString("No fixtures cached for this matchweek.\n")
	}

	sort.SliceStable(fixtures, func(i, j int) bool { return fixtures[i].Kickoff.Before(fixtures[j].Kickoff) })
	now := s.clock.Now()
	for _, f := range fixtures {
		line := fmt.Sprintf("%s vs %s", f.HomeTeam, f.AwayTeam)
		if f.Score != "" {
			line = fmt.Sprintf("%s %s %s", f.HomeTeam, f.Score, f.AwayTeam)
		}
		if !f.Kickoff.IsZero() {
			line += ", " + f.Kickoff.In(s.settings.Location).Format("Mon 02 Jan 15:04")
			if s.engine.IsLocked(f.Kickoff, now) {
				line = "🔒 " + line
			}
		}
		if f.Status == models.FixtureLive {
			line += " (LIVE)"
		}
		sb.WriteString(line + "\n")
	}

	var others []string
	for _, w := range weeks {
		if w != week {
			others = append(others, fmt.Sprintf("%d", w))
		}
		if len(others) == 8 {
			break
		}
	}
	if len(others) > 0 {
		sb.WriteString(fmt.Sprintf("\nOther matchweeks: %s", strings.Join(others, ", ")))
	}
	return sb.String()
}

func (s *SurvivorService) Form() string {
	data := s.repo.GetData()

	var sb strings.Builder
	sb.WriteString("📈 *Team Form (last 5)*\n\n")
	if len(data.Form) == 0 {
		sb.WriteString("No form data available yet.")
		return sb.String()
	}
	for i, f := range data.Form {
		var results strings.Builder
		for _, r := range f.Last5 {
			results.WriteString(formIcon(r))
		}
		sb.WriteString(fmt.Sprintf("%d. *%s* %s %d pts\n", i+1, md(f.TeamName), results.String(), f.Points))
		sb.WriteString(fmt.Sprintf("   GF %d  GA %d  GD %+d\n", f.GoalsFor, f.GoalsAgainst, f.GoalDifference))
	}
	writeSources(&sb, data.FormSources)
	return sb.String()
}

// ShareText is the plain survivor report for the selected pool.
func (s *SurvivorService) ShareText() (string, error) {
	state := s.store.Snapshot()
	comp, err := selected(state)
	if err != nil {
		return "", err
	}

	week := comp.CurrentWeek
	survivors := pool.Survivors(comp, state.Entries)

	var sb strings.Builder
	sb.WriteString("🏆 *PL SURVIVOR ELITE* 🏆\n")
	sb.WriteString(fmt.Sprintf("*Pool:* %s\n", comp.Name))
	sb.WriteString(fmt.Sprintf("*MW %d Report*\n", week))
	sb.WriteString("--------------------------\n")
	sb.WriteString(fmt.Sprintf("🛡️ *Survivors:* %d\n", len(survivors)))
	for _, e := range survivors {
		team := "Waiting..."
		if p, ok := e.PickFor(week); ok {
			if t, ok := s.teams.Find(p.TeamID); ok {
				team = t.Name
			}
		}
		sb.WriteString(fmt.Sprintf("- %s: %s\n", e.Name, team))
	}
	return sb.String(), nil
}

// ShareLink returns a chat-app compose link prefilled with ShareText.
func (s *SurvivorService) ShareLink() (string, error) {
	text, err := s.ShareText()
	if err != nil {
		return "", err
	}
	return shareBaseURL + url.Values{"text": {text}}.Encode(), nil
}

// DeadlineReminder lists the manager's active entries still missing a pick
// for the current week. It returns "" when there is nothing to remind.
func (s *SurvivorService) DeadlineReminder() string {
	state := s.store.Snapshot()
	comp, err := selected(state)
	if err != nil || state.UserNickname == "" {
		return ""
	}

	var missing []string
	for _, e := range state.EntriesIn(comp.ID, state.UserNickname) {
		if e.Status != models.EntryActive {
			continue
		}
		if _, ok := e.PickFor(comp.CurrentWeek); !ok {
			missing = append(missing, md(e.Name))
		}
	}
	if len(missing) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⏰ *MW %d deadline*\n\n", comp.CurrentWeek))
	sb.WriteString(fmt.Sprintf("No pick yet in *%s*: %s\n", md(comp.Name), strings.Join(missing, ", ")))

	var first time.Time
	for _, f := range s.repo.GetData().Fixtures {
		if f.Matchday == comp.CurrentWeek && !f.Kickoff.IsZero() && (first.IsZero() || f.Kickoff.Before(first)) {
			first = f.Kickoff
		}
	}
	if !first.IsZero() {
		sb.WriteString(fmt.Sprintf("First kickoff: %s. Picks lock %s before kickoff.\n",
			first.In(s.settings.Location).Format("Mon 02 Jan 15:04"), s.engine.Rules().LockWindow))
	}
	sb.WriteString("Use /available then /pick.")
	return sb.String()
}

// LeagueReport summarizes the cached league data for the command line.
func (s *SurvivorService) LeagueReport() string {
	return s.Table() + "\n\n" + s.Fixtures(0) + "\n\n" + s.Form()
}

func (s *SurvivorService) shortName(teamID string) string {
	if t, ok := s.teams.Find(teamID); ok && t.ShortName != "" {
		return t.ShortName
	}
	return teamID
}

func writeSources(sb *strings.Builder, sources []models.Source) {
	if len(sources) == 0 {
		return
	}
	sb.WriteString("\n🔗 Sources:\n")
	for _, src := range sources {
		sb.WriteString(fmt.Sprintf("• [%s](%s)\n", md(src.Title), src.URI))
	}
}

func writeUpdated(sb *strings.Builder, at time.Time, loc *time.Location) {
	if at.IsZero() {
		return
	}
	sb.WriteString(fmt.Sprintf("\n_Updated %s_", at.In(loc).Format("02 Jan 15:04")))
}

func formIcon(r models.FormResult) string {
	switch r {
	case models.FormWin:
		return "🟩"
	case models.FormLoss:
		return "🟥"
	default:
		return "⬜"
	}
}
