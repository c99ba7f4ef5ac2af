package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/survivorbot/internal/api/league"
	"github.com/omarshaarawi/survivorbot/internal/metrics"
	"github.com/omarshaarawi/survivorbot/internal/models"
	"github.com/omarshaarawi/survivorbot/internal/pool"
	"github.com/omarshaarawi/survivorbot/internal/repository/memory"
	"github.com/omarshaarawi/survivorbot/internal/store"
	"github.com/omarshaarawi/survivorbot/internal/teams"
)

var (
	ErrNoNickname     = errors.New("set a nickname first with /nick <name>")
	ErrNoPoolSelected = errors.New("select a pool first with /pool <number>")
	ErrAdminOnly      = errors.New("admin mode is off, toggle it with /admin")
	ErrNoPendingPick  = errors.New("no pick waiting for confirmation")
	ErrUnknownEntry   = errors.New("no such entry, see /entries")
	ErrUnknownPool    = errors.New("no such pool, see /pools")
	ErrUnknownStatus  = errors.New("result must be WIN, DRAW, LOSS or PENDING")
	ErrEmptyName      = errors.New("name must not be empty")
)

type Settings struct {
	StartingCoins int
	Location      *time.Location
}

type SurvivorService struct {
	engine   *pool.Engine
	store    *store.Store
	repo     *memory.Repository
	league   *league.API
	teams    *teams.Directory
	clock    clockwork.Clock
	settings Settings
}

func NewSurvivorService(engine *pool.Engine, st *store.Store, repo *memory.Repository, leagueAPI *league.API, directory *teams.Directory, clock clockwork.Clock, settings Settings) *SurvivorService {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &SurvivorService{
		engine:   engine,
		store:    st,
		repo:     repo,
		league:   leagueAPI,
		teams:    directory,
		clock:    clock,
		settings: settings,
	}
}

// Summary describes the session: who is playing, their coins and pool.
func (s *SurvivorService) Summary() string {
	state := s.store.Snapshot()

	var sb strings.Builder
	sb.WriteString("⚽ *PL Survivor*\n\n")
	if state.UserNickname == "" {
		sb.WriteString("Pick a nickname to start: /nick <name>")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("Manager: *%s*\n", md(state.UserNickname)))
	sb.WriteString(fmt.Sprintf("Coins: 🪙 %d\n", state.UserCoins))
	if comp, err := selected(state); err == nil {
		sb.WriteString(fmt.Sprintf("Pool: *%s* (MW %d)\n", md(comp.Name), comp.CurrentWeek))
	} else {
		sb.WriteString("Pool: none, see /pools\n")
	}
	if state.IsAdminMode {
		sb.WriteString("Admin mode: ON\n")
	}
	return sb.String()
}

// Register sets the nickname. The first registration also funds the wallet;
// renaming keeps the balance.
func (s *SurvivorService) Register(ctx context.Context, nickname string) (string, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return "", ErrEmptyName
	}

	state, err := s.store.Update(ctx, func(state *models.AppState) error {
		if state.UserNickname == "" {
			state.UserCoins = s.settings.StartingCoins
		} else if state.UserNickname != nickname {
			for i := range state.Entries {
				if state.Entries[i].OwnerNickname == state.UserNickname {
					state.Entries[i].OwnerNickname = nickname
				}
			}
		}
		state.UserNickname = nickname
		return nil
	})
	if err != nil {
		return "", err
	}

	slog.Info("Manager registered", "nickname", nickname)
	return fmt.Sprintf("👋 Welcome, *%s*! You have 🪙 %d coins.", md(state.UserNickname), state.UserCoins), nil
}

func (s *SurvivorService) CreatePool(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}

	var comp models.Competition
	_, err := s.store.Update(ctx, func(state *models.AppState) error {
		if state.UserNickname == "" {
			return ErrNoNickname
		}
		comp = s.engine.NewCompetition(name, state.UserNickname)
		state.Competitions = append(state.Competitions, comp)
		state.SelectedCompetitionID = comp.ID
		return nil
	})
	if err != nil {
		return "", err
	}

	slog.Info("Pool created", "id", comp.ID, "name", comp.Name)
	return fmt.Sprintf("🏟 Pool *%s* created and selected. Buy an entry with /entry.", md(comp.Name)), nil
}

// SelectPool selects a pool by its number in /pools, its id or its name.
func (s *SurvivorService) SelectPool(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)

	var comp models.Competition
	_, err := s.store.Update(ctx, func(state *models.AppState) error {
		c, ok := findCompetition(*state, ref)
		if !ok {
			return ErrUnknownPool
		}
		comp = c
		state.SelectedCompetitionID = c.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("▶️ Now playing in *%s* (MW %d).", md(comp.Name), comp.CurrentWeek), nil
}

func (s *SurvivorService) Pools() string {
	state := s.store.Snapshot()

	var sb strings.Builder
	sb.WriteString("🏟 *Pools*\n\n")
	if len(state.Competitions) == 0 {
		sb.WriteString("No pools yet. Create one with /newpool <name>.")
		return sb.String()
	}

	for i, c := range state.Competitions {
		marker := "  "
		if c.ID == state.SelectedCompetitionID {
			marker = "▶️"
		}
		all := state.EntriesIn(c.ID, "")
		alive := len(pool.Survivors(c, all))
		sb.WriteString(fmt.Sprintf("%s %d. *%s* (MW %d, %s)\n", marker, i+1, md(c.Name), c.CurrentWeek, c.Status))
		sb.WriteString(fmt.Sprintf("   %d/%d alive, created by %s\n", alive, len(all), md(c.CreatorNickname)))
	}
	sb.WriteString("\nSelect one with /pool <number>.")
	return sb.String()
}

func (s *SurvivorService) BuyEntry(ctx context.Context) (string, error) {
	var entry models.Entry
	state, err := s.store.Update(ctx, func(state *models.AppState) error {
		if state.UserNickname == "" {
			return ErrNoNickname
		}
		comp, err := selected(*state)
		if err != nil {
			return err
		}

		e, wallet, err := s.engine.CreateEntry(comp, state.UserNickname, state.Entries, state.UserCoins)
		if err != nil {
			return err
		}
		entry = e
		state.UserCoins = wallet
		state.Entries = append(state.Entries, e)
		return nil
	})
	if err != nil {
		return "", err
	}

	metrics.EntriesCreated.Inc()
	slog.Info("Entry created", "entry", entry.ID, "competition", entry.CompetitionID, "owner", entry.OwnerNickname)
	return fmt.Sprintf("🎟 *%s* is in! Balance: 🪙 %d.", md(entry.Name), state.UserCoins), nil
}

func (s *SurvivorService) MyEntries() (string, error) {
	state := s.store.Snapshot()
	if state.UserNickname == "" {
		return "", ErrNoNickname
	}
	comp, err := selected(state)
	if err != nil {
		return "", err
	}

	mine := state.EntriesIn(comp.ID, state.UserNickname)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎟 *Your entries in %s*\n\n", md(comp.Name)))
	if len(mine) == 0 {
		sb.WriteString("No entries yet. Buy one with /entry.\n")
	}
	for i, e := range mine {
		sb.WriteString(fmt.Sprintf("%d. %s *%s* %s", i+1, statusIcon(e.Status), md(e.Name), e.Status))
		if p, ok := e.PickFor(comp.CurrentWeek); ok {
			sb.WriteString(fmt.Sprintf(": MW %d pick *%s*", comp.CurrentWeek, s.teams.Name(p.TeamID)))
		} else if e.Status == models.EntryActive {
			sb.WriteString(fmt.Sprintf(": no pick for MW %d", comp.CurrentWeek))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("\nCoins: 🪙 %d", state.UserCoins))
	return sb.String(), nil
}

func (s *SurvivorService) ToggleAdmin(ctx context.Context) (string, error) {
	state, err := s.store.Update(ctx, func(state *models.AppState) error {
		state.IsAdminMode = !state.IsAdminMode
		return nil
	})
	if err != nil {
		return "", err
	}
	if state.IsAdminMode {
		return "🛠 Admin mode ON. Record results with /result <team> <WIN|DRAW|LOSS> and settle with /resolve.", nil
	}
	return "🛠 Admin mode OFF.", nil
}

// SetOutcome records a team's result for the week being played.
func (s *SurvivorService) SetOutcome(ctx context.Context, teamQuery, statusText string) (string, error) {
	state := s.store.Snapshot()
	if !state.IsAdminMode {
		return "", ErrAdminOnly
	}
	comp, err := selected(state)
	if err != nil {
		return "", err
	}

	team, ok := s.lookupTeam(teamQuery)
	if !ok {
		return "", fmt.Errorf("unknown team %q", teamQuery)
	}
	status, ok := models.ParseTeamStatus(statusText)
	if !ok {
		return "", ErrUnknownStatus
	}

	s.repo.SetOutcome(comp.ID, team.ID, status)
	slog.Info("Outcome recorded", "competition", comp.ID, "team", team.ID, "status", status)

	return s.outcomesReport(comp), nil
}

func (s *SurvivorService) outcomesReport(comp models.Competition) string {
	outcomes := s.repo.GetOutcomes(comp.ID)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📝 *Recorded results: %s, MW %d*\n\n", md(comp.Name), comp.CurrentWeek))
	if len(outcomes) == 0 {
		sb.WriteString("None yet. Every pick without a WIN is eliminated on /resolve.")
		return sb.String()
	}
	for _, t := range s.teams.All() {
		if status, ok := outcomes[t.ID]; ok {
			sb.WriteString(fmt.Sprintf("%s %s: %s\n", outcomeIcon(status), t.Name, status))
		}
	}
	return sb.String()
}

// Resolve settles the selected pool's current week with the recorded results
// and clears them.
func (s *SurvivorService) Resolve(ctx context.Context) (string, error) {
	var (
		outcomes map[string]models.TeamStatus
		before   models.Competition
		after    models.Competition
		settled  []models.Entry
		previous = map[string]models.EntryStatus{}
	)
	_, err := s.store.Update(ctx, func(state *models.AppState) error {
		if !state.IsAdminMode {
			return ErrAdminOnly
		}
		comp, err := selected(*state)
		if err != nil {
			return err
		}
		for _, e := range state.Entries {
			previous[e.ID] = e.Status
		}

		before = comp
		outcomes = s.repo.GetOutcomes(comp.ID)
		after, state.Entries = s.engine.ResolveWeek(comp, state.Entries, outcomes)
		state.ReplaceCompetition(after)
		settled = state.EntriesIn(comp.ID, "")
		if state.PendingPick != nil && stagedIn(settled, *state.PendingPick) {
			state.PendingPick = nil
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.repo.ClearOutcomes(before.ID)

	eliminated := 0
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⚖️ *MW %d resolved: %s*\n\n", before.CurrentWeek, md(before.Name)))
	for _, e := range settled {
		if previous[e.ID] != models.EntryActive {
			continue
		}
		label := "no pick"
		if p, ok := e.PickFor(before.CurrentWeek); ok {
			label = s.teams.Name(p.TeamID)
			if status, ok := outcomes[p.TeamID]; ok {
				label += fmt.Sprintf(" (%s)", status)
			}
		}
		if e.Status == models.EntryEliminated {
			eliminated++
			sb.WriteString(fmt.Sprintf("💀 %s (%s): %s\n", md(e.Name), md(e.OwnerNickname), label))
		} else {
			sb.WriteString(fmt.Sprintf("🛡️ %s (%s): %s\n", md(e.Name), md(e.OwnerNickname), label))
		}
	}

	survivors := len(pool.Survivors(after, settled))
	sb.WriteString(fmt.Sprintf("\nEliminated: %d, survivors: %d. Now on MW %d.", eliminated, survivors, after.CurrentWeek))

	metrics.WeeksResolved.Inc()
	metrics.Eliminations.Add(float64(eliminated))
	slog.Info("Week resolved", "competition", before.ID, "week", before.CurrentWeek, "eliminated", eliminated, "survivors", survivors)

	return sb.String(), nil
}

func stagedIn(entries []models.Entry, pending models.PendingPick) bool {
	for _, e := range entries {
		if e.ID == pending.EntryID {
			return true
		}
	}
	return false
}

func selected(state models.AppState) (models.Competition, error) {
	if state.SelectedCompetitionID == "" {
		return models.Competition{}, ErrNoPoolSelected
	}
	comp, ok := state.Competition(state.SelectedCompetitionID)
	if !ok {
		return models.Competition{}, ErrNoPoolSelected
	}
	return comp, nil
}

func findCompetition(state models.AppState, ref string) (models.Competition, bool) {
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(state.Competitions) {
		return state.Competitions[n-1], true
	}
	for _, c := range state.Competitions {
		if c.ID == ref || strings.EqualFold(c.Name, ref) {
			return c, true
		}
	}
	return models.Competition{}, false
}

// findEntry resolves ref against the owner's entries in comp: a number from
// /entries, an entry name or id. An empty ref picks the only entry.
func findEntry(state models.AppState, comp models.Competition, ref string) (models.Entry, error) {
	mine := state.EntriesIn(comp.ID, state.UserNickname)
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "#")

	if ref == "" {
		if len(mine) == 1 {
			return mine[0], nil
		}
		return models.Entry{}, ErrUnknownEntry
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(mine) {
		return mine[n-1], nil
	}
	for _, e := range mine {
		if e.ID == ref || strings.EqualFold(e.Name, ref) || strings.EqualFold(e.Name, "Entry #"+ref) {
			return e, nil
		}
	}
	return models.Entry{}, ErrUnknownEntry
}

func (s *SurvivorService) lookupTeam(query string) (models.Team, bool) {
	if team, ok := s.teams.Find(query); ok {
		return team, true
	}
	return s.teams.Match(query)
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// md escapes user supplied text for Telegram Markdown.
func md(s string) string {
	return markdownEscaper.Replace(s)
}

func statusIcon(status models.EntryStatus) string {
	switch status {
	case models.EntryActive:
		return "🛡️"
	case models.EntryWinner:
		return "👑"
	default:
		return "💀"
	}
}

func outcomeIcon(status models.TeamStatus) string {
	switch status {
	case models.StatusWin:
		return "✅"
	case models.StatusDraw:
		return "➖"
	case models.StatusLoss:
		return "❌"
	default:
		return "⏳"
	}
}
