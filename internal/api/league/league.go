package league

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/survivorbot/internal/models"
	"github.com/omarshaarawi/survivorbot/internal/repository/memory"
	"golang.org/x/sync/errgroup"
)

// Primary is the sports-data API.
type Primary interface {
	GetStandings(ctx context.Context) ([]models.LeagueTableEntry, error)
	GetScheduledMatches(ctx context.Context) ([]models.Fixture, error)
}

// Fallback is the search-grounded model.
type Fallback interface {
	GetStandings(ctx context.Context) ([]models.LeagueTableEntry, []models.Source, error)
	GetForm(ctx context.Context) ([]models.TeamForm, []models.Source, error)
	ScoutAdvice(ctx context.Context, week int, entry models.Entry, available []models.Team) string
}

type API struct {
	primary  Primary
	fallback Fallback
	repo     *memory.Repository
	clock    clockwork.Clock
}

func NewAPI(primary Primary, fallback Fallback, repo *memory.Repository, clock clockwork.Clock) *API {
	return &API{primary: primary, fallback: fallback, repo: repo, clock: clock}
}

// Refresh loads standings, form and fixtures concurrently and writes them to
// the league cache. When the primary table comes back empty the fallback is
// asked for standings instead. A source that fails is logged and its cached
// value is left as it was, and the first source failure is returned alongside
// the data.
func (a *API) Refresh(ctx context.Context) (models.LeagueData, error) {
	var (
		table       []models.LeagueTableEntry
		tableErr    error
		form        []models.TeamForm
		formSources []models.Source
		formErr     error
		fixtures    []models.Fixture
		fixturesErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		table, tableErr = a.primary.GetStandings(ctx)
		if tableErr != nil {
			return fmt.Errorf("error fetching standings: %w", tableErr)
		}
		return nil
	})
	g.Go(func() error {
		form, formSources, formErr = a.fallback.GetForm(ctx)
		if formErr != nil {
			return fmt.Errorf("error fetching team form: %w", formErr)
		}
		return nil
	})
	g.Go(func() error {
		fixtures, fixturesErr = a.primary.GetScheduledMatches(ctx)
		if fixturesErr != nil {
			return fmt.Errorf("error fetching fixtures: %w", fixturesErr)
		}
		return nil
	})
	err := g.Wait()

	now := a.clock.Now()

	if tableErr != nil {
		slog.Error("Error fetching standings", "error", tableErr)
	}
	if len(table) > 0 {
		a.repo.SaveTable(table, nil, now)
	} else {
		a.refreshTableFromSearch(ctx)
	}

	if formErr != nil {
		slog.Error("Error fetching team form", "error", formErr)
	} else {
		a.repo.SaveForm(form, formSources, now)
	}

	if fixturesErr != nil {
		slog.Error("Error fetching fixtures", "error", fixturesErr)
	} else {
		a.repo.SaveFixtures(fixtures, now)
	}

	data := a.repo.GetData()
	slog.Info("League data refreshed",
		"table", len(data.Table),
		"fixtures", len(data.Fixtures),
		"form", len(data.Form),
		"sources", len(data.Sources)+len(data.FormSources))
	return data, err
}

func (a *API) refreshTableFromSearch(ctx context.Context) {
	table, sources, err := a.fallback.GetStandings(ctx)
	if err != nil {
		slog.Error("Error fetching standings via search", "error", err)
		return
	}
	a.repo.SaveTable(table, sources, a.clock.Now())
}

func (a *API) Scout(ctx context.Context, week int, entry models.Entry, available []models.Team) string {
	return a.fallback.ScoutAdvice(ctx, week, entry, available)
}
