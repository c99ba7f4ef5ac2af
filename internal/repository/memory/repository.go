package memory

import (
	"maps"
	"sync"
	"time"

	"github.com/omarshaarawi/survivorbot/internal/models"
)

// Repository caches league data and the admin's outcomes for the week each
// competition is playing. None of it is persisted.
type Repository struct {
	data models.LeagueData
	// competition id -> team id -> result
	outcomes map[string]map[string]models.TeamStatus
	mu       sync.RWMutex
}

func NewRepository() *Repository {
	return &Repository{outcomes: make(map[string]map[string]models.TeamStatus)}
}

func (r *Repository) SaveTable(table []models.LeagueTableEntry, sources []models.Source, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.Table = table
	r.data.Sources = sources
	r.data.LastUpdated = at
}

func (r *Repository) SaveFixtures(fixtures []models.Fixture, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.Fixtures = fixtures
	r.data.LastUpdated = at
}

func (r *Repository) SaveForm(form []models.TeamForm, sources []models.Source, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.Form = form
	r.data.FormSources = sources
	r.data.LastUpdated = at
}

func (r *Repository) GetData() models.LeagueData {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data.Clone()
}

// SetOutcome records a result for one competition. Recording PENDING removes it.
func (r *Repository) SetOutcome(competitionID, teamID string, status models.TeamStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if status == models.StatusPending {
		delete(r.outcomes[competitionID], teamID)
		return
	}
	if r.outcomes[competitionID] == nil {
		r.outcomes[competitionID] = make(map[string]models.TeamStatus)
	}
	r.outcomes[competitionID][teamID] = status
}

func (r *Repository) GetOutcomes(competitionID string) map[string]models.TeamStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := maps.Clone(r.outcomes[competitionID])
	if out == nil {
		out = make(map[string]models.TeamStatus)
	}
	return out
}

// ClearOutcomes drops the results recorded for one competition. Fixtures are
// league data shared by every competition and are left to the next refresh.
func (r *Repository) ClearOutcomes(competitionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.outcomes, competitionID)
}
