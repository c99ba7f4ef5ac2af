package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/omarshaarawi/survivorbot/internal/models"
)

const DefaultKey = "pl-survivor-v4"

var ErrNotFound = errors.New("record not found")

// Backend persists opaque records under a key.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Store owns the session state. Readers get copies; writers go through
// Update, which applies a command to a copy and swaps it in atomically.
type Store struct {
	backend Backend
	key     string
	state   models.AppState
	mu      sync.Mutex
}

// DefaultState is the state of a fresh session.
func DefaultState(startingCoins int) models.AppState {
	return models.AppState{
		UserCoins:    startingCoins,
		Competitions: []models.Competition{},
		Entries:      []models.Entry{},
	}
}

// Open restores the session from backend. A missing, unreadable or
// incompatible record yields defaults.
func Open(ctx context.Context, backend Backend, key string, defaults models.AppState) *Store {
	s := &Store{backend: backend, key: key, state: defaults.Clone()}

	data, err := backend.Load(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		slog.Info("No saved session, starting fresh", "key", key)
		return s
	case err != nil:
		slog.Warn("Error loading saved session, starting fresh", "key", key, "error", err)
		return s
	}

	restored, err := decode(data, defaults)
	if err != nil {
		slog.Warn("Discarding incompatible saved session", "key", key, "error", err)
		return s
	}
	s.state = restored
	return s
}

func decode(data []byte, defaults models.AppState) (models.AppState, error) {
	state := defaults.Clone()
	if err := json.Unmarshal(data, &state); err != nil {
		return models.AppState{}, fmt.Errorf("decoding session: %w", err)
	}
	if err := validate(state); err != nil {
		return models.AppState{}, err
	}
	if state.Competitions == nil {
		state.Competitions = []models.Competition{}
	}
	if state.Entries == nil {
		state.Entries = []models.Entry{}
	}
	return state, nil
}

func validate(state models.AppState) error {
	comps := make(map[string]bool, len(state.Competitions))
	for _, c := range state.Competitions {
		if c.ID == "" {
			return errors.New("competition without id")
		}
		if c.CurrentWeek < 1 {
			return fmt.Errorf("competition %s: invalid week %d", c.ID, c.CurrentWeek)
		}
		comps[c.ID] = true
	}
	for _, e := range state.Entries {
		if e.ID == "" || !comps[e.CompetitionID] {
			return fmt.Errorf("entry %q references unknown competition %q", e.ID, e.CompetitionID)
		}
		switch e.Status {
		case models.EntryActive, models.EntryEliminated, models.EntryWinner:
		default:
			return fmt.Errorf("entry %s: invalid status %q", e.ID, e.Status)
		}
	}
	return nil
}

func (s *Store) Snapshot() models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Update runs cmd against a copy of the state. The copy replaces the state
// only when cmd succeeds; the new state is then persisted. A persistence
// failure is logged and does not undo the change.
func (s *Store) Update(ctx context.Context, cmd func(state *models.AppState) error) (models.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	if err := cmd(&next); err != nil {
		return s.state.Clone(), err
	}
	s.state = next

	if err := s.persist(ctx); err != nil {
		slog.Error("Error saving session", "key", s.key, "error", err)
	}
	return s.state.Clone(), nil
}

func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(s.state)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	return s.backend.Save(ctx, s.key, data)
}
