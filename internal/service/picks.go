package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/omarshaarawi/survivorbot/internal/metrics"
	"github.com/omarshaarawi/survivorbot/internal/models"
	"github.com/omarshaarawi/survivorbot/internal/pool"
)

// RequestPick validates a pick for an entry and stages it until /confirm. A
// week of 0 means the pool's current week.
func (s *SurvivorService) RequestPick(ctx context.Context, entryRef, teamQuery string, week int) (string, error) {
	teamID := strings.TrimSpace(teamQuery)
	if team, ok := s.lookupTeam(teamQuery); ok {
		teamID = team.ID
	}
	fixtures := pool.Fixtures(s.repo.GetData().Fixtures)

	var (
		entry   models.Entry
		pending models.PendingPick
	)
	_, err := s.store.Update(ctx, func(state *models.AppState) error {
		if state.UserNickname == "" {
			return ErrNoNickname
		}
		comp, err := selected(*state)
		if err != nil {
			return err
		}
		entry, err = findEntry(*state, comp, entryRef)
		if err != nil {
			return err
		}
		if week == 0 {
			week = comp.CurrentWeek
		}

		pending, err = s.engine.RequestPick(pool.PickRequest{
			Entry:       entry,
			Week:        week,
			TeamID:      teamID,
			CurrentWeek: comp.CurrentWeek,
			Entries:     state.Entries,
			Fixtures:    fixtures,
			Now:         s.clock.Now(),
		})
		if err != nil {
			return err
		}
		state.PendingPick = &pending
		return nil
	})
	metrics.PickRequests.WithLabelValues(pickResult(err)).Inc()
	if err != nil {
		return "", err
	}

	slog.Info("Pick staged", "entry", entry.ID, "week", pending.Week, "team", pending.TeamID)
	return fmt.Sprintf("🤔 Back *%s* to win MW %d with *%s*?\nSend /confirm or /cancel.",
		s.teams.Name(pending.TeamID), pending.Week, md(entry.Name)), nil
}

func (s *SurvivorService) ConfirmPick(ctx context.Context) (string, error) {
	fixtures := pool.Fixtures(s.repo.GetData().Fixtures)

	var (
		confirmed models.Entry
		pending   models.PendingPick
	)
	_, err := s.store.Update(ctx, func(state *models.AppState) error {
		if state.PendingPick == nil {
			return ErrNoPendingPick
		}
		pending = *state.PendingPick

		var entry models.Entry
		found := false
		for _, e := range state.Entries {
			if e.ID == pending.EntryID {
				entry, found = e, true
				break
			}
		}
		if !found {
			return ErrUnknownEntry
		}

		comp, ok := state.Competition(entry.CompetitionID)
		if !ok {
			return ErrUnknownPool
		}

		updated, err := s.engine.ConfirmPick(pool.ConfirmRequest{
			Entry:       entry,
			Pending:     pending,
			CurrentWeek: comp.CurrentWeek,
			Fixtures:    fixtures,
			Now:         s.clock.Now(),
		})
		if err != nil {
			return err
		}
		state.ReplaceEntry(updated)
		state.PendingPick = nil
		confirmed = updated
		return nil
	})
	if err != nil {
		return "", err
	}

	metrics.PickRequests.WithLabelValues("confirmed").Inc()
	slog.Info("Pick confirmed", "entry", confirmed.ID, "week", pending.Week, "team", pending.TeamID)
	return fmt.Sprintf("✅ *%s* locked in for *%s*, MW %d.", s.teams.Name(pending.TeamID), md(confirmed.Name), pending.Week), nil
}

func (s *SurvivorService) CancelPick(ctx context.Context) (string, error) {
	_, err := s.store.Update(ctx, func(state *models.AppState) error {
		if state.PendingPick == nil {
			return ErrNoPendingPick
		}
		state.PendingPick = nil
		return nil
	})
	if err != nil {
		return "", err
	}
	return "↩️ Pick cancelled.", nil
}

// Available lists the teams an entry can still pick this week.
func (s *SurvivorService) Available(entryRef string) (string, error) {
	state := s.store.Snapshot()
	if state.UserNickname == "" {
		return "", ErrNoNickname
	}
	comp, err := selected(state)
	if err != nil {
		return "", err
	}
	entry, err := findEntry(state, comp, entryRef)
	if err != nil {
		return "", err
	}

	available := s.engine.AvailableTeams(entry, state.Entries, comp.CurrentWeek)
	fixtures := pool.Fixtures(s.repo.GetData().Fixtures)
	now := s.clock.Now()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 *%s: MW %d options*\n\n", md(entry.Name), comp.CurrentWeek))
	if len(available) == 0 {
		sb.WriteString("No teams left.")
		return sb.String(), nil
	}
	for _, t := range available {
		line := fmt.Sprintf("• %s (%s)", t.Name, t.ShortName)
		if kickoff, ok := fixtures.Kickoff(comp.CurrentWeek, t.ID); ok && s.engine.IsLocked(kickoff, now) {
			line += " 🔒"
		}
		sb.WriteString(line + "\n")
	}
	return sb.String(), nil
}

// Scout asks the model for advice on an entry's pick this week.
func (s *SurvivorService) Scout(ctx context.Context, entryRef string) (string, error) {
	state := s.store.Snapshot()
	if state.UserNickname == "" {
		return "", ErrNoNickname
	}
	comp, err := selected(state)
	if err != nil {
		return "", err
	}
	entry, err := findEntry(state, comp, entryRef)
	if err != nil {
		return "", err
	}

	available := s.engine.AvailableTeams(entry, state.Entries, comp.CurrentWeek)
	advice := s.league.Scout(ctx, comp.CurrentWeek, entry, available)
	return fmt.Sprintf("🕵️ *Scout report for %s, MW %d*\n\n%s", md(entry.Name), comp.CurrentWeek, advice), nil
}

func pickResult(err error) string {
	if err == nil {
		return "staged"
	}
	var rejection *pool.Rejection
	if errors.As(err, &rejection) {
		return string(rejection.Reason)
	}
	return "error"
}
