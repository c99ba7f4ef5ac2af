// Package pool holds the survivor pool rules. Every function here is pure:
// inputs are values, results are new values, nothing blocks or performs I/O.
package pool

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/omarshaarawi/survivorbot/internal/models"
	"github.com/omarshaarawi/survivorbot/internal/teams"
)

const (
	DefaultEntryCost  = 10
	DefaultMaxEntries = 2
	DefaultLockWindow = time.Hour
)

type Rules struct {
	EntryCost  int
	MaxEntries int
	LockWindow time.Duration
}

func DefaultRules() Rules {
	return Rules{
		EntryCost:  DefaultEntryCost,
		MaxEntries: DefaultMaxEntries,
		LockWindow: DefaultLockWindow,
	}
}

type Reason string

const (
	ReasonEntryNotActive         Reason = "EntryNotActive"
	ReasonMatchLocked            Reason = "MatchLocked"
	ReasonTeamAlreadyUsedInEntry Reason = "TeamAlreadyUsedInEntry"
	ReasonTeamAlreadyUsedByOwner Reason = "TeamAlreadyUsedByOwner"
	ReasonMaxEntriesReached      Reason = "MaxEntriesReached"
	ReasonInsufficientFunds      Reason = "InsufficientFunds"
	ReasonUnknownTeam            Reason = "UnknownTeam"
	ReasonWeekClosed             Reason = "WeekClosed"
	ReasonPickMismatch           Reason = "PickMismatch"
)

// Rejection is a validation failure. It is never retried; the user has to
// change the request.
type Rejection struct {
	Reason Reason
	Detail string
}

func (r *Rejection) Error() string {
	if r.Detail == "" {
		return string(r.Reason)
	}
	return fmt.Sprintf("%s: %s", r.Reason, r.Detail)
}

// Is matches any rejection with the same reason.
func (r *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	return ok && t.Reason == r.Reason
}

var (
	ErrEntryNotActive         = &Rejection{Reason: ReasonEntryNotActive}
	ErrMatchLocked            = &Rejection{Reason: ReasonMatchLocked}
	ErrTeamAlreadyUsedInEntry = &Rejection{Reason: ReasonTeamAlreadyUsedInEntry}
	ErrTeamAlreadyUsedByOwner = &Rejection{Reason: ReasonTeamAlreadyUsedByOwner}
	ErrMaxEntriesReached      = &Rejection{Reason: ReasonMaxEntriesReached}
	ErrInsufficientFunds      = &Rejection{Reason: ReasonInsufficientFunds}
	ErrUnknownTeam            = &Rejection{Reason: ReasonUnknownTeam}
	ErrWeekClosed             = &Rejection{Reason: ReasonWeekClosed}
	ErrPickMismatch           = &Rejection{Reason: ReasonPickMismatch}
)

func reject(base *Rejection, format string, args ...any) error {
	return &Rejection{Reason: base.Reason, Detail: fmt.Sprintf(format, args...)}
}

type Engine struct {
	rules Rules
	teams *teams.Directory
	newID func() string
}

func NewEngine(rules Rules, directory *teams.Directory) *Engine {
	return &Engine{
		rules: rules,
		teams: directory,
		newID: uuid.NewString,
	}
}

func (e *Engine) Rules() Rules {
	return e.rules
}

// IsLocked reports whether a fixture kicking off at kickoff no longer accepts picks.
func (e *Engine) IsLocked(kickoff, now time.Time) bool {
	return kickoff.Sub(now) < e.rules.LockWindow
}

// NewCompetition starts a pool at week one.
func (e *Engine) NewCompetition(name, creator string) models.Competition {
	return models.Competition{
		ID:              e.newID(),
		Name:            name,
		CreatorNickname: creator,
		CurrentWeek:     1,
		Status:          models.CompetitionOpen,
		History:         []models.WeeklyResult{},
	}
}
