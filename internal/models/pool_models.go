package models

import (
	"maps"
	"strings"
)

type Team struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	ShortName string   `yaml:"shortName" json:"shortName"`
	Color     string   `yaml:"color" json:"color"`
	Logo      string   `yaml:"logo" json:"logo"`
	Aliases   []string `yaml:"aliases" json:"aliases,omitempty"`
}

type TeamStatus string

const (
	StatusWin     TeamStatus = "WIN"
	StatusDraw    TeamStatus = "DRAW"
	StatusLoss    TeamStatus = "LOSS"
	StatusPending TeamStatus = "PENDING"
)

// ParseTeamStatus accepts the full tag or its first letter, in any case.
func ParseTeamStatus(s string) (TeamStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "WIN", "W":
		return StatusWin, true
	case "DRAW", "D":
		return StatusDraw, true
	case "LOSS", "L":
		return StatusLoss, true
	case "PENDING", "P":
		return StatusPending, true
	}
	return "", false
}

type CompetitionStatus string

const (
	CompetitionOpen     CompetitionStatus = "OPEN"
	CompetitionOngoing  CompetitionStatus = "ONGOING"
	CompetitionFinished CompetitionStatus = "FINISHED"
)

type WeeklyResult struct {
	Week    int                   `json:"week"`
	Results map[string]TeamStatus `json:"results"`
}

type Competition struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	CreatorNickname string            `json:"creatorNickname"`
	CurrentWeek     int               `json:"currentWeek"`
	Status          CompetitionStatus `json:"status"`
	History         []WeeklyResult    `json:"history"`
}

// Result returns the recorded outcome for teamID in a resolved week.
func (c Competition) Result(week int, teamID string) (TeamStatus, bool) {
	for _, h := range c.History {
		if h.Week == week {
			s, ok := h.Results[teamID]
			return s, ok
		}
	}
	return "", false
}

func (c Competition) Clone() Competition {
	out := c
	out.History = make([]WeeklyResult, len(c.History))
	for i, h := range c.History {
		out.History[i] = WeeklyResult{Week: h.Week, Results: maps.Clone(h.Results)}
	}
	return out
}

type EntryStatus string

const (
	EntryActive     EntryStatus = "ACTIVE"
	EntryEliminated EntryStatus = "ELIMINATED"
	EntryWinner     EntryStatus = "WINNER"
)

type Pick struct {
	Week   int    `json:"week"`
	TeamID string `json:"teamId"`
}

type Entry struct {
	ID            string      `json:"id"`
	CompetitionID string      `json:"competitionId"`
	Name          string      `json:"name"`
	OwnerNickname string      `json:"ownerNickname"`
	Status        EntryStatus `json:"status"`
	Picks         []Pick      `json:"picks"`
	CreatedAtWeek int         `json:"createdAtWeek"`
}

// PickFor returns the entry's pick for week.
func (e Entry) PickFor(week int) (Pick, bool) {
	for _, p := range e.Picks {
		if p.Week == week {
			return p, true
		}
	}
	return Pick{}, false
}

func (e Entry) Clone() Entry {
	out := e
	out.Picks = append([]Pick(nil), e.Picks...)
	return out
}

// PendingPick is a pick that passed validation and waits for confirmation.
type PendingPick struct {
	EntryID string `json:"entryId"`
	Week    int    `json:"week"`
	TeamID  string `json:"teamId"`
}

type AppState struct {
	UserNickname          string        `json:"userNickname"`
	UserCoins             int           `json:"userCoins"`
	Competitions          []Competition `json:"competitions"`
	Entries               []Entry       `json:"coupons"`
	SelectedCompetitionID string        `json:"selectedCompetitionId"`
	IsAdminMode           bool          `json:"isAdminMode"`
	PendingPick           *PendingPick  `json:"-"`
}

func (s AppState) Clone() AppState {
	out := s
	out.Competitions = make([]Competition, len(s.Competitions))
	for i, c := range s.Competitions {
		out.Competitions[i] = c.Clone()
	}
	out.Entries = make([]Entry, len(s.Entries))
	for i, e := range s.Entries {
		out.Entries[i] = e.Clone()
	}
	if s.PendingPick != nil {
		p := *s.PendingPick
		out.PendingPick = &p
	}
	return out
}

// Competition returns the competition with id.
func (s AppState) Competition(id string) (Competition, bool) {
	for _, c := range s.Competitions {
		if c.ID == id {
			return c, true
		}
	}
	return Competition{}, false
}

// ReplaceCompetition swaps the competition with the same id.
func (s *AppState) ReplaceCompetition(c Competition) {
	for i := range s.Competitions {
		if s.Competitions[i].ID == c.ID {
			s.Competitions[i] = c
			return
		}
	}
}

// ReplaceEntry swaps the entry with the same id.
func (s *AppState) ReplaceEntry(e Entry) {
	for i := range s.Entries {
		if s.Entries[i].ID == e.ID {
			s.Entries[i] = e
			return
		}
	}
}

// EntriesIn returns the entries of a competition, optionally limited to one owner.
func (s AppState) EntriesIn(competitionID, owner string) []Entry {
	var out []Entry
	for _, e := range s.Entries {
		if e.CompetitionID != competitionID {
			continue
		}
		if owner != "" && e.OwnerNickname != owner {
			continue
		}
		out = append(out, e)
	}
	return out
}
