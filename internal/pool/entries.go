package pool

import (
	"fmt"

	"github.com/omarshaarawi/survivorbot/internal/models"
)

// CreateEntry buys a new entry for owner. The wallet is debited only on
// success; on rejection the original balance is returned.
func (e *Engine) CreateEntry(comp models.Competition, owner string, entries []models.Entry, wallet int) (models.Entry, int, error) {
	held := 0
	for _, en := range entries {
		if en.CompetitionID == comp.ID && en.OwnerNickname == owner {
			held++
		}
	}

	if held >= e.rules.MaxEntries {
		return models.Entry{}, wallet, reject(ErrMaxEntriesReached, "max %d entries per pool", e.rules.MaxEntries)
	}
	if wallet < e.rules.EntryCost {
		return models.Entry{}, wallet, reject(ErrInsufficientFunds, "entry costs %d, balance is %d", e.rules.EntryCost, wallet)
	}

	entry := models.Entry{
		ID:            e.newID(),
		CompetitionID: comp.ID,
		Name:          fmt.Sprintf("Entry #%d", held+1),
		OwnerNickname: owner,
		Status:        models.EntryActive,
		Picks:         []models.Pick{},
		CreatedAtWeek: comp.CurrentWeek,
	}
	return entry, wallet - e.rules.EntryCost, nil
}
