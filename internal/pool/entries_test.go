package pool

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/omarshaarawi/survivorbot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEntry(t *testing.T) {
	e := newTestEngine(t)
	comp := testCompetition(3)

	entry, wallet, err := e.CreateEntry(comp, "alice", nil, 50)
	require.NoError(t, err)
	assert.Equal(t, 40, wallet)

	want := models.Entry{
		ID:            "id-1",
		CompetitionID: "c1",
		Name:          "Entry #1",
		OwnerNickname: "alice",
		Status:        models.EntryActive,
		Picks:         []models.Pick{},
		CreatedAtWeek: 3,
	}
	if diff := cmp.Diff(want, entry); diff != "" {
		t.Errorf("CreateEntry() mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateEntryCap(t *testing.T) {
	e := newTestEngine(t)
	comp := testCompetition(1)

	var entries []models.Entry
	wallet := 1000
	for i := 0; i < 2; i++ {
		entry, w, err := e.CreateEntry(comp, "alice", entries, wallet)
		require.NoError(t, err)
		entries = append(entries, entry)
		wallet = w
	}
	assert.Equal(t, "Entry #2", entries[1].Name)

	_, w, err := e.CreateEntry(comp, "alice", entries, wallet)
	assert.ErrorIs(t, err, ErrMaxEntriesReached)
	assert.Equal(t, wallet, w)

	_, _, err = e.CreateEntry(comp, "alice", entries, 0)
	assert.ErrorIs(t, err, ErrMaxEntriesReached, "the cap is checked before the balance")

	_, _, err = e.CreateEntry(comp, "bob", entries, wallet)
	assert.NoError(t, err, "the cap is per owner")

	other := comp
	other.ID = "c2"
	_, _, err = e.CreateEntry(other, "alice", entries, wallet)
	assert.NoError(t, err, "the cap is per competition")
}

func TestCreateEntryInsufficientFunds(t *testing.T) {
	e := newTestEngine(t)

	entry, wallet, err := e.CreateEntry(testCompetition(1), "alice", nil, 9)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 9, wallet)
	assert.Empty(t, entry.ID)
}

func TestCreateEntryCustomRules(t *testing.T) {
	e := newTestEngine(t)
	e.rules = Rules{EntryCost: 25, MaxEntries: 1, LockWindow: DefaultLockWindow}

	entry, wallet, err := e.CreateEntry(testCompetition(1), "alice", nil, 30)
	require.NoError(t, err)
	assert.Equal(t, 5, wallet)

	_, _, err = e.CreateEntry(testCompetition(1), "alice", []models.Entry{entry}, 100)
	assert.ErrorIs(t, err, ErrMaxEntriesReached)
}

func TestNewCompetition(t *testing.T) {
	e := newTestEngine(t)
	comp := e.NewCompetition("Office Pool", "alice")

	assert.Equal(t, "id-1", comp.ID)
	assert.Equal(t, 1, comp.CurrentWeek)
	assert.Equal(t, models.CompetitionOpen, comp.Status)
	assert.Empty(t, comp.History)
}
