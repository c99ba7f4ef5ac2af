package bot

import (
	"context"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/survivorbot/internal/api/league"
	"github.com/omarshaarawi/survivorbot/internal/models"
	"github.com/omarshaarawi/survivorbot/internal/pool"
	"github.com/omarshaarawi/survivorbot/internal/repository/memory"
	"github.com/omarshaarawi/survivorbot/internal/service"
	"github.com/omarshaarawi/survivorbot/internal/store"
	"github.com/omarshaarawi/survivorbot/internal/teams"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatID int64 = 42

type noData struct{}

func (noData) GetStandings(context.Context) ([]models.LeagueTableEntry, error) { return nil, nil }
func (noData) GetScheduledMatches(context.Context) ([]models.Fixture, error) { return nil, nil }

type noSearch struct{}

func (noSearch) GetStandings(context.Context) ([]models.LeagueTableEntry, []models.Source, error) {
	return nil, nil, nil
}

func (noSearch) GetForm(context.Context) ([]models.TeamForm, []models.Source, error) {
	return nil, nil, nil
}

func (noSearch) ScoutAdvice(context.Context, int, models.Entry, []models.Team) string {
	return "Trust your manager's intuition today."
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	clock := clockwork.NewRealClock()
	repo := memory.NewRepository()
	directory := teams.PremierLeague()
	st := store.Open(context.Background(), store.NewMemoryBackend(), store.DefaultKey, store.DefaultState(50))

	svc := service.NewSurvivorService(
		pool.NewEngine(pool.DefaultRules(), directory),
		st,
		repo,
		league.NewAPI(noData{}, noSearch{}, repo, clock),
		directory,
		clock,
		service.Settings{StartingCoins: 50},
	)
	return NewHandler(svc)
}

func command(text string) tgbotapi.Update {
	name := strings.SplitN(text, " ", 2)[0]
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text: text,
			Chat: &tgbotapi.Chat{ID: chatID},
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: len(name)},
			},
		},
	}
}

func run(t *testing.T, h *Handler, text string) tgbotapi.MessageConfig {
	t.Helper()
	msg := h.HandleCommand(context.Background(), command(text))
	assert.Equal(t, chatID, msg.ChatID)
	return msg
}

func TestHelpAndUnknown(t *testing.T) {
	h := newTestHandler(t)

	help := run(t, h, "/help")
	for _, cmd := range []string{"/nick", "/pick", "/confirm", "/resolve", "/share", "/scout"} {
		assert.Contains(t, help.Text, cmd)
	}
	assert.Contains(t, run(t, h, "/offside").Text, "Unknown command")
}

func TestUsageMessages(t *testing.T) {
	h := newTestHandler(t)

	tests := map[string]string{
		"/nick":          "Usage: /nick <name>",
		"/newpool":       "Usage: /newpool <name>",
		"/pool":          "Usage: /pool <number>",
		"/pick":          "Usage: /pick [entry] <team> [week]",
		"/fixtures soon": "Usage: /fixtures [week]",
		"/result Spurs":  "Usage: /result <team> <WIN|DRAW|LOSS|PENDING>",
	}
	for text, want := range tests {
		msg := run(t, h, text)
		assert.Equal(t, want, msg.Text, text)
		assert.Empty(t, msg.ParseMode)
	}
}

func TestGameFlowThroughCommands(t *testing.T) {
	h := newTestHandler(t)

	assert.Contains(t, run(t, h, "/entry").Text, "⚠️")
	assert.Contains(t, run(t, h, "/nick Gaffer").Text, "Welcome, *Gaffer*")
	assert.Contains(t, run(t, h, "/newpool Office Pool").Text, "*Office Pool* created")
	assert.Contains(t, run(t, h, "/entry").Text, "Entry #1")

	pick := run(t, h, "/pick Man City")
	assert.Contains(t, pick.Text, "*Man City*")
	markup, ok := pick.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 1)
	require.NotNil(t, markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, callbackConfirm, *markup.InlineKeyboard[0][0].CallbackData)

	confirm := h.HandleCallback(context.Background(), &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		Data:    callbackConfirm,
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
	})
	assert.Contains(t, confirm.Text, "locked in")

	entries := run(t, h, "/entries").Text
	assert.Contains(t, entries, "MW 1 pick *Man City*")
	assert.Contains(t, entries, "40")

	assert.Contains(t, run(t, h, "/result Man City W").Text, "admin mode is off")
	assert.Contains(t, run(t, h, "/admin").Text, "Admin mode ON")
	assert.Contains(t, run(t, h, "/result Man City W").Text, "Man City: WIN")
	assert.Contains(t, run(t, h, "/resolve").Text, "Now on MW 2")

	rejected := run(t, h, "/pick 1 Man City")
	assert.True(t, strings.HasPrefix(rejected.Text, "⛔ You already used this team!"), rejected.Text)
	assert.Empty(t, rejected.ParseMode)
	assert.Nil(t, rejected.ReplyMarkup)
}

func TestShareSendsLinkButton(t *testing.T) {
	h := newTestHandler(t)
	run(t, h, "/nick Gaffer")
	run(t, h, "/newpool Office Pool")

	msg := run(t, h, "/share")
	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.NotNil(t, markup.InlineKeyboard[0][0].URL)
	assert.True(t, strings.HasPrefix(*markup.InlineKeyboard[0][0].URL, "https://wa.me/?text="))
}

func TestParsePick(t *testing.T) {
	tests := []struct {
		args  string
		entry string
		team  string
		week  int
	}{
		{"Arsenal", "", "Arsenal", 0},
		{"2 Man Utd", "2", "Man Utd", 0},
		{"#1 Nottingham Forest 12", "#1", "Nottingham Forest", 12},
		{"Arsenal 3", "", "Arsenal", 3},
		{"1", "", "1", 0},
		{"", "", "", 0},
	}
	for _, tt := range tests {
		entry, team, week := parsePick(tt.args)
		assert.Equal(t, tt.entry, entry, tt.args)
		assert.Equal(t, tt.team, team, tt.args)
		assert.Equal(t, tt.week, week, tt.args)
	}
}

func TestErrorText(t *testing.T) {
	assert.Equal(t, "⛔ Match is locked!", errorText(&pool.Rejection{Reason: pool.ReasonMatchLocked}))
	assert.Equal(t, "⛔ Insufficient coins!\nentry costs 10, balance is 0",
		errorText(&pool.Rejection{Reason: pool.ReasonInsufficientFunds, Detail: "entry costs 10, balance is 0"}))
	assert.Equal(t, "⚠️ "+service.ErrNoPendingPick.Error(), errorText(service.ErrNoPendingPick))
}
