package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/omarshaarawi/survivorbot/internal/pool"
	"github.com/omarshaarawi/survivorbot/internal/service"
)

const (
	callbackConfirm = "pick:confirm"
	callbackCancel  = "pick:cancel"
)

const helpText = `Available commands:
/nick <name> - Set your manager nickname
/pools - List pools
/newpool <name> - Create and select a pool
/pool <number> - Select a pool
/entry - Buy an entry in the selected pool
/entries - Your entries and coins
/pick [entry] <team> [week] - Pick a team to win
/confirm - Confirm the staged pick
/cancel - Drop the staged pick
/available [entry] - Teams you can still pick
/breakdown [week] - How the pool picked
/standings - Every entry, week by week
/table - Premier League table
/fixtures [week] - Upcoming fixtures
/form - Team form
/scout [entry] - Ask the scout for advice
/share - Share the survivor report
/admin - Toggle admin mode
/result <team> <WIN|DRAW|LOSS|PENDING> - Record a result (admin)
/resolve - Settle the current week (admin)`

var notices = map[pool.Reason]string{
	pool.ReasonEntryNotActive:         "This entry is out of the pool.",
	pool.ReasonMatchLocked:            "Match is locked!",
	pool.ReasonTeamAlreadyUsedInEntry: "You already used this team!",
	pool.ReasonTeamAlreadyUsedByOwner: "You already picked this team in a previous matchweek!",
	pool.ReasonMaxEntriesReached:      "Max entries reached for this pool.",
	pool.ReasonInsufficientFunds:      "Insufficient coins!",
	pool.ReasonUnknownTeam:            "Unknown team.",
	pool.ReasonWeekClosed:             "That matchweek is already resolved.",
	pool.ReasonPickMismatch:           "That pick belongs to another entry.",
}

type Handler struct {
	survivorService *service.SurvivorService
}

func NewHandler(survivorService *service.SurvivorService) *Handler {
	return &Handler{survivorService: survivorService}
}

func (h *Handler) HandleCommand(ctx context.Context, update tgbotapi.Update) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
	command := strings.ToLower(update.Message.Command())
	args := strings.TrimSpace(update.Message.CommandArguments())
	msg.ParseMode = tgbotapi.ModeMarkdown

	switch command {
	case "start":
		msg.Text = h.survivorService.Summary() + "\nUse /help to see available commands."
	case "help":
		msg.Text = helpText
		msg.ParseMode = ""
	case "nick":
		if args == "" {
			h.usage(&msg, "/nick <name>")
			return msg
		}
		h.reply(&msg)(h.survivorService.Register(ctx, args))
	case "pools":
		msg.Text = h.survivorService.Pools()
	case "newpool":
		if args == "" {
			h.usage(&msg, "/newpool <name>")
			return msg
		}
		h.reply(&msg)(h.survivorService.CreatePool(ctx, args))
	case "pool":
		if args == "" {
			h.usage(&msg, "/pool <number>")
			return msg
		}
		h.reply(&msg)(h.survivorService.SelectPool(ctx, args))
	case "entry":
		h.reply(&msg)(h.survivorService.BuyEntry(ctx))
	case "entries":
		h.reply(&msg)(h.survivorService.MyEntries())
	case "pick":
		h.handlePick(ctx, &msg, args)
	case "confirm":
		h.reply(&msg)(h.survivorService.ConfirmPick(ctx))
	case "cancel":
		h.reply(&msg)(h.survivorService.CancelPick(ctx))
	case "available":
		h.reply(&msg)(h.survivorService.Available(args))
	case "breakdown":
		week, ok := optionalWeek(args)
		if !ok {
			h.usage(&msg, "/breakdown [week]")
			return msg
		}
		h.reply(&msg)(h.survivorService.Breakdown(week))
	case "standings":
		h.reply(&msg)(h.survivorService.Standings())
	case "table":
		msg.Text = h.survivorService.Table()
	case "fixtures":
		week, ok := optionalWeek(args)
		if !ok {
			h.usage(&msg, "/fixtures [week]")
			return msg
		}
		msg.Text = h.survivorService.Fixtures(week)
	case "form":
		msg.Text = h.survivorService.Form()
	case "scout":
		h.reply(&msg)(h.survivorService.Scout(ctx, args))
	case "share":
		h.handleShare(&msg)
	case "admin":
		h.reply(&msg)(h.survivorService.ToggleAdmin(ctx))
	case "result":
		h.handleResult(ctx, &msg, args)
	case "resolve":
		h.reply(&msg)(h.survivorService.Resolve(ctx))
	default:
		msg.Text = "Unknown command. Use /help to see available commands."
	}

	return msg
}

// HandleCallback answers the confirm and cancel buttons attached to a staged
// pick.
func (h *Handler) HandleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(query.Message.Chat.ID, "")
	msg.ParseMode = tgbotapi.ModeMarkdown

	switch query.Data {
	case callbackConfirm:
		h.reply(&msg)(h.survivorService.ConfirmPick(ctx))
	case callbackCancel:
		h.reply(&msg)(h.survivorService.CancelPick(ctx))
	default:
		msg.Text = "Unknown action."
		msg.ParseMode = ""
	}
	return msg
}

func (h *Handler) handlePick(ctx context.Context, msg *tgbotapi.MessageConfig, args string) {
	entryRef, team, week := parsePick(args)
	if team == "" {
		h.usage(msg, "/pick [entry] <team> [week]")
		return
	}

	text, err := h.survivorService.RequestPick(ctx, entryRef, team, week)
	h.reply(msg)(text, err)
	if err != nil {
		return
	}
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", callbackConfirm),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", callbackCancel),
		),
	)
}

func (h *Handler) handleShare(msg *tgbotapi.MessageConfig) {
	link, err := h.survivorService.ShareLink()
	if err != nil {
		h.reply(msg)("", err)
		return
	}
	msg.Text = "📣 Share this week's survivor report with your group."
	msg.ParseMode = ""
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("📲 Share on WhatsApp", link)),
	)
}

func (h *Handler) handleResult(ctx context.Context, msg *tgbotapi.MessageConfig, args string) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		h.usage(msg, "/result <team> <WIN|DRAW|LOSS|PENDING>")
		return
	}
	team := strings.Join(fields[:len(fields)-1], " ")
	h.reply(msg)(h.survivorService.SetOutcome(ctx, team, fields[len(fields)-1]))
}

func (h *Handler) usage(msg *tgbotapi.MessageConfig, usage string) {
	msg.Text = "Usage: " + usage
	msg.ParseMode = ""
}

// reply fills msg from a service result. Errors are sent as plain text.
func (h *Handler) reply(msg *tgbotapi.MessageConfig) func(string, error) {
	return func(text string, err error) {
		if err == nil {
			msg.Text = text
			return
		}
		msg.ParseMode = ""
		msg.Text = errorText(err)
	}
}

func errorText(err error) string {
	var rejection *pool.Rejection
	if errors.As(err, &rejection) {
		notice, ok := notices[rejection.Reason]
		if !ok {
			notice = string(rejection.Reason)
		}
		if rejection.Detail != "" {
			return fmt.Sprintf("⛔ %s\n%s", notice, rejection.Detail)
		}
		return "⛔ " + notice
	}
	return "⚠️ " + err.Error()
}

// parsePick splits "[entry] <team> [week]". A leading number or #number is
// the entry; a trailing number after the team is the week.
func parsePick(args string) (entryRef, team string, week int) {
	fields := strings.Fields(args)
	if len(fields) > 1 && isEntryRef(fields[0]) {
		entryRef = fields[0]
		fields = fields[1:]
	}
	if len(fields) > 1 {
		if n, err := strconv.Atoi(fields[len(fields)-1]); err == nil && n > 0 {
			week = n
			fields = fields[:len(fields)-1]
		}
	}
	return entryRef, strings.Join(fields, " "), week
}

func isEntryRef(s string) bool {
	_, err := strconv.Atoi(strings.TrimPrefix(s, "#"))
	return err == nil
}

func optionalWeek(args string) (int, bool) {
	if args == "" {
		return 0, true
	}
	n, err := strconv.Atoi(args)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
