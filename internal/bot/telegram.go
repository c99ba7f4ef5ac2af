package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/omarshaarawi/survivorbot/internal/service"
)

type TelegramBot struct {
	bot     *tgbotapi.BotAPI
	handler *Handler
	chatID  int64
}

func NewTelegramBot(token string, chatID int64, survivorService *service.SurvivorService) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	handler := NewHandler(survivorService)

	return &TelegramBot{
		bot:     bot,
		handler: handler,
		chatID:  chatID,
	}, nil
}

// Start serves updates from the configured chat until ctx is done. The game
// holds a single session, so every other chat is ignored.
func (t *TelegramBot) Start(ctx context.Context) error {
	slog.Info("Authorized on account", "username", t.bot.Self.UserName)
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	defer t.bot.StopReceivingUpdates()

	for {
		select {
		case update := <-updates:
			t.handle(ctx, update)
		case <-ctx.Done():
			return nil
		}
	}
}

func (t *TelegramBot) handle(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		query := update.CallbackQuery
		if query.Message == nil || query.Message.Chat == nil || query.Message.Chat.ID != t.chatID {
			return
		}
		if _, err := t.bot.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
			slog.Error("Error answering callback", "error", err)
		}
		t.send(t.handler.HandleCallback(ctx, query))

	case update.Message != nil:
		if update.Message.Chat == nil {
			return
		}
		if update.Message.Chat.ID != t.chatID {
			slog.Debug("Ignoring message from unknown chat", "chat_id", update.Message.Chat.ID)
			return
		}
		if update.Message.IsCommand() {
			t.send(t.handler.HandleCommand(ctx, update))
		}
	}
}

func (t *TelegramBot) send(msg tgbotapi.MessageConfig) {
	if _, err := t.bot.Send(msg); err != nil {
		slog.Error("Error sending message", "error", err)
	}
}

func (t *TelegramBot) SendMessage(text string) error {
	if t.chatID == 0 {
		slog.Error("Chat ID not set")
		return fmt.Errorf("chat ID not set")
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := t.bot.Send(msg)
	if err != nil {
		slog.Error("Error sending message", "error", err)
	}
	return err
}
