// Package bot is the Telegram delivery layer. It resolves inbound updates
// to the closed command set, invokes the tracker service, and renders
// structured results into messages and keyboards. No tracking logic lives
// here.
package bot

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"multazim/internal/config"
	derrors "multazim/internal/errors"
	"multazim/internal/tracker"
)

// client is the outbound surface of the Telegram API the handlers need.
// Satisfied by *tgbotapi.BotAPI; handler tests substitute a fake.
type client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot wires the Telegram API to the tracker service.
type Bot struct {
	api     *tgbotapi.BotAPI
	client  client
	service *tracker.Service
	timeout int

	mu    sync.RWMutex
	texts *Texts
}

// New authenticates against the Telegram API and returns a ready bot.
func New(cfg config.BotConfig, texts *Texts, service *tracker.Service) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CategoryTelegram, derrors.SeverityFatal, "telegram authentication failed")
	}
	api.Debug = cfg.Debug

	if texts == nil {
		texts = DefaultTexts()
	}
	return &Bot{
		api:     api,
		client:  api,
		service: service,
		timeout: cfg.PollTimeout,
		texts:   texts,
	}, nil
}

// Username returns the authenticated bot account name.
func (b *Bot) Username() string { return b.api.Self.UserName }

// SetTexts swaps the active text set. Safe to call while Run is live; used
// by the config watcher for hot reloads.
func (b *Bot) SetTexts(texts *Texts) {
	if texts == nil {
		return
	}
	b.mu.Lock()
	b.texts = texts
	b.mu.Unlock()
}

func (b *Bot) activeTexts() *Texts {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.texts
}

// Run consumes updates via long polling until ctx is cancelled. Each update
// is handled on its own goroutine; the tracker service serializes writes per
// user, so concurrent updates for different users proceed independently.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.timeout
	updates := b.api.GetUpdatesChan(u)

	slog.Info("telegram bot polling", "username", b.Username(), "timeout_s", b.timeout)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while handling update", "panic", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	texts := b.activeTexts()
	cmd := resolveText(texts, msg.Text)
	userID := strconv.FormatInt(msg.From.ID, 10)
	now := time.Now()

	switch cmd.Kind {
	case CommandStart:
		b.sendWelcome(ctx, msg.Chat.ID, userID, now, texts)
	case CommandStatus:
		b.sendStatus(ctx, msg.Chat.ID, userID, now, texts)
	case CommandWeek:
		b.sendWeek(ctx, msg.Chat.ID, userID, now, texts)
	case CommandNone:
		// Unrecognized text is ignored; the reply keyboard guides users back.
	}
}

func (b *Bot) sendWelcome(ctx context.Context, chatID int64, userID string, now time.Time, texts *Texts) {
	welcome := tgbotapi.NewMessage(chatID, texts.Welcome)
	welcome.ParseMode = tgbotapi.ModeMarkdown
	b.send(welcome)

	b.sendStatus(ctx, chatID, userID, now, texts)

	menu := tgbotapi.NewMessage(chatID, texts.MenuPrompt)
	menu.ReplyMarkup = mainMenu(texts)
	b.send(menu)
}

func (b *Bot) sendStatus(ctx context.Context, chatID int64, userID string, now time.Time, texts *Texts) {
	rec, err := b.service.Status(ctx, userID, now)
	if err != nil {
		b.reportFailure(chatID, userID, "status", err, texts)
		return
	}

	msg := tgbotapi.NewMessage(chatID, statusText(texts, tracker.DateKey(now, b.service.Location()), rec))
	msg.ReplyMarkup = markKeyboard(texts)
	b.send(msg)
}

func (b *Bot) sendWeek(ctx context.Context, chatID int64, userID string, now time.Time, texts *Texts) {
	window, err := b.service.Week(ctx, userID, now, tracker.DefaultWindowDays)
	if err != nil {
		b.reportFailure(chatID, userID, "week", err, texts)
		return
	}

	msg := tgbotapi.NewMessage(chatID, weekText(texts, window))
	msg.ParseMode = tgbotapi.ModeMarkdown
	b.send(msg)
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	texts := b.activeTexts()
	cmd := resolveCallback(cq.Data)
	userID := strconv.FormatInt(cq.From.ID, 10)
	now := time.Now()

	result, err := b.service.Mark(ctx, userID, cmd.Task, now)
	switch {
	case derrors.IsCategory(err, derrors.CategoryValidation):
		// Stale keyboard or foreign payload; acknowledge silently.
		slog.Warn("callback with unrecognized task id", "user_id", userID, "data", cq.Data)
		b.answerCallback(cq.ID, "")
		return
	case err != nil:
		if cq.Message == nil {
			b.answerCallback(cq.ID, texts.StorageFailure)
			slog.Error("operation failed", "op", "mark", "user_id", userID, "error", err)
			return
		}
		b.answerCallback(cq.ID, "")
		b.reportFailure(cq.Message.Chat.ID, userID, "mark", err, texts)
		return
	}

	if result.AlreadyDone {
		b.answerCallback(cq.ID, texts.AlreadyDone)
		return
	}

	// Callbacks from messages older than 48h or sent via inline mode carry
	// no Message; the mark is stored, so confirm through the answer alone.
	if cq.Message == nil {
		b.answerCallback(cq.ID, texts.Celebrations[cmd.Task])
		return
	}

	b.answerCallback(cq.ID, "")

	edit := tgbotapi.NewEditMessageTextAndMarkup(
		cq.Message.Chat.ID,
		cq.Message.MessageID,
		statusText(texts, tracker.DateKey(now, b.service.Location()), result.Record),
		markKeyboard(texts),
	)
	b.send(edit)

	if celebration, ok := texts.Celebrations[cmd.Task]; ok {
		b.send(tgbotapi.NewMessage(cq.Message.Chat.ID, celebration))
	}
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.client.Request(tgbotapi.NewCallback(id, text)); err != nil {
		slog.Warn("failed to answer callback query", "error", err)
	}
}

// reportFailure sends the generic failure notice and logs the real cause.
// Internal detail never reaches the chat.
func (b *Bot) reportFailure(chatID int64, userID, op string, err error, texts *Texts) {
	slog.Error("operation failed", "op", op, "user_id", userID, "error", err)
	b.send(tgbotapi.NewMessage(chatID, texts.StorageFailure))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.client.Send(c); err != nil {
		slog.Warn("telegram send failed", "error", derrors.TelegramSendFailed(err))
	}
}
