package bot

import (
	"context"
	"strings"
	"time"

	"github.com/ad/telegram-bolao-bot/internal/config"
	"github.com/ad/telegram-bolao-bot/internal/domain"
	"github.com/ad/telegram-bolao-bot/internal/locale"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// BotHandler routes Telegram updates to the signup FSM and the few
// standalone commands
type BotHandler struct {
	messenger Messenger
	fsm       *SignupFSM
	guard     domain.SubmissionGuard
	config    *config.Config
	localizer locale.Localizer
	logger    domain.Logger
}

// NewBotHandler creates a new BotHandler with all dependencies
func NewBotHandler(
	messenger Messenger,
	fsm *SignupFSM,
	guard domain.SubmissionGuard,
	cfg *config.Config,
	localizer locale.Localizer,
	logger domain.Logger,
) *BotHandler {
	return &BotHandler{
		messenger: messenger,
		fsm:       fsm,
		guard:     guard,
		config:    cfg,
		localizer: localizer,
		logger:    logger,
	}
}

// HandleStart handles the /start command: it resets the session and pulls
// an optional "ref_<code>" referral payload from the command argument
func (h *BotHandler) HandleStart(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	defer h.recoverBoundary(ctx, update.Message.Chat.ID)

	payload := strings.TrimSpace(strings.TrimPrefix(update.Message.Text, "/start"))

	err := h.fsm.Start(ctx, update.Message.From.ID, update.Message.Chat.ID, update.Message.From.Username, payload)
	if err != nil {
		h.logger.Error("failed to handle /start", "user_id", update.Message.From.ID, "error", err)
		h.sendGenericError(ctx, update.Message.Chat.ID)
	}
}

// HandleHelp handles the /help command
func (h *BotHandler) HandleHelp(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	defer h.recoverBoundary(ctx, update.Message.Chat.ID)

	_, err := h.messenger.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   h.localizer.MustLocalize(locale.HelpText),
	})
	if err != nil {
		h.logger.Error("failed to send help", "error", err)
	}
}

// HandleWeek handles the /semana command: it reports the current week key
// and whether the participant already played this week
func (h *BotHandler) HandleWeek(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	defer h.recoverBoundary(ctx, update.Message.Chat.ID)

	weekKey := domain.WeekKey(time.Now())

	submitted, err := h.guard.HasSubmitted(ctx, weekKey, update.Message.From.ID)
	if err != nil {
		h.logger.Error("failed to check weekly guard", "user_id", update.Message.From.ID, "error", err)
		h.sendGenericError(ctx, update.Message.Chat.ID)
		return
	}

	key := locale.WeekNotPlayed
	if submitted {
		key = locale.WeekPlayed
	}

	_, err = h.messenger.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   h.localizer.MustLocalizeWithTemplate(key, weekKey),
	})
	if err != nil {
		h.logger.Error("failed to send week status", "error", err)
	}
}

// HandleMessage handles regular text messages by feeding them to the
// signup FSM. Errors never escape: whatever goes wrong inside one message
// turns into an apologetic reply, not a crashed poller.
func (h *BotHandler) HandleMessage(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	defer h.recoverBoundary(ctx, update.Message.Chat.ID)

	// Commands are registered separately; unknown ones are ignored rather
	// than fed to the conversation
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	if err := h.fsm.HandleMessage(ctx, update); err != nil {
		h.logger.Error("failed to handle message", "user_id", update.Message.From.ID, "error", err)
		h.sendGenericError(ctx, update.Message.Chat.ID)
	}
}

// recoverBoundary converts a panic in per-message handling into a generic
// reply, keeping the update loop alive
func (h *BotHandler) recoverBoundary(ctx context.Context, chatID int64) {
	if r := recover(); r != nil {
		h.logger.Error("panic in update handler", "chat_id", chatID, "panic", r)
		h.sendGenericError(ctx, chatID)
	}
}

func (h *BotHandler) sendGenericError(ctx context.Context, chatID int64) {
	_, err := h.messenger.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   h.localizer.MustLocalize(locale.GenericError),
	})
	if err != nil {
		h.logger.Error("failed to send generic error", "chat_id", chatID, "error", err)
	}
}
