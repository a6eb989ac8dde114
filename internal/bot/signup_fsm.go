package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ad/telegram-bolao-bot/internal/config"
	"github.com/ad/telegram-bolao-bot/internal/domain"
	"github.com/ad/telegram-bolao-bot/internal/locale"
	"github.com/ad/telegram-bolao-bot/internal/storage"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Messenger is the slice of the Telegram bot API the FSM needs (for testing)
type Messenger interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// SignupFSM drives the signup conversation: consent, name, phone, CPF,
// email, then the weekly pick. The flow is strictly linear; invalid input
// re-prompts the same step and the pick step is absorbing.
//
// Side effects are ordered validate → remote call → state commit → reply,
// so a failed sheet submission never advances the conversation.
type SignupFSM struct {
	storage     *storage.SessionStorage
	guard       domain.SubmissionGuard
	gateway     domain.SheetsGateway
	messenger   Messenger
	config      *config.Config
	localizer   locale.Localizer
	logger      domain.Logger
	botUsername string
}

// NewSignupFSM creates the conversation engine
func NewSignupFSM(
	sessionStorage *storage.SessionStorage,
	guard domain.SubmissionGuard,
	gateway domain.SheetsGateway,
	messenger Messenger,
	cfg *config.Config,
	localizer locale.Localizer,
	logger domain.Logger,
	botUsername string,
) *SignupFSM {
	return &SignupFSM{
		storage:     sessionStorage,
		guard:       guard,
		gateway:     gateway,
		messenger:   messenger,
		config:      cfg,
		localizer:   localizer,
		logger:      logger,
		botUsername: botUsername,
	}
}

// Start resets the participant's session to the first step with empty
// collected data. A start payload of the form "ref_<code>" stores the
// referral code for the eventual registration record.
func (f *SignupFSM) Start(ctx context.Context, userID int64, chatID int64, username string, payload string) error {
	sctx := &domain.SignupContext{
		ChatID:   chatID,
		Username: username,
	}

	if code, ok := strings.CutPrefix(strings.TrimSpace(payload), "ref_"); ok && code != "" {
		sctx.ReferredBy = code
		f.logger.Debug("referral code extracted", "user_id", userID, "referred_by", code)
	}

	first := domain.FirstStep(f.config.RequireConsent)
	if err := f.storage.Set(ctx, userID, first, sctx.ToMap()); err != nil {
		f.logger.Error("failed to start signup session", "user_id", userID, "error", err)
		return err
	}

	f.logger.Info("signup session started", "user_id", userID, "step", first)

	if first == domain.StepConsent {
		return f.reply(ctx, chatID, f.localizer.MustLocalize(locale.ConsentPrompt))
	}
	return f.reply(ctx, chatID, f.localizer.MustLocalize(locale.AskNameFirst))
}

// HandleMessage routes a text message to the handler for the
// participant's current step. A participant with no session is treated as
// if the first step had just been entered.
func (f *SignupFSM) HandleMessage(ctx context.Context, update *models.Update) error {
	if update.Message == nil || update.Message.From == nil {
		return nil
	}

	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	text := update.Message.Text

	step, data, err := f.storage.Get(ctx, userID)
	if err != nil {
		if err == storage.ErrSessionNotFound {
			// Lazy session creation: enter the first step and treat this
			// message as its input.
			if err := f.Start(ctx, userID, chatID, update.Message.From.Username, ""); err != nil {
				return err
			}
			step, data, err = f.storage.Get(ctx, userID)
			if err != nil {
				return err
			}
		} else {
			f.logger.Error("failed to get session", "user_id", userID, "error", err)
			return err
		}
	}

	sctx := &domain.SignupContext{}
	if err := sctx.FromMap(data); err != nil {
		f.logger.Error("failed to load session context", "user_id", userID, "error", err)
		_ = f.storage.Delete(ctx, userID)
		return err
	}
	// Chat may differ from the one the session was created in
	sctx.ChatID = chatID

	switch step {
	case domain.StepConsent:
		return f.handleConsent(ctx, userID, sctx, text)
	case domain.StepName:
		return f.handleName(ctx, userID, sctx, text)
	case domain.StepPhone:
		return f.handlePhone(ctx, userID, sctx, text)
	case domain.StepCPF:
		return f.handleCPF(ctx, userID, sctx, text)
	case domain.StepEmail:
		return f.handleEmail(ctx, userID, sctx, text)
	case domain.StepPick:
		return f.handlePick(ctx, userID, sctx, text)
	default:
		f.logger.Warn("unexpected step for message", "user_id", userID, "step", step)
		return nil
	}
}

// handleConsent accepts a case-insensitive SIM/YES and advances to the
// name question
func (f *SignupFSM) handleConsent(ctx context.Context, userID int64, sctx *domain.SignupContext, text string) error {
	answer := strings.TrimSpace(text)
	if !strings.EqualFold(answer, "sim") && !strings.EqualFold(answer, "yes") {
		return f.reply(ctx, sctx.ChatID, f.localizer.MustLocalize(locale.ConsentRejected))
	}

	if err := f.transition(ctx, userID, domain.StepConsent, domain.StepName, sctx); err != nil {
		return err
	}
	return f.reply(ctx, sctx.ChatID, f.localizer.MustLocalize(locale.AskName))
}

func (f *SignupFSM) handleName(ctx context.Context, userID int64, sctx *domain.SignupContext, text string) error {
	if !domain.IsValidName(text) {
		return f.reply(ctx, sctx.ChatID, f.localizer.MustLocalize(locale.NameInvalid))
	}

	sctx.Nome = strings.TrimSpace(text)
	if err := f.transition(ctx, userID, domain.StepName, domain.StepPhone, sctx); err != nil {
		return err
	}
	return f.reply(ctx, sctx.ChatID, f.localizer.MustLocalize(locale.AskPhone))
}

func (f *SignupFSM) handlePhone(ctx context.Context, userID int64, sctx *domain.SignupContext, text string) error {
	phone, ok := domain.NormalizePhone(text)
	if !ok {
		return f.reply(ctx, sctx.ChatID, f.localizer.MustLocalize(locale.PhoneInvalid))
	}

	sctx.Telefone = phone
	if err := f.transition(ctx, userID, domain.StepPhone, domain.StepCPF, sctx); err != nil {
		return err
	}
	return f.reply(ctx, sctx.ChatID, f.localizer.MustLocalize(locale.AskCPF))
}

func (f *SignupFSM) handleCPF(ctx context.Context, userID int64, sctx *domain.SignupContext, text string) error {
	cpf, ok := domain.NormalizeCPF(text)
	if !ok {
		return f.reply(ctx, sctx.ChatID, f.localizer.MustLocalize(locale.CPFInvalid))
	}

	sctx.CPF = cpf
	if err := f.transition(ctx, userID, domain.StepCPF, domain.StepEmail, sctx); err != nil {
		return err
	}
	return f.reply(ctx, sctx.ChatID, f.localizer.MustLocalize(locale.AskEmail))
}

// handleEmail validates the email and submits the registration record.
// The transition to the pick step only commits after the sheet accepted
// the record; on gateway failure the participant stays in EMAIL and can
// retry by resending a valid email.
func (f *SignupFSM) handleEmail(ctx context.Context, userID int64, sctx *domain.SignupContext, text string) error {
	if !domain.IsValidEmail(text) {
		return f.reply(ctx, sctx.ChatID, f.localizer.MustLocalize(locale.EmailInvalid))
	}

	email := strings.ToLower(strings.TrimSpace(text))

	reg := &domain.Registration{
		CreatedAt:  time.Now(),
		TelegramID: userID,
		Username:   sctx.Username,
		Nome:       sctx.Nome,
		Telefone:   sctx.Telefone,
		CPF:        sctx.CPF,
		Email:      email,
		ReferredBy: sctx.ReferredBy,
	}

	if err := f.gateway.SubmitRegistration(ctx, reg); err != nil {
		f.logger.Error("failed to submit registration", "user_id", userID, "error", err)
		return f.reply(ctx, sctx.ChatID, f.localizer.MustLocalize(locale.GatewayError))
	}

	sctx.Email = email
	if err := f.transition(ctx, userID, domain.StepEmail, domain.StepPick, sctx); err != nil {
		return err
	}

	f.logger.Info("registration submitted", "user_id", userID, "referred_by", sctx.ReferredBy)

	if err := f.reply(ctx, sctx.ChatID, f.localizer.MustLocalizeWithTemplate(locale.RegistrationSaved, f.referralLink(userID))); err != nil {
		return err
	}
	return f.askPick(ctx, sctx.ChatID)
}

// handlePick parses the pick, enforces the weekly guard and submits the
// pick record. The guard is marked and the confirmation sent only after
// the sheet accepted the record. The step never changes: PICK is terminal.
func (f *SignupFSM) handlePick(ctx context.Context, userID int64, sctx *domain.SignupContext, text string) error {
	weekKey := domain.WeekKey(time.Now())

	_, canonical, err := domain.ParsePick(text, f.config.PickCount, f.config.PickMin, f.config.PickMax)
	if err != nil {
		f.logger.Debug("invalid pick", "user_id", userID, "error", err)
		return f.replyPickInvalid(ctx, sctx.ChatID)
	}

	submitted, err := f.guard.HasSubmitted(ctx, weekKey, userID)
	if err != nil {
		f.logger.Error("failed to check weekly guard", "user_id", userID, "week_key", weekKey, "error", err)
		return f.reply(ctx, sctx.ChatID, f.localizer.MustLocalize(locale.GenericError))
	}
	if submitted {
		return f.reply(ctx, sctx.ChatID, f.localizer.MustLocalizeWithTemplate(locale.PickAlreadySubmitted, weekKey))
	}

	pick := &domain.Pick{
		CreatedAt:  time.Now(),
		WeekKey:    weekKey,
		TelegramID: userID,
		Nome:       sctx.Nome,
		Numeros:    canonical,
	}

	if err := f.gateway.SubmitPick(ctx, pick); err != nil {
		f.logger.Error("failed to submit pick", "user_id", userID, "week_key", weekKey, "error", err)
		return f.reply(ctx, sctx.ChatID, f.localizer.MustLocalize(locale.GatewayError))
	}

	if err := f.guard.MarkSubmitted(ctx, weekKey, userID); err != nil {
		// The record is already on the sheet; losing the guard row only
		// risks a duplicate row next time, which the sheet tolerates.
		f.logger.Error("failed to mark weekly submission", "user_id", userID, "week_key", weekKey, "error", err)
	}

	f.logger.Info("pick submitted", "user_id", userID, "week_key", weekKey, "numeros", canonical)

	return f.reply(ctx, sctx.ChatID, f.localizer.MustLocalizeWithTemplate(locale.PickConfirmed, canonical, weekKey))
}

// transition commits a state change, logging it the same way for every step
func (f *SignupFSM) transition(ctx context.Context, userID int64, from, to domain.Step, sctx *domain.SignupContext) error {
	if err := f.storage.Set(ctx, userID, to, sctx.ToMap()); err != nil {
		f.logger.Error("failed to transition state", "user_id", userID, "old_step", from, "new_step", to, "error", err)
		return err
	}
	f.logger.Info("state transition", "user_id", userID, "old_step", from, "new_step", to)
	return nil
}

func (f *SignupFSM) askPick(ctx context.Context, chatID int64) error {
	return f.reply(ctx, chatID, f.localizer.MustLocalizeWithTemplate(locale.AskPick,
		strconv.Itoa(f.config.PickCount),
		strconv.Itoa(f.config.PickMin),
		strconv.Itoa(f.config.PickMax),
	))
}

func (f *SignupFSM) replyPickInvalid(ctx context.Context, chatID int64) error {
	return f.reply(ctx, chatID, f.localizer.MustLocalizeWithTemplate(locale.PickInvalid,
		strconv.Itoa(f.config.PickCount),
		strconv.Itoa(f.config.PickMin),
		strconv.Itoa(f.config.PickMax),
	))
}

func (f *SignupFSM) referralLink(userID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=ref_%d", f.botUsername, userID)
}

// reply sends a plain text message, logging failures
func (f *SignupFSM) reply(ctx context.Context, chatID int64, text string) error {
	_, err := f.messenger.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		f.logger.Error("failed to send message", "chat_id", chatID, "error", err)
		return err
	}
	return nil
}
