package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/ad/telegram-bolao-bot/internal/config"
	"github.com/ad/telegram-bolao-bot/internal/domain"
	"github.com/ad/telegram-bolao-bot/internal/locale"
	"github.com/ad/telegram-bolao-bot/internal/logger"

	_ "modernc.org/sqlite"
)

func newTestHandler(t *testing.T, f *fsmFixture) *BotHandler {
	t.Helper()

	cfg := &config.Config{
		RequireConsent: false,
		PickCount:      6,
		PickMin:        1,
		PickMax:        60,
	}

	localizer, err := locale.NewLocalizer(context.Background(), locale.NewLocale(locale.Pt))
	if err != nil {
		t.Fatalf("Failed to create localizer: %v", err)
	}

	log := logger.New(logger.ERROR)
	return NewBotHandler(f.messenger, f.fsm, f.guard, cfg, localizer, log)
}

func TestHandleStartExtractsReferralPayload(t *testing.T) {
	f := newTestFSM(t, false)
	defer f.cleanup()
	h := newTestHandler(t, f)

	userID := int64(100)
	h.HandleStart(context.Background(), nil, textUpdate(userID, "/start ref_77"))

	f.send(t, userID, "Maria Silva")
	f.send(t, userID, "11987654321")
	f.send(t, userID, "12345678909")
	f.send(t, userID, "maria@example.com")

	if len(f.gateway.registrations) != 1 {
		t.Fatalf("expected 1 registration, got %d", len(f.gateway.registrations))
	}
	if got := f.gateway.registrations[0].ReferredBy; got != "77" {
		t.Errorf("ReferredBy = %q, want %q", got, "77")
	}
}

func TestHandleStartWithoutPayload(t *testing.T) {
	f := newTestFSM(t, false)
	defer f.cleanup()
	h := newTestHandler(t, f)

	userID := int64(100)
	h.HandleStart(context.Background(), nil, textUpdate(userID, "/start"))

	if got := f.step(t, userID); got != domain.StepName {
		t.Errorf("step = %s, want %s", got, domain.StepName)
	}
}

func TestHandleWeekReportsStatus(t *testing.T) {
	f := newTestFSM(t, false)
	defer f.cleanup()
	h := newTestHandler(t, f)

	userID := int64(100)
	ctx := context.Background()
	weekKey := domain.CurrentWeekKey()

	h.HandleWeek(ctx, nil, textUpdate(userID, "/semana"))
	notPlayed := f.messenger.lastSent()
	if !strings.Contains(notPlayed, weekKey) {
		t.Errorf("reply %q does not mention week %q", notPlayed, weekKey)
	}

	if err := f.guard.MarkSubmitted(ctx, weekKey, userID); err != nil {
		t.Fatalf("MarkSubmitted failed: %v", err)
	}

	h.HandleWeek(ctx, nil, textUpdate(userID, "/semana"))
	played := f.messenger.lastSent()
	if !strings.Contains(played, weekKey) {
		t.Errorf("reply %q does not mention week %q", played, weekKey)
	}

	if played == notPlayed {
		t.Error("played and not-played replies are identical")
	}
}

func TestHandleHelpSendsText(t *testing.T) {
	f := newTestFSM(t, false)
	defer f.cleanup()
	h := newTestHandler(t, f)

	h.HandleHelp(context.Background(), nil, textUpdate(100, "/help"))

	if len(f.messenger.sent) != 1 || f.messenger.lastSent() == "" {
		t.Errorf("expected one non-empty help reply, got %v", f.messenger.sent)
	}
}

func TestHandleMessageIgnoresCommands(t *testing.T) {
	f := newTestFSM(t, false)
	defer f.cleanup()
	h := newTestHandler(t, f)

	// Unknown commands are not fed to the conversation
	h.HandleMessage(context.Background(), nil, textUpdate(100, "/unknown"))

	if len(f.messenger.sent) != 0 {
		t.Errorf("command produced replies: %v", f.messenger.sent)
	}
}

func TestHandleMessageIgnoresNonMessageUpdates(t *testing.T) {
	f := newTestFSM(t, false)
	defer f.cleanup()
	h := newTestHandler(t, f)

	update := textUpdate(100, "x")
	update.Message = nil

	h.HandleMessage(context.Background(), nil, update)
	h.HandleStart(context.Background(), nil, update)
	h.HandleWeek(context.Background(), nil, update)
	h.HandleHelp(context.Background(), nil, update)

	if len(f.messenger.sent) != 0 {
		t.Errorf("nil message produced replies: %v", f.messenger.sent)
	}
}
