package locale

import (
	"context"
	"strings"
	"testing"
)

var allKeys = []string{
	ConsentPrompt, ConsentRejected, AskNameFirst, AskName, NameInvalid,
	AskPhone, PhoneInvalid, AskCPF, CPFInvalid, AskEmail, EmailInvalid,
	RegistrationSaved, AskPick, PickInvalid, PickConfirmed,
	PickAlreadySubmitted, HelpText, WeekPlayed, WeekNotPlayed,
	GatewayError, GenericError,
}

func TestAllKeysResolveInBothLocales(t *testing.T) {
	for _, loc := range []string{Pt, En} {
		t.Run(loc, func(t *testing.T) {
			localizer, err := NewLocalizer(context.Background(), NewLocale(loc))
			if err != nil {
				t.Fatalf("NewLocalizer failed: %v", err)
			}

			for _, key := range allKeys {
				msg := localizer.MustLocalizeWithTemplate(key, "x", "y", "z")
				if msg == "" {
					t.Errorf("key %s resolves to an empty string in %s", key, loc)
				}
				if strings.Contains(msg, "{{") {
					t.Errorf("key %s in %s has an unexpanded template: %q", key, loc, msg)
				}
			}
		})
	}
}

func TestTemplateFieldsExpand(t *testing.T) {
	localizer, err := NewLocalizer(context.Background(), NewLocale(Pt))
	if err != nil {
		t.Fatalf("NewLocalizer failed: %v", err)
	}

	msg := localizer.MustLocalizeWithTemplate(PickConfirmed, "01 05 12 33 44 60", "2026-W07")
	if !strings.Contains(msg, "01 05 12 33 44 60") {
		t.Errorf("confirmation %q does not contain the numbers", msg)
	}
	if !strings.Contains(msg, "2026-W07") {
		t.Errorf("confirmation %q does not contain the week key", msg)
	}

	link := "https://t.me/bolao_bot?start=ref_1"
	msg = localizer.MustLocalizeWithTemplate(RegistrationSaved, link)
	if !strings.Contains(msg, link) {
		t.Errorf("registration confirmation %q does not contain the referral link", msg)
	}
}

func TestLocaleFallsBackToPortuguese(t *testing.T) {
	localizer, err := NewLocalizer(context.Background(), NewLocale("de"))
	if err != nil {
		t.Fatalf("NewLocalizer failed: %v", err)
	}

	if msg := localizer.MustLocalize(GenericError); msg == "" {
		t.Error("unknown locale does not fall back to the base language")
	}
}
