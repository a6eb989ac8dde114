package domain

import (
	"context"
	"time"
)

// Logger interface for logging
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
}

// Step is a state of the signup conversation. The flow is strictly linear;
// StepPick is absorbing.
type Step string

const (
	StepConsent Step = "consent"
	StepName    Step = "name"
	StepPhone   Step = "phone"
	StepCPF     Step = "cpf"
	StepEmail   Step = "email"
	StepPick    Step = "pick"
)

// FirstStep returns the entry state of the flow
func FirstStep(requireConsent bool) Step {
	if requireConsent {
		return StepConsent
	}
	return StepName
}

// Next returns the state that follows s in the linear flow. StepPick
// has no successor and returns itself.
func (s Step) Next() Step {
	switch s {
	case StepConsent:
		return StepName
	case StepName:
		return StepPhone
	case StepPhone:
		return StepCPF
	case StepCPF:
		return StepEmail
	case StepEmail:
		return StepPick
	default:
		return StepPick
	}
}

// Valid reports whether s is one of the known steps
func (s Step) Valid() bool {
	switch s {
	case StepConsent, StepName, StepPhone, StepCPF, StepEmail, StepPick:
		return true
	}
	return false
}

// Registration is the record appended to the cadastros sheet once the
// EMAIL step completes
type Registration struct {
	CreatedAt  time.Time
	TelegramID int64
	Username   string
	Nome       string
	Telefone   string
	CPF        string
	Email      string
	ReferredBy string
}

// Pick is the record appended to the apostas sheet, one per participant
// per week key
type Pick struct {
	CreatedAt  time.Time
	WeekKey    string
	TelegramID int64
	Nome       string
	// Numeros is the canonical form: ascending, zero-padded to two
	// digits, space-joined ("01 05 15 30 45 60")
	Numeros string
}

// SheetsGateway submits records to the spreadsheet web app. An error means
// the record was not durably accepted and the caller must not advance state.
type SheetsGateway interface {
	SubmitRegistration(ctx context.Context, reg *Registration) error
	SubmitPick(ctx context.Context, pick *Pick) error
}

// SubmissionGuard enforces at most one accepted pick per participant per
// week key
type SubmissionGuard interface {
	HasSubmitted(ctx context.Context, weekKey string, userID int64) (bool, error)
	MarkSubmitted(ctx context.Context, weekKey string, userID int64) error
}
