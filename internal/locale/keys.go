package locale

// Message key constants for localization.
// All user-facing messages go through these to keep pt/en bundles in sync.

const (
	// Signup flow prompts
	ConsentPrompt   = "ConsentPrompt"
	ConsentRejected = "ConsentRejected"
	AskNameFirst    = "AskNameFirst"
	AskName         = "AskName"
	NameInvalid     = "NameInvalid"
	AskPhone        = "AskPhone"
	PhoneInvalid    = "PhoneInvalid"
	AskCPF          = "AskCPF"
	CPFInvalid      = "CPFInvalid"
	AskEmail        = "AskEmail"
	EmailInvalid    = "EmailInvalid"

	// Registration completion; f1 = referral link
	RegistrationSaved = "RegistrationSaved"

	// Weekly pick; f1 = count, f2 = min, f3 = max
	AskPick     = "AskPick"
	PickInvalid = "PickInvalid"
	// f1 = canonical numbers, f2 = week key
	PickConfirmed = "PickConfirmed"
	// f1 = week key
	PickAlreadySubmitted = "PickAlreadySubmitted"

	// Commands
	HelpText = "HelpText"
	// f1 = week key
	WeekPlayed    = "WeekPlayed"
	WeekNotPlayed = "WeekNotPlayed"

	// Errors
	GatewayError = "GatewayError"
	GenericError = "GenericError"
)
