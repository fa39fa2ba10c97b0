package resolution

// Kind enumerates the possible results of resolving a slug.
type Kind int

const (
	// KindTarget carries the URL to redirect to.
	KindTarget Kind = iota
	// KindMissing means no link exists for the slug.
	KindMissing
	// KindExpired means the link is past its expiry.
	KindExpired
	// KindDisabled means the link was switched off by its owner.
	KindDisabled
	// KindSystemError covers every failure to obtain an answer.
	KindSystemError
	// KindPasswordRequired means the link is protected and no password was sent.
	KindPasswordRequired
	// KindIncorrectPassword means the supplied password did not match.
	KindIncorrectPassword
)

// Wire codes returned by the resolver endpoint instead of a target URL.
const (
	CodeMissing           = "Missing[0000]"
	CodeExpired           = "Expired[0001]"
	CodeDisabled          = "Disabled[0002]"
	CodeSystemError       = "Error[0003]"
	CodePasswordRequired  = "PasswordRequired[0004]"
	CodeIncorrectPassword = "IncorrectPassword[0005]"
)

var kindNames = map[Kind]string{
	KindTarget:            "target",
	KindMissing:           "missing",
	KindExpired:           "expired",
	KindDisabled:          "disabled",
	KindSystemError:       "system",
	KindPasswordRequired:  "password_required",
	KindIncorrectPassword: "incorrect_password",
}

var codeKinds = map[string]Kind{
	CodeMissing:           KindMissing,
	CodeExpired:           KindExpired,
	CodeDisabled:          KindDisabled,
	CodeSystemError:       KindSystemError,
	CodePasswordRequired:  KindPasswordRequired,
	CodeIncorrectPassword: KindIncorrectPassword,
}

// Kinds lists every non-target kind. A redirect table must cover all of them.
func Kinds() []Kind {
	return []Kind{
		KindMissing,
		KindExpired,
		KindDisabled,
		KindSystemError,
		KindPasswordRequired,
		KindIncorrectPassword,
	}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return "unknown"
}

// Outcome is the result of a single resolution. URL is set only for KindTarget.
type Outcome struct {
	Kind Kind
	URL  string
}

// Outcome constructors, one per kind.
func Target(url string) Outcome  { return Outcome{Kind: KindTarget, URL: url} }
func Missing() Outcome           { return Outcome{Kind: KindMissing} }
func Expired() Outcome           { return Outcome{Kind: KindExpired} }
func Disabled() Outcome          { return Outcome{Kind: KindDisabled} }
func SystemError() Outcome       { return Outcome{Kind: KindSystemError} }
func PasswordRequired() Outcome  { return Outcome{Kind: KindPasswordRequired} }
func IncorrectPassword() Outcome { return Outcome{Kind: KindIncorrectPassword} }

// ParseBody interprets the resolver's bare-string body. Reserved codes are
// matched before the value is taken as a target URL; an empty body is a
// system error.
func ParseBody(body string) Outcome {
	if kind, ok := codeKinds[body]; ok {
		return Outcome{Kind: kind}
	}

	if body == "" {
		return SystemError()
	}

	return Target(body)
}

// Body renders the outcome the way the resolver endpoint writes it.
func (o Outcome) Body() string {
	switch o.Kind {
	case KindTarget:
		return o.URL
	case KindMissing:
		return CodeMissing
	case KindExpired:
		return CodeExpired
	case KindDisabled:
		return CodeDisabled
	case KindPasswordRequired:
		return CodePasswordRequired
	case KindIncorrectPassword:
		return CodeIncorrectPassword
	case KindSystemError:
		return CodeSystemError
	default:
		return CodeSystemError
	}
}
