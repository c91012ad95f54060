package rosca

import "fmt"

// Code is a stable, numeric error discriminant. Values never change meaning
// across releases; new codes are appended, never renumbered.
type Code int

const (
	// Group errors (1001-1003).
	CodeGroupNotFound Code = 1001
	CodeGroupFull     Code = 1002
	CodeInvalidState  Code = 1003

	// Member errors (2001-2003).
	CodeAlreadyMember Code = 2001
	CodeNotMember     Code = 2002
	CodeUnauthorized  Code = 2003

	// Contribution errors (3001-3004).
	CodeInvalidAmount         Code = 3001
	CodeAlreadyContributed    Code = 3002
	CodeCycleNotComplete      Code = 3003
	CodeContributionNotFound  Code = 3004

	// Payout errors (4001-4003).
	CodePayoutFailed            Code = 4001
	CodePayoutAlreadyProcessed  Code = 4002
	CodeInvalidRecipient        Code = 4003

	// System errors (9001-9003).
	CodeInternalError  Code = 9001
	CodeDataCorruption Code = 9002
	CodeOverflow       Code = 9003
)

var codeNames = map[Code]string{
	CodeGroupNotFound:         "GroupNotFound",
	CodeGroupFull:             "GroupFull",
	CodeInvalidState:          "InvalidState",
	CodeAlreadyMember:         "AlreadyMember",
	CodeNotMember:             "NotMember",
	CodeUnauthorized:          "Unauthorized",
	CodeInvalidAmount:         "InvalidAmount",
	CodeAlreadyContributed:    "AlreadyContributed",
	CodeCycleNotComplete:      "CycleNotComplete",
	CodeContributionNotFound:  "ContributionNotFound",
	CodePayoutFailed:          "PayoutFailed",
	CodePayoutAlreadyProcessed: "PayoutAlreadyProcessed",
	CodeInvalidRecipient:      "InvalidRecipient",
	CodeInternalError:         "InternalError",
	CodeDataCorruption:        "DataCorruption",
	CodeOverflow:              "Overflow",
}

// String renders the human-readable name of the code, e.g. "InvalidState".
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Error wraps a stable numeric code with an optional sub-kind and free-form
// detail. Callers that need to branch on the taxonomy compare against Code,
// never against the message text.
type Error struct {
	Code    Code
	Sub     string // e.g. "InvalidTransition", "AlreadyCompleted"
	Detail  string
}

func (e *Error) Error() string {
	if e.Sub != "" {
		if e.Detail != "" {
			return fmt.Sprintf("rosca: %s(%s): %s", e.Code, e.Sub, e.Detail)
		}
		return fmt.Sprintf("rosca: %s(%s)", e.Code, e.Sub)
	}
	if e.Detail != "" {
		return fmt.Sprintf("rosca: %s: %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("rosca: %s", e.Code)
}

// Is allows errors.Is(err, rosca.CodeErr(CodeGroupNotFound)) style matching
// by comparing the numeric code only, ignoring Sub/Detail.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

// newErr constructs an *Error for the given code with an optional sub-kind
// and detail message.
func newErr(code Code, sub, detail string) *Error {
	return &Error{Code: code, Sub: sub, Detail: detail}
}

// CodeErr returns a bare comparison target for the given code, usable with
// errors.Is.
func CodeErr(code Code) error { return &Error{Code: code} }

// CodeOf extracts the stable numeric code from err, returning (0, false)
// when err is nil or is not an *Error.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if err == nil {
		return 0, false
	}
	if asErr, ok := err.(*Error); ok {
		e = asErr
	} else {
		return 0, false
	}
	return e.Code, true
}
