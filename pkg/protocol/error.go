package protocol

import (
	"errors"
	"fmt"
)

// Error exposes methods useful for categorizing errors.
type Error interface {
	error

	// MayHaveSucceeded returns true if the Error was triggered by a command that might have been
	// executed. For example, if the gateway times out while reading the remote service's reply to
	// an unlock request, it cannot tell whether the vehicle unlocked.
	MayHaveSucceeded() bool

	// Temporary returns true if the Error might be the result of a transient condition.
	Temporary() bool
}

// Error kinds. Every error produced by this module wraps exactly one of these; use errors.Is to
// categorize.
var (
	// ErrConfiguration indicates required process configuration is missing or invalid.
	ErrConfiguration = errors.New("configuration error")
	// ErrAuthentication indicates the remote service rejected the account credentials.
	ErrAuthentication = errors.New("remote service rejected credentials")
	// ErrValidation indicates a malformed or missing request parameter.
	ErrValidation = errors.New("invalid request")
	// ErrUnsupportedLink indicates a map URL whose host or layout is not recognized.
	ErrUnsupportedLink = errors.New("URL Not Supported Yet.")
	// ErrNetwork indicates the remote service (or a short-link host) could not be reached.
	ErrNetwork = errors.New("remote service unreachable")
	// ErrRemoteCommand indicates the remote service accepted the session but failed the command.
	ErrRemoteCommand = errors.New("remote command failed")
)

// CommandError attaches a kind and retry hints to an underlying error.
type CommandError struct {
	Kind              error
	Err               error
	PossibleSuccess   bool
	PossibleTemporary bool
}

func (e *CommandError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *CommandError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func (e *CommandError) MayHaveSucceeded() bool {
	return e.PossibleSuccess
}

func (e *CommandError) Temporary() bool {
	return e.PossibleTemporary
}

func newError(kind error, format string, a ...interface{}) *CommandError {
	return &CommandError{Kind: kind, Err: fmt.Errorf(format, a...)}
}

func NewConfigurationError(format string, a ...interface{}) error {
	return newError(ErrConfiguration, format, a...)
}

func NewAuthenticationError(format string, a ...interface{}) error {
	return newError(ErrAuthentication, format, a...)
}

func NewValidationError(format string, a ...interface{}) error {
	return newError(ErrValidation, format, a...)
}

func NewUnsupportedLinkError(format string, a ...interface{}) error {
	return newError(ErrUnsupportedLink, format, a...)
}

func NewRemoteCommandError(format string, a ...interface{}) error {
	return newError(ErrRemoteCommand, format, a...)
}

// NewNetworkError wraps a transport failure. Set mayHaveSucceeded when the request was written but
// its reply was lost.
func NewNetworkError(err error, mayHaveSucceeded bool) error {
	return &CommandError{Kind: ErrNetwork, Err: err, PossibleSuccess: mayHaveSucceeded, PossibleTemporary: true}
}

// MayHaveSucceeded returns true if err indicates the command may have been executed but the
// gateway did not receive a confirmation.
func MayHaveSucceeded(err error) bool {
	var commErr Error
	return errors.As(err, &commErr) && commErr.MayHaveSucceeded()
}

// Temporary returns true if err indicates the command failed due to possibly transient conditions.
func Temporary(err error) bool {
	var commErr Error
	return errors.As(err, &commErr) && commErr.Temporary()
}
