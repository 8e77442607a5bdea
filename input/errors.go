package input

import (
	"fmt"

	"github.com/pkg/errors"
)

// UsageError is returned when the command is missing its URL or carries
// positional arguments that curl would not accept.
type UsageError string

func (e *UsageError) Error() string {
	return string(*e)
}

func newUsageError(message string) error {
	u := UsageError(message)
	return errors.WithStack(&u)
}

// InvalidCommandError is returned when the first token is not "curl".
type InvalidCommandError struct {
	Command string
}

func (e *InvalidCommandError) Error() string {
	if e.Command == "" {
		return "empty command: expected 'curl'"
	}
	return fmt.Sprintf("invalid command '%s' requested: expected 'curl'", e.Command)
}

// UnsupportedFlagError is returned for a flag that is not part of the
// grammar or that is given the wrong number of arguments.
type UnsupportedFlagError struct {
	Flag   string
	Reason string
}

func (e *UnsupportedFlagError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("unsupported flag: %s", e.Flag)
	}
	return fmt.Sprintf("flag %s: %s", e.Flag, e.Reason)
}

// ParseError is returned when the URL, a header, a cookie string or the
// command quoting cannot be decomposed.
type ParseError struct {
	Subject string
	Value   string
	Err     error
}

func (e *ParseError) Error() string {
	msg := "invalid " + e.Subject
	if e.Value != "" {
		msg += fmt.Sprintf(" '%s'", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause to errors.Is and errors.As. There is
// no Cause method, so errors.Cause stops at the ParseError.
func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(subject, value string, err error) error {
	return errors.WithStack(&ParseError{Subject: subject, Value: value, Err: err})
}

// AuthFormatError is returned when the -u value has no ':' separator.
type AuthFormatError struct {
	User string
}

func (e *AuthFormatError) Error() string {
	return fmt.Sprintf("user '%s' must be given as 'user:password'", e.User)
}
