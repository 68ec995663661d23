// Package errs defines the error kinds a review run can end with and their process exit codes.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a terminal failure
type Kind int

const (
	// KindUnexpected covers anything not classified below
	KindUnexpected Kind = iota
	// KindConfig marks a missing, unreadable or malformed config file
	KindConfig
	// KindGit marks a failed diff invocation
	KindGit
	// KindProvider marks credential, dispatch or streaming failures
	KindProvider
	// KindVerdict marks a review that requested changes
	KindVerdict
	// KindUsage marks invalid command-line usage
	KindUsage
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindGit:
		return "git"
	case KindProvider:
		return "provider"
	case KindVerdict:
		return "verdict"
	case KindUsage:
		return "usage"
	default:
		return "unexpected"
	}
}

// ExitCode returns the process exit status for the kind
func (k Kind) ExitCode() int {
	switch k {
	case KindConfig, KindUsage:
		return 2
	case KindGit:
		return 3
	case KindProvider:
		return 4
	default:
		return 1
	}
}

// Error is a classified error carrying an optional cause. Msg is complete on its own
// and is what gets printed; Err keeps the cause for errors.Is and verbose output.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Error returns the user-facing message. The cause is reachable through Unwrap.
func (e *Error) Error() string {
	if e.Msg == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind with no message, so errors.Is(err, &Error{Kind: KindGit}) works
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

func newf(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Config returns a configuration error
func Config(err error, format string, args ...any) *Error {
	return newf(KindConfig, err, format, args...)
}

// Git returns a diff acquisition error
func Git(err error, format string, args ...any) *Error {
	return newf(KindGit, err, format, args...)
}

// Provider returns a provider error
func Provider(err error, format string, args ...any) *Error {
	return newf(KindProvider, err, format, args...)
}

// Usage returns a command-line usage error
func Usage(format string, args ...any) *Error {
	return newf(KindUsage, nil, format, args...)
}

// Verdict returns the error reported when a review requests changes
func Verdict(format string, args ...any) *Error {
	return newf(KindVerdict, nil, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnexpected
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// ExitCode maps err to a process exit status. A nil error exits 0.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return KindOf(err).ExitCode()
}

// Chain returns the messages of every error in err's unwrap chain, outermost first
func Chain(err error) []string {
	var out []string
	for err != nil {
		out = append(out, err.Error())
		err = errors.Unwrap(err)
	}
	return out
}
