package loader

import (
	"fmt"
	"strings"
)

// Kind classifies a loader failure.
type Kind string

const (
	KindInvalidArgument   Kind = "invalid_argument"
	KindConfiguration     Kind = "configuration"
	KindNetwork           Kind = "network"
	KindMalformedResponse Kind = "malformed_response"
)

// Sentinels for errors.Is. Any *Error of the same kind matches.
var (
	ErrInvalidArgument   = &Error{Kind: KindInvalidArgument}
	ErrConfiguration     = &Error{Kind: KindConfiguration}
	ErrNetwork           = &Error{Kind: KindNetwork}
	ErrMalformedResponse = &Error{Kind: KindMalformedResponse}
)

// Error is returned by every Loader operation that fails.
type Error struct {
	Kind Kind
	// Op is the operation that failed, e.g. "find fault uri".
	Op  string
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func errorf(kind Kind, op, format string, args ...interface{}) *Error {
	return newError(kind, op, fmt.Errorf(format, args...))
}

// PathError reports a redirect target whose path does not carry the project,
// fault and notice identifiers. It is always wrapped in a malformed_response Error.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("unexpected fault path %q: %s", e.Path, e.Reason)
}
