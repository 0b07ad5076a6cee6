package dbop

import (
	"errors"
	"strings"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrConfiguration reports a missing or empty selector argument.
	ErrConfiguration = errors.New("configuration error")
	// ErrConditionConflict reports that both or neither of the equality and
	// range predicates were supplied.
	ErrConditionConflict = errors.New("condition conflict")
	// ErrReflection reports a model that cannot be mapped to columns.
	ErrReflection = errors.New("reflection error")
	// ErrExecution reports a failure returned by the executor.
	ErrExecution = errors.New("execution error")
)

// Error is the error returned by builders and the DAL.
type Error struct {
	// Kind is one of the Err* sentinels above.
	Kind error
	// Op is the operation that failed, e.g. "insert" or "SelectRow".
	Op  string
	Msg string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("dbop")
	if e.Op != "" {
		b.WriteByte('/')
		b.WriteString(e.Op)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func configErr(op, msg string) error {
	return &Error{Kind: ErrConfiguration, Op: op, Msg: msg}
}

func conflictErr(op, msg string) error {
	return &Error{Kind: ErrConditionConflict, Op: op, Msg: msg}
}

func reflectErr(op, msg string) error {
	return &Error{Kind: ErrReflection, Op: op, Msg: msg}
}

func execErr(op string, err error) error {
	return &Error{Kind: ErrExecution, Op: op, Err: err}
}
