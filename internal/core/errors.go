package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrTransient     = errors.New("transient platform error")
	ErrNoData        = errors.New("no activity data")
	ErrInvalidTarget = errors.New("invalid target specifier")
)

type ErrorKind int

const (
	KindUsage ErrorKind = iota
	KindAuth
	KindResolution
	KindRemote
	KindNoData
)

func (k ErrorKind) String() string {
	switch k {
	case KindUsage:
		return "usage"
	case KindAuth:
		return "auth"
	case KindResolution:
		return "resolution"
	case KindRemote:
		return "remote"
	case KindNoData:
		return "no_data"
	default:
		return "unknown"
	}
}

// UserError is a failure the initiating user is told about. Anything else
// escaping a command is reported to the operator instead.
type UserError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *UserError) Unwrap() error {
	return e.Err
}

func NewUserError(kind ErrorKind, msg string) *UserError {
	return &UserError{Kind: kind, Msg: msg}
}

func WrapUserError(kind ErrorKind, msg string, err error) *UserError {
	return &UserError{Kind: kind, Msg: msg, Err: err}
}
