package graph

import "errors"

var ErrInvalidDefinition = errors.New("invalid state machine definition")

type ErrIDConflict struct {
	msg string
}

func (e *ErrIDConflict) Error() string {
	return e.msg
}

type ErrUnexpectedType struct {
	msg string
}

func (e *ErrUnexpectedType) Error() string {
	return e.msg
}
