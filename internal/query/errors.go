package query

import "github.com/pkg/errors"

var (
	ErrIllFormedCondition  = errors.New("ill-formed query condition")
	ErrInvalidOperandCount = errors.New("invalid number of operands")
	ErrNotCompleted        = errors.New("not completed yet")
	ErrAlreadyRun          = errors.New("query already executed")
	ErrUnknown             = errors.New("unknown error")
)
