package engine

import "errors"

// Simulation errors
var (
	ErrInvalidFaultBound  = errors.New("invalid fault bound (need t >= 0 and n > 2t)")
	ErrNoNodes            = errors.New("no nodes configured")
	ErrInvalidInput       = errors.New("invalid input bit")
	ErrInvalidProbability = errors.New("invalid delivery probability")
	ErrInvalidStepBudget  = errors.New("invalid step budget")
	ErrInvalidConfig      = errors.New("invalid simulation config")
	ErrUnknownNode        = errors.New("unknown node")
	ErrDuplicateNode      = errors.New("duplicate node")
	ErrAlreadyStarted     = errors.New("simulation already started")
	ErrNotStarted         = errors.New("simulation not started")
)
