package agent

import "errors"

var (
	ErrNotFound            = errors.New("lender agent not found")
	ErrInactive            = errors.New("lender agent is inactive")
	ErrInsufficientCapital = errors.New("insufficient capital available")
)
