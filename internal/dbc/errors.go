package dbc

import "errors"

// Sentinel error kinds. Callers use errors.Is against these; wrapped
// with %w for context at the point of failure.
var (
	ErrIO                  = errors.New("dbc: io error")
	ErrParseSyntax         = errors.New("dbc: parse syntax error")
	ErrUnresolvedReference = errors.New("dbc: unresolved reference")
	ErrInvalidDlc          = errors.New("dbc: invalid dlc")
	ErrInvalidSignal       = errors.New("dbc: invalid signal")
	ErrNotAttached         = errors.New("dbc: signal not attached to a message")
	ErrSignalOutOfRange    = errors.New("dbc: signal bit range exceeds message length")
)
