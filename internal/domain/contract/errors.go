package contract

import "errors"

// Errors shared across the offer/timesheet/payslip workflow. Domain packages
// add their own sentinels for state-machine violations; these cover the
// cross-cutting kinds every operation can produce.
var (
	ErrForbidden              = errors.New("actor is not a party to this application")
	ErrApplicationNotFound    = errors.New("application not found")
	ErrConcurrentModification = errors.New("another command is in flight for this application")
	ErrEmployerSuspended      = errors.New("employer is suspended due to overdue payment instructions")
)
