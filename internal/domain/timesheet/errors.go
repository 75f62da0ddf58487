package timesheet

import "errors"

var (
	ErrTimesheetNotFound   = errors.New("no timesheet exists for this application")
	ErrNoPendingEntries    = errors.New("timesheet has no unlocked entries with hours")
	ErrNotSubmitted        = errors.New("only submitted timesheets can be approved")
	ErrAlreadyApproved     = errors.New("timesheet is already approved")
	ErrEntryDateConflict   = errors.New("duplicate entry date in payload")
)
