package payslip

import "errors"

var (
	ErrPayslipNotFound       = errors.New("no payslip exists for this application")
	ErrTimesheetNotApproved  = errors.New("only approved timesheets can be paid")
	ErrNothingToPay          = errors.New("no approved unpaid hours available")
	ErrInstructionsNotOpen   = errors.New("no payment instructions awaiting confirmation")
	ErrNoABAArtifact         = errors.New("no bank instruction file has been generated")
	ErrArtifactGeneration    = errors.New("payslip artifact generation failed")
)
