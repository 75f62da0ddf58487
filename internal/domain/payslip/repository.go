package payslip

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, p Payslip) (Payslip, error)
	GetByID(ctx context.Context, id string) (Payslip, error)
	// GetLatestByApplicationID returns the most recent payroll run.
	GetLatestByApplicationID(ctx context.Context, applicationID string) (Payslip, error)
	// Complete records the artifacts and flips the run to completed with
	// instructions generated; called inside the pay transaction.
	Complete(ctx context.Context, id string, pdfPath, abaPath string, abaGeneratedAt time.Time, metadata Metadata) error
	MarkFailed(ctx context.Context, id string) error
	// UpdateInstructionsStatus advances the settlement sub-state, but only
	// from one of the listed states; anything else returns
	// ErrInstructionsNotOpen so the sub-state can never move backward.
	UpdateInstructionsStatus(ctx context.Context, id string, from []InstructionsStatus, to InstructionsStatus) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	// ListStaleProcessing returns processing payslips created before cutoff,
	// for the reconciliation pass.
	ListStaleProcessing(ctx context.Context, cutoff time.Time) ([]Payslip, error)
	// ListOverdueCandidates returns payslips whose instructions were
	// generated but not confirmed and whose pay period ended before cutoff.
	ListOverdueCandidates(ctx context.Context, cutoff time.Time) ([]Payslip, error)
}
