package party

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (Party, error)
	SetSuspended(ctx context.Context, id string, suspended bool) error
	// HasOverduePayslips reports whether any payslip where this party is the
	// paying employer is currently overdue.
	HasOverduePayslips(ctx context.Context, employerID string) (bool, error)
}
