package timesheet

import "context"

type Repository interface {
	GetByApplicationID(ctx context.Context, applicationID string) (Timesheet, error)
	// Create inserts an empty draft timesheet for an accepted offer.
	Create(ctx context.Context, t Timesheet) (Timesheet, error)
	// ReplaceUnlockedEntries deletes unlocked entries absent from entries,
	// upserts the rest by entry date, and leaves locked rows untouched.
	ReplaceUnlockedEntries(ctx context.Context, timesheetID string, entries []Entry) error
	UpdateHeader(ctx context.Context, t Timesheet) error
	// LockEntries flips is_locked on every entry of the timesheet.
	LockEntries(ctx context.Context, timesheetID string) error
	// SelectPayableForUpdate loads the locked, unpaid entries with row locks
	// held for the rest of the surrounding transaction.
	SelectPayableForUpdate(ctx context.Context, timesheetID string) ([]Entry, error)
	// MarkEntriesPaid sets is_paid and the payment status on the given
	// entries, skipping any that are already paid.
	MarkEntriesPaid(ctx context.Context, entryIDs []string, status PaymentStatus) error
	UpdateEntryPaymentStatus(ctx context.Context, timesheetID string, from []PaymentStatus, to PaymentStatus) error
	HasLockedEntries(ctx context.Context, applicationID string) (bool, error)
}
