package timesheet

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is a coarse workflow marker. Entry-level locking is the real
// invariant: approved timesheets still accept new unlocked rows, and only the
// unlocked tail cycles back through submitted.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
)

// PaymentStatus tracks an entry through the settlement sub-workflow.
type PaymentStatus string

const (
	PaymentUnpaid                PaymentStatus = "unpaid"
	PaymentInstructionsGenerated PaymentStatus = "instructions_generated"
	PaymentAwaitingBankImport    PaymentStatus = "awaiting_bank_import"
	PaymentPaid                  PaymentStatus = "paid"
)

// Timesheet is the per-offer ledger of worked hours, 1:1 with an accepted
// offer and keyed by application for lookups.
type Timesheet struct {
	ID             string
	OfferID        string
	ApplicationID  string
	Status         Status
	TravellerNotes string
	EmployerNotes  string
	SubmittedAt    *time.Time
	ApprovedAt     *time.Time
	Entries        []Entry
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Entry is one dated row of hours. A locked entry is immutable to any edit or
// removal regardless of actor; hours are payable while locked and unpaid.
type Entry struct {
	ID            string
	TimesheetID   string
	EntryDate     time.Time
	HoursWorked   decimal.Decimal
	Notes         string
	IsLocked      bool
	IsPaid        bool
	PaymentStatus PaymentStatus
}

// Payable reports whether the entry is eligible for a payroll run.
func (e Entry) Payable() bool {
	return e.IsLocked && !e.IsPaid
}

// PayableEntries returns the locked, unpaid entries.
func (t Timesheet) PayableEntries() []Entry {
	var out []Entry
	for _, e := range t.Entries {
		if e.Payable() {
			out = append(out, e)
		}
	}
	return out
}

// UnlockedEntries returns the entries still editable by the traveller.
func (t Timesheet) UnlockedEntries() []Entry {
	var out []Entry
	for _, e := range t.Entries {
		if !e.IsLocked {
			out = append(out, e)
		}
	}
	return out
}

// HasLockedEntries reports whether any approval cycle has completed.
func (t Timesheet) HasLockedEntries() bool {
	for _, e := range t.Entries {
		if e.IsLocked {
			return true
		}
	}
	return false
}

// TotalHours sums hours across all entries.
func (t Timesheet) TotalHours() decimal.Decimal {
	total := decimal.Zero
	for _, e := range t.Entries {
		total = total.Add(e.HoursWorked)
	}
	return total
}
