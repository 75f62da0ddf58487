package timesheet

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ozziework/contracts-backend-go/internal/pkg/validator"
)

type EntryRequest struct {
	EntryDate   string          `json:"entry_date"`
	HoursWorked decimal.Decimal `json:"hours_worked"`
	Notes       string          `json:"notes"`
}

// UpsertRequest replaces the unlocked tail of the timesheet. Rows whose date
// collides with a locked entry are dropped, not applied.
type UpsertRequest struct {
	Entries        []EntryRequest `json:"entries"`
	TravellerNotes *string        `json:"traveller_notes,omitempty"`
}

func (r *UpsertRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Entries == nil {
		errs = append(errs, validator.ValidationError{Field: "entries", Message: "is required"})
	}
	seen := make(map[string]bool, len(r.Entries))
	for _, e := range r.Entries {
		if _, ok := validator.IsValidDate(e.EntryDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "entries." + e.EntryDate, Message: "entry_date must be a valid date (YYYY-MM-DD)"})
			continue
		}
		if seen[e.EntryDate] {
			errs = append(errs, validator.ValidationError{Field: "entries." + e.EntryDate, Message: "duplicate entry date"})
		}
		seen[e.EntryDate] = true
		if e.HoursWorked.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: "entries." + e.EntryDate, Message: "hours_worked must be non-negative"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ApproveRequest struct {
	EmployerNotes *string `json:"employer_notes,omitempty"`
}

type EntryResponse struct {
	ID            string          `json:"id"`
	EntryDate     string          `json:"entry_date"`
	HoursWorked   decimal.Decimal `json:"hours_worked"`
	Notes         string          `json:"notes"`
	IsLocked      bool            `json:"is_locked"`
	IsPaid        bool            `json:"is_paid"`
	PaymentStatus string          `json:"payment_status"`
}

type Response struct {
	ID             string          `json:"id"`
	ApplicationID  string          `json:"application_id"`
	Status         string          `json:"status"`
	TravellerNotes string          `json:"traveller_notes"`
	EmployerNotes  string          `json:"employer_notes"`
	SubmittedAt    *time.Time      `json:"submitted_at,omitempty"`
	ApprovedAt     *time.Time      `json:"approved_at,omitempty"`
	TotalHours     decimal.Decimal `json:"total_hours"`
	Entries        []EntryResponse `json:"entries"`
}

func ToResponse(t Timesheet) Response {
	entries := make([]EntryResponse, len(t.Entries))
	for i, e := range t.Entries {
		entries[i] = EntryResponse{
			ID:            e.ID,
			EntryDate:     e.EntryDate.Format("2006-01-02"),
			HoursWorked:   e.HoursWorked,
			Notes:         e.Notes,
			IsLocked:      e.IsLocked,
			IsPaid:        e.IsPaid,
			PaymentStatus: string(e.PaymentStatus),
		}
	}
	return Response{
		ID:             t.ID,
		ApplicationID:  t.ApplicationID,
		Status:         string(t.Status),
		TravellerNotes: t.TravellerNotes,
		EmployerNotes:  t.EmployerNotes,
		SubmittedAt:    t.SubmittedAt,
		ApprovedAt:     t.ApprovedAt,
		TotalHours:     t.TotalHours(),
		Entries:        entries,
	}
}
