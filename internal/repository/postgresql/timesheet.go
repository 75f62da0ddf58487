package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ozziework/contracts-backend-go/internal/domain/timesheet"
	"github.com/ozziework/contracts-backend-go/internal/pkg/database"
)

type timesheetRepository struct {
	db *database.DB
}

func NewTimesheetRepository(db *database.DB) timesheet.Repository {
	return &timesheetRepository{db: db}
}

func (r *timesheetRepository) GetByApplicationID(ctx context.Context, applicationID string) (timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, offer_id, application_id, status, traveller_notes, employer_notes,
			   submitted_at, approved_at, created_at, updated_at
		FROM timesheets
		WHERE application_id = $1
	`

	var t timesheet.Timesheet
	err := q.QueryRow(ctx, query, applicationID).Scan(
		&t.ID, &t.OfferID, &t.ApplicationID, &t.Status, &t.TravellerNotes, &t.EmployerNotes,
		&t.SubmittedAt, &t.ApprovedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
		}
		return timesheet.Timesheet{}, fmt.Errorf("failed to get timesheet: %w", err)
	}

	entries, err := r.listEntries(ctx, t.ID)
	if err != nil {
		return timesheet.Timesheet{}, err
	}
	t.Entries = entries

	return t, nil
}

func (r *timesheetRepository) listEntries(ctx context.Context, timesheetID string) ([]timesheet.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, timesheet_id, entry_date, hours_worked, notes, is_locked, is_paid, payment_status
		FROM timesheet_entries
		WHERE timesheet_id = $1
		ORDER BY entry_date
	`

	rows, err := q.Query(ctx, query, timesheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheet entries: %w", err)
	}
	defer rows.Close()

	var entries []timesheet.Entry
	for rows.Next() {
		var e timesheet.Entry
		if err := rows.Scan(
			&e.ID, &e.TimesheetID, &e.EntryDate, &e.HoursWorked, &e.Notes,
			&e.IsLocked, &e.IsPaid, &e.PaymentStatus,
		); err != nil {
			return nil, fmt.Errorf("failed to scan timesheet entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (r *timesheetRepository) Create(ctx context.Context, t timesheet.Timesheet) (timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO timesheets (id, offer_id, application_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query, t.ID, t.OfferID, t.ApplicationID, string(t.Status)).
		Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return timesheet.Timesheet{}, fmt.Errorf("failed to create timesheet: %w", err)
	}

	return t, nil
}

// ReplaceUnlockedEntries deletes unlocked entries whose date is absent from
// entries, then upserts the rest by (timesheet_id, entry_date). Locked rows
// are never touched: the upsert's WHERE clause skips them even on a date
// collision.
func (r *timesheetRepository) ReplaceUnlockedEntries(ctx context.Context, timesheetID string, entries []timesheet.Entry) error {
	q := GetQuerier(ctx, r.db)

	keepDates := make([]string, len(entries))
	for i, e := range entries {
		keepDates[i] = e.EntryDate.Format("2006-01-02")
	}

	deleteQuery := `
		DELETE FROM timesheet_entries
		WHERE timesheet_id = $1
		  AND is_locked = FALSE
		  AND entry_date <> ALL($2::date[])
	`
	if _, err := q.Exec(ctx, deleteQuery, timesheetID, keepDates); err != nil {
		return fmt.Errorf("failed to delete removed entries: %w", err)
	}

	upsertQuery := `
		INSERT INTO timesheet_entries (id, timesheet_id, entry_date, hours_worked, notes, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (timesheet_id, entry_date) DO UPDATE SET
			hours_worked = EXCLUDED.hours_worked,
			notes = EXCLUDED.notes
		WHERE timesheet_entries.is_locked = FALSE
	`
	for _, e := range entries {
		_, err := q.Exec(ctx, upsertQuery,
			e.ID, timesheetID, e.EntryDate, e.HoursWorked, e.Notes, string(e.PaymentStatus))
		if err != nil {
			return fmt.Errorf("failed to upsert entry %s: %w", e.EntryDate.Format("2006-01-02"), err)
		}
	}

	return nil
}

func (r *timesheetRepository) UpdateHeader(ctx context.Context, t timesheet.Timesheet) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE timesheets SET
			status = $2, traveller_notes = $3, employer_notes = $4,
			submitted_at = $5, approved_at = $6, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		t.ID, string(t.Status), t.TravellerNotes, t.EmployerNotes, t.SubmittedAt, t.ApprovedAt)
	if err != nil {
		return fmt.Errorf("failed to update timesheet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return timesheet.ErrTimesheetNotFound
	}

	return nil
}

func (r *timesheetRepository) LockEntries(ctx context.Context, timesheetID string) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE timesheet_entries SET is_locked = TRUE WHERE timesheet_id = $1`

	if _, err := q.Exec(ctx, query, timesheetID); err != nil {
		return fmt.Errorf("failed to lock timesheet entries: %w", err)
	}

	return nil
}

// SelectPayableForUpdate loads the locked, unpaid entries with row locks held
// until the surrounding transaction ends, so two concurrent payroll runs
// cannot both read the same entries as unpaid.
func (r *timesheetRepository) SelectPayableForUpdate(ctx context.Context, timesheetID string) ([]timesheet.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, timesheet_id, entry_date, hours_worked, notes, is_locked, is_paid, payment_status
		FROM timesheet_entries
		WHERE timesheet_id = $1 AND is_locked = TRUE AND is_paid = FALSE
		ORDER BY entry_date
		FOR UPDATE
	`

	rows, err := q.Query(ctx, query, timesheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to select payable entries: %w", err)
	}
	defer rows.Close()

	var entries []timesheet.Entry
	for rows.Next() {
		var e timesheet.Entry
		if err := rows.Scan(
			&e.ID, &e.TimesheetID, &e.EntryDate, &e.HoursWorked, &e.Notes,
			&e.IsLocked, &e.IsPaid, &e.PaymentStatus,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payable entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (r *timesheetRepository) MarkEntriesPaid(ctx context.Context, entryIDs []string, status timesheet.PaymentStatus) error {
	if len(entryIDs) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE timesheet_entries
		SET is_paid = TRUE, payment_status = $2
		WHERE id = ANY($1) AND is_paid = FALSE
	`

	if _, err := q.Exec(ctx, query, entryIDs, string(status)); err != nil {
		return fmt.Errorf("failed to mark entries paid: %w", err)
	}

	return nil
}

func (r *timesheetRepository) UpdateEntryPaymentStatus(ctx context.Context, timesheetID string, from []timesheet.PaymentStatus, to timesheet.PaymentStatus) error {
	q := GetQuerier(ctx, r.db)

	fromValues := make([]string, len(from))
	for i, s := range from {
		fromValues[i] = string(s)
	}

	query := `
		UPDATE timesheet_entries
		SET payment_status = $3
		WHERE timesheet_id = $1 AND payment_status = ANY($2)
	`

	if _, err := q.Exec(ctx, query, timesheetID, fromValues, string(to)); err != nil {
		return fmt.Errorf("failed to update entry payment status: %w", err)
	}

	return nil
}

func (r *timesheetRepository) HasLockedEntries(ctx context.Context, applicationID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM timesheet_entries e
			JOIN timesheets t ON t.id = e.timesheet_id
			WHERE t.application_id = $1 AND e.is_locked = TRUE
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, applicationID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check locked entries: %w", err)
	}

	return exists, nil
}
