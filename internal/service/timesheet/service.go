package timesheet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ozziework/contracts-backend-go/internal/domain/application"
	"github.com/ozziework/contracts-backend-go/internal/domain/contract"
	"github.com/ozziework/contracts-backend-go/internal/domain/notification"
	"github.com/ozziework/contracts-backend-go/internal/domain/offer"
	"github.com/ozziework/contracts-backend-go/internal/domain/timesheet"
	"github.com/ozziework/contracts-backend-go/internal/pkg/applock"
	"github.com/ozziework/contracts-backend-go/internal/pkg/validator"
)

type timesheetServiceImpl struct {
	locks         *applock.Registry
	txm           contract.TxManager
	appRepo       application.Repository
	offerRepo     offer.Repository
	timesheetRepo timesheet.Repository
	notifier      notification.Service
}

func NewTimesheetService(
	locks *applock.Registry,
	txm contract.TxManager,
	appRepo application.Repository,
	offerRepo offer.Repository,
	timesheetRepo timesheet.Repository,
	notifier notification.Service,
) timesheet.TimesheetService {
	return &timesheetServiceImpl{
		locks:         locks,
		txm:           txm,
		appRepo:       appRepo,
		offerRepo:     offerRepo,
		timesheetRepo: timesheetRepo,
		notifier:      notifier,
	}
}

// UpsertEntries replaces the unlocked tail of the timesheet with the request
// payload. Rows colliding with a locked date are dropped without error, and
// unlocked rows absent from the payload are deleted. Editing a submitted
// timesheet quietly reverts it to draft; an approved one keeps its status.
func (s *timesheetServiceImpl) UpsertEntries(ctx context.Context, actor contract.Actor, applicationID string, req timesheet.UpsertRequest) (timesheet.Response, error) {
	if err := req.Validate(); err != nil {
		return timesheet.Response{}, err
	}

	release, ok := s.locks.Acquire(applicationID)
	if !ok {
		return timesheet.Response{}, contract.ErrConcurrentModification
	}
	defer release()

	app, ts, err := s.loadForTraveller(ctx, actor, applicationID)
	if err != nil {
		return timesheet.Response{}, err
	}

	lockedDates := make(map[string]bool)
	existingUnlocked := make(map[string]timesheet.Entry)
	for _, e := range ts.Entries {
		key := e.EntryDate.Format("2006-01-02")
		if e.IsLocked {
			lockedDates[key] = true
		} else {
			existingUnlocked[key] = e
		}
	}

	entries := make([]timesheet.Entry, 0, len(req.Entries))
	for _, in := range req.Entries {
		if lockedDates[in.EntryDate] {
			continue
		}
		date, _ := validator.IsValidDate(in.EntryDate)
		entry := timesheet.Entry{
			ID:            uuid.New().String(),
			TimesheetID:   ts.ID,
			EntryDate:     date,
			HoursWorked:   in.HoursWorked,
			Notes:         in.Notes,
			PaymentStatus: timesheet.PaymentUnpaid,
		}
		if prev, ok := existingUnlocked[in.EntryDate]; ok {
			entry.ID = prev.ID
		}
		entries = append(entries, entry)
	}

	if req.TravellerNotes != nil {
		ts.TravellerNotes = *req.TravellerNotes
	}
	if ts.Status == timesheet.StatusSubmitted {
		ts.Status = timesheet.StatusDraft
		ts.SubmittedAt = nil
	}

	err = s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.timesheetRepo.ReplaceUnlockedEntries(ctx, ts.ID, entries); err != nil {
			return fmt.Errorf("failed to replace timesheet entries: %w", err)
		}
		return s.timesheetRepo.UpdateHeader(ctx, ts)
	})
	if err != nil {
		return timesheet.Response{}, err
	}

	s.notify(app, app.EmployerID, actor.UserID, notification.TypeTimesheetUpdated,
		"Timesheet updated", "The traveller updated their timesheet.")

	return s.fresh(ctx, applicationID)
}

// Submit moves the unlocked tail toward approval. Requires at least one
// unlocked entry with hours; re-submitting after an approval cycle is allowed
// so new hours can accrue under the same contract.
func (s *timesheetServiceImpl) Submit(ctx context.Context, actor contract.Actor, applicationID string) (timesheet.Response, error) {
	release, ok := s.locks.Acquire(applicationID)
	if !ok {
		return timesheet.Response{}, contract.ErrConcurrentModification
	}
	defer release()

	app, ts, err := s.loadForTraveller(ctx, actor, applicationID)
	if err != nil {
		return timesheet.Response{}, err
	}

	eligible := false
	for _, e := range ts.UnlockedEntries() {
		if e.HoursWorked.IsPositive() {
			eligible = true
			break
		}
	}
	if !eligible {
		return timesheet.Response{}, timesheet.ErrNoPendingEntries
	}

	now := time.Now()
	ts.Status = timesheet.StatusSubmitted
	ts.SubmittedAt = &now
	if err := s.timesheetRepo.UpdateHeader(ctx, ts); err != nil {
		return timesheet.Response{}, err
	}

	s.notify(app, app.EmployerID, actor.UserID, notification.TypeTimesheetSubmitted,
		"Timesheet submitted", "A timesheet is awaiting your approval.")

	return s.fresh(ctx, applicationID)
}

// Approve locks every entry currently on the timesheet and stamps the
// approval. Only a submitted timesheet can be approved, which also makes a
// double approve fail.
func (s *timesheetServiceImpl) Approve(ctx context.Context, actor contract.Actor, applicationID string, req timesheet.ApproveRequest) (timesheet.Response, error) {
	release, ok := s.locks.Acquire(applicationID)
	if !ok {
		return timesheet.Response{}, contract.ErrConcurrentModification
	}
	defer release()

	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return timesheet.Response{}, err
	}
	if !actor.IsEmployer() || actor.UserID != app.EmployerID {
		return timesheet.Response{}, contract.ErrForbidden
	}
	if err := s.requireAcceptedOffer(ctx, applicationID); err != nil {
		return timesheet.Response{}, err
	}

	ts, err := s.timesheetRepo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return timesheet.Response{}, err
	}
	if ts.Status != timesheet.StatusSubmitted {
		return timesheet.Response{}, timesheet.ErrNotSubmitted
	}

	now := time.Now()
	ts.Status = timesheet.StatusApproved
	ts.ApprovedAt = &now
	if req.EmployerNotes != nil {
		ts.EmployerNotes = *req.EmployerNotes
	}

	err = s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.timesheetRepo.LockEntries(ctx, ts.ID); err != nil {
			return fmt.Errorf("failed to lock timesheet entries: %w", err)
		}
		return s.timesheetRepo.UpdateHeader(ctx, ts)
	})
	if err != nil {
		return timesheet.Response{}, err
	}

	s.notify(app, app.TravellerID, actor.UserID, notification.TypeTimesheetApproved,
		"Timesheet approved", "Your submitted hours were approved.")

	return s.fresh(ctx, applicationID)
}

func (s *timesheetServiceImpl) Get(ctx context.Context, actor contract.Actor, applicationID string) (timesheet.Response, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return timesheet.Response{}, err
	}
	if !app.IsParty(actor.UserID) {
		return timesheet.Response{}, contract.ErrForbidden
	}

	ts, err := s.timesheetRepo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return timesheet.Response{}, err
	}
	return timesheet.ToResponse(ts), nil
}

// loadForTraveller loads the application and timesheet for a traveller-side
// mutation, verifying the actor and that an accepted offer backs the sheet.
func (s *timesheetServiceImpl) loadForTraveller(ctx context.Context, actor contract.Actor, applicationID string) (application.Application, timesheet.Timesheet, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return application.Application{}, timesheet.Timesheet{}, err
	}
	if !actor.IsTraveller() || actor.UserID != app.TravellerID {
		return application.Application{}, timesheet.Timesheet{}, contract.ErrForbidden
	}
	if err := s.requireAcceptedOffer(ctx, applicationID); err != nil {
		return application.Application{}, timesheet.Timesheet{}, err
	}

	ts, err := s.timesheetRepo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return application.Application{}, timesheet.Timesheet{}, err
	}
	return app, ts, nil
}

func (s *timesheetServiceImpl) requireAcceptedOffer(ctx context.Context, applicationID string) error {
	o, err := s.offerRepo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return err
	}
	if o.Status != offer.StatusAccepted {
		return offer.ErrOfferNotAccepted
	}
	return nil
}

func (s *timesheetServiceImpl) fresh(ctx context.Context, applicationID string) (timesheet.Response, error) {
	ts, err := s.timesheetRepo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return timesheet.Response{}, err
	}
	return timesheet.ToResponse(ts), nil
}

func (s *timesheetServiceImpl) notify(app application.Application, recipientID, senderID string, eventType notification.EventType, title, message string) {
	s.notifier.Queue(notification.Event{
		ApplicationID: app.ID,
		RecipientID:   recipientID,
		SenderID:      &senderID,
		Type:          eventType,
		Title:         title,
		Message:       message,
	})
}
