package offer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ozziework/contracts-backend-go/internal/domain/application"
	"github.com/ozziework/contracts-backend-go/internal/domain/contract"
	"github.com/ozziework/contracts-backend-go/internal/domain/notification"
	"github.com/ozziework/contracts-backend-go/internal/domain/offer"
	"github.com/ozziework/contracts-backend-go/internal/domain/party"
	"github.com/ozziework/contracts-backend-go/internal/domain/timesheet"
	"github.com/ozziework/contracts-backend-go/internal/pkg/applock"
	"github.com/ozziework/contracts-backend-go/internal/pkg/validator"
)

type offerServiceImpl struct {
	locks         *applock.Registry
	txm           contract.TxManager
	appRepo       application.Repository
	partyRepo     party.Repository
	offerRepo     offer.Repository
	timesheetRepo timesheet.Repository
	notifier      notification.Service
}

func NewOfferService(
	locks *applock.Registry,
	txm contract.TxManager,
	appRepo application.Repository,
	partyRepo party.Repository,
	offerRepo offer.Repository,
	timesheetRepo timesheet.Repository,
	notifier notification.Service,
) offer.OfferService {
	return &offerServiceImpl{
		locks:         locks,
		txm:           txm,
		appRepo:       appRepo,
		partyRepo:     partyRepo,
		offerRepo:     offerRepo,
		timesheetRepo: timesheetRepo,
		notifier:      notifier,
	}
}

// CreateOrUpdate sends a new offer, or replaces the terms of the existing one
// while it is still pending.
func (s *offerServiceImpl) CreateOrUpdate(ctx context.Context, actor contract.Actor, applicationID string, req offer.TermsRequest) (offer.Response, error) {
	if err := req.Validate(); err != nil {
		return offer.Response{}, err
	}

	release, ok := s.locks.Acquire(applicationID)
	if !ok {
		return offer.Response{}, contract.ErrConcurrentModification
	}
	defer release()

	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return offer.Response{}, err
	}
	if !actor.IsEmployer() || actor.UserID != app.EmployerID {
		return offer.Response{}, contract.ErrForbidden
	}

	employer, err := s.partyRepo.GetByID(ctx, app.EmployerID)
	if err != nil {
		return offer.Response{}, err
	}
	if employer.IsSuspended {
		return offer.Response{}, contract.ErrEmployerSuspended
	}

	startDate, _ := validator.IsValidDate(req.StartDate)
	var endDate *time.Time
	if req.EndDate != nil {
		end, _ := validator.IsValidDate(*req.EndDate)
		endDate = &end
	}

	existing, err := s.offerRepo.GetByApplicationID(ctx, applicationID)
	switch {
	case err == nil:
		// Re-sending terms is a full replace, allowed only while pending.
		if existing.Status != offer.StatusPending {
			return offer.Response{}, offer.ErrOfferNotPending
		}
		existing.StartDate = startDate
		existing.EndDate = endDate
		existing.RateType = offer.RateType(req.RateType)
		existing.RateAmount = req.RateAmount
		existing.RateCurrency = req.RateCurrency
		existing.AccommodationDetails = req.AccommodationDetails
		existing.Notes = req.Notes

		updated, err := s.offerRepo.UpdateTerms(ctx, existing)
		if err != nil {
			return offer.Response{}, fmt.Errorf("failed to update offer terms: %w", err)
		}

		s.notifyTraveller(app, notification.TypeOfferUpdated, "Offer updated",
			fmt.Sprintf("%s updated the terms of their offer.", employer.DisplayName()), actor.UserID)
		return offer.ToResponse(updated), nil

	case errors.Is(err, offer.ErrOfferNotFound):
		active, err := s.offerRepo.JobHasActiveOffer(ctx, app.JobID, applicationID)
		if err != nil {
			return offer.Response{}, err
		}
		if active {
			return offer.Response{}, offer.ErrJobHasActiveOffer
		}

		created := offer.Offer{
			ID:                   uuid.New().String(),
			ApplicationID:        app.ID,
			JobID:                app.JobID,
			EmployerID:           app.EmployerID,
			TravellerID:          app.TravellerID,
			ContractType:         offer.ContractCasual,
			StartDate:            startDate,
			EndDate:              endDate,
			RateType:             offer.RateType(req.RateType),
			RateAmount:           req.RateAmount,
			RateCurrency:         req.RateCurrency,
			AccommodationDetails: req.AccommodationDetails,
			Notes:                req.Notes,
			Status:               offer.StatusPending,
		}

		err = s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
			created, err = s.offerRepo.Create(ctx, created)
			if err != nil {
				return fmt.Errorf("failed to create offer: %w", err)
			}
			return s.appRepo.UpdateStatus(ctx, app.ID, application.StatusOfferSent)
		})
		if err != nil {
			return offer.Response{}, err
		}

		s.notifyTraveller(app, notification.TypeOfferCreated, "You received an offer",
			fmt.Sprintf("%s sent you a contract offer.", employer.DisplayName()), actor.UserID)
		return offer.ToResponse(created), nil

	default:
		return offer.Response{}, err
	}
}

// Respond records the traveller's decision. Accepting creates the empty draft
// timesheet that hours will later be logged against.
func (s *offerServiceImpl) Respond(ctx context.Context, actor contract.Actor, applicationID string, req offer.RespondRequest) (offer.Response, error) {
	if err := req.Validate(); err != nil {
		return offer.Response{}, err
	}

	release, ok := s.locks.Acquire(applicationID)
	if !ok {
		return offer.Response{}, contract.ErrConcurrentModification
	}
	defer release()

	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return offer.Response{}, err
	}
	if !actor.IsTraveller() || actor.UserID != app.TravellerID {
		return offer.Response{}, contract.ErrForbidden
	}

	o, err := s.offerRepo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return offer.Response{}, err
	}
	if o.Status != offer.StatusPending {
		return offer.Response{}, offer.ErrOfferNotPending
	}

	decision := offer.Status(req.Decision)
	err = s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.offerRepo.UpdateStatus(ctx, o.ID, decision); err != nil {
			return err
		}
		if decision == offer.StatusAccepted {
			_, err := s.timesheetRepo.Create(ctx, timesheet.Timesheet{
				ID:            uuid.New().String(),
				OfferID:       o.ID,
				ApplicationID: app.ID,
				Status:        timesheet.StatusDraft,
			})
			if err != nil {
				return fmt.Errorf("failed to create timesheet: %w", err)
			}
			return s.appRepo.UpdateStatus(ctx, app.ID, application.StatusOfferAccepted)
		}
		return s.appRepo.UpdateStatus(ctx, app.ID, application.StatusOfferDeclined)
	})
	if err != nil {
		return offer.Response{}, err
	}
	o.Status = decision

	traveller, err := s.partyRepo.GetByID(ctx, app.TravellerID)
	if err != nil {
		return offer.Response{}, err
	}
	if decision == offer.StatusAccepted {
		s.notifyEmployer(app, notification.TypeOfferAccepted, "Offer accepted",
			fmt.Sprintf("%s accepted your offer.", traveller.DisplayName()), actor.UserID)
	} else {
		s.notifyEmployer(app, notification.TypeOfferDeclined, "Offer declined",
			fmt.Sprintf("%s declined your offer.", traveller.DisplayName()), actor.UserID)
	}

	return offer.ToResponse(o), nil
}

// Cancel withdraws a pending or accepted offer. Once any hours have been
// approved under the offer the contract is locked in and cannot be withdrawn.
func (s *offerServiceImpl) Cancel(ctx context.Context, actor contract.Actor, applicationID string) (offer.Response, error) {
	release, ok := s.locks.Acquire(applicationID)
	if !ok {
		return offer.Response{}, contract.ErrConcurrentModification
	}
	defer release()

	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return offer.Response{}, err
	}
	if !actor.IsEmployer() || actor.UserID != app.EmployerID {
		return offer.Response{}, contract.ErrForbidden
	}

	o, err := s.offerRepo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return offer.Response{}, err
	}
	if o.IsTerminal() {
		return offer.Response{}, offer.ErrOfferNotPending
	}

	if o.Status == offer.StatusAccepted {
		locked, err := s.timesheetRepo.HasLockedEntries(ctx, applicationID)
		if err != nil {
			return offer.Response{}, err
		}
		if locked {
			return offer.Response{}, offer.ErrOfferLocked
		}
	}

	err = s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.offerRepo.UpdateStatus(ctx, o.ID, offer.StatusCancelled); err != nil {
			return err
		}
		return s.appRepo.UpdateStatus(ctx, app.ID, application.StatusCancelled)
	})
	if err != nil {
		return offer.Response{}, err
	}
	o.Status = offer.StatusCancelled

	employer, err := s.partyRepo.GetByID(ctx, app.EmployerID)
	if err != nil {
		return offer.Response{}, err
	}
	s.notifyTraveller(app, notification.TypeOfferCancelled, "Offer cancelled",
		fmt.Sprintf("%s withdrew their offer.", employer.DisplayName()), actor.UserID)

	return offer.ToResponse(o), nil
}

func (s *offerServiceImpl) Get(ctx context.Context, actor contract.Actor, applicationID string) (offer.Response, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return offer.Response{}, err
	}
	if !app.IsParty(actor.UserID) {
		return offer.Response{}, contract.ErrForbidden
	}

	o, err := s.offerRepo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return offer.Response{}, err
	}
	return offer.ToResponse(o), nil
}

func (s *offerServiceImpl) notifyTraveller(app application.Application, eventType notification.EventType, title, message, senderID string) {
	s.notifier.Queue(notification.Event{
		ApplicationID: app.ID,
		RecipientID:   app.TravellerID,
		SenderID:      &senderID,
		Type:          eventType,
		Title:         title,
		Message:       message,
	})
}

func (s *offerServiceImpl) notifyEmployer(app application.Application, eventType notification.EventType, title, message, senderID string) {
	s.notifier.Queue(notification.Event{
		ApplicationID: app.ID,
		RecipientID:   app.EmployerID,
		SenderID:      &senderID,
		Type:          eventType,
		Title:         title,
		Message:       message,
	})
}
