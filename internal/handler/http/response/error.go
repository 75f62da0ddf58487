package response

import (
	"errors"
	"net/http"

	"github.com/ozziework/contracts-backend-go/internal/domain/contract"
	"github.com/ozziework/contracts-backend-go/internal/domain/offer"
	"github.com/ozziework/contracts-backend-go/internal/domain/party"
	"github.com/ozziework/contracts-backend-go/internal/domain/payslip"
	"github.com/ozziework/contracts-backend-go/internal/domain/timesheet"
	"github.com/ozziework/contracts-backend-go/internal/pkg/validator"
	"github.com/ozziework/contracts-backend-go/internal/service/payroll"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Cross-cutting workflow errors
	case errors.Is(err, contract.ErrForbidden):
		Forbidden(w, "You are not a party to this application")
	case errors.Is(err, contract.ErrApplicationNotFound):
		NotFound(w, "Application not found")
	case errors.Is(err, contract.ErrConcurrentModification):
		ConcurrentModification(w, "Another operation is in progress for this application, please retry")
	case errors.Is(err, contract.ErrEmployerSuspended):
		Forbidden(w, "Your account is suspended due to overdue payment instructions")

	// Offer domain errors
	case errors.Is(err, offer.ErrOfferNotFound):
		NotFound(w, "No offer exists for this application")
	case errors.Is(err, offer.ErrOfferNotPending):
		Conflict(w, "Offer is no longer pending")
	case errors.Is(err, offer.ErrOfferNotAccepted):
		NotFound(w, "No accepted offer exists for this application")
	case errors.Is(err, offer.ErrOfferLocked):
		Conflict(w, "Offer has approved hours and cannot be cancelled")
	case errors.Is(err, offer.ErrInvalidDecision):
		ValidationError(w, map[string]string{"decision": "must be 'accepted' or 'declined'"})
	case errors.Is(err, offer.ErrJobHasActiveOffer):
		Conflict(w, "Another active offer already exists for this job")

	// Timesheet domain errors
	case errors.Is(err, timesheet.ErrTimesheetNotFound):
		NotFound(w, "No timesheet exists for this application")
	case errors.Is(err, timesheet.ErrNoPendingEntries):
		BadRequest(w, "Timesheet has no unlocked entries with hours", nil)
	case errors.Is(err, timesheet.ErrNotSubmitted):
		Conflict(w, "Only submitted timesheets can be approved")
	case errors.Is(err, timesheet.ErrAlreadyApproved):
		Conflict(w, "Timesheet is already approved")
	case errors.Is(err, timesheet.ErrEntryDateConflict):
		ValidationError(w, map[string]string{"entries": "duplicate entry date"})

	// Party domain errors
	case errors.Is(err, party.ErrPartyNotFound):
		NotFound(w, "Party not found")
	case errors.Is(err, party.ErrMissingBankDetails):
		BadRequest(w, "Bank details are missing or invalid", nil)

	// Payslip domain errors
	case errors.Is(err, payslip.ErrPayslipNotFound):
		NotFound(w, "No payslip exists for this application")
	case errors.Is(err, payslip.ErrTimesheetNotApproved):
		Conflict(w, "Only approved timesheets can be paid")
	case errors.Is(err, payslip.ErrNothingToPay):
		BadRequest(w, "No approved unpaid hours available", nil)
	case errors.Is(err, payslip.ErrInstructionsNotOpen):
		Conflict(w, "No payment instructions awaiting confirmation")
	case errors.Is(err, payslip.ErrNoABAArtifact):
		BadRequest(w, "No bank instruction file has been generated", nil)
	case errors.Is(err, payslip.ErrArtifactGeneration):
		ArtifactGenerationFailed(w, "Failed to generate payslip artifacts")

	// Payroll engine input errors
	case errors.Is(err, payroll.ErrNegativeHours):
		ValidationError(w, map[string]string{"hours": "must be non-negative"})
	case errors.Is(err, payroll.ErrNegativeRate):
		ValidationError(w, map[string]string{"rate_amount": "must be non-negative"})

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
