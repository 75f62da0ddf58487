package offer

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ozziework/contracts-backend-go/internal/pkg/validator"
)

// TermsRequest carries the employer-editable contract terms. Sending terms a
// second time while the offer is pending is a full replace.
type TermsRequest struct {
	StartDate            string          `json:"start_date"`
	EndDate              *string         `json:"end_date,omitempty"`
	RateType             string          `json:"rate_type"`
	RateAmount           decimal.Decimal `json:"rate_amount"`
	RateCurrency         string          `json:"rate_currency"`
	AccommodationDetails string          `json:"accommodation_details"`
	Notes                string          `json:"notes"`
}

func (r *TermsRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.StartDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be a valid date (YYYY-MM-DD)"})
	}
	if r.EndDate != nil {
		if _, ok := validator.IsValidDate(*r.EndDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be a valid date (YYYY-MM-DD)"})
		}
	}
	if r.RateType != string(RateHourly) && r.RateType != string(RateDaily) {
		errs = append(errs, validator.ValidationError{Field: "rate_type", Message: "must be 'hourly' or 'daily'"})
	}
	if !r.RateAmount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "rate_amount", Message: "must be positive"})
	}
	if validator.IsEmpty(r.RateCurrency) {
		errs = append(errs, validator.ValidationError{Field: "rate_currency", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RespondRequest is the traveller's answer to a pending offer.
type RespondRequest struct {
	Decision string `json:"decision"`
}

func (r *RespondRequest) Validate() error {
	if r.Decision != string(StatusAccepted) && r.Decision != string(StatusDeclined) {
		return validator.ValidationErrors{{Field: "decision", Message: "must be 'accepted' or 'declined'"}}
	}
	return nil
}

type Response struct {
	ID                   string          `json:"id"`
	ApplicationID        string          `json:"application_id"`
	JobID                string          `json:"job_id"`
	ContractType         string          `json:"contract_type"`
	StartDate            string          `json:"start_date"`
	EndDate              *string         `json:"end_date,omitempty"`
	RateType             string          `json:"rate_type"`
	RateAmount           decimal.Decimal `json:"rate_amount"`
	RateCurrency         string          `json:"rate_currency"`
	AccommodationDetails string          `json:"accommodation_details"`
	Notes                string          `json:"notes"`
	Status               string          `json:"status"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func ToResponse(o Offer) Response {
	resp := Response{
		ID:                   o.ID,
		ApplicationID:        o.ApplicationID,
		JobID:                o.JobID,
		ContractType:         string(o.ContractType),
		StartDate:            o.StartDate.Format("2006-01-02"),
		RateType:             string(o.RateType),
		RateAmount:           o.RateAmount,
		RateCurrency:         o.RateCurrency,
		AccommodationDetails: o.AccommodationDetails,
		Notes:                o.Notes,
		Status:               string(o.Status),
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
	if o.EndDate != nil {
		end := o.EndDate.Format("2006-01-02")
		resp.EndDate = &end
	}
	return resp
}
