package offer

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status enum. pending is the only non-terminal state; employers may still
// edit terms while pending.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusCancelled Status = "cancelled"
)

// RateType enum
type RateType string

const (
	RateHourly RateType = "hourly"
	RateDaily  RateType = "daily"
)

// ContractType enum. The marketplace only places casual contracts today.
type ContractType string

const ContractCasual ContractType = "casual"

// Offer holds the proposed or agreed contract terms for one application.
// At most one offer exists per application; re-sending replaces the terms.
type Offer struct {
	ID                   string
	ApplicationID        string
	JobID                string
	EmployerID           string
	TravellerID          string
	ContractType         ContractType
	StartDate            time.Time
	EndDate              *time.Time
	RateType             RateType
	RateAmount           decimal.Decimal
	RateCurrency         string
	AccommodationDetails string
	Notes                string
	Status               Status
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsTerminal reports whether no further status transition is allowed.
func (o Offer) IsTerminal() bool {
	return o.Status == StatusDeclined || o.Status == StatusCancelled
}
