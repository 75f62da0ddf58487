package application

import "time"

// Status mirrors the coarse recruiting funnel; offer transitions keep it in
// sync so list screens can show contract progress without joining offers.
type Status string

const (
	StatusSubmitted     Status = "submitted"
	StatusReview        Status = "review"
	StatusInterview     Status = "interview"
	StatusOfferSent     Status = "offer_sent"
	StatusOfferAccepted Status = "offer_accepted"
	StatusOfferDeclined Status = "offer_declined"
	StatusHired         Status = "hired"
	StatusRejected      Status = "rejected"
	StatusCancelled     Status = "cancelled"
)

// Application is the accepted entry point of the workflow: one traveller
// applying to one job owned by one employer.
type Application struct {
	ID          string
	JobID       string
	EmployerID  string
	TravellerID string
	Status      Status
	LastPaidAt  *time.Time
	SubmittedAt time.Time
	UpdatedAt   time.Time
}

// IsParty reports whether userID names the employer or the traveller.
func (a Application) IsParty(userID string) bool {
	return userID == a.EmployerID || userID == a.TravellerID
}
