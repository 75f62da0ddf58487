package notification

import "time"

// EventType represents the type of workflow notification
type EventType string

const (
	TypeOfferCreated        EventType = "offer_created"
	TypeOfferUpdated        EventType = "offer_updated"
	TypeOfferAccepted       EventType = "offer_accepted"
	TypeOfferDeclined       EventType = "offer_declined"
	TypeOfferCancelled      EventType = "offer_cancelled"
	TypeTimesheetUpdated    EventType = "timesheet_updated"
	TypeTimesheetSubmitted  EventType = "timesheet_submitted"
	TypeTimesheetApproved   EventType = "timesheet_approved"
	TypePayslipReady        EventType = "payslip_ready"
	TypeSettlementConfirmed EventType = "settlement_confirmed"
)

// AllEventTypes returns all available event types
func AllEventTypes() []EventType {
	return []EventType{
		TypeOfferCreated,
		TypeOfferUpdated,
		TypeOfferAccepted,
		TypeOfferDeclined,
		TypeOfferCancelled,
		TypeTimesheetUpdated,
		TypeTimesheetSubmitted,
		TypeTimesheetApproved,
		TypePayslipReady,
		TypeSettlementConfirmed,
	}
}

// Notification represents one rendered workflow event for a recipient. The
// messaging front end renders these as conversation cards.
type Notification struct {
	ID            string
	ApplicationID string
	RecipientID   string
	SenderID      *string
	Type          EventType
	Title         string
	Message       string
	Data          map[string]interface{}
	IsRead        bool
	ReadAt        *time.Time
	CreatedAt     time.Time
}
