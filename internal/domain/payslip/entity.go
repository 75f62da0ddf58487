package payslip

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status enum. overdue is set by the monitoring job when generated
// instructions sit unconfirmed past the grace period.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusOverdue    Status = "overdue"
)

// InstructionsStatus is the manual settlement sub-workflow. It only moves
// forward: pending → instructions_generated → awaiting_bank_import → completed.
type InstructionsStatus string

const (
	InstructionsPending            InstructionsStatus = "pending"
	InstructionsGenerated          InstructionsStatus = "instructions_generated"
	InstructionsAwaitingBankImport InstructionsStatus = "awaiting_bank_import"
	InstructionsCompleted          InstructionsStatus = "completed"
)

// rank orders the instruction states for the monotonicity check.
func (s InstructionsStatus) rank() int {
	switch s {
	case InstructionsPending:
		return 0
	case InstructionsGenerated:
		return 1
	case InstructionsAwaitingBankImport:
		return 2
	case InstructionsCompleted:
		return 3
	}
	return -1
}

// CanAdvanceTo reports whether moving to next keeps the sub-state monotonic.
func (s InstructionsStatus) CanAdvanceTo(next InstructionsStatus) bool {
	return next.rank() > s.rank()
}

// Payslip records one payroll run. The monetary breakdown and the party
// snapshots are immutable once the run completes; only the settlement
// sub-state keeps moving.
type Payslip struct {
	ID            string
	TimesheetID   string
	OfferID       string
	ApplicationID string
	EmployerID    string
	TravellerID   string

	HourCount        decimal.Decimal
	RateAmount       decimal.Decimal
	RateCurrency     string
	GrossAmount      decimal.Decimal
	CommissionAmount decimal.Decimal
	NetBeforeTax     decimal.Decimal
	TaxWithheld      decimal.Decimal
	SuperAmount      decimal.Decimal
	NetPayment       decimal.Decimal

	PayPeriodStart time.Time
	PayPeriodEnd   time.Time
	PaymentMethod  string

	// Snapshots captured at creation time for audit durability; never
	// re-read from the live party records.
	EmployerName     string
	EmployerAddress  string
	EmployerABN      string
	TravellerName    string
	TravellerAddress string
	TravellerTFN     string

	Status             Status
	InstructionsStatus InstructionsStatus
	PDFPath            string
	ABAPath            string
	ABAGeneratedAt     *time.Time
	Metadata           Metadata

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Metadata preserves the inputs of the run alongside the result.
type Metadata struct {
	Entries        []MetadataEntry `json:"entries"`
	CommissionRate string          `json:"commission_rate"`
	SuperRate      string          `json:"super_rate"`
	TaxRate        string          `json:"tax_rate"`
	ABARecords     []ABARecord     `json:"aba_records,omitempty"`
}

type MetadataEntry struct {
	EntryDate   string `json:"entry_date"`
	HoursWorked string `json:"hours_worked"`
}

// ABARecord mirrors one detail line of the generated bank file.
type ABARecord struct {
	AccountName   string `json:"account_name"`
	BSB           string `json:"bsb"`
	AccountNumber string `json:"account_number"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
}
