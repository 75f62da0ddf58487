package payslip

import (
	"time"

	"github.com/shopspring/decimal"
)

type Response struct {
	ID               string          `json:"id"`
	ApplicationID    string          `json:"application_id"`
	HourCount        decimal.Decimal `json:"hour_count"`
	RateAmount       decimal.Decimal `json:"rate_amount"`
	RateCurrency     string          `json:"rate_currency"`
	GrossAmount      decimal.Decimal `json:"gross_amount"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	NetBeforeTax     decimal.Decimal `json:"net_before_tax"`
	TaxWithheld      decimal.Decimal `json:"tax_withheld"`
	SuperAmount      decimal.Decimal `json:"super_amount"`
	NetPayment       decimal.Decimal `json:"net_payment"`

	PayPeriodStart string `json:"pay_period_start"`
	PayPeriodEnd   string `json:"pay_period_end"`
	PaymentMethod  string `json:"payment_method"`

	EmployerName     string `json:"employer_name"`
	EmployerAddress  string `json:"employer_address"`
	EmployerABN      string `json:"employer_abn"`
	TravellerName    string `json:"traveller_name"`
	TravellerAddress string `json:"traveller_address"`
	TravellerTFN     string `json:"traveller_tfn"`

	Status             string     `json:"status"`
	InstructionsStatus string     `json:"instructions_status"`
	PDFURL             string     `json:"pdf_url,omitempty"`
	ABAGeneratedAt     *time.Time `json:"aba_generated_at,omitempty"`
	Metadata           Metadata   `json:"metadata"`
	CreatedAt          time.Time  `json:"created_at"`
}

// ABADownloadResponse returns the artifact link plus the sub-state after the
// download was recorded.
type ABADownloadResponse struct {
	URL                string `json:"url"`
	InstructionsStatus string `json:"instructions_status"`
}

func ToResponse(p Payslip, pdfURL string) Response {
	return Response{
		ID:                 p.ID,
		ApplicationID:      p.ApplicationID,
		HourCount:          p.HourCount,
		RateAmount:         p.RateAmount,
		RateCurrency:       p.RateCurrency,
		GrossAmount:        p.GrossAmount,
		CommissionAmount:   p.CommissionAmount,
		NetBeforeTax:       p.NetBeforeTax,
		TaxWithheld:        p.TaxWithheld,
		SuperAmount:        p.SuperAmount,
		NetPayment:         p.NetPayment,
		PayPeriodStart:     p.PayPeriodStart.Format("2006-01-02"),
		PayPeriodEnd:       p.PayPeriodEnd.Format("2006-01-02"),
		PaymentMethod:      p.PaymentMethod,
		EmployerName:       p.EmployerName,
		EmployerAddress:    p.EmployerAddress,
		EmployerABN:        p.EmployerABN,
		TravellerName:      p.TravellerName,
		TravellerAddress:   p.TravellerAddress,
		TravellerTFN:       p.TravellerTFN,
		Status:             string(p.Status),
		InstructionsStatus: string(p.InstructionsStatus),
		PDFURL:             pdfURL,
		ABAGeneratedAt:     p.ABAGeneratedAt,
		Metadata:           p.Metadata,
		CreatedAt:          p.CreatedAt,
	}
}
