// Package pdf renders the payslip document handed to the traveller.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/ozziework/contracts-backend-go/internal/domain/payslip"
)

// RenderPayslip renders the payroll breakdown to PDF bytes.
func RenderPayslip(p payslip.Payslip) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(40, 10, "Payslip")
	doc.Ln(12)

	doc.SetFont("Helvetica", "", 12)
	doc.Cell(0, 8, fmt.Sprintf("Employer: %s", p.EmployerName))
	doc.Ln(7)
	if p.EmployerABN != "" {
		doc.Cell(0, 8, fmt.Sprintf("ABN: %s", p.EmployerABN))
		doc.Ln(7)
	}
	doc.Cell(0, 8, fmt.Sprintf("Worker: %s", p.TravellerName))
	doc.Ln(7)
	if p.TravellerTFN != "" {
		doc.Cell(0, 8, fmt.Sprintf("TFN: %s", p.TravellerTFN))
		doc.Ln(7)
	}
	doc.Cell(0, 8, fmt.Sprintf("Period: %s to %s",
		p.PayPeriodStart.Format("2006-01-02"), p.PayPeriodEnd.Format("2006-01-02")))
	doc.Ln(10)

	cur := p.RateCurrency
	doc.Cell(0, 8, fmt.Sprintf("Hours: %s at %s %s", p.HourCount.String(), p.RateAmount.StringFixed(2), cur))
	doc.Ln(7)
	doc.Cell(0, 8, fmt.Sprintf("Gross: %s %s", p.GrossAmount.StringFixed(2), cur))
	doc.Ln(7)
	doc.Cell(0, 8, fmt.Sprintf("Commission: %s %s", p.CommissionAmount.StringFixed(2), cur))
	doc.Ln(7)
	doc.Cell(0, 8, fmt.Sprintf("Superannuation: %s %s", p.SuperAmount.StringFixed(2), cur))
	doc.Ln(7)
	doc.Cell(0, 8, fmt.Sprintf("Tax withheld: %s %s", p.TaxWithheld.StringFixed(2), cur))
	doc.Ln(7)
	doc.SetFont("Helvetica", "B", 12)
	doc.Cell(0, 8, fmt.Sprintf("Net payment: %s %s", p.NetPayment.StringFixed(2), cur))

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render payslip pdf: %w", err)
	}
	return buf.Bytes(), nil
}
