// Package payroll computes the monetary breakdown of a payroll run. The
// engine is a pure function of its inputs so the arithmetic can be audited
// against literal figures.
package payroll

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Fixed deduction rates, all applied to the gross amount.
var (
	CommissionRate = decimal.RequireFromString("0.01")
	SuperRate      = decimal.RequireFromString("0.11")
	TaxRate        = decimal.RequireFromString("0.15")
)

var (
	ErrNegativeHours = errors.New("hour count must be non-negative")
	ErrNegativeRate  = errors.New("rate amount must be non-negative")
)

// Breakdown is the result of one computation. Every monetary field is rounded
// half up to two places; net is derived by subtraction, so
// commission + super + tax + net == gross exactly.
//
// Superannuation is deducted from the worker's payment rather than remitted
// by the employer on top, which is the contract this marketplace runs on.
type Breakdown struct {
	HourCount    decimal.Decimal
	RateAmount   decimal.Decimal
	Gross        decimal.Decimal
	Commission   decimal.Decimal
	NetBeforeTax decimal.Decimal
	Super        decimal.Decimal
	Tax          decimal.Decimal
	Net          decimal.Decimal
}

type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Compute derives the breakdown for a count of payable hours at a rate.
func (e *Engine) Compute(hourCount, rateAmount decimal.Decimal) (Breakdown, error) {
	if hourCount.IsNegative() {
		return Breakdown{}, ErrNegativeHours
	}
	if rateAmount.IsNegative() {
		return Breakdown{}, ErrNegativeRate
	}

	gross := hourCount.Mul(rateAmount).Round(2)
	commission := gross.Mul(CommissionRate).Round(2)
	super := gross.Mul(SuperRate).Round(2)
	tax := gross.Mul(TaxRate).Round(2)
	net := gross.Sub(commission).Sub(super).Sub(tax)

	return Breakdown{
		HourCount:    hourCount,
		RateAmount:   rateAmount,
		Gross:        gross,
		Commission:   commission,
		NetBeforeTax: gross.Sub(commission),
		Super:        super,
		Tax:          tax,
		Net:          net,
	}, nil
}
