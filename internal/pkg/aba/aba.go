// Package aba builds Australian Banking Association (ABA) batch files: the
// fixed-width instruction format an employer uploads to their internet
// banking to execute the transfers of a payroll run. The file is an
// instruction for a human-driven import, not a payment-rail call.
package aba

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const lineWidth = 120

// Account identifies one transfer recipient (or the tracing account).
type Account struct {
	AccountName   string
	BankName      string
	BSBDigits     string // 6 digits, no separator
	AccountNumber string // 1-9 digits
}

// BSBDisplay renders the BSB as NNN-NNN.
func (a Account) BSBDisplay() string {
	if len(a.BSBDigits) != 6 {
		return a.BSBDigits
	}
	return a.BSBDigits[:3] + "-" + a.BSBDigits[3:]
}

// Transfer is one detail record: amount moved to an account.
type Transfer struct {
	Recipient   Account
	Amount      decimal.Decimal
	Description string // max 18 chars on the wire
}

// Record echoes one written detail line for audit metadata.
type Record struct {
	AccountName   string
	BSB           string
	AccountNumber string
	Amount        string
	Description   string
}

// File is the rendered result.
type File struct {
	Content     string
	Records     []Record
	TotalAmount decimal.Decimal
	GeneratedAt time.Time
}

// Build renders a batch of transfers traced against the employer's account.
// Transfers with a non-positive amount are omitted (a zero-commission run
// writes no commission line).
func Build(reference string, tracer Account, transfers []Transfer, now time.Time) File {
	if len(reference) > 18 {
		reference = reference[:18]
	}
	companyName := truncate(tracer.AccountName, 20)

	var lines []string
	lines = append(lines, descriptiveRecord(companyName, reference, tracer, now))

	var records []Record
	total := decimal.Zero
	for _, t := range transfers {
		if !t.Amount.IsPositive() {
			continue
		}
		lines = append(lines, detailRecord(t, tracer, companyName))
		records = append(records, Record{
			AccountName:   t.Recipient.AccountName,
			BSB:           t.Recipient.BSBDisplay(),
			AccountNumber: t.Recipient.AccountNumber,
			Amount:        t.Amount.StringFixed(2),
			Description:   truncate(t.Description, 18),
		})
		total = total.Add(t.Amount.Round(2))
	}
	lines = append(lines, totalRecord(total, len(records)))

	return File{
		Content:     strings.Join(lines, "\n") + "\n",
		Records:     records,
		TotalAmount: total,
		GeneratedAt: now,
	}
}

// Cents converts a monetary amount to integer cents, rounding half up to two
// places first.
func Cents(amount decimal.Decimal) int64 {
	return amount.Round(2).Mul(decimal.NewFromInt(100)).IntPart()
}

func descriptiveRecord(companyName, reference string, tracer Account, now time.Time) string {
	line := "0" +
		" " +
		"01" +
		pad(companyName, 20) +
		pad(truncate(reference, 12), 12) +
		tracer.BSBDisplay() +
		pad(tracer.AccountNumber, 9) +
		now.Format("020106") +
		strings.Repeat(" ", 24) +
		"AUD" +
		strings.Repeat(" ", 9)
	return pad(line, lineWidth)
}

func detailRecord(t Transfer, tracer Account, companyName string) string {
	line := "1" +
		t.Recipient.BSBDisplay() +
		pad(t.Recipient.AccountNumber, 9) +
		" " +
		"50" +
		fmt.Sprintf("%010d", Cents(t.Amount)) +
		pad(truncate(t.Recipient.AccountName, 32), 32) +
		pad(truncate(t.Description, 18), 18) +
		tracer.BSBDisplay() +
		pad(tracer.AccountNumber, 9) +
		pad(truncate(companyName, 16), 16)
	return pad(line, lineWidth)
}

func totalRecord(total decimal.Decimal, detailCount int) string {
	line := "7" +
		strings.Repeat(" ", 7) +
		fmt.Sprintf("%010d", Cents(total)) +
		fmt.Sprintf("%06d", detailCount) +
		strings.Repeat(" ", 40) +
		"000000"
	return pad(line, lineWidth)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func pad(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
