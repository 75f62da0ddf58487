package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ozziework/contracts-backend-go/internal/domain/payslip"
	"github.com/ozziework/contracts-backend-go/internal/pkg/database"
)

type payslipRepository struct {
	db *database.DB
}

func NewPayslipRepository(db *database.DB) payslip.Repository {
	return &payslipRepository{db: db}
}

const payslipColumns = `
	id, timesheet_id, offer_id, application_id, employer_id, traveller_id,
	hour_count, rate_amount, rate_currency, gross_amount, commission_amount,
	net_before_tax, tax_withheld, super_amount, net_payment,
	pay_period_start, pay_period_end, payment_method,
	employer_name, employer_address, employer_abn,
	traveller_name, traveller_address, traveller_tfn,
	status, instructions_status, pdf_path, aba_path, aba_generated_at, metadata,
	created_at, updated_at
`

func (r *payslipRepository) scanPayslip(row pgx.Row) (payslip.Payslip, error) {
	var p payslip.Payslip
	var metadataJSON []byte
	err := row.Scan(
		&p.ID, &p.TimesheetID, &p.OfferID, &p.ApplicationID, &p.EmployerID, &p.TravellerID,
		&p.HourCount, &p.RateAmount, &p.RateCurrency, &p.GrossAmount, &p.CommissionAmount,
		&p.NetBeforeTax, &p.TaxWithheld, &p.SuperAmount, &p.NetPayment,
		&p.PayPeriodStart, &p.PayPeriodEnd, &p.PaymentMethod,
		&p.EmployerName, &p.EmployerAddress, &p.EmployerABN,
		&p.TravellerName, &p.TravellerAddress, &p.TravellerTFN,
		&p.Status, &p.InstructionsStatus, &p.PDFPath, &p.ABAPath, &p.ABAGeneratedAt, &metadataJSON,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return payslip.Payslip{}, err
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &p.Metadata); err != nil {
			return payslip.Payslip{}, fmt.Errorf("failed to unmarshal payslip metadata: %w", err)
		}
	}
	return p, nil
}

func (r *payslipRepository) Create(ctx context.Context, p payslip.Payslip) (payslip.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	metadataJSON, err := json.Marshal(p.Metadata)
	if err != nil {
		return payslip.Payslip{}, fmt.Errorf("failed to marshal payslip metadata: %w", err)
	}

	query := `
		INSERT INTO payslips (
			id, timesheet_id, offer_id, application_id, employer_id, traveller_id,
			hour_count, rate_amount, rate_currency, gross_amount, commission_amount,
			net_before_tax, tax_withheld, super_amount, net_payment,
			pay_period_start, pay_period_end, payment_method,
			employer_name, employer_address, employer_abn,
			traveller_name, traveller_address, traveller_tfn,
			status, instructions_status, metadata
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14, $15,
			$16, $17, $18,
			$19, $20, $21,
			$22, $23, $24,
			$25, $26, $27
		)
		RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		p.ID, p.TimesheetID, p.OfferID, p.ApplicationID, p.EmployerID, p.TravellerID,
		p.HourCount, p.RateAmount, p.RateCurrency, p.GrossAmount, p.CommissionAmount,
		p.NetBeforeTax, p.TaxWithheld, p.SuperAmount, p.NetPayment,
		p.PayPeriodStart, p.PayPeriodEnd, p.PaymentMethod,
		p.EmployerName, p.EmployerAddress, p.EmployerABN,
		p.TravellerName, p.TravellerAddress, p.TravellerTFN,
		string(p.Status), string(p.InstructionsStatus), metadataJSON,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return payslip.Payslip{}, fmt.Errorf("failed to create payslip: %w", err)
	}

	return p, nil
}

func (r *payslipRepository) GetByID(ctx context.Context, id string) (payslip.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payslipColumns + ` FROM payslips WHERE id = $1`

	p, err := r.scanPayslip(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payslip.Payslip{}, payslip.ErrPayslipNotFound
		}
		return payslip.Payslip{}, fmt.Errorf("failed to get payslip: %w", err)
	}

	return p, nil
}

func (r *payslipRepository) GetLatestByApplicationID(ctx context.Context, applicationID string) (payslip.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payslipColumns + `
		FROM payslips
		WHERE application_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	p, err := r.scanPayslip(q.QueryRow(ctx, query, applicationID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payslip.Payslip{}, payslip.ErrPayslipNotFound
		}
		return payslip.Payslip{}, fmt.Errorf("failed to get latest payslip: %w", err)
	}

	return p, nil
}

func (r *payslipRepository) Complete(ctx context.Context, id string, pdfPath, abaPath string, abaGeneratedAt time.Time, metadata payslip.Metadata) error {
	q := GetQuerier(ctx, r.db)

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal payslip metadata: %w", err)
	}

	query := `
		UPDATE payslips SET
			status = 'completed', instructions_status = 'instructions_generated',
			pdf_path = $2, aba_path = $3, aba_generated_at = $4, metadata = $5,
			updated_at = NOW()
		WHERE id = $1 AND status = 'processing'
	`

	tag, err := q.Exec(ctx, query, id, pdfPath, abaPath, abaGeneratedAt, metadataJSON)
	if err != nil {
		return fmt.Errorf("failed to complete payslip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payslip.ErrPayslipNotFound
	}

	return nil
}

func (r *payslipRepository) MarkFailed(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE payslips SET status = 'failed', updated_at = NOW() WHERE id = $1 AND status = 'processing'`

	if _, err := q.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark payslip failed: %w", err)
	}

	return nil
}

func (r *payslipRepository) UpdateInstructionsStatus(ctx context.Context, id string, from []payslip.InstructionsStatus, to payslip.InstructionsStatus) error {
	q := GetQuerier(ctx, r.db)

	fromStates := make([]string, len(from))
	for i, s := range from {
		fromStates[i] = string(s)
	}

	query := `
		UPDATE payslips SET instructions_status = $2, updated_at = NOW()
		WHERE id = $1 AND instructions_status = ANY($3)
	`

	tag, err := q.Exec(ctx, query, id, string(to), fromStates)
	if err != nil {
		return fmt.Errorf("failed to update instructions status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payslip.ErrInstructionsNotOpen
	}

	return nil
}

func (r *payslipRepository) UpdateStatus(ctx context.Context, id string, status payslip.Status) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE payslips SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := q.Exec(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update payslip status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payslip.ErrPayslipNotFound
	}

	return nil
}

func (r *payslipRepository) ListStaleProcessing(ctx context.Context, cutoff time.Time) ([]payslip.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payslipColumns + `
		FROM payslips
		WHERE status = 'processing' AND created_at < $1
		ORDER BY created_at
	`

	return r.listPayslips(ctx, q, query, cutoff)
}

func (r *payslipRepository) ListOverdueCandidates(ctx context.Context, cutoff time.Time) ([]payslip.Payslip, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + payslipColumns + `
		FROM payslips
		WHERE status = 'completed'
		  AND instructions_status IN ('instructions_generated', 'awaiting_bank_import')
		  AND pay_period_end < $1
		ORDER BY pay_period_end
	`

	return r.listPayslips(ctx, q, query, cutoff)
}

func (r *payslipRepository) listPayslips(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]payslip.Payslip, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslips: %w", err)
	}
	defer rows.Close()

	var out []payslip.Payslip
	for rows.Next() {
		p, err := r.scanPayslip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payslip: %w", err)
		}
		out = append(out, p)
	}

	return out, rows.Err()
}
