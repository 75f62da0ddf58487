package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ozziework/contracts-backend-go/internal/domain/party"
	"github.com/ozziework/contracts-backend-go/internal/pkg/database"
)

type partyRepository struct {
	db *database.DB
}

func NewPartyRepository(db *database.DB) party.Repository {
	return &partyRepository{db: db}
}

func (r *partyRepository) GetByID(ctx context.Context, id string) (party.Party, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, role, name, email, company_name,
			   address_street, address_city, address_state, address_postcode,
			   abn, tfn, bank_name, bank_bsb, bank_account,
			   super_fund_name, super_account, is_suspended, updated_at
		FROM parties
		WHERE id = $1
	`

	var p party.Party
	err := q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Role, &p.Name, &p.Email, &p.CompanyName,
		&p.AddressStreet, &p.AddressCity, &p.AddressState, &p.AddressPostcode,
		&p.ABN, &p.TFN, &p.BankName, &p.BankBSB, &p.BankAccount,
		&p.SuperFundName, &p.SuperAccount, &p.IsSuspended, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return party.Party{}, party.ErrPartyNotFound
		}
		return party.Party{}, fmt.Errorf("failed to get party: %w", err)
	}

	return p, nil
}

func (r *partyRepository) SetSuspended(ctx context.Context, id string, suspended bool) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE parties SET is_suspended = $2, updated_at = NOW() WHERE id = $1`

	tag, err := q.Exec(ctx, query, id, suspended)
	if err != nil {
		return fmt.Errorf("failed to set party suspension: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return party.ErrPartyNotFound
	}

	return nil
}

func (r *partyRepository) HasOverduePayslips(ctx context.Context, employerID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM payslips
			WHERE employer_id = $1 AND status = 'overdue'
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, employerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check overdue payslips: %w", err)
	}

	return exists, nil
}
