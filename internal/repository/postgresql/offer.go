package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ozziework/contracts-backend-go/internal/domain/offer"
	"github.com/ozziework/contracts-backend-go/internal/pkg/database"
)

type offerRepository struct {
	db *database.DB
}

func NewOfferRepository(db *database.DB) offer.Repository {
	return &offerRepository{db: db}
}

const offerColumns = `
	id, application_id, job_id, employer_id, traveller_id, contract_type,
	start_date, end_date, rate_type, rate_amount, rate_currency,
	accommodation_details, notes, status, created_at, updated_at
`

func (r *offerRepository) GetByApplicationID(ctx context.Context, applicationID string) (offer.Offer, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + offerColumns + ` FROM offers WHERE application_id = $1`

	var o offer.Offer
	err := q.QueryRow(ctx, query, applicationID).Scan(
		&o.ID, &o.ApplicationID, &o.JobID, &o.EmployerID, &o.TravellerID, &o.ContractType,
		&o.StartDate, &o.EndDate, &o.RateType, &o.RateAmount, &o.RateCurrency,
		&o.AccommodationDetails, &o.Notes, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return offer.Offer{}, offer.ErrOfferNotFound
		}
		return offer.Offer{}, fmt.Errorf("failed to get offer: %w", err)
	}

	return o, nil
}

func (r *offerRepository) Create(ctx context.Context, o offer.Offer) (offer.Offer, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO offers (
			id, application_id, job_id, employer_id, traveller_id, contract_type,
			start_date, end_date, rate_type, rate_amount, rate_currency,
			accommodation_details, notes, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		o.ID, o.ApplicationID, o.JobID, o.EmployerID, o.TravellerID, string(o.ContractType),
		o.StartDate, o.EndDate, string(o.RateType), o.RateAmount, o.RateCurrency,
		o.AccommodationDetails, o.Notes, string(o.Status),
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return offer.Offer{}, fmt.Errorf("failed to create offer: %w", err)
	}

	return o, nil
}

func (r *offerRepository) UpdateTerms(ctx context.Context, o offer.Offer) (offer.Offer, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE offers SET
			start_date = $2, end_date = $3, rate_type = $4, rate_amount = $5,
			rate_currency = $6, accommodation_details = $7, notes = $8,
			updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query,
		o.ID, o.StartDate, o.EndDate, string(o.RateType), o.RateAmount,
		o.RateCurrency, o.AccommodationDetails, o.Notes,
	).Scan(&o.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return offer.Offer{}, offer.ErrOfferNotPending
		}
		return offer.Offer{}, fmt.Errorf("failed to update offer terms: %w", err)
	}

	return o, nil
}

func (r *offerRepository) UpdateStatus(ctx context.Context, id string, status offer.Status) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE offers SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := q.Exec(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update offer status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return offer.ErrOfferNotFound
	}

	return nil
}

func (r *offerRepository) JobHasActiveOffer(ctx context.Context, jobID, excludeApplicationID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM offers
			WHERE job_id = $1
			  AND application_id <> $2
			  AND status IN ('pending', 'accepted')
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, jobID, excludeApplicationID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check active offers: %w", err)
	}

	return exists, nil
}
