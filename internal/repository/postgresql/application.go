package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ozziework/contracts-backend-go/internal/domain/application"
	"github.com/ozziework/contracts-backend-go/internal/domain/contract"
	"github.com/ozziework/contracts-backend-go/internal/pkg/database"
)

type applicationRepository struct {
	db *database.DB
}

func NewApplicationRepository(db *database.DB) application.Repository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) GetByID(ctx context.Context, id string) (application.Application, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, job_id, employer_id, traveller_id, status, last_paid_at, submitted_at, updated_at
		FROM applications
		WHERE id = $1
	`

	var a application.Application
	err := q.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.JobID, &a.EmployerID, &a.TravellerID, &a.Status,
		&a.LastPaidAt, &a.SubmittedAt, &a.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return application.Application{}, contract.ErrApplicationNotFound
		}
		return application.Application{}, fmt.Errorf("failed to get application: %w", err)
	}

	return a, nil
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id string, status application.Status) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE applications SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := q.Exec(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return contract.ErrApplicationNotFound
	}

	return nil
}

func (r *applicationRepository) SetLastPaidAt(ctx context.Context, id string, paidAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE applications SET last_paid_at = $2, updated_at = NOW() WHERE id = $1`

	tag, err := q.Exec(ctx, query, id, paidAt)
	if err != nil {
		return fmt.Errorf("failed to set last paid at: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return contract.ErrApplicationNotFound
	}

	return nil
}
